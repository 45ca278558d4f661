package controllers

import (
	"net/http"

	"github.com/kibanda-labs/cafeteria-pos/api/responses"
	"github.com/kibanda-labs/cafeteria-pos/api/validators"
	"github.com/kibanda-labs/cafeteria-pos/internal/catalog"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
)

type menuItemView struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	Threshold   int    `json:"threshold"`
	Category    string `json:"category"`
	StockStatus string `json:"stock_status"`
}

type menuView struct {
	Items      []menuItemView `json:"items"`
	Categories []string       `json:"categories"`
	TotalItems int            `json:"total_items"`
}

// Menu serves the cached catalog. `?refresh=1` forces a reload first; if the
// reload fails the last good snapshot is served with the error noted in logs.
func Menu(cache *catalog.Cache, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if cache == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		if validators.QueryFlag(r, "refresh") {
			if err := cache.Load(ctx); err != nil {
				if cache.Len() == 0 {
					responses.WriteError(ctx, logg, w, err)
					return
				}
				logg.Error(ctx, "menu refresh failed, serving cached snapshot", err)
			}
		}

		items := cache.Snapshot()
		view := menuView{
			Items:      make([]menuItemView, 0, len(items)),
			Categories: cache.Categories(),
			TotalItems: len(items),
		}
		for _, item := range items {
			view.Items = append(view.Items, menuItemView{
				Name:        item.Name,
				Price:       item.Price.StringFixed(2),
				Stock:       item.Stock,
				Threshold:   item.Threshold,
				Category:    item.Category,
				StockStatus: item.StockStatus(),
			})
		}
		responses.WriteSuccess(w, view)
	}
}
