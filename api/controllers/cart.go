package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kibanda-labs/cafeteria-pos/api/responses"
	"github.com/kibanda-labs/cafeteria-pos/api/validators"
	"github.com/kibanda-labs/cafeteria-pos/internal/cart"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
	"github.com/kibanda-labs/cafeteria-pos/pkg/money"
)

type addItemPayload struct {
	Item string `json:"item" validate:"required,max=80"`
	Qty  int    `json:"qty" validate:"required,gt=0"`
}

type updateQtyPayload struct {
	Qty int `json:"qty"`
}

type clearCartPayload struct {
	Confirm bool `json:"confirm"`
}

type cartLineView struct {
	Item      string `json:"item"`
	Qty       int    `json:"qty"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

type cartView struct {
	Lines     []cartLineView `json:"lines"`
	ItemCount int            `json:"item_count"`
	Subtotal  string         `json:"subtotal"`
	Tax       string         `json:"tax"`
	Total     string         `json:"total"`
}

func cartViewOf(store *cart.Store) cartView {
	lines := store.Lines()
	totals := store.Totals()

	view := cartView{
		Lines:     make([]cartLineView, 0, len(lines)),
		ItemCount: store.ItemCount(),
		Subtotal:  totals.Subtotal.StringFixed(2),
		Tax:       totals.Tax.StringFixed(2),
		Total:     totals.Total.StringFixed(2),
	}
	for _, line := range lines {
		view.Lines = append(view.Lines, cartLineView{
			Item:      line.Item,
			Qty:       line.Qty,
			UnitPrice: money.FormatKsh(line.UnitPrice),
			LineTotal: money.FormatKsh(line.Total()),
		})
	}
	return view
}

// CartGet returns the working cart with its running totals.
func CartGet(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}
		responses.WriteSuccess(w, cartViewOf(store))
	}
}

// CartAddItem adds quantity of one item, merging with an existing line.
func CartAddItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		var payload addItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		name := validators.SanitizeString(payload.Item, 80)
		if _, err := store.Add(name, payload.Qty); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		logg.Info(logg.WithItem(ctx, name), "cart item added")
		responses.WriteSuccess(w, cartViewOf(store))
	}
}

// CartUpdateQty sets the quantity of one line. Zero removes the line.
func CartUpdateQty(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		name := validators.SanitizeString(chi.URLParam(r, "name"), 80)
		if name == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item name is required"))
			return
		}

		var payload updateQtyPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if _, _, err := store.UpdateQty(name, payload.Qty); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartViewOf(store))
	}
}

// CartRemoveItem drops one line from the cart.
func CartRemoveItem(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		name := validators.SanitizeString(chi.URLParam(r, "name"), 80)
		if err := store.Remove(name); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartViewOf(store))
	}
}

// CartClear empties the cart. The confirm flag is mandatory so the UI shows
// its prompt before calling in.
func CartClear(store *cart.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if store == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart unavailable"))
			return
		}

		var payload clearCartPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := store.Clear(payload.Confirm); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		logg.Info(ctx, "cart cleared")
		responses.WriteSuccess(w, cartViewOf(store))
	}
}
