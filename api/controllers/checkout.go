package controllers

import (
	"net/http"

	"github.com/kibanda-labs/cafeteria-pos/api/responses"
	"github.com/kibanda-labs/cafeteria-pos/api/validators"
	"github.com/kibanda-labs/cafeteria-pos/internal/checkout"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
)

type checkoutPayload struct {
	Table string `json:"table" validate:"omitempty,max=40"`
}

type receiptView struct {
	Receipt  *checkout.Receipt `json:"receipt"`
	Rendered string            `json:"rendered"`
}

// Checkout submits the cart to the sales backend line by line and returns the
// receipt. The table label falls back to the station default when omitted.
func Checkout(orch *checkout.Orchestrator, defaultTable string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if orch == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout unavailable"))
			return
		}

		var payload checkoutPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		table := validators.SanitizeString(payload.Table, 40)
		if table == "" {
			table = defaultTable
		}

		receipt, err := orch.Execute(ctx, table)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, receiptView{
			Receipt:  receipt,
			Rendered: receipt.Render(),
		})
	}
}
