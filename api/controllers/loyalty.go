package controllers

import (
	"net/http"

	"github.com/kibanda-labs/cafeteria-pos/api/responses"
	"github.com/kibanda-labs/cafeteria-pos/api/validators"
	"github.com/kibanda-labs/cafeteria-pos/internal/loyalty"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
)

// LoyaltyJoin signs a customer up for the loyalty programme.
func LoyaltyJoin(svc loyalty.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "loyalty programme is not enabled on this station"))
			return
		}

		var payload loyalty.JoinInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		member, err := svc.Join(ctx, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, member)
	}
}

// LoyaltyMembers lists the roster.
func LoyaltyMembers(svc loyalty.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "loyalty programme is not enabled on this station"))
			return
		}

		members, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, members)
	}
}
