package controllers

import (
	"net/http"

	"github.com/kibanda-labs/cafeteria-pos/api/responses"
	"github.com/kibanda-labs/cafeteria-pos/api/validators"
	"github.com/kibanda-labs/cafeteria-pos/internal/reports"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
)

// ReportsDailyTotals proxies the backend's running day totals.
func ReportsDailyTotals(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports unavailable"))
			return
		}
		totals, err := svc.DailyTotals(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, totals)
	}
}

// ReportsStock classifies the cached catalog by stock level.
func ReportsStock(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports unavailable"))
			return
		}
		report, err := svc.Stock(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// ReportsSalesHistory returns the recent-sales view from the ledger.
func ReportsSalesHistory(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports unavailable"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		history, err := svc.SalesHistory(ctx, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

// ReportsExport streams the end-of-day report as a text attachment.
func ReportsExport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reports unavailable"))
			return
		}
		export, err := svc.Export(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(export.Body)); err != nil {
			logg.Error(ctx, "failed to stream export", err)
		}
	}
}
