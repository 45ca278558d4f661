package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kibanda-labs/cafeteria-pos/pkg/config"
	pkgerrors "github.com/kibanda-labs/cafeteria-pos/pkg/errors"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.BackendConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 2 * time.Second,
	}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	if _, err := NewClient(config.BackendConfig{}, logg); err == nil {
		t.Fatal("expected error without base url")
	}
}

func TestListItemsDecodesListing(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": map[string]any{
				"Chapati": map[string]any{"price": 30.0, "stock": 200, "threshold": 20, "category": "main", "available": true},
			},
			"categories": []string{"main"},
			"totalItems": 1,
		})
	}))

	out, err := client.ListItems(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item, ok := out.Items["Chapati"]
	if !ok {
		t.Fatal("expected Chapati in listing")
	}
	if item.Stock != 200 || item.Threshold != 20 {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestSubmitSaleSendsIdempotencyKey(t *testing.T) {
	t.Parallel()

	var gotKey string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Idempotency-Key")

		var req SaleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Item != "Tea" || req.Qty != 1 {
			t.Fatalf("unexpected request %+v", req)
		}
		json.NewEncoder(w).Encode(SaleResult{Status: "success", Item: "Tea", Quantity: 1, Remaining: 4})
	}))

	out, err := client.SubmitSale(context.Background(), SaleRequest{Item: "Tea", Qty: 1, Price: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Remaining != 4 {
		t.Fatalf("unexpected remaining %d", out.Remaining)
	}
	if gotKey == "" {
		t.Fatal("expected idempotency key header")
	}
}

func TestSubmitSaleMapsBackendError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Insufficient stock for Tea. Available: 0", "status": "error"})
	}))

	_, err := client.SubmitSale(context.Background(), SaleRequest{Item: "Tea", Qty: 1, Price: 50})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
	if typed.Message() != "Insufficient stock for Tea. Available: 0" {
		t.Fatalf("expected backend message to surface, got %q", typed.Message())
	}
}

func TestSubmitSaleMapsTransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client, err := NewClient(config.BackendConfig{
		BaseURL:        srv.URL,
		RequestTimeout: time.Second,
	}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = client.SubmitSale(context.Background(), SaleRequest{Item: "Tea", Qty: 1, Price: 50})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestExportReportReturnsBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exportReport" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, "CAFETERIA POS - END OF DAY REPORT\n")
	}))

	body, err := client.ExportReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body == "" {
		t.Fatal("expected report body")
	}
}

func TestDailyTotals(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(DailyTotals{DailyTotal: 1040.5, TodaySales: 7, MostPopularItem: "Chapati"})
	}))

	out, err := client.DailyTotals(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.DailyTotal != 1040.5 || out.MostPopularItem != "Chapati" {
		t.Fatalf("unexpected totals %+v", out)
	}
}
