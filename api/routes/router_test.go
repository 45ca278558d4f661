package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kibanda-labs/cafeteria-pos/api/controllers"
	"github.com/kibanda-labs/cafeteria-pos/internal/cart"
	"github.com/kibanda-labs/cafeteria-pos/internal/catalog"
	"github.com/kibanda-labs/cafeteria-pos/pkg/backend"
	"github.com/kibanda-labs/cafeteria-pos/pkg/config"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
)

type staticListing struct{}

func (staticListing) ListItems(ctx context.Context) (*backend.ItemsResponse, error) {
	return &backend.ItemsResponse{
		Items:      map[string]backend.Item{"Tea": {Price: 50, Stock: 3, Threshold: 5, Category: "Drinks"}},
		Categories: []string{"Drinks"},
	}, nil
}

type okPinger struct{}

func (okPinger) Ping(ctx context.Context) error { return nil }

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})

	cache, err := catalog.NewCache(staticListing{}, logg)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	store, err := cart.NewStore(cache)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Station.DefaultTable = "N/A"

	return NewRouter(Params{
		Config:  cfg,
		Logger:  logg,
		Catalog: cache,
		Cart:    store,
		Pingers: map[string]controllers.Pinger{"backend": okPinger{}},
	})
}

func TestHealthRoutes(t *testing.T) {
	router := testRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
	}
}

func TestMenuRoute(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Tea") {
		t.Fatalf("menu body missing item: %s", rec.Body.String())
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
