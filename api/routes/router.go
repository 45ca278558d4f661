package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kibanda-labs/cafeteria-pos/api/controllers"
	"github.com/kibanda-labs/cafeteria-pos/api/middleware"
	"github.com/kibanda-labs/cafeteria-pos/internal/cart"
	"github.com/kibanda-labs/cafeteria-pos/internal/catalog"
	checkoutsvc "github.com/kibanda-labs/cafeteria-pos/internal/checkout"
	"github.com/kibanda-labs/cafeteria-pos/internal/loyalty"
	"github.com/kibanda-labs/cafeteria-pos/internal/reports"
	"github.com/kibanda-labs/cafeteria-pos/pkg/config"
	"github.com/kibanda-labs/cafeteria-pos/pkg/logger"
)

// Params collects everything the router serves.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Catalog  *catalog.Cache
	Cart     *cart.Store
	Checkout *checkoutsvc.Orchestrator
	Reports  reports.Service
	Loyalty  loyalty.Service
	Pingers  map[string]controllers.Pinger
	Registry *prometheus.Registry
}

// NewRouter assembles the station's HTTP surface.
func NewRouter(p Params) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(p.Logger))
	r.Use(middleware.RequestID(p.Logger))
	r.Use(middleware.Logging(p.Logger))
	r.Use(middleware.CORS())

	r.Get("/health/live", controllers.HealthLive(p.Config))
	r.Get("/health/ready", controllers.HealthReady(p.Config, p.Logger, p.Pingers))

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/menu", controllers.Menu(p.Catalog, p.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(p.Cart, p.Logger))
			r.Post("/items", controllers.CartAddItem(p.Cart, p.Logger))
			r.Patch("/items/{name}", controllers.CartUpdateQty(p.Cart, p.Logger))
			r.Delete("/items/{name}", controllers.CartRemoveItem(p.Cart, p.Logger))
			r.Post("/clear", controllers.CartClear(p.Cart, p.Logger))
		})

		r.Post("/checkout", controllers.Checkout(p.Checkout, p.Config.Station.DefaultTable, p.Logger))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/daily-totals", controllers.ReportsDailyTotals(p.Reports, p.Logger))
			r.Get("/stock", controllers.ReportsStock(p.Reports, p.Logger))
			r.Get("/sales-history", controllers.ReportsSalesHistory(p.Reports, p.Logger))
			r.Get("/export", controllers.ReportsExport(p.Reports, p.Logger))
		})

		r.Route("/loyalty", func(r chi.Router) {
			r.Post("/join", controllers.LoyaltyJoin(p.Loyalty, p.Logger))
			r.Get("/members", controllers.LoyaltyMembers(p.Loyalty, p.Logger))
		})
	})

	return r
}
