package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jimmynenos/ordering-backend/api/controllers"
	"github.com/jimmynenos/ordering-backend/api/middleware"
	"github.com/jimmynenos/ordering-backend/internal/menu"
	"github.com/jimmynenos/ordering-backend/internal/orders"
	"github.com/jimmynenos/ordering-backend/internal/session"
	"github.com/jimmynenos/ordering-backend/pkg/config"
	"github.com/jimmynenos/ordering-backend/pkg/logger"
	"github.com/jimmynenos/ordering-backend/pkg/metrics"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Menu      *menu.Service
	Registry  *session.Registry
	Finalizer *orders.Finalizer
	Metrics   *metrics.OrderingMetrics
	Gatherer  prometheus.Gatherer
	Checks    map[string]controllers.ReadyCheck
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.Metrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Checks))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/menu", func(r chi.Router) {
		r.Post("/search", controllers.MenuSearch(deps.Menu, cfg.Session, logg))
		r.Get("/categories", controllers.MenuCategories(deps.Menu, logg))
		r.Get("/categories/{category}/items", controllers.MenuItemsInCategory(deps.Menu, logg))
		r.Get("/items/{itemID}", controllers.MenuItem(deps.Menu, logg))
		r.Get("/summary", controllers.MenuSummary(deps.Menu, cfg.Session, logg))
	})

	r.Route("/api/v1/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/", controllers.SessionGet(deps.Registry, logg))
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.Registry, logg))
			r.Delete("/", controllers.CartClear(deps.Registry, logg, deps.Metrics))
			r.Post("/items", controllers.CartAddItem(deps.Registry, deps.Menu, cfg.Session, logg, deps.Metrics))
			r.Patch("/items", controllers.CartUpdateQuantity(deps.Registry, logg, deps.Metrics))
			r.Delete("/items", controllers.CartRemoveItem(deps.Registry, logg, deps.Metrics))
			r.Post("/customizations", controllers.CartAddCustomization(deps.Registry, logg, deps.Metrics))
			r.Delete("/customizations", controllers.CartRemoveCustomization(deps.Registry, logg, deps.Metrics))
		})
		r.Put("/customer", controllers.CustomerUpdate(deps.Registry, logg))
		r.Post("/checkout", controllers.Checkout(deps.Registry, deps.Finalizer, logg))
	})

	return r
}
