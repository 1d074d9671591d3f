package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/streetfood/rawmart/api/controllers"
	cartcontrollers "github.com/streetfood/rawmart/api/controllers/cart"
	catalogcontrollers "github.com/streetfood/rawmart/api/controllers/catalog"
	ordercontrollers "github.com/streetfood/rawmart/api/controllers/orders"
	"github.com/streetfood/rawmart/api/middleware"
	"github.com/streetfood/rawmart/internal/cart"
	"github.com/streetfood/rawmart/internal/catalog"
	"github.com/streetfood/rawmart/internal/orders"
	"github.com/streetfood/rawmart/pkg/config"
	"github.com/streetfood/rawmart/pkg/db"
	"github.com/streetfood/rawmart/pkg/logger"
	"github.com/streetfood/rawmart/pkg/metrics"
	pkgredis "github.com/streetfood/rawmart/pkg/redis"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

type redisStore interface {
	pkgredis.IdempotencyStore
	pkgredis.Pinger
	rateLimiter
}

// Params carries everything the HTTP surface needs. Optional pingers left nil
// are skipped by the readiness check.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    redisStore
	Gatherer prometheus.Gatherer

	Catalog catalog.Service
	Cart    cart.Service
	Orders  orders.Service
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	var checks []controllers.ReadinessCheck
	if p.DB != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "db", Pinger: p.DB})
	}
	if p.Redis != nil {
		checks = append(checks, controllers.ReadinessCheck{Name: "redis", Pinger: p.Redis})
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks...))
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(p.Gatherer))
	}

	cartPolicy := middleware.SessionRateLimitPolicy{
		Name:   "cart",
		Window: cfg.Cart.RateLimitWindow,
		Limit:  cfg.Cart.RateLimit,
	}

	// Without Redis both middlewares pass requests through.
	var idempotency pkgredis.IdempotencyStore
	var limiter rateLimiter
	if p.Redis != nil {
		idempotency = p.Redis
		limiter = p.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/materials", catalogcontrollers.ListMaterials(p.Catalog, logg))
		r.Get("/materials/{materialId}", catalogcontrollers.GetMaterial(p.Catalog, logg))
		r.Get("/categories", catalogcontrollers.ListCategories(p.Catalog, logg))
		r.Get("/suppliers", catalogcontrollers.ListSuppliers(p.Catalog, logg))

		r.Route("/cart/{sessionId}", func(r chi.Router) {
			r.Use(middleware.SessionContext(logg))
			r.Use(middleware.SessionRateLimit(cartPolicy, limiter, logg))
			r.Get("/", cartcontrollers.CartFetch(p.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(p.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddItem(p.Cart, logg))
			r.Put("/items/{lineId}", cartcontrollers.CartUpdateItem(p.Cart, logg))
			r.Delete("/items/{lineId}", cartcontrollers.CartRemoveItem(p.Cart, logg))
		})

		r.With(middleware.Idempotency(idempotency, logg)).Post("/orders", ordercontrollers.PlaceOrder(p.Orders, logg))
		r.With(middleware.SessionContext(logg)).Get("/orders/{sessionId}", ordercontrollers.List(p.Orders, logg))
	})

	return r
}
