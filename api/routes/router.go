package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crumbhq/crumb-backend/api/controllers"
	cartcontrollers "github.com/crumbhq/crumb-backend/api/controllers/cart"
	ordercontrollers "github.com/crumbhq/crumb-backend/api/controllers/orders"
	slotcontrollers "github.com/crumbhq/crumb-backend/api/controllers/slots"
	"github.com/crumbhq/crumb-backend/api/middleware"
	"github.com/crumbhq/crumb-backend/internal/cart"
	"github.com/crumbhq/crumb-backend/internal/orders"
	"github.com/crumbhq/crumb-backend/internal/timeslots"
	"github.com/crumbhq/crumb-backend/pkg/config"
	"github.com/crumbhq/crumb-backend/pkg/logger"
	pkgredis "github.com/crumbhq/crumb-backend/pkg/redis"
)

// redisStore is the slice of the Redis client the HTTP layer needs.
type redisStore interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    redisStore
	Gatherer prometheus.Gatherer
	Slots    timeslots.Service
	Cart     cart.Service
	Orders   orders.Service
	Now      func() time.Time
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins, cfg.Cart.SessionHeader),
	)

	checkoutPolicy := middleware.NewRateLimitPolicy(
		"checkout",
		cfg.Checkout.RateLimitWindow,
		cfg.Checkout.RateLimitPerIP,
		cfg.Checkout.RateLimitPerCart,
	)

	readyDeps := map[string]controllers.Pinger{}
	if deps.DB != nil {
		readyDeps["db"] = deps.DB
	}
	if pinger, ok := deps.Redis.(controllers.Pinger); ok && pinger != nil {
		readyDeps["redis"] = pinger
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, readyDeps))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CartSession(cfg.Cart.SessionHeader, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(deps.Cart, logg))
			r.Get("/summary", cartcontrollers.CartSummary(deps.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{itemId}", cartcontrollers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(deps.Cart, logg))
		})

		r.Get("/orders/{orderId}", ordercontrollers.Detail(deps.Orders, logg))

		r.Route("/bakeries/{bakeryId}", func(r chi.Router) {
			r.Use(middleware.BakeryContext(logg))
			// idempotency resolves the full route pattern, so it is attached per route
			idempotent := r.With(middleware.Idempotency(deps.Redis, logg))

			r.Get("/slots", slotcontrollers.ListAvailable(deps.Slots, logg))
			idempotent.Post("/slots", slotcontrollers.Create(deps.Slots, logg))
			r.Get("/slots/manage", slotcontrollers.ListManaged(deps.Slots, deps.Now, logg))
			idempotent.Post("/slots/generate", slotcontrollers.Generate(deps.Slots, logg))
			r.Delete("/slots/{slotId}", slotcontrollers.Deactivate(deps.Slots, logg))

			idempotent.With(middleware.RateLimit(checkoutPolicy, deps.Redis, logg)).
				Post("/checkout", controllers.Checkout(deps.Orders, deps.Cart, logg))

			r.Get("/orders", ordercontrollers.List(deps.Orders, logg))
			idempotent.Patch("/orders/{orderId}/status", ordercontrollers.UpdateStatus(deps.Orders, logg))
		})
	})

	return r
}
