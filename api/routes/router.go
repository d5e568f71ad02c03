package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skeeper75/widget.creator-sub002/api/controllers"
	"github.com/skeeper75/widget.creator-sub002/api/middleware"
	"github.com/skeeper75/widget.creator-sub002/internal/orders"
	"github.com/skeeper75/widget.creator-sub002/internal/quotes"
	"github.com/skeeper75/widget.creator-sub002/pkg/config"
	"github.com/skeeper75/widget.creator-sub002/pkg/db"
	"github.com/skeeper75/widget.creator-sub002/pkg/logger"
	pkgredis "github.com/skeeper75/widget.creator-sub002/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps collects everything the HTTP surface needs. Nil optional members
// (redis, pubsub, gatherer) degrade the related routes instead of panicking.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       db.Pinger
	Redis    *pkgredis.Client
	PubSub   pinger
	Quotes   quotes.Service
	Orders   orders.Service
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	var redisP pinger
	var idempotencyStore pkgredis.IdempotencyStore
	if deps.Redis != nil {
		redisP = deps.Redis
		idempotencyStore = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisP, deps.PubSub))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/quotes", controllers.Quote(deps.Quotes, logg))
		r.Get("/quotes/recent", controllers.RecentQuotes(deps.Quotes, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.Idempotency(idempotencyStore, logg)).Post("/", controllers.CreateOrder(deps.Orders, logg))
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/{orderCode}", controllers.GetOrder(deps.Orders, logg))
		})
	})

	return r
}
