package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/skeeper75/widget.creator-sub002/api/routes"
	"github.com/skeeper75/widget.creator-sub002/internal/catalog"
	"github.com/skeeper75/widget.creator-sub002/internal/dispatch"
	"github.com/skeeper75/widget.creator-sub002/internal/orders"
	"github.com/skeeper75/widget.creator-sub002/internal/quotes"
	"github.com/skeeper75/widget.creator-sub002/pkg/config"
	"github.com/skeeper75/widget.creator-sub002/pkg/db"
	"github.com/skeeper75/widget.creator-sub002/pkg/logger"
	"github.com/skeeper75/widget.creator-sub002/pkg/metrics"
	"github.com/skeeper75/widget.creator-sub002/pkg/migrate"
	"github.com/skeeper75/widget.creator-sub002/pkg/outbox"
	"github.com/skeeper75/widget.creator-sub002/pkg/pubsub"
	"github.com/skeeper75/widget.creator-sub002/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	registry := prometheus.NewRegistry()
	quoteMetrics := metrics.NewQuoteMetrics(registry)
	orderMetrics := metrics.NewOrderMetrics(registry)
	dispatchMetrics := metrics.NewDispatchMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	quoteService, err := quotes.NewService(catalogRepo, quotes.NewLogRepository(dbClient.DB()), logg, quoteMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create quote service", err)
		os.Exit(1)
	}

	dispatcher, err := dispatch.NewDispatcher(pubsubClient.ProductionPublisher(), logg, dispatchMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:                orders.NewRepository(dbClient.DB()),
		Quotes:              quoteService,
		Tx:                  dbClient,
		Outbox:              outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Dispatcher:          dispatcher,
		Logger:              logg,
		Metrics:             orderMetrics,
		PriceMatchTolerance: cfg.Quote.PriceMatchTolerance,
		OrderCodeRetries:    cfg.Quote.OrderCodeRetries,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			PubSub:   pubsubClient,
			Quotes:   quoteService,
			Orders:   orderService,
			Gatherer: registry,
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server shut down gracefully")
	}
}
