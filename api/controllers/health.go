package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/skeeper75/widget.creator-sub002/api/responses"
	"github.com/skeeper75/widget.creator-sub002/pkg/config"
	"github.com/skeeper75/widget.creator-sub002/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WidgetCreator-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every backing dependency and returns 503 when any fails.
// Nil pingers are reported as skipped so partial deployments stay readable.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, pubsubP pinger) http.HandlerFunc {
	checks := []struct {
		name   string
		target pinger
	}{
		{name: "postgres", target: dbP},
		{name: "redis", target: redisP},
		{name: "pubsub", target: pubsubP},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WidgetCreator-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		statuses := make(map[string]string, len(checks))
		ready := true
		for _, check := range checks {
			if check.target == nil {
				statuses[check.name] = "skipped"
				continue
			}
			if err := check.target.Ping(ctx); err != nil {
				if logg != nil {
					logg.Error(logg.WithField(r.Context(), "dependency", check.name), "readiness check failed", err)
				}
				statuses[check.name] = "down"
				ready = false
				continue
			}
			statuses[check.name] = "up"
		}

		payload := map[string]any{
			"status": "ready",
			"checks": statuses,
		}
		if !ready {
			payload["status"] = "degraded"
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, payload)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}
