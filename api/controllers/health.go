package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/veloramarket/cartsync-backend/api/responses"
	"github.com/veloramarket/cartsync-backend/pkg/config"
	"github.com/veloramarket/cartsync-backend/pkg/logger"
)

const envHeader = "X-CartSync-Env"

type pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady probes the backing stores. A failed probe reports 503 so the
// orchestrator stops routing traffic here until the dependency recovers.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		checks["db"] = probe(ctx, dbP, logg, "db")
		if checks["db"] != "ok" {
			healthy = false
		}
		checks["redis"] = probe(ctx, redisP, logg, "redis")
		if checks["redis"] != "ok" {
			healthy = false
		}

		status := http.StatusOK
		checks["status"] = "ready"
		if !healthy {
			status = http.StatusServiceUnavailable
			checks["status"] = "degraded"
		}
		responses.WriteSuccessStatus(w, status, checks)
	}
}

func probe(ctx context.Context, p pinger, logg *logger.Logger, name string) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		if logg != nil {
			logg.Error(ctx, name+" readiness probe failed", err)
		}
		return "unavailable"
	}
	return "ok"
}
