package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gloova-ai/gloova-backend/api/responses"
	"github.com/gloova-ai/gloova-backend/pkg/config"
	"github.com/gloova-ai/gloova-backend/pkg/db"
	"github.com/gloova-ai/gloova-backend/pkg/logger"
	"github.com/gloova-ai/gloova-backend/pkg/redis"
)

const readinessTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Gloova-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency. A nil pinger means the
// dependency is not wired (demo mode) and is reported as skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Gloova-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{
			"db":    checkPinger(ctx, dbP),
			"redis": checkPinger(ctx, redisP),
		}

		status := http.StatusOK
		for name, result := range checks {
			if result == "error" {
				status = http.StatusServiceUnavailable
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "dependency", name), "readiness check failed")
				}
			}
		}

		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": statusLabel(status),
			"checks": checks,
		})
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func checkPinger(ctx context.Context, p pinger) string {
	switch {
	case p == nil:
		return "skipped"
	case p.Ping(ctx) != nil:
		return "error"
	default:
		return "ok"
	}
}

func statusLabel(status int) string {
	if status == http.StatusOK {
		return "ready"
	}
	return "degraded"
}
