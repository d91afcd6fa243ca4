package controllers

import (
	"net/http"

	"github.com/jualbuku/bookmart-backend/api/responses"
	"github.com/jualbuku/bookmart-backend/pkg/config"
	pkgerrors "github.com/jualbuku/bookmart-backend/pkg/errors"
	"github.com/jualbuku/bookmart-backend/pkg/logger"
	pkgredis "github.com/jualbuku/bookmart-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BookMart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness; the cache ping is optional so the API can
// serve degraded (durable-only notifications) without Redis.
func HealthReady(cfg *config.Config, cache pkgredis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-BookMart-Env", cfg.App.Env)
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
