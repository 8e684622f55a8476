package controllers

import (
	"context"
	"net/http"

	"github.com/cybershaala/academy-backend/api/responses"
	"github.com/cybershaala/academy-backend/pkg/config"
	pkgerrors "github.com/cybershaala/academy-backend/pkg/errors"
	"github.com/cybershaala/academy-backend/pkg/logger"
)

// ReadyCheck names a dependency probe run by the readiness endpoint.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Academy-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, deps ...ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Academy-Env", cfg.App.Env)
		for _, dep := range deps {
			if dep.Check == nil {
				continue
			}
			if err := dep.Check(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, dep.Name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
