package controllers

import (
	"context"
	"net/http"

	"go.uber.org/multierr"

	"github.com/jimmynenos/ordering-backend/api/responses"
	"github.com/jimmynenos/ordering-backend/pkg/config"
	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"
	"github.com/jimmynenos/ordering-backend/pkg/logger"
)

// ReadyCheck probes one dependency. The name keys the failure report.
type ReadyCheck func(ctx context.Context) error

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pizza-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady aggregates every dependency probe; any failure flips the whole
// endpoint to 503 with the per-dependency breakdown in the details.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pizza-Env", cfg.App.Env)

		var combined error
		failures := map[string]string{}
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(r.Context()); err != nil {
				combined = multierr.Append(combined, err)
				failures[name] = err.Error()
			}
		}

		if combined != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "service not ready").
				WithDetails(map[string]any{"failed": failures})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
