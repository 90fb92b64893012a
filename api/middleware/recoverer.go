package middleware

import (
	"fmt"
	"net/http"

	"github.com/jimmynenos/ordering-backend/api/responses"
	pkgerrors "github.com/jimmynenos/ordering-backend/pkg/errors"
	"github.com/jimmynenos/ordering-backend/pkg/logger"
)

// Recoverer turns a handler panic into a 500 with the standard error
// envelope instead of a dropped connection.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				err := fmt.Errorf("panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithField(ctx, "panic_value", fmt.Sprint(rec))
					logg.Error(ctx, "request.panic", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unhandled panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
