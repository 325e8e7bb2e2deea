package middleware

import (
	"fmt"
	"net/http"

	"github.com/veloramarket/cartsync-backend/api/responses"
	pkgerrors "github.com/veloramarket/cartsync-backend/pkg/errors"
	"github.com/veloramarket/cartsync-backend/pkg/logger"
)

// Recoverer converts a handler panic into a 500 envelope. The request route
// and the cart session header are logged so a crashing sync can be traced
// back to the cart it was reconciling.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err := fmt.Errorf("panic: %v", rec)
					ctx := r.Context()
					if logg != nil {
						fields := map[string]any{
							"panic":  rec,
							"method": r.Method,
							"path":   r.URL.Path,
						}
						if sessionID := r.Header.Get(SessionHeader); sessionID != "" {
							fields["cart_session_id"] = sessionID
						}
						ctx = logg.WithFields(ctx, fields)
						logg.Error(ctx, "panic.recovered", err)
					}
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
