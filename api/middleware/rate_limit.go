package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/veloramarket/cartsync-backend/api/responses"
	pkgerrors "github.com/veloramarket/cartsync-backend/pkg/errors"
	"github.com/veloramarket/cartsync-backend/pkg/logger"
)

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// SyncRateLimit throttles cart mutations per identity within a fixed
// window. Requests with neither a user nor a session fall back to the
// client address so an anonymous flood is still bounded.
func SyncRateLimit(store rateLimiterStore, limit int, window time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || limit <= 0 || window <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			scope := "cart:" + rateScope(r)
			allowed, _, err := store.FixedWindowAllow(r.Context(), scope, int64(limit), window)
			if err != nil {
				// Throttling is protective, not load-bearing; on a limiter
				// outage the request proceeds.
				if logg != nil {
					logg.Error(r.Context(), "rate limiter unavailable", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many cart requests"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateScope(r *http.Request) string {
	if userID := UserIDFromContext(r.Context()); userID != "" {
		return "user:" + userID
	}
	if sessionID := SessionIDFromContext(r.Context()); sessionID != "" {
		return "guest:" + sessionID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
