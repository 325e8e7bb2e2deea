package middleware

import (
	"net/http"

	"github.com/veloramarket/cartsync-backend/api/validators"
	"github.com/veloramarket/cartsync-backend/pkg/logger"
)

// SessionHeader carries the guest cart session identifier.
const SessionHeader = "X-Cart-Session"

const maxSessionIDLen = 128

// GuestSession lifts the guest session header into the request context. It
// never rejects: cart identity resolution decides whether a request without
// one is acceptable.
func GuestSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := validators.SanitizeString(r.Header.Get(SessionHeader), maxSessionIDLen)
			if sessionID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
