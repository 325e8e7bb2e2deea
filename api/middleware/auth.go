package middleware

import (
	"net/http"
	"strings"

	"github.com/veloramarket/cartsync-backend/api/responses"
	pkgauth "github.com/veloramarket/cartsync-backend/pkg/auth"
	"github.com/veloramarket/cartsync-backend/pkg/auth/session"
	"github.com/veloramarket/cartsync-backend/pkg/config"
	pkgerrors "github.com/veloramarket/cartsync-backend/pkg/errors"
	"github.com/veloramarket/cartsync-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// authenticated user.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			authenticate(cfg, verifier, logg, token, next, w, r)
		})
	}
}

// OptionalAuth authenticates when credentials are presented and lets the
// request through as a guest otherwise. Cart endpoints serve both audiences;
// a bad token is still rejected rather than downgrading to guest.
func OptionalAuth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			authenticate(cfg, verifier, logg, token, next, w, r)
		})
	}
}

func authenticate(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger, token string, next http.Handler, w http.ResponseWriter, r *http.Request) {
	claims, err := pkgauth.ParseAccessToken(cfg, token)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
		return
	}

	if claims.ID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
		return
	}

	if verifier != nil {
		ok, err := verifier.HasSession(r.Context(), claims.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
			return
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
			return
		}
	}

	ctx := WithUserID(r.Context(), claims.UserID.String())
	if logg != nil {
		ctx = logg.WithUserID(ctx, claims.UserID.String())
	}

	next.ServeHTTP(w, r.WithContext(ctx))
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
