package cart

import (
	"net/http"

	"github.com/veloramarket/cartsync-backend/api/middleware"
	"github.com/veloramarket/cartsync-backend/api/responses"
	"github.com/veloramarket/cartsync-backend/api/validators"
	cartsvc "github.com/veloramarket/cartsync-backend/internal/cart"
	"github.com/veloramarket/cartsync-backend/internal/identity"
	pkgerrors "github.com/veloramarket/cartsync-backend/pkg/errors"
	"github.com/veloramarket/cartsync-backend/pkg/logger"
)

// GuestCartFetch returns the guest cart for the session header, creating an
// empty one on first access.
func GuestCartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		key, err := identity.GuestKey(middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetOrCreate(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartView(record))
	}
}

// CartSync reconciles the submitted local cart against the stored one.
func CartSync(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		key, err := resolveKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload SyncRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := toSyncInput(payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Sync(r.Context(), key, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSyncResponse(result))
	}
}

// CartMigrate folds the guest session's cart into the authenticated user's
// cart.
func CartMigrate(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		userKey, err := identity.UserKey(userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "migration requires an authenticated user"))
			return
		}

		var payload MigrateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clientItems, err := toItemInputs(payload.GuestCart)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		result, err := svc.MigrateGuestCart(r.Context(), userKey, sessionID, clientItems)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMigrateResponse(result))
	}
}

// CartClear deletes the caller's cart. Clearing an absent cart succeeds so
// the client can treat the call as fire-and-forget after checkout.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		key, err := resolveKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), key); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}

func resolveKey(r *http.Request) (identity.CartKey, error) {
	ctx := r.Context()
	return identity.Resolve(middleware.UserIDFromContext(ctx), middleware.SessionIDFromContext(ctx))
}
