package identity

import (
	"strings"

	"github.com/veloramarket/cartsync-backend/pkg/enums"
	pkgerrors "github.com/veloramarket/cartsync-backend/pkg/errors"
)

// CartKey is the single canonical identity a cart record is keyed by:
// either a guest session id or an authenticated user id, never both.
type CartKey struct {
	Kind enums.CartOwnerKind
	ID   string
}

// IsZero reports whether no identity was derived.
func (k CartKey) IsZero() bool {
	return k.Kind == "" && k.ID == ""
}

// IsUser reports whether the key targets an authenticated user's cart.
func (k CartKey) IsUser() bool {
	return k.Kind == enums.CartOwnerUser
}

// String renders the key for log fields.
func (k CartKey) String() string {
	return string(k.Kind) + ":" + k.ID
}

// GuestKey builds a guest-owned cart key from a session identifier.
func GuestKey(sessionID string) (CartKey, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return CartKey{}, pkgerrors.New(pkgerrors.CodeValidation, "guest session id is required")
	}
	return CartKey{Kind: enums.CartOwnerGuest, ID: sessionID}, nil
}

// UserKey builds a user-owned cart key from an authenticated principal.
func UserKey(userID string) (CartKey, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return CartKey{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return CartKey{Kind: enums.CartOwnerUser, ID: userID}, nil
}

// Resolve derives the cart key for a request. An authenticated user always
// wins over a guest session header, so a request never targets an ambiguous
// cart.
func Resolve(userID, sessionID string) (CartKey, error) {
	if strings.TrimSpace(userID) != "" {
		return UserKey(userID)
	}
	return GuestKey(sessionID)
}
