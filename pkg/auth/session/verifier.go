package session

import (
	"context"
	"fmt"
	"strings"

	redisclient "github.com/veloramarket/cartsync-backend/pkg/redis"
)

type sessionStore interface {
	Exists(ctx context.Context, key string) (bool, error)
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Verifier answers whether an access token's session is still live. Session
// creation and revocation belong to the auth service; this side only reads.
type Verifier struct {
	store sessionStore
	keyer sessionKeyer
}

// NewVerifier constructs a session verifier backed by Redis.
func NewVerifier(client *redisclient.Client) (*Verifier, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return &Verifier{store: client, keyer: client}, nil
}

// HasSession reports whether the session keyed by the token's jti exists.
func (v *Verifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, fmt.Errorf("access id is required")
	}
	return v.store.Exists(ctx, v.keyer.AccessSessionKey(accessID))
}
