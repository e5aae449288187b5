package repository

import (
	"context"
	"time"
)

const revokedTokenPrefix = "auth:revoked:"

// StateStore holds short-lived auth state that must outlive a single request.
// Implementations: Redis (production) or in-memory (local dev / single instance).
type StateStore interface {
	// RevokeToken denies the token id until ttl elapses. A non-positive ttl is a no-op.
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	Ping(ctx context.Context) error
}
