// Package blocklist tracks revoked token ids until their natural expiry.
//
// Entries are stored in Redis with a TTL equal to the token's remaining
// lifetime (bounded by a configured maximum), so storage never grows beyond
// the revocation rate times the token lifetime window.
package blocklist

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a failure to reach the backing store. Callers must
// treat it as a distinct outcome: it never means "not revoked".
var ErrUnavailable = errors.New("blocklist: store unavailable")

// Store is the revocation-store contract the session guard depends on.
type Store interface {
	// Revoke inserts a revocation marker for the token id. Idempotent.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked reports whether the token id has been revoked. A store
	// outage surfaces as ErrUnavailable, not as (false, nil).
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
