// Package store defines the contracts for the shared TTL key/value store that
// backs sessions, one-time codes and pairing codes. The store (Redis in
// production) is the single source of truth; nothing here is cached across
// requests. Conditional writes and read-and-delete are first-class operations
// because the race-sensitive pairing logic depends on them.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a key is absent or already expired.
	ErrNotFound = errors.New("store: not found")
)

// Store is the root access interface. Concrete drivers (redis for production,
// memory for tests and dev mode) implement this. Sub-repositories keep the
// key schema for each concern in one place.
type Store interface {
	Sessions() Sessions
	OneTimeCodes() OneTimeCodes
	PairingCodes() PairingCodes
	States() States

	// Ping verifies the store connection is alive. Used by readiness checks.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// Sessions tracks the revocation blacklist and the single active refresh
// session per member. Store unavailability surfaces as an error from every
// method: authentication-critical checks fail closed, never "not revoked".
type Sessions interface {
	// Revoke blacklists a token id for ttl. Idempotent; revoking an already
	// revoked id keeps the marker.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error

	// IsRevoked reports whether the token id is on the blacklist.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// SetActiveRefresh stores token as the member's sole active refresh
	// session, overwriting any previous one.
	SetActiveRefresh(ctx context.Context, memberID int64, token string, ttl time.Duration) error

	// GetActiveRefresh returns the member's active refresh token, or
	// ErrNotFound when no session is live.
	GetActiveRefresh(ctx context.Context, memberID int64) (string, error)

	// ClearActiveRefresh drops the member's active session. Clearing an
	// absent session is not an error.
	ClearActiveRefresh(ctx context.Context, memberID int64) error
}

// OneTimeCodes bridges the OAuth redirect to the client's exchange call.
// Codes are consumed exactly once.
type OneTimeCodes interface {
	// Put stores code -> memberID with the given ttl.
	Put(ctx context.Context, code string, memberID int64, ttl time.Duration) error

	// Consume atomically reads and deletes the code. Of two concurrent
	// consumers at most one gets the member id; the other sees ErrNotFound.
	Consume(ctx context.Context, code string) (int64, error)
}

// PairingCodes holds the bidirectional pairing-code mappings and the advisory
// generation lock. The code->owner and owner->code entries are written
// conditionally (first writer wins) and share one TTL.
type PairingCodes interface {
	// CodeForOwner returns the live code owned by memberID, or ErrNotFound.
	CodeForOwner(ctx context.Context, memberID int64) (string, error)

	// OwnerForCode returns the owner of a live code, or ErrNotFound.
	OwnerForCode(ctx context.Context, code string) (int64, error)

	// PutOwnerCode writes owner->code only if no entry exists for the owner.
	// Returns false when an entry was already present.
	PutOwnerCode(ctx context.Context, memberID int64, code string, ttl time.Duration) (bool, error)

	// PutCodeOwner writes code->owner only if the code is unclaimed.
	// Returns false when another owner already holds the code.
	PutCodeOwner(ctx context.Context, code string, memberID int64, ttl time.Duration) (bool, error)

	// DeleteOwnerCode removes the owner->code entry. Used to roll back a
	// half-finished double write.
	DeleteOwnerCode(ctx context.Context, memberID int64) error

	// Consume atomically reads and deletes code->owner, then removes the
	// matching owner->code entry. A code that expired a moment earlier
	// reports ErrNotFound, never a stale owner.
	Consume(ctx context.Context, code string) (int64, error)

	// TryLock acquires the advisory per-member generation lock. The lock is
	// purely a contention reducer: its absence never proves no code exists,
	// and correctness never depends on holding it.
	TryLock(ctx context.Context, memberID int64, ttl time.Duration) (bool, error)

	// Unlock releases the advisory lock. Releasing an expired or never-held
	// lock is not an error.
	Unlock(ctx context.Context, memberID int64) error
}

// States is the anti-CSRF bridge for OAuth redirect flows: state -> return
// context, consumed once on callback.
type States interface {
	Put(ctx context.Context, state, returnTo string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (string, error)
}
