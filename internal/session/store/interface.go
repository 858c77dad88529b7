// Package store provides the key-value contract the session manager runs on, its
// Redis implementation and the retry policy wrapped around multi-write units.
package store

import (
	"context"
	"time"
)

// KVStore is a text-only key-value store with TTLs and sets.
//
// Values are opaque strings: implementations never interpret them, and the session
// manager owns all serialization. Every call is bounded by the implementation's
// per-call timeout; a timeout is reported as an ordinary (retryable) error.
type KVStore interface {
	// Get returns the value of key. The boolean is false when the key does not exist.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetWithExpiry stores value under key with the given TTL.
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error

	// Expire sets a new TTL on key. The boolean is false when the key does not exist.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Delete removes keys and returns how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)

	// AddToSet adds member to the set at key and refreshes the set TTL.
	AddToSet(ctx context.Context, key, member string, ttl time.Duration) error

	// RemoveFromSet removes member from the set at key.
	RemoveFromSet(ctx context.Context, key, member string) error

	// SetMembers returns the members of the set at key. A missing set is empty.
	SetMembers(ctx context.Context, key string) ([]string, error)

	// ScanKeys iterates keys matching pattern with a server-side cursor and calls fn once
	// per non-empty page. Iteration stops at the first error returned by fn.
	ScanKeys(ctx context.Context, pattern string, fn func(keys []string) error) error

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close() error
}

// Retrier runs a unit of work under the session store retry policy.
type Retrier interface {
	// Do runs fn until it succeeds, returns a permanent error, or the retry ceiling
	// is reached. Exhaustion is reported as domain.ErrStoreUnavailable.
	Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error
}
