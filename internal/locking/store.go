// Package locking implements the conflict-avoidance lock: a time-boxed,
// advisory mutual exclusion keyed by (resource, interval) that guards the
// window between an availability check and the durable commit.
//
// Acquisition is a single atomic check-and-insert in every Store. A plain
// map without synchronization would let two racing callers both observe an
// absent key and both succeed, so MemoryStore serializes per shard and the
// Mongo and etcd stores rely on server-side uniqueness.
package locking

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrLockHeld means another owner holds an unexpired entry for the key.
	ErrLockHeld = errors.New("reservation window is held by another request")
	// ErrLeaseLost means the lease expired, was released, or belongs to someone else.
	ErrLeaseLost = errors.New("reservation lease expired or released")
)

// Key is the normalized composite key of a lock entry.
type Key string

// NewKey builds the key for a resource and interval. Instants are normalized
// to UTC so equal intervals in different locations share a key.
func NewKey(resourceID string, start, end time.Time) Key {
	return Key(fmt.Sprintf("%s:%s-%s",
		resourceID,
		start.UTC().Format(time.RFC3339Nano),
		end.UTC().Format(time.RFC3339Nano),
	))
}

// Entry describes the interval a key protects; stores that persist entries
// keep it alongside the key.
type Entry struct {
	Key        Key
	Owner      string
	ResourceID string
	Start      time.Time
	End        time.Time
}

// Store is the shared lock table. Implementations must make Acquire atomic and
// must treat expired entries as absent on every read path.
type Store interface {
	// Acquire inserts the entry with expiry now+ttl unless an unexpired entry
	// exists for its key. It reports false when the key is held.
	Acquire(ctx context.Context, entry Entry, ttl time.Duration) (bool, error)
	// Holder returns the owner of the unexpired entry for key.
	Holder(ctx context.Context, key Key) (string, bool, error)
	// Release removes the entry only if it is held by owner.
	Release(ctx context.Context, key Key, owner string) error
	// Claim atomically removes the unexpired entry held by owner and reports
	// whether it did. At most one caller can claim a given acquisition.
	Claim(ctx context.Context, key Key, owner string) (bool, error)
}

// Sweeper is implemented by stores that can purge expired entries in bulk.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}
