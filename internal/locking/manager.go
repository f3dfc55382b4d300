package locking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rentals/internal/metrics"
	"rentals/pkg/clock"
	"rentals/pkg/logger"
)

const DefaultTTL = 15 * time.Minute

// Lease is proof of a successful acquisition. Owner is a random token, so a
// lease can only be validated or released by whoever received it.
type Lease struct {
	Key        Key       `json:"key"`
	Owner      string    `json:"owner"`
	ResourceID string    `json:"resource_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type Manager struct {
	store Store
	clock clock.Clock
	ttl   time.Duration
	log   *logger.Logger
}

type ManagerOption func(*Manager)

// WithTTL overrides the default hold duration.
func WithTTL(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

func NewManager(store Store, clk clock.Clock, log *logger.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		store: store,
		clock: clk,
		ttl:   DefaultTTL,
		log:   log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Acquire reports whether the (resource, interval) window was free and is now
// held for ttl. A non-positive ttl uses the manager default.
func (m *Manager) Acquire(ctx context.Context, resourceID string, start, end time.Time, ttl time.Duration) (bool, error) {
	_, err := m.Hold(ctx, resourceID, start, end, ttl)
	if errors.Is(err, ErrLockHeld) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Hold acquires the window and returns the lease, or ErrLockHeld.
func (m *Manager) Hold(ctx context.Context, resourceID string, start, end time.Time, ttl time.Duration) (*Lease, error) {
	if ttl <= 0 {
		ttl = m.ttl
	}

	entry := Entry{
		Key:        NewKey(resourceID, start, end),
		Owner:      uuid.NewString(),
		ResourceID: resourceID,
		Start:      start,
		End:        end,
	}
	now := m.clock.Now()

	ok, err := m.store.Acquire(ctx, entry, ttl)
	if err != nil {
		metrics.LockAcquisitionsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		metrics.LockAcquisitionsTotal.WithLabelValues("held").Inc()
		m.log.Debug("Reservation window already held", "key", entry.Key)
		return nil, ErrLockHeld
	}

	metrics.LockAcquisitionsTotal.WithLabelValues("acquired").Inc()
	return &Lease{
		Key:        entry.Key,
		Owner:      entry.Owner,
		ResourceID: resourceID,
		Start:      start,
		End:        end,
		ExpiresAt:  now.Add(ttl),
	}, nil
}

// checkLease rejects leases that cannot be live without asking the store. The
// key is recomputed because a handle carries the lease's fields separately and
// must not be able to point its key at another window.
func (m *Manager) checkLease(lease *Lease) error {
	if lease == nil {
		return ErrLeaseLost
	}
	if lease.Key != NewKey(lease.ResourceID, lease.Start, lease.End) {
		return fmt.Errorf("%w: key does not match interval", ErrLeaseLost)
	}
	if !m.clock.Now().Before(lease.ExpiresAt) {
		return ErrLeaseLost
	}
	return nil
}

// Validate confirms the lease still holds its window: it is unexpired, its key
// matches its resource and interval, and the store still lists its owner.
func (m *Manager) Validate(ctx context.Context, lease *Lease) error {
	if err := m.checkLease(lease); err != nil {
		return err
	}

	owner, ok, err := m.store.Holder(ctx, lease.Key)
	if err != nil {
		return fmt.Errorf("failed to validate lock: %w", err)
	}
	if !ok || owner != lease.Owner {
		return ErrLeaseLost
	}
	return nil
}

// Claim consumes the lease: the window entry is removed and no later Claim or
// Validate for the same lease can succeed. Exactly one of any number of
// concurrent claimers gets a nil error.
func (m *Manager) Claim(ctx context.Context, lease *Lease) error {
	if err := m.checkLease(lease); err != nil {
		return err
	}

	claimed, err := m.store.Claim(ctx, lease.Key, lease.Owner)
	if err != nil {
		return fmt.Errorf("failed to claim lock: %w", err)
	}
	if !claimed {
		return ErrLeaseLost
	}
	return nil
}

// Release frees the window immediately. Releasing a lease that already
// expired or was taken over is a no-op.
func (m *Manager) Release(ctx context.Context, lease *Lease) error {
	if lease == nil {
		return nil
	}
	if err := m.store.Release(ctx, lease.Key, lease.Owner); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
