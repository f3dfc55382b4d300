package locking

import (
	"context"
	"fmt"
	"math"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdLockPrefix is the key space used for reservation locks in etcd.
const EtcdLockPrefix = "/rentals/locks/"

// EtcdStore attaches every entry to a lease with the requested TTL and inserts
// it with a compare-and-put transaction, so only one writer can create a key
// and etcd drops it when the lease runs out. Lease TTLs have one second
// granularity; shorter TTLs are rounded up.
type EtcdStore struct {
	client *clientv3.Client
}

func NewEtcdStore(client *clientv3.Client) *EtcdStore {
	return &EtcdStore{client: client}
}

func etcdKey(key Key) string {
	return EtcdLockPrefix + string(key)
}

func leaseSeconds(ttl time.Duration) int64 {
	return max(1, int64(math.Ceil(ttl.Seconds())))
}

func (s *EtcdStore) Acquire(ctx context.Context, entry Entry, ttl time.Duration) (bool, error) {
	lease, err := s.client.Grant(ctx, leaseSeconds(ttl))
	if err != nil {
		return false, fmt.Errorf("failed to grant lease for %s: %w", entry.Key, err)
	}

	k := etcdKey(entry.Key)
	resp, err := s.client.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(k), "=", 0)).
		Then(clientv3.OpPut(k, entry.Owner, clientv3.WithLease(lease.ID))).
		Commit()
	if err != nil {
		_, _ = s.client.Revoke(ctx, lease.ID)
		return false, fmt.Errorf("failed to acquire etcd lock %s: %w", entry.Key, err)
	}
	if !resp.Succeeded {
		_, _ = s.client.Revoke(ctx, lease.ID)
		return false, nil
	}
	return true, nil
}

func (s *EtcdStore) Holder(ctx context.Context, key Key) (string, bool, error) {
	resp, err := s.client.Get(ctx, etcdKey(key))
	if err != nil {
		return "", false, fmt.Errorf("failed to read etcd lock %s: %w", key, err)
	}
	if len(resp.Kvs) == 0 {
		return "", false, nil
	}
	return string(resp.Kvs[0].Value), true, nil
}

func (s *EtcdStore) Release(ctx context.Context, key Key, owner string) error {
	k := etcdKey(key)
	_, err := s.client.Txn(ctx).
		If(clientv3.Compare(clientv3.Value(k), "=", owner)).
		Then(clientv3.OpDelete(k)).
		Commit()
	if err != nil {
		return fmt.Errorf("failed to release etcd lock %s: %w", key, err)
	}
	return nil
}

// Claim deletes the key only if it still carries owner. Expired keys are
// already gone with their lease, so the comparison fails for them.
func (s *EtcdStore) Claim(ctx context.Context, key Key, owner string) (bool, error) {
	k := etcdKey(key)
	resp, err := s.client.Txn(ctx).
		If(clientv3.Compare(clientv3.Value(k), "=", owner)).
		Then(clientv3.OpDelete(k)).
		Commit()
	if err != nil {
		return false, fmt.Errorf("failed to claim etcd lock %s: %w", key, err)
	}
	return resp.Succeeded, nil
}
