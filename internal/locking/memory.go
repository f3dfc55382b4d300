package locking

import (
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"rentals/pkg/clock"
)

const shardCount = 64

type memoryEntry struct {
	owner     string
	expiresAt time.Time
}

type memoryShard struct {
	mu      sync.Mutex
	entries map[Key]memoryEntry
}

// MemoryStore is an in-process Store. Keys are spread over independently
// locked shards so acquisitions on unrelated keys rarely contend. It is only
// correct when every workflow instance shares the same process.
type MemoryStore struct {
	clock  clock.Clock
	shards [shardCount]*memoryShard
}

func NewMemoryStore(clk clock.Clock) *MemoryStore {
	s := &MemoryStore{clock: clk}
	for i := range s.shards {
		s.shards[i] = &memoryShard{entries: make(map[Key]memoryEntry)}
	}
	return s
}

func (s *MemoryStore) shardFor(key Key) *memoryShard {
	return s.shards[xxhash.Sum64String(string(key))%shardCount]
}

// purgeLocked drops expired entries; the shard mutex must be held.
func (sh *memoryShard) purgeLocked(now time.Time) int {
	purged := 0
	for k, e := range sh.entries {
		if !now.Before(e.expiresAt) {
			delete(sh.entries, k)
			purged++
		}
	}
	return purged
}

func (s *MemoryStore) Acquire(_ context.Context, entry Entry, ttl time.Duration) (bool, error) {
	sh := s.shardFor(entry.Key)
	now := s.clock.Now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.purgeLocked(now)
	if _, held := sh.entries[entry.Key]; held {
		return false, nil
	}
	sh.entries[entry.Key] = memoryEntry{owner: entry.Owner, expiresAt: now.Add(ttl)}
	return true, nil
}

func (s *MemoryStore) Holder(_ context.Context, key Key) (string, bool, error) {
	sh := s.shardFor(key)
	now := s.clock.Now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		return "", false, nil
	}
	return e.owner, true, nil
}

func (s *MemoryStore) Release(_ context.Context, key Key, owner string) error {
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if e, ok := sh.entries[key]; ok && e.owner == owner {
		delete(sh.entries, key)
	}
	return nil
}

func (s *MemoryStore) Claim(_ context.Context, key Key, owner string) (bool, error) {
	sh := s.shardFor(key)
	now := s.clock.Now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[key]
	if !ok || e.owner != owner || !now.Before(e.expiresAt) {
		return false, nil
	}
	delete(sh.entries, key)
	return true, nil
}

// Sweep purges expired entries from every shard.
func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	now := s.clock.Now()
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += sh.purgeLocked(now)
		sh.mu.Unlock()
	}
	return total, nil
}

// Len counts unexpired entries.
func (s *MemoryStore) Len() int {
	now := s.clock.Now()
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, e := range sh.entries {
			if now.Before(e.expiresAt) {
				n++
			}
		}
		sh.mu.Unlock()
	}
	return n
}
