package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type entry struct {
	value    any
	storedAt time.Time
}

// Memory is an in-process [Cache] bounded to a fixed number of entries.
// The least recently used entry is evicted once capacity is reached.
type Memory struct {
	entries *lru.Cache[string, entry]
	ttl     time.Duration
	now     func() time.Time
}

// MemoryOption configures a [Memory] cache.
type MemoryOption func(*Memory)

// WithClock overrides the time source used for freshness checks.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// WithTTL overrides [TTL].
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// NewMemory creates a [Memory] cache holding at most capacity entries.
// A non-positive capacity selects [DefaultCapacity].
func NewMemory(capacity int, opts ...MemoryOption) (*Memory, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	entries, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	m := &Memory{entries: entries, ttl: TTL, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Get returns the value stored under key if it is younger than the TTL.
// Stale entries stay until overwritten or evicted by capacity.
func (m *Memory) Get(_ context.Context, key string) (any, bool) {
	e, ok := m.entries.Get(key)
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.storedAt) >= m.ttl {
		return nil, false
	}
	return e.value, true
}

// Put stores value under key, replacing any previous entry.
func (m *Memory) Put(_ context.Context, key string, value any) {
	m.entries.Add(key, entry{value: value, storedAt: m.now()})
}

// Len returns the number of entries, including stale ones not yet evicted.
func (m *Memory) Len() int {
	return m.entries.Len()
}
