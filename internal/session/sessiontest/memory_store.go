// Package sessiontest provides an in-memory KVStore and a controllable clock for
// session tests.
package sessiontest

import (
	"context"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/clio-platform/clio/internal/session/store"
)

var _ store.KVStore = (*MemoryStore)(nil)

// Clock is a manually advanced clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type entry struct {
	value     string
	members   map[string]struct{}
	expiresAt time.Time
}

// FailFunc decides whether a store call fails. op is the method name.
type FailFunc func(op, key string) error

// MemoryStore is a concurrency-safe in-memory KVStore. Expiry follows the Clock.
type MemoryStore struct {
	mu       sync.Mutex
	clock    *Clock
	data     map[string]*entry
	fail     FailFunc
	pageSize int
	calls    map[string]int
}

// NewMemoryStore creates an empty store driven by clock.
func NewMemoryStore(clock *Clock) *MemoryStore {
	return &MemoryStore{
		clock:    clock,
		data:     make(map[string]*entry),
		pageSize: 10,
		calls:    make(map[string]int),
	}
}

// Clock returns the clock driving expiry.
func (m *MemoryStore) Clock() *Clock {
	return m.clock
}

// SetFailFunc installs a failure injector. Pass nil to clear it.
func (m *MemoryStore) SetFailFunc(fn FailFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fn
}

// Calls returns how many times op was invoked.
func (m *MemoryStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// TTL returns the remaining lifetime of key, or zero when it does not exist.
func (m *MemoryStore) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.live(key)
	if e == nil {
		return 0
	}
	return e.expiresAt.Sub(m.clock.Now())
}

// Keys returns all live keys, sorted.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if m.live(k) != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Put writes a raw value, bypassing failure injection, for seeding corrupt data.
func (m *MemoryStore) Put(key, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = &entry{value: value, expiresAt: m.clock.Now().Add(ttl)}
}

// live returns the entry for key if it has not expired. Caller holds mu.
func (m *MemoryStore) live(key string) *entry {
	e, ok := m.data[key]
	if !ok {
		return nil
	}
	if !m.clock.Now().Before(e.expiresAt) {
		delete(m.data, key)
		return nil
	}
	return e
}

// enter records the call and applies failure injection. Caller holds mu.
func (m *MemoryStore) enter(ctx context.Context, op, key string) error {
	m.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.fail != nil {
		return m.fail(op, key)
	}
	return nil
}

// Get implements store.KVStore.
func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "Get", key); err != nil {
		return "", false, err
	}
	e := m.live(key)
	if e == nil || e.members != nil {
		return "", false, nil
	}
	return e.value, true, nil
}

// SetWithExpiry implements store.KVStore.
func (m *MemoryStore) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "SetWithExpiry", key); err != nil {
		return err
	}
	m.data[key] = &entry{value: value, expiresAt: m.clock.Now().Add(ttl)}
	return nil
}

// Expire implements store.KVStore.
func (m *MemoryStore) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "Expire", key); err != nil {
		return false, err
	}
	e := m.live(key)
	if e == nil {
		return false, nil
	}
	e.expiresAt = m.clock.Now().Add(ttl)
	return true, nil
}

// Delete implements store.KVStore.
func (m *MemoryStore) Delete(ctx context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, key := range keys {
		if err := m.enter(ctx, "Delete", key); err != nil {
			return n, err
		}
		if m.live(key) != nil {
			delete(m.data, key)
			n++
		}
	}
	return n, nil
}

// AddToSet implements store.KVStore.
func (m *MemoryStore) AddToSet(ctx context.Context, key, member string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "AddToSet", key); err != nil {
		return err
	}
	e := m.live(key)
	if e == nil || e.members == nil {
		e = &entry{members: make(map[string]struct{})}
		m.data[key] = e
	}
	e.members[member] = struct{}{}
	e.expiresAt = m.clock.Now().Add(ttl)
	return nil
}

// RemoveFromSet implements store.KVStore.
func (m *MemoryStore) RemoveFromSet(ctx context.Context, key, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "RemoveFromSet", key); err != nil {
		return err
	}
	if e := m.live(key); e != nil && e.members != nil {
		delete(e.members, member)
		if len(e.members) == 0 {
			delete(m.data, key)
		}
	}
	return nil
}

// SetMembers implements store.KVStore.
func (m *MemoryStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter(ctx, "SetMembers", key); err != nil {
		return nil, err
	}
	e := m.live(key)
	if e == nil || e.members == nil {
		return []string{}, nil
	}
	members := make([]string, 0, len(e.members))
	for member := range e.members {
		members = append(members, member)
	}
	sort.Strings(members)
	return members, nil
}

// ScanKeys implements store.KVStore. Matching keys are snapshotted and handed to fn in
// small pages without holding the lock, so fn may call back into the store.
func (m *MemoryStore) ScanKeys(ctx context.Context, pattern string, fn func(keys []string) error) error {
	m.mu.Lock()
	if err := m.enter(ctx, "ScanKeys", pattern); err != nil {
		m.mu.Unlock()
		return err
	}
	var matched []string
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok && m.live(key) != nil {
			matched = append(matched, key)
		}
	}
	pageSize := m.pageSize
	m.mu.Unlock()

	sort.Strings(matched)
	for start := 0; start < len(matched); start += pageSize {
		end := start + pageSize
		if end > len(matched) {
			end = len(matched)
		}
		if err := fn(matched[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// Ping implements store.KVStore.
func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enter(ctx, "Ping", "")
}

// Close implements store.KVStore.
func (m *MemoryStore) Close() error {
	return nil
}
