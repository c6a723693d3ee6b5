package cache

import (
	"context"
	"path"
	"sort"
	"sync"
	"time"
)

// MemoryStore is the in-process fallback backend. It is shared across
// concurrent requests within one process and is not crash-durable.
// Expired entries are reaped by per-key timers and double-checked on read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	timers  map[string]*time.Timer
	closed  bool
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		timers:  make(map[string]*time.Timer),
	}
}

// Set stores value under key for ttl. A second Set on the same key is
// last-write-wins and resets the eviction timer.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}

	m.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: time.Now().Add(ttl),
	}

	if t, ok := m.timers[key]; ok {
		t.Stop()
	}
	m.timers[key] = time.AfterFunc(ttl, func() { m.evict(key) })
	return nil
}

// Get returns the live value for key, or ok=false when missing or expired.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	// The timer may not have fired yet; honor the deadline regardless.
	if !time.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

// Keys returns the live keys matching the glob pattern, sorted.
func (m *MemoryStore) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var out []string
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			continue
		}
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Close stops all eviction timers and drops the entries.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	for _, t := range m.timers {
		t.Stop()
	}
	m.timers = make(map[string]*time.Timer)
	m.entries = make(map[string]memoryEntry)
	return nil
}

func (m *MemoryStore) evict(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return
	}
	if !time.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		delete(m.timers, key)
	}
}
