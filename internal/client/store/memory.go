package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and by short-lived tools
// that have no business persisting credentials to disk.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[Key]memoryEntry
	now   func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[Key]memoryEntry), now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, key Key) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.items[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key Key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.items[key] = e
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryStore) ClearAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range Keys {
		delete(m.items, k)
	}
	return nil
}

func (m *MemoryStore) SaveAuth(ctx context.Context, access, refresh, user string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := func(v string) memoryEntry {
		entry := memoryEntry{value: v}
		if ttl > 0 {
			entry.expiresAt = m.now().Add(ttl)
		}
		return entry
	}
	m.items[KeyAccessToken] = e(access)
	m.items[KeyRefreshToken] = e(refresh)
	m.items[KeyUser] = e(user)
	return nil
}
