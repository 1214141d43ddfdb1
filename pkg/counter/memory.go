package counter

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// Memory is a process-local Store. Counts are not shared across instances, so
// limits enforced through it are per-instance approximations.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemory returns an empty in-process counter store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// IncrWithTTL increments key, starting a fresh window when the key is absent
// or its previous window has expired.
func (m *Memory) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, ok := m.entries[key]
	if !ok || (!entry.expiresAt.IsZero() && now.After(entry.expiresAt)) {
		entry = &memoryEntry{}
		if ttl > 0 {
			entry.expiresAt = now.Add(ttl)
		}
		m.entries[key] = entry
	}
	entry.count++

	m.sweepLocked(now)
	return entry.count, nil
}

// sweepLocked drops expired windows so the map does not grow unbounded.
func (m *Memory) sweepLocked(now time.Time) {
	if len(m.entries) < 4096 {
		return
	}
	for key, entry := range m.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}
