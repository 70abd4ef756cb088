package cache

import (
	"context"
	"sync"
	"time"
)

// entry stores one cached value with expiry.
type entry struct {
	expiresAt time.Time
	value     []byte
}

// Memory is an in-process Store. When it grows past MaxItems it drops
// expired entries first and then arbitrary ones.
type Memory struct {
	MaxItems int
	// Now defaults to time.Now.
	Now func() time.Time

	mu    sync.RWMutex
	items map[string]entry
}

func NewMemory(maxItems int) *Memory {
	return &Memory{MaxItems: maxItems, items: make(map[string]entry)}
}

func (m *Memory) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := m.now()

	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !now.Before(e.expiresAt) {
		m.mu.Lock()
		if cur, ok := m.items[key]; ok && !now.Before(cur.expiresAt) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.items == nil {
		m.items = make(map[string]entry)
	}
	m.items[key] = entry{expiresAt: now.Add(ttl), value: value}

	if m.MaxItems > 0 && len(m.items) > m.MaxItems {
		for k, v := range m.items {
			if !now.Before(v.expiresAt) {
				delete(m.items, k)
			}
		}
		// still too big: delete arbitrary keys, sparing the one just set
		for k := range m.items {
			if len(m.items) <= m.MaxItems {
				break
			}
			if k == key {
				continue
			}
			delete(m.items, k)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
