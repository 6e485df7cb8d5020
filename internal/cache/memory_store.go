package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

var _ Store = (*MemoryStore)(nil)

// sweepThreshold - размер, после которого истекшие записи вычищаются целиком
const sweepThreshold = 10000

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// MemoryStore - замена Redis для работы в одном процессе (разработка, тесты,
// недоступный Redis). Данные не переживают рестарт.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	keys    *KeyBuilder
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		keys:    NewKeyBuilder(""),
		now:     time.Now,
	}
}

func (m *MemoryStore) Driver() string {
	return "memory"
}

func (m *MemoryStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if tokenID == "" {
		return false, NewCacheError("setnx", "", ErrInvalidCacheKey)
	}
	if ttl <= 0 {
		ttl = time.Second
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.keys.Revoked(tokenID)
	if _, ok := m.live(key); ok {
		return false, nil
	}
	m.entries[key] = &memoryEntry{count: 1, expiresAt: m.now().Add(ttl)}
	return true, nil
}

func (m *MemoryStore) SaveState(_ context.Context, state string, ttl time.Duration) error {
	if state == "" {
		return NewCacheError("setnx", "", ErrInvalidCacheKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepIfLarge()

	key := m.keys.State(state)
	if _, ok := m.live(key); ok {
		return NewCacheError("setnx", key, errors.New("state already exists"))
	}
	m.entries[key] = &memoryEntry{count: 1, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) ConsumeState(_ context.Context, state string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.keys.State(state)
	_, ok := m.live(key)
	delete(m.entries, key)
	return ok, nil
}

func (m *MemoryStore) IncrementRateLimit(_ context.Context, clientID string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepIfLarge()

	key := m.keys.RateLimit(clientID)
	entry, ok := m.live(key)
	if !ok {
		entry = &memoryEntry{expiresAt: m.now().Add(window)}
		m.entries[key] = entry
	}
	entry.count++
	return entry.count, nil
}

func (m *MemoryStore) HealthCheck(context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*memoryEntry)
	return nil
}

// live возвращает неистекшую запись, истекшую удаляет. Вызывается под mu.
func (m *MemoryStore) live(key string) (*memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return entry, true
}

func (m *MemoryStore) sweepIfLarge() {
	if len(m.entries) < sweepThreshold {
		return
	}
	now := m.now()
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}
