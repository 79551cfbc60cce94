package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is the durable key-value store holding serialized carts.
type Storage interface {
	// Get returns the stored payload and whether the key existed.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the payload, refreshing its expiry. A zero ttl keeps it forever.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// RedisStorage keeps carts as plain string values in Redis.
type RedisStorage struct {
	client redis.UniversalClient
}

// NewRedisStorage wraps a Redis client.
func NewRedisStorage(client redis.UniversalClient) *RedisStorage {
	return &RedisStorage{client: client}
}

// Get implements Storage.
func (s *RedisStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s == nil || s.client == nil {
		return nil, false, errors.New("cart: redis storage not configured")
	}
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set implements Storage.
func (s *RedisStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s == nil || s.client == nil {
		return errors.New("cart: redis storage not configured")
	}
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, key, value, ttl).Err()
}

// Delete implements Storage.
func (s *RedisStorage) Delete(ctx context.Context, key string) error {
	if s == nil || s.client == nil {
		return errors.New("cart: redis storage not configured")
	}
	return s.client.Del(ctx, key).Err()
}

// MemoryStorage is an in-process Storage used for local runs and tests.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	Now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStorage constructs an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: map[string]memoryEntry{}}
}

func (m *MemoryStorage) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Get implements Storage.
func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, true, nil
}

// Set implements Storage.
func (m *MemoryStorage) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = entry
	return nil
}

// Delete implements Storage.
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
