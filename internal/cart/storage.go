package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Storage keys. Each cart keeps its three parts under independent keys.
const (
	KeyItems           = "cartItems"
	KeyShippingAddress = "shippingAddress"
	KeyPaymentMethod   = "paymentMethod"
)

// Storage is durable string key/value storage scoped by cart id.
// Get reports ok=false for a key that was never written.
type Storage interface {
	Get(ctx context.Context, cartID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, cartID, key, value string) error
	Delete(ctx context.Context, cartID string, keys ...string) error
}

//
// --- In-memory storage ---
//

// MemoryStorage keeps carts in process memory. It is safe for concurrent use.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string]map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: make(map[string]map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, cartID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.carts[cartID][key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, cartID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, ok := m.carts[cartID]
	if !ok {
		entries = make(map[string]string, 3)
		m.carts[cartID] = entries
	}
	entries[key] = value
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, cartID string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, ok := m.carts[cartID]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(entries, k)
	}
	if len(entries) == 0 {
		delete(m.carts, cartID)
	}
	return nil
}

//
// --- Redis storage ---
//

// DefaultKeyPrefix namespaces cart keys in Redis.
const DefaultKeyPrefix = "shopkart:cart"

// RedisStorage stores each cart key as a plain Redis string. Every write
// refreshes the TTL of the written key so abandoned carts expire.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStorage wraps an existing client. A ttl of zero means keys never expire.
func NewRedisStorage(client *redis.Client, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, prefix: DefaultKeyPrefix, ttl: ttl}
}

// OpenRedis parses a redis:// URL, connects and pings.
func OpenRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (r *RedisStorage) key(cartID, key string) string {
	return r.prefix + ":" + cartID + ":" + key
}

func (r *RedisStorage) Get(ctx context.Context, cartID, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(cartID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, cartID, key, value string) error {
	if err := r.client.Set(ctx, r.key(cartID, key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, cartID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(cartID, k)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
