package favorites

import (
	"context"
	"errors"
	"io/fs"
	"sync"

	"github.com/matst80/casa-finder/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by a backend when nothing was stored under the key.
var ErrNotFound = errors.New("favorites not found")

// Backend stores the raw json list of favorite ids.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(addr, password string, db int) *RedisBackend {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisBackend{client: rdb}
}

func NewRedisBackendFromClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

// Save stores the list without expiration, favorites outlive sessions.
func (r *RedisBackend) Save(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, key, data, 0).Err()
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

// DiskBackend keeps one json file per key below the storage root.
type DiskBackend struct {
	storage *storage.DiskStorage
}

func NewDiskBackend(ds *storage.DiskStorage) *DiskBackend {
	return &DiskBackend{storage: ds}
}

func fileName(key string) string {
	return "favorites/" + key + ".json"
}

func (d *DiskBackend) Load(_ context.Context, key string) ([]byte, error) {
	data, err := d.storage.ReadFile(fileName(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (d *DiskBackend) Save(_ context.Context, key string, data []byte) error {
	return d.storage.WriteFile(fileName(key), data)
}

type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string][]byte
	Saves  int
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryBackend) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), data...)
	m.Saves++
	return nil
}
