package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache stores opaque encoded values under string keys with a fixed TTL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	// Add stores val only when key holds no live entry.
	Add(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process Cache for single-instance deployments.
type Memory struct {
	c *gocache.Cache
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Memory{c: gocache.New(ttl, 2*ttl)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}

	b, ok := v.([]byte)

	return b, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte) error {
	m.c.SetDefault(key, val)
	return nil
}

func (m *Memory) Add(_ context.Context, key string, val []byte) error {
	// go-cache errors on a live key and leaves it untouched.
	_ = m.c.Add(key, val, gocache.DefaultExpiration)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// UserKey is the cache key of a user document.
func UserKey(id string) string {
	return "users:v1:id=" + id
}
