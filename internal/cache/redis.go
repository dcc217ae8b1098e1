package cache

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/todohub/internal/redisclient"
	"github.com/redis/go-redis/v9"
)

// Redis shares cached documents across API instances.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(client *redisclient.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Redis{rdb: client.Raw(), ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()

	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte) error {
	return r.rdb.Set(ctx, key, val, r.ttl).Err()
}

func (r *Redis) Add(ctx context.Context, key string, val []byte) error {
	return r.rdb.SetNX(ctx, key, val, r.ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}
