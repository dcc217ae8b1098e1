package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig parses dbURL and caps the pool at maxConns; a non-positive
// maxConns keeps pgx's own default.
func PoolConfig(dbURL string, maxConns int) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)

	if err != nil {
		return nil, err
	}

	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	return cfg, nil
}

// NewPool opens the postgres pool once at startup and verifies connectivity.
func NewPool(dbURL string, maxConns int) (*pgxpool.Pool, error) {
	cfg, err := PoolConfig(dbURL, maxConns)

	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)

	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
