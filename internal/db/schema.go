package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createUsers = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL DEFAULT '',
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	todo_list     JSONB NOT NULL DEFAULT '[]'::jsonb,
	version       BIGINT NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const createUsersEmailIndex = `CREATE INDEX IF NOT EXISTS users_email_idx ON users (email)`

// EnsureSchema creates the users table when the postgres backend is selected.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range []string{createUsers, createUsersEmailIndex} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
