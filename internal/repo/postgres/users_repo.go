package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsersRepo stores each user as one row whose todo list is a JSONB document,
// keeping the whole-document semantics of the mongo backend.
type UsersRepo struct {
	pool *pgxpool.Pool
	obs  observability.StoreObserver
}

func NewUsersRepo(pool *pgxpool.Pool, obs observability.StoreObserver) *UsersRepo {
	if obs == nil {
		obs = observability.NopObserver{}
	}

	return &UsersRepo{pool: pool, obs: obs}
}

const selectUser = `SELECT id::text, name, email, password_hash, todo_list, version FROM users`

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "users.find_by_email",
		selectUser+` WHERE email = $1 ORDER BY created_at LIMIT 1`, email)
}

// FindByID treats ids that are not UUIDs as absent.
func (r *UsersRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	return r.findOne(ctx, "users.find_by_id", selectUser+` WHERE id = $1`, id)
}

func (r *UsersRepo) findOne(ctx context.Context, op, query, arg string) (*user.User, error) {
	var (
		u     user.User
		raw   []byte
		found = true
	)

	err := r.obs.ObserveStore(op, func() error {
		err := r.pool.QueryRow(ctx, query, arg).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&raw,
			&u.Version,
		)

		if errors.Is(err, pgx.ErrNoRows) {
			found = false
			return nil
		}

		return err
	})

	if err != nil {
		return nil, fmt.Errorf("postgres %s: %w", op, err)
	}

	if !found {
		return nil, nil
	}

	if err := json.Unmarshal(raw, &u.TodoList); err != nil {
		return nil, fmt.Errorf("decode todo_list of user %s: %w", u.ID, err)
	}

	if u.TodoList == nil {
		u.TodoList = []todo.Todo{}
	}

	return &u, nil
}

func (r *UsersRepo) Save(ctx context.Context, u *user.User) (*user.User, error) {
	doc := u.Clone()

	for i := range doc.TodoList {
		if doc.TodoList[i].ID == "" {
			doc.TodoList[i].ID = uuid.NewString()
		}
	}

	list, err := json.Marshal(doc.Todos())
	if err != nil {
		return nil, fmt.Errorf("encode todo_list: %w", err)
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
		doc.Version = 0

		err = r.obs.ObserveStore("users.insert", func() error {
			_, err := r.pool.Exec(ctx,
				`INSERT INTO users (id, name, email, password_hash, todo_list, version)
				VALUES ($1, $2, $3, $4, $5::jsonb, 0)`,
				doc.ID, doc.Name, doc.Email, doc.PasswordHash, string(list),
			)
			return err
		})

		if err != nil {
			return nil, fmt.Errorf("postgres users.insert: %w", err)
		}

		return doc, nil
	}

	err = r.obs.ObserveStore("users.replace", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users
			SET name = $3, email = $4, password_hash = $5, todo_list = $6::jsonb,
				version = version + 1, updated_at = now()
			WHERE id = $1 AND version = $2`,
			doc.ID, doc.Version, doc.Name, doc.Email, doc.PasswordHash, string(list),
		)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return user.ErrVersionConflict
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("postgres users.replace: %w", err)
	}

	doc.Version++

	return doc, nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
