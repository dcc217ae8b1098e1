package user

import (
	"context"
	"errors"

	"github.com/geocoder89/todohub/internal/domain/todo"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already exists")
	ErrVersionConflict = errors.New("user document was modified concurrently")
)

// User owns its todo list exclusively. Version backs compare-and-swap saves.
type User struct {
	ID           string      `json:"_id" bson:"_id"`
	Name         string      `json:"name" bson:"name"`
	Email        string      `json:"email" bson:"email"`
	PasswordHash string      `json:"-" bson:"password"` // never expose hash in JSON
	TodoList     []todo.Todo `json:"todoList" bson:"todoList"`
	Version      int64       `json:"-" bson:"__v"`
}

func New(name, email, passwordHash string) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		TodoList:     []todo.Todo{},
	}
}

// Todos returns the list, never nil, so it always encodes as a JSON array.
func (u *User) Todos() []todo.Todo {
	if u == nil || u.TodoList == nil {
		return []todo.Todo{}
	}

	return u.TodoList
}

// Clone deep-copies the user so callers cannot alias a store's list.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}

	c := *u
	c.TodoList = make([]todo.Todo, len(u.TodoList))
	copy(c.TodoList, u.TodoList)

	return &c
}

// Store is the document store seen by the rest of the service.
// Lookups return (nil, nil) when nothing matches. Save inserts a user without
// an id and otherwise replaces the whole document if Version still matches,
// failing with ErrVersionConflict when it does not.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Save(ctx context.Context, u *User) (*User, error)
	Ping(ctx context.Context) error
}
