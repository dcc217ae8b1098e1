package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo keeps user documents in process. Used for local runs and tests.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]*user.User
	order []string
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]*user.User),
	}
}

func (r *UsersRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// first registered wins, like a collection scan in insertion order
	for _, id := range r.order {
		if u := r.items[id]; u.Email == email {
			return u.Clone(), nil
		}
	}

	return nil, nil
}

func (r *UsersRepo) FindByID(_ context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return nil, nil
	}

	return u.Clone(), nil
}

func (r *UsersRepo) Save(_ context.Context, u *user.User) (*user.User, error) {
	doc := u.Clone()
	assignTodoIDs(doc)

	r.mu.Lock()
	defer r.mu.Unlock()

	if doc.ID == "" {
		doc.ID = uuid.NewString()
		doc.Version = 0
		r.items[doc.ID] = doc
		r.order = append(r.order, doc.ID)

		return doc.Clone(), nil
	}

	current, ok := r.items[doc.ID]
	if !ok || current.Version != doc.Version {
		return nil, user.ErrVersionConflict
	}

	doc.Version++
	r.items[doc.ID] = doc

	return doc.Clone(), nil
}

func (r *UsersRepo) Ping(context.Context) error {
	return nil
}

func assignTodoIDs(u *user.User) {
	for i := range u.TodoList {
		if strings.TrimSpace(u.TodoList[i].ID) == "" {
			u.TodoList[i].ID = uuid.NewString()
		}
	}
}
