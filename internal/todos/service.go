package todos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/todohub/internal/config"
	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
)

const defaultMaxAttempts = 3

type UserStore interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
	Save(ctx context.Context, u *user.User) (*user.User, error)
}

// Service runs todo operations against the list owned by one user id.
// Mutations load the document, change it in memory and save it with a
// version check, retrying from a fresh load when another writer won.
type Service struct {
	users       UserStore
	now         func() time.Time
	loc         *time.Location
	timeout     time.Duration
	maxAttempts int
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone in which "today" is computed.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithMaxAttempts(n int) Option {
	return func(s *Service) { s.maxAttempts = n }
}

func NewService(users UserStore, opts ...Option) *Service {
	s := &Service{
		users:       users,
		now:         time.Now,
		loc:         time.Local,
		timeout:     3 * time.Second,
		maxAttempts: defaultMaxAttempts,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.maxAttempts < 1 {
		s.maxAttempts = 1
	}

	return s
}

// Today is the current date key, computed per call.
func (s *Service) Today() string {
	return todo.Today(s.now(), s.loc)
}

func (s *Service) List(ctx context.Context, userID string) ([]todo.Todo, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	return u.Todos(), nil
}

// ListByDate returns items whose date equals date; an empty date means today.
func (s *Service) ListByDate(ctx context.Context, userID, date string) ([]todo.Todo, error) {
	effective := date
	if effective == "" {
		effective = s.Today()
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	return todo.FilterByDate(u.Todos(), effective), nil
}

// Add appends an item dated today.
func (s *Service) Add(ctx context.Context, userID, task string) ([]todo.Todo, error) {
	return s.mutate(ctx, userID, func(items []todo.Todo) []todo.Todo {
		return todo.Append(items, todo.New(s.Today(), task))
	})
}

// AddWithDate appends an item with the caller's date stored verbatim.
func (s *Service) AddWithDate(ctx context.Context, userID, task, date string) ([]todo.Todo, error) {
	return s.mutate(ctx, userID, func(items []todo.Todo) []todo.Todo {
		return todo.Append(items, todo.New(date, task))
	})
}

// Delete removes the item with id. Unknown ids leave the list unchanged.
func (s *Service) Delete(ctx context.Context, userID, id string) ([]todo.Todo, error) {
	return s.mutate(ctx, userID, func(items []todo.Todo) []todo.Todo {
		return todo.Remove(items, id)
	})
}

type UpdateInput struct {
	ID   string
	Task string
}

// Update flips completion of the matching item and replaces its task when a
// non-empty one is given. Unknown ids leave the list unchanged.
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) ([]todo.Todo, error) {
	return s.mutate(ctx, userID, func(items []todo.Todo) []todo.Todo {
		out, _ := todo.Toggle(items, in.ID, in.Task)
		return out
	})
}

func (s *Service) load(ctx context.Context, userID string) (*user.User, error) {
	cctx, cancel := config.WithTimeout(ctx, s.timeout)
	defer cancel()

	u, err := s.users.FindByID(cctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if u == nil {
		return nil, user.ErrNotFound
	}

	return u, nil
}

func (s *Service) mutate(ctx context.Context, userID string, change func([]todo.Todo) []todo.Todo) ([]todo.Todo, error) {
	var lastErr error

	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		u, err := s.load(ctx, userID)
		if err != nil {
			return nil, err
		}

		u.TodoList = change(u.Todos())

		saved, err := s.save(ctx, u)

		if errors.Is(err, user.ErrVersionConflict) {
			lastErr = err
			continue
		}

		if err != nil {
			return nil, err
		}

		return saved.Todos(), nil
	}

	return nil, fmt.Errorf("save todo list after %d attempts: %w", s.maxAttempts, lastErr)
}

func (s *Service) save(ctx context.Context, u *user.User) (*user.User, error) {
	cctx, cancel := config.WithTimeout(ctx, s.timeout)
	defer cancel()

	saved, err := s.users.Save(cctx, u)
	if err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	return saved, nil
}
