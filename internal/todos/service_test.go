package todos

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...Option) (*Service, *memory.UsersRepo, string) {
	t.Helper()

	store := memory.NewUsersRepo()
	u, err := store.Save(context.Background(), user.New("Ann", "ann@example.com", "hash"))
	require.NoError(t, err)

	opts = append([]Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	}, opts...)

	return NewService(store, opts...), store, u.ID
}

func TestService_AddKeepsInsertionOrder(t *testing.T) {
	svc, _, id := newTestService(t)
	ctx := context.Background()

	tasks := []string{"one", "two", "three", "four", "five"}
	for _, task := range tasks {
		_, err := svc.Add(ctx, id, task)
		require.NoError(t, err)
	}

	items, err := svc.List(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, len(tasks))

	seen := map[string]bool{}
	for i, item := range items {
		assert.Equal(t, tasks[i], item.Task)
		assert.Equal(t, "2024-03-09", item.Date)
		assert.False(t, item.IsCompleted)
		assert.NotEmpty(t, item.ID)
		assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
	}
}

func TestService_TodayUsesConfiguredLocation(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	svc, _, id := newTestService(t, WithLocation(tokyo))

	assert.Equal(t, "2024-03-10", svc.Today())

	items, err := svc.Add(context.Background(), id, "later")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", items[0].Date)
}

func TestService_ListByDate(t *testing.T) {
	svc, _, id := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, id, "buy milk")
	require.NoError(t, err)
	_, err = svc.AddWithDate(ctx, id, "pay rent", "2024-01-01")
	require.NoError(t, err)
	_, err = svc.AddWithDate(ctx, id, "odd", "01/01/2024")
	require.NoError(t, err)

	rent, err := svc.ListByDate(ctx, id, "2024-01-01")
	require.NoError(t, err)
	require.Len(t, rent, 1)
	assert.Equal(t, "pay rent", rent[0].Task)

	empty, err := svc.ListByDate(ctx, id, "")
	require.NoError(t, err)
	today, err := svc.ListByDate(ctx, id, "2024-03-09")
	require.NoError(t, err)
	assert.Equal(t, today, empty)
	require.Len(t, empty, 1)
	assert.Equal(t, "buy milk", empty[0].Task)

	none, err := svc.ListByDate(ctx, id, "1999-12-31")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestService_AddWithDateStoresDateVerbatim(t *testing.T) {
	svc, _, id := newTestService(t)

	items, err := svc.AddWithDate(context.Background(), id, "x", "not a date")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "not a date", items[0].Date)
}

func TestService_DeleteMissingIDIsNoop(t *testing.T) {
	svc, _, id := newTestService(t)
	ctx := context.Background()

	before, err := svc.Add(ctx, id, "keep me")
	require.NoError(t, err)

	after, err := svc.Delete(ctx, id, "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	after, err = svc.Delete(ctx, id, before[0].ID)
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestService_UpdateToggles(t *testing.T) {
	svc, _, id := newTestService(t)
	ctx := context.Background()

	items, err := svc.Add(ctx, id, "buy milk")
	require.NoError(t, err)
	itemID := items[0].ID

	once, err := svc.Update(ctx, id, UpdateInput{ID: itemID})
	require.NoError(t, err)
	assert.True(t, once[0].IsCompleted)
	assert.Equal(t, "buy milk", once[0].Task)

	twice, err := svc.Update(ctx, id, UpdateInput{ID: itemID})
	require.NoError(t, err)
	assert.Equal(t, items, twice)

	renamed, err := svc.Update(ctx, id, UpdateInput{ID: itemID, Task: "buy oat milk"})
	require.NoError(t, err)
	assert.Equal(t, "buy oat milk", renamed[0].Task)
	assert.True(t, renamed[0].IsCompleted)

	missing, err := svc.Update(ctx, id, UpdateInput{ID: "nope", Task: "x"})
	require.NoError(t, err)
	assert.Equal(t, renamed, missing)

	noID, err := svc.Update(ctx, id, UpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, renamed, noID)
}

func TestService_MissingUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, "ghost")
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = svc.ListByDate(ctx, "ghost", "")
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = svc.Add(ctx, "ghost", "x")
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = svc.Delete(ctx, "ghost", "x")
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = svc.Update(ctx, "ghost", UpdateInput{ID: "x"})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestService_MilkAndRentScenario(t *testing.T) {
	svc, _, id := newTestService(t)
	ctx := context.Background()

	milk, err := svc.Add(ctx, id, "buy milk")
	require.NoError(t, err)
	assert.Equal(t, todo.Today(fixedNow, time.UTC), milk[0].Date)

	_, err = svc.AddWithDate(ctx, id, "pay rent", "2024-01-01")
	require.NoError(t, err)

	got, err := svc.ListByDate(ctx, id, "2024-01-01")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "pay rent", got[0].Task)
}

// conflictingStore fails the first n saves with a version conflict.
type conflictingStore struct {
	*memory.UsersRepo
	mu        sync.Mutex
	conflicts int
	saves     int
}

func (s *conflictingStore) Save(ctx context.Context, u *user.User) (*user.User, error) {
	s.mu.Lock()
	s.saves++
	if s.conflicts > 0 {
		s.conflicts--
		s.mu.Unlock()
		return nil, user.ErrVersionConflict
	}
	s.mu.Unlock()

	return s.UsersRepo.Save(ctx, u)
}

func TestService_RetriesVersionConflicts(t *testing.T) {
	_, repo, id := newTestService(t)

	store := &conflictingStore{UsersRepo: repo, conflicts: 2}
	svc := NewService(store, WithClock(func() time.Time { return fixedNow }))

	items, err := svc.Add(context.Background(), id, "eventually")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 3, store.saves)
}

func TestService_GivesUpAfterMaxAttempts(t *testing.T) {
	_, repo, id := newTestService(t)

	store := &conflictingStore{UsersRepo: repo, conflicts: 10}
	svc := NewService(store, WithMaxAttempts(2))

	_, err := svc.Add(context.Background(), id, "never")
	require.Error(t, err)
	assert.True(t, errors.Is(err, user.ErrVersionConflict))
	assert.Equal(t, 2, store.saves)

	items, err := svc.List(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_ConcurrentAddsAreNotLost(t *testing.T) {
	svc, _, id := newTestService(t, WithMaxAttempts(50))

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Add(context.Background(), id, "task")
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	items, err := svc.List(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, items, n)
}
