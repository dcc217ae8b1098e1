package memory

import (
	"context"
	"testing"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersRepo_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	saved, err := r.Save(ctx, user.New("Sam", "sam@example.com", "hash"))
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, int64(0), saved.Version)

	byID, err := r.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, byID)

	byEmail, err := r.FindByEmail(ctx, "sam@example.com")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byEmail.ID)

	missing, err := r.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = r.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUsersRepo_AssignsTodoIDsAndBumpsVersion(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	u, err := r.Save(ctx, user.New("Sam", "sam@example.com", "hash"))
	require.NoError(t, err)

	u.TodoList = todo.Append(u.TodoList, todo.New("2024-01-01", "pay rent"))

	saved, err := r.Save(ctx, u)
	require.NoError(t, err)
	require.Len(t, saved.TodoList, 1)
	assert.NotEmpty(t, saved.TodoList[0].ID)
	assert.Equal(t, int64(1), saved.Version)
}

func TestUsersRepo_StaleSaveConflicts(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	u, err := r.Save(ctx, user.New("Sam", "sam@example.com", "hash"))
	require.NoError(t, err)

	a, _ := r.FindByID(ctx, u.ID)
	b, _ := r.FindByID(ctx, u.ID)

	a.TodoList = todo.Append(a.TodoList, todo.New("2024-01-01", "a"))
	_, err = r.Save(ctx, a)
	require.NoError(t, err)

	b.TodoList = todo.Append(b.TodoList, todo.New("2024-01-01", "b"))
	_, err = r.Save(ctx, b)
	assert.ErrorIs(t, err, user.ErrVersionConflict)
}

func TestUsersRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewUsersRepo()

	u := user.New("Sam", "sam@example.com", "hash")
	u.TodoList = todo.Append(u.TodoList, todo.New("2024-01-01", "a"))
	saved, err := r.Save(ctx, u)
	require.NoError(t, err)

	saved.TodoList[0].Task = "mutated"

	again, err := r.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.TodoList[0].Task)
}
