// Package repotest holds the behaviour every user.Store backend must share.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunUserStoreContract exercises store against a fresh, uniquely named user.
func RunUserStoreContract(t *testing.T, store user.Store) {
	t.Helper()

	email := fmt.Sprintf("contract-%d@example.com", time.Now().UnixNano())

	t.Run("ping", func(t *testing.T) {
		require.NoError(t, store.Ping(context.Background()))
	})

	t.Run("insert_and_find", func(t *testing.T) {
		ctx := context.Background()

		saved, err := store.Save(ctx, user.New("Contract", email, "hash"))
		require.NoError(t, err)
		require.NotEmpty(t, saved.ID)

		byID, err := store.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, email, byID.Email)
		assert.Equal(t, "hash", byID.PasswordHash)
		assert.Empty(t, byID.TodoList)

		byEmail, err := store.FindByEmail(ctx, email)
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, saved.ID, byEmail.ID)
	})

	t.Run("absent_is_nil_not_error", func(t *testing.T) {
		ctx := context.Background()

		u, err := store.FindByEmail(ctx, "absent-"+email)
		require.NoError(t, err)
		assert.Nil(t, u)

		u, err = store.FindByID(ctx, "not-an-id")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("embedded_list_round_trip_and_cas", func(t *testing.T) {
		ctx := context.Background()

		u, err := store.FindByEmail(ctx, email)
		require.NoError(t, err)
		require.NotNil(t, u)

		u.TodoList = todo.Append(u.TodoList, todo.New("2024-01-01", "pay rent"))
		u.TodoList = todo.Append(u.TodoList, todo.New("2024-01-02", "buy milk"))

		saved, err := store.Save(ctx, u)
		require.NoError(t, err)
		require.Len(t, saved.TodoList, 2)
		assert.NotEmpty(t, saved.TodoList[0].ID)
		assert.NotEqual(t, saved.TodoList[0].ID, saved.TodoList[1].ID)
		assert.Equal(t, "pay rent", saved.TodoList[0].Task)
		assert.Equal(t, "buy milk", saved.TodoList[1].Task)

		reloaded, err := store.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, saved.TodoList, reloaded.TodoList)
		assert.Equal(t, saved.Version, reloaded.Version)

		// u still carries the version read before the save above
		u.TodoList = todo.Append(u.TodoList, todo.New("2024-01-03", "stale"))
		_, err = store.Save(ctx, u)
		assert.ErrorIs(t, err, user.ErrVersionConflict)
	})
}
