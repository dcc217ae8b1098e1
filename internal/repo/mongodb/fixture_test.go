package mongodb

import (
	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
)

var userFixture = user.User{
	Name:         "Fixture",
	Email:        "fixture@example.com",
	PasswordHash: "hash",
	TodoList:     []todo.Todo{todo.New("2024-01-01", "pay rent")},
}
