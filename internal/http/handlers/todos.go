package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/http/middlewares"
	"github.com/geocoder89/todohub/internal/todos"
	"github.com/gin-gonic/gin"
)

type TodoService interface {
	List(ctx context.Context, userID string) ([]todo.Todo, error)
	ListByDate(ctx context.Context, userID, date string) ([]todo.Todo, error)
	Add(ctx context.Context, userID, task string) ([]todo.Todo, error)
	AddWithDate(ctx context.Context, userID, task, date string) ([]todo.Todo, error)
	Delete(ctx context.Context, userID, id string) ([]todo.Todo, error)
	Update(ctx context.Context, userID string, in todos.UpdateInput) ([]todo.Todo, error)
}

type TodosHandler struct {
	todos TodoService
	log   *slog.Logger
}

func NewTodosHandler(todos TodoService, log *slog.Logger) *TodosHandler {
	if log == nil {
		log = slog.Default()
	}

	return &TodosHandler{
		todos: todos,
		log:   log,
	}
}

type AddTodoRequest struct {
	Task string `json:"task" form:"task"`
}

type AddTodoWithDateRequest struct {
	Task string `json:"task" form:"task"`
	Date string `json:"date" form:"date"`
}

// UpdateTodoRequest tolerates any isCompleted value; the stored flag is
// always negated.
type UpdateTodoRequest struct {
	ID          string          `json:"id" form:"id"`
	Task        string          `json:"task" form:"task"`
	IsCompleted json.RawMessage `json:"isCompleted" form:"-"`
}

func (h *TodosHandler) List(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	items, err := h.todos.List(ctx.Request.Context(), userID)
	if err != nil {
		respondLookupError(ctx, h.log, err)
		return
	}

	respondTodoList(ctx, "success", items)
}

// ListByDate serves both /api/todo-list and /api/todo-list/:date; an empty
// segment lists today's items.
func (h *TodosHandler) ListByDate(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	items, err := h.todos.ListByDate(ctx.Request.Context(), userID, ctx.Param("date"))
	if err != nil {
		respondLookupError(ctx, h.log, err)
		return
	}

	respondTodoList(ctx, "success", items)
}

func (h *TodosHandler) Add(ctx *gin.Context) {
	var req AddTodoRequest

	if !h.bind(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	items, err := h.todos.Add(ctx.Request.Context(), userID, req.Task)
	if err != nil {
		respondLookupError(ctx, h.log, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "success", gin.H{"todoList": items})
}

func (h *TodosHandler) AddWithDate(ctx *gin.Context) {
	var req AddTodoWithDateRequest

	if !h.bind(ctx, &req) {
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	items, err := h.todos.AddWithDate(ctx.Request.Context(), userID, req.Task, req.Date)
	if err != nil {
		respondLookupError(ctx, h.log, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "success", gin.H{"todoList": items})
}

func (h *TodosHandler) Delete(ctx *gin.Context) {
	userID, _ := middlewares.UserIDFromContext(ctx)

	items, err := h.todos.Delete(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		respondLookupError(ctx, h.log, err)
		return
	}

	RespondMessage(ctx, http.StatusOK, "success", gin.H{"todoList": items})
}

// Update toggles completion; failures other than a missing user are 500s.
func (h *TodosHandler) Update(ctx *gin.Context) {
	var req UpdateTodoRequest

	if err := Bind(ctx, &req); err != nil {
		RespondMessage(ctx, http.StatusBadRequest, "Invalid request body", gin.H{
			"details": BindError(err),
		})
		return
	}

	userID, _ := middlewares.UserIDFromContext(ctx)

	items, err := h.todos.Update(ctx.Request.Context(), userID, todos.UpdateInput{ID: req.ID, Task: req.Task})

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondMessage(ctx, http.StatusNotFound, "User not found", nil)
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "update todo failed", "err", err)
		_ = ctx.Error(err)
		RespondMessage(ctx, http.StatusInternalServerError, "Internal Server Error", nil)
		return
	}

	RespondMessage(ctx, http.StatusOK, "Todo updated successfully", gin.H{"todoList": items})
}

func (h *TodosHandler) bind(ctx *gin.Context, out interface{}) bool {
	if err := Bind(ctx, out); err != nil {
		RespondMessage(ctx, http.StatusBadRequest, "Invalid request body", gin.H{
			"details": BindError(err),
		})
		return false
	}

	return true
}

func respondTodoList(ctx *gin.Context, message string, items []todo.Todo) {
	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"message":  message,
		"todoList": items,
	})
}
