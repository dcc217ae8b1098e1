package handlers_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/geocoder89/todohub/internal/domain/todo"
	"github.com/geocoder89/todohub/internal/domain/user"
	"github.com/geocoder89/todohub/internal/http/middlewares"
	"github.com/geocoder89/todohub/internal/todos"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

var errStoreDown = errors.New("store unreachable")

type fakeAccounts struct {
	registerFn func(ctx context.Context, name, email, password string) (string, error)
	loginFn    func(ctx context.Context, email, password string) (string, error)
	detailsFn  func(ctx context.Context, userID string) (*user.User, error)
}

func (f *fakeAccounts) Register(ctx context.Context, name, email, password string) (string, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, name, email, password)
	}
	return "token", nil
}

func (f *fakeAccounts) Login(ctx context.Context, email, password string) (string, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	return "token", nil
}

func (f *fakeAccounts) Details(ctx context.Context, userID string) (*user.User, error) {
	if f.detailsFn != nil {
		return f.detailsFn(ctx, userID)
	}
	return &user.User{ID: userID, TodoList: []todo.Todo{}}, nil
}

type fakeTodos struct {
	listFn        func(ctx context.Context, userID string) ([]todo.Todo, error)
	listByDateFn  func(ctx context.Context, userID, date string) ([]todo.Todo, error)
	addFn         func(ctx context.Context, userID, task string) ([]todo.Todo, error)
	addWithDateFn func(ctx context.Context, userID, task, date string) ([]todo.Todo, error)
	deleteFn      func(ctx context.Context, userID, id string) ([]todo.Todo, error)
	updateFn      func(ctx context.Context, userID string, in todos.UpdateInput) ([]todo.Todo, error)
}

func (f *fakeTodos) List(ctx context.Context, userID string) ([]todo.Todo, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}
	return []todo.Todo{}, nil
}

func (f *fakeTodos) ListByDate(ctx context.Context, userID, date string) ([]todo.Todo, error) {
	if f.listByDateFn != nil {
		return f.listByDateFn(ctx, userID, date)
	}
	return []todo.Todo{}, nil
}

func (f *fakeTodos) Add(ctx context.Context, userID, task string) ([]todo.Todo, error) {
	if f.addFn != nil {
		return f.addFn(ctx, userID, task)
	}
	return []todo.Todo{}, nil
}

func (f *fakeTodos) AddWithDate(ctx context.Context, userID, task, date string) ([]todo.Todo, error) {
	if f.addWithDateFn != nil {
		return f.addWithDateFn(ctx, userID, task, date)
	}
	return []todo.Todo{}, nil
}

func (f *fakeTodos) Delete(ctx context.Context, userID, id string) ([]todo.Todo, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, userID, id)
	}
	return []todo.Todo{}, nil
}

func (f *fakeTodos) Update(ctx context.Context, userID string, in todos.UpdateInput) ([]todo.Todo, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, userID, in)
	}
	return []todo.Todo{}, nil
}

// setupRouter mounts one handler; when userID is set it plays the auth gate.
func setupRouter(method, path, userID string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, func(c *gin.Context) {
		if userID != "" {
			c.Set(middlewares.CtxUserID, userID)
		}
		c.Next()
	}, h)

	return r
}

func doJSON(r http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(r http.Handler, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
