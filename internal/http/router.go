package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/geocoder89/todohub/internal/config"
	"github.com/geocoder89/todohub/internal/http/handlers"
	"github.com/geocoder89/todohub/internal/http/middlewares"
	"github.com/geocoder89/todohub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "todohub-api"

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Accounts handlers.AccountService
	Todos    handlers.TodoService
	Tokens   middlewares.TokenVerifier
	Ping     func(ctx context.Context) error
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(log *slog.Logger, deps Deps, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	authHandler := handlers.NewAuthHandler(deps.Accounts, log)
	todosHandler := handlers.NewTodosHandler(deps.Todos, log)
	authMW := middlewares.NewAuthMiddleware(deps.Tokens)

	api := r.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(authMW.RequireAuth())
	protected.GET("/protected", authHandler.Protected)
	protected.GET("/user-details", authHandler.UserDetails)

	protected.GET("/todo", todosHandler.List)
	protected.GET("/todo-list", todosHandler.ListByDate)
	protected.GET("/todo-list/:date", todosHandler.ListByDate)
	protected.POST("/add-todo", todosHandler.Add)
	protected.POST("/add-todo-with-date", todosHandler.AddWithDate)
	protected.DELETE("/delete-todo/:id", todosHandler.Delete)
	protected.POST("/update-todo", todosHandler.Update)

	r.NoRoute(staticFiles(cfg.StaticDir))

	return r
}

// staticFiles serves the front-end bundle for paths no route claimed.
// API paths and missing files get a JSON 404.
func staticFiles(dir string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		p := ctx.Request.URL.Path

		if dir == "" || strings.HasPrefix(p, "/api/") || p == "/api" ||
			(ctx.Request.Method != http.MethodGet && ctx.Request.Method != http.MethodHead) {
			handlers.RespondNotFound(ctx, "Route not found")
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+p)))
		if p == "/" || strings.HasSuffix(p, "/") {
			name = filepath.Join(name, "index.html")
		}

		info, err := os.Stat(name)
		if err != nil || info.IsDir() {
			handlers.RespondNotFound(ctx, "Route not found")
			return
		}

		ctx.File(name)
	}
}
