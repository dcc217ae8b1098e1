package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/todohub/internal/accounts"
	"github.com/geocoder89/todohub/internal/auth"
	"github.com/geocoder89/todohub/internal/cache"
	"github.com/geocoder89/todohub/internal/config"
	"github.com/geocoder89/todohub/internal/db"
	"github.com/geocoder89/todohub/internal/domain/user"
	httpx "github.com/geocoder89/todohub/internal/http"
	"github.com/geocoder89/todohub/internal/observability"
	"github.com/geocoder89/todohub/internal/redisclient"
	"github.com/geocoder89/todohub/internal/repo/cached"
	"github.com/geocoder89/todohub/internal/repo/memory"
	"github.com/geocoder89/todohub/internal/repo/mongodb"
	"github.com/geocoder89/todohub/internal/repo/postgres"
	"github.com/geocoder89/todohub/internal/security"
	"github.com/geocoder89/todohub/internal/todos"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	shutdownTracer, err := observability.InitTracer(context.Background(), "todohub-api", cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	store, closeStore, err := openStore(cfg, prom)
	if err != nil {
		log.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}

	store, closeCache := withCache(cfg, store, log, prom)

	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	todoSvc := todos.NewService(store,
		todos.WithLocation(cfg.Location),
		todos.WithTimeout(cfg.StoreTimeout),
	)

	router := httpx.NewRouter(log, httpx.Deps{
		Accounts: accounts.NewService(store, hasher, tokens, cfg.StoreTimeout),
		Todos:    todoSvc,
		Tokens:   tokens,
		Ping:     store.Ping,
		Prom:     prom,
		Gatherer: reg,
	}, cfg)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		closeCache()
		closeStore(ctx)

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// openStore connects the configured backend once; every request shares it.
func openStore(cfg config.Config, prom *observability.Prom) (user.Store, func(context.Context), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := db.NewMongo(cfg.MongoURI, cfg.MongoMaxPool)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}

		repo := mongodb.NewUsersRepo(client.Database(cfg.MongoDatabase), prom)

		ctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}

		return repo, func(ctx context.Context) { _ = client.Disconnect(ctx) }, nil

	case config.DriverPostgres:
		pool, err := db.NewPool(cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}

		ctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure postgres schema: %w", err)
		}

		return postgres.NewUsersRepo(pool, prom), func(context.Context) { pool.Close() }, nil

	case config.DriverMemory:
		return memory.NewUsersRepo(), func(context.Context) {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// withCache puts a read-through cache in front of store as selected by
// cfg.CacheMode. An unreachable redis runs uncached rather than per-process.
func withCache(cfg config.Config, store user.Store, log *slog.Logger, prom *observability.Prom) (user.Store, func()) {
	switch cfg.CacheMode() {
	case config.CacheMemory:
		log.Info("user cache enabled", "backend", config.CacheMemory, "ttl", cfg.CacheTTL)
		return cached.NewUsersRepo(store, cache.NewMemory(cfg.CacheTTL), log, prom), func() {}

	case config.CacheRedis:
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			PoolSize: cfg.RedisPoolSize,
			Timeout:  cfg.RedisTimeout,
		})

		ctx, cancel := config.WithTimeout(context.Background(), cfg.RedisTimeout)
		defer cancel()

		if err := rdb.Ping(ctx); err != nil {
			log.Warn("redis unavailable, running without user cache", "addr", cfg.RedisAddr, "err", err)
			_ = rdb.Close()
			return store, func() {}
		}

		log.Info("user cache enabled", "backend", config.CacheRedis, "ttl", cfg.CacheTTL)
		return cached.NewUsersRepo(store, cache.NewRedis(rdb, cfg.CacheTTL), log, prom), func() { _ = rdb.Close() }

	default:
		return store, func() {}
	}
}
