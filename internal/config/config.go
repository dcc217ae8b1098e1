package config

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Cache backends selectable with CACHE_BACKEND.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Env  string
	Port int

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	StoreDriver   string
	StoreTimeout  time.Duration
	MongoURI      string
	MongoDatabase string
	MongoMaxPool  int
	DBURL         string
	DBMaxConns    int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int
	RedisTimeout  time.Duration
	CacheBackend  string
	CacheTTL      time.Duration
	OTLPEndpoint  string
	CORSOrigins   []string
	StaticDir     string
	Location      *time.Location
	MaxBodyBytes  int64
}

func Load() Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	mongoURI := getEnv("MONGODB_URI", "mongodb://localhost:27017/todo-app")

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTTTL:     getEnvDuration("JWT_TTL", 0),
		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		StoreTimeout:  getEnvDuration("STORE_TIMEOUT", 3*time.Second),
		MongoURI:      mongoURI,
		MongoDatabase: getEnv("MONGODB_DATABASE", databaseFromURI(mongoURI, "todo-app")),
		MongoMaxPool:  getEnvInt("MONGODB_MAX_POOL_SIZE", 20),
		DBURL:         buildDBURL(),
		DBMaxConns:    getEnvInt("DB_MAX_CONNS", 10),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		RedisTimeout:  getEnvDuration("REDIS_TIMEOUT", 2*time.Second),
		CacheBackend:  strings.ToLower(getEnv("CACHE_BACKEND", "")),
		CacheTTL:      getEnvDuration("CACHE_TTL", 30*time.Second),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "*")),
		StaticDir:     getEnv("STATIC_DIR", "public"),
		Location:      loadLocation(getEnv("APP_TIMEZONE", "")),
		MaxBodyBytes:  int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

// CacheMode resolves which user cache to run. Without an explicit
// CACHE_BACKEND, redis is used when REDIS_ADDR is set and nothing otherwise;
// the in-process cache is only safe for a single instance, so it must be
// asked for.
func (c Config) CacheMode() string {
	if c.CacheTTL <= 0 {
		return CacheNone
	}

	switch c.CacheBackend {
	case CacheMemory:
		return CacheMemory
	case "", CacheRedis:
		if c.RedisAddr != "" {
			return CacheRedis
		}
	}

	return CacheNone
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "todohub")
	pass := getEnv("DB_PASSWORD", "todohub")
	name := getEnv("DB_NAME", "todohub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// databaseFromURI returns the path segment of a mongodb:// URI, the way
// mongoose picks its default database.
func databaseFromURI(uri, fallback string) string {
	u, err := url.Parse(uri)

	if err != nil {
		return fallback
	}

	name := strings.Trim(u.Path, "/")
	if name == "" {
		return fallback
	}

	return name
}

// WithTimeout derives a bounded context from parent.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	return context.WithTimeout(parent, duration)
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}

	loc, err := time.LoadLocation(name)

	if err != nil {
		slog.Warn("unknown APP_TIMEZONE, using local time", "tz", name, "err", err)
		return time.Local
	}

	return loc
}

func splitList(raw string) []string {
	out := make([]string, 0)

	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v)
			return fallback
		}

		return d
	}
	return fallback
}
