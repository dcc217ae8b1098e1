package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "STORE_DRIVER", "MONGODB_URI", "MONGODB_DATABASE", "JWT_TTL", "CACHE_TTL", "CACHE_BACKEND", "REDIS_ADDR", "REDIS_POOL_SIZE", "REDIS_TIMEOUT", "DB_MAX_CONNS", "MONGODB_MAX_POOL_SIZE", "CORS_ORIGINS", "APP_TIMEZONE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "todo-app", cfg.MongoDatabase)
	assert.Equal(t, time.Duration(0), cfg.JWTTTL)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 3*time.Second, cfg.StoreTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, time.Local, cfg.Location)
	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.Equal(t, 20, cfg.MongoMaxPool)
	assert.Equal(t, 10, cfg.RedisPoolSize)
	assert.Equal(t, 2*time.Second, cfg.RedisTimeout)
	assert.Equal(t, CacheNone, cfg.CacheMode())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("MONGODB_URI", "mongodb://db:27017/tasks?retryWrites=true")
	t.Setenv("MONGODB_DATABASE", "")
	t.Setenv("JWT_TTL", "24h")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("BCRYPT_COST", "nope")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("REDIS_POOL_SIZE", "32")
	t.Setenv("REDIS_TIMEOUT", "500ms")
	t.Setenv("CACHE_BACKEND", "Memory")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "tasks", cfg.MongoDatabase)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 4, cfg.DBMaxConns)
	assert.Equal(t, 32, cfg.RedisPoolSize)
	assert.Equal(t, 500*time.Millisecond, cfg.RedisTimeout)
	assert.Equal(t, CacheMemory, cfg.CacheMode())
}

func TestConfig_CacheMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "no redis, no backend", cfg: Config{CacheTTL: time.Minute}, want: CacheNone},
		{name: "redis addr implies redis", cfg: Config{CacheTTL: time.Minute, RedisAddr: "redis:6379"}, want: CacheRedis},
		{name: "redis asked for without addr", cfg: Config{CacheTTL: time.Minute, CacheBackend: CacheRedis}, want: CacheNone},
		{name: "memory is opt-in", cfg: Config{CacheTTL: time.Minute, CacheBackend: CacheMemory}, want: CacheMemory},
		{name: "explicit none wins over redis", cfg: Config{CacheTTL: time.Minute, CacheBackend: CacheNone, RedisAddr: "redis:6379"}, want: CacheNone},
		{name: "zero ttl disables", cfg: Config{CacheBackend: CacheMemory}, want: CacheNone},
		{name: "unknown backend", cfg: Config{CacheTTL: time.Minute, CacheBackend: "memcached", RedisAddr: "redis:6379"}, want: CacheNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.CacheMode())
		})
	}
}

func TestDatabaseFromURI(t *testing.T) {
	assert.Equal(t, "fallback", databaseFromURI("mongodb://localhost:27017", "fallback"))
	assert.Equal(t, "fallback", databaseFromURI("mongodb://localhost:27017/", "fallback"))
	assert.Equal(t, "todo-app", databaseFromURI("mongodb://localhost:27017/todo-app", "fallback"))
}
