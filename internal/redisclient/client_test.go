package redisclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Options(t *testing.T) {
	opts := Config{Addr: "redis:6379", DB: 2, PoolSize: 32, Timeout: 500 * time.Millisecond}.options()

	assert.Equal(t, "redis:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 32, opts.PoolSize)
	assert.Equal(t, 500*time.Millisecond, opts.DialTimeout)
	assert.Equal(t, 500*time.Millisecond, opts.ReadTimeout)
	assert.Equal(t, 500*time.Millisecond, opts.WriteTimeout)
}

func TestConfig_OptionsDefaults(t *testing.T) {
	opts := Config{Addr: "redis:6379"}.options()

	assert.Equal(t, defaultPoolSize, opts.PoolSize)
	assert.Equal(t, defaultTimeout, opts.DialTimeout)
}

func TestNew_AppliesOptions(t *testing.T) {
	c := New(Config{Addr: "127.0.0.1:0", PoolSize: 3})
	defer c.Close()

	assert.Equal(t, 3, c.Raw().Options().PoolSize)
}
