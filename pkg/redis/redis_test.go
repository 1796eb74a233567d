package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lystzs/family-asset-manager/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{Enabled: false}}

	client, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := &config.Config{Redis: config.RedisConfig{
		Enabled: true,
		Host:    "127.0.0.1",
		Port:    "1", // nothing listens here
	}}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "fam")
	limit := BackendRateLimit(10)

	allowed, remaining, err := limiter.Allow(context.Background(), limit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 10, remaining)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.NoError(t, limiter.Wait(ctx, limit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "fam")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, StockKey("005930"), map[string]string{"name": "삼성전자"}, time.Minute))

	var dest map[string]string
	found, err := cache.Get(ctx, StockKey("005930"), &dest)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Delete(ctx, StockKey("005930")))
	assert.NoError(t, cache.DeletePattern(ctx, "stock:*"))
}

func TestStockKeys(t *testing.T) {
	assert.Equal(t, "stock:info:005930", StockKey("005930"))
	assert.Equal(t, "stock:search:삼성:20", StockSearchKey("삼성", 20))
	assert.Equal(t, "stock:stats", StockStatsKey())
}
