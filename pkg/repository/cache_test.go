package repository

import (
	"context"
	"testing"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requires Redis on localhost:6379
const testRedisAddr = "localhost:6379"

func setupTestCache(t *testing.T) *RedisRepository {
	t.Helper()

	cache := NewRedisRepository(&config.RedisConfig{Addr: testRedisAddr, TTL: time.Minute})
	if err := cache.Ping(context.Background()); err != nil {
		cache.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestRedisRepository_JSONRoundTrip(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()
	key := "test:product:" + time.Now().Format("150405.000000")
	t.Cleanup(func() { cache.Del(ctx, key) })

	var miss models.Product
	assert.ErrorIs(t, cache.GetJSON(ctx, key, &miss), ErrCacheMiss)

	require.NoError(t, cache.SetJSON(ctx, key, models.Product{ID: 3, Name: "Cached", Stock: 4}))

	var got models.Product
	require.NoError(t, cache.GetJSON(ctx, key, &got))
	assert.Equal(t, "Cached", got.Name)
	assert.Equal(t, 4, got.Stock)

	require.NoError(t, cache.Del(ctx, key))
	assert.ErrorIs(t, cache.GetJSON(ctx, key, &got), ErrCacheMiss)
}

func TestNopCache(t *testing.T) {
	var c Cache = NopCache{}
	ctx := context.Background()
	require.NoError(t, c.SetJSON(ctx, "k", 1))
	var v int
	assert.ErrorIs(t, c.GetJSON(ctx, "k", &v), ErrCacheMiss)
}

func TestMemoryAudit(t *testing.T) {
	audit := NewMemoryAudit()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, audit.CreateAuditLog(ctx, &AuditLog{Action: "order.placed", EntityType: "order", EntityID: 1, CreatedAt: base}))
	require.NoError(t, audit.CreateAuditLog(ctx, &AuditLog{Action: "order.status_changed", EntityType: "order", EntityID: 1, CreatedAt: base.Add(time.Second)}))
	require.NoError(t, audit.CreateAuditLog(ctx, &AuditLog{Action: "inventory.stock_changed", EntityType: "product", EntityID: 1}))

	logs, err := audit.GetAuditLogs(ctx, "order", 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "order.status_changed", logs[0].Action)

	logs, err = audit.GetAuditLogs(ctx, "order", 1, 1)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
