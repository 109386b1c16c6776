package reports

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute, slog.Default())
}

func TestCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	report := TrialBalance{TotalDebit: d(t, "100"), TotalCredit: d(t, "100"), IsBalanced: true}
	cache.Set(ctx, "tb:test", report)

	var got TrialBalance
	require.True(t, cache.Get(ctx, "tb:test", &got))
	assert.True(t, got.TotalDebit.Equal(d(t, "100")))
	assert.True(t, got.IsBalanced)
}

func TestCacheMiss(t *testing.T) {
	cache := newTestCache(t)

	var got TrialBalance
	assert.False(t, cache.Get(context.Background(), "tb:missing", &got))
}

func TestCacheInvalidateReports(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "tb:a", TrialBalance{})
	cache.Set(ctx, "bs:b", BalanceSheet{})
	cache.InvalidateReports(ctx)

	var tb TrialBalance
	var bs BalanceSheet
	assert.False(t, cache.Get(ctx, "tb:a", &tb))
	assert.False(t, cache.Get(ctx, "bs:b", &bs))
}

func TestNilCacheIsDisabled(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	cache.Set(ctx, "tb:a", TrialBalance{})
	var got TrialBalance
	assert.False(t, cache.Get(ctx, "tb:a", &got))
	cache.InvalidateReports(ctx)
}
