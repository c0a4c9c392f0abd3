package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return client, mr
}

func TestNewClaimRedis(t *testing.T) {
	client, _ := setupTestRedis(t)

	assert.Equal(t, DefaultPrefix, NewClaimRedis(client, "", "worker-1").prefix)
	assert.Equal(t, "custom", NewClaimRedis(client, "custom", "worker-1").prefix)
}

func TestClaimRedis_Claim(t *testing.T) {
	t.Parallel()

	t.Run("success: first claim wins and stores owner with ttl", func(t *testing.T) {
		t.Parallel()
		client, mr := setupTestRedis(t)
		repo := NewClaimRedis(client, "", "worker-1")

		ok, err := repo.Claim(context.Background(), "eur/usd", 24*time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		val, err := mr.Get("signals:claim:EURUSD")
		require.NoError(t, err)
		assert.Equal(t, "worker-1", val)
		assert.Equal(t, 24*time.Hour, mr.TTL("signals:claim:EURUSD"))
	})

	t.Run("success: second claim on a spelling variant loses", func(t *testing.T) {
		t.Parallel()
		client, _ := setupTestRedis(t)
		a := NewClaimRedis(client, "", "worker-1")
		b := NewClaimRedis(client, "", "worker-2")

		ok, err := a.Claim(context.Background(), "EURUSD", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = b.Claim(context.Background(), "EUR/USD", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("success: claim is available again after expiry", func(t *testing.T) {
		t.Parallel()
		client, mr := setupTestRedis(t)
		repo := NewClaimRedis(client, "", "worker-1")

		ok, err := repo.Claim(context.Background(), "GBPUSD", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		mr.FastForward(2 * time.Minute)

		ok, err = repo.Claim(context.Background(), "GBPUSD", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("error: non-positive ttl", func(t *testing.T) {
		t.Parallel()
		client, _ := setupTestRedis(t)
		repo := NewClaimRedis(client, "", "worker-1")

		ok, err := repo.Claim(context.Background(), "GBPUSD", 0)
		assert.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("error: redis unavailable", func(t *testing.T) {
		t.Parallel()
		client, mr := setupTestRedis(t)
		repo := NewClaimRedis(client, "", "worker-1")
		mr.Close()

		ok, err := repo.Claim(context.Background(), "GBPUSD", time.Hour)
		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func TestClaimRedis_Release(t *testing.T) {
	t.Parallel()

	client, mr := setupTestRedis(t)
	repo := NewClaimRedis(client, "", "worker-1")
	ctx := context.Background()

	ok, err := repo.Claim(ctx, "XAUUSD", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.Release(ctx, "XAUUSD"))
	assert.False(t, mr.Exists("signals:claim:XAUUSD"))

	// Releasing again is harmless.
	require.NoError(t, repo.Release(ctx, "XAUUSD"))

	ok, err = repo.Claim(ctx, "XAUUSD", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}
