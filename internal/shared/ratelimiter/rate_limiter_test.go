package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_SpacesCalls(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Wait(ctx))
	}

	// The first call passes immediately, the next two wait one spacing each.
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestRateLimiter_ZeroSpacingNeverWaits(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, rl.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestRateLimiter_CancelledContext(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(time.Hour)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, rl.Wait(ctx))
}
