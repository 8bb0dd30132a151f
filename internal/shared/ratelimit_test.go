package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllowWithinLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	rl := NewRateLimiter(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, "user:42")
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be allowed", i+1)
	}

	ok, err := rl.Allow(ctx, "user:42")
	require.NoError(t, err)
	assert.False(t, ok, "fourth request should be rejected")
}

func TestRateLimiterWindowReset(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	rl := NewRateLimiter(client, 1, time.Minute)
	ctx := context.Background()

	ok, err := rl.Allow(ctx, "user:7")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rl.Allow(ctx, "user:7")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(61 * time.Second)

	ok, err = rl.Allow(ctx, "user:7")
	require.NoError(t, err)
	assert.True(t, ok, "counter should reset after the window expires")
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	rl := NewRateLimiter(client, 1, time.Minute)
	ctx := context.Background()

	ok, err := rl.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = rl.Allow(ctx, "user:2")
	require.NoError(t, err)
	assert.True(t, ok, "a second user must not share the first user's window")

	remaining, err := rl.Remaining(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining)
}
