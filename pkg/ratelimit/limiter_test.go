package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketBurst(t *testing.T) {
	tb := NewTokenBucket(1, 3)
	frozen := time.Now()
	tb.now = func() time.Time { return frozen }
	tb.lastTime = frozen

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "token %d", i)
	}
	assert.False(t, tb.Allow())

	frozen = frozen.Add(time.Second)
	assert.True(t, tb.Allow())

	stats := tb.Stats()
	assert.Equal(t, int64(4), stats.AllowedRequests)
	assert.Equal(t, int64(1), stats.BlockedRequests)
	assert.Equal(t, 3, stats.Burst)
}

func TestTokenBucketWait(t *testing.T) {
	tb := NewTokenBucket(100, 1)
	require.NoError(t, tb.Wait(context.Background()))

	start := time.Now()
	require.NoError(t, tb.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestTokenBucketWaitCancelled(t *testing.T) {
	tb := NewTokenBucket(0.001, 1)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tb.Wait(ctx), context.DeadlineExceeded)
}

func TestNewDisabled(t *testing.T) {
	l := New(0)
	assert.IsType(t, Unlimited{}, l)
	assert.True(t, l.Allow())
	assert.NoError(t, l.Wait(context.Background()))

	assert.IsType(t, &TokenBucket{}, New(10))
}
