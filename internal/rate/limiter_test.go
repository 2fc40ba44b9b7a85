package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_RefusesAfterBurst(t *testing.T) {
	l := NewMemoryLimiter(3, 15*time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "hit %d", i)
	}
	res, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Equal(t, 5*time.Minute, res.RetryAfter)

	other, err := l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr()})
	defer client.Close()

	l := NewRedisLimiter(client, "", 2, time.Minute)
	fixed := time.Date(2025, 1, 1, 12, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	ctx := context.Background()

	r1, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, r1.Allowed)
	assert.EqualValues(t, 1, r1.Remaining)

	r2, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, r2.Allowed)

	r3, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, r3.Allowed)
	assert.EqualValues(t, 3, r3.Hits)
	assert.Equal(t, 50*time.Second, r3.RetryAfter)
	assert.Equal(t, 50*time.Second, r3.Reset)

	// Nueva ventana: contador nuevo.
	l.now = func() time.Time { return fixed.Add(time.Minute) }
	r4, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, r4.Allowed)
}
