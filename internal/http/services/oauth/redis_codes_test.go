package oauth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
	redisstore "github.com/dropDatabas3/devportal/internal/store/redis"
)

func newRedisFixture(t *testing.T) (*fixture, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return newFixtureWithCodes(t, redisstore.NewAuthCodes(rdb, "code:", redisstore.DefaultExpiredGrace)), mr
}

func TestExchange_RedisExpiredGrant(t *testing.T) {
	f, mr := newRedisFixture(t)
	code := f.authorize(t)

	f.clock.Advance(11 * time.Minute)
	mr.FastForward(11 * time.Minute)

	_, err := f.exchange(code)
	assert.ErrorIs(t, err, ErrExpiredGrant)

	_, err = f.store.Get(context.Background(), code)
	assert.True(t, repository.IsNotFound(err), "expired code must be deleted")

	_, err = f.exchange(code)
	assert.ErrorIs(t, err, ErrInvalidGrant)
}

func TestExchange_RedisSuccessSingleUse(t *testing.T) {
	f, _ := newRedisFixture(t)
	code := f.authorize(t)

	res, err := f.exchange(code)
	require.NoError(t, err)
	assert.Equal(t, "admin", res.Role)

	_, err = f.exchange(code)
	assert.ErrorIs(t, err, ErrInvalidGrant)
}
