package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
)

func newStore(t *testing.T) (*AuthCodes, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewAuthCodes(rdb, "code:", 5*time.Minute), mr
}

func sampleCode(code string, exp time.Time) *repository.AuthorizationCode {
	return &repository.AuthorizationCode{
		Code: code, ClientID: "app_x", UserID: "u1",
		CodeChallenge: "challenge", CodeChallengeMethod: "S256",
		RedirectURL: "https://demo.test/cb", ExpiresAt: exp, CreatedAt: time.Now().UTC(),
	}
}

func TestAuthCodes_CreateGetClaim(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()
	exp := time.Now().Add(10 * time.Minute).UTC().Truncate(time.Second)

	c := sampleCode("abc", exp)
	c.CreatedAt = exp.Add(-10 * time.Minute)
	require.NoError(t, s.Create(ctx, c))
	assert.True(t, mr.Exists("code:abc"))
	assert.Equal(t, 15*time.Minute, mr.TTL("code:abc"))
	assert.ErrorIs(t, s.Create(ctx, sampleCode("abc", exp)), repository.ErrConflict)

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.Code)
	assert.Equal(t, "app_x", got.ClientID)
	assert.Equal(t, "challenge", got.CodeChallenge)
	assert.True(t, exp.Equal(got.ExpiresAt))

	ok, err := s.Claim(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Claim(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, "abc")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAuthCodes_ExpiredReadableWithinGrace(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()
	created := time.Now().UTC()
	c := sampleCode("short", created.Add(time.Minute))
	c.CreatedAt = created
	require.NoError(t, s.Create(ctx, c))

	// vencido pero dentro del margen: el record sigue legible y marcado como vencido
	mr.FastForward(2 * time.Minute)
	got, err := s.Get(ctx, "short")
	require.NoError(t, err)
	assert.True(t, got.Expired(created.Add(2*time.Minute)))

	// pasado el margen la key desaparece
	mr.FastForward(5 * time.Minute)
	_, err = s.Get(ctx, "short")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	n, err := s.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewAuthCodes_DefaultGrace(t *testing.T) {
	s := NewAuthCodes(nil, "code:", 0)
	assert.Equal(t, DefaultExpiredGrace, s.grace)
}

func TestAuthCodes_ConcurrentClaim(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, sampleCode("race", time.Now().Add(time.Minute))))

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := s.Claim(ctx, "race"); err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, wins)
}

func TestAuthCodes_Ping(t *testing.T) {
	s, mr := newStore(t)
	require.NoError(t, s.Ping(context.Background()))
	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}
