package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/devportal/internal/domain/repository"
	"github.com/dropDatabas3/devportal/internal/store/memory"
)

func TestSweepOnce_RemovesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	codes := memory.NewAuthCodes()

	require.NoError(t, codes.Create(ctx, &repository.AuthorizationCode{Code: "old", ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, codes.Create(ctx, &repository.AuthorizationCode{Code: "edge", ExpiresAt: now}))
	require.NoError(t, codes.Create(ctx, &repository.AuthorizationCode{Code: "fresh", ExpiresAt: now.Add(5 * time.Minute)}))

	s := NewSweeper(codes, time.Minute)
	s.Now = func() time.Time { return now }

	n, err := s.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = codes.Get(ctx, "old")
	assert.True(t, repository.IsNotFound(err))
	_, err = codes.Get(ctx, "edge")
	assert.NoError(t, err)
	_, err = codes.Get(ctx, "fresh")
	assert.NoError(t, err)
}

type flakyCodes struct {
	repository.AuthCodeRepository
	calls atomic.Int32
}

func (f *flakyCodes) DeleteExpired(context.Context, time.Time) (int, error) {
	if f.calls.Add(1) == 1 {
		return 0, errors.New("transient")
	}
	return 0, nil
}

func TestRun_ContinuesAfterErrorAndStops(t *testing.T) {
	codes := &flakyCodes{}
	s := NewSweeper(codes, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return codes.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestNewSweeper_DefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultSweepInterval, NewSweeper(memory.NewAuthCodes(), 0).Interval)
}
