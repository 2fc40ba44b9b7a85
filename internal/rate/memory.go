package rate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// MemoryLimiter es un token bucket por clave: burst Max, recarga Max por Window.
// Las claves inactivas durante una ventana se descartan.
type MemoryLimiter struct {
	Max    int
	Window time.Duration

	mu      sync.Mutex
	buckets *gocache.Cache
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		Max:     max,
		Window:  window,
		buckets: gocache.New(window, window),
	}
}

func (l *MemoryLimiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.buckets.Get(key); ok {
		lim := v.(*rate.Limiter)
		l.buckets.SetDefault(key, lim)
		return lim
	}
	lim := rate.NewLimiter(rate.Every(l.Window/time.Duration(l.Max)), l.Max)
	l.buckets.SetDefault(key, lim)
	return lim
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	lim := l.bucket(key)
	now := time.Now()
	allowed := lim.AllowN(now, 1)

	remaining := max(int64(lim.TokensAt(now)), 0)
	// un token se recarga cada Window/Max
	refill := max(l.Window/time.Duration(l.Max), time.Second)
	d := Decision{
		Allowed:   allowed,
		Hits:      int64(l.Max) - remaining,
		Remaining: remaining,
		Reset:     refill,
	}
	if !allowed {
		d.RetryAfter = refill
	}
	return d, nil
}
