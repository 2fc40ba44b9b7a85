// Package rate implementa rate limiting por clave (IP de cliente).
//
// RedisLimiter es fixed window compartido entre réplicas; MemoryLimiter es
// token bucket en proceso (x/time/rate).
package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Decision es el resultado de consumir una request para una clave.
type Decision struct {
	Allowed   bool
	Hits      int64
	Remaining int64
	// Reset es cuánto falta para que se libere cupo.
	Reset      time.Duration
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// RedisLimiter cuenta hits por ventana alineada a Window (INCR + EXPIRE).
type RedisLimiter struct {
	client rdb.UniversalClient
	prefix string
	max    int64
	window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client rdb.UniversalClient, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), window: window, now: time.Now}
}

func (l *RedisLimiter) windowKey(key string, start time.Time) string {
	return fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), start.Unix())
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now().UTC()
	start := now.Truncate(l.window)
	k := l.windowKey(key, start)

	var incr *rdb.IntCmd
	_, err := l.client.TxPipelined(ctx, func(p rdb.Pipeliner) error {
		incr = p.Incr(ctx, k)
		// la key sobrevive un poco a la ventana para tolerar relojes desfasados
		p.ExpireNX(ctx, k, l.window+time.Second)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate: redis incr: %w", err)
	}

	hits := incr.Val()
	d := Decision{
		Allowed:   hits <= l.max,
		Hits:      hits,
		Remaining: max(l.max-hits, 0),
		Reset:     start.Add(l.window).Sub(now),
	}
	if !d.Allowed {
		d.RetryAfter = max(d.Reset, time.Second)
	}
	return d, nil
}
