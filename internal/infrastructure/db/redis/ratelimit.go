package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const rateLimitTimeout = 250 * time.Millisecond

// RateLimiter is a fixed-window request counter shared by all API instances.
// Key format: ratelimit:<identifier>:<window_start_unix>
//
// It satisfies echo's middleware.RateLimiterStore. When Redis is unreachable
// requests are let through and the failure is logged.
type RateLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

// NewRateLimiter allows max requests per identifier in each window.
func NewRateLimiter(client *redis.Client, max int, window time.Duration, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		max:    int64(max),
		window: window,
		log:    log,
		now:    time.Now,
	}
}

// Allow counts one request for identifier and reports whether it is within the limit.
func (l *RateLimiter) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), rateLimitTimeout)
	defer cancel()

	count, err := l.incr(ctx, l.key(identifier))
	if err != nil {
		l.log.Warn().Err(err).Str("identifier", identifier).Msg("rate limiter unavailable, allowing request")
		return true, nil
	}
	return count <= l.max, nil
}

func (l *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("rate limit incr: %w", err)
	}
	return incr.Val(), nil
}

func (l *RateLimiter) key(identifier string) string {
	start := l.now().Truncate(l.window)
	return fmt.Sprintf("ratelimit:%s:%d", identifier, start.Unix())
}
