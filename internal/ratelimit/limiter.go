package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Decision is the limiter's verdict for one request.
type Decision struct {
	Allowed           bool
	Remaining         int64
	RetryAfterSeconds int64
}

// Limiter counts requests per (action, identity) key inside fixed
// windows. Counters live in Redis so the ceiling holds across
// instances; when Redis is unreachable the limiter degrades to a
// process-local store rather than waving traffic through.
type Limiter struct {
	rules  Rules
	redis  *redis.Client
	local  *localStore
	logger *zap.Logger
}

// NewLimiter constructs a limiter. The rules are validated up front so
// a misconfigured ceiling fails at startup, not at request time.
func NewLimiter(rules Rules, client *redis.Client, logger *zap.Logger) (*Limiter, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{
		rules:  rules,
		redis:  client,
		local:  newLocalStore(),
		logger: logger,
	}, nil
}

// CheckLimit counts one request against its window and decides whether
// it may proceed. Errors on either store path resolve to a denial; a
// counting failure must never become default-allow.
func (l *Limiter) CheckLimit(ctx context.Context, action Action, identity Identity, isVerified bool) Decision {
	rule, ok := l.rules[action]
	if !ok {
		// Unknown action: nothing configured means nothing permitted.
		l.logger.Warn("rate limit check for unconfigured action", zap.String("action", string(action)))
		return Decision{Allowed: false, RetryAfterSeconds: 60}
	}

	key := identity.Key(action)
	limit := rule.Limit(isVerified)

	count, retryAfter, err := l.incrementRedis(ctx, key, rule.Window)
	if err != nil {
		l.logger.Warn("redis rate limit store unreachable, using local fallback",
			zap.String("key", key), zap.Error(err))
		count, retryAfter, err = l.local.Increment(key, rule.Window, time.Now())
		if err != nil {
			return Decision{Allowed: false, RetryAfterSeconds: int64(rule.Window.Seconds())}
		}
	}

	if count > limit {
		return Decision{Allowed: false, Remaining: 0, RetryAfterSeconds: retryAfter}
	}
	return Decision{Allowed: true, Remaining: limit - count}
}

// incrementRedis performs the atomic count. The count never goes
// through a read-then-write; the expiry is attached only when absent so
// the window never slides.
func (l *Limiter) incrementRedis(ctx context.Context, key string, window time.Duration) (count, retryAfter int64, err error) {
	if l.redis == nil {
		return 0, 0, redis.ErrClosed
	}

	var incr *redis.IntCmd
	_, err = l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	count = incr.Val()
	ttl, ttlErr := l.redis.TTL(ctx, key).Result()
	if ttlErr != nil || ttl <= 0 {
		ttl = window
	}
	return count, int64(ttl.Seconds()), nil
}
