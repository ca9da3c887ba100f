package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window rate limiter keyed by (actor, action).
// It replaces ad hoc last-sent-at timestamp columns with a dedicated,
// TTL-bounded counter.
type Limiter struct {
	rdb *redis.Client
	// prefix namespaces keys so limiters can share a redis instance.
	prefix string
}

func NewLimiter(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb, prefix: "rl"}
}

var allowScript = redis.NewScript(`
-- KEYS[1] = window counter key
-- ARGV[1] = limit (int)
-- ARGV[2] = window_ms (int)
--
-- Returns:
--  1 if allowed
--  0 if rejected (limit reached for this window)
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
else
  -- Ensure TTL exists even if key already existed without TTL
  if redis.call('PTTL', KEYS[1]) < 0 then
    redis.call('PEXPIRE', KEYS[1], ARGV[2])
  end
end

if current > tonumber(ARGV[1]) then
  return 0
end
return 1
`)

// Allow reports whether the actor may perform the action within the current
// window. Atomic via Lua; the TTL bounds leaked counters on process crash.
func (l *Limiter) Allow(ctx context.Context, actor, action string, limit int, window time.Duration) (bool, error) {
	if l.rdb == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if actor == "" || action == "" {
		return false, fmt.Errorf("actor and action are required")
	}
	if limit <= 0 {
		return false, fmt.Errorf("limit must be > 0")
	}
	if window <= 0 {
		return false, fmt.Errorf("window must be > 0")
	}

	key := fmt.Sprintf("%s:%s:%s", l.prefix, action, actor)
	res, err := allowScript.Run(ctx, l.rdb, []string{key}, limit, window.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
