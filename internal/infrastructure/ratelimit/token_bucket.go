package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local data = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = burst
  ts = now
else
  local delta = now - ts
  if delta < 0 then
    delta = 0
  end
  tokens = math.min(burst, tokens + (delta / 1000) * rate)
  ts = now
end

local allowed = 0
if tokens >= 1 then
  allowed = 1
  tokens = tokens - 1
end

redis.call("HSET", KEYS[1], "tokens", tokens, "ts", ts)
redis.call("PEXPIRE", KEYS[1], ttl)

return {allowed, tostring(tokens)}
`

const keyPrefix = "ratelimit:decision:"

// Limiter implements port.RateLimiter with a Redis-backed token bucket shared
// by every replica.
type Limiter struct {
	client redis.Scripter
	script *redis.Script
	rate   float64
	burst  int
}

// NewLimiter returns a limiter refilling rate tokens per second up to burst.
func NewLimiter(client redis.Scripter, rate float64, burst int) (*Limiter, error) {
	if client == nil {
		return nil, errors.New("rate limiter redis client is required")
	}
	if rate <= 0 || burst <= 0 {
		return nil, errors.New("rate limiter rate and burst must be positive")
	}
	return &Limiter{
		client: client,
		script: redis.NewScript(tokenBucketScript),
		rate:   rate,
		burst:  burst,
	}, nil
}

// Allow takes one token for key. When the bucket is empty it reports how long
// the caller should wait before retrying.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if key == "" {
		return false, 0, errors.New("rate limiter key is empty")
	}

	res, err := l.script.Run(ctx, l.client, []string{keyPrefix + key},
		l.rate, l.burst, bucketTTL(l.rate, l.burst).Milliseconds(),
	).Slice()
	if err != nil {
		return false, 0, fmt.Errorf("token bucket: %w", err)
	}
	if len(res) < 2 {
		return false, 0, errors.New("token bucket: invalid script response")
	}

	if toInt(res[0]) == 1 {
		return true, 0, nil
	}

	retryAfter := time.Second
	if needed := 1 - toFloat(res[1]); needed > 0 {
		retryAfter = time.Duration(math.Ceil(needed / l.rate * float64(time.Second)))
	}
	return false, retryAfter, nil
}

// bucketTTL keeps idle buckets around for twice the time a full refill takes.
func bucketTTL(rate float64, burst int) time.Duration {
	seconds := math.Ceil((float64(burst) / rate) * 2)
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}

func toInt(v any) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int64:
		return float64(val)
	case string:
		var f float64
		if _, err := fmt.Sscan(val, &f); err == nil {
			return f
		}
	}
	return 0
}
