package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/report-vault/internal/config"
	"github.com/iliyamo/report-vault/internal/logging"
)

// MsgTooManyRequests is the body of a rate limited response.
const MsgTooManyRequests = "Too many requests."

// limiterScript takes one token from the bucket at KEYS[1], topping it up
// first for every whole refill interval that has passed.  The reply is
// {allowed, remaining, retry_after_ms}.
var limiterScript = redis.NewScript(`
local now, cap, step, every, ttl =
  tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])

local b = redis.call('HMGET', KEYS[1], 'tokens', 'at')
local tokens, at = tonumber(b[1]), tonumber(b[2])
if not tokens or not at then
  tokens, at = cap, now
end

if every > 0 and step > 0 and now > at then
  local n = math.floor((now - at) / every)
  if n > 0 then
    tokens = math.min(cap, tokens + n * step)
    at = at + n * every
  end
end

local ok, wait = 0, 0
if tokens >= 1 then
  ok, tokens = 1, tokens - 1
else
  wait = math.max(0, every - (now - at))
end

redis.call('HSET', KEYS[1], 'tokens', tokens, 'at', at)
redis.call('EXPIRE', KEYS[1], ttl)
return {ok, tokens, wait}
`)

// NewTokenBucket limits requests per key with a Redis backed token bucket.
// It fails open: without Redis, or when a script call errors, requests
// pass through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log logging.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			ctx := c.Request().Context()

			vals, err := limiterScript.Run(ctx, rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Result()
			if err != nil {
				log.Warn(ctx, "ratelimit: redis error, passing request", "key", key, "error", err)
				return next(c)
			}

			allowed, remaining, retryMs, ok := parseScriptResult(vals)
			if !ok {
				log.Warn(ctx, "ratelimit: unexpected script result", "key", key, "result", fmt.Sprintf("%#v", vals))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				h.Set("Retry-After", strconv.Itoa(retryAfterSeconds(retryMs)))
				if cfg.Debug {
					log.Debug(ctx, "ratelimit: blocked", "key", key, "retry_ms", retryMs)
				}
				return echo.NewHTTPError(http.StatusTooManyRequests, MsgTooManyRequests)
			}
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			return next(c)
		}
	}
}

func parseScriptResult(v interface{}) (allowed bool, remaining, retryMs int64, ok bool) {
	arr, isArr := v.([]interface{})
	if !isArr || len(arr) != 3 {
		return false, 0, 0, false
	}
	return asInt64(arr[0]) == 1, asInt64(arr[1]), asInt64(arr[2]), true
}

func retryAfterSeconds(ms int64) int {
	secs := int(math.Ceil(float64(ms) / 1000.0))
	if secs < 0 {
		return 0
	}
	return secs
}

// asInt64 reads a Lua number reply; go-redis hands integers back as int64.
func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

// rateKeyParts are the dimensions a bucket key can be built from.  The
// limiter sits in front of the token guard on open routes, so "user" is
// "anon" there.
var rateKeyParts = map[string]func(c echo.Context) string{
	"ip": func(c echo.Context) string {
		if ip := c.RealIP(); ip != "" {
			return ip
		}
		return "unknown"
	},
	"user":  userID,
	"route": func(c echo.Context) string { return c.Request().Method + " " + c.Path() },
}

// buildRateKey joins the prefix with each dimension named by KeyStrategy
// ("ip_route", "user", ...).  Unknown strategies key on all three.
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	dims := strings.Split(strings.ToLower(cfg.KeyStrategy), "_")
	for _, d := range dims {
		if _, ok := rateKeyParts[d]; !ok {
			dims = []string{"ip", "user", "route"}
			break
		}
	}
	parts := []string{cfg.Prefix}
	for _, d := range dims {
		parts = append(parts, d, rateKeyParts[d](c))
	}
	return strings.Join(parts, ":")
}
