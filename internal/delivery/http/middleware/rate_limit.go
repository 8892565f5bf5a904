package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"job-tracker-backend/internal/delivery/http/response"
	"job-tracker-backend/pkg/apperror"
	"job-tracker-backend/pkg/logger"
	"job-tracker-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Custom key extractor (default: client IP)
	KeyFunc func(*gin.Context) string
	// Key prefix for Redis, e.g. "rl:auth:"
	KeyPrefix string
	// Reject with 503 instead of falling back to memory when Redis errors
	FailClosed bool
}

// AuthRateLimitConfig is the strict policy for login and register.
func AuthRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{Limit: limit, Window: window, KeyPrefix: "rl:auth:"}
}

// UploadRateLimitConfig keys by user when authenticated, else by IP.
func UploadRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:     limit,
		Window:    window,
		KeyPrefix: "rl:upload:",
		KeyFunc: func(c *gin.Context) string {
			if id := GetIdentity(c); id.Authenticated() {
				return "user:" + id.UserID
			}
			return c.ClientIP()
		},
	}
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// rateLimitEntry tracks request count for a key (in-memory fallback)
type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// RateLimiter counts requests in fixed windows, in Redis when a client is
// configured and in process memory otherwise.
type RateLimiter struct {
	redis *goredis.Client
	audit *security.AuditLogger

	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	now     func() time.Time
}

// NewRateLimiter accepts a nil client for memory-only limiting.
func NewRateLimiter(client *goredis.Client, audit *security.AuditLogger) *RateLimiter {
	return &RateLimiter{
		redis:   client,
		audit:   audit,
		entries: make(map[string]*rateLimitEntry),
		now:     time.Now,
	}
}

// Middleware creates a rate limiting middleware with the given config
func (rl *RateLimiter) Middleware(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)

		count, resetAt, err := rl.hit(c.Request.Context(), fullKey, config)
		if err != nil {
			logger.Log.Warn("rate limit backend error", "key_prefix", config.KeyPrefix, "error", err)
			if config.FailClosed {
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", nil)
				c.Abort()
				return
			}
			count, resetAt = rl.hitMemory(fullKey, config)
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.UTC().Format(time.RFC3339))

		if count > config.Limit {
			retryAfter := int(resetAt.Sub(rl.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			rl.audit.Log(c.Request.Context(), security.AuditEvent{
				Event:     security.EventRateLimitTriggered,
				IP:        c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
				RequestID: response.RequestID(c),
				Path:      c.FullPath(),
			})
			limited := apperror.TooManyRequests("Too many requests. Please try again later.")
			response.Error(c, limited.Code, limited.Message, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) hit(ctx context.Context, key string, config RateLimitConfig) (int, time.Time, error) {
	if rl.redis == nil {
		count, resetAt := rl.hitMemory(key, config)
		return count, resetAt, nil
	}
	return rl.hitRedis(ctx, key, config)
}

// hitRedis checks rate limit using Redis with atomic Lua script
func (rl *RateLimiter) hitRedis(ctx context.Context, key string, config RateLimitConfig) (int, time.Time, error) {
	ttlSeconds := int(config.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	result, err := rl.redis.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), rl.now().Add(time.Duration(ttl) * time.Second), nil
}

func (rl *RateLimiter) hitMemory(key string, config RateLimitConfig) (int, time.Time) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.entries[key]
	if !ok || !now.Before(entry.resetAt) {
		entry = &rateLimitEntry{resetAt: now.Add(config.Window)}
		rl.entries[key] = entry
	}
	entry.count++
	return entry.count, entry.resetAt
}

// Sweep drops expired in-memory windows.
func (rl *RateLimiter) Sweep() {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k, e := range rl.entries {
		if !now.Before(e.resetAt) {
			delete(rl.entries, k)
		}
	}
}

// StartCleanup sweeps on every interval until ctx is done.
func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.Sweep()
			}
		}
	}()
}
