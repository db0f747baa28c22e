package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"schoolsite-backend/internal/metrics"
)

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// LoginLimiter counts login attempts per key (the client IP)
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Reset(ctx context.Context, key string) error
}

// MemoryLimiter provides rate limiting for login attempts within one process
type MemoryLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptInfo
	// Configuration
	maxAttempts int
	window      time.Duration
	blockTime   time.Duration

	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

type attemptInfo struct {
	count     int
	firstTry  time.Time
	blockedAt time.Time
}

// NewMemoryLimiter creates a new in-process limiter
// maxAttempts: max login attempts within the window
// window: time window for counting attempts
// blockTime: how long to block after exceeding max attempts
func NewMemoryLimiter(maxAttempts int, window, blockTime time.Duration) *MemoryLimiter {
	rl := &MemoryLimiter{
		attempts:    make(map[string]*attemptInfo),
		maxAttempts: maxAttempts,
		window:      window,
		blockTime:   blockTime,
		now:         time.Now,
		stop:        make(chan struct{}),
	}
	go rl.cleanupLoop(5 * time.Minute)
	return rl
}

// Allow checks if the given key is allowed to attempt login
func (rl *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, exists := rl.attempts[key]

	if !exists {
		rl.attempts[key] = &attemptInfo{count: 1, firstTry: now}
		return Decision{Allowed: true}, nil
	}

	if !info.blockedAt.IsZero() {
		if wait := rl.blockTime - now.Sub(info.blockedAt); wait > 0 {
			return Decision{RetryAfter: wait}, nil
		}
		// Block expired, reset
		info.count = 1
		info.firstTry = now
		info.blockedAt = time.Time{}
		return Decision{Allowed: true}, nil
	}

	if now.Sub(info.firstTry) > rl.window {
		info.count = 1
		info.firstTry = now
		return Decision{Allowed: true}, nil
	}

	info.count++
	if info.count > rl.maxAttempts {
		info.blockedAt = now
		return Decision{RetryAfter: rl.blockTime}, nil
	}

	return Decision{Allowed: true}, nil
}

// Reset forgets the attempts of key after a successful login
func (rl *MemoryLimiter) Reset(_ context.Context, key string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.attempts, key)
	return nil
}

// Close stops the cleanup goroutine
func (rl *MemoryLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *MemoryLimiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

// cleanup removes entries whose window and block have both expired
func (rl *MemoryLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, info := range rl.attempts {
		windowExpired := now.Sub(info.firstTry) > rl.window
		blockExpired := info.blockedAt.IsZero() || now.Sub(info.blockedAt) > rl.blockTime
		if windowExpired && blockExpired {
			delete(rl.attempts, key)
		}
	}
}

// redisFixedWindowScript counts an attempt and arms the window expiry in one
// step. A counter found without a TTL gets one, so it can never outlive the
// window. Returns the count and the remaining TTL in milliseconds.
var redisFixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisLimiter is a fixed-window limiter shared by every instance using the
// same Redis
type RedisLimiter struct {
	client      redis.UniversalClient
	prefix      string
	maxAttempts int
	window      time.Duration
}

// NewRedisLimiter creates a limiter storing counters under prefix
func NewRedisLimiter(client redis.UniversalClient, prefix string, maxAttempts int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "login"
	}
	return &RedisLimiter{
		client:      client,
		prefix:      prefix,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (rl *RedisLimiter) key(key string) string {
	if key == "" {
		key = "unknown"
	}
	return rl.prefix + ":" + key
}

// Allow increments the counter of key and denies once it passes maxAttempts
func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	if rl.client == nil {
		return Decision{}, errors.New("redis limiter: nil client")
	}

	res, err := redisFixedWindowScript.Run(ctx, rl.client, []string{rl.key(key)}, rl.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("redis limiter: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("redis limiter: unexpected script result %v", res)
	}

	count, ttl := res[0], time.Duration(res[1])*time.Millisecond
	if count <= int64(rl.maxAttempts) {
		return Decision{Allowed: true}, nil
	}
	if ttl <= 0 {
		ttl = rl.window
	}
	return Decision{RetryAfter: ttl}, nil
}

// Reset deletes the counter of key
func (rl *RedisLimiter) Reset(ctx context.Context, key string) error {
	if rl.client == nil {
		return errors.New("redis limiter: nil client")
	}
	return rl.client.Del(ctx, rl.key(key)).Err()
}

// RateLimitMiddleware answers 429 with Retry-After once the client IP runs
// out of attempts. Limiter errors are logged and let the request through.
func RateLimitMiddleware(limiter LoginLimiter, m *metrics.Metrics, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()

			decision, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				logger.Error().Err(err).Str("ip", key).Msg("rate limiter unavailable")
				return next(c)
			}

			if !decision.Allowed {
				retryAfter := int(decision.RetryAfter.Round(time.Second) / time.Second)
				if retryAfter < 1 {
					retryAfter = 1
				}

				m.Login(metrics.LoginRateLimited)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return c.JSON(http.StatusTooManyRequests, map[string]any{
					"message":     "Too many login attempts",
					"retry_after": retryAfter,
				})
			}

			return next(c)
		}
	}
}
