package auth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"schoolsite-backend/internal/metrics"
)

func newMemoryLimiterForTest(t *testing.T, clock *fakeClock) *MemoryLimiter {
	t.Helper()
	rl := NewMemoryLimiter(3, time.Minute, 5*time.Minute)
	rl.now = clock.Now
	t.Cleanup(rl.Close)
	return rl
}

func TestMemoryLimiterBlocksAndRecovers(t *testing.T) {
	clock := newTestClock()
	rl := newMemoryLimiterForTest(t, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, _ := rl.Allow(ctx, "1.2.3.4")
		if !d.Allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	d, _ := rl.Allow(ctx, "1.2.3.4")
	if d.Allowed || d.RetryAfter != 5*time.Minute {
		t.Fatalf("fourth attempt should be blocked for the block time, got %+v", d)
	}

	if d, _ := rl.Allow(ctx, "5.6.7.8"); !d.Allowed {
		t.Fatal("other keys are independent")
	}

	clock.Advance(2 * time.Minute)
	d, _ = rl.Allow(ctx, "1.2.3.4")
	if d.Allowed || d.RetryAfter != 3*time.Minute {
		t.Fatalf("still blocked with 3m left, got %+v", d)
	}

	clock.Advance(3 * time.Minute)
	if d, _ := rl.Allow(ctx, "1.2.3.4"); !d.Allowed {
		t.Fatal("block should have expired")
	}
}

func TestMemoryLimiterResetAndCleanup(t *testing.T) {
	clock := newTestClock()
	rl := newMemoryLimiterForTest(t, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = rl.Allow(ctx, "k")
	}
	_ = rl.Reset(ctx, "k")
	if d, _ := rl.Allow(ctx, "k"); !d.Allowed {
		t.Fatal("reset should clear the attempts")
	}

	clock.Advance(2 * time.Minute)
	rl.cleanup()
	rl.mu.Lock()
	n := len(rl.attempts)
	rl.mu.Unlock()
	if n != 0 {
		t.Fatalf("cleanup left %d entries", n)
	}
}

func newRedisLimiterForTest(t *testing.T) (*miniredis.Miniredis, *RedisLimiter) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return m, NewRedisLimiter(client, "login_test", 2, time.Minute)
}

func TestRedisLimiterFixedWindow(t *testing.T) {
	m, rl := newRedisLimiterForTest(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := rl.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !d.Allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	d, err := rl.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed || d.RetryAfter <= 0 || d.RetryAfter > time.Minute {
		t.Fatalf("third attempt should be denied with a retry-after, got %+v", d)
	}

	m.FastForward(time.Minute + time.Second)
	if d, err := rl.Allow(ctx, "10.0.0.1"); err != nil || !d.Allowed {
		t.Fatalf("new window should allow, got %+v err=%v", d, err)
	}

	if err := rl.Reset(ctx, "10.0.0.1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if m.Exists("login_test:10.0.0.1") {
		t.Fatal("reset should delete the counter")
	}
}

func TestRedisLimiterArmsCounterWithoutTTL(t *testing.T) {
	m, rl := newRedisLimiterForTest(t)
	ctx := context.Background()

	// a counter left behind without an expiry, already over the limit
	if err := m.Set("login_test:10.0.0.2", "7"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	d, err := rl.Allow(ctx, "10.0.0.2")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed || d.RetryAfter <= 0 || d.RetryAfter > time.Minute {
		t.Fatalf("expected a denial bounded by the window, got %+v", d)
	}
	if ttl := m.TTL("login_test:10.0.0.2"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("counter should carry the window expiry, ttl = %v", ttl)
	}

	m.FastForward(time.Minute + time.Second)
	if d, err := rl.Allow(ctx, "10.0.0.2"); err != nil || !d.Allowed {
		t.Fatalf("client should recover after the window, got %+v err=%v", d, err)
	}
}

func TestRedisLimiterKeepsWindowOnLaterAttempts(t *testing.T) {
	m, rl := newRedisLimiterForTest(t)
	ctx := context.Background()

	_, _ = rl.Allow(ctx, "10.0.0.3")
	m.FastForward(40 * time.Second)
	_, _ = rl.Allow(ctx, "10.0.0.3")

	// the second attempt must not restart the window
	if ttl := m.TTL("login_test:10.0.0.3"); ttl <= 0 || ttl > 20*time.Second {
		t.Fatalf("ttl = %v, want the remainder of the first window", ttl)
	}
}

func TestRedisLimiterBackendErrors(t *testing.T) {
	if _, err := NewRedisLimiter(nil, "", 1, time.Minute).Allow(context.Background(), "k"); err == nil {
		t.Fatal("expected nil client error")
	}

	m, rl := newRedisLimiterForTest(t)
	m.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := rl.Allow(ctx, "k"); err == nil {
		t.Fatal("expected backend error")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	clock := newTestClock()
	rl := newMemoryLimiterForTest(t, clock)

	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimitMiddleware(rl, metrics.New(), zerolog.Nop()))

	var rec *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, req)
	}

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "300" {
		t.Fatalf("Retry-After = %q, want 300", got)
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (Decision, error) {
	return Decision{}, errors.New("connection refused")
}

func (failingLimiter) Reset(context.Context, string) error { return nil }

func TestRateLimitMiddlewareFailsOpen(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimitMiddleware(failingLimiter{}, metrics.New(), logger))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.0.2.9:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	out := logs.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "connection refused") || !strings.Contains(out, "192.0.2.9") {
		t.Fatalf("limiter error not logged: %s", out)
	}
}
