package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	"schoolsite-backend/internal/auth"
	"schoolsite-backend/internal/config"
	"schoolsite-backend/internal/database"
	"schoolsite-backend/internal/models"
)

func newUserRepo(t *testing.T) *database.UserRepo {
	t.Helper()
	db, err := database.Open(context.Background(), database.Config{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "main.db"),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return database.NewUserRepo(db)
}

func TestCreateDefaultAdminIfNeeded(t *testing.T) {
	ctx := context.Background()
	users := newUserRepo(t)
	admin := config.AdminConfig{Email: "Head@School.test", Password: "first password"}

	if err := createDefaultAdminIfNeeded(ctx, users, admin, zerolog.Nop()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	user, err := users.GetActiveByEmail(ctx, "head@school.test")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if user.Role != models.RoleSuperAdmin || !user.IsActive {
		t.Fatalf("unexpected admin %+v", user)
	}
	if ok, err := auth.VerifyPassword("first password", user.PasswordHash); err != nil || !ok {
		t.Fatalf("password not stored as a hash of the configured one: ok=%v err=%v", ok, err)
	}

	// a second start leaves the existing table alone
	other := config.AdminConfig{Email: "other@school.test", Password: "other password"}
	if err := createDefaultAdminIfNeeded(ctx, users, other, zerolog.Nop()); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if n, _ := users.Count(ctx); n != 1 {
		t.Fatalf("expected 1 user, got %d", n)
	}
}

func TestCreateDefaultAdminSkipsWithoutCredentials(t *testing.T) {
	ctx := context.Background()
	users := newUserRepo(t)

	if err := createDefaultAdminIfNeeded(ctx, users, config.AdminConfig{Email: "head@school.test"}, zerolog.Nop()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if n, _ := users.Count(ctx); n != 0 {
		t.Fatalf("expected no users, got %d", n)
	}
}

func TestNewLoginLimiter(t *testing.T) {
	ctx := context.Background()
	cfg := config.RateLimitConfig{MaxAttempts: 1, Window: time.Minute, BlockTime: time.Minute}

	limiter, closeLimiter := newLoginLimiter(ctx, cfg, zerolog.Nop())
	if _, ok := limiter.(*auth.MemoryLimiter); !ok {
		t.Fatalf("expected the in-process limiter, got %T", limiter)
	}
	closeLimiter()

	mr := miniredis.RunT(t)
	cfg.RedisAddr = mr.Addr()
	cfg.RedisPrefix = "login_main"
	limiter, closeLimiter = newLoginLimiter(ctx, cfg, zerolog.Nop())
	defer closeLimiter()
	if _, ok := limiter.(*auth.RedisLimiter); !ok {
		t.Fatalf("expected the redis limiter, got %T", limiter)
	}

	if d, err := limiter.Allow(ctx, "203.0.113.7"); err != nil || !d.Allowed {
		t.Fatalf("first attempt: %+v err=%v", d, err)
	}
	if d, _ := limiter.Allow(ctx, "203.0.113.7"); d.Allowed {
		t.Fatal("second attempt should be denied")
	}
	if !mr.Exists("login_main:203.0.113.7") {
		t.Fatal("counter not stored under the configured prefix")
	}
}
