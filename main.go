package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"schoolsite-backend/internal/api"
	"schoolsite-backend/internal/auth"
	"schoolsite-backend/internal/config"
	"schoolsite-backend/internal/database"
	"schoolsite-backend/internal/logging"
	"schoolsite-backend/internal/metrics"
	"schoolsite-backend/internal/models"
	"schoolsite-backend/internal/records"
	"schoolsite-backend/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(cfg.Log)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	logger.Info().Str("driver", cfg.Database.Driver).Msg("opening database")
	db, err := database.Open(ctx, database.Config{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	// Create the first SUPER_ADMIN if no users exist
	if err := createDefaultAdminIfNeeded(ctx, database.NewUserRepo(db), cfg.Admin, logger); err != nil {
		logger.Warn().Err(err).Msg("failed to create default admin")
	}

	m := metrics.New()
	codec := auth.NewTokenCodec(cfg.JWT.Secret, cfg.JWT.TTL)
	extractor := auth.DefaultExtractor(cfg.Cookie.Name)

	limiter, closeLimiter := newLoginLimiter(ctx, cfg.RateLimit, logger)
	defer closeLimiter()

	deps := api.Deps{
		DB:      db,
		Auth:    auth.NewService(database.NewUserRepo(db), database.NewOTPRepo(db), codec, extractor),
		Gate:    auth.NewGate(codec, extractor, m),
		Cookies: auth.NewCookiePolicy(cfg.Cookie, codec.TTL()),
		Limiter: limiter,
		Metrics: m,
		Logger:  logger,
	}

	if cfg.Storage.Enabled() {
		images, err := storage.NewMinIOStore(ctx, cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize image storage")
		}
		deps.Images = images
		logger.Info().Str("bucket", cfg.Storage.Bucket).Msg("image uploads enabled")
	}

	if cfg.Mongo.Enabled() {
		client, err := records.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to mongodb")
		}
		defer client.Disconnect(context.Background())

		store, err := records.NewMongoStore(ctx, client, cfg.Mongo.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize student records")
		}
		deps.Records = store
		logger.Info().Str("database", cfg.Mongo.Database).Msg("student records enabled")
	}

	e := api.NewServer(api.NewHandler(deps), cfg.Server.AllowedOrigins)

	go func() {
		logger.Info().Str("addr", cfg.Addr()).Msg("starting school site backend")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newLoginLimiter uses Redis when configured so every instance shares the
// attempt counters, and an in-process limiter otherwise
func newLoginLimiter(ctx context.Context, cfg config.RateLimitConfig, logger zerolog.Logger) (auth.LoginLimiter, func()) {
	if cfg.RedisAddr == "" {
		limiter := auth.NewMemoryLimiter(cfg.MaxAttempts, cfg.Window, cfg.BlockTime)
		return limiter, limiter.Close
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("login rate limiting backed by redis")
	return auth.NewRedisLimiter(client, cfg.RedisPrefix, cfg.MaxAttempts, cfg.Window), func() { _ = client.Close() }
}

// createDefaultAdminIfNeeded creates the first SUPER_ADMIN from the admin
// config section when the users table is empty
func createDefaultAdminIfNeeded(ctx context.Context, users *database.UserRepo, cfg config.AdminConfig, logger zerolog.Logger) error {
	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if cfg.Email == "" || cfg.Password == "" {
		logger.Warn().Msg("no users exist; set ADMIN_EMAIL and ADMIN_PASSWORD to create the first administrator")
		return nil
	}

	passwordHash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	logger.Info().Str("email", cfg.Email).Msg("creating default SUPER_ADMIN")
	return users.Create(ctx, &models.User{
		Email:        cfg.Email,
		PasswordHash: passwordHash,
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
	})
}
