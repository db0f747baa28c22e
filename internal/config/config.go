package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrMissingJWTSecret = errors.New("jwt secret is not configured (set JWT_SECRET)")
	ErrInvalidDriver    = errors.New("database driver must be sqlite or postgres")
	ErrMissingDSN       = errors.New("postgres driver requires database.dsn")
	ErrInvalidSameSite  = errors.New("cookie.same_site must be lax, strict or none")
	ErrInsecureSameSite = errors.New("cookie.same_site=none requires cookie.secure=true")
)

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Port            int           `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// CookieConfig drives both setting and clearing the session cookie.
// Same-origin deployments use lax/insecure, cross-origin ones none/secure.
type CookieConfig struct {
	Name     string `mapstructure:"name"`
	Domain   string `mapstructure:"domain"`
	Path     string `mapstructure:"path"`
	SameSite string `mapstructure:"same_site"`
	Secure   bool   `mapstructure:"secure"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type RateLimitConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Window      time.Duration `mapstructure:"window"`
	BlockTime   time.Duration `mapstructure:"block_time"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
}

type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	PublicURL string `mapstructure:"public_url"`
}

// Enabled reports whether image uploads are configured
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// Enabled reports whether the student records store is configured
func (m MongoConfig) Enabled() bool {
	return m.URI != ""
}

// AdminConfig seeds the first SUPER_ADMIN when the users table is empty
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Cookie    CookieConfig    `mapstructure:"cookie"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./schoolsite.db")
	v.SetDefault("database.dsn", "")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("cookie.name", "token")
	v.SetDefault("cookie.domain", "")
	v.SetDefault("cookie.path", "/")
	v.SetDefault("cookie.same_site", "lax")
	v.SetDefault("cookie.secure", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("ratelimit.max_attempts", 5)
	v.SetDefault("ratelimit.window", 15*time.Minute)
	v.SetDefault("ratelimit.block_time", 15*time.Minute)
	v.SetDefault("ratelimit.redis_addr", "")
	v.SetDefault("ratelimit.redis_prefix", "login")

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.public_url", "")

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "school")

	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
}

// Load reads configuration from path (or ./config.yaml when path is empty)
// and applies environment overrides such as JWT_SECRET or SERVER_PORT.
// A missing default config file is not an error; a missing explicit one is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Validate checks settings whose absence is fatal at startup
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return ErrMissingJWTSecret
	}

	switch c.Database.Driver {
	case "sqlite":
	case "postgres":
		if c.Database.DSN == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.Database.Driver)
	}

	switch NormalizeSameSite(c.Cookie.SameSite) {
	case "lax", "strict":
	case "none":
		if !c.Cookie.Secure {
			return ErrInsecureSameSite
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSameSite, c.Cookie.SameSite)
	}

	return nil
}

// NormalizeSameSite is the canonical form of a cookie.same_site value
func NormalizeSameSite(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
