// Package envconfig reads process settings for cmd/sessiond from the
// environment, optionally seeded from a .env file.
package envconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/internal/logging"
	"github.com/joho/godotenv"
)

var (
	ErrMissingSecret = errors.New("JWT_SECRET and JWT_REFRESH_SECRET are required")
	ErrRefreshStore  = errors.New("REFRESH_STORE must be 'redis' or 'database'")
	ErrMissingDSN    = errors.New("DATABASE_URL is required")
	ErrInvalidValue  = errors.New("invalid environment value")
)

type Settings struct {
	Session goSession.Config
	Log     logging.Config

	HTTPAddr      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load applies files (default ".env") to the environment without overriding
// variables already set, then reads Settings. A missing file is not an error.
func Load(files ...string) (Settings, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Settings, error) {
	cfg := goSession.DefaultConfig()
	var p parser

	access := envString("JWT_SECRET", "")
	refresh := envString("JWT_REFRESH_SECRET", "")
	if access == "" || refresh == "" {
		return Settings{}, ErrMissingSecret
	}
	cfg.JWT.AccessSecret = []byte(access)
	cfg.JWT.RefreshSecret = []byte(refresh)
	cfg.JWT.AccessTTL = p.seconds("JWT_EXPIRES_IN", cfg.JWT.AccessTTL)
	cfg.JWT.RefreshTTL = p.seconds("JWT_REFRESH_EXPIRES_IN", cfg.JWT.RefreshTTL)
	cfg.JWT.Issuer = envString("JWT_ISSUER", "")

	env := envString("APP_ENV", envString("NODE_ENV", "development"))
	cfg.ProductionMode = strings.EqualFold(env, "production")

	switch strings.ToLower(envString("REFRESH_STORE", "redis")) {
	case "redis":
		cfg.Store.Backend = goSession.StoreEphemeral
	case "database":
		cfg.Store.Backend = goSession.StoreDurable
	default:
		return Settings{}, ErrRefreshStore
	}

	cfg.Audit.Enabled = p.bool("AUDIT_ENABLED", false)
	cfg.Metrics.EnableLatencyHistograms = p.bool("METRICS_LATENCY", true)

	s := Settings{
		Session:       cfg,
		HTTPAddr:      envString("HTTP_ADDR", ":8080"),
		DatabaseURL:   envString("DATABASE_URL", ""),
		RedisAddr:     envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: envString("REDIS_PASSWORD", ""),
		RedisDB:       p.int("REDIS_DB", 0),
		Log: logging.Config{
			Dev:   p.bool("LOG_DEV", !cfg.ProductionMode),
			Level: envString("LOG_LEVEL", "info"),
		},
	}
	if p.err != nil {
		return Settings{}, p.err
	}
	if s.DatabaseURL == "" {
		return Settings{}, ErrMissingDSN
	}
	if err := s.Session.Validate(); err != nil {
		return Settings{}, fmt.Errorf("session config: %w", err)
	}
	return s, nil
}

// SessionTTLs is a log-friendly summary of the token lifetimes.
func (s Settings) SessionTTLs() (access, refresh time.Duration) {
	return s.Session.JWT.AccessTTL, s.Session.JWT.RefreshTTL
}
