// Package config loads runtime settings from the environment, optionally
// primed from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minSecretLen = 32

type Config struct {
	HTTPAddr string
	GRPCAddr string

	DatabaseURL    string
	MigrateOnStart bool

	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	TokenSweepInterval time.Duration
	LoginRatePerSec    int
	LoginRateBurst     int

	LogLevel string
}

// Load reads .env files (when present) and then the process environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromLookup(os.Getenv)
}

// FromLookup builds a Config using getenv for every variable.
func FromLookup(getenv func(string) string) (Config, error) {
	p := parser{getenv: getenv}
	cfg := Config{
		HTTPAddr:           p.str("SCX_HTTP_ADDR", ":8080"),
		GRPCAddr:           p.str("SCX_GRPC_ADDR", ""),
		DatabaseURL:        p.str("SCX_DATABASE_URL", ""),
		MigrateOnStart:     p.boolean("SCX_MIGRATE_ON_START", false),
		JWTSecret:          p.str("SCX_JWT_SECRET", ""),
		JWTIssuer:          p.str("SCX_JWT_ISSUER", "supplychainx"),
		AccessTokenTTL:     p.duration("SCX_ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:    p.duration("SCX_REFRESH_TOKEN_TTL", 7*24*time.Hour),
		TokenSweepInterval: p.duration("SCX_TOKEN_SWEEP_INTERVAL", time.Hour),
		LoginRatePerSec:    p.integer("SCX_LOGIN_RATE_PER_SEC", 5),
		LoginRateBurst:     p.integer("SCX_LOGIN_RATE_BURST", 10),
		LogLevel:           strings.ToLower(p.str("SCX_LOG_LEVEL", "info")),
	}
	if len(p.errs) > 0 {
		return Config{}, errors.Join(p.errs...)
	}
	return cfg, nil
}

// Validate checks the settings required to serve the API.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("SCX_DATABASE_URL is required"))
	}
	if len(c.JWTSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("SCX_JWT_SECRET must be at least %d bytes", minSecretLen))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("SCX_ACCESS_TOKEN_TTL must be positive"))
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		errs = append(errs, errors.New("SCX_REFRESH_TOKEN_TTL must exceed SCX_ACCESS_TOKEN_TTL"))
	}
	if c.TokenSweepInterval < 0 {
		errs = append(errs, errors.New("SCX_TOKEN_SWEEP_INTERVAL must not be negative"))
	}
	if c.LoginRatePerSec <= 0 || c.LoginRateBurst <= 0 {
		errs = append(errs, errors.New("login rate limits must be positive"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("SCX_LOG_LEVEL %q is not one of debug|info|warn|error", c.LogLevel))
	}
	return errors.Join(errs...)
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (p *parser) integer(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (p *parser) boolean(key string, def bool) bool {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}
