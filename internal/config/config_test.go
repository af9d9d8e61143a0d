package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func lookup(env map[string]string) func(string) string {
	return func(k string) string { return env[k] }
}

func TestDefaults(t *testing.T) {
	cfg, err := FromLookup(lookup(nil))
	if err != nil {
		t.Fatalf("FromLookup: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.AccessTokenTTL != 15*time.Minute || cfg.RefreshTokenTTL != 168*time.Hour {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.GRPCAddr != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestInvalidValuesAreReported(t *testing.T) {
	_, err := FromLookup(lookup(map[string]string{
		"SCX_ACCESS_TOKEN_TTL": "fifteen",
		"SCX_MIGRATE_ON_START": "maybe",
	}))
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "SCX_ACCESS_TOKEN_TTL") || !strings.Contains(msg, "SCX_MIGRATE_ON_START") {
		t.Fatalf("error should name both variables: %s", msg)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := FromLookup(lookup(map[string]string{
		"SCX_DATABASE_URL": "postgres://localhost/scx",
		"SCX_JWT_SECRET":   strings.Repeat("k", 32),
	}))
	if err != nil {
		t.Fatalf("FromLookup: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	cfg.JWTSecret = "short"
	cfg.DatabaseURL = ""
	err = cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "SCX_JWT_SECRET") || !strings.Contains(err.Error(), "SCX_DATABASE_URL") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("SCX_HTTP_ADDR=:9191\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("SCX_HTTP_ADDR", "")
	os.Unsetenv("SCX_HTTP_ADDR")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9191" {
		t.Fatalf("expected addr from env file, got %q", cfg.HTTPAddr)
	}
}

func TestLoadIgnoresMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}
