package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
log:
  level: warn
auth:
  jwt_secret: yaml-secret
  token_ttl: 90m
otp:
  digits: 8
presence:
  ttl: 30m
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Fatalf("unexpected log level: %s", cfg.Log.Level)
	}
	if cfg.Auth.JWTSecret != "yaml-secret" {
		t.Fatalf("unexpected jwt secret: %s", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != 90*time.Minute {
		t.Fatalf("unexpected token ttl: %s", cfg.Auth.TokenTTL)
	}
	if cfg.OTP.Digits != 8 {
		t.Fatalf("unexpected otp digits: %d", cfg.OTP.Digits)
	}
	if cfg.Presence.TTL != 30*time.Minute {
		t.Fatalf("unexpected presence ttl: %s", cfg.Presence.TTL)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("http addr default should stay :8080, got %s", cfg.HTTP.Addr)
	}
	if cfg.OTP.MaxAttempts != 5 {
		t.Fatalf("otp max_attempts default should stay 5, got %d", cfg.OTP.MaxAttempts)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("HTTP_ADDR", ":9091")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("TOKEN_TTL", "45m")
	t.Setenv("OTP_MAX_ATTEMPTS", "3")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9091" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("unexpected jwt secret: %s", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != 45*time.Minute {
		t.Fatalf("unexpected token ttl: %s", cfg.Auth.TokenTTL)
	}
	if cfg.OTP.MaxAttempts != 3 {
		t.Fatalf("unexpected otp max_attempts: %d", cfg.OTP.MaxAttempts)
	}
	if cfg.Redis.DB != 2 {
		t.Fatalf("unexpected redis db: %d", cfg.Redis.DB)
	}
}

func TestLoadRejectsMalformedEnvDuration(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TOKEN_TTL", "not-a-duration")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for malformed TOKEN_TTL")
	}
}

func TestLoadIgnoresMissingFile(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("defaults should apply when file is absent, got addr %s", cfg.HTTP.Addr)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"JWT_SECRET",
		"TOKEN_TTL",
		"OTP_DIGITS",
		"OTP_MAX_ATTEMPTS",
		"PRESENCE_TTL",
		"RATE_LOGIN_PER_MINUTE",
		"RATE_OTP_PER_MINUTE",
		"CLEANUP_INTERVAL",
		"CLEANUP_SESSION_RETENTION",
		"CLEANUP_OTP_RETENTION",
	} {
		t.Setenv(key, "")
	}
}
