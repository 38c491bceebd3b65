package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: "postgres://localhost/fintrack"
jwt:
  secret: "s3cret"
`)
	t.Setenv("FINTRACK_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "fintrack", cfg.JWTIssuer)
	assert.Equal(t, 6, cfg.OTP_Length)
	assert.Equal(t, 5, cfg.OTP_MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.OTP_TTL)
	assert.Equal(t, 30*time.Second, cfg.OTP_ResendWindow)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 10, cfg.RateLimitMax)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.StrictCategories)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
app:
  port: 9000
database:
  dsn: "postgres://localhost/fintrack"
jwt:
  secret: "from-file"
  ttl: "1h"
otp:
  ttl: "5m"
  max_attempts: 3
`)
	t.Setenv("FINTRACK_CONFIG", path)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PORT", "7000")
	t.Setenv("REDIS_DB", "4")
	t.Setenv("CATEGORIES_STRICT", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, 4, cfg.RedisDB)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.OTP_TTL)
	assert.Equal(t, 3, cfg.OTP_MaxAttempts)
	assert.True(t, cfg.StrictCategories)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing secret", body: "database:\n  dsn: x\n"},
		{name: "missing dsn", body: "jwt:\n  secret: x\n"},
		{name: "bad duration", body: "database:\n  dsn: x\njwt:\n  secret: x\notp:\n  ttl: soon\n"},
		{name: "bad yaml", body: "jwt: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FINTRACK_CONFIG", writeConfig(t, tt.body))
			t.Setenv("JWT_SECRET", "")
			t.Setenv("DATABASE_DSN", "")

			_, err := Load()
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("FINTRACK_CONFIG", filepath.Join(t.TempDir(), "nope.yml"))
		_, err := Load()
		assert.Error(t, err)
	})
}
