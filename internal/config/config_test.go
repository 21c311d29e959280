package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DB_PATH", "LISTEN_ADDR", "LOG_LEVEL", "ENV", "JWT_SECRET", "TOKEN_TTL",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS",
		"POLICY_BOOTSTRAP_FILE", "GUEST_ALLOWANCE_DEFAULT", "READ_POOL_SIZE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "tablekeep.sqlite", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, insecureDevSecret, cfg.JWTSecret)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.InDelta(t, 50.0, cfg.RateLimitRPS, 0.001)
	assert.Equal(t, 100, cfg.RateLimitBurst)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 4, cfg.GuestAllowanceDefault)
	assert.Equal(t, 4, cfg.ReadPoolSize)
	assert.NotEmpty(t, cfg.Warnings)
}

func TestLoadFromEnv_AllVarsSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "/tmp/venue.sqlite")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("RATE_LIMIT_RPS", "5.5")
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("POLICY_BOOTSTRAP_FILE", "/etc/tablekeep/policy.yaml")
	t.Setenv("GUEST_ALLOWANCE_DEFAULT", "2")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/venue.sqlite", cfg.DBPath)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.InDelta(t, 5.5, cfg.RateLimitRPS, 0.001)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "/etc/tablekeep/policy.yaml", cfg.PolicyBootstrapFile)
	assert.Equal(t, 2, cfg.GuestAllowanceDefault)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromEnv_InvalidNumbers(t *testing.T) {
	for _, kv := range [][2]string{
		{"RATE_LIMIT_RPS", "fast"},
		{"RATE_LIMIT_BURST", "-1"},
		{"GUEST_ALLOWANCE_DEFAULT", "many"},
		{"TOKEN_TTL", "forever"},
	} {
		t.Run(kv[0], func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadFromEnv_Production(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "short")
	_, err = LoadFromEnv()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	_, err = LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS")

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://venue.example")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tc := range tests {
		cfg := &Config{LogLevel: tc.in}
		assert.Equal(t, tc.want, cfg.SlogLevel(), tc.in)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nTK_TEST_A=one\nexport TK_TEST_B=\"two\"\nTK_TEST_C='three'\nnot a pair\n\nTK_TEST_SET=fromfile\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TK_TEST_SET", "fromenv")
	for _, k := range []string{"TK_TEST_A", "TK_TEST_B", "TK_TEST_C"} {
		require.NoError(t, os.Unsetenv(k))
		t.Cleanup(func() { _ = os.Unsetenv(k) })
	}

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "one", os.Getenv("TK_TEST_A"))
	assert.Equal(t, "two", os.Getenv("TK_TEST_B"))
	assert.Equal(t, "three", os.Getenv("TK_TEST_C"))
	assert.Equal(t, "fromenv", os.Getenv("TK_TEST_SET"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
