package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablekeep/internal/middleware"
)

func TestCurlHostForListenAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		listenAddr string
		want       string
	}{
		{name: "port only", listenAddr: ":8080", want: "localhost:8080"},
		{name: "ipv4 host and port", listenAddr: "127.0.0.1:8080", want: "127.0.0.1:8080"},
		{name: "wildcard ipv4", listenAddr: "0.0.0.0:8080", want: "localhost:8080"},
		{name: "wildcard ipv6", listenAddr: "[::]:8080", want: "localhost:8080"},
		{name: "ipv6 loopback", listenAddr: "[::1]:8080", want: "[::1]:8080"},
		{name: "trim host and port", listenAddr: " localhost:9090 ", want: "localhost:9090"},
		{name: "empty falls back", listenAddr: "", want: "localhost:8080"},
		{name: "malformed passes through", listenAddr: "localhost", want: "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, curlHostForListenAddr(tt.listenAddr))
		})
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedAndToken(t *testing.T) {
	const secret = "cli-test-secret-0123456789abcdef012345"
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("ENV", "development")
	dbPath := filepath.Join(t.TempDir(), "tk.sqlite")
	envFile := filepath.Join(t.TempDir(), "missing.env")

	out, err := run(t, "--env-file", envFile, "--db", dbPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version")

	out, err = run(t, "--env-file", envFile, "--db", dbPath, "seed", "--admin-email", "root@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "root@example.com")

	out, err = run(t, "--env-file", envFile, "--db", dbPath, "token", "--actor", "1")
	require.NoError(t, err)

	v, err := middleware.NewHS256Validator(secret)
	require.NoError(t, err)
	claims, err := v.Validate(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)

	_, err = run(t, "--env-file", envFile, "token")
	require.Error(t, err)
}
