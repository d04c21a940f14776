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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "storage_path: storage/school.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "storage/school.db", cfg.StoragePath)
	assert.Equal(t, "127.0.0.1:8082", cfg.HTTPServer.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.ReadTimeout)
	assert.Equal(t, 5*time.Second, cfg.HTTPServer.ShutdownTimeout)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
env: prod
storage_path: /tmp/school.db
log:
  level: warn
  format: json
http_server:
  address: 127.0.0.1:9000
  write_timeout: 3s
  allowed_origins:
    - http://localhost:5173
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, Log{Level: "warn", Format: "json"}, cfg.Log)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.WriteTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "storage_path: a.db\n")
	t.Setenv("STORAGE_PATH", "b.db")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "b.db", cfg.StoragePath)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("STORAGE_PATH", "env.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.StoragePath)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "does not exist")

	t.Setenv("STORAGE_PATH", "unset")
	require.NoError(t, os.Unsetenv("STORAGE_PATH"))
	_, err = Load(writeConfig(t, "env: dev\n"))
	assert.Error(t, err)
}
