package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Server.EnableCORS)
	assert.Empty(t, cfg.Storage.Path)
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "didcomm.yaml", `
server:
  port: 9090
  rate_limit: 10
  read_timeout: 5s
storage:
  path: /tmp/archive.db
  password: hunter2
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.RateLimit)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout, "unset keys keep defaults")
	assert.True(t, cfg.Server.EnableCORS, "unset keys keep defaults")
	assert.Equal(t, "/tmp/archive.db", cfg.Storage.Path)
	assert.Equal(t, "hunter2", cfg.Storage.Password)
	assert.Equal(t, time.Hour, cfg.Storage.PurgeInterval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	path := writeFile(t, "bad.yaml", "server: [unclosed")
	_, err = Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DIDCOMM_PORT", "7000")
	t.Setenv("DIDCOMM_CORS", "false")
	t.Setenv("DIDCOMM_RATE_LIMIT", "5")
	t.Setenv("DIDCOMM_DB_PATH", "archive.db")
	t.Setenv("DIDCOMM_DB_PASSWORD", "pw")
	t.Setenv("DIDCOMM_PURGE_INTERVAL", "10m")
	t.Setenv("DIDCOMM_LOG_LEVEL", "warn")
	t.Setenv("DIDCOMM_LOG_FORMAT", "json")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.False(t, cfg.Server.EnableCORS)
	assert.Equal(t, 5, cfg.Server.RateLimit)
	assert.Equal(t, "archive.db", cfg.Storage.Path)
	assert.Equal(t, "pw", cfg.Storage.Password)
	assert.Equal(t, 10*time.Minute, cfg.Storage.PurgeInterval)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestApplyEnvInvalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"DIDCOMM_PORT", "eighty"},
		{"DIDCOMM_CORS", "maybe"},
		{"DIDCOMM_RATE_LIMIT", "lots"},
		{"DIDCOMM_PURGE_INTERVAL", "hourly"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg := Default()
			err := cfg.ApplyEnv()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	const key = "DIDCOMM_TEST_ENV_FILE_VALUE"
	// t.Setenv restores the original state after the test
	t.Setenv(key, "")
	os.Unsetenv(key)

	path := writeFile(t, ".env", key+"=from-file\n")
	require.NoError(t, LoadEnvFile(path))

	assert.Equal(t, "from-file", os.Getenv(key))

	err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "failed to load env file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, ErrInvalidPort},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, ErrInvalidPort},
		{"rate limit", func(c *Config) { c.Server.RateLimit = 0 }, ErrInvalidRateLimit},
		{"storage without password", func(c *Config) { c.Storage.Path = "a.db" }, ErrMissingPassword},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}

	cfg := Default()
	cfg.Log.Level = "loud"
	assert.Error(t, cfg.Validate())
}

func TestNewLogger(t *testing.T) {
	logger, err := LogConfig{Level: "debug", Format: "json"}.NewLogger()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger, err = LogConfig{Level: "info", Format: "text"}.NewLogger()
	require.NoError(t, err)
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	_, err = LogConfig{Level: "info", Format: "xml"}.NewLogger()
	assert.ErrorIs(t, err, ErrInvalidLogFormat)

	_, err = LogConfig{Level: "loud"}.NewLogger()
	assert.Error(t, err)
}
