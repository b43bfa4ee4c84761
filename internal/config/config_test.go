package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/autojack/internal/sink"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "autojack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 500*time.Millisecond, cfg.StepDelay())
	assert.Equal(t, 1500*time.Millisecond, cfg.RestartDelay())
	assert.Equal(t, "localhost:8080", cfg.ServerAddress())
	assert.True(t, cfg.ServerEnabled())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, sink.KindHTTP, cfg.Sink.Kind)
	assert.Equal(t, sink.DefaultEndpoint, cfg.Sink.Endpoint)
	require.NoError(t, cfg.Validate())
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
autoplay {
  step_delay    = "250ms"
  restart_delay = "1s"
  seed          = 42
  start         = true
}

server {
  address = "0.0.0.0"
  port    = 9090
  enabled = false
}

log {
  level = "debug"
}

sink {
  kind       = "sqlite"
  dsn        = "rounds.db"
  timeout    = "3s"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 250*time.Millisecond, cfg.StepDelay())
	assert.Equal(t, time.Second, cfg.RestartDelay())
	assert.Equal(t, int64(42), cfg.AutoPlay.Seed)
	assert.True(t, cfg.AutoPlay.Start)
	assert.Equal(t, "0.0.0.0:9090", cfg.ServerAddress())
	assert.False(t, cfg.ServerEnabled())
	assert.Equal(t, "debug", cfg.Log.Level)

	opts := cfg.SinkOptions("session1")
	assert.Equal(t, sink.KindSQLite, opts.Kind)
	assert.Equal(t, "rounds.db", opts.DSN)
	assert.Equal(t, 3*time.Second, opts.Timeout)
	assert.Equal(t, "session1", opts.SessionID)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
sink {
  kind = "none"
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, sink.KindNone, cfg.Sink.Kind)
	assert.Equal(t, 500*time.Millisecond, cfg.StepDelay())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.ServerEnabled())
}

func TestLoadInvalidHCL(t *testing.T) {
	_, err := Load(writeConfig(t, `autoplay {`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `autoplay { seed = "not a number" }`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `unknown { }`))
	assert.Error(t, err)
}

func TestLoadRejectsBatchSize(t *testing.T) {
	path := writeConfig(t, `
sink {
  kind       = "file"
  batch_size = 5
}
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "batch_size")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad step delay", func(c *Config) { c.AutoPlay.StepDelay = "soon" }},
		{"zero restart delay", func(c *Config) { c.AutoPlay.RestartDelay = "0s" }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"unknown sink", func(c *Config) { c.Sink.Kind = "ftp" }},
		{"mysql without dsn", func(c *Config) { c.Sink.Kind = sink.KindMySQL }},
		{"bad sink timeout", func(c *Config) { c.Sink.Timeout = "-1s" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
