// Package config loads the autojack HCL configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/autojack/internal/sink"
)

// Config represents the complete configuration
type Config struct {
	AutoPlay AutoPlaySettings `hcl:"autoplay,block"`
	Server   ServerSettings   `hcl:"server,block"`
	Log      LogSettings      `hcl:"log,block"`
	Sink     SinkSettings     `hcl:"sink,block"`
}

// AutoPlaySettings controls round pacing
type AutoPlaySettings struct {
	StepDelay    string `hcl:"step_delay,optional"`
	RestartDelay string `hcl:"restart_delay,optional"`
	Seed         int64  `hcl:"seed,optional"`
	Start        bool   `hcl:"start,optional"`
}

// ServerSettings configures the HTTP/websocket feed
type ServerSettings struct {
	Address string `hcl:"address,optional"`
	Port    int    `hcl:"port,optional"`
	Enabled *bool  `hcl:"enabled,optional"`
}

// LogSettings configures logging
type LogSettings struct {
	Level string `hcl:"level,optional"`
}

// SinkSettings selects where finished rounds are sent
type SinkSettings struct {
	Kind      string `hcl:"kind,optional"`
	Endpoint  string `hcl:"endpoint,optional"`
	Timeout   string `hcl:"timeout,optional"`
	Path      string `hcl:"path,optional"`
	DSN       string `hcl:"dsn,optional"`
}

// Default returns the default configuration
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from an HCL file. A missing file yields defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	// Blocks are optional in the file, so decode into a partial shape first
	var partial struct {
		AutoPlay *AutoPlaySettings `hcl:"autoplay,block"`
		Server   *ServerSettings   `hcl:"server,block"`
		Log      *LogSettings      `hcl:"log,block"`
		Sink     *SinkSettings     `hcl:"sink,block"`
	}
	diags = gohcl.DecodeBody(file.Body, nil, &partial)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	var config Config
	if partial.AutoPlay != nil {
		config.AutoPlay = *partial.AutoPlay
	}
	if partial.Server != nil {
		config.Server = *partial.Server
	}
	if partial.Log != nil {
		config.Log = *partial.Log
	}
	if partial.Sink != nil {
		config.Sink = *partial.Sink
	}
	config.applyDefaults()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.AutoPlay.StepDelay == "" {
		c.AutoPlay.StepDelay = "500ms"
	}
	if c.AutoPlay.RestartDelay == "" {
		c.AutoPlay.RestartDelay = "1500ms"
	}
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Enabled == nil {
		enabled := true
		c.Server.Enabled = &enabled
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Sink.Kind == "" {
		c.Sink.Kind = sink.KindHTTP
	}
	if c.Sink.Endpoint == "" {
		c.Sink.Endpoint = sink.DefaultEndpoint
	}
	if c.Sink.Timeout == "" {
		c.Sink.Timeout = "10s"
	}
	if c.Sink.Path == "" {
		c.Sink.Path = "rounds"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	for name, value := range map[string]string{
		"autoplay.step_delay":    c.AutoPlay.StepDelay,
		"autoplay.restart_delay": c.AutoPlay.RestartDelay,
		"sink.timeout":           c.Sink.Timeout,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, value)
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	switch c.Sink.Kind {
	case sink.KindNone, sink.KindHTTP, sink.KindFile:
	case sink.KindSQLite, sink.KindMySQL:
		if c.Sink.DSN == "" {
			return fmt.Errorf("sink %s requires a dsn", c.Sink.Kind)
		}
	default:
		return fmt.Errorf("invalid sink kind: %s", c.Sink.Kind)
	}

	return nil
}

// StepDelay returns the parsed delay between steps
func (c *Config) StepDelay() time.Duration {
	d, _ := time.ParseDuration(c.AutoPlay.StepDelay)
	return d
}

// RestartDelay returns the parsed delay between rounds
func (c *Config) RestartDelay() time.Duration {
	d, _ := time.ParseDuration(c.AutoPlay.RestartDelay)
	return d
}

// ServerEnabled reports whether the feed server should run
func (c *Config) ServerEnabled() bool {
	return c.Server.Enabled == nil || *c.Server.Enabled
}

// ServerAddress returns the listen address
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// SinkOptions converts the sink block to sink.Options
func (c *Config) SinkOptions(sessionID string) sink.Options {
	timeout, _ := time.ParseDuration(c.Sink.Timeout)
	return sink.Options{
		Kind:      c.Sink.Kind,
		Endpoint:  c.Sink.Endpoint,
		Timeout:   timeout,
		Path:      c.Sink.Path,
		DSN:       c.Sink.DSN,
		SessionID: sessionID,
	}
}
