package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/autojack/internal/config"
	"github.com/lox/autojack/internal/controller"
	"github.com/lox/autojack/internal/gameid"
	"github.com/lox/autojack/internal/sink"
)

// ConfigFlags are the options shared by commands that play paced rounds
type ConfigFlags struct {
	Config   string `short:"c" default:"autojack.hcl" help:"Path to HCL configuration file"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Seed     *int64 `help:"Deterministic RNG seed (overrides config)"`
	Sink     string `help:"Round sink: none, http, file, sqlite or mysql (overrides config)"`
	Endpoint string `help:"Game API base URL for the http sink (overrides config)"`
	DSN      string `help:"Database DSN for the sqlite and mysql sinks (overrides config)"`
}

// load reads the config file and applies command line overrides
func (f *ConfigFlags) load() (*config.Config, error) {
	cfg, err := config.Load(f.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.Seed != nil {
		cfg.AutoPlay.Seed = *f.Seed
	}
	if f.Sink != "" {
		cfg.Sink.Kind = f.Sink
	}
	if f.Endpoint != "" {
		cfg.Sink.Endpoint = f.Endpoint
	}
	if f.DSN != "" {
		cfg.Sink.DSN = f.DSN
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// table is a controller wired to its round sink
type table struct {
	session    string
	controller *controller.Controller
	batcher    *sink.Batcher
}

func newTable(cfg *config.Config, clock quartz.Clock, logger *log.Logger) (*table, error) {
	session := gameid.Generate()
	logger = logger.With("session", session)

	s, err := sink.Open(cfg.SinkOptions(session), logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s sink: %w", cfg.Sink.Kind, err)
	}
	batcher := sink.NewBatcher(s, sink.DefaultBatchSize, logger)

	c := controller.New(controller.Config{
		StepDelay:    cfg.StepDelay(),
		RestartDelay: cfg.RestartDelay(),
		Seed:         cfg.AutoPlay.Seed,
		SessionID:    session,
	}, clock, batcher, logger)

	logger.Info("Table ready",
		"sink", cfg.Sink.Kind,
		"stepDelay", cfg.StepDelay(),
		"restartDelay", cfg.RestartDelay())

	return &table{session: session, controller: c, batcher: batcher}, nil
}
