package main

import (
	"context"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/autojack/cmd/autojack/shared"
	"github.com/lox/autojack/internal/server"
)

// RunCmd plays rounds headlessly and serves the live feed
type RunCmd struct {
	ConfigFlags `embed:""`

	Addr     string `short:"a" help:"Server address host:port (overrides config)"`
	NoServer bool   `help:"Do not serve the HTTP/websocket feed"`
	Paused   bool   `help:"Wait for a client to start auto-play"`
}

func (c *RunCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(cfg.Log.Level)

	t, err := newTable(cfg, quartz.NewReal(), logger)
	if err != nil {
		return err
	}

	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()

	defer func() {
		t.controller.Stop()
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer flushCancel()
		if err := t.batcher.Close(flushCtx); err != nil {
			logger.Error("Failed to flush rounds", "error", err)
		}
	}()

	if !c.Paused {
		t.controller.SetAutoPlay(true)
	}

	if c.NoServer || !cfg.ServerEnabled() {
		logger.Info("Auto-play running without feed server")
		<-ctx.Done()
		return nil
	}

	addr := cfg.ServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}
	return server.NewServer(addr, t.controller, logger).ListenAndServe(ctx)
}
