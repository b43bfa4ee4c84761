package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"

	"github.com/lox/autojack/cmd/autojack/shared"
	"github.com/lox/autojack/internal/tui"
)

// TUICmd runs the interactive terminal viewer
type TUICmd struct {
	ConfigFlags `embed:""`

	LogFile string `default:"autojack.log" help:"File to write logs to while the TUI owns the terminal"`
	Start   bool   `help:"Start auto-play immediately (overrides config)"`
	NoColor bool   `help:"Disable colors"`
}

func (c *TUICmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}

	logFile, err := tea.LogToFile(c.LogFile, "")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger := shared.SetupLoggerTo(logFile, cfg.Log.Level)

	if c.NoColor || tui.ColorDisabledByEnv() {
		tui.DisableColor()
	}

	t, err := newTable(cfg, quartz.NewReal(), logger)
	if err != nil {
		return err
	}
	defer func() {
		t.controller.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := t.batcher.Close(ctx); err != nil {
			logger.Error("Failed to flush rounds", "error", err)
		}
	}()

	if c.Start || cfg.AutoPlay.Start {
		t.controller.SetAutoPlay(true)
	}

	program := tea.NewProgram(tui.NewModel(t.controller, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
