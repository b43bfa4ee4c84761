package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/lox/autojack/cmd/autojack/shared"
	"github.com/lox/autojack/internal/game"
	"github.com/lox/autojack/internal/simulator"
)

// SimulateCmd plays rounds as fast as possible and prints a report
type SimulateCmd struct {
	Rounds   int    `short:"n" default:"100000" help:"Number of rounds to simulate"`
	Workers  int    `short:"w" help:"Parallel workers (default: number of CPUs)"`
	Seed     int64  `default:"0" help:"RNG seed (0 for random)"`
	Bet      int    `help:"Fixed bet per round (default: random $5-$25)"`
	LogLevel string `default:"warn" help:"Log level (debug|info|warn|error)"`
}

func (c *SimulateCmd) Run() error {
	logger := shared.SetupLogger(c.LogLevel)

	if c.Bet < 0 || c.Bet > game.StartingWallet {
		return fmt.Errorf("bet must be between 0 and %d, got %d", game.StartingWallet, c.Bet)
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()

	sim := simulator.New(simulator.Config{
		Rounds:  c.Rounds,
		Workers: workers,
		Seed:    c.Seed,
		Bet:     c.Bet,
		Logger:  logger,
	})

	fmt.Printf("Starting simulation: %d rounds across %d workers\n", c.Rounds, workers)
	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	simulator.PrintSummary(os.Stdout, res)
	return nil
}
