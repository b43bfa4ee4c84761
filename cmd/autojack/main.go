package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Run      RunCmd           `cmd:"" default:"withargs" help:"Play rounds headlessly and serve the live feed"`
	TUI      TUICmd           `cmd:"" name:"tui" help:"Watch and control auto-play in the terminal"`
	Simulate SimulateCmd      `cmd:"" help:"Play many rounds without delays and report statistics"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("autojack"),
		kong.Description("Autonomous blackjack round simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
