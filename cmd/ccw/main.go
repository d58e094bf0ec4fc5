package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ccwatch/ccw/internal/cli"
	"github.com/ccwatch/ccw/internal/config"
)

func main() {
	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Apply config defaults before parsing
	// These will be overridden by CLI flags if specified
	vars := kong.Vars{
		"config_format":     cfg.Format,
		"config_spawn_mode": cfg.Defaults.SpawnMode,
		"config_limit":      fmt.Sprintf("%d", cfg.Defaults.Limit),
		"version":           fmt.Sprintf("ccw %s (%s)", cli.Version, cli.Commit),
	}

	ctx := kong.Parse(&c,
		kong.Name("ccw"),
		kong.Description("ccw: Browse and control Claude Code sessions from the terminal\n\nAI agents: use '--format ndjson' for machine-readable output"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	// Create globals with config fallbacks
	globals := cli.NewGlobalsWithConfig(&c, cfg)
	err = ctx.Run(globals)
	if err != nil {
		os.Exit(1)
	}
}
