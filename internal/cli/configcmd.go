package cli

import (
	"encoding/json"
	"fmt"

	"github.com/ccwatch/ccw/internal/config"
	"github.com/ccwatch/ccw/internal/output"
)

// ConfigCmd manages configuration
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"1" help:"Show current configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show config file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate a sample config file"`
}

// ConfigShowCmd displays the effective configuration
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if globals.Format == "ndjson" {
		out := map[string]interface{}{
			"type":          "config",
			"schemaVersion": output.SchemaVersion,
			"format":        cfg.Format,
			"level":         cfg.Level,
			"quiet":         cfg.Quiet,
			"verbose":       cfg.Verbose,
			"defaults": map[string]interface{}{
				"sessions_dir":             cfg.Defaults.SessionsDir,
				"agent":                    cfg.Defaults.Agent,
				"terminal":                 cfg.Defaults.Terminal,
				"spawn_mode":               cfg.Defaults.SpawnMode,
				"active_threshold_seconds": cfg.Defaults.ActiveThresholdSeconds,
				"limit":                    cfg.Defaults.Limit,
			},
		}
		return json.NewEncoder(globals.Stdout).Encode(out)
	}

	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintf(globals.Stdout, "  format: %s\n", cfg.Format)
	fmt.Fprintf(globals.Stdout, "  level: %s\n", cfg.Level)
	fmt.Fprintf(globals.Stdout, "  quiet: %t\n", cfg.Quiet)
	fmt.Fprintf(globals.Stdout, "  verbose: %t\n", cfg.Verbose)
	fmt.Fprintln(globals.Stdout, "  Defaults:")
	fmt.Fprintf(globals.Stdout, "    sessions_dir: %s\n", cfg.Defaults.SessionsDir)
	fmt.Fprintf(globals.Stdout, "    agent: %s\n", cfg.Defaults.Agent)
	fmt.Fprintf(globals.Stdout, "    terminal: %s\n", cfg.Defaults.Terminal)
	fmt.Fprintf(globals.Stdout, "    spawn_mode: %s\n", cfg.Defaults.SpawnMode)
	fmt.Fprintf(globals.Stdout, "    active_threshold_seconds: %d\n", cfg.Defaults.ActiveThresholdSeconds)
	fmt.Fprintf(globals.Stdout, "    limit: %d\n", cfg.Defaults.Limit)
	return nil
}

// ConfigPathCmd shows where configuration is loaded from
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		out := map[string]interface{}{
			"type":          "config_path",
			"schemaVersion": output.SchemaVersion,
			"path":          path,
		}
		return json.NewEncoder(globals.Stdout).Encode(out)
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found (using defaults)")
		return nil
	}
	fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	return nil
}

// ConfigGenerateCmd prints a sample config file
type ConfigGenerateCmd struct{}

const sampleConfig = `# ccw configuration file
# Place in ~/.ccw.yaml or ~/.config/ccw/ccw.yaml

format: text
level: default
quiet: false
verbose: false

defaults:
  # sessions_dir: /home/user/.claude/projects
  agent: claude
  # terminal: wezterm
  spawn_mode: external
  active_threshold_seconds: 30
  limit: 50
`

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	fmt.Fprint(globals.Stdout, sampleConfig)
	return nil
}
