// Package cli defines the kong command tree and shared command plumbing.
package cli

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/ccwatch/ccw/internal/config"
)

// Version information, set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// CLI is the top-level command structure
type CLI struct {
	// Global flags
	Format      string           `help:"Output format: text or ndjson" enum:"text,ndjson" default:"${config_format}"`
	Quiet       bool             `short:"q" help:"Suppress non-essential output"`
	Verbose     bool             `short:"v" help:"Enable verbose debug logging"`
	VersionFlag kong.VersionFlag `name:"version" help:"Show version and exit"`

	// Commands
	Run        RunCmd        `cmd:"" default:"withargs" help:"Browse sessions interactively"`
	List       ListCmd       `cmd:"" help:"List agent sessions"`
	Ps         PsCmd         `cmd:"" help:"List running agent processes"`
	Spawn      SpawnCmd      `cmd:"" help:"Start a new agent session"`
	Kill       KillCmd       `cmd:"" help:"Terminate an agent session or pid"`
	Config     ConfigCmd     `cmd:"" help:"Manage configuration"`
	Schema     SchemaCmd     `cmd:"" help:"Output JSON Schema for NDJSON output types"`
	Completion CompletionCmd `cmd:"" help:"Generate shell completions"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

// Globals holds shared state passed to all commands
type Globals struct {
	Format  string
	Level   string
	Quiet   bool
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config

	logger *agentLogger
}

// NewGlobalsWithConfig creates Globals from parsed flags with config fallbacks
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	g := &Globals{
		Format:  c.Format,
		Level:   cfg.Level,
		Quiet:   c.Quiet || cfg.Quiet,
		Verbose: c.Verbose || cfg.Verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
	}
	g.logger = newAgentLogger(g)
	return g
}

// Debug logs a debug message when verbose mode is on
func (g *Globals) Debug(format string, args ...interface{}) {
	if g.logger != nil {
		g.logger.Debug(format, args...)
	}
}

// ColorEnabled reports whether stdout is a terminal that can take ANSI
// styling.
func (g *Globals) ColorEnabled() bool {
	f, ok := g.Stdout.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
