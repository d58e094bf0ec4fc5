package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ccwatch/ccw/internal/output"
	"github.com/ccwatch/ccw/internal/spawn"
	"github.com/ccwatch/ccw/internal/term"
)

// SpawnCmd starts a new agent session in a directory
type SpawnCmd struct {
	Dir      string `arg:"" optional:"" default:"." help:"Working directory for the new session"`
	Resume   string `short:"r" help:"Session ID to resume instead of starting fresh"`
	Mode     string `short:"m" enum:"external,embedded," default:"${config_spawn_mode}" help:"Spawn in a new terminal window or attached to this one"`
	Terminal string `short:"t" help:"Terminal emulator to use for external spawns (default: auto-detect)"`
}

// Run executes the spawn command
func (c *SpawnCmd) Run(globals *Globals) error {
	dir, err := filepath.Abs(c.Dir)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_DIR", fmt.Sprintf("cannot resolve directory: %s", c.Dir))
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return outputErrorCommon(globals, "INVALID_DIR",
			fmt.Sprintf("not a directory: %s", dir),
			"pass an existing directory")
	}

	spawner := spawn.New(agentName(globals))
	spawner.Terminal = c.Terminal
	if spawner.Terminal == "" && globals.Config != nil {
		spawner.Terminal = globals.Config.Defaults.Terminal
	}

	if c.Mode == "embedded" {
		return c.runEmbedded(globals, spawner, dir)
	}

	globals.Debug("Spawning external session in %s", dir)
	result := spawner.SpawnExternal(dir, c.Resume)

	if globals.Format == "ndjson" {
		if err := output.NewNDJSONWriter(globals.Stdout).WriteSpawnResult(result); err != nil {
			return err
		}
	} else {
		output.NewTextWriter(globals.Stdout).WriteSpawnResult(result)
	}
	if !result.Success {
		return fmt.Errorf("spawn failed: %s", result.Error)
	}
	return nil
}

// runEmbedded attaches the agent to the current terminal until it exits.
func (c *SpawnCmd) runEmbedded(globals *Globals, spawner *spawn.Spawner, dir string) error {
	embedded, result := spawner.SpawnEmbedded(dir, c.Resume)
	if !result.Success {
		return outputErrorCommon(globals, "SPAWN_FAILED", result.Error)
	}

	registry := spawn.NewRegistry()
	registry.Track(embedded.PID)
	defer registry.Shutdown()

	session := term.NewSession(embedded)
	session.Start()

	// Forward stdin to the agent while draining its output.
	go func() {
		_, _ = io.Copy(embedded.PTY, os.Stdin)
	}()
	for chunk := range session.Output() {
		_, _ = globals.Stdout.Write(chunk)
	}

	status := <-session.Done()
	registry.Untrack(embedded.PID)
	if status.Code != 0 {
		return fmt.Errorf("agent exited with code %d", status.Code)
	}
	return nil
}
