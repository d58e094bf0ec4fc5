package cli

import (
	"github.com/ccwatch/ccw/internal/output"
	"github.com/ccwatch/ccw/internal/process"
)

// PsCmd lists running agent processes with their working directories
type PsCmd struct {
	SessionsDir string `short:"d" help:"Transcript root directory used to attribute sessions"`
}

// Run executes the ps command
func (c *PsCmd) Run(globals *Globals) error {
	dir := resolveSessionsDir(globals, c.SessionsDir)

	_, procs, err := loadSessions(globals, dir)
	if err != nil {
		// Session attribution is best effort; process listing still works
		// without a readable transcript root.
		globals.Debug("session attribution unavailable: %v", err)
		procs = process.ListAgentProcesses(agentName(globals))
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteProcesses(procs)
	}

	tw := output.NewTextWriter(globals.Stdout)
	tw.Color = globals.ColorEnabled()
	return tw.WriteProcesses(procs)
}
