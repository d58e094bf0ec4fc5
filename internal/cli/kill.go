package cli

import (
	"fmt"

	"github.com/ccwatch/ccw/internal/process"
)

// KillCmd terminates an agent session or pid
type KillCmd struct {
	Session string `arg:"" optional:"" help:"Session ID to terminate"`
	PID     int    `help:"Process ID to terminate instead of a session"`
	Force   bool   `short:"f" help:"Send SIGKILL instead of SIGTERM"`
}

// Run executes the kill command
func (c *KillCmd) Run(globals *Globals) error {
	if c.Session == "" && c.PID == 0 {
		return outputErrorCommon(globals, "MISSING_TARGET",
			"nothing to kill", "pass a session ID or --pid")
	}

	if c.PID != 0 {
		ok, msg := process.KillAgentPID(agentName(globals), c.PID, c.Force)
		if !ok {
			return outputErrorCommon(globals, "KILL_FAILED", msg)
		}
		if !globals.Quiet {
			fmt.Fprintln(globals.Stdout, msg)
		}
		return nil
	}

	dir := resolveSessionsDir(globals, "")
	_, procs, err := loadSessions(globals, dir)
	if err != nil {
		procs = process.ListAgentProcesses(agentName(globals))
	}

	ok, msg := process.KillSession(c.Session, procs, c.Force)
	if !ok {
		return outputErrorCommon(globals, "KILL_FAILED", msg,
			"run 'ccw ps' to see live sessions")
	}
	if !globals.Quiet {
		fmt.Fprintln(globals.Stdout, msg)
	}
	return nil
}
