package cli

import (
	"os"
	"time"

	"github.com/ccwatch/ccw/internal/domain"
	"github.com/ccwatch/ccw/internal/process"
	"github.com/ccwatch/ccw/internal/transcript"
)

// resolveSessionsDir picks the transcript root: flag first, then config,
// then the agent's default location.
func resolveSessionsDir(globals *Globals, flagDir string) string {
	if flagDir != "" {
		return flagDir
	}
	if globals.Config != nil && globals.Config.Defaults.SessionsDir != "" {
		return globals.Config.Defaults.SessionsDir
	}
	return transcript.DefaultSessionsDir()
}

func agentName(globals *Globals) string {
	if globals.Config != nil && globals.Config.Defaults.Agent != "" {
		return globals.Config.Defaults.Agent
	}
	return "claude"
}

// loadSessions scans the transcript root and marks which sessions have a
// live agent process attached.
func loadSessions(globals *Globals, dir string) ([]*domain.Session, []domain.LiveProcess, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, nil, err
	}

	sessions := transcript.ScanDirectory(dir)

	matcher := process.NewMatcher(agentName(globals), func() map[string]string {
		return transcript.CurrentSessionIDs(transcript.DefaultHistoryPath())
	})
	if globals.Config != nil && globals.Config.Defaults.ActiveThresholdSeconds > 0 {
		matcher.Threshold = time.Duration(globals.Config.Defaults.ActiveThresholdSeconds) * time.Second
	}
	matcher.MarkActive(sessions)

	procs := process.ListAgentProcesses(agentName(globals))
	procs = matcher.AnnotateSessionIDs(procs, sessions)

	return sessions, procs, nil
}
