package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ccwatch/ccw/internal/domain"
	"github.com/ccwatch/ccw/internal/process"
	"github.com/ccwatch/ccw/internal/session"
	"github.com/ccwatch/ccw/internal/spawn"
	"github.com/ccwatch/ccw/internal/tui"
	"github.com/ccwatch/ccw/internal/watcher"
)

// RunCmd launches the interactive session browser
type RunCmd struct {
	SessionsDir string `short:"d" help:"Transcript root directory (default: ~/.claude/projects)"`
	Terminal    string `short:"t" help:"Terminal emulator for spawns (default: auto-detect)"`
	Demo        bool   `help:"Browse generated demo sessions instead of real transcripts" hidden:""`
}

// Run executes the run command
func (c *RunCmd) Run(globals *Globals) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if c.Demo {
		return c.runDemo(ctx, globals)
	}

	dir := resolveSessionsDir(globals, c.SessionsDir)
	if _, err := os.Stat(dir); err != nil {
		return outputErrorCommon(globals, "SESSIONS_DIR_NOT_FOUND",
			fmt.Sprintf("cannot read sessions directory: %s", dir),
			"pass --sessions-dir or set CCW_SESSIONS_DIR")
	}

	spawner := spawn.New(agentName(globals))
	spawner.Terminal = c.Terminal
	if spawner.Terminal == "" && globals.Config != nil {
		spawner.Terminal = globals.Config.Defaults.Terminal
	}

	// Transcript changes feed the TUI through a buffered channel; the
	// watcher callback must never block.
	events := make(chan string, 32)
	notify := func(path string) {
		select {
		case events <- path:
		default:
		}
	}
	w := watcher.New(dir, notify, notify)
	if err := w.Start(); err != nil {
		globals.Debug("watcher unavailable, refresh is manual only: %v", err)
	} else {
		defer w.Stop()
	}

	tracker := session.NewTracker()
	model := tui.New(tui.Options{
		Reload: func() []*domain.Session {
			sessions, _, err := loadSessions(globals, dir)
			if err != nil {
				return nil
			}
			for _, change := range tracker.Diff(sessions) {
				globals.Debug("session %s changed: new=%t messages+%d live=%t ended=%t",
					change.SessionID, change.New, change.NewMessages, change.BecameLive, change.Ended)
			}
			return sessions
		},
		Events: events,
		Spawn:  spawner.SpawnExternal,
		Kill: func(sessionID string) (bool, string) {
			procs := process.ListAgentProcesses(agentName(globals))
			matcher := process.NewMatcher(agentName(globals), nil)
			sessions, _, err := loadSessions(globals, dir)
			if err == nil {
				procs = matcher.AnnotateSessionIDs(procs, sessions)
			}
			return process.KillSession(sessionID, procs, false)
		},
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runDemo drives the browser with generated data, useful for trying the
// UI without any agent installed.
func (c *RunCmd) runDemo(ctx context.Context, globals *Globals) error {
	sessions := demoSessions()

	model := tui.New(tui.Options{
		Reload: func() []*domain.Session { return sessions },
		Spawn: func(cwd, resumeID string) domain.SpawnResult {
			return domain.SpawnResult{Success: false, Error: "spawning is disabled in demo mode"}
		},
		Kill: func(sessionID string) (bool, string) {
			return false, "killing is disabled in demo mode"
		},
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
