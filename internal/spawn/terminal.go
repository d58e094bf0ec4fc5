// Package spawn starts agent processes, either detached in an external
// terminal emulator window or attached to the caller through a
// pseudo-terminal. All outcomes are reported as values; nothing in this
// package panics or surfaces raw errors to callers.
package spawn

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/ccwatch/ccw/internal/domain"
	"github.com/ccwatch/ccw/internal/tmux"
)

// Failure classes surfaced through SpawnResult.Error.
var (
	ErrExecutableNotFound  = errors.New("agent executable not found in PATH")
	ErrNoTerminalAvailable = errors.New("no supported terminal emulator found")
	ErrUnsupportedTerminal = errors.New("unsupported terminal")
)

// terminalPreference is the lookup order for auto-detection.
var terminalPreference = []string{
	"wezterm",
	"kitty",
	"alacritty",
	"gnome-terminal",
	"konsole",
	"tmux",
	"xterm",
}

// Spawner launches agent sessions. AgentName is the binary to run ("claude"
// by default); Terminal pins a specific emulator, empty means auto-detect.
type Spawner struct {
	AgentName string
	Terminal  string

	// lookPath and startCommand are swapped out in tests.
	lookPath     func(name string) (string, error)
	startCommand func(cmd *exec.Cmd) error
}

// New creates a spawner for the given agent binary.
func New(agentName string) *Spawner {
	return &Spawner{
		AgentName:    agentName,
		lookPath:     exec.LookPath,
		startCommand: func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// AvailableTerminals scans PATH and returns the supported
// terminal emulators found on PATH, in preference order.
func (s *Spawner) AvailableTerminals() []string {
	var available []string
	for _, term := range terminalPreference {
		if _, err := s.lookPath(term); err == nil {
			available = append(available, term)
		}
	}
	return available
}

// SpawnExternal opens a new terminal window in cwd running the agent,
// resuming resumeID when non-empty.
func (s *Spawner) SpawnExternal(cwd, resumeID string) domain.SpawnResult {
	if _, err := s.lookPath(s.AgentName); err != nil {
		return failure(fmt.Errorf("%w: %q", ErrExecutableNotFound, s.AgentName))
	}

	term := s.Terminal
	if term == "" {
		available := s.AvailableTerminals()
		if len(available) == 0 {
			return failure(ErrNoTerminalAvailable)
		}
		term = available[0]
	}

	agentCmd := s.AgentName
	if resumeID != "" {
		agentCmd = fmt.Sprintf("%s --resume %s", s.AgentName, resumeID)
	}

	if term == "tmux" {
		return s.spawnTmux(cwd, agentCmd)
	}

	argv, ok := terminalInvocation(term, cwd, agentCmd)
	if !ok {
		return failure(fmt.Errorf("%w: %q", ErrUnsupportedTerminal, term))
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if err := s.startCommand(cmd); err != nil {
		return failure(fmt.Errorf("failed to launch %s: %w", term, err))
	}
	// The terminal owns the session from here; its own pid is not the
	// agent's and is deliberately not reported.
	go func() { _ = cmd.Wait() }()
	return domain.SpawnResult{Success: true}
}

// terminalInvocation maps an emulator name to its window-opening argv. The
// exact strings are an appendix of supported emulators, not a contract.
func terminalInvocation(term, cwd, agentCmd string) ([]string, bool) {
	switch term {
	case "wezterm":
		return []string{"wezterm", "start", "--cwd", cwd, "--", "sh", "-c", agentCmd}, true
	case "kitty":
		return []string{"kitty", "--directory", cwd, "sh", "-c", agentCmd}, true
	case "alacritty":
		return []string{"alacritty", "--working-directory", cwd, "-e", "sh", "-c", agentCmd}, true
	case "gnome-terminal":
		return []string{"gnome-terminal", "--working-directory=" + cwd, "--", "sh", "-c", agentCmd}, true
	case "konsole":
		return []string{"konsole", "--workdir", cwd, "-e", "sh", "-c", agentCmd}, true
	case "xterm":
		return []string{"xterm", "-e", fmt.Sprintf("cd %s && %s", cwd, agentCmd)}, true
	default:
		return nil, false
	}
}

// spawnTmux creates a detached tmux session running the agent command in
// cwd. Requires a reachable tmux server socket.
func (s *Spawner) spawnTmux(cwd, agentCmd string) domain.SpawnResult {
	mgr, err := tmux.NewManager()
	if err != nil {
		return failure(err)
	}
	if _, err := mgr.SpawnSession(cwd, agentCmd); err != nil {
		return failure(err)
	}
	return domain.SpawnResult{Success: true}
}

func failure(err error) domain.SpawnResult {
	return domain.SpawnResult{Success: false, Error: err.Error()}
}
