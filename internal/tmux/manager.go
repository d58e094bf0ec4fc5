// Package tmux spawns agent sessions into detached tmux sessions and
// lets the caller interact with them afterwards.
package tmux

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/GianlucaP106/gotmux/gotmux"
)

// ErrNoSessionAvailable is returned when write or kill is called before a
// session was created.
var ErrNoSessionAvailable = errors.New("no tmux session available")

// Manager owns one detached tmux session running an agent.
type Manager struct {
	mu          sync.Mutex
	tmux        *gotmux.Tmux
	sessionName string
}

// NewManager connects to the default tmux server socket.
func NewManager() (*Manager, error) {
	t, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tmux: %w", err)
	}
	return &Manager{tmux: t}, nil
}

// SpawnSession creates a detached session named after the working
// directory, running command in cwd. Returns the session name.
func (m *Manager) SpawnSession(cwd, command string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := sessionName(cwd)
	session, err := m.tmux.NewSession(&gotmux.SessionOptions{
		Name:           name,
		StartDirectory: cwd,
		ShellCommand:   command,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create tmux session: %w", err)
	}
	m.sessionName = session.Name
	return session.Name, nil
}

// SendLine types a line into the session's first pane.
func (m *Manager) SendLine(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessionName == "" {
		return ErrNoSessionAvailable
	}

	target := fmt.Sprintf("%s:0.0", m.sessionName)
	_, err := m.tmux.Command("send-keys", "-t", target, escapeTmuxString(line), "Enter")
	return err
}

// KillSession tears the spawned session down.
func (m *Manager) KillSession() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessionName == "" {
		return ErrNoSessionAvailable
	}
	_, err := m.tmux.Command("kill-session", "-t", m.sessionName)
	if err == nil {
		m.sessionName = ""
	}
	return err
}

// sessionName derives a tmux-safe session name from a directory path.
// tmux rejects dots and colons in session names.
func sessionName(cwd string) string {
	base := cwd
	if idx := strings.LastIndex(cwd, "/"); idx >= 0 && idx < len(cwd)-1 {
		base = cwd[idx+1:]
	}
	replacer := strings.NewReplacer(".", "-", ":", "-", " ", "-")
	return "ccw-" + replacer.Replace(base)
}

// escapeTmuxString escapes special characters for tmux send-keys
func escapeTmuxString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "'", "'\"'\"'")
	return s
}
