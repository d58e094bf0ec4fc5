package spawn

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSpawner returns a spawner whose PATH lookup succeeds only for the named
// binaries and whose process start is captured instead of executed.
func stubSpawner(agent string, onPath ...string) (*Spawner, *[][]string) {
	found := map[string]bool{}
	for _, name := range onPath {
		found[name] = true
	}
	var started [][]string
	s := New(agent)
	s.lookPath = func(name string) (string, error) {
		if found[name] {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
	s.startCommand = func(cmd *exec.Cmd) error {
		started = append(started, cmd.Args)
		return nil
	}
	return s, &started
}

func TestSpawnExternalAgentMissing(t *testing.T) {
	s, started := stubSpawner("claude", "wezterm")
	result := s.SpawnExternal("/home/dev/api", "")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "agent executable not found")
	assert.Empty(t, *started)
}

func TestSpawnExternalNoTerminal(t *testing.T) {
	s, started := stubSpawner("claude", "claude")
	result := s.SpawnExternal("/home/dev/api", "")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no supported terminal emulator found")
	assert.Empty(t, *started)
}

func TestSpawnExternalUnsupportedPinnedTerminal(t *testing.T) {
	s, _ := stubSpawner("claude", "claude")
	s.Terminal = "hyper"
	result := s.SpawnExternal("/home/dev/api", "")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported terminal")
}

func TestSpawnExternalLaunchesPreferredTerminal(t *testing.T) {
	s, started := stubSpawner("claude", "claude", "wezterm", "xterm")
	result := s.SpawnExternal("/home/dev/api", "")

	assert.True(t, result.Success)
	assert.Zero(t, result.PID)
	require.Len(t, *started, 1)
	assert.Equal(t,
		[]string{"wezterm", "start", "--cwd", "/home/dev/api", "--", "sh", "-c", "claude"},
		(*started)[0])
}

func TestSpawnExternalResumeFlag(t *testing.T) {
	s, started := stubSpawner("claude", "claude", "kitty")
	result := s.SpawnExternal("/home/dev/api", "abc-123")

	assert.True(t, result.Success)
	require.Len(t, *started, 1)
	assert.Equal(t, "claude --resume abc-123", (*started)[0][len((*started)[0])-1])
}

func TestSpawnExternalStartFailure(t *testing.T) {
	s, _ := stubSpawner("claude", "claude", "alacritty")
	s.startCommand = func(cmd *exec.Cmd) error { return errors.New("fork failed") }
	result := s.SpawnExternal("/home/dev/api", "")

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "failed to launch alacritty")
	assert.Contains(t, result.Error, "fork failed")
}

func TestAvailableTerminalsPreferenceOrder(t *testing.T) {
	s, _ := stubSpawner("claude", "xterm", "wezterm", "konsole")
	assert.Equal(t, []string{"wezterm", "konsole", "xterm"}, s.AvailableTerminals())
}

func TestAvailableTerminalsEmpty(t *testing.T) {
	s, _ := stubSpawner("claude")
	assert.Empty(t, s.AvailableTerminals())
}

func TestTerminalInvocationCoversPreferenceList(t *testing.T) {
	for _, term := range terminalPreference {
		if term == "tmux" {
			continue // handled through the tmux manager, not an argv
		}
		argv, ok := terminalInvocation(term, "/tmp", "claude")
		assert.True(t, ok, term)
		assert.Equal(t, term, argv[0], term)
	}
}
