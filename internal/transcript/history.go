package transcript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// maxHistoryLines bounds how far back the history index is scanned when
// resolving current session ids.
const maxHistoryLines = 100

// CurrentSessionIDs reads the agent's history index file and returns a map
// from project directory to the session id most recently recorded for it.
// Later entries override earlier ones. Any failure yields an empty map.
func CurrentSessionIDs(historyPath string) map[string]string {
	current := make(map[string]string)

	data, err := os.ReadFile(historyPath)
	if err != nil {
		return current
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) > maxHistoryLines {
		lines = lines[len(lines)-maxHistoryLines:]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry struct {
			Project   string `json:"project"`
			SessionID string `json:"sessionId"`
		}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.Project == "" || entry.SessionID == "" {
			continue
		}
		current[filepath.Clean(entry.Project)] = entry.SessionID
	}
	return current
}

// DefaultHistoryPath returns ~/.claude/history.jsonl, or "" when the home
// directory cannot be determined.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "history.jsonl")
}

// DefaultSessionsDir returns ~/.claude/projects, or "" when the home
// directory cannot be determined.
func DefaultSessionsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "projects")
}
