package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeHistory(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestCurrentSessionIDs(t *testing.T) {
	path := writeHistory(t,
		`{"project":"/home/dev/api","sessionId":"aaa"}`,
		`{"project":"/home/dev/web","sessionId":"bbb"}`,
		`not json at all`,
		`{"project":"","sessionId":"ccc"}`,
		`{"project":"/home/dev/api","sessionId":"ddd"}`,
	)

	current := CurrentSessionIDs(path)
	require.Len(t, current, 2)
	// Later entries override earlier ones for the same project.
	assert.Equal(t, "ddd", current["/home/dev/api"])
	assert.Equal(t, "bbb", current["/home/dev/web"])
}

func TestCurrentSessionIDsNormalizesPaths(t *testing.T) {
	path := writeHistory(t, `{"project":"/home/dev/api/","sessionId":"aaa"}`)
	current := CurrentSessionIDs(path)
	assert.Equal(t, "aaa", current["/home/dev/api"])
}

func TestCurrentSessionIDsMissingFile(t *testing.T) {
	current := CurrentSessionIDs(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.NotNil(t, current)
	assert.Empty(t, current)
}

func TestCurrentSessionIDsHonorsLineWindow(t *testing.T) {
	// Entries older than the window are never consulted.
	var lines []string
	lines = append(lines, `{"project":"/home/dev/ancient","sessionId":"old"}`)
	for i := 0; i < maxHistoryLines; i++ {
		lines = append(lines, fmt.Sprintf(`{"project":"/home/dev/p%d","sessionId":"s%d"}`, i, i))
	}

	current := CurrentSessionIDs(writeHistory(t, lines...))
	_, ok := current["/home/dev/ancient"]
	assert.False(t, ok)
	assert.Equal(t, "s99", current["/home/dev/p99"])
}
