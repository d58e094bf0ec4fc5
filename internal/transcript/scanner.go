package transcript

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/ccwatch/ccw/internal/domain"
)

// subagentSegment marks transcripts of delegated sub-agent runs, which are
// nested sessions and not browsable on their own.
const subagentSegment = "subagents"

// ScanDirectory parses every transcript under root and returns the sessions
// sorted by start time, most recent first. A single file's parse failure
// never aborts the scan; a missing or unreadable root yields an empty slice.
func ScanDirectory(root string) []*domain.Session {
	var paths []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // permission errors degrade to missing entries
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".jsonl" {
			return nil
		}
		if isSubagentPath(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})

	sessions := lo.FilterMap(paths, func(path string, _ int) (*domain.Session, bool) {
		s, err := ParseFile(path)
		return s, err == nil
	})

	// RFC3339 timestamps order lexicographically.
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartTime > sessions[j].StartTime
	})
	return sessions
}

// isSubagentPath reports whether any path segment identifies a sub-agent
// transcript.
func isSubagentPath(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == subagentSegment {
			return true
		}
	}
	return false
}
