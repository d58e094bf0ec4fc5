package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const previewMax = 80

// truncate caps s at max characters, appending an ellipsis on overflow.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// ToolPreview generates a one-line preview for a tool invocation from its
// input parameters. The shape is tool-specific: a file path for read-type
// tools, the command for shell tools, the pattern for search tools, the task
// description for delegation, and a generic first-parameter fallback.
func ToolPreview(toolName string, input map[string]any) string {
	str := func(key string) string {
		v, _ := input[key].(string)
		return v
	}

	switch toolName {
	case "Read":
		return truncate(str("file_path"), previewMax)
	case "Edit":
		return truncate(str("file_path")+" (edit)", previewMax)
	case "Write":
		return truncate(str("file_path")+" (write)", previewMax)
	case "Bash":
		return truncate(str("command"), previewMax)
	case "Grep":
		path := str("path")
		if path == "" {
			path = "."
		}
		return truncate(str("pattern")+" in "+path, previewMax)
	case "Glob":
		return truncate(str("pattern"), previewMax)
	case "Task":
		return truncate(str("description"), previewMax)
	default:
		// Unknown tools fall back to one input value. Map iteration order is
		// random, so pick the lexicographically first key to keep previews
		// stable across parses.
		keys := make([]string, 0, len(input))
		for k := range input {
			keys = append(keys, k)
		}
		if len(keys) == 0 {
			return ""
		}
		sort.Strings(keys)
		return truncate(fmt.Sprintf("%v", input[keys[0]]), previewMax)
	}
}

// ToolDisplayName produces a compact "Tool: subject" label, e.g.
// "Read: parser.go" or "Bash: pytest".
func ToolDisplayName(toolName string, input map[string]any) string {
	str := func(key string) string {
		v, _ := input[key].(string)
		return v
	}
	base := func(path, fallback string) string {
		if path == "" {
			return fallback
		}
		return filepath.Base(path)
	}

	switch toolName {
	case "Read", "Edit", "Write":
		return fmt.Sprintf("%s: %s", toolName, truncate(base(str("file_path"), "file"), 30))
	case "Bash":
		cmd := str("command")
		short := "command"
		if fields := strings.Fields(cmd); len(fields) > 0 {
			short = fields[0]
		}
		return "Bash: " + truncate(short, 30)
	case "Grep":
		return "Grep: " + truncate(str("pattern"), 20)
	case "Glob":
		return "Glob: " + truncate(str("pattern"), 20)
	case "Task":
		return "Task: " + truncate(str("description"), 20)
	default:
		return toolName
	}
}

// ToolFilePath returns the file path a tool operates on, when it has one.
func ToolFilePath(toolName string, input map[string]any) string {
	switch toolName {
	case "Read", "Edit", "Write":
		v, _ := input["file_path"].(string)
		return v
	case "Grep", "Glob":
		v, _ := input["path"].(string)
		return v
	}
	return ""
}

// RelativeTime formats an RFC3339 timestamp as "just now", "5m ago", "2h ago"
// or "3d ago" against now. Returns "" when the timestamp is unparseable.
func RelativeTime(timestamp string, now time.Time) string {
	t, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		t, err = time.Parse(time.RFC3339, timestamp)
		if err != nil {
			return ""
		}
	}
	d := now.Sub(t)
	switch {
	case d < 0:
		return "in the future"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
