package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// ToolStatus describes the lifecycle of a tool invocation.
type ToolStatus string

const (
	ToolStatusPending   ToolStatus = "pending"
	ToolStatusCompleted ToolStatus = "completed"
	ToolStatusError     ToolStatus = "error"
)

// MessageRole is the author of a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ToolInvocation is one tool call extracted from a transcript, paired
// with its eventual result when one arrives.
type ToolInvocation struct {
	ID        string
	Name      string
	Input     map[string]any
	Status    ToolStatus
	Timestamp string
	Result    string
	ErrorMsg  string
	Preview   string
}

// CompleteWith fills in the result side of the invocation. Called at most
// once, when a matching tool_result block is found.
func (t *ToolInvocation) CompleteWith(result string, isError bool) {
	if isError {
		t.Status = ToolStatusError
		t.ErrorMsg = result
	} else {
		t.Status = ToolStatusCompleted
		t.Result = result
	}
}

// ConversationMessage is one turn in a transcript. Immutable after creation.
type ConversationMessage struct {
	UUID         string
	Role         MessageRole
	Timestamp    string
	Text         string
	Thinking     string // assistant reasoning blocks, if any
	ToolUseIDs   []string
	IsToolResult bool // message carries tool_result blocks
	Raw          any  // original content kept for fallback rendering
}

// Session aggregates one transcript file.
type Session struct {
	ID           string
	Path         string
	Messages     []*ConversationMessage
	ToolUses     []*ToolInvocation
	toolsByID    map[string]*ToolInvocation
	MessageCount int
	StartTime    string
	Summary      string
	ProjectPath  string

	// Liveness, recomputed by the process matcher.
	IsActive bool
	PID      int
}

// NewSession creates an empty session for the given transcript path. The
// session id is the file name without its extension.
func NewSession(path string) *Session {
	base := filepath.Base(path)
	return &Session{
		ID:        strings.TrimSuffix(base, filepath.Ext(base)),
		Path:      path,
		toolsByID: make(map[string]*ToolInvocation),
	}
}

// AddToolUse registers a tool invocation, keyed by id in discovery order.
func (s *Session) AddToolUse(t *ToolInvocation) {
	if t.ID == "" {
		return
	}
	s.ToolUses = append(s.ToolUses, t)
	s.toolsByID[t.ID] = t
}

// ToolByID looks up a tool invocation by its tool_use id.
func (s *Session) ToolByID(id string) (*ToolInvocation, bool) {
	t, ok := s.toolsByID[id]
	return t, ok
}

// ToolCount returns the number of tool invocations in the session.
func (s *Session) ToolCount() int { return len(s.ToolUses) }

// DisplayName is a short identifier for list views.
func (s *Session) DisplayName() string {
	if len(s.ID) > 8 {
		return s.ID[:8]
	}
	return s.ID
}

// DisplaySummary returns the summary trimmed to a single 60-column line.
func (s *Session) DisplaySummary() string {
	if s.Summary == "" {
		return "No summary available"
	}
	summary := strings.TrimSpace(s.Summary)
	summary = strings.ReplaceAll(summary, "\n", " ")
	summary = strings.ReplaceAll(summary, "\r", "")
	if len(summary) > 60 {
		return summary[:57] + "..."
	}
	return summary
}

// StartedAt parses the session start timestamp, zero time when absent or
// malformed.
func (s *Session) StartedAt() time.Time {
	if s.StartTime == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.StartTime)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s.StartTime)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}

// LiveProcess is a snapshot of a running agent process. Recomputed on every
// liveness check, never persisted.
type LiveProcess struct {
	PID       int
	CWD       string
	Command   string
	SessionID string // best-effort match, empty when unknown
}

// SpawnResult is the uniform outcome of a spawn attempt. Errors are carried
// in the value, never raised to the caller.
type SpawnResult struct {
	Success bool
	PID     int
	Error   string
}
