package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	s := NewSession("/home/dev/.claude/projects/-home-dev-api/0f1e2d3c-aaaa.jsonl")
	assert.Equal(t, "0f1e2d3c-aaaa", s.ID)
	assert.Equal(t, "/home/dev/.claude/projects/-home-dev-api/0f1e2d3c-aaaa.jsonl", s.Path)
	assert.Empty(t, s.Messages)
	assert.Zero(t, s.ToolCount())
}

func TestSessionDisplayName(t *testing.T) {
	s := NewSession("/tmp/0f1e2d3c-aaaa-bbbb.jsonl")
	assert.Equal(t, "0f1e2d3c", s.DisplayName())

	short := NewSession("/tmp/abc.jsonl")
	assert.Equal(t, "abc", short.DisplayName())
}

func TestSessionDisplaySummary(t *testing.T) {
	t.Run("empty summary gets placeholder", func(t *testing.T) {
		s := NewSession("/tmp/a.jsonl")
		assert.Equal(t, "No summary available", s.DisplaySummary())
	})

	t.Run("newlines are flattened", func(t *testing.T) {
		s := NewSession("/tmp/a.jsonl")
		s.Summary = "first line\nsecond line"
		assert.Equal(t, "first line second line", s.DisplaySummary())
	})

	t.Run("long summary is truncated to 60", func(t *testing.T) {
		s := NewSession("/tmp/a.jsonl")
		s.Summary = strings.Repeat("a", 100)
		got := s.DisplaySummary()
		assert.Len(t, got, 60)
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("exactly 60 is kept", func(t *testing.T) {
		s := NewSession("/tmp/a.jsonl")
		s.Summary = strings.Repeat("a", 60)
		assert.Equal(t, s.Summary, s.DisplaySummary())
	})
}

func TestSessionToolRegistry(t *testing.T) {
	s := NewSession("/tmp/a.jsonl")

	tool := &ToolInvocation{ID: "toolu_1", Name: "Bash", Status: ToolStatusPending}
	s.AddToolUse(tool)

	got, ok := s.ToolByID("toolu_1")
	require.True(t, ok)
	assert.Same(t, tool, got)

	_, ok = s.ToolByID("missing")
	assert.False(t, ok)

	// Invocations without ids cannot be paired and are dropped.
	s.AddToolUse(&ToolInvocation{Name: "Read"})
	assert.Equal(t, 1, s.ToolCount())
}

func TestToolInvocationCompleteWith(t *testing.T) {
	tool := &ToolInvocation{ID: "t", Status: ToolStatusPending}

	tool.CompleteWith("all good", false)
	assert.Equal(t, ToolStatusCompleted, tool.Status)
	assert.Equal(t, "all good", tool.Result)
	assert.Empty(t, tool.ErrorMsg)

	errTool := &ToolInvocation{ID: "e", Status: ToolStatusPending}
	errTool.CompleteWith("exit status 1", true)
	assert.Equal(t, ToolStatusError, errTool.Status)
	assert.Equal(t, "exit status 1", errTool.ErrorMsg)
	assert.Empty(t, errTool.Result)
}

func TestSessionStartedAt(t *testing.T) {
	s := NewSession("/tmp/a.jsonl")
	assert.True(t, s.StartedAt().IsZero())

	s.StartTime = "2026-08-30T10:00:00.5Z"
	assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 500000000, time.UTC), s.StartedAt())

	s.StartTime = "garbage"
	assert.True(t, s.StartedAt().IsZero())
}
