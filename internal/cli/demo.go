package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ccwatch/ccw/internal/domain"
)

// demoSessions builds a plausible set of sessions for demo mode.
func demoSessions() []*domain.Session {
	now := time.Now()

	specs := []struct {
		project string
		summary string
		age     time.Duration
		active  bool
		tools   []string
	}{
		{"/home/dev/projects/api-server", "Add rate limiting middleware to the HTTP API", 2 * time.Minute, true, []string{"Read", "Edit", "Bash"}},
		{"/home/dev/projects/api-server", "Debug flaky integration test in payments", 3 * time.Hour, false, []string{"Bash", "Grep", "Read"}},
		{"/home/dev/projects/frontend", "Migrate dashboard components to the new design system", 26 * time.Hour, false, []string{"Glob", "Read", "Edit", "Write"}},
		{"/home/dev/projects/infra", "Write Terraform for the staging environment", 4 * 24 * time.Hour, false, []string{"Write", "Bash"}},
	}

	var sessions []*domain.Session
	for i, seed := range specs {
		id := uuid.NewString()
		s := domain.NewSession(fmt.Sprintf("/tmp/ccw-demo/%s.jsonl", id))
		s.ProjectPath = seed.project
		s.Summary = seed.summary
		s.StartTime = now.Add(-seed.age).Format(time.RFC3339Nano)
		s.IsActive = seed.active
		if seed.active {
			s.PID = 40000 + i
		}

		s.Messages = append(s.Messages, &domain.ConversationMessage{
			UUID:      uuid.NewString(),
			Role:      domain.RoleUser,
			Timestamp: s.StartTime,
			Text:      seed.summary,
		})

		assistant := &domain.ConversationMessage{
			UUID:      uuid.NewString(),
			Role:      domain.RoleAssistant,
			Timestamp: s.StartTime,
			Text:      "I'll take a look and make the changes.",
		}
		for j, name := range seed.tools {
			tool := &domain.ToolInvocation{
				ID:        uuid.NewString(),
				Name:      name,
				Input:     demoToolInput(name),
				Status:    domain.ToolStatusCompleted,
				Timestamp: s.StartTime,
			}
			tool.Preview = domain.ToolPreview(name, tool.Input)
			// Leave the last tool of an active session unresolved.
			if seed.active && j == len(seed.tools)-1 {
				tool.Status = domain.ToolStatusPending
			}
			s.AddToolUse(tool)
			assistant.ToolUseIDs = append(assistant.ToolUseIDs, tool.ID)
		}
		s.Messages = append(s.Messages, assistant)
		s.MessageCount = len(s.Messages)

		sessions = append(sessions, s)
	}
	return sessions
}

func demoToolInput(name string) map[string]any {
	switch name {
	case "Read", "Edit", "Write":
		return map[string]any{"file_path": "/home/dev/projects/api-server/internal/middleware/ratelimit.go"}
	case "Bash":
		return map[string]any{"command": "go test ./internal/..."}
	case "Grep":
		return map[string]any{"pattern": "RateLimiter", "path": "internal"}
	case "Glob":
		return map[string]any{"pattern": "**/*.tsx"}
	default:
		return map[string]any{}
	}
}
