// Package transcript reconstructs structured sessions from Claude Code
// JSONL transcript files. Parsing is fault isolated per line: a malformed
// line is skipped and never aborts the file.
package transcript

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/ccwatch/ccw/internal/domain"
)

// Scanner buffer sizing. Tool results can carry whole files, so lines get big.
const (
	initialBufSize = 256 * 1024
	maxLineSize    = 10 * 1024 * 1024
)

// rawEvent is the wire shape of one transcript line. Only the fields the
// parser inspects are declared; everything else is ignored.
type rawEvent struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	UUID      string          `json:"uuid"`
	CWD       string          `json:"cwd"`
	IsMeta    bool            `json:"isMeta"`
	Message   json.RawMessage `json:"message"`
}

type rawMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type rawBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     map[string]any  `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	IsError   bool            `json:"is_error"`
	Content   json.RawMessage `json:"content"`
}

// ParseFile parses one transcript file into a Session. Single malformed
// lines are skipped; only failure to open the file is returned as an error.
func ParseFile(path string) (*domain.Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	session := domain.NewSession(path)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, initialBufSize), maxLineSize)

	firstUserFound := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var event rawEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}

		if session.StartTime == "" && event.Timestamp != "" {
			session.StartTime = event.Timestamp
		}
		if session.ProjectPath == "" && event.CWD != "" {
			session.ProjectPath = event.CWD
		}

		switch event.Type {
		case "user":
			firstUserFound = parseUserEvent(session, &event, firstUserFound)
		case "assistant":
			parseAssistantEvent(session, &event)
		case "system":
			// System events carry no conversation content; they are only
			// inspected to recover the working directory.
			if session.ProjectPath == "" {
				session.ProjectPath = cwdFromSystemEvent(&event)
			}
		}
	}
	// An oversized line stops the scan; everything parsed so far stands.

	if session.ProjectPath == "" {
		session.ProjectPath = projectPathFromFile(path)
	}
	return session, nil
}

// parseUserEvent records a user message and pairs tool_result blocks with
// their pending invocations. Returns the updated first-user-found flag.
func parseUserEvent(session *domain.Session, event *rawEvent, firstUserFound bool) bool {
	session.MessageCount++

	var msg rawMessage
	if err := json.Unmarshal(event.Message, &msg); err != nil {
		return firstUserFound
	}

	// Content is either a plain string or a list of typed blocks.
	var text string
	if err := json.Unmarshal(msg.Content, &text); err == nil {
		text = strings.TrimSpace(text)
		if event.IsMeta || isPureMarkup(text) {
			return firstUserFound
		}
		session.Messages = append(session.Messages, &domain.ConversationMessage{
			UUID:      event.UUID,
			Role:      domain.RoleUser,
			Timestamp: event.Timestamp,
			Text:      text,
			Raw:       text,
		})
		if !firstUserFound && isSummaryCandidate(text) {
			session.Summary = text
			return true
		}
		return firstUserFound
	}

	var blocks []rawBlock
	if err := json.Unmarshal(msg.Content, &blocks); err != nil {
		return firstUserFound
	}

	var textParts []string
	var resultIDs []string
	isToolResult := false
	for _, block := range blocks {
		switch block.Type {
		case "text":
			if block.Text != "" {
				textParts = append(textParts, block.Text)
			}
		case "tool_result":
			isToolResult = true
			resultIDs = append(resultIDs, block.ToolUseID)
			resultText := extractResultText(block.Content)
			// Orphan results (no matching tool_use) are dropped silently.
			if tool, ok := session.ToolByID(block.ToolUseID); ok {
				tool.CompleteWith(resultText, block.IsError)
			}
		}
	}

	text = strings.TrimSpace(strings.Join(textParts, "\n"))
	if event.IsMeta {
		return firstUserFound
	}
	if text != "" && isPureMarkup(text) {
		return firstUserFound
	}

	session.Messages = append(session.Messages, &domain.ConversationMessage{
		UUID:         event.UUID,
		Role:         domain.RoleUser,
		Timestamp:    event.Timestamp,
		Text:         text,
		ToolUseIDs:   resultIDs,
		IsToolResult: isToolResult,
		Raw:          string(msg.Content),
	})

	if !firstUserFound && isSummaryCandidate(text) {
		session.Summary = text
		return true
	}
	return firstUserFound
}

// parseAssistantEvent records an assistant message and registers pending
// tool invocations for each tool_use block.
func parseAssistantEvent(session *domain.Session, event *rawEvent) {
	session.MessageCount++

	var msg rawMessage
	if err := json.Unmarshal(event.Message, &msg); err != nil {
		return
	}
	var blocks []rawBlock
	if err := json.Unmarshal(msg.Content, &blocks); err != nil {
		return
	}

	var textParts, thinkingParts []string
	var toolIDs []string
	for _, block := range blocks {
		switch block.Type {
		case "text":
			if block.Text != "" {
				textParts = append(textParts, block.Text)
			}
		case "thinking":
			if block.Thinking != "" {
				thinkingParts = append(thinkingParts, block.Thinking)
			}
		case "tool_use":
			toolIDs = append(toolIDs, block.ID)
			session.AddToolUse(&domain.ToolInvocation{
				ID:        block.ID,
				Name:      block.Name,
				Input:     block.Input,
				Status:    domain.ToolStatusPending,
				Timestamp: event.Timestamp,
				Preview:   domain.ToolPreview(block.Name, block.Input),
			})
		}
	}

	text := strings.TrimSpace(strings.Join(textParts, "\n"))
	thinking := strings.TrimSpace(strings.Join(thinkingParts, "\n"))
	if text == "" && thinking == "" && len(toolIDs) == 0 {
		return
	}
	session.Messages = append(session.Messages, &domain.ConversationMessage{
		UUID:       event.UUID,
		Role:       domain.RoleAssistant,
		Timestamp:  event.Timestamp,
		Text:       text,
		Thinking:   thinking,
		ToolUseIDs: toolIDs,
		Raw:        string(msg.Content),
	})
}

// extractResultText flattens a tool_result content payload, which is either
// a plain string or a list of text items.
func extractResultText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	var sb strings.Builder
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			sb.WriteString(s)
			continue
		}
		var block rawBlock
		if err := json.Unmarshal(item, &block); err == nil && block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// cwdFromSystemEvent scans a system event's free-text message for a
// "Working directory:" line.
func cwdFromSystemEvent(event *rawEvent) string {
	var text string
	if err := json.Unmarshal(event.Message, &text); err != nil {
		return ""
	}
	const marker = "Working directory:"
	idx := strings.Index(text, marker)
	if idx < 0 {
		return ""
	}
	rest := text[idx+len(marker):]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// projectPathFromFile reconstructs the working directory from the transcript
// location: ~/.claude/projects/-Users-name-proj/<id>.jsonl encodes the path
// in the parent directory name.
func projectPathFromFile(path string) string {
	parent := filepath.Base(filepath.Dir(path))
	if !strings.HasPrefix(parent, "-") {
		return ""
	}
	return strings.ReplaceAll(parent, "-", "/")
}

// isPureMarkup reports whether text consists solely of markup tags, the
// shape of injected meta content like <command-name>...</command-name>.
func isPureMarkup(text string) bool {
	return strings.HasPrefix(text, "<") && strings.HasSuffix(text, ">")
}

// isSummaryCandidate applies the summary eligibility rules: non-trivial
// user text that is not a continuation banner or markup.
func isSummaryCandidate(text string) bool {
	if len(text) < 5 {
		return false
	}
	if strings.HasPrefix(text, "<") {
		return false
	}
	if strings.HasPrefix(text, "This session is being continued") {
		return false
	}
	if strings.Contains(strings.ToLower(text), "context window") {
		return false
	}
	return true
}
