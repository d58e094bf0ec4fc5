package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ccwatch/ccw/internal/domain"
)

func relativeStart(s *domain.Session) string {
	rel := domain.RelativeTime(s.StartTime, time.Now())
	if rel == "" {
		return "-"
	}
	return rel
}

func (m Model) enterDetail() (tea.Model, tea.Cmd) {
	s, ok := m.selected()
	if !ok {
		return m, nil
	}
	m.detailSession = s
	m.detailLines = m.renderDetailContent()
	m.detailOffset = 0
	m.mode = modeDetail
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.mode = modeList
		return m, nil

	case "up", "k":
		m.detailScroll(-1)
	case "down", "j":
		m.detailScroll(1)
	case "pgup", "u":
		m.detailScroll(-m.detailVisibleRows())
	case "pgdown", "d":
		m.detailScroll(m.detailVisibleRows())
	case "home", "g":
		m.detailOffset = 0
	case "end", "G":
		m.detailOffset = m.maxDetailOffset()

	case "o":
		if m.opts.Spawn != nil {
			result := m.opts.Spawn(m.detailSession.ProjectPath, m.detailSession.ID)
			m.status = spawnStatus(result)
		}

	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) viewDetail() string {
	var b strings.Builder

	s := m.detailSession
	title := detailTitleStyle.Render(fmt.Sprintf(" %s · %s · %d messages, %d tools",
		s.DisplayName(), shortProject(s.ProjectPath), s.MessageCount, s.ToolCount()))
	b.WriteString(title)
	b.WriteString("\n")

	visible := m.detailVisibleRows()
	if len(m.detailLines) == 0 {
		b.WriteString("\n  No messages in this transcript.\n")
		for i := 2; i < visible; i++ {
			b.WriteString("\n")
		}
		b.WriteString(m.detailHelpBar())
		return b.String()
	}

	end := m.detailOffset + visible
	if end > len(m.detailLines) {
		end = len(m.detailLines)
	}
	for i := m.detailOffset; i < end; i++ {
		b.WriteString(m.detailLines[i])
		b.WriteString("\n")
	}
	for i := end - m.detailOffset; i < visible; i++ {
		b.WriteString("\n")
	}

	b.WriteString(m.detailHelpBar())
	return b.String()
}

func (m Model) detailHelpBar() string {
	if m.status != "" {
		return statusBarStyle.Render(m.status)
	}
	scroll := ""
	if n := m.maxDetailOffset(); n > 0 {
		scroll = dimStyle.Render(fmt.Sprintf("  %d%%", m.detailOffset*100/n))
	}
	return helpStyle.Render("  Esc: back  o: resume  j/k: scroll  g/G: top/bottom") + scroll
}

func (m Model) detailVisibleRows() int {
	rows := m.height - 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m Model) maxDetailOffset() int {
	n := len(m.detailLines) - m.detailVisibleRows()
	if n < 0 {
		return 0
	}
	return n
}

func (m *Model) detailScroll(n int) {
	m.detailOffset += n
	if m.detailOffset < 0 {
		m.detailOffset = 0
	}
	if max := m.maxDetailOffset(); m.detailOffset > max {
		m.detailOffset = max
	}
}

// renderDetailContent flattens the transcript into viewport lines.
func (m Model) renderDetailContent() []string {
	var lines []string
	maxWidth := m.width - 2
	if maxWidth < 40 {
		maxWidth = 40
	}

	s := m.detailSession
	for _, msg := range s.Messages {
		var header string
		switch msg.Role {
		case domain.RoleUser:
			if msg.IsToolResult {
				continue
			}
			header = userRoleStyle.Render(pad(" USER", maxWidth))
		case domain.RoleAssistant:
			header = assistantRoleStyle.Render(pad(" ASSISTANT", maxWidth))
		default:
			continue
		}
		lines = append(lines, header)

		if msg.Thinking != "" {
			for _, wl := range wrapText(msg.Thinking, maxWidth-2) {
				lines = append(lines, " "+thinkingStyle.Render(wl))
			}
		}

		if msg.Text != "" {
			for _, wl := range wrapText(msg.Text, maxWidth-2) {
				if msg.Role == domain.RoleAssistant {
					wl = assistantTextStyle.Render(wl)
				}
				lines = append(lines, " "+wl)
			}
		}

		for _, id := range msg.ToolUseIDs {
			tool, ok := s.ToolByID(id)
			if !ok {
				continue
			}
			lines = append(lines, " "+renderToolLine(tool))
		}

		lines = append(lines, "")
	}

	return lines
}

func renderToolLine(tool *domain.ToolInvocation) string {
	label := "[" + domain.ToolDisplayName(tool.Name, tool.Input) + "]"
	switch tool.Status {
	case domain.ToolStatusCompleted:
		return toolDoneStyle.Render("✓ " + label)
	case domain.ToolStatusError:
		line := toolErrorStyle.Render("✗ " + label)
		if tool.ErrorMsg != "" {
			line += " " + errorStyle.Render(truncateLine(tool.ErrorMsg, 60))
		}
		return line
	default:
		return toolPendingStyle.Render("… " + label)
	}
}

func truncateLine(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// wrapText splits text into lines that fit within maxWidth.
func wrapText(text string, maxWidth int) []string {
	var result []string
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			result = append(result, "")
			continue
		}
		runes := []rune(line)
		for len(runes) > maxWidth {
			result = append(result, string(runes[:maxWidth]))
			runes = runes[maxWidth:]
		}
		result = append(result, string(runes))
	}
	return result
}
