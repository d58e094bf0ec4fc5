package output

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/ccwatch/ccw/internal/domain"
)

var (
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TextWriter renders human-readable tables. Color indicates whether the
// destination is a terminal that can take ANSI styling.
type TextWriter struct {
	w     io.Writer
	Color bool
}

// NewTextWriter creates a table renderer for w.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// WriteSessions renders a session table, most recent first.
func (t *TextWriter) WriteSessions(sessions []*domain.Session, now time.Time) error {
	if len(sessions) == 0 {
		fmt.Fprintln(t.w, "No sessions found")
		return nil
	}

	table := tablewriter.NewWriter(t.w)
	table.Header("ID", "PROJECT", "SUMMARY", "MSGS", "TOOLS", "STARTED", "STATUS")
	for _, s := range sessions {
		status := "-"
		if s.IsActive {
			status = t.styled(activeStyle, fmt.Sprintf("active (%d)", s.PID))
		}
		started := domain.RelativeTime(s.StartTime, now)
		if started == "" {
			started = t.styled(dimStyle, "unknown")
		}
		if err := table.Append([]string{
			s.DisplayName(),
			s.ProjectPath,
			s.DisplaySummary(),
			fmt.Sprintf("%d", s.MessageCount),
			fmt.Sprintf("%d", s.ToolCount()),
			started,
			status,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteProcesses renders a live process table.
func (t *TextWriter) WriteProcesses(procs []domain.LiveProcess) error {
	if len(procs) == 0 {
		fmt.Fprintln(t.w, "No agent processes running")
		return nil
	}

	table := tablewriter.NewWriter(t.w)
	table.Header("PID", "CWD", "SESSION", "COMMAND")
	for _, p := range procs {
		sessionID := p.SessionID
		if sessionID == "" {
			sessionID = t.styled(dimStyle, "-")
		}
		if err := table.Append([]string{
			fmt.Sprintf("%d", p.PID),
			p.CWD,
			sessionID,
			p.Command,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteSpawnResult renders a spawn outcome.
func (t *TextWriter) WriteSpawnResult(r domain.SpawnResult) {
	if r.Success {
		if r.PID > 0 {
			fmt.Fprintf(t.w, "Spawned agent (pid %d)\n", r.PID)
		} else {
			fmt.Fprintln(t.w, "Spawned agent in new terminal")
		}
		return
	}
	fmt.Fprintf(t.w, "Spawn failed: %s\n", r.Error)
}

func (t *TextWriter) styled(style lipgloss.Style, s string) string {
	if !t.Color {
		return s
	}
	return style.Render(s)
}
