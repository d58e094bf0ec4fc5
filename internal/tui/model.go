// Package tui is the interactive session browser.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ccwatch/ccw/internal/domain"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeDetail
)

// Options wires the model to the rest of the program. Everything is a
// function so tests can drive the model without processes or files.
type Options struct {
	// Reload rescans transcripts and returns sessions, newest first.
	Reload func() []*domain.Session

	// Events delivers changed transcript paths from the watcher. May be
	// nil, in which case the view only refreshes on demand.
	Events <-chan string

	// Spawn starts a new agent session in cwd, resuming resumeID when
	// non-empty.
	Spawn func(cwd, resumeID string) domain.SpawnResult

	// Kill terminates the live process of a session.
	Kill func(sessionID string) (bool, string)
}

// Model is the root bubbletea model.
type Model struct {
	opts Options

	sessions   []*domain.Session
	filtered   []*domain.Session
	cursor     int
	offset     int
	width      int
	height     int
	mode       mode
	activeOnly bool

	searchInput textinput.Model
	status      string
	quitting    bool

	// detail view state
	detailSession *domain.Session
	detailLines   []string
	detailOffset  int
}

// sessionsMsg carries the result of a transcript rescan.
type sessionsMsg []*domain.Session

// transcriptChangedMsg is sent when the watcher reports a changed file.
type transcriptChangedMsg string

// New creates the session browser model.
func New(opts Options) Model {
	si := textinput.New()
	si.Placeholder = "search..."
	si.CharLimit = 100

	return Model{
		opts:        opts,
		searchInput: si,
		width:       120,
		height:      30,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.reloadCmd(), m.waitEventCmd())
}

func (m Model) reloadCmd() tea.Cmd {
	if m.opts.Reload == nil {
		return nil
	}
	reload := m.opts.Reload
	return func() tea.Msg {
		return sessionsMsg(reload())
	}
}

func (m Model) waitEventCmd() tea.Cmd {
	if m.opts.Events == nil {
		return nil
	}
	events := m.opts.Events
	return func() tea.Msg {
		path, ok := <-events
		if !ok {
			return nil
		}
		return transcriptChangedMsg(path)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampOffset()
		if m.mode == modeDetail && m.detailSession != nil {
			m.detailLines = m.renderDetailContent()
		}
		return m, nil

	case sessionsMsg:
		m.sessions = msg
		m.applyFilter()
		if m.mode == modeDetail && m.detailSession != nil {
			// Refresh the open transcript in place so a live session
			// updates while it is being read.
			for _, s := range m.sessions {
				if s.ID == m.detailSession.ID {
					m.detailSession = s
					m.detailLines = m.renderDetailContent()
					break
				}
			}
		}
		return m, nil

	case transcriptChangedMsg:
		// Any transcript change triggers a rescan, then resume waiting.
		return m, tea.Batch(m.reloadCmd(), m.waitEventCmd())

	case tea.KeyMsg:
		switch m.mode {
		case modeList:
			return m.updateList(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeDetail:
			return m.updateDetail(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.clampOffset()
		}

	case "down", "j":
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
			m.clampOffset()
		}

	case "home", "g":
		m.cursor = 0
		m.clampOffset()

	case "end", "G":
		m.cursor = max(0, len(m.filtered)-1)
		m.clampOffset()

	case "enter":
		return m.enterDetail()

	case "/":
		m.searchInput.Focus()
		m.mode = modeSearch

	case "r":
		m.status = "refreshing..."
		return m, m.reloadCmd()

	case "a":
		m.activeOnly = !m.activeOnly
		m.applyFilter()
		if m.activeOnly {
			m.status = "showing active sessions only"
		}

	case "n":
		if s, ok := m.selected(); ok && m.opts.Spawn != nil {
			result := m.opts.Spawn(s.ProjectPath, "")
			m.status = spawnStatus(result)
		}

	case "o":
		if s, ok := m.selected(); ok && m.opts.Spawn != nil {
			result := m.opts.Spawn(s.ProjectPath, s.ID)
			m.status = spawnStatus(result)
		}

	case "x":
		if s, ok := m.selected(); ok && m.opts.Kill != nil {
			if !s.IsActive {
				m.status = "session has no live process"
				break
			}
			_, msg := m.opts.Kill(s.ID)
			m.status = msg
			return m, m.reloadCmd()
		}
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searchInput.Blur()
		m.mode = modeList
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *Model) selected() (*domain.Session, bool) {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		return nil, false
	}
	return m.filtered[m.cursor], true
}

func (m *Model) applyFilter() {
	m.filtered = nil
	search := strings.ToLower(m.searchInput.Value())

	for _, s := range m.sessions {
		if m.activeOnly && !s.IsActive {
			continue
		}
		if search != "" {
			haystack := strings.ToLower(s.Summary + " " + s.ProjectPath + " " + s.ID)
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		m.filtered = append(m.filtered, s)
	}

	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
	m.clampOffset()
}

func spawnStatus(r domain.SpawnResult) string {
	if r.Success {
		if r.PID > 0 {
			return fmt.Sprintf("spawned (pid %d)", r.PID)
		}
		return "spawned in new terminal"
	}
	return "spawn failed: " + r.Error
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.mode == modeDetail {
		return m.viewDetail()
	}

	var b strings.Builder

	title := titleStyle.Render("ccw")
	counts := fmt.Sprintf("  %d sessions, %d active", len(m.filtered), m.activeCount())
	if m.activeOnly {
		counts += " (active only)"
	}
	b.WriteString(title + dimStyle.Render(counts) + "\n")

	b.WriteString(m.renderHeader() + "\n")

	visible := m.visibleRows()
	end := m.offset + visible
	if end > len(m.filtered) {
		end = len(m.filtered)
	}

	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.filtered[i], i == m.cursor) + "\n")
	}
	for i := end - m.offset; i < visible; i++ {
		b.WriteString("\n")
	}

	switch {
	case m.mode == modeSearch:
		b.WriteString(statusBarStyle.Render("Search: ") + m.searchInput.View())
	case m.status != "":
		b.WriteString(statusBarStyle.Render(m.status))
	default:
		b.WriteString(helpStyle.Render("  Enter: open  n: new  o: resume  x: kill  a: active  /: search  r: refresh  q: quit"))
	}

	return b.String()
}

func (m Model) activeCount() int {
	n := 0
	for _, s := range m.filtered {
		if s.IsActive {
			n++
		}
	}
	return n
}

type colWidths struct {
	id      int
	started int
	project int
	status  int
	summary int
}

func (m Model) colWidths() colWidths {
	w := colWidths{
		id:      10,
		started: 10,
		project: 22,
		status:  12,
	}
	used := w.id + w.started + w.project + w.status + 5
	w.summary = m.width - used
	if w.summary < 20 {
		w.summary = 20
	}
	return w
}

func (m Model) renderHeader() string {
	w := m.colWidths()
	cols := []string{
		pad("ID", w.id),
		pad("Started", w.started),
		pad("Project", w.project),
		pad("Status", w.status),
		pad("Summary", w.summary),
	}
	return headerStyle.Render(strings.Join(cols, " "))
}

func (m Model) renderRow(s *domain.Session, selected bool) string {
	w := m.colWidths()

	status := "-"
	if s.IsActive {
		status = fmt.Sprintf("active %d", s.PID)
	}

	summary := s.DisplaySummary()
	summaryRunes := []rune(summary)
	if len(summaryRunes) > w.summary {
		summary = string(summaryRunes[:w.summary-2]) + ".."
	}

	cols := []string{
		pad(s.DisplayName(), w.id),
		pad(relativeStart(s), w.started),
		pad(shortProject(s.ProjectPath), w.project),
		pad(status, w.status),
		summary,
	}
	row := strings.Join(cols, " ")

	if selected {
		row = selectedStyle.Render(row)
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, row)
	}
	if s.IsActive {
		cols[3] = activeTag.Render(pad(status, w.status))
		row = strings.Join(cols, " ")
	}
	return row
}

// shortProject keeps the path tail that fits a narrow column.
func shortProject(path string) string {
	if path == "" {
		return "-"
	}
	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		return ".../" + strings.Join(parts[len(parts)-2:], "/")
	}
	return path
}

func (m Model) visibleRows() int {
	rows := m.height - 3
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) clampOffset() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
