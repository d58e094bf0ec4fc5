// Package process correlates running agent processes with parsed sessions.
// Every lookup is best effort: enumeration failures, missing tools and
// permission errors all degrade to "no active sessions", never an error.
package process

import (
	"os"
	"sort"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"

	"github.com/ccwatch/ccw/internal/domain"
)

// ActiveThreshold is the default window within which a freshly modified
// transcript is treated as tentatively live even before a process match
// lands. Masks detection latency right after a session starts.
const ActiveThreshold = 30 * time.Second

// Matcher annotates sessions with liveness. The process list, history index
// and clock are injectable for tests.
type Matcher struct {
	AgentName string
	Clock     clock.Clock

	// Threshold overrides ActiveThreshold when positive; configured via
	// defaults.active_threshold_seconds.
	Threshold time.Duration

	// ListProcesses enumerates live agent processes. Defaults to
	// ListAgentProcesses over ps.
	ListProcesses func() []domain.LiveProcess

	// History maps project directories to their current session id, read
	// from the agent's history index. When a directory has an entry it is
	// authoritative over the recency heuristics.
	History func() map[string]string

	// ModTime returns a file's modification time. Defaults to os.Stat.
	ModTime func(path string) (time.Time, bool)
}

// NewMatcher builds a matcher with real process enumeration and wall clock.
func NewMatcher(agentName string, history func() map[string]string) *Matcher {
	m := &Matcher{
		AgentName: agentName,
		Clock:     clock.New(),
		History:   history,
	}
	m.ListProcesses = func() []domain.LiveProcess { return ListAgentProcesses(agentName) }
	return m
}

func (m *Matcher) modTime(path string) (time.Time, bool) {
	if m.ModTime != nil {
		return m.ModTime(path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// MarkActive recomputes the liveness flag and pid attachment for every
// session in place.
//
// Per directory with K live processes, the K most recently modified sessions
// rooted there are marked active, one pid each; the pairing beyond the count
// is best effort, not a guaranteed bijection. A history-index entry for the
// directory overrides the recency ordering. Independently, a session whose
// file changed within ActiveThreshold is marked active even without a
// process.
func (m *Matcher) MarkActive(sessions []*domain.Session) {
	for _, s := range sessions {
		s.IsActive = false
		s.PID = 0
	}

	procsByDir := m.processesByDirectory()
	// History keys are recorded paths; resolve them so a symlinked project
	// directory still matches the resolved keys used everywhere else.
	history := map[string]string{}
	if m.History != nil {
		for dir, id := range m.History() {
			history[resolvePath(dir)] = id
		}
	}

	sessionsByDir := lo.GroupBy(
		lo.Filter(sessions, func(s *domain.Session, _ int) bool { return s.ProjectPath != "" }),
		func(s *domain.Session) string { return resolvePath(s.ProjectPath) },
	)

	for dir, procs := range procsByDir {
		candidates := sessionsByDir[dir]
		if len(candidates) == 0 {
			continue
		}

		// Most recently modified first; the running session is the one
		// being appended to.
		sort.SliceStable(candidates, func(i, j int) bool {
			ti, _ := m.modTime(candidates[i].Path)
			tj, _ := m.modTime(candidates[j].Path)
			return ti.After(tj)
		})

		// History is authoritative for its directory: promote the recorded
		// session to the front of the assignment order.
		if current, ok := history[dir]; ok {
			for i, s := range candidates {
				if s.ID == current && i > 0 {
					candidates = append([]*domain.Session{s}, append(candidates[:i:i], candidates[i+1:]...)...)
					break
				}
			}
		}

		n := len(procs)
		if n > len(candidates) {
			n = len(candidates)
		}
		for i := 0; i < n; i++ {
			candidates[i].IsActive = true
			candidates[i].PID = procs[i].PID
		}
	}

	// Secondary signal: very recent writes imply a live session even when
	// process detection has not caught up.
	now := m.Clock.Now()
	threshold := m.threshold()
	for _, s := range sessions {
		if s.IsActive {
			continue
		}
		if mtime, ok := m.modTime(s.Path); ok && now.Sub(mtime) < threshold {
			s.IsActive = true
		}
	}
}

func (m *Matcher) threshold() time.Duration {
	if m.Threshold > 0 {
		return m.Threshold
	}
	return ActiveThreshold
}

// processesByDirectory groups live processes by resolved working directory,
// dropping processes whose directory could not be determined.
func (m *Matcher) processesByDirectory() map[string][]domain.LiveProcess {
	list := m.ListProcesses
	if list == nil {
		return nil
	}
	procs := lo.Filter(list(), func(p domain.LiveProcess, _ int) bool { return p.CWD != "" })
	return lo.GroupBy(procs, func(p domain.LiveProcess) string { return resolvePath(p.CWD) })
}

// AnnotateSessionIDs fills each process's best-effort session id by matching
// its directory against the given sessions (most recently modified wins).
func (m *Matcher) AnnotateSessionIDs(procs []domain.LiveProcess, sessions []*domain.Session) []domain.LiveProcess {
	byDir := lo.GroupBy(
		lo.Filter(sessions, func(s *domain.Session, _ int) bool { return s.ProjectPath != "" }),
		func(s *domain.Session) string { return resolvePath(s.ProjectPath) },
	)
	for i := range procs {
		if procs[i].CWD == "" {
			continue
		}
		candidates := byDir[resolvePath(procs[i].CWD)]
		if len(candidates) == 0 {
			continue
		}
		best := lo.MaxBy(candidates, func(a, b *domain.Session) bool {
			ta, _ := m.modTime(a.Path)
			tb, _ := m.modTime(b.Path)
			return ta.After(tb)
		})
		if best != nil {
			procs[i].SessionID = best.ID
		}
	}
	return procs
}
