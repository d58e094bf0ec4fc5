// Package session tracks how the scanned session set evolves between
// rescans, so the UI can report what changed instead of silently
// swapping lists.
package session

import (
	"sync"

	"github.com/ccwatch/ccw/internal/domain"
)

// Change describes one session's transition between two scans.
type Change struct {
	SessionID   string
	New         bool // first time this session appears
	NewMessages int  // messages added since the previous scan
	BecameLive  bool // gained a live process
	Ended       bool // lost its live process
}

type snapshot struct {
	messages int
	active   bool
}

// Tracker diffs successive transcript scans.
type Tracker struct {
	mu          sync.Mutex
	known       map[string]snapshot
	initialized bool
}

// NewTracker creates an empty tracker. The first scan establishes the
// baseline and reports no changes.
func NewTracker() *Tracker {
	return &Tracker{known: make(map[string]snapshot)}
}

// Diff compares the scan against the previous one and returns what
// changed, then adopts the scan as the new baseline.
func (t *Tracker) Diff(sessions []*domain.Session) []Change {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := make(map[string]snapshot, len(sessions))
	var changes []Change

	for _, s := range sessions {
		cur := snapshot{messages: s.MessageCount, active: s.IsActive}
		next[s.ID] = cur

		if !t.initialized {
			continue
		}

		prev, seen := t.known[s.ID]
		if !seen {
			changes = append(changes, Change{SessionID: s.ID, New: true})
			continue
		}

		c := Change{SessionID: s.ID}
		changed := false
		if cur.messages > prev.messages {
			c.NewMessages = cur.messages - prev.messages
			changed = true
		}
		if cur.active && !prev.active {
			c.BecameLive = true
			changed = true
		}
		if !cur.active && prev.active {
			c.Ended = true
			changed = true
		}
		if changed {
			changes = append(changes, c)
		}
	}

	t.known = next
	t.initialized = true
	return changes
}

// Count returns how many sessions the tracker currently knows.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.known)
}
