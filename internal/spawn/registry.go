package spawn

import (
	"sync"
	"syscall"
)

// Registry tracks the pids of agent processes this program spawned, so
// they can be cleaned up on exit. It only ever signals pids it
// registered itself.
type Registry struct {
	mu   sync.Mutex
	pids map[int]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pids: make(map[int]struct{})}
}

// Track records a spawned pid.
func (r *Registry) Track(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pids[pid] = struct{}{}
}

// Untrack removes a pid, typically after the process exited on its own.
func (r *Registry) Untrack(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pids, pid)
}

// Tracked returns a snapshot of the registered pids.
func (r *Registry) Tracked() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, len(r.pids))
	for pid := range r.pids {
		out = append(out, pid)
	}
	return out
}

// Shutdown terminates every tracked process that is still alive and
// clears the registry. Dead pids are skipped quietly.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for pid := range r.pids {
		if err := syscall.Kill(pid, 0); err != nil {
			continue
		}
		_ = syscall.Kill(pid, syscall.SIGTERM)
	}
	r.pids = make(map[int]struct{})
}
