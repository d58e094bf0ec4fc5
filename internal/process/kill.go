package process

import (
	"fmt"
	"syscall"

	"github.com/ccwatch/ccw/internal/domain"
)

// Kill delivers SIGTERM (or SIGKILL when force is set) to a pid. Returns
// false when the process does not exist or cannot be signalled.
func Kill(pid int, force bool) bool {
	sig := syscall.SIGTERM
	if force {
		sig = syscall.SIGKILL
	}
	return syscall.Kill(pid, sig) == nil
}

// KillAgentPID kills a pid only after verifying it belongs to a live agent
// process, so a stale pid cannot take down an unrelated process.
func KillAgentPID(agentName string, pid int, force bool) (bool, string) {
	procs := ListAgentProcesses(agentName)
	found := false
	for _, p := range procs {
		if p.PID == pid {
			found = true
			break
		}
	}
	if !found {
		return false, fmt.Sprintf("PID %d is not a running %s process", pid, agentName)
	}
	if !Kill(pid, force) {
		return false, fmt.Sprintf("failed to kill process %d", pid)
	}
	return true, fmt.Sprintf("killed process %d", pid)
}

// KillSession terminates the live process matched to the given session id.
func KillSession(sessionID string, procs []domain.LiveProcess, force bool) (bool, string) {
	for _, p := range procs {
		if p.SessionID == sessionID {
			if Kill(p.PID, force) {
				return true, fmt.Sprintf("killed process %d", p.PID)
			}
			return false, fmt.Sprintf("failed to kill process %d", p.PID)
		}
	}
	return false, fmt.Sprintf("no running process found for session %s", sessionID)
}
