package process

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ccwatch/ccw/internal/domain"
)

// subprocess timeout for ps/lsof lookups
const lookupTimeout = 5 * time.Second

// ListAgentProcesses enumerates running processes whose command line invokes
// the given agent binary. Absence of ps, permission errors and empty output
// all degrade to an empty slice.
func ListAgentProcesses(agentName string) []domain.LiveProcess {
	out, err := runWithTimeout("ps", "-eo", "pid=,args=")
	if err != nil {
		return nil
	}

	var procs []domain.LiveProcess
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) < 2 {
			continue
		}
		pid, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		command := strings.TrimSpace(parts[1])
		if !isAgentCommand(command, agentName) {
			continue
		}
		procs = append(procs, domain.LiveProcess{
			PID:     pid,
			CWD:     ProcessCWD(pid),
			Command: command,
		})
	}
	return procs
}

// isAgentCommand matches the agent binary itself while excluding lookalikes
// such as this tool, editors opening transcript files, or grep.
func isAgentCommand(command, agentName string) bool {
	lower := strings.ToLower(command)
	if strings.Contains(lower, "grep") || strings.Contains(lower, "ccw") {
		return false
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}
	head := fields[0]
	return head == agentName ||
		strings.HasSuffix(head, "/"+agentName) ||
		strings.HasPrefix(command, agentName+" ")
}

// ProcessCWD resolves a process's working directory. On Linux this is a
// /proc readlink; elsewhere lsof is tried. Returns "" when unavailable.
func ProcessCWD(pid int) string {
	if target, err := os.Readlink(fmt.Sprintf("/proc/%d/cwd", pid)); err == nil {
		return target
	}

	out, err := runWithTimeout("lsof", "-p", strconv.Itoa(pid))
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, " cwd ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 9 {
			return fields[len(fields)-1]
		}
	}
	return ""
}

func runWithTimeout(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	var out strings.Builder
	cmd.Stdout = &out

	if err := cmd.Start(); err != nil {
		return "", err
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return "", err
		}
		return out.String(), nil
	case <-time.After(lookupTimeout):
		_ = cmd.Process.Kill()
		<-done
		return "", fmt.Errorf("%s timed out", name)
	}
}

// resolvePath canonicalizes a directory path for comparison, falling back to
// a cleaned form when the path cannot be resolved.
func resolvePath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}
