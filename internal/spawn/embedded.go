package spawn

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/creack/pty"

	"github.com/ccwatch/ccw/internal/domain"
)

// Embedded is an agent process attached to the caller through a
// pseudo-terminal. The parent side of the pair is exposed as PTY; the
// child runs with the slave as its controlling terminal.
type Embedded struct {
	PTY *os.File
	Cmd *exec.Cmd
	PID int
}

// SpawnEmbedded starts the agent under a fresh PTY in cwd, resuming
// resumeID when non-empty. The child gets TERM=xterm-256color so
// full-screen agents render correctly.
func (s *Spawner) SpawnEmbedded(cwd, resumeID string) (*Embedded, domain.SpawnResult) {
	if _, err := s.lookPath(s.AgentName); err != nil {
		return nil, failure(fmt.Errorf("%w: %q", ErrExecutableNotFound, s.AgentName))
	}

	args := []string{}
	if resumeID != "" {
		args = append(args, "--resume", resumeID)
	}

	cmd := exec.Command(s.AgentName, args...)
	cmd.Dir = cwd
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")

	master, err := pty.Start(cmd)
	if err != nil {
		return nil, failure(fmt.Errorf("failed to start agent under pty: %w", err))
	}

	return &Embedded{
			PTY: master,
			Cmd: cmd,
			PID: cmd.Process.Pid,
		}, domain.SpawnResult{
			Success: true,
			PID:     cmd.Process.Pid,
		}
}

// Resize propagates a window size change to the PTY.
func (e *Embedded) Resize(rows, cols uint16) error {
	return pty.Setsize(e.PTY, &pty.Winsize{Rows: rows, Cols: cols})
}
