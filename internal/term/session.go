// Package term runs an agent process inside the current terminal through
// a pseudo-terminal, with a small lifecycle state machine around it.
package term

import (
	"errors"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/ccwatch/ccw/internal/spawn"
)

// State is the lifecycle of an embedded session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// DoubleInterruptWindow is how quickly a second interrupt must follow the
// first to escalate into a process-group SIGTERM.
const DoubleInterruptWindow = 2 * time.Second

// gracefulWait bounds how long Close waits after the polite exit command
// before signalling, and again between SIGTERM and SIGKILL.
const gracefulWait = 5 * time.Second

// ExitStatus is delivered exactly once when the agent process ends.
type ExitStatus struct {
	Code     int
	Signaled bool
}

// Session owns one agent process on a PTY. Output is drained by an
// internal goroutine and delivered on Output(); the channel closes when
// the process ends.
type Session struct {
	mu            sync.Mutex
	state         State
	embedded      *spawn.Embedded
	clock         clock.Clock
	output        chan []byte
	done          chan ExitStatus
	ended         chan struct{}
	exit          ExitStatus
	lastInterrupt time.Time
	readerDone    sync.WaitGroup
}

// NewSession wraps an already-started embedded process. The session is
// idle until Start is called.
func NewSession(embedded *spawn.Embedded) *Session {
	return &Session{
		state:    StateIdle,
		embedded: embedded,
		clock:    clock.New(),
		output:   make(chan []byte, 64),
		done:     make(chan ExitStatus, 1),
		ended:    make(chan struct{}),
	}
}

// Start begins draining the PTY and watching for process exit. Calling
// Start more than once is a no-op.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return
	}
	s.state = StateRunning

	s.readerDone.Add(1)
	go s.readLoop()
	go s.waitLoop()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PID returns the agent's process id.
func (s *Session) PID() int {
	return s.embedded.PID
}

// Output delivers PTY output chunks. Closed after the process ends.
func (s *Session) Output() <-chan []byte {
	return s.output
}

// Done delivers the exit status exactly once, then closes.
func (s *Session) Done() <-chan ExitStatus {
	return s.done
}

// readLoop copies PTY output into the output channel. A read error means
// the process closed its side, which the wait loop handles.
func (s *Session) readLoop() {
	defer s.readerDone.Done()
	buf := make([]byte, 4096)
	for {
		n, err := s.embedded.PTY.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.output <- chunk
		}
		if err != nil {
			return
		}
	}
}

// waitLoop reaps the process and performs the one-time transition to
// StateEnded.
func (s *Session) waitLoop() {
	err := s.embedded.Cmd.Wait()

	status := ExitStatus{}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		status.Code = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			status.Signaled = true
		}
	default:
		status.Code = -1
	}

	s.mu.Lock()
	s.state = StateEnded
	s.exit = status
	s.mu.Unlock()

	// Unblock and finish the reader before closing the output channel.
	_ = s.embedded.PTY.Close()
	s.readerDone.Wait()
	close(s.output)

	s.done <- status
	close(s.done)
	close(s.ended)
}

// WriteLine sends a line of input to the agent, terminated with a
// carriage return as a terminal would. No-op once the session has ended.
func (s *Session) WriteLine(line string) error {
	return s.write([]byte(line + "\r"))
}

func (s *Session) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return nil
	}
	_, err := s.embedded.PTY.Write(data)
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	return err
}

// Interrupt delivers Ctrl-C to the agent. A second interrupt within
// DoubleInterruptWindow escalates to SIGTERM on the process group, for
// agents that swallow the in-band interrupt, with a SIGKILL backstop if
// the group is still alive after a bounded wait.
func (s *Session) Interrupt() error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return nil
	}
	now := s.clock.Now()
	escalate := !s.lastInterrupt.IsZero() && now.Sub(s.lastInterrupt) <= DoubleInterruptWindow
	s.lastInterrupt = now
	s.mu.Unlock()

	if escalate {
		if err := s.signalGroup(syscall.SIGTERM); err != nil {
			return err
		}
		go func() {
			if !s.waitEnded(gracefulWait) {
				_ = s.signalGroup(syscall.SIGKILL)
			}
		}()
		return nil
	}
	return s.write([]byte{0x03})
}

// RequestExit asks the agent to quit with its own exit command. The
// caller should then wait on Done, or use Close for a bounded shutdown.
func (s *Session) RequestExit() error {
	return s.WriteLine("/exit")
}

// Close shuts the session down: polite exit command first, then SIGTERM
// to the process group, then SIGKILL, each after a bounded wait. Safe to
// call on an already-ended session.
func (s *Session) Close() ExitStatus {
	if s.State() == StateRunning {
		_ = s.RequestExit()
		if s.waitEnded(gracefulWait) {
			return s.exitStatus()
		}
		_ = s.signalGroup(syscall.SIGTERM)
		if s.waitEnded(gracefulWait) {
			return s.exitStatus()
		}
		_ = s.signalGroup(syscall.SIGKILL)
	}
	s.waitEnded(gracefulWait)
	return s.exitStatus()
}

// waitEnded waits up to d for the session to end.
func (s *Session) waitEnded(d time.Duration) bool {
	timer := s.clock.Timer(d)
	defer timer.Stop()
	select {
	case <-s.ended:
		return true
	case <-timer.C:
		return false
	}
}

func (s *Session) exitStatus() ExitStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exit
}

// signalGroup signals the agent's process group. The child is a session
// leader, so its pgid equals its pid.
func (s *Session) signalGroup(sig syscall.Signal) error {
	err := syscall.Kill(-s.embedded.PID, sig)
	if err == syscall.ESRCH {
		return nil
	}
	return err
}

// Resize propagates a terminal size change.
func (s *Session) Resize(rows, cols uint16) error {
	if s.State() != StateRunning {
		return nil
	}
	return s.embedded.Resize(rows, cols)
}
