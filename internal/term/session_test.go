package term

import (
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccwatch/ccw/internal/spawn"
)

// startShell launches a shell command under a fresh PTY and wraps it in a
// session, mirroring what SpawnEmbedded produces.
func startShell(t *testing.T, script string) *Session {
	t.Helper()
	cmd := exec.Command("sh", "-c", script)
	master, err := pty.Start(cmd)
	require.NoError(t, err)
	return NewSession(&spawn.Embedded{
		PTY: master,
		Cmd: cmd,
		PID: cmd.Process.Pid,
	})
}

// drain consumes session output on a goroutine and exposes the accumulated
// text. The output channel is bounded, so a consumer must always run.
type drain struct {
	mu  sync.Mutex
	buf strings.Builder
}

func newDrain(s *Session) *drain {
	d := &drain{}
	go func() {
		for chunk := range s.Output() {
			d.mu.Lock()
			d.buf.Write(chunk)
			d.mu.Unlock()
		}
	}()
	return d
}

func (d *drain) text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.String()
}

func waitDone(t *testing.T, s *Session) ExitStatus {
	t.Helper()
	select {
	case status := <-s.Done():
		return status
	case <-time.After(10 * time.Second):
		t.Fatal("session did not end in time")
		return ExitStatus{}
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := startShell(t, "cat")
	assert.Equal(t, StateIdle, s.State())

	s.Start()
	assert.Equal(t, StateRunning, s.State())
	assert.Positive(t, s.PID())

	d := newDrain(s)
	require.NoError(t, s.WriteLine("hello-from-test"))
	require.Eventually(t, func() bool {
		return strings.Contains(d.text(), "hello-from-test")
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, s.embedded.Cmd.Process.Kill())
	status := waitDone(t, s)
	assert.True(t, status.Signaled)
	assert.Equal(t, StateEnded, s.State())

	// Input after the end is quietly discarded.
	assert.NoError(t, s.WriteLine("too late"))
	assert.NoError(t, s.Resize(24, 80))
}

func TestSessionGracefulClose(t *testing.T) {
	// The script exits on its own once the polite exit line arrives.
	s := startShell(t, "read line; exit 7")
	s.Start()
	newDrain(s)

	status := s.Close()
	assert.Equal(t, 7, status.Code)
	assert.False(t, status.Signaled)
	assert.Equal(t, StateEnded, s.State())

	// Close on an ended session returns the same status without waiting.
	again := s.Close()
	assert.Equal(t, status, again)
}

func TestSessionCleanExit(t *testing.T) {
	s := startShell(t, "exit 0")
	s.Start()
	newDrain(s)

	status := waitDone(t, s)
	assert.Zero(t, status.Code)
	assert.False(t, status.Signaled)
}

func TestSessionInterrupt(t *testing.T) {
	s := startShell(t, "cat")
	s.Start()
	newDrain(s)

	// The PTY line discipline turns the 0x03 byte into SIGINT for the
	// foreground process.
	require.NoError(t, s.Interrupt())
	status := waitDone(t, s)
	assert.True(t, status.Signaled)

	// Interrupt after the end is a no-op.
	assert.NoError(t, s.Interrupt())
}

func TestSessionDoubleInterruptEscalation(t *testing.T) {
	// The child ignores SIGINT, so only the escalation to a process-group
	// SIGTERM can end it.
	s := startShell(t, "trap '' INT; echo ready; cat")
	mock := clock.NewMock()
	s.clock = mock
	s.Start()
	d := newDrain(s)

	// Wait until the trap is installed before the first Ctrl-C; otherwise
	// the default SIGINT disposition still applies and the shell dies.
	require.Eventually(t, func() bool {
		return strings.Contains(d.text(), "ready")
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Interrupt())
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, StateRunning, s.State())

	// Outside the window the second press is another plain Ctrl-C.
	mock.Add(DoubleInterruptWindow + time.Second)
	require.NoError(t, s.Interrupt())
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, StateRunning, s.State())

	// Within the window it escalates.
	require.NoError(t, s.Interrupt())
	status := waitDone(t, s)
	assert.True(t, status.Signaled)
}

func TestSessionCloseKillsStubbornProcess(t *testing.T) {
	// The child swallows the exit line and ignores SIGTERM; only the final
	// SIGKILL can end it, and afterwards no process with its pid remains.
	s := startShell(t, "trap '' TERM INT; while :; do read x; done")
	mock := clock.NewMock()
	s.clock = mock
	s.Start()
	newDrain(s)

	// Drive the bounded waits inside Close by advancing the clock until
	// the session ends.
	go func() {
		for {
			select {
			case <-s.ended:
				return
			default:
			}
			time.Sleep(20 * time.Millisecond)
			mock.Add(gracefulWait)
		}
	}()

	status := s.Close()
	assert.True(t, status.Signaled)
	assert.Equal(t, StateEnded, s.State())

	// The process group is gone; the pid no longer exists.
	assert.Error(t, syscall.Kill(s.PID(), 0))
}

func TestSessionStartIdempotent(t *testing.T) {
	s := startShell(t, "exit 0")
	s.Start()
	s.Start()
	newDrain(s)
	waitDone(t, s)
	assert.Equal(t, StateEnded, s.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "ended", StateEnded.String())
	assert.Equal(t, "unknown", State(42).String())
}
