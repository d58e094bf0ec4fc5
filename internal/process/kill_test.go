package process

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ccwatch/ccw/internal/domain"
)

func TestKillSessionNoMatch(t *testing.T) {
	procs := []domain.LiveProcess{
		{PID: 1234, CWD: "/home/dev/api", SessionID: "other"},
	}
	ok, msg := KillSession("missing", procs, false)
	assert.False(t, ok)
	assert.Contains(t, msg, "no running process found for session missing")
}

func TestKillNonexistentProcess(t *testing.T) {
	// Pid max on Linux is bounded well below this.
	assert.False(t, Kill(1<<30, false))
}

func TestKillAgentPIDRejectsUnknownPID(t *testing.T) {
	ok, msg := KillAgentPID("definitely-not-a-real-agent-binary", 1, false)
	assert.False(t, ok)
	assert.Contains(t, msg, "is not a running")
}
