// Package output renders sessions, processes, and spawn outcomes as
// NDJSON for agents or as tables for humans.
package output

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/ccwatch/ccw/internal/domain"
)

// SchemaVersion is bumped when any NDJSON envelope changes shape.
const SchemaVersion = 1

// NDJSONWriter writes newline-delimited JSON envelopes. Safe for
// concurrent use.
type NDJSONWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewNDJSONWriter creates a writer emitting to w.
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	return &NDJSONWriter{enc: json.NewEncoder(w)}
}

func (w *NDJSONWriter) write(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(v)
}

// ErrorOutput is the machine-readable failure envelope.
type ErrorOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code"`
	Message       string `json:"message"`
	Hint          string `json:"hint,omitempty"`
}

// WriteError emits an error envelope with an optional hint.
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	out := ErrorOutput{
		Type:          "error",
		SchemaVersion: SchemaVersion,
		Code:          code,
		Message:       message,
	}
	if len(hint) > 0 {
		out.Hint = hint[0]
	}
	return w.write(out)
}

// SessionOutput is one transcript session row.
type SessionOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	ID            string `json:"id"`
	Path          string `json:"path"`
	Project       string `json:"project,omitempty"`
	Summary       string `json:"summary"`
	Messages      int    `json:"messages"`
	Tools         int    `json:"tools"`
	StartTime     string `json:"start_time,omitempty"`
	Active        bool   `json:"active"`
	PID           int    `json:"pid,omitempty"`
}

// WriteSession emits one session envelope.
func (w *NDJSONWriter) WriteSession(s *domain.Session) error {
	return w.write(SessionOutput{
		Type:          "session",
		SchemaVersion: SchemaVersion,
		ID:            s.ID,
		Path:          s.Path,
		Project:       s.ProjectPath,
		Summary:       s.DisplaySummary(),
		Messages:      s.MessageCount,
		Tools:         s.ToolCount(),
		StartTime:     s.StartTime,
		Active:        s.IsActive,
		PID:           s.PID,
	})
}

// WriteSessions emits one envelope per session.
func (w *NDJSONWriter) WriteSessions(sessions []*domain.Session) error {
	for _, s := range sessions {
		if err := w.WriteSession(s); err != nil {
			return err
		}
	}
	return nil
}

// ProcessOutput is one live agent process row.
type ProcessOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	PID           int    `json:"pid"`
	CWD           string `json:"cwd"`
	Command       string `json:"command"`
	SessionID     string `json:"session_id,omitempty"`
}

// WriteProcess emits one live process envelope.
func (w *NDJSONWriter) WriteProcess(p domain.LiveProcess) error {
	return w.write(ProcessOutput{
		Type:          "process",
		SchemaVersion: SchemaVersion,
		PID:           p.PID,
		CWD:           p.CWD,
		Command:       p.Command,
		SessionID:     p.SessionID,
	})
}

// WriteProcesses emits one envelope per process.
func (w *NDJSONWriter) WriteProcesses(procs []domain.LiveProcess) error {
	for _, p := range procs {
		if err := w.WriteProcess(p); err != nil {
			return err
		}
	}
	return nil
}

// SpawnOutput reports the outcome of a spawn attempt.
type SpawnOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Success       bool   `json:"success"`
	PID           int    `json:"pid,omitempty"`
	Error         string `json:"error,omitempty"`
}

// WriteSpawnResult emits a spawn outcome envelope.
func (w *NDJSONWriter) WriteSpawnResult(r domain.SpawnResult) error {
	return w.write(SpawnOutput{
		Type:          "spawn_result",
		SchemaVersion: SchemaVersion,
		Success:       r.Success,
		PID:           r.PID,
		Error:         r.Error,
	})
}
