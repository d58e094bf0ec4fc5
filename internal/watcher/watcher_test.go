package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects callback invocations behind a mutex; callbacks run on
// the watcher goroutine.
type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) record(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) contains(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.paths {
		if p == path {
			return true
		}
	}
	return false
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func TestWatcherReportsNewTranscript(t *testing.T) {
	dir := t.TempDir()
	var created recorder

	w := New(dir, created.record, nil)
	require.NoError(t, w.Start())
	defer w.Stop()

	path := filepath.Join(dir, "new-session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	require.Eventually(t, func() bool {
		return created.contains(path)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherReportsModifiedTranscript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "existing.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	var modified recorder
	w := New(dir, nil, modified.record)
	require.NoError(t, w.Start())
	defer w.Stop()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{\"type\":\"user\"}\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		return modified.contains(path)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherCoversNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	var created recorder

	w := New(dir, created.record, nil)
	require.NoError(t, w.Start())
	defer w.Stop()

	// A new project directory appears after Start; files inside it must
	// still be observed.
	sub := filepath.Join(dir, "-home-dev-newproj")
	require.NoError(t, os.Mkdir(sub, 0o755))

	path := filepath.Join(sub, "fresh.jsonl")
	require.Eventually(t, func() bool {
		// Keep re-creating the file until the watch on the new directory
		// has landed; only a create event reaches the onNew callback.
		_ = os.Remove(path)
		_ = os.WriteFile(path, []byte("{}\n"), 0o644)
		return created.contains(path)
	}, 2*time.Second, 25*time.Millisecond)
}

func TestWatcherIgnoresNonTranscripts(t *testing.T) {
	dir := t.TempDir()
	var created recorder

	w := New(dir, created.record, nil)
	require.NoError(t, w.Start())
	defer w.Stop()

	marker := filepath.Join(dir, "marker.jsonl")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(marker, []byte("{}\n"), 0o644))

	require.Eventually(t, func() bool {
		return created.contains(marker)
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, created.contains(filepath.Join(dir, "notes.txt")))
}

func TestWatcherStopPreventsFurtherCallbacks(t *testing.T) {
	dir := t.TempDir()
	var created recorder

	w := New(dir, created.record, nil)
	require.NoError(t, w.Start())
	w.Stop()

	before := created.count()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.jsonl"), []byte("{}\n"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, created.count())
}

func TestWatcherStartMissingRoot(t *testing.T) {
	// A missing root degrades to a watcher with no registered directories.
	w := New(filepath.Join(t.TempDir(), "absent"), nil, nil)
	require.NoError(t, w.Start())
	w.Stop()
}

func TestWatcherStopIdempotent(t *testing.T) {
	w := New(t.TempDir(), nil, nil)
	require.NoError(t, w.Start())
	w.Stop()
	w.Stop()
}

func TestIsTranscript(t *testing.T) {
	assert.True(t, isTranscript("/root/-home-dev-api/abc.jsonl"))
	assert.False(t, isTranscript("/root/-home-dev-api/abc.json"))
	assert.False(t, isTranscript("/root/-home-dev-api/subagents/abc.jsonl"))
}
