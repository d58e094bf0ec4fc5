// Package watcher delivers filesystem change notifications for transcript
// files. Delivery is at-least-once; consumers re-parse the whole file on
// every event, so duplicates are harmless.
package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Callback receives the path of a created or modified transcript file. It
// runs on the watcher goroutine and must hand payloads off rather than
// mutate shared state.
type Callback func(path string)

// Watcher observes a transcript root for created and modified .jsonl files.
// Start and Stop are explicit lifecycle operations; after Stop returns no
// callback fires.
type Watcher struct {
	root       string
	onNew      Callback
	onModified Callback

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	done    sync.WaitGroup
	started bool
}

// New creates a watcher over root. Either callback may be nil.
func New(root string, onNew, onModified Callback) *Watcher {
	return &Watcher{root: root, onNew: onNew, onModified: onModified}
}

// Start begins watching on a dedicated goroutine. fsnotify watches are not
// recursive, so every existing subdirectory is registered up front and new
// directories are registered as their create events arrive.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	if err := addRecursive(fsw, w.root); err != nil {
		fsw.Close()
		w.fsw = nil
		return err
	}

	w.started = true
	w.done.Add(1)
	go w.loop(fsw)
	return nil
}

// Stop tears the watcher down. It blocks until the event loop has exited,
// so no callback is invoked after Stop returns.
func (w *Watcher) Stop() {
	w.mu.Lock()
	fsw := w.fsw
	w.fsw = nil
	w.started = false
	w.mu.Unlock()

	if fsw == nil {
		return
	}
	fsw.Close()
	w.done.Wait()
}

func (w *Watcher) loop(fsw *fsnotify.Watcher) {
	defer w.done.Done()

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(fsw, event)
		case _, ok := <-fsw.Errors:
			if !ok {
				return
			}
			// Watch errors are transient; keep draining.
		}
	}
}

func (w *Watcher) handle(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = addRecursive(fsw, event.Name)
			return
		}
	}

	if !isTranscript(event.Name) {
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		if w.onNew != nil {
			w.onNew(event.Name)
		}
	case event.Op&fsnotify.Write != 0:
		if w.onModified != nil {
			w.onModified(event.Name)
		}
	}
}

// isTranscript filters events down to top-level session transcripts,
// excluding sub-agent files.
func isTranscript(path string) bool {
	if filepath.Ext(path) != ".jsonl" {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == "subagents" {
			return false
		}
	}
	return true
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
