// Package watcher provides filesystem watching for continuous
// optimization. New and modified PDFs are reported after a debounce
// interval so a file still being written is not picked up mid-copy.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jamesainslie/squeeze/pkg/squeeze/logging"
)

// DefaultDebounce is how long a file must stay quiet before it is
// reported. Writers emit bursts of Write events; the last one wins.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches directories for PDF changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *logging.Logger

	mu     sync.Mutex
	paths  map[string]bool
	timers map[string]*time.Timer
	closed bool
}

// New creates a new Watcher. A non-positive debounce uses
// DefaultDebounce.
func New(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		watcher:  fsw,
		debounce: debounce,
		logger:   logging.Get("watcher"),
		paths:    make(map[string]bool),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Watch starts watching a directory tree. Watches are added to the
// root and all subdirectories. Symlinks are not followed to avoid
// loops.
func (w *Watcher) Watch(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil // Only watch directories
	}

	return filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if d.IsDir() {
			return w.addWatch(path)
		}
		return nil
	})
}

// addWatch adds a single directory to the watch list.
func (w *Watcher) addWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.paths[path] {
		return nil
	}

	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("failed to add watch", "path", path, "error", err)
		return err
	}

	w.paths[path] = true
	return nil
}

// Run starts the event loop. It blocks until the context is cancelled.
// The onPDF callback receives the path of each settled PDF change. It
// is invoked from timer goroutines after the debounce interval.
func (w *Watcher) Run(ctx context.Context, onPDF func(path string)) {
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event, onPDF)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event, onPDF func(path string)) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	// New directories join the watch set so nested drops are seen.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			_ = w.addWatch(event.Name)
			return
		}
	}

	if !isCandidate(event.Name) {
		return
	}

	w.scheduleCallback(ctx, event.Name, onPDF)
}

// scheduleCallback (re)starts the debounce timer for a path. Each new
// event on the same path pushes the callback further out.
func (w *Watcher) scheduleCallback(ctx context.Context, path string, onPDF func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.debounce)
		return
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}

		// The file may be gone by the time the timer fires.
		if _, err := os.Stat(path); err != nil {
			return
		}

		if onPDF != nil {
			onPDF(path)
		}
	})
}

// stopTimers cancels all pending debounce timers.
func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.stopTimers()
	return w.watcher.Close()
}

// isCandidate reports whether a path is a PDF worth optimizing.
// Dot-prefixed names are excluded so in-flight temp outputs from the
// optimizer never retrigger the watcher.
func isCandidate(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
