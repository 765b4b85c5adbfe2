package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher picks up recordings created under the data root after the
// initial batch and processes them incrementally. Changes are debounced so
// a file still being copied in is processed once, after it settles.
type Watcher struct {
	runner  *Runner
	watcher *fsnotify.Watcher

	debounce time.Duration

	// Debouncing: collect paths before processing
	pendingMu sync.Mutex
	pending   map[string]struct{}
}

// NewWatcher creates a watcher over the runner's data root.
func NewWatcher(r *Runner, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce == 0 {
		debounce = 2 * time.Second
	}
	return &Watcher{
		runner:   r,
		watcher:  fsw,
		debounce: debounce,
		pending:  make(map[string]struct{}),
	}, nil
}

// Start begins watching and blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.runner.dataRoot); err != nil {
		return err
	}

	w.runner.logger.Info("watch mode started",
		"root", w.runner.dataRoot,
		"debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(event) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.runner.logger.Warn("watch error", "error", err)

		case <-timer.C:
			w.flush()
		}
	}
}

// handleEvent records a relevant event and reports whether the debounce
// timer should restart.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	// New directories join the watch so nested subject folders are seen.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addWatchesRecursive(event.Name); err != nil {
				w.runner.logger.Debug("watch add failed", "path", event.Name, "error", err)
			}
		}
	}

	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return false
	}
	if !strings.EqualFold(filepath.Ext(event.Name), "."+w.runner.rule.PSGExt) {
		return false
	}

	w.pendingMu.Lock()
	w.pending[event.Name] = struct{}{}
	w.pendingMu.Unlock()
	return true
}

// flush processes every pending recording against a fresh annotation scan.
func (w *Watcher) flush() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}

	annoFiles, err := Scan(w.runner.annoRoot, w.runner.rule.AnnoExt)
	if err != nil {
		w.runner.logger.Warn("annotation rescan failed", "error", err)
		return
	}

	for _, sub := range Pair(paths, annoFiles) {
		n, err := w.runner.processSubject(sub)
		if err != nil {
			w.runner.logger.Warn("subject skipped", "subject", sub.Stem, "reason", err)
			if w.runner.metrics != nil {
				w.runner.metrics.SubjectsSkipped.Inc()
			}
			continue
		}
		w.runner.logger.Info("subject processed", "subject", sub.Stem, "sequences", n)
		if w.runner.metrics != nil {
			w.runner.metrics.SubjectsProcessed.Inc()
			w.runner.metrics.SequencesWritten.Add(float64(n))
		}
	}
}

// addWatchesRecursive adds path and every directory below it.
func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}
