// Package watcher invalidates the catalogue when a local data checkout
// changes on disk. It is only active when the dataset source is a directory;
// HTTP sources rely on the cache TTL instead.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay is how long the directory must stay quiet before the
// invalidation fires. Editors and git checkouts touch many files in bursts.
const debounceDelay = 2 * time.Second

// Watcher monitors a data directory and fires a callback after changes settle.
type Watcher struct {
	root     string
	onChange func()
	logger   *slog.Logger
	watcher  *fsnotify.Watcher

	mu    sync.Mutex
	timer *time.Timer

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher over root. onChange runs (debounced) after the
// directory settles following one or more changes.
func New(root string, onChange func(), logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:     filepath.Clean(root),
		onChange: onChange,
		logger:   logger,
		watcher:  fsw,
		done:     make(chan struct{}),
	}

	if err := w.watchTree(w.root); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// watchTree recursively adds watches for root and every subdirectory.
func (w *Watcher) watchTree(root string) error {
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("Failed to access path", "path", p, "error", err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if shouldIgnore(p) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(p); err != nil {
			w.logger.Error("Failed to add watch", "path", p, "error", err)
			return nil
		}

		w.logger.Debug("Added watch", "path", p)
		return nil
	})
}

// shouldIgnore filters out VCS and editor noise.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	return base == ".git" || strings.HasPrefix(base, ".#")
}

// Start begins watching for events. Blocks until the context is canceled or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.processEvents(ctx)

	select {
	case <-ctx.Done():
	case <-w.done:
	}
	return nil
}

// processEvents consumes fsnotify events and schedules debounced invalidation.
func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if shouldIgnore(event.Name) {
		return
	}
	// Only JSON resources matter, but directory creation must register a new
	// watch before files inside it appear.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchTree(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
		}
	}
	if !strings.HasSuffix(event.Name, ".json") {
		if info, err := os.Stat(event.Name); err == nil && !info.IsDir() {
			return
		}
	}

	w.logger.Debug("Data change detected", "path", event.Name, "op", event.Op.String())
	w.scheduleInvalidation()
}

// scheduleInvalidation (re)arms the debounce timer.
func (w *Watcher) scheduleInvalidation() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, func() {
		select {
		case <-w.done:
			return
		default:
		}
		w.logger.Info("Data directory changed, invalidating catalogue", "root", w.root)
		w.onChange()
	})
}

// Stop shuts the watcher down and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
