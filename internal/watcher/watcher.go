// Package watcher triggers re-indexing when documentation sources change.
// Events are debounced so a burst of writes (editor save, git checkout)
// produces a single rebuild.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the default event coalescing window.
const DefaultDebounce = 500 * time.Millisecond

// RebuildFunc runs one full re-index. Errors are logged, not fatal; the
// watcher keeps running.
type RebuildFunc func(ctx context.Context) error

// Watcher observes a docs tree and calls a rebuild function after
// changes settle.
type Watcher struct {
	root     string
	debounce time.Duration
	rebuild  RebuildFunc
	logger   *slog.Logger

	mu      sync.Mutex
	fw      *fsnotify.Watcher
	timer   *time.Timer
	stopped bool
	done    chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a watcher over the docs root.
func New(root string, rebuild RebuildFunc, opts ...Option) *Watcher {
	w := &Watcher{
		root:     root,
		debounce: DefaultDebounce,
		rebuild:  rebuild,
		logger:   slog.Default(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. It returns once the watch is established; event
// handling continues in the background until Stop or context cancel.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.fw = fw
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		_ = fw.Close()
		return err
	}

	go w.run(ctx, fw)
	return nil
}

// Stop stops the watcher. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	if w.fw != nil {
		return w.fw.Close()
	}
	return nil
}

// Done is closed when the event loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher_error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return
	}

	// New directories need watches of their own.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("watch_add_failed",
					slog.String("path", event.Name),
					slog.String("error", err.Error()))
			}
			w.schedule(ctx)
			return
		}
	}

	if !isMarkdown(event.Name) {
		return
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	w.logger.Debug("source_changed",
		slog.String("path", event.Name),
		slog.String("op", event.Op.String()))
	w.schedule(ctx)
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if ctx.Err() != nil {
			return
		}
		w.logger.Info("reindex_triggered", slog.String("root", w.root))
		if err := w.rebuild(ctx); err != nil {
			w.logger.Error("reindex_failed", slog.String("error", err.Error()))
		}
	})
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			return fs.SkipDir
		}
		return w.fwAdd(path)
	})
}

func (w *Watcher) fwAdd(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fw == nil || w.stopped {
		return nil
	}
	return w.fw.Add(path)
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".mdx", ".markdown":
		return true
	}
	return false
}
