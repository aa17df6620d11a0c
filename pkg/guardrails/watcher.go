package guardrails

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

// Watcher watches guardrail manifest roots for changes and rebuilds the
// holder's snapshot when they settle. Rapid event bursts (editor saves,
// git checkouts) are debounced into a single rebuild.
type Watcher struct {
	holder   *Holder
	opts     BuildOptions
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce *debouncer

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// DefaultDebounceInterval is the quiet period required after the last
// file event before a rebuild fires.
const DefaultDebounceInterval = 100 * time.Millisecond

// NewWatcher creates a watcher that reloads the given holder with the
// given build options whenever a manifest under the configured roots
// changes.
func NewWatcher(holder *Holder, opts BuildOptions, logger *slog.Logger) (*Watcher, error) {
	if holder == nil {
		return nil, fmt.Errorf("holder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		holder:   holder,
		opts:     opts,
		watcher:  fsw,
		logger:   logger.With("component", "guardrails.watcher"),
		debounce: newDebouncer(DefaultDebounceInterval),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks processing file events until the context is cancelled or
// Stop is called.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	roots := append([]string{w.opts.Root}, w.opts.ExtraDirs...)
	for _, root := range roots {
		if root == "" {
			continue
		}
		if err := w.addRoot(root); err != nil {
			w.logger.Warn("cannot watch guardrails root", "dir", root, "error", err)
		}
	}

	w.logger.Info("guardrail watcher started", "roots", len(roots))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("guardrail watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("guardrail watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcess(event) {
				continue
			}

			w.logger.Debug("manifest event detected", "path", event.Name, "op", event.Op.String())

			// New guardrail subdirectories need watching too.
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(event.Name)
				}
			}

			w.debounce.trigger(func() {
				w.logger.Info("rebuilding guardrail snapshot", "trigger", event.Name)
				w.holder.Reload(w.opts)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("guardrail watcher error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// addRoot watches a guardrails root and its immediate subdirectories.
func (w *Watcher) addRoot(root string) error {
	if err := w.watcher.Add(root); err != nil {
		return err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			if err := w.watcher.Add(filepath.Join(root, e.Name())); err != nil {
				w.logger.Warn("cannot watch guardrail directory", "dir", e.Name(), "error", err)
			}
		}
	}
	return nil
}

// shouldProcess filters events down to manifest-relevant ones.
func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}

	// Directory create/remove changes the guardrail set.
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		return true
	}
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && filepath.Ext(base) == "" {
		return true
	}

	ext := strings.ToLower(filepath.Ext(base))
	return ext == ".yaml" || ext == ".yml"
}

// debouncer collapses rapid event bursts into a single callback after a
// quiet period.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	stopped  bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

// trigger schedules the callback after the debounce interval,
// resetting the clock if another trigger arrives first.
func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, callback)
}

// stop cancels any pending callback.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
