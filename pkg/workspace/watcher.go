package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gnana997/esmshift/pkg/parser"
)

// DefaultDebounce is the quiet period before a changed file is re-converted.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions configures a Watcher.
type WatchOptions struct {
	Run RunOptions

	// Debounce groups rapid events for one file into a single conversion.
	// 0 selects DefaultDebounce.
	Debounce time.Duration

	// OnConvert is called after every conversion attempt, from the timer
	// goroutine of the file.
	OnConvert func(FileReport, error)
}

// Watcher re-converts files under a root as they change.
type Watcher struct {
	watcher *fsnotify.Watcher
	runner  *Runner
	opts    WatchOptions
	logger  *slog.Logger

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
	stopped bool
	mu      sync.Mutex
}

// NewWatcher creates a watcher. Call Start to begin watching.
func NewWatcher(runner *Runner, opts WatchOptions, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	resolved, err := resolvePaths(opts.Run)
	if err != nil {
		return nil, err
	}
	opts.Run = resolved
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:        fw,
		runner:         runner,
		opts:           opts,
		logger:         logger,
		debounceTimers: make(map[string]*time.Timer),
		done:           make(chan struct{}),
	}, nil
}

// Start adds watches for the root and every non-excluded directory below it
// and starts the event loop. The loop ends when ctx is cancelled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return errors.New("watcher already stopped")
	}
	if w.started {
		return errors.New("watcher already started")
	}

	if err := w.addTree(w.opts.Run.Root); err != nil {
		return err
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.started = true
	go w.eventLoop()

	w.logger.Info("file watcher started", "root", w.opts.Run.Root, "debounce", w.opts.Debounce.String())
	return nil
}

// Stop cancels pending conversions and closes the underlying watcher. It is
// idempotent.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	w.debounceTimers = make(map[string]*time.Timer)
	w.debounceMu.Unlock()

	err := w.watcher.Close()
	if started {
		<-w.done
	}
	w.logger.Info("file watcher stopped")
	return err
}

// Done is closed when the event loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.opts.Run.Root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			if path == root {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) eventLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
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
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.ignored(path) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	if !w.opts.Run.ForceLanguage && parser.DetectLanguage(path) == parser.LanguageUnknown {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "file", path)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.debounceConvert(path)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.cancelPending(path)
	}
}

// debounceConvert schedules a conversion; a later event for the same file
// within the debounce window replaces it.
func (w *Watcher) debounceConvert(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounceTimers[path]; ok {
		timer.Stop()
	}

	w.debounceTimers[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()

		w.convert(path)
	})
}

func (w *Watcher) cancelPending(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if timer, ok := w.debounceTimers[path]; ok {
		timer.Stop()
		delete(w.debounceTimers, path)
	}
}

func (w *Watcher) convert(path string) {
	if w.ctx.Err() != nil {
		return
	}

	rep, err := w.runner.ConvertOne(w.ctx, w.opts.Run, path)
	if err != nil {
		w.logger.Warn("failed to convert changed file", "file", path, "error", err)
	} else {
		w.logger.Info("converted changed file", "file", rep.Rel, "changed", rep.Changed, "output", rep.Output)
	}
	if w.opts.OnConvert != nil {
		w.opts.OnConvert(rep, err)
	}
}

// ignored reports whether path falls under an exclude pattern or the output
// directory.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.opts.Run.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return false
	}
	if matchAny(excludes(w.opts.Run), rel) {
		return true
	}
	if len(w.opts.Run.Scan.Include) > 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return false
		}
		return !matchAny(w.opts.Run.Scan.Include, rel)
	}
	return false
}

// GetStats returns watcher statistics.
func (w *Watcher) GetStats() WatcherStats {
	w.debounceMu.Lock()
	pending := len(w.debounceTimers)
	w.debounceMu.Unlock()

	w.mu.Lock()
	running := w.started && !w.stopped
	w.mu.Unlock()

	return WatcherStats{PendingConversions: pending, IsRunning: running}
}

// WatcherStats contains file watcher statistics.
type WatcherStats struct {
	PendingConversions int
	IsRunning          bool
}
