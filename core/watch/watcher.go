// Package watch re-runs the pipeline when source files under the base
// directory change. Events are debounced into a single rerun signal;
// the pipeline itself stays single-threaded, one run at a time.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/adalundhe/weft/core/detect"
	"github.com/adalundhe/weft/core/lang"
)

// DefaultDebounce coalesces event bursts (editor saves, branch
// switches) into one rerun.
const DefaultDebounce = 400 * time.Millisecond

var (
	ErrNoPathConfigured = errors.New("no path configured for watching")
	ErrPathNotDirectory = errors.New("watch path is not a directory")
)

// Config configures the watcher.
type Config struct {
	// Path is the directory watched recursively.
	Path string

	// ExcludedDirs prune subtrees from watching; nil selects the
	// defaults.
	ExcludedDirs []string

	// Registry gates events to supported source files.
	Registry *lang.Registry

	// Debounce is how long to wait after the last event before
	// rerunning.
	Debounce time.Duration

	Logger *slog.Logger
}

// Watcher monitors a tree and fires a callback after changes settle.
type Watcher struct {
	config   Config
	watcher  *fsnotify.Watcher
	registry *lang.Registry
	excluded map[string]struct{}
	logger   *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool

	stopOnce sync.Once
	runCh    chan struct{}
}

// New validates the configuration and prepares a watcher. Run starts
// it.
func New(config Config) (*Watcher, error) {
	if config.Path == "" {
		return nil, ErrNoPathConfigured
	}
	info, err := os.Stat(config.Path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrPathNotDirectory
	}

	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	registry := config.Registry
	if registry == nil {
		registry = lang.Default()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dirNames := config.ExcludedDirs
	if dirNames == nil {
		dirNames = detect.DefaultExcludedDirs()
	}
	excluded := make(map[string]struct{}, len(dirNames))
	for _, name := range dirNames {
		excluded[name] = struct{}{}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:   config,
		watcher:  watcher,
		registry: registry,
		excluded: excluded,
		logger:   logger,
		runCh:    make(chan struct{}, 1),
	}, nil
}

// Run watches until the context is cancelled, invoking fn after each
// settled burst of relevant changes. fn executes on the calling
// goroutine; events arriving during a run coalesce into at most one
// follow-up.
func (w *Watcher) Run(ctx context.Context, fn func()) error {
	if err := w.addRecursive(w.config.Path); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Debug("watch error", "error", err)
		case <-w.runCh:
			fn()
		}
	}
}

// Stop tears the watcher down. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		w.watcher.Close()
	})
	return nil
}

// =============================================================================
// Event Handling
// =============================================================================

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.pathExcluded(event.Name) {
		return
	}

	// New directories join the watch so files created inside them are
	// seen.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Debug("failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}

	// Permission churn never changes prompt content.
	if event.Op == fsnotify.Chmod {
		return
	}

	if !w.registry.Supported(event.Name) {
		return
	}

	w.logger.Debug("relevant change", "path", event.Name, "op", event.Op.String())
	w.scheduleRun()
}

// scheduleRun arms (or re-arms) the debounce timer.
func (w *Watcher) scheduleRun() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.Debounce, func() {
		select {
		case w.runCh <- struct{}{}:
		default:
		}
	})
}

// =============================================================================
// Tree Registration
// =============================================================================

// addRecursive watches root and every non-pruned subdirectory.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root {
			if _, pruned := w.excluded[d.Name()]; pruned {
				return filepath.SkipDir
			}
		}
		return w.watcher.Add(path)
	})
}

// pathExcluded reports whether any component of path is a pruned
// directory name.
func (w *Watcher) pathExcluded(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if _, found := w.excluded[part]; found {
			return true
		}
	}
	return false
}
