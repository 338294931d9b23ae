package procindex

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
	"golang.org/x/time/rate"

	"github.com/tomhartill/omnidex/internal/launcher"
	"github.com/tomhartill/omnidex/internal/logging"
	"github.com/tomhartill/omnidex/internal/platform"
)

var watchLog = logging.ForComponent(logging.CompWatch)

// debounceWindow coalesces bursts of events on the same path. Editors write
// through temp files and fire several events per save; only the last one
// within the window triggers a re-index.
const debounceWindow = 2 * time.Second

// Watcher feeds filesystem events into the indexer with per-path
// debouncing. fsnotify watches are not recursive, so every directory under
// a root that the scan bounds accept gets its own watch, and directories
// created later are registered as their events arrive. Updates are
// best-effort: a cancelled pending update just delays the next scan cycle.
type Watcher struct {
	ix      *Indexer
	watcher *fsnotify.Watcher
	limiter *rate.Limiter
	roots   []string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// StartWatching spawns a watcher over roots. The returned Watcher must be
// Closed. Failure to create or register the OS watcher surfaces as an
// IOError so the caller may choose to run without live updates.
func (ix *Indexer) StartWatching(ctx context.Context, roots []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &launcher.IOError{Op: "watch", Path: "", Err: err}
	}

	wctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		ix:      ix,
		watcher: fsw,
		// a burst of updates is fine; sustained rescans are throttled
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 64),
		roots:   make([]string, 0, len(roots)),
		ctx:     wctx,
		cancel:  cancel,
		pending: make(map[string]*time.Timer),
	}

	for _, root := range roots {
		if warn := platform.CheckWatchSupport(root); warn != "" {
			watchLog.Warn("watch_unreliable",
				slog.String("root", root), slog.String("reason", warn))
		}
		root = filepath.Clean(root)
		if err := fsw.Add(root); err != nil {
			cancel()
			fsw.Close()
			return nil, &launcher.IOError{Op: "watch", Path: root, Err: err}
		}
		w.roots = append(w.roots, root)
		w.watchTree(root, root)
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Close stops the event loop and drops all pending debounce timers.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	for _, t := range w.pending {
		t.Stop()
	}
	w.pending = make(map[string]*time.Timer)
	w.mu.Unlock()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			watchLog.Warn("watch_error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	logging.Aggregate(logging.CompWatch, "fs_event", slog.String("op", event.Op.String()))

	// A created (or renamed-in) directory needs its watch before any file
	// inside it can be seen; register it promptly rather than debounced.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.handleCreatedDir(event.Name)
			return
		}
	}

	// Debounce: reset the timer for this path; only the last event within
	// the window is applied.
	w.mu.Lock()
	if timer, exists := w.pending[event.Name]; exists {
		timer.Stop()
	}
	path := event.Name
	w.pending[path] = time.AfterFunc(debounceWindow, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.apply(path)
	})
	w.mu.Unlock()
}

// handleCreatedDir registers a new directory tree and indexes what is
// already inside it: files may land between the mkdir and the watch taking
// effect, and a directory renamed into a root arrives fully populated.
func (w *Watcher) handleCreatedDir(path string) {
	root, ok := w.rootOf(path)
	if !ok || !w.dirAccepted(root, path) {
		return
	}
	w.watchTree(root, path)
	if _, err := w.ix.IndexDirectory(path); err != nil {
		watchLog.Debug("watch_index_failed",
			slog.String("path", path), slog.String("error", err.Error()))
	}
}

// watchTree registers dir and every directory below it that the scan
// bounds accept. Registration failures are logged, not fatal: a root that
// outgrows the inotify budget still delivers events for the dirs that fit.
func (w *Watcher) watchTree(root, dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if !w.dirAccepted(root, path) {
			return filepath.SkipDir
		}
		if addErr := w.watcher.Add(path); addErr != nil {
			watchLog.Debug("watch_add_failed",
				slog.String("path", path), slog.String("error", addErr.Error()))
		}
		return nil
	})
}

// dirAccepted applies the scanner's bounds to a directory path: depth
// below root, hidden names, exclude globs. Roots themselves always pass.
func (w *Watcher) dirAccepted(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	cfg := w.ix.scanner.cfg
	depth := strings.Count(rel, string(filepath.Separator)) + 1
	if depth > cfg.MaxDepth {
		return false
	}
	if strings.HasPrefix(filepath.Base(path), ".") && !cfg.IncludeHidden {
		return false
	}
	return !w.ix.scanner.excluded(rel, true)
}

// rootOf finds the watched root containing path.
func (w *Watcher) rootOf(path string) (string, bool) {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return root, true
		}
	}
	return "", false
}

func (w *Watcher) apply(path string) {
	if w.ctx.Err() != nil {
		return
	}
	if err := w.limiter.Wait(w.ctx); err != nil {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.ix.RemoveFile(path)
		}
		return
	}
	if info.IsDir() {
		return
	}
	if err := w.ix.UpdateFile(path); err != nil {
		watchLog.Debug("watch_update_failed",
			slog.String("path", path), slog.String("error", err.Error()))
	}
}

// PendingCount reports paths waiting out their debounce window, for tests.
func (w *Watcher) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
