package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events editors produce on save.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads the configuration when one of its files changes.
// Directories are watched rather than files so atomic renames are seen.
type Watcher struct {
	fs       *fsnotify.Watcher
	reload   func() error
	debounce time.Duration
	logger   *slog.Logger

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool
}

// NewWatcher watches files and calls reload after changes settle.
func NewWatcher(files []string, reload func() error, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	w := &Watcher{
		fs:       fw,
		reload:   reload,
		debounce: DefaultDebounce,
		logger:   logger,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
	}
	if err := w.SetFiles(files); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// SetFiles replaces the watched file set. Includes may add files after a
// reload.
func (w *Watcher) SetFiles(files []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if w.dirs[dir] {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	return nil
}

func (w *Watcher) watched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[abs]
}

// Run delivers reloads until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.watched(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("config change detected", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		case <-timer.C:
			if err := w.reload(); err != nil {
				w.logger.Warn("config reload failed", "error", err)
				continue
			}
			w.logger.Info("config reloaded")
		}
	}
}
