package theme

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay lets an editor finish its save before the file is reread.
const reloadDelay = 150 * time.Millisecond

// Watcher rereads a stylesheet when its file changes on disk and hands
// the new CSS to onChange. The parent directory is watched so the file
// may be created, replaced or removed after Start.
type Watcher struct {
	logger   *slog.Logger
	theme    *Theme
	onChange func(css string)
	delay    time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a watcher for theme. onChange runs on the watcher
// goroutine.
func NewWatcher(theme *Theme, onChange func(css string), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:   logger,
		theme:    theme,
		onChange: onChange,
		delay:    reloadDelay,
	}
}

// Start begins watching. Themes without a path are not watched.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil || w.theme.Path == "" {
		return nil
	}

	dir := filepath.Dir(w.theme.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create stylesheet directory: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.run(ctx, fsw, w.done)

	w.logger.Debug("stylesheet watcher started", "path", w.theme.Path)
	return nil
}

// Stop ends watching and waits for the goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	w.logger.Debug("stylesheet watcher stopped")
}

// Running reports whether the watcher is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	defer fsw.Close()

	name := filepath.Base(w.theme.Path)
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name || event.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(w.delay)

		case <-timer.C:
			w.apply()

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("stylesheet watcher error", "error", err)
		}
	}
}

func (w *Watcher) apply() {
	changed, err := w.theme.Reload()
	if err != nil {
		w.logger.Warn("failed to reload stylesheet", "path", w.theme.Path, "error", err)
		return
	}
	if !changed {
		return
	}

	w.logger.Info("stylesheet changed, reloading", "path", w.theme.Path, "embedded", w.theme.Embedded)
	if w.onChange != nil {
		w.onChange(w.theme.CSS)
	}
}
