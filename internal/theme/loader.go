package theme

import (
	"context"
	"log/slog"
	"sync"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Loader applies the stylesheet to the GTK display with hot-reload support.
type Loader struct {
	mu       sync.Mutex
	logger   *slog.Logger
	provider *gtk.CSSProvider
	theme    *Theme
	watcher  *Watcher
}

// NewLoader creates a new loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:   logger,
		provider: gtk.NewCSSProvider(),
	}
}

// Load reads the user stylesheet, falling back to the bundled one. The
// returned error describes why the user stylesheet was not used.
func (l *Loader) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	path, err := StylePath()
	if err != nil {
		l.logger.Warn("failed to get stylesheet path", "error", err)
	}

	t, loadErr := Load(path)
	if loadErr != nil {
		l.logger.Warn("failed to load user stylesheet, using bundled", "path", path, "error", loadErr)
		t = NewDefaultTheme()
		t.Path = path
	}
	l.theme = t
	l.provider.LoadFromString(t.CSS)
	l.logger.Debug("loaded stylesheet", "path", t.Path, "embedded", t.Embedded)
	return loadErr
}

// Apply installs the provider on the default display.
// Call after the GTK application is initialized.
func (l *Loader) Apply() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		l.logger.Warn("no display available, cannot apply stylesheet")
		return
	}
	gtk.StyleContextAddProviderForDisplay(
		display,
		l.provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}

// StartHotReload watches the stylesheet and reapplies it on change.
func (l *Loader) StartHotReload(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.theme == nil {
		return
	}
	if l.watcher != nil {
		l.watcher.Stop()
	}

	l.watcher = NewWatcher(l.theme, func(css string) {
		glib.IdleAdd(func() {
			l.provider.LoadFromString(css)
		})
	}, l.logger)
	if err := l.watcher.Start(ctx); err != nil {
		l.logger.Warn("stylesheet hot-reload unavailable", "error", err)
		l.watcher = nil
	}
}

// StopHotReload stops watching the stylesheet.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher != nil {
		l.watcher.Stop()
		l.watcher = nil
	}
}
