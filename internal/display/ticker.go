package display

import (
	"time"

	"github.com/diamondburned/gotk4/pkg/core/glib"
)

// GlibTicker implements overlay.Ticker with a glib timeout source, so
// ticks run on the GTK main loop.
type GlibTicker struct {
	handle  glib.SourceHandle
	running bool
}

// NewGlibTicker creates a stopped ticker.
func NewGlibTicker() *GlibTicker {
	return &GlibTicker{}
}

// Start begins calling fn every interval, replacing any running source.
func (t *GlibTicker) Start(interval time.Duration, fn func()) {
	t.Stop()

	ms := uint(interval.Milliseconds())
	if ms == 0 {
		ms = 1
	}
	t.handle = glib.TimeoutAdd(ms, func() bool {
		fn()
		return true
	})
	t.running = true
}

// Stop removes the timeout source. No tick runs after Stop returns.
func (t *GlibTicker) Stop() {
	if !t.running {
		return
	}
	glib.SourceRemove(t.handle)
	t.running = false
}

// Running reports whether the source is installed.
func (t *GlibTicker) Running() bool {
	return t.running
}
