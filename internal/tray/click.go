package tray

import (
	"sync"
	"time"

	"github.com/jmylchreest/linereader/internal/control"
)

// DoubleClickWindow is the maximum gap between the clicks of a double click.
const DoubleClickWindow = 400 * time.Millisecond

// timer is the subset of *time.Timer the classifier needs.
type timer interface {
	Stop() bool
}

// pendingClick is one single click waiting out the double-click window.
// cancelled is guarded by clickClassifier.mu.
type pendingClick struct {
	timer     timer
	cancelled bool
}

// clickClassifier turns raw primary clicks into primary or double
// activations. A single click is reported only once the double-click
// window has passed, so a double click never also toggles.
type clickClassifier struct {
	mu      sync.Mutex
	window  time.Duration
	pending *pendingClick
	emit    func(control.TrayKind)

	afterFunc func(time.Duration, func()) timer
}

func newClickClassifier(window time.Duration, emit func(control.TrayKind)) *clickClassifier {
	return &clickClassifier{
		window: window,
		emit:   emit,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
	}
}

// Click records a primary click.
func (c *clickClassifier) Click() {
	c.mu.Lock()
	if p := c.pending; p != nil && p.timer.Stop() {
		p.cancelled = true
		c.pending = nil
		c.mu.Unlock()
		c.emit(control.TrayDouble)
		return
	}

	// A timer that already expired still reports its own click, even if
	// its callback has not run yet.
	p := &pendingClick{}
	p.timer = c.afterFunc(c.window, func() {
		c.mu.Lock()
		if p.cancelled {
			c.mu.Unlock()
			return
		}
		if c.pending == p {
			c.pending = nil
		}
		c.mu.Unlock()
		c.emit(control.TrayPrimary)
	})
	c.pending = p
	c.mu.Unlock()
}

// Cancel drops a pending single click.
func (c *clickClassifier) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending.cancelled = true
		c.pending.timer.Stop()
		c.pending = nil
	}
}
