package overlay

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/linereader/internal/model"
)

// State is the visibility state of the overlay.
type State int

const (
	// Inactive is the initial state: timer stopped, surface hidden.
	Inactive State = iota
	// Active means the timer runs and the surface is shown.
	Active
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case Active:
		return "active"
	default:
		return "inactive"
	}
}

// DefaultInterval is the default sampler period.
const DefaultInterval = 16 * time.Millisecond

// StateChangeFunc is called after every Enable/Disable transition.
type StateChangeFunc func(state State)

// Status is a point-in-time view of the overlay.
type Status struct {
	State    State
	Since    time.Time
	Settings model.Settings
	Bounds   model.Rect
}

// Overlay is the cursor-tracking band overlay.
// It is not safe for concurrent use; all methods run on the UI loop.
type Overlay struct {
	logger  *slog.Logger
	backend Backend
	ticker  Ticker

	interval time.Duration
	state    State
	since    time.Time
	bounds   model.Rect
	settings model.Settings

	// sample is window-relative and nil until the first tick after Enable.
	sample *model.Point

	observers []StateChangeFunc
}

// New creates an inactive overlay.
func New(backend Backend, ticker Ticker, settings model.Settings, logger *slog.Logger) *Overlay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Overlay{
		logger:   logger,
		backend:  backend,
		ticker:   ticker,
		interval: DefaultInterval,
		state:    Inactive,
		since:    time.Now(),
		settings: settings,
	}
}

// OnStateChange registers an observer for state transitions.
func (o *Overlay) OnStateChange(fn StateChangeFunc) {
	o.observers = append(o.observers, fn)
}

// State returns the current visibility state.
func (o *Overlay) State() State {
	return o.state
}

// Status returns a snapshot of the overlay.
func (o *Overlay) Status() Status {
	return Status{
		State:    o.state,
		Since:    o.since,
		Settings: o.settings,
		Bounds:   o.bounds,
	}
}

// Settings returns the current settings snapshot.
func (o *Overlay) Settings() model.Settings {
	return o.settings
}

// SetSettings swaps the settings snapshot and requests a repaint.
func (o *Overlay) SetSettings(s model.Settings) {
	o.settings = s
	if o.state == Active {
		o.backend.Surface.QueueDraw()
	}
}

// SetInterval changes the sampler period, restarting the timer if running.
func (o *Overlay) SetInterval(d time.Duration) {
	if d <= 0 || d == o.interval {
		return
	}
	o.interval = d
	if o.state == Active {
		o.ticker.Stop()
		o.ticker.Start(o.interval, o.Tick)
	}
	o.logger.Debug("sampler interval changed", "interval", d)
}

// Interval returns the sampler period.
func (o *Overlay) Interval() time.Duration {
	return o.interval
}

// Sample returns the last cursor sample, if any.
func (o *Overlay) Sample() (model.Point, bool) {
	if o.sample == nil {
		return model.Point{}, false
	}
	return *o.sample, true
}

// Enable transitions Inactive -> Active. The surface geometry is fixed to
// the virtual desktop bounds at this moment.
func (o *Overlay) Enable() error {
	if o.state == Active {
		return nil
	}

	bounds, err := o.backend.Bounds.VirtualBounds()
	if err != nil {
		return fmt.Errorf("failed to get display bounds: %w", err)
	}
	if bounds.Empty() {
		return ErrNoDisplays
	}

	o.bounds = bounds
	o.sample = nil
	o.backend.Surface.SetGeometry(bounds)
	o.backend.Surface.Show()
	o.ticker.Start(o.interval, o.Tick)

	o.setState(Active)
	o.logger.Info("overlay enabled", "backend", o.backend.Name, "bounds", bounds.String(), "interval", o.interval)
	return nil
}

// Disable transitions Active -> Inactive.
func (o *Overlay) Disable() {
	if o.state == Inactive {
		return
	}

	o.ticker.Stop()
	o.backend.Surface.Hide()
	o.sample = nil

	o.setState(Inactive)
	o.logger.Info("overlay disabled")
}

// Toggle flips the visibility state and returns the new state.
func (o *Overlay) Toggle() (State, error) {
	if o.state == Active {
		o.Disable()
		return o.state, nil
	}
	err := o.Enable()
	return o.state, err
}

// Tick is one sampler step. It stores the window-relative cursor position
// and requests a repaint. A failed read skips the tick.
func (o *Overlay) Tick() {
	if o.state != Active {
		return
	}

	pos, err := o.backend.Cursor.CursorPosition()
	if err != nil {
		o.logger.Debug("cursor read failed, skipping tick", "error", err)
		return
	}

	local := pos.Sub(o.bounds.Origin())
	o.sample = &local
	o.backend.Surface.QueueDraw()
}

// Paint draws the current frame. With no cursor sample nothing is drawn.
func (o *Overlay) Paint(p Painter) {
	if o.state != Active || o.sample == nil {
		return
	}
	band := model.ComputeBand(*o.sample, o.settings, o.bounds.Width)
	p.FillRect(band.Rect, band.Color)
}

// Band returns the band that Paint would draw.
func (o *Overlay) Band() (model.Band, bool) {
	if o.state != Active || o.sample == nil {
		return model.Band{}, false
	}
	return model.ComputeBand(*o.sample, o.settings, o.bounds.Width), true
}

func (o *Overlay) setState(s State) {
	o.state = s
	o.since = time.Now()
	for _, fn := range o.observers {
		fn(s)
	}
}
