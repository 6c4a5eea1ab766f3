package overlay

import (
	"errors"
	"time"

	"github.com/jmylchreest/linereader/internal/model"
)

var (
	// ErrNoCursorBackend is returned when no cursor source is usable on
	// the current session.
	ErrNoCursorBackend = errors.New("no cursor backend available")
	// ErrNoDisplays is returned when display enumeration finds no screens.
	ErrNoDisplays = errors.New("no displays found")
)

// CursorSource reads the global pointer position in virtual desktop
// coordinates.
type CursorSource interface {
	CursorPosition() (model.Point, error)
}

// BoundsProvider returns the bounding rectangle of all connected displays.
type BoundsProvider interface {
	VirtualBounds() (model.Rect, error)
}

// Surface is the window (or set of windows) the band is drawn on.
// Implementations call Overlay.Paint from their draw handler.
type Surface interface {
	SetGeometry(bounds model.Rect)
	Show()
	Hide()
	QueueDraw()
}

// Painter receives the drawing operations of a single repaint.
type Painter interface {
	FillRect(r model.Rect, c model.Color)
}

// Ticker runs fn periodically on the event loop.
type Ticker interface {
	Start(interval time.Duration, fn func())
	Stop()
	Running() bool
}

// Backend groups the platform pieces an Overlay needs.
type Backend struct {
	Name    string
	Cursor  CursorSource
	Bounds  BoundsProvider
	Surface Surface
}

// Validate reports whether every piece of the backend is present.
func (b Backend) Validate() error {
	if b.Cursor == nil {
		return ErrNoCursorBackend
	}
	if b.Bounds == nil || b.Surface == nil {
		return errors.New("incomplete overlay backend " + b.Name)
	}
	return nil
}
