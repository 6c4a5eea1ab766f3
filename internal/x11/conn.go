// Package x11 implements the overlay backend for X11 sessions: pointer
// queries, Xinerama bounds, a shaped click-through band window and the
// global hotkey grab.
package x11

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xinerama"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/jmylchreest/linereader/internal/model"
)

// ErrNoDisplay is returned when no X server is reachable.
var ErrNoDisplay = errors.New("no X11 display")

// Available reports whether an X11 display is configured.
func Available() bool {
	return os.Getenv("DISPLAY") != ""
}

// Conn is a connection to the X server.
type Conn struct {
	logger *slog.Logger
	xu     *xgbutil.XUtil
	shape  bool
}

// Open connects to the display named by $DISPLAY.
func Open(logger *slog.Logger) (*Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !Available() {
		return nil, ErrNoDisplay
	}

	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	c := &Conn{logger: logger, xu: xu}
	if err := shape.Init(xu.Conn()); err != nil {
		logger.Warn("SHAPE extension unavailable, band window will not be click-through", "error", err)
	} else {
		c.shape = true
	}

	logger.Debug("connected to X server", "root", xu.RootWin(), "shape", c.shape)
	return c, nil
}

// Run processes X events until Close. It blocks and is meant to run in its
// own goroutine; callbacks such as the hotkey fire on that goroutine.
func (c *Conn) Run() {
	xevent.Main(c.xu)
}

// Close stops the event loop and disconnects.
func (c *Conn) Close() {
	xevent.Quit(c.xu)
	c.xu.Conn().Close()
}

// CursorPosition implements overlay.CursorSource in root window coordinates.
func (c *Conn) CursorPosition() (model.Point, error) {
	reply, err := xproto.QueryPointer(c.xu.Conn(), c.xu.RootWin()).Reply()
	if err != nil {
		return model.Point{}, fmt.Errorf("failed to query pointer: %w", err)
	}
	return model.Point{X: int(reply.RootX), Y: int(reply.RootY)}, nil
}

// VirtualBounds implements overlay.BoundsProvider as the union of all
// physical heads, falling back to the root window geometry.
func (c *Conn) VirtualBounds() (model.Rect, error) {
	heads, err := xinerama.PhysicalHeads(c.xu)
	if err != nil || len(heads) == 0 {
		c.logger.Debug("xinerama unavailable, using root geometry", "error", err)
		root := xwindow.RootGeometry(c.xu)
		return model.Rect{X: root.X(), Y: root.Y(), Width: root.Width(), Height: root.Height()}, nil
	}

	rects := make([]model.Rect, 0, len(heads))
	for _, h := range heads {
		rects = append(rects, model.Rect{X: h.X(), Y: h.Y(), Width: h.Width(), Height: h.Height()})
	}
	return model.UnionAll(rects), nil
}
