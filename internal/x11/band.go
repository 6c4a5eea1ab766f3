package x11

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/jmylchreest/linereader/internal/model"
	"github.com/jmylchreest/linereader/internal/overlay"
)

// BandWindow is an override-redirect window covering the virtual screen.
// Its bounding shape is reduced to the band rectangle and its input shape
// is empty, so only the band is visible and every click passes through.
type BandWindow struct {
	logger *slog.Logger
	conn   *Conn
	win    *xwindow.Window
	argb   bool

	geometry model.Rect
	color    model.Color
	mapped   bool

	paint func(overlay.Painter)
	// painted is set by FillRect during a paint pass.
	painted bool
}

// NewBandWindow creates the (unmapped) band window.
func NewBandWindow(conn *Conn, logger *slog.Logger) (*BandWindow, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b := &BandWindow{logger: logger, conn: conn}

	win, err := xwindow.Generate(conn.xu)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}
	b.win = win

	if err := b.create(); err != nil {
		return nil, err
	}

	if conn.shape {
		// An empty input region makes the window transparent to input.
		shape.Rectangles(conn.xu.Conn(), shape.SoSet, shape.SkInput,
			xproto.ClipOrderingUnsorted, win.Id, 0, 0, nil)
	}

	logger.Debug("band window created", "window", win.Id, "argb", b.argb)
	return b, nil
}

// create prefers a 32-bit ARGB visual for per-pixel alpha and falls back to
// the root visual with _NET_WM_WINDOW_OPACITY.
func (b *BandWindow) create() error {
	xc := b.conn.xu.Conn()
	root := b.conn.xu.RootWin()

	if visual, ok := findARGBVisual(b.conn.xu.Screen()); ok {
		cmap, err := xproto.NewColormapId(xc)
		if err == nil {
			xproto.CreateColormap(xc, xproto.ColormapAllocNone, cmap, root, visual)
			err = xproto.CreateWindowChecked(xc, 32, b.win.Id, root,
				0, 0, 1, 1, 0, xproto.WindowClassInputOutput, visual,
				xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwOverrideRedirect|xproto.CwColormap,
				[]uint32{0, 0, 1, uint32(cmap)}).Check()
			if err == nil {
				b.argb = true
				return nil
			}
		}
		b.logger.Debug("ARGB window unavailable, using opacity property", "error", err)
	}

	if err := b.win.CreateChecked(root, 0, 0, 1, 1,
		xproto.CwBackPixel|xproto.CwOverrideRedirect, 0, 1); err != nil {
		return fmt.Errorf("failed to create band window: %w", err)
	}
	return nil
}

func findARGBVisual(screen *xproto.ScreenInfo) (xproto.Visualid, bool) {
	for _, depth := range screen.AllowedDepths {
		if depth.Depth != 32 {
			continue
		}
		for _, v := range depth.Visuals {
			if v.Class == xproto.VisualClassTrueColor {
				return v.VisualId, true
			}
		}
	}
	return 0, false
}

// SetPaintFunc sets the function invoked on every QueueDraw.
func (b *BandWindow) SetPaintFunc(fn func(overlay.Painter)) {
	b.paint = fn
}

// SetGeometry implements overlay.Surface.
func (b *BandWindow) SetGeometry(r model.Rect) {
	b.geometry = r
	b.win.MoveResize(r.X, r.Y, r.Width, r.Height)
}

// Show implements overlay.Surface.
func (b *BandWindow) Show() {
	b.setShape(nil)
	b.win.Map()
	b.win.Stack(xproto.StackModeAbove)
	b.mapped = true
}

// Hide implements overlay.Surface.
func (b *BandWindow) Hide() {
	b.win.Unmap()
	b.mapped = false
}

// QueueDraw implements overlay.Surface. X has no frame clock here, so the
// paint runs immediately.
func (b *BandWindow) QueueDraw() {
	if !b.mapped || b.paint == nil {
		return
	}
	b.painted = false
	b.paint(b)
	if !b.painted {
		b.setShape(nil)
	}
}

// FillRect implements overlay.Painter.
func (b *BandWindow) FillRect(r model.Rect, c model.Color) {
	b.painted = true
	if c != b.color {
		b.setColor(c)
	}
	rect, ok := clipRect(r, b.geometry.Width, b.geometry.Height)
	if !ok {
		b.setShape(nil)
		return
	}
	b.setShape([]xproto.Rectangle{rect})
	// Keep the band above windows raised since the last tick.
	b.win.Stack(xproto.StackModeAbove)
}

func (b *BandWindow) setColor(c model.Color) {
	b.color = c
	xc := b.conn.xu.Conn()
	if b.argb {
		xproto.ChangeWindowAttributes(xc, b.win.Id, xproto.CwBackPixel, []uint32{argbPixel(c)})
	} else {
		xproto.ChangeWindowAttributes(xc, b.win.Id, xproto.CwBackPixel, []uint32{rgbPixel(c)})
		if err := ewmh.WmWindowOpacitySet(b.conn.xu, b.win.Id, opacity(c)); err != nil {
			b.logger.Debug("failed to set window opacity", "error", err)
		}
	}
	xproto.ClearArea(xc, false, b.win.Id, 0, 0, 0, 0)
}

// setShape sets the visible region. A nil slice hides everything.
func (b *BandWindow) setShape(rects []xproto.Rectangle) {
	if !b.conn.shape {
		return
	}
	shape.Rectangles(b.conn.xu.Conn(), shape.SoSet, shape.SkBounding,
		xproto.ClipOrderingUnsorted, b.win.Id, 0, 0, rects)
}

// Destroy releases the window.
func (b *BandWindow) Destroy() {
	b.win.Destroy()
}
