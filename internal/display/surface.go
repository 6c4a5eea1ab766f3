package display

import (
	"log/slog"
	"slices"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/cairo"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/linereader/internal/model"
	"github.com/jmylchreest/linereader/internal/overlay"
)

// bandNamespace is the layer-shell namespace compositors can match rules on.
const bandNamespace = "linereader-band"

// bandEdges anchors a band window to the whole monitor.
var bandEdges = []layershell.Edge{
	layershell.LayerShellEdgeTop,
	layershell.LayerShellEdgeBottom,
	layershell.LayerShellEdgeLeft,
	layershell.LayerShellEdgeRight,
}

// bandWindow is the layer-shell window covering one monitor.
type bandWindow struct {
	window  *gtk.Window
	area    *gtk.DrawingArea
	monitor Monitor
}

// LayerSurface implements overlay.Surface with one transparent,
// click-through layer-shell window per monitor. The band is painted in
// virtual-screen coordinates and each window draws its own slice.
//
// Windows survive Hide and are only rebuilt when the geometry or the
// monitor set changes.
type LayerSurface struct {
	app    *gtk.Application
	logger *slog.Logger

	virtual model.Rect
	paint   func(overlay.Painter)

	windows  []*bandWindow
	builtFor model.Rect
	layout   []model.Rect
	stale    bool
	visible  bool
}

// NewLayerSurface creates a surface. Windows are built on the first Show.
func NewLayerSurface(app *gtk.Application, logger *slog.Logger) *LayerSurface {
	if logger == nil {
		logger = slog.Default()
	}
	return &LayerSurface{app: app, logger: logger}
}

// Supported reports whether the compositor implements wlr-layer-shell.
func Supported() bool {
	return layershell.IsSupported()
}

// SetPaintFunc sets the function that draws the band.
func (s *LayerSurface) SetPaintFunc(fn func(overlay.Painter)) {
	s.paint = fn
}

// SetGeometry implements overlay.Surface.
func (s *LayerSurface) SetGeometry(r model.Rect) {
	s.virtual = r
}

// Show implements overlay.Surface.
func (s *LayerSurface) Show() {
	s.sync()
	for _, bw := range s.windows {
		bw.window.SetVisible(true)
	}
	s.visible = true
}

// Hide implements overlay.Surface. The windows are unmapped, not destroyed.
func (s *LayerSurface) Hide() {
	for _, bw := range s.windows {
		bw.window.SetVisible(false)
	}
	s.visible = false
}

// QueueDraw implements overlay.Surface.
func (s *LayerSurface) QueueDraw() {
	for _, bw := range s.windows {
		bw.area.QueueDraw()
	}
}

// MonitorsChanged marks the windows stale after a hotplug. A visible
// surface is rebuilt at once, a hidden one on its next Show.
func (s *LayerSurface) MonitorsChanged() {
	s.stale = true
	if s.visible {
		s.Show()
	}
}

// Destroy releases all windows.
func (s *LayerSurface) Destroy() {
	s.destroyWindows()
	s.visible = false
}

// sync rebuilds the windows when the monitors covering the virtual
// rectangle differ from the ones they were built for.
func (s *LayerSurface) sync() {
	monitors := Monitors()
	bounds := make([]model.Rect, len(monitors))
	for i, mon := range monitors {
		bounds[i] = mon.Bounds
	}

	picked := model.Overlapping(bounds, s.virtual)
	layout := make([]model.Rect, 0, len(picked))
	for _, i := range picked {
		layout = append(layout, bounds[i])
	}

	if !s.stale && s.windows != nil && s.builtFor == s.virtual && slices.Equal(layout, s.layout) {
		return
	}

	s.destroyWindows()
	for _, i := range picked {
		s.windows = append(s.windows, s.newBandWindow(monitors[i]))
	}
	s.builtFor = s.virtual
	s.layout = layout
	s.stale = false

	s.logger.Debug("band windows built", "count", len(s.windows), "virtual", s.virtual.String())
}

func (s *LayerSurface) destroyWindows() {
	for _, bw := range s.windows {
		bw.window.Destroy()
	}
	s.windows = nil
	s.layout = nil
}

func (s *LayerSurface) newBandWindow(mon Monitor) *bandWindow {
	bw := &bandWindow{monitor: mon}

	bw.window = gtk.NewWindow()
	bw.window.SetApplication(s.app)
	bw.window.SetDecorated(false)
	bw.window.SetResizable(false)
	bw.window.SetCanFocus(false)
	bw.window.SetCanTarget(false)
	bw.window.AddCSSClass("linereader-band")

	layershell.InitForWindow(bw.window)
	layershell.SetLayer(bw.window, layershell.LayerShellLayerOverlay)
	layershell.SetMonitor(bw.window, mon.Monitor)
	for _, edge := range bandEdges {
		layershell.SetAnchor(bw.window, edge, true)
	}
	layershell.SetExclusiveZone(bw.window, -1) // Ignore panels' reserved space
	layershell.SetKeyboardMode(bw.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(bw.window, bandNamespace)

	bw.area = gtk.NewDrawingArea()
	bw.area.SetHExpand(true)
	bw.area.SetVExpand(true)
	bw.area.SetCanTarget(false)

	origin := mon.Bounds.Origin().Sub(s.virtual.Origin())
	bw.area.SetDrawFunc(func(_ *gtk.DrawingArea, cr *cairo.Context, width, height int) {
		clearSurface(cr)
		if s.paint == nil {
			return
		}
		s.paint(&cairoPainter{cr: cr, origin: origin, width: width, height: height})
	})
	bw.window.SetChild(bw.area)

	// The input region only exists once the window has a GDK surface.
	bw.window.ConnectRealize(func() {
		setClickThrough(bw.window)
	})

	return bw
}

// setClickThrough gives the window an empty input region so pointer
// events reach the windows underneath.
func setClickThrough(window *gtk.Window) {
	native := window.Surface()
	if native == nil {
		return
	}
	region, err := cairo.RegionCreate()
	if err != nil {
		return
	}
	gdk.BaseSurface(native).SetInputRegion(region)
}

func clearSurface(cr *cairo.Context) {
	cr.SetOperator(cairo.OperatorSource)
	cr.SetSourceRGBA(0, 0, 0, 0)
	cr.Paint()
	cr.SetOperator(cairo.OperatorOver)
}

// cairoPainter draws virtual-screen rectangles into one monitor's window.
type cairoPainter struct {
	cr     *cairo.Context
	origin model.Point
	width  int
	height int
}

// FillRect implements overlay.Painter.
func (p *cairoPainter) FillRect(r model.Rect, c model.Color) {
	local := r.RelativeTo(p.origin).Intersect(model.Rect{Width: p.width, Height: p.height})
	if local.Empty() {
		return
	}
	red, green, blue, alpha := c.Float()
	p.cr.SetSourceRGBA(red, green, blue, alpha)
	p.cr.Rectangle(float64(local.X), float64(local.Y), float64(local.Width), float64(local.Height))
	p.cr.Fill()
}
