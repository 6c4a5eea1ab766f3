package display

import (
	"log/slog"
	"unsafe"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"

	"github.com/jmylchreest/linereader/internal/model"
	"github.com/jmylchreest/linereader/internal/overlay"
)

// Monitor pairs a GDK monitor with its layout rectangle.
type Monitor struct {
	Monitor *gdk.Monitor
	Name    string
	Bounds  model.Rect
}

// Monitors lists the monitors of the default display.
func Monitors() []Monitor {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return nil
	}

	list := display.Monitors()
	if list == nil {
		return nil
	}

	monitors := make([]Monitor, 0, list.NItems())
	for i := uint(0); i < list.NItems(); i++ {
		mon := wrapMonitor(list.Item(i))
		if mon == nil {
			continue
		}
		geom := mon.Geometry()
		monitors = append(monitors, Monitor{
			Monitor: mon,
			Name:    mon.Connector(),
			Bounds: model.Rect{
				X:      geom.X(),
				Y:      geom.Y(),
				Width:  geom.Width(),
				Height: geom.Height(),
			},
		})
	}
	return monitors
}

// wrapMonitor wraps a glib.Object as a gdk.Monitor.
// This is necessary because gotk4 doesn't expose the wrapMonitor function.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	// gdk.Monitor embeds a *glib.Object, so the native pointer can be cast.
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}

// MonitorBounds implements overlay.BoundsProvider from GDK monitor geometry.
type MonitorBounds struct {
	logger *slog.Logger
}

// NewMonitorBounds creates a bounds provider for the default display.
func NewMonitorBounds(logger *slog.Logger) *MonitorBounds {
	if logger == nil {
		logger = slog.Default()
	}
	return &MonitorBounds{logger: logger}
}

// VirtualBounds returns the union of all monitor rectangles.
func (m *MonitorBounds) VirtualBounds() (model.Rect, error) {
	monitors := Monitors()
	if len(monitors) == 0 {
		return model.Rect{}, overlay.ErrNoDisplays
	}
	rects := make([]model.Rect, 0, len(monitors))
	for _, mon := range monitors {
		rects = append(rects, mon.Bounds)
	}
	bounds := model.UnionAll(rects)
	m.logger.Debug("virtual bounds from monitors", "monitors", len(monitors), "bounds", bounds.String())
	return bounds, nil
}

// WatchMonitors calls fn whenever monitors are added or removed.
func WatchMonitors(fn func(count int)) {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}
	list := display.Monitors()
	list.ConnectItemsChanged(func(position, removed, added uint) {
		fn(int(list.NItems()))
	})
}
