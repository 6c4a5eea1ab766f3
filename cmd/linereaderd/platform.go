package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/linereader/internal/config"
	"github.com/jmylchreest/linereader/internal/display"
	"github.com/jmylchreest/linereader/internal/hyprland"
	"github.com/jmylchreest/linereader/internal/model"
	"github.com/jmylchreest/linereader/internal/overlay"
	"github.com/jmylchreest/linereader/internal/x11"
)

// session describes what the current desktop session offers.
type session struct {
	wayland    bool // WAYLAND_DISPLAY is set
	layerShell bool // compositor implements wlr-layer-shell
	hyprland   bool // a cursor IPC is reachable
	x11        bool // DISPLAY is set
}

// detectSession inspects the environment. It must run after GTK is
// initialized because layer-shell support is queried from the display.
func detectSession() session {
	_, hyprErr := hyprland.Detect()
	return session{
		wayland:    os.Getenv("WAYLAND_DISPLAY") != "",
		layerShell: display.Supported(),
		hyprland:   hyprErr == nil,
		x11:        x11.Available(),
	}
}

// resolveBackend picks the display backend for the requested mode.
func resolveBackend(requested config.Backend, s session) (config.Backend, error) {
	waylandOK := s.wayland && s.layerShell && s.hyprland

	switch requested {
	case config.BackendWayland:
		if !waylandOK {
			return "", fmt.Errorf("%w: wayland requires layer-shell and a hyprland cursor socket", overlay.ErrNoCursorBackend)
		}
		return config.BackendWayland, nil
	case config.BackendX11:
		if !s.x11 {
			return "", x11.ErrNoDisplay
		}
		return config.BackendX11, nil
	case config.BackendAuto, "":
		if waylandOK {
			return config.BackendWayland, nil
		}
		if s.x11 {
			return config.BackendX11, nil
		}
		return "", overlay.ErrNoCursorBackend
	}
	return "", fmt.Errorf("unknown backend %q", requested)
}

// resolveHotkey picks the hotkey mechanism for the chosen display backend.
func resolveHotkey(requested config.HotkeyBackend, backend config.Backend) (config.HotkeyBackend, error) {
	switch requested {
	case config.HotkeyNone, config.HotkeyCompositor:
		return requested, nil
	case config.HotkeyX11:
		if backend != config.BackendX11 {
			return "", fmt.Errorf("%w: x11 hotkeys are not available on %s", x11.ErrHotkeyGrab, backend)
		}
		return config.HotkeyX11, nil
	case config.HotkeyAuto, "":
		if backend == config.BackendX11 {
			return config.HotkeyX11, nil
		}
		return config.HotkeyCompositor, nil
	}
	return "", fmt.Errorf("unknown hotkey backend %q", requested)
}

// fallbackBounds asks primary first and falls back when it fails or
// reports an empty desktop.
type fallbackBounds struct {
	primary  overlay.BoundsProvider
	fallback overlay.BoundsProvider
	logger   *slog.Logger
}

func (f fallbackBounds) VirtualBounds() (model.Rect, error) {
	r, err := f.primary.VirtualBounds()
	if err == nil && !r.Empty() {
		return r, nil
	}
	f.logger.Debug("primary bounds unavailable, using fallback", "error", err)
	return f.fallback.VirtualBounds()
}

// platform owns the display resources of the chosen backend.
type platform struct {
	name config.Backend

	backend overlay.Backend
	layer   *display.LayerSurface
	hypr    *hyprland.Client
	conn    *x11.Conn
	band    *x11.BandWindow
}

// openPlatform creates the overlay backend for name.
func openPlatform(name config.Backend, app *gtk.Application, logger *slog.Logger) (*platform, error) {
	p := &platform{name: name}

	switch name {
	case config.BackendWayland:
		hypr, err := hyprland.Detect()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to hyprland: %w", err)
		}
		p.hypr = hypr
		p.layer = display.NewLayerSurface(app, logger)
		p.backend = overlay.Backend{
			Name:   string(name),
			Cursor: hypr,
			Bounds: fallbackBounds{
				primary:  hypr,
				fallback: display.NewMonitorBounds(logger),
				logger:   logger,
			},
			Surface: p.layer,
		}

	case config.BackendX11:
		conn, err := x11.Open(logger)
		if err != nil {
			return nil, err
		}
		band, err := x11.NewBandWindow(conn, logger)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create band window: %w", err)
		}
		p.conn = conn
		p.band = band
		p.backend = overlay.Backend{
			Name:    string(name),
			Cursor:  conn,
			Bounds:  conn,
			Surface: band,
		}
		go conn.Run()

	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}

	if err := p.backend.Validate(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// SetPaintFunc routes draw requests of the surface to fn.
func (p *platform) SetPaintFunc(fn func(overlay.Painter)) {
	if p.layer != nil {
		p.layer.SetPaintFunc(fn)
	}
	if p.band != nil {
		p.band.SetPaintFunc(fn)
	}
}

// SetSampleInterval bounds cursor reads by the sampler period.
func (p *platform) SetSampleInterval(interval time.Duration) {
	if p.hypr != nil {
		p.hypr.SetSampleInterval(interval)
	}
}

// BindHotkey grabs combo and calls fn on the X event goroutine.
func (p *platform) BindHotkey(combo string, fn func()) error {
	if p.conn == nil {
		return errors.New("hotkeys require the x11 backend")
	}
	hk, err := config.ParseHotkey(combo)
	if err != nil {
		return err
	}
	return p.conn.BindHotkey(hk.X11(), fn)
}

// MonitorsChanged tells the surface the monitor set changed.
func (p *platform) MonitorsChanged() {
	if p.layer != nil {
		p.layer.MonitorsChanged()
	}
}

// Close releases the backend.
func (p *platform) Close() {
	if p.layer != nil {
		p.layer.Destroy()
		p.layer = nil
	}
	if p.band != nil {
		p.band.Destroy()
		p.band = nil
	}
	if p.conn != nil {
		p.conn.UnbindHotkeys()
		p.conn.Close()
		p.conn = nil
	}
}
