package main

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/linereader/internal/config"
	"github.com/jmylchreest/linereader/internal/model"
	"github.com/jmylchreest/linereader/internal/overlay"
	"github.com/jmylchreest/linereader/internal/x11"
)

func TestResolveBackend(t *testing.T) {
	full := session{wayland: true, layerShell: true, hyprland: true, x11: true}
	xOnly := session{x11: true}
	waylandNoIPC := session{wayland: true, layerShell: true, x11: true}

	tests := []struct {
		name      string
		requested config.Backend
		session   session
		want      config.Backend
		wantErr   error
	}{
		{"auto prefers wayland", config.BackendAuto, full, config.BackendWayland, nil},
		{"auto falls back to x11", config.BackendAuto, waylandNoIPC, config.BackendX11, nil},
		{"auto x11 only", config.BackendAuto, xOnly, config.BackendX11, nil},
		{"auto nothing", config.BackendAuto, session{}, "", overlay.ErrNoCursorBackend},
		{"explicit wayland", config.BackendWayland, full, config.BackendWayland, nil},
		{"wayland without ipc", config.BackendWayland, waylandNoIPC, "", overlay.ErrNoCursorBackend},
		{"explicit x11", config.BackendX11, full, config.BackendX11, nil},
		{"x11 without display", config.BackendX11, session{wayland: true}, "", x11.ErrNoDisplay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveBackend(tt.requested, tt.session)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveHotkey(t *testing.T) {
	tests := []struct {
		name      string
		requested config.HotkeyBackend
		backend   config.Backend
		want      config.HotkeyBackend
		wantErr   bool
	}{
		{"auto on x11", config.HotkeyAuto, config.BackendX11, config.HotkeyX11, false},
		{"auto on wayland", config.HotkeyAuto, config.BackendWayland, config.HotkeyCompositor, false},
		{"x11 on x11", config.HotkeyX11, config.BackendX11, config.HotkeyX11, false},
		{"x11 on wayland", config.HotkeyX11, config.BackendWayland, "", true},
		{"none", config.HotkeyNone, config.BackendX11, config.HotkeyNone, false},
		{"compositor", config.HotkeyCompositor, config.BackendX11, config.HotkeyCompositor, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveHotkey(tt.requested, tt.backend)
			if tt.wantErr {
				assert.ErrorIs(t, err, x11.ErrHotkeyGrab)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type staticBounds struct {
	rect  model.Rect
	err   error
	calls int
}

func (s *staticBounds) VirtualBounds() (model.Rect, error) {
	s.calls++
	return s.rect, s.err
}

func TestFallbackBounds(t *testing.T) {
	desk := model.Rect{Width: 1920, Height: 1080}
	gdk := model.Rect{Width: 2560, Height: 1440}

	t.Run("primary", func(t *testing.T) {
		fb := &staticBounds{rect: gdk}
		b := fallbackBounds{primary: &staticBounds{rect: desk}, fallback: fb, logger: slog.Default()}
		r, err := b.VirtualBounds()
		require.NoError(t, err)
		assert.Equal(t, desk, r)
		assert.Zero(t, fb.calls)
	})

	t.Run("primary error", func(t *testing.T) {
		b := fallbackBounds{primary: &staticBounds{err: errors.New("socket gone")}, fallback: &staticBounds{rect: gdk}, logger: slog.Default()}
		r, err := b.VirtualBounds()
		require.NoError(t, err)
		assert.Equal(t, gdk, r)
	})

	t.Run("primary empty", func(t *testing.T) {
		b := fallbackBounds{primary: &staticBounds{}, fallback: &staticBounds{rect: gdk}, logger: slog.Default()}
		r, err := b.VirtualBounds()
		require.NoError(t, err)
		assert.Equal(t, gdk, r)
	})

	t.Run("both fail", func(t *testing.T) {
		b := fallbackBounds{primary: &staticBounds{}, fallback: &staticBounds{err: overlay.ErrNoDisplays}, logger: slog.Default()}
		_, err := b.VirtualBounds()
		assert.ErrorIs(t, err, overlay.ErrNoDisplays)
	})
}
