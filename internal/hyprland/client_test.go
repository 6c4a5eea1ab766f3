package hyprland

import (
	"context"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/linereader/internal/model"
)

// fakeHyprland serves canned replies keyed by command on a unix socket.
func fakeHyprland(t *testing.T, replies map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".socket.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				buf := make([]byte, 256)
				n, err := conn.Read(buf)
				if err != nil && err != io.EOF {
					return
				}
				reply, ok := replies[string(buf[:n])]
				if !ok {
					reply = "unknown request"
				}
				_, _ = conn.Write([]byte(reply))
			}(conn)
		}
	}()
	return path
}

const monitorsJSON = `[
  {"id": 0, "name": "DP-1", "width": 2560, "height": 1440, "x": 0, "y": 0, "scale": 1.0, "transform": 0, "focused": true},
  {"id": 1, "name": "HDMI-A-1", "width": 3840, "height": 2160, "x": 2560, "y": -200, "scale": 2.0, "transform": 0},
  {"id": 2, "name": "eDP-1", "width": 1920, "height": 1080, "x": 0, "y": 1440, "scale": 1.0, "transform": 0, "disabled": true}
]`

func TestCursor(t *testing.T) {
	path := fakeHyprland(t, map[string]string{"j/cursorpos": `{"x": 500, "y": 300}`})
	c := NewClient(path)

	pos, err := c.CursorPosition()
	require.NoError(t, err)
	assert.Equal(t, model.Point{X: 500, Y: 300}, pos)
}

func TestMonitorsSkipsDisabled(t *testing.T) {
	path := fakeHyprland(t, map[string]string{"j/monitors": monitorsJSON})
	c := NewClient(path)

	monitors, err := c.Monitors(context.Background())
	require.NoError(t, err)
	require.Len(t, monitors, 2)
	assert.Equal(t, "DP-1", monitors[0].Name)
	assert.Equal(t, "HDMI-A-1", monitors[1].Name)
}

func TestVirtualBounds(t *testing.T) {
	path := fakeHyprland(t, map[string]string{"j/monitors": monitorsJSON})
	c := NewClient(path)

	bounds, err := c.VirtualBounds()
	require.NoError(t, err)
	// DP-1 0,0 2560x1440 and HDMI-A-1 at 2560,-200 scaled to 1920x1080.
	assert.Equal(t, model.Rect{X: 0, Y: -200, Width: 4480, Height: 1640}, bounds)
}

func TestMonitorBounds(t *testing.T) {
	tests := []struct {
		name string
		mon  Monitor
		want model.Rect
	}{
		{"plain", Monitor{Width: 1920, Height: 1080}, model.Rect{Width: 1920, Height: 1080}},
		{"scaled", Monitor{Width: 2880, Height: 1800, Scale: 1.5, X: 10}, model.Rect{X: 10, Width: 1920, Height: 1200}},
		{"rotated", Monitor{Width: 1920, Height: 1080, Transform: 1, Scale: 1}, model.Rect{Width: 1080, Height: 1920}},
		{"flipped", Monitor{Width: 1920, Height: 1080, Transform: 4, Scale: 1}, model.Rect{Width: 1920, Height: 1080}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mon.Bounds())
		})
	}
}

func TestBadReply(t *testing.T) {
	path := fakeHyprland(t, map[string]string{})
	c := NewClient(path)

	_, err := c.CursorPosition()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestConnectFailure(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	c.SetTimeout(20 * time.Millisecond)

	_, err := c.CursorPosition()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
}

func TestCursorTimeout(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		want     time.Duration
	}{
		{name: "default sampler", interval: 16 * time.Millisecond, want: 8 * time.Millisecond},
		{name: "slow sampler capped", interval: time.Second, want: DefaultTimeout},
		{name: "fast sampler floored", interval: time.Millisecond, want: minCursorTimeout},
		{name: "unset", interval: 0, want: DefaultTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CursorTimeout(tt.interval))
		})
	}
}

func TestCursor_StalledCompositorBoundedByInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".socket.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	// Accept and never reply.
	var mu sync.Mutex
	var held []net.Conn
	t.Cleanup(func() {
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range held {
			conn.Close()
		}
	})
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			held = append(held, conn)
			mu.Unlock()
		}
	}()

	c := NewClient(path)
	c.SetSampleInterval(4 * time.Millisecond)

	start := time.Now()
	_, err = c.CursorPosition()
	require.Error(t, err)
	assert.Less(t, time.Since(start), DefaultTimeout, "cursor read outlived the sampler bound")

	// Monitor queries keep the full request timeout.
	start = time.Now()
	_, err = c.VirtualBounds()
	require.Error(t, err)
	assert.GreaterOrEqual(t, time.Since(start), DefaultTimeout)
}

func TestSocketPath(t *testing.T) {
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "abc_123")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")

	path, err := SocketPath()
	require.NoError(t, err)
	assert.Equal(t, "/run/user/1000/hypr/abc_123/.socket.sock", path)
}

func TestDetectWithoutInstance(t *testing.T) {
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")

	_, err := Detect()
	assert.ErrorIs(t, err, ErrNotRunning)
}
