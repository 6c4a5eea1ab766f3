// Package hyprland reads cursor and monitor state from the Hyprland
// compositor's IPC socket.
package hyprland

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/jmylchreest/linereader/internal/model"
)

// ErrNotRunning is returned when no Hyprland instance is reachable.
var ErrNotRunning = errors.New("hyprland is not running")

// DefaultTimeout bounds a single IPC request.
const DefaultTimeout = 50 * time.Millisecond

// minCursorTimeout keeps very short sampler periods from failing every read.
const minCursorTimeout = 2 * time.Millisecond

// CursorTimeout returns the cursor read timeout for a sampler period:
// half the period, so a stalled compositor costs at most half a tick.
func CursorTimeout(interval time.Duration) time.Duration {
	if interval <= 0 {
		return DefaultTimeout
	}
	return min(max(interval/2, minCursorTimeout), DefaultTimeout)
}

// Monitor is a subset of the j/monitors response.
type Monitor struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Scale     float64 `json:"scale"`
	Transform int     `json:"transform"`
	Focused   bool    `json:"focused"`
	Disabled  bool    `json:"disabled"`
}

// Bounds returns the monitor's layout rectangle in logical pixels.
func (m Monitor) Bounds() model.Rect {
	w, h := m.Width, m.Height
	// Odd transforms rotate by 90 or 270 degrees.
	if m.Transform%2 == 1 {
		w, h = h, w
	}
	if m.Scale > 0 {
		w = int(math.Round(float64(w) / m.Scale))
		h = int(math.Round(float64(h) / m.Scale))
	}
	return model.Rect{X: m.X, Y: m.Y, Width: w, Height: h}
}

type cursorPos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Client talks to one Hyprland instance.
type Client struct {
	socket        string
	timeout       time.Duration
	cursorTimeout time.Duration
}

// NewClient creates a client for the given request socket path.
func NewClient(socket string) *Client {
	return &Client{socket: socket, timeout: DefaultTimeout, cursorTimeout: DefaultTimeout}
}

// SocketPath returns the request socket of the running instance.
func SocketPath() (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", ErrNotRunning
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = filepath.Join("/run/user", fmt.Sprint(os.Getuid()))
	}
	return filepath.Join(runtimeDir, "hypr", sig, ".socket.sock"), nil
}

// Detect returns a client for the running instance.
func Detect() (*Client, error) {
	path, err := SocketPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	return NewClient(path), nil
}

// SetTimeout sets the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// SetSampleInterval bounds CursorPosition by the sampler period it is
// polled at.
func (c *Client) SetSampleInterval(interval time.Duration) {
	c.cursorTimeout = CursorTimeout(interval)
}

// request sends one command and decodes the JSON reply into v.
func (c *Client) request(ctx context.Context, cmd string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socket)
	if err != nil {
		return fmt.Errorf("failed to connect to hyprland: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := conn.Write([]byte(cmd)); err != nil {
		return fmt.Errorf("failed to send %q: %w", cmd, err)
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		return fmt.Errorf("failed to read %q reply: %w", cmd, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %q reply: %w", cmd, err)
	}
	return nil
}

// Cursor returns the global cursor position in layout coordinates.
func (c *Client) Cursor(ctx context.Context) (model.Point, error) {
	var pos cursorPos
	if err := c.request(ctx, "j/cursorpos", &pos); err != nil {
		return model.Point{}, err
	}
	return model.Point{X: pos.X, Y: pos.Y}, nil
}

// Monitors returns all enabled monitors.
func (c *Client) Monitors(ctx context.Context) ([]Monitor, error) {
	var all []Monitor
	if err := c.request(ctx, "j/monitors", &all); err != nil {
		return nil, err
	}
	monitors := all[:0]
	for _, m := range all {
		if !m.Disabled {
			monitors = append(monitors, m)
		}
	}
	return monitors, nil
}

// CursorPosition implements overlay.CursorSource. It runs on every
// sampler tick, so it is bounded by the sample interval timeout.
func (c *Client) CursorPosition() (model.Point, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cursorTimeout)
	defer cancel()
	return c.Cursor(ctx)
}

// VirtualBounds implements overlay.BoundsProvider as the union of all
// enabled monitors.
func (c *Client) VirtualBounds() (model.Rect, error) {
	monitors, err := c.Monitors(context.Background())
	if err != nil {
		return model.Rect{}, err
	}
	rects := make([]model.Rect, 0, len(monitors))
	for _, m := range monitors {
		rects = append(rects, m.Bounds())
	}
	return model.UnionAll(rects), nil
}
