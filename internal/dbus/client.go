package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/linereader/internal/model"
)

// Client talks to a running daemon.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Connect opens a private session bus connection. Closing the client
// ends any settings session it began.
func Connect() (*Client, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(BusName, ObjectPath),
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(ctx context.Context, method string, args ...any) *dbus.Call {
	return c.obj.CallWithContext(ctx, Interface+"."+method, 0, args...)
}

func (c *Client) run(ctx context.Context, method string, args ...any) error {
	return fromDBusError(c.call(ctx, method, args...).Err)
}

// Toggle switches the overlay and returns the new state.
func (c *Client) Toggle(ctx context.Context) (bool, error) {
	var active bool
	if err := c.call(ctx, "Toggle").Store(&active); err != nil {
		return false, fromDBusError(err)
	}
	return active, nil
}

// Enable switches the overlay on.
func (c *Client) Enable(ctx context.Context) error {
	return c.run(ctx, "Enable")
}

// Disable switches the overlay off.
func (c *Client) Disable(ctx context.Context) error {
	return c.run(ctx, "Disable")
}

// OpenSettings opens the settings window of the daemon.
func (c *Client) OpenSettings(ctx context.Context) error {
	return c.run(ctx, "OpenSettings")
}

// Quit stops the daemon.
func (c *Client) Quit(ctx context.Context) error {
	return c.run(ctx, "Quit")
}

// State returns the overlay state and current settings.
func (c *Client) State(ctx context.Context) (State, error) {
	var (
		active bool
		since  int64
	)
	if err := c.call(ctx, "GetState").Store(&active, &since); err != nil {
		return State{}, fromDBusError(err)
	}
	settings, err := c.settings(ctx, "GetSettings")
	if err != nil {
		return State{}, err
	}
	return State{Active: active, Since: sinceFromWire(since), Settings: settings}, nil
}

func (c *Client) settings(ctx context.Context, method string) (model.Settings, error) {
	var w wireSettings
	if err := c.call(ctx, method).Store(&w.Height, &w.Offset, &w.Color); err != nil {
		return model.Settings{}, fromDBusError(err)
	}
	return settingsFromWire(w)
}

// BeginSettings opens a settings session and returns the settings that a
// reject restores.
func (c *Client) BeginSettings(ctx context.Context) (model.Settings, error) {
	return c.settings(ctx, "BeginSettings")
}

// PreviewSettings shows s on the overlay without committing it.
func (c *Client) PreviewSettings(ctx context.Context, s model.Settings) error {
	w := settingsToWire(s)
	return c.run(ctx, "PreviewSettings", w.Height, w.Offset, w.Color)
}

// AcceptSettings commits the last preview.
func (c *Client) AcceptSettings(ctx context.Context) error {
	return c.run(ctx, "AcceptSettings")
}

// RejectSettings restores the settings from BeginSettings.
func (c *Client) RejectSettings(ctx context.Context) error {
	return c.run(ctx, "RejectSettings")
}
