package control

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/linereader/internal/model"
	"github.com/jmylchreest/linereader/internal/overlay"
)

var (
	// ErrNoSession is returned for session operations without an open session.
	ErrNoSession = errors.New("no settings session open")
	// ErrSessionBusy is returned when another surface already owns the session.
	ErrSessionBusy = errors.New("settings session already open")
)

// Target is the overlay as seen by the controller.
type Target interface {
	Toggle() (overlay.State, error)
	Enable() error
	Disable()
	Settings() model.Settings
	SetSettings(s model.Settings)
}

// SettingsSurface is a settings editor the controller can open.
type SettingsSurface interface {
	// Open shows the editor populated with current.
	Open(current model.Settings)
	// Present raises an already open editor.
	Present()
	// Close hides the editor without emitting events.
	Close()
}

// SessionOwner identifies who opened a settings session.
type SessionOwner string

const (
	OwnerDialog SessionOwner = "dialog"
	OwnerRemote SessionOwner = "remote"
)

// session is an open settings edit. snapshot is restored on reject.
type session struct {
	owner    SessionOwner
	snapshot model.Settings
}

// Controller dispatches events to the overlay.
// Like the overlay it is confined to the UI loop.
type Controller struct {
	logger  *slog.Logger
	target  Target
	surface SettingsSurface
	quit    func()

	session  *session
	handlers map[EventKind]func(Event) error

	onSettingsChanged func(model.Settings)
}

// NewController creates a controller. quit is called for the Exit command.
func NewController(target Target, quit func(), logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		logger: logger,
		target: target,
		quit:   quit,
	}
	c.handlers = map[EventKind]func(Event) error{
		EventHotkeyTriggered:     c.handleCommandEvent,
		EventTrayActivated:       c.handleCommandEvent,
		EventMenuAction:          c.handleCommandEvent,
		EventRemoteCommand:       c.handleCommandEvent,
		EventDialogAccepted:      c.handleAccepted,
		EventDialogRejected:      c.handleRejected,
		EventDialogValueAdjusted: c.handleAdjusted,
	}
	return c
}

// SetSettingsSurface sets the editor opened by OpenSettings.
func (c *Controller) SetSettingsSurface(s SettingsSurface) {
	c.surface = s
}

// SetSettingsChangedCallback sets the callback for committed or previewed
// settings changes.
func (c *Controller) SetSettingsChangedCallback(cb func(model.Settings)) {
	c.onSettingsChanged = cb
}

// Resolve maps a trigger to a command.
func Resolve(ev Event) Command {
	switch ev.Kind {
	case EventHotkeyTriggered:
		return CommandToggle
	case EventTrayActivated:
		switch ev.Tray {
		case TrayDouble, TrayMiddle:
			return CommandOpenSettings
		default:
			return CommandToggle
		}
	case EventMenuAction:
		switch ev.Menu {
		case MenuOptions:
			return CommandOpenSettings
		case MenuToggle:
			return CommandToggle
		case MenuExit:
			return CommandExit
		}
	case EventRemoteCommand:
		return ev.Command
	}
	return CommandNone
}

// Dispatch handles one event.
func (c *Controller) Dispatch(ev Event) error {
	handler, ok := c.handlers[ev.Kind]
	if !ok {
		return fmt.Errorf("unhandled event kind %d", ev.Kind)
	}
	c.logger.Debug("dispatching event", "kind", ev.Kind.String())
	return handler(ev)
}

// Execute runs a command directly.
func (c *Controller) Execute(cmd Command) error {
	switch cmd {
	case CommandToggle:
		state, err := c.target.Toggle()
		if err != nil {
			return fmt.Errorf("failed to toggle overlay: %w", err)
		}
		c.logger.Debug("overlay toggled", "state", state.String())
	case CommandEnable:
		if err := c.target.Enable(); err != nil {
			return fmt.Errorf("failed to enable overlay: %w", err)
		}
	case CommandDisable:
		c.target.Disable()
	case CommandOpenSettings:
		c.openSettings()
	case CommandExit:
		c.exit()
	case CommandNone:
	default:
		return fmt.Errorf("unknown command %d", cmd)
	}
	return nil
}

func (c *Controller) handleCommandEvent(ev Event) error {
	return c.Execute(Resolve(ev))
}

func (c *Controller) openSettings() {
	if c.surface == nil {
		c.logger.Warn("no settings surface available")
		return
	}
	if c.session != nil {
		if c.session.owner == OwnerDialog {
			c.surface.Present()
		} else {
			c.logger.Info("settings already being edited remotely")
		}
		return
	}

	c.session = &session{owner: OwnerDialog, snapshot: c.target.Settings()}
	c.surface.Open(c.session.snapshot)
	c.logger.Debug("settings session opened", "owner", OwnerDialog)
}

func (c *Controller) exit() {
	c.logger.Info("exit requested")
	if c.session != nil {
		c.endSession(c.session.snapshot)
	}
	if c.quit != nil {
		c.quit()
	}
}

// BeginSession opens a settings session for a remote editor and returns
// the current settings.
func (c *Controller) BeginSession(owner SessionOwner) (model.Settings, error) {
	if c.session != nil {
		return model.Settings{}, ErrSessionBusy
	}
	c.session = &session{owner: owner, snapshot: c.target.Settings()}
	c.logger.Debug("settings session opened", "owner", owner)
	return c.session.snapshot, nil
}

// SessionOpen reports whether a settings session is in progress.
func (c *Controller) SessionOpen() bool {
	return c.session != nil
}

// Owner returns the owner of the open settings session.
func (c *Controller) Owner() (SessionOwner, bool) {
	if c.session == nil {
		return "", false
	}
	return c.session.owner, true
}

func (c *Controller) handleAdjusted(ev Event) error {
	if c.session == nil {
		return ErrNoSession
	}
	if err := ev.Settings.Validate(); err != nil {
		return err
	}
	c.apply(ev.Settings)
	return nil
}

func (c *Controller) handleAccepted(ev Event) error {
	if c.session == nil {
		return ErrNoSession
	}
	if err := ev.Settings.Validate(); err != nil {
		return err
	}
	c.logger.Info("settings accepted",
		"height", ev.Settings.Height,
		"offset", ev.Settings.Offset,
		"color", ev.Settings.Color.Hex(),
	)
	c.endSession(ev.Settings)
	return nil
}

func (c *Controller) handleRejected(Event) error {
	if c.session == nil {
		return ErrNoSession
	}
	c.logger.Info("settings rejected, restoring snapshot")
	c.endSession(c.session.snapshot)
	return nil
}

func (c *Controller) endSession(s model.Settings) {
	owner := c.session.owner
	c.session = nil
	c.apply(s)
	if owner == OwnerDialog && c.surface != nil {
		c.surface.Close()
	}
}

// ApplyDefaults replaces the settings from a reloaded configuration unless
// a session is open. It reports whether the settings were applied.
func (c *Controller) ApplyDefaults(s model.Settings) bool {
	if c.session != nil {
		return false
	}
	c.apply(s)
	return true
}

func (c *Controller) apply(s model.Settings) {
	if s == c.target.Settings() {
		return
	}
	c.target.SetSettings(s)
	if c.onSettingsChanged != nil {
		c.onSettingsChanged(s)
	}
}
