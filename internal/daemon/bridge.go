package daemon

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/linereader/internal/control"
	"github.com/jmylchreest/linereader/internal/dbus"
	"github.com/jmylchreest/linereader/internal/model"
	"github.com/jmylchreest/linereader/internal/overlay"
)

// ErrLoopTimeout is returned when the main loop does not run a request in time.
var ErrLoopTimeout = errors.New("main loop did not respond")

// DefaultCallTimeout bounds how long a bus call waits for the main loop.
const DefaultCallTimeout = 5 * time.Second

// LoopFunc schedules fn on the main loop. The daemon passes a wrapper
// around glib.IdleAdd.
type LoopFunc func(fn func())

// Bridge implements dbus.Handler by running each call on the main loop
// and waiting for its result. State answers from a snapshot the loop
// publishes, so it never blocks.
type Bridge struct {
	ctrl    *control.Controller
	overlay *overlay.Overlay
	loop    LoopFunc
	logger  *slog.Logger
	timeout time.Duration

	state atomic.Pointer[dbus.State]
}

// NewBridge creates a Bridge.
func NewBridge(ctrl *control.Controller, ov *overlay.Overlay, loop LoopFunc, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		ctrl:    ctrl,
		overlay: ov,
		loop:    loop,
		logger:  logger,
		timeout: DefaultCallTimeout,
	}
}

// SetTimeout sets how long calls wait for the main loop.
func (b *Bridge) SetTimeout(d time.Duration) {
	b.timeout = d
}

// Publish snapshots the overlay for State. Call it on the main loop after
// every state or settings change.
func (b *Bridge) Publish() {
	status := b.overlay.Status()
	st := dbus.State{
		Active:   status.State == overlay.Active,
		Settings: status.Settings,
	}
	if st.Active {
		st.Since = status.Since
	}
	b.state.Store(&st)
}

// State returns the last published snapshot.
func (b *Bridge) State() dbus.State {
	if st := b.state.Load(); st != nil {
		return *st
	}
	return dbus.State{Settings: model.DefaultSettings()}
}

// do runs fn on the main loop and waits for its error.
func (b *Bridge) do(fn func() error) error {
	done := make(chan error, 1)
	b.loop(func() {
		err := fn()
		b.Publish()
		done <- err
	})

	select {
	case err := <-done:
		return err
	case <-time.After(b.timeout):
		b.logger.Warn("bus call timed out waiting for main loop", "timeout", b.timeout)
		return ErrLoopTimeout
	}
}

func (b *Bridge) command(cmd control.Command) error {
	return b.do(func() error {
		return b.ctrl.Dispatch(control.RemoteCommand(cmd))
	})
}

// Toggle flips the overlay and returns whether it is now active.
func (b *Bridge) Toggle() (bool, error) {
	var active bool
	err := b.do(func() error {
		err := b.ctrl.Dispatch(control.RemoteCommand(control.CommandToggle))
		active = b.overlay.State() == overlay.Active
		return err
	})
	return active, err
}

// Enable switches the overlay on.
func (b *Bridge) Enable() error {
	return b.command(control.CommandEnable)
}

// Disable switches the overlay off.
func (b *Bridge) Disable() error {
	return b.command(control.CommandDisable)
}

// OpenSettings opens the settings window.
func (b *Bridge) OpenSettings() error {
	return b.command(control.CommandOpenSettings)
}

// Quit schedules the exit and returns at once so the reply reaches the
// caller before the loop stops.
func (b *Bridge) Quit() error {
	b.loop(func() {
		if err := b.ctrl.Dispatch(control.RemoteCommand(control.CommandExit)); err != nil {
			b.logger.Warn("failed to exit", "error", err)
		}
	})
	return nil
}

// BeginSettings opens a remote settings session.
func (b *Bridge) BeginSettings() (model.Settings, error) {
	var current model.Settings
	err := b.do(func() error {
		var err error
		current, err = b.ctrl.BeginSession(control.OwnerRemote)
		return err
	})
	return current, err
}

// remoteSession checks that the open session belongs to a bus client.
func (b *Bridge) remoteSession() error {
	owner, open := b.ctrl.Owner()
	if !open {
		return control.ErrNoSession
	}
	if owner != control.OwnerRemote {
		return control.ErrSessionBusy
	}
	return nil
}

// PreviewSettings shows s without ending the session.
func (b *Bridge) PreviewSettings(s model.Settings) error {
	return b.do(func() error {
		if err := b.remoteSession(); err != nil {
			return err
		}
		return b.ctrl.Dispatch(control.DialogValueAdjusted(s))
	})
}

// AcceptSettings commits the previewed settings.
func (b *Bridge) AcceptSettings() error {
	return b.do(func() error {
		if err := b.remoteSession(); err != nil {
			return err
		}
		return b.ctrl.Dispatch(control.DialogAccepted(b.overlay.Settings()))
	})
}

// RejectSettings restores the settings from BeginSettings.
func (b *Bridge) RejectSettings() error {
	return b.do(func() error {
		if err := b.remoteSession(); err != nil {
			return err
		}
		return b.ctrl.Dispatch(control.DialogRejected())
	})
}

var _ dbus.Handler = (*Bridge)(nil)
