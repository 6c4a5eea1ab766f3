package dbus

import (
	"errors"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/linereader/internal/control"
	"github.com/jmylchreest/linereader/internal/model"
)

const (
	// BusName is the well-known name claimed by the daemon.
	BusName = "io.github.jmylchreest.LineReader"
	// Interface is the control interface name.
	Interface = "io.github.jmylchreest.LineReader"
	// ObjectPath is the control object path.
	ObjectPath = dbus.ObjectPath("/io/github/jmylchreest/LineReader")
)

// Error names returned by the service.
const (
	ErrorSessionBusy     = Interface + ".Error.SessionBusy"
	ErrorNoSession       = Interface + ".Error.NoSession"
	ErrorInvalidSettings = "org.freedesktop.DBus.Error.InvalidArgs"
	ErrorFailed          = "org.freedesktop.DBus.Error.Failed"

	errorServiceUnknown = "org.freedesktop.DBus.Error.ServiceUnknown"
	errorNameHasNoOwner = "org.freedesktop.DBus.Error.NameHasNoOwner"
)

var (
	// ErrAlreadyRunning is returned by Start when another daemon owns the bus name.
	ErrAlreadyRunning = errors.New("linereaderd is already running")
	// ErrNotRunning is returned by the client when no daemon owns the bus name.
	ErrNotRunning = errors.New("linereaderd is not running")
	// ErrInvalidSettings is returned for settings rejected by the daemon.
	ErrInvalidSettings = errors.New("invalid settings")
)

// State is the daemon state reported by GetState and GetSettings.
type State struct {
	Active   bool           `json:"active" yaml:"active"`
	Since    time.Time      `json:"since" yaml:"since"`
	Settings model.Settings `json:"settings" yaml:"settings"`
}

// wireSettings is the (i, i, s) tuple used on the bus.
type wireSettings struct {
	Height int32
	Offset int32
	Color  string
}

func settingsToWire(s model.Settings) wireSettings {
	return wireSettings{
		Height: int32(s.Height),
		Offset: int32(s.Offset),
		Color:  s.Color.Hex(),
	}
}

func settingsFromWire(w wireSettings) (model.Settings, error) {
	c, err := model.ParseColor(w.Color)
	if err != nil {
		return model.Settings{}, err
	}
	s := model.Settings{Height: int(w.Height), Offset: int(w.Offset), Color: c}
	if err := s.Validate(); err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

func sinceToWire(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func sinceFromWire(v int64) time.Time {
	if v <= 0 {
		return time.Time{}
	}
	return time.Unix(v, 0)
}

func isInvalidSettings(err error) bool {
	return errors.Is(err, ErrInvalidSettings) ||
		errors.Is(err, model.ErrInvalidColor) ||
		errors.Is(err, model.ErrHeightRange) ||
		errors.Is(err, model.ErrOffsetRange)
}

// toDBusError converts a handler error into a named D-Bus error.
func toDBusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}
	name := ErrorFailed
	switch {
	case errors.Is(err, control.ErrSessionBusy):
		name = ErrorSessionBusy
	case errors.Is(err, control.ErrNoSession):
		name = ErrorNoSession
	case isInvalidSettings(err):
		name = ErrorInvalidSettings
	}
	return dbus.NewError(name, []any{err.Error()})
}

// fromDBusError maps errors received by the client back to sentinels.
func fromDBusError(err error) error {
	if err == nil {
		return nil
	}
	var dErr dbus.Error
	var dErrPtr *dbus.Error
	switch {
	case errors.As(err, &dErrPtr):
		dErr = *dErrPtr
	case errors.As(err, &dErr):
	default:
		return err
	}

	msg := dErr.Error()
	switch dErr.Name {
	case ErrorSessionBusy:
		return control.ErrSessionBusy
	case ErrorNoSession:
		return control.ErrNoSession
	case ErrorInvalidSettings:
		return fmt.Errorf("%w: %s", ErrInvalidSettings, msg)
	case errorServiceUnknown, errorNameHasNoOwner:
		return ErrNotRunning
	default:
		return fmt.Errorf("%s: %s", dErr.Name, msg)
	}
}
