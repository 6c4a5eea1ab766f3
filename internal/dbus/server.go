package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/linereader/internal/model"
)

// Handler performs the operations requested over the bus.
// Calls arrive on D-Bus goroutines; implementations marshal them onto
// the thread that owns the overlay. State must be safe to call from any
// goroutine.
type Handler interface {
	Toggle() (bool, error)
	Enable() error
	Disable() error
	OpenSettings() error
	Quit() error
	State() State
	BeginSettings() (model.Settings, error)
	PreviewSettings(s model.Settings) error
	AcceptSettings() error
	RejectSettings() error
}

// Service implements the io.github.jmylchreest.LineReader interface.
type Service struct {
	conn    *dbus.Conn
	handler Handler
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	// peer is the unique bus name that owns the remote settings session.
	peer string
}

// NewService creates a Service that forwards calls to handler.
func NewService(handler Handler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		handler: handler,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start connects to the session bus, exports the service and claims the
// bus name. It returns ErrAlreadyRunning when another daemon owns it.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("service already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	if err := conn.Export(s, ObjectPath, Interface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: string(ObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: serviceMethods(),
				Signals: serviceSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ObjectPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		_ = conn.Export(nil, ObjectPath, Interface)
		_ = conn.Export(nil, ObjectPath, "org.freedesktop.DBus.Introspectable")
		return fmt.Errorf("%w: bus name %s already taken", ErrAlreadyRunning, BusName)
	}

	s.mu.Lock()
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	go s.watchPeers()

	s.logger.Info("D-Bus service started", "name", BusName, "path", ObjectPath)
	return nil
}

// Stop releases the bus name and unexports the object.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	close(s.stopCh)
	s.running = false

	if s.conn != nil {
		if s.peer != "" {
			s.unwatchPeer(s.peer)
			s.peer = ""
		}
		if _, err := s.conn.ReleaseName(BusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		_ = s.conn.Export(nil, ObjectPath, Interface)
		_ = s.conn.Export(nil, ObjectPath, "org.freedesktop.DBus.Introspectable")
		// The session bus connection is shared with the tray.
	}

	s.logger.Info("D-Bus service stopped")
	return nil
}

// IsRunning reports whether the service owns the bus name.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Toggle switches the overlay and returns the new state.
// D-Bus method: Toggle() -> b
func (s *Service) Toggle() (bool, *dbus.Error) {
	s.logger.Debug("Toggle called")
	active, err := s.handler.Toggle()
	return active, toDBusError(err)
}

// Enable switches the overlay on.
// D-Bus method: Enable()
func (s *Service) Enable() *dbus.Error {
	s.logger.Debug("Enable called")
	return toDBusError(s.handler.Enable())
}

// Disable switches the overlay off.
// D-Bus method: Disable()
func (s *Service) Disable() *dbus.Error {
	s.logger.Debug("Disable called")
	return toDBusError(s.handler.Disable())
}

// OpenSettings opens or presents the settings window.
// D-Bus method: OpenSettings()
func (s *Service) OpenSettings() *dbus.Error {
	s.logger.Debug("OpenSettings called")
	return toDBusError(s.handler.OpenSettings())
}

// Quit terminates the daemon.
// D-Bus method: Quit()
func (s *Service) Quit() *dbus.Error {
	s.logger.Debug("Quit called")
	return toDBusError(s.handler.Quit())
}

// GetState returns whether the overlay is active and since when, as unix
// seconds. Since is 0 while inactive.
// D-Bus method: GetState() -> (b, x)
func (s *Service) GetState() (bool, int64, *dbus.Error) {
	st := s.handler.State()
	return st.Active, sinceToWire(st.Since), nil
}

// GetSettings returns the current band settings.
// D-Bus method: GetSettings() -> (i, i, s)
func (s *Service) GetSettings() (int32, int32, string, *dbus.Error) {
	w := settingsToWire(s.handler.State().Settings)
	return w.Height, w.Offset, w.Color, nil
}

// BeginSettings opens a remote settings session owned by the caller and
// returns the settings it will restore on reject. The session is
// rejected if the caller leaves the bus without ending it.
// D-Bus method: BeginSettings() -> (i, i, s)
func (s *Service) BeginSettings(sender dbus.Sender) (int32, int32, string, *dbus.Error) {
	s.logger.Debug("BeginSettings called", "sender", sender)
	current, err := s.handler.BeginSettings()
	if err != nil {
		return 0, 0, "", toDBusError(err)
	}
	s.setPeer(string(sender))
	w := settingsToWire(current)
	return w.Height, w.Offset, w.Color, nil
}

// PreviewSettings applies settings to the overlay without committing them.
// D-Bus method: PreviewSettings(i, i, s)
func (s *Service) PreviewSettings(sender dbus.Sender, height, offset int32, color string) *dbus.Error {
	if err := s.checkPeer(string(sender)); err != nil {
		return err
	}
	settings, err := settingsFromWire(wireSettings{Height: height, Offset: offset, Color: color})
	if err != nil {
		return toDBusError(err)
	}
	return toDBusError(s.handler.PreviewSettings(settings))
}

// AcceptSettings commits the last previewed settings and ends the session.
// D-Bus method: AcceptSettings()
func (s *Service) AcceptSettings(sender dbus.Sender) *dbus.Error {
	s.logger.Debug("AcceptSettings called", "sender", sender)
	if err := s.checkPeer(string(sender)); err != nil {
		return err
	}
	if err := s.handler.AcceptSettings(); err != nil {
		return toDBusError(err)
	}
	s.clearPeer()
	return nil
}

// RejectSettings restores the settings from BeginSettings and ends the
// session.
// D-Bus method: RejectSettings()
func (s *Service) RejectSettings(sender dbus.Sender) *dbus.Error {
	s.logger.Debug("RejectSettings called", "sender", sender)
	if err := s.checkPeer(string(sender)); err != nil {
		return err
	}
	if err := s.handler.RejectSettings(); err != nil {
		return toDBusError(err)
	}
	s.clearPeer()
	return nil
}

// checkPeer only lets the session owner drive an open remote session.
func (s *Service) checkPeer(sender string) *dbus.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.peer != "" && s.peer != sender {
		return dbus.NewError(ErrorSessionBusy, []any{"settings session owned by " + s.peer})
	}
	return nil
}

func serviceMethods() []introspect.Method {
	settingsOut := []introspect.Arg{
		{Name: "height", Type: "i", Direction: "out"},
		{Name: "offset", Type: "i", Direction: "out"},
		{Name: "color", Type: "s", Direction: "out"},
	}
	return []introspect.Method{
		{
			Name: "Toggle",
			Args: []introspect.Arg{
				{Name: "active", Type: "b", Direction: "out"},
			},
		},
		{Name: "Enable"},
		{Name: "Disable"},
		{Name: "OpenSettings"},
		{Name: "Quit"},
		{
			Name: "GetState",
			Args: []introspect.Arg{
				{Name: "active", Type: "b", Direction: "out"},
				{Name: "since", Type: "x", Direction: "out"},
			},
		},
		{Name: "GetSettings", Args: settingsOut},
		{Name: "BeginSettings", Args: settingsOut},
		{
			Name: "PreviewSettings",
			Args: []introspect.Arg{
				{Name: "height", Type: "i", Direction: "in"},
				{Name: "offset", Type: "i", Direction: "in"},
				{Name: "color", Type: "s", Direction: "in"},
			},
		},
		{Name: "AcceptSettings"},
		{Name: "RejectSettings"},
	}
}

func serviceSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "StateChanged",
			Args: []introspect.Arg{
				{Name: "active", Type: "b"},
			},
		},
	}
}
