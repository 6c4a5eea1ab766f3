// Package tray provides the status notifier icon and its menu.
package tray

import (
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/systray"

	"github.com/jmylchreest/linereader/internal/control"
	"github.com/jmylchreest/linereader/internal/model"
)

// Manager handles the tray icon and menu. Events are delivered on the
// systray goroutines; callers marshal them onto the UI loop.
type Manager struct {
	mu     sync.Mutex
	logger *slog.Logger

	mOptions *systray.MenuItem
	mToggle  *systray.MenuItem
	mExit    *systray.MenuItem

	clicks  *clickClassifier
	onEvent func(control.Event)

	active bool
	color  model.Color
	ready  bool

	end    func()
	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a tray manager.
func New(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		logger: logger,
		color:  model.DefaultSettings().Color,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	m.clicks = newClickClassifier(DoubleClickWindow, func(kind control.TrayKind) {
		m.emit(control.TrayActivated(kind))
	})
	return m
}

// SetEventCallback sets the callback for tray and menu events.
func (m *Manager) SetEventCallback(cb func(control.Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvent = cb
}

func (m *Manager) emit(ev control.Event) {
	m.mu.Lock()
	cb := m.onEvent
	m.mu.Unlock()
	if cb != nil {
		cb(ev)
	}
}

// Start registers the status notifier item on the session bus.
func (m *Manager) Start() {
	start, end := systray.RunWithExternalLoop(m.onReady, m.onExit)
	m.end = end
	start()
	m.logger.Debug("tray started")
}

// Stop removes the tray icon.
func (m *Manager) Stop() {
	m.clicks.Cancel()
	if m.end != nil {
		m.end()
		m.end = nil
	}
}

func (m *Manager) onReady() {
	systray.SetTitle("Line Reader")

	systray.SetOnTapped(m.clicks.Click)
	// SNI SecondaryActivate is a middle click.
	systray.SetOnSecondaryTapped(func() {
		m.clicks.Cancel()
		m.emit(control.TrayActivated(control.TrayMiddle))
	})

	m.mOptions = systray.AddMenuItem("Options...", "Change band height, offset and color")
	m.mToggle = systray.AddMenuItem("Toggle", "Show or hide the reading band")
	systray.AddSeparator()
	m.mExit = systray.AddMenuItem("Exit", "Quit Line Reader")

	m.mu.Lock()
	m.ready = true
	active, color := m.active, m.color
	m.mu.Unlock()
	m.render(active, color)

	go m.handleClicks()
}

func (m *Manager) onExit() {
	close(m.stopCh)
	<-m.doneCh
}

func (m *Manager) handleClicks() {
	defer close(m.doneCh)
	for {
		select {
		case <-m.mOptions.ClickedCh:
			m.emit(control.MenuAction(control.MenuOptions))
		case <-m.mToggle.ClickedCh:
			m.emit(control.MenuAction(control.MenuToggle))
		case <-m.mExit.ClickedCh:
			m.emit(control.MenuAction(control.MenuExit))
		case <-m.stopCh:
			return
		}
	}
}

// SetState updates the icon and tooltip for the overlay state.
func (m *Manager) SetState(active bool) {
	m.mu.Lock()
	m.active = active
	ready, color := m.ready, m.color
	m.mu.Unlock()
	if ready {
		m.render(active, color)
	}
}

// SetColor re-renders the icon for a new band color.
func (m *Manager) SetColor(c model.Color) {
	m.mu.Lock()
	m.color = c
	ready, active := m.ready, m.active
	m.mu.Unlock()
	if ready {
		m.render(active, c)
	}
}

func (m *Manager) render(active bool, c model.Color) {
	icon, err := RenderIcon(c, active)
	if err != nil {
		m.logger.Warn("failed to render tray icon", "error", err)
	} else {
		systray.SetIcon(icon)
	}
	systray.SetTooltip(Tooltip(active))
}

// Tooltip returns the tooltip text for a state.
func Tooltip(active bool) string {
	state := "off"
	if active {
		state = "on"
	}
	return fmt.Sprintf("Line Reader (%s) - click to toggle, double-click for options", state)
}
