package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"
)

const (
	notificationsName  = "org.freedesktop.Notifications"
	notificationsPath  = godbus.ObjectPath("/org/freedesktop/Notifications")
	notificationsIface = "org.freedesktop.Notifications"

	appName = "linereaderd"
)

// NotificationLevel indicates the severity of a desktop notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

// Urgency returns the freedesktop urgency byte for the level.
func (l NotificationLevel) Urgency() byte {
	switch l {
	case NotificationLevelInfo:
		return 0
	case NotificationLevelError:
		return 2
	default:
		return 1
	}
}

// Icon returns the themed icon name for the level.
func (l NotificationLevel) Icon() string {
	switch l {
	case NotificationLevelInfo:
		return "dialog-information"
	case NotificationLevelError:
		return "dialog-error"
	default:
		return "dialog-warning"
	}
}

// Notification is one org.freedesktop.Notifications.Notify request.
type Notification struct {
	AppName       string
	AppIcon       string
	Summary       string
	Body          string
	Hints         map[string]godbus.Variant
	ExpireTimeout int32
}

// NotificationSender delivers a notification to the desktop.
type NotificationSender interface {
	Send(ctx context.Context, n Notification) (uint32, error)
}

// BusSender sends notifications to the session notification server.
type BusSender struct {
	conn *godbus.Conn
}

// NewBusSender creates a sender on the given connection.
func NewBusSender(conn *godbus.Conn) *BusSender {
	return &BusSender{conn: conn}
}

// Send calls Notify and returns the id assigned by the server.
func (s *BusSender) Send(ctx context.Context, n Notification) (uint32, error) {
	obj := s.conn.Object(notificationsName, notificationsPath)
	call := obj.CallWithContext(ctx, notificationsIface+".Notify", 0,
		n.AppName,
		uint32(0),
		n.AppIcon,
		n.Summary,
		n.Body,
		[]string{},
		n.Hints,
		n.ExpireTimeout,
	)
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}
	return id, nil
}

// Notifier raises desktop notifications about daemon events.
// Identical notifications are rate limited per key.
type Notifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	sender  NotificationSender
	timeout time.Duration

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration

	enabled bool
	wg      sync.WaitGroup
}

// NewNotifier creates a Notifier. It sends nothing until a sender is set.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger:         logger,
		timeout:        2 * time.Second,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		enabled:        true,
	}
}

// SetSender sets where notifications are delivered.
func (n *Notifier) SetSender(sender NotificationSender) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sender = sender
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *Notifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends a notification in the background unless disabled or rate limited.
func (n *Notifier) Notify(key, summary, body string, level NotificationLevel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return
	}
	if n.sender == nil {
		n.logger.Debug("notification skipped: no sender", "summary", summary)
		return
	}

	if lastTime, ok := n.lastNotifyTime[key]; ok && time.Since(lastTime) < n.minInterval {
		n.logger.Debug("notification rate-limited", "key", key, "summary", summary)
		return
	}
	n.lastNotifyTime[key] = time.Now()

	notification := Notification{
		AppName: appName,
		AppIcon: level.Icon(),
		Summary: summary,
		Body:    body,
		Hints: map[string]godbus.Variant{
			"urgency":       godbus.MakeVariant(level.Urgency()),
			"transient":     godbus.MakeVariant(true),
			"desktop-entry": godbus.MakeVariant(appName),
		},
		ExpireTimeout: 5000,
	}

	sender := n.sender
	timeout := n.timeout
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := sender.Send(ctx, notification); err != nil {
			n.logger.Warn("failed to send notification", "key", key, "error", err)
			return
		}
		n.logger.Debug("sent notification", "key", key, "summary", summary)
	}()
}

// Wait blocks until in-flight notifications are delivered.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// NotifyConfigReloaded reports a successful config reload.
func (n *Notifier) NotifyConfigReloaded() {
	n.Notify(
		"config-reload",
		"Configuration Reloaded",
		"linereaderd configuration has been reloaded.",
		NotificationLevelInfo,
	)
}

// NotifyConfigError reports a config file that failed validation.
func (n *Notifier) NotifyConfigError(err error) {
	n.Notify(
		"config-error",
		"Configuration Error",
		"Keeping the previous configuration: "+err.Error(),
		NotificationLevelWarning,
	)
}

// NotifyHotkeyHint tells the user to bind the toggle in the compositor.
func (n *Notifier) NotifyHotkeyHint(combo string) {
	n.Notify(
		"hotkey-hint",
		"Global Hotkey Unavailable",
		"Bind "+combo+" to `linereader toggle` in your compositor.",
		NotificationLevelInfo,
	)
}

// NotifyThemeError reports a style sheet that failed to load.
func (n *Notifier) NotifyThemeError(err error) {
	n.Notify(
		"theme-error",
		"Style Error",
		"Failed to load style sheet: "+err.Error(),
		NotificationLevelWarning,
	)
}
