package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (s *recordingSender) Send(_ context.Context, n Notification) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.sent = append(s.sent, n)
	return uint32(len(s.sent)), nil
}

func (s *recordingSender) notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.sent...)
}

func TestNotifier_Send(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(nil)
	n.SetSender(sender)

	n.NotifyConfigError(errors.New("height out of range"))
	n.Wait()

	sent := sender.notifications()
	require.Len(t, sent, 1)
	assert.Equal(t, "linereaderd", sent[0].AppName)
	assert.Equal(t, "Configuration Error", sent[0].Summary)
	assert.Contains(t, sent[0].Body, "height out of range")
	assert.Equal(t, "dialog-warning", sent[0].AppIcon)
	assert.Equal(t, byte(1), sent[0].Hints["urgency"].Value())
	assert.Equal(t, true, sent[0].Hints["transient"].Value())
}

func TestNotifier_RateLimit(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(nil)
	n.SetSender(sender)

	n.NotifyConfigReloaded()
	n.NotifyConfigReloaded()
	n.NotifyHotkeyHint("super+shift+l")
	n.Wait()
	assert.Len(t, sender.notifications(), 2)

	n.SetMinInterval(0)
	n.NotifyConfigReloaded()
	n.Wait()
	assert.Len(t, sender.notifications(), 3)
}

func TestNotifier_DisabledOrNoSender(t *testing.T) {
	n := NewNotifier(nil)
	n.NotifyConfigReloaded()
	n.Wait()

	sender := &recordingSender{}
	n.SetSender(sender)
	n.SetEnabled(false)
	n.NotifyThemeError(errors.New("bad css"))
	n.Wait()
	assert.Empty(t, sender.notifications())
}

func TestNotifier_SendErrorIsLogged(t *testing.T) {
	sender := &recordingSender{err: errors.New("no notification server")}
	n := NewNotifier(nil)
	n.SetSender(sender)

	n.NotifyConfigReloaded()
	n.Wait()
	assert.Empty(t, sender.notifications())
}

func TestNotificationLevel(t *testing.T) {
	tests := []struct {
		level   NotificationLevel
		urgency byte
		icon    string
	}{
		{NotificationLevelInfo, 0, "dialog-information"},
		{NotificationLevelWarning, 1, "dialog-warning"},
		{NotificationLevelError, 2, "dialog-error"},
	}
	for _, tt := range tests {
		t.Run(tt.icon, func(t *testing.T) {
			assert.Equal(t, tt.urgency, tt.level.Urgency())
			assert.Equal(t, tt.icon, tt.level.Icon())
		})
	}
}
