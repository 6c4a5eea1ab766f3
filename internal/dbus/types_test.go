package dbus

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/linereader/internal/control"
	"github.com/jmylchreest/linereader/internal/model"
)

func TestSettingsWire(t *testing.T) {
	s := model.DefaultSettings().WithOffset(-12)

	w := settingsToWire(s)
	assert.Equal(t, wireSettings{Height: 20, Offset: -12, Color: "ff800120"}, w)

	back, err := settingsFromWire(w)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestSettingsFromWire_Invalid(t *testing.T) {
	tests := []struct {
		name string
		wire wireSettings
		want error
	}{
		{"bad color", wireSettings{Height: 20, Color: "orange"}, model.ErrInvalidColor},
		{"negative height", wireSettings{Height: -1, Color: "ff800120"}, model.ErrHeightRange},
		{"huge offset", wireSettings{Height: 20, Offset: 5000, Color: "ff800120"}, model.ErrOffsetRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := settingsFromWire(tt.wire)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSinceWire(t *testing.T) {
	assert.Equal(t, int64(0), sinceToWire(time.Time{}))
	assert.True(t, sinceFromWire(0).IsZero())
	assert.True(t, sinceFromWire(-5).IsZero())

	ts := time.Unix(1760000000, 0)
	assert.Equal(t, int64(1760000000), sinceToWire(ts))
	assert.True(t, ts.Equal(sinceFromWire(1760000000)))
}

func TestToDBusError(t *testing.T) {
	assert.Nil(t, toDBusError(nil))

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"busy", control.ErrSessionBusy, ErrorSessionBusy},
		{"no session", fmt.Errorf("wrapped: %w", control.ErrNoSession), ErrorNoSession},
		{"color", model.ErrInvalidColor, ErrorInvalidSettings},
		{"height", model.ErrHeightRange, ErrorInvalidSettings},
		{"other", errors.New("boom"), ErrorFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dErr := toDBusError(tt.err)
			require.NotNil(t, dErr)
			assert.Equal(t, tt.want, dErr.Name)
			assert.Equal(t, tt.err.Error(), dErr.Error())
		})
	}
}

func TestFromDBusError(t *testing.T) {
	assert.NoError(t, fromDBusError(nil))

	plain := errors.New("connection reset")
	assert.Same(t, plain, fromDBusError(plain))

	assert.ErrorIs(t, fromDBusError(toDBusError(control.ErrSessionBusy)), control.ErrSessionBusy)
	assert.ErrorIs(t, fromDBusError(*toDBusError(control.ErrNoSession)), control.ErrNoSession)

	invalid := fromDBusError(toDBusError(model.ErrOffsetRange))
	assert.ErrorIs(t, invalid, ErrInvalidSettings)
	assert.Contains(t, invalid.Error(), "offset out of range")

	notRunning := dbus.NewError(errorServiceUnknown, []any{"The name is not activatable"})
	assert.ErrorIs(t, fromDBusError(notRunning), ErrNotRunning)

	other := fromDBusError(dbus.NewError("org.example.Error", []any{"nope"}))
	assert.EqualError(t, other, "org.example.Error: nope")
}
