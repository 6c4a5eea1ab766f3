package control

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/linereader/internal/model"
	"github.com/jmylchreest/linereader/internal/overlay"
)

type fakeTarget struct {
	state     overlay.State
	settings  model.Settings
	enableErr error
	sets      int
}

func (f *fakeTarget) Toggle() (overlay.State, error) {
	if f.state == overlay.Active {
		f.Disable()
		return f.state, nil
	}
	if err := f.Enable(); err != nil {
		return f.state, err
	}
	return f.state, nil
}

func (f *fakeTarget) Enable() error {
	if f.enableErr != nil {
		return f.enableErr
	}
	f.state = overlay.Active
	return nil
}

func (f *fakeTarget) Disable()                 { f.state = overlay.Inactive }
func (f *fakeTarget) Settings() model.Settings { return f.settings }
func (f *fakeTarget) SetSettings(s model.Settings) {
	f.settings = s
	f.sets++
}

type fakeSurface struct {
	opened   []model.Settings
	presents int
	closes   int
}

func (f *fakeSurface) Open(s model.Settings) { f.opened = append(f.opened, s) }
func (f *fakeSurface) Present()              { f.presents++ }
func (f *fakeSurface) Close()                { f.closes++ }

type fixture struct {
	target  *fakeTarget
	surface *fakeSurface
	quits   int
	ctrl    *Controller
}

func newFixture() *fixture {
	f := &fixture{
		target:  &fakeTarget{settings: model.DefaultSettings()},
		surface: &fakeSurface{},
	}
	f.ctrl = NewController(f.target, func() { f.quits++ }, nil)
	f.ctrl.SetSettingsSurface(f.surface)
	return f
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want Command
	}{
		{"hotkey", HotkeyTriggered(), CommandToggle},
		{"tray primary", TrayActivated(TrayPrimary), CommandToggle},
		{"tray double", TrayActivated(TrayDouble), CommandOpenSettings},
		{"tray middle", TrayActivated(TrayMiddle), CommandOpenSettings},
		{"menu options", MenuAction(MenuOptions), CommandOpenSettings},
		{"menu toggle", MenuAction(MenuToggle), CommandToggle},
		{"menu exit", MenuAction(MenuExit), CommandExit},
		{"unknown menu", MenuAction("bogus"), CommandNone},
		{"remote enable", RemoteCommand(CommandEnable), CommandEnable},
		{"dialog accepted", DialogAccepted(model.DefaultSettings()), CommandNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.ev))
		})
	}
}

func TestHotkeyTogglesTwice(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.ctrl.Dispatch(HotkeyTriggered()))
	assert.Equal(t, overlay.Active, f.target.state)

	require.NoError(t, f.ctrl.Dispatch(HotkeyTriggered()))
	assert.Equal(t, overlay.Inactive, f.target.state)
}

func TestToggleErrorPropagates(t *testing.T) {
	f := newFixture()
	f.target.enableErr = errors.New("no displays")

	err := f.ctrl.Dispatch(TrayActivated(TrayPrimary))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no displays")
	assert.Equal(t, overlay.Inactive, f.target.state)
}

func TestRemoteEnableDisable(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.ctrl.Dispatch(RemoteCommand(CommandEnable)))
	require.NoError(t, f.ctrl.Dispatch(RemoteCommand(CommandEnable)))
	assert.Equal(t, overlay.Active, f.target.state)

	require.NoError(t, f.ctrl.Dispatch(RemoteCommand(CommandDisable)))
	assert.Equal(t, overlay.Inactive, f.target.state)
}

func TestOpenSettingsPopulatesSurface(t *testing.T) {
	f := newFixture()
	f.target.settings = model.DefaultSettings().WithHeight(40)

	require.NoError(t, f.ctrl.Dispatch(MenuAction(MenuOptions)))
	require.Len(t, f.surface.opened, 1)
	assert.Equal(t, 40, f.surface.opened[0].Height)
	assert.True(t, f.ctrl.SessionOpen())

	// A second request raises the existing editor.
	require.NoError(t, f.ctrl.Dispatch(TrayActivated(TrayDouble)))
	assert.Len(t, f.surface.opened, 1)
	assert.Equal(t, 1, f.surface.presents)
}

func TestAcceptCommitsSettings(t *testing.T) {
	f := newFixture()
	edited := model.DefaultSettings().WithHeight(40).WithOffset(-5)

	require.NoError(t, f.ctrl.Dispatch(MenuAction(MenuOptions)))
	require.NoError(t, f.ctrl.Dispatch(DialogAccepted(edited)))

	assert.Equal(t, edited, f.target.settings)
	assert.False(t, f.ctrl.SessionOpen())
	assert.Equal(t, 1, f.surface.closes)
}

func TestRejectRestoresSnapshot(t *testing.T) {
	f := newFixture()
	original := f.target.settings

	require.NoError(t, f.ctrl.Dispatch(MenuAction(MenuOptions)))
	require.NoError(t, f.ctrl.Dispatch(DialogValueAdjusted(original.WithHeight(80))))
	assert.Equal(t, 80, f.target.settings.Height, "preview applies immediately")

	require.NoError(t, f.ctrl.Dispatch(DialogRejected()))
	assert.Equal(t, original, f.target.settings)
	assert.False(t, f.ctrl.SessionOpen())
}

func TestDialogEventsOutsideSessionIgnored(t *testing.T) {
	f := newFixture()
	original := f.target.settings

	assert.ErrorIs(t, f.ctrl.Dispatch(DialogAccepted(original.WithHeight(90))), ErrNoSession)
	assert.ErrorIs(t, f.ctrl.Dispatch(DialogValueAdjusted(original.WithHeight(90))), ErrNoSession)
	assert.ErrorIs(t, f.ctrl.Dispatch(DialogRejected()), ErrNoSession)
	assert.Equal(t, original, f.target.settings)
	assert.Zero(t, f.target.sets)
}

func TestInvalidAdjustmentRejected(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.ctrl.Dispatch(MenuAction(MenuOptions)))

	err := f.ctrl.Dispatch(DialogValueAdjusted(f.target.settings.WithHeight(-1)))
	assert.ErrorIs(t, err, model.ErrHeightRange)
	assert.Equal(t, model.DefaultHeight, f.target.settings.Height)
	assert.True(t, f.ctrl.SessionOpen())
}

func TestExitWhileActive(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.ctrl.Dispatch(HotkeyTriggered()))

	require.NoError(t, f.ctrl.Dispatch(MenuAction(MenuExit)))
	assert.Equal(t, 1, f.quits)
}

func TestExitDuringSessionRestoresSnapshot(t *testing.T) {
	f := newFixture()
	original := f.target.settings

	require.NoError(t, f.ctrl.Dispatch(MenuAction(MenuOptions)))
	require.NoError(t, f.ctrl.Dispatch(DialogValueAdjusted(original.WithOffset(12))))
	require.NoError(t, f.ctrl.Dispatch(RemoteCommand(CommandExit)))

	assert.Equal(t, original, f.target.settings)
	assert.Equal(t, 1, f.surface.closes)
	assert.Equal(t, 1, f.quits)
}

func TestRemoteSession(t *testing.T) {
	f := newFixture()

	_, open := f.ctrl.Owner()
	assert.False(t, open)

	current, err := f.ctrl.BeginSession(OwnerRemote)
	require.NoError(t, err)
	assert.Equal(t, f.target.settings, current)

	owner, open := f.ctrl.Owner()
	assert.True(t, open)
	assert.Equal(t, OwnerRemote, owner)

	_, err = f.ctrl.BeginSession(OwnerRemote)
	assert.ErrorIs(t, err, ErrSessionBusy)

	// The dialog does not steal a remote session.
	require.NoError(t, f.ctrl.Dispatch(MenuAction(MenuOptions)))
	assert.Empty(t, f.surface.opened)
	assert.Zero(t, f.surface.presents)

	require.NoError(t, f.ctrl.Dispatch(DialogAccepted(current.WithHeight(33))))
	assert.Equal(t, 33, f.target.settings.Height)
	assert.Zero(t, f.surface.closes)
	assert.False(t, f.ctrl.SessionOpen())
}

func TestApplyDefaults(t *testing.T) {
	f := newFixture()
	var changed []model.Settings
	f.ctrl.SetSettingsChangedCallback(func(s model.Settings) { changed = append(changed, s) })

	next := model.DefaultSettings().WithHeight(30)
	assert.True(t, f.ctrl.ApplyDefaults(next))
	assert.Equal(t, next, f.target.settings)
	assert.Len(t, changed, 1)

	// Unchanged values do not notify.
	assert.True(t, f.ctrl.ApplyDefaults(next))
	assert.Len(t, changed, 1)

	require.NoError(t, f.ctrl.Dispatch(MenuAction(MenuOptions)))
	assert.False(t, f.ctrl.ApplyDefaults(model.DefaultSettings()))
	assert.Equal(t, next, f.target.settings)
}

func TestNoSurfaceIsHarmless(t *testing.T) {
	target := &fakeTarget{settings: model.DefaultSettings()}
	ctrl := NewController(target, nil, nil)

	require.NoError(t, ctrl.Dispatch(MenuAction(MenuOptions)))
	assert.False(t, ctrl.SessionOpen())
	require.NoError(t, ctrl.Dispatch(MenuAction(MenuExit)))
}
