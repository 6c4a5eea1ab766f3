package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	godbus "github.com/godbus/dbus/v5"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/linereader/internal/audio"
	"github.com/jmylchreest/linereader/internal/config"
	"github.com/jmylchreest/linereader/internal/control"
	"github.com/jmylchreest/linereader/internal/daemon"
	"github.com/jmylchreest/linereader/internal/dbus"
	"github.com/jmylchreest/linereader/internal/display"
	"github.com/jmylchreest/linereader/internal/model"
	"github.com/jmylchreest/linereader/internal/overlay"
	"github.com/jmylchreest/linereader/internal/theme"
	"github.com/jmylchreest/linereader/internal/tray"
)

// lineReader wires the daemon components together. Everything except the
// signal goroutine runs on the GTK main loop.
type lineReader struct {
	logger  *slog.Logger
	fileCfg *config.DaemonConfig // as loaded, without flags
	cfg     *config.DaemonConfig
	cfgPath string
	flags   *pflag.FlagSet
	opts    *options

	app    *adw.Application
	ctx    context.Context
	cancel context.CancelFunc

	platform *platform
	overlay  *overlay.Overlay
	ctrl     *control.Controller
	settings *display.SettingsWindow
	bridge   *daemon.Bridge
	service  *dbus.Service
	tray     *tray.Manager
	audio    *audio.Manager
	notifier *daemon.Notifier
	themes   *theme.Loader
	watcher  *daemon.ConfigWatcher

	running  atomic.Bool
	stopping bool
	startErr error
}

func newLineReader(fileCfg, cfg *config.DaemonConfig, cfgPath string, flags *pflag.FlagSet, opts *options, logger *slog.Logger) *lineReader {
	return &lineReader{
		logger:  logger,
		fileCfg: fileCfg,
		cfg:     cfg,
		cfgPath: cfgPath,
		flags:   flags,
		opts:    opts,
	}
}

// Run starts the GTK application and blocks until it exits.
func (d *lineReader) Run() error {
	// The D-Bus service name guards against a second instance, so GApplication
	// must not forward activation to the first one.
	d.app = adw.NewApplication(appID, gio.ApplicationNonUnique)
	d.ctx, d.cancel = context.WithCancel(context.Background())
	defer d.cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			d.logger.Info("received signal, shutting down", "signal", sig)
			glib.IdleAdd(func() {
				if d.ctrl != nil {
					d.execute(control.CommandExit)
				} else {
					d.app.Quit()
				}
			})
		case <-d.ctx.Done():
		}
	}()

	d.app.ConnectActivate(d.activate)
	d.app.ConnectShutdown(d.shutdown)

	status := d.app.Run([]string{os.Args[0]})

	if d.startErr != nil {
		return d.startErr
	}
	if status != 0 {
		return fmt.Errorf("application exited with status %d", status)
	}
	d.logger.Info("linereaderd stopped")
	return nil
}

func (d *lineReader) activate() {
	if d.running.Load() {
		d.logger.Warn("application already running")
		return
	}
	d.running.Store(true)

	if err := d.start(); err != nil {
		d.logger.Error("startup failed", "error", err)
		d.startErr = err
		d.app.Quit()
	}
}

func (d *lineReader) start() error {
	logger := d.logger
	cfg := d.cfg

	d.notifier = daemon.NewNotifier(logger)
	d.notifier.SetEnabled(cfg.Notify.Enabled)
	if conn, err := godbus.SessionBus(); err != nil {
		logger.Warn("desktop notifications unavailable", "error", err)
	} else {
		d.notifier.SetSender(daemon.NewBusSender(conn))
	}

	d.themes = theme.NewLoader(logger)
	if err := d.themes.Load(); err != nil {
		d.notifier.NotifyThemeError(err)
	}
	d.themes.Apply()

	backend, err := resolveBackend(config.Backend(cfg.Sampler.Backend), detectSession())
	if err != nil {
		return fmt.Errorf("failed to select display backend: %w", err)
	}
	d.platform, err = openPlatform(backend, &d.app.Application, logger)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", backend, err)
	}
	logger.Info("display backend ready", "backend", backend)

	hotkey, err := resolveHotkey(config.HotkeyBackend(cfg.Hotkey.Backend), backend)
	if err != nil {
		return err
	}

	d.overlay = overlay.New(d.platform.backend, display.NewGlibTicker(), cfg.Settings(), logger)
	d.overlay.SetInterval(cfg.Sampler.Interval.Duration())
	d.platform.SetSampleInterval(d.overlay.Interval())
	d.platform.SetPaintFunc(d.overlay.Paint)

	d.settings = display.NewSettingsWindow(&d.app.Application, logger)
	d.settings.SetEventCallback(d.dispatch)

	d.ctrl = control.NewController(d.overlay, d.app.Quit, logger)
	d.ctrl.SetSettingsSurface(d.settings)

	d.bridge = daemon.NewBridge(d.ctrl, d.overlay, func(fn func()) {
		glib.IdleAdd(fn)
	}, logger)
	d.bridge.Publish()

	d.service = dbus.NewService(d.bridge, logger)
	if err := d.service.Start(); err != nil {
		if errors.Is(err, dbus.ErrAlreadyRunning) {
			return fmt.Errorf("linereaderd is already running: %w", err)
		}
		return fmt.Errorf("failed to start D-Bus service: %w", err)
	}

	d.audio = audio.NewManager(cfg.Sound, logger)

	if cfg.Tray.Enabled {
		d.tray = tray.New(logger)
		d.tray.SetColor(cfg.Band.Color)
		d.tray.SetEventCallback(d.dispatchAsync)
		d.tray.Start()
	}

	d.overlay.OnStateChange(d.onStateChange)
	d.ctrl.SetSettingsChangedCallback(d.onSettingsChanged)

	switch hotkey {
	case config.HotkeyX11:
		err := d.platform.BindHotkey(cfg.Hotkey.Combo, func() {
			d.dispatchAsync(control.HotkeyTriggered())
		})
		if err != nil {
			return err
		}
	case config.HotkeyCompositor:
		logger.Info("bind the toggle hotkey in your compositor", "combo", cfg.Hotkey.Combo, "command", "linereader toggle")
		d.notifier.NotifyHotkeyHint(cfg.Hotkey.Combo)
	case config.HotkeyNone:
		logger.Debug("global hotkey disabled")
	}

	d.watcher = daemon.NewConfigWatcher(d.cfgPath, logger)
	d.watcher.SetReloadCallback(func(next *config.DaemonConfig) {
		glib.IdleAdd(func() {
			d.reload(next)
		})
	})
	d.watcher.SetErrorCallback(d.notifier.NotifyConfigError)
	// The watcher compares file against file; flags are merged on reload.
	if err := d.watcher.Start(d.ctx, d.fileCfg); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	d.themes.StartHotReload(d.ctx)

	display.WatchMonitors(func(count int) {
		logger.Info("monitor layout changed", "monitors", count, "active", d.overlay.State() == overlay.Active)
		d.platform.MonitorsChanged()
	})

	// GTK applications quit when their last window closes. The settings
	// window comes and goes, so keep a hidden one around.
	keepAlive := gtk.NewWindow()
	keepAlive.SetApplication(&d.app.Application)
	keepAlive.SetDefaultSize(1, 1)
	keepAlive.SetDecorated(false)
	keepAlive.SetVisible(false)

	if d.opts.enable {
		d.execute(control.CommandEnable)
	}

	logger.Info("linereaderd ready", "dbus_interface", dbus.Interface, "backend", backend, "hotkey", hotkey)
	return nil
}

// dispatch handles an event on the main loop.
func (d *lineReader) dispatch(ev control.Event) {
	if err := d.ctrl.Dispatch(ev); err != nil {
		d.logger.Warn("event failed", "kind", ev.Kind.String(), "error", err)
	}
}

// dispatchAsync hands an event from another goroutine to the main loop.
func (d *lineReader) dispatchAsync(ev control.Event) {
	glib.IdleAdd(func() {
		d.dispatch(ev)
	})
}

func (d *lineReader) execute(cmd control.Command) {
	if err := d.ctrl.Execute(cmd); err != nil {
		d.logger.Warn("command failed", "command", cmd.String(), "error", err)
	}
}

func (d *lineReader) onStateChange(state overlay.State) {
	active := state == overlay.Active
	d.logger.Info("overlay state changed", "state", state.String())

	d.bridge.Publish()
	if err := d.service.EmitStateChanged(active); err != nil {
		d.logger.Debug("failed to emit state change", "error", err)
	}
	if d.stopping {
		return
	}
	if d.tray != nil {
		d.tray.SetState(active)
	}
	go d.audio.PlayState(active)
}

func (d *lineReader) onSettingsChanged(s model.Settings) {
	d.bridge.Publish()
	if d.tray != nil {
		d.tray.SetColor(s.Color)
	}
}

// reload applies a changed configuration file. Command line flags keep
// precedence over the file.
func (d *lineReader) reload(next *config.DaemonConfig) {
	merged, err := d.opts.merge(d.flags, next)
	if err != nil {
		d.logger.Warn("reloaded config conflicts with command line", "error", err)
		d.notifier.NotifyConfigError(err)
		return
	}

	prev := d.cfg
	d.fileCfg = next
	d.cfg = merged

	d.overlay.SetInterval(merged.Sampler.Interval.Duration())
	d.platform.SetSampleInterval(d.overlay.Interval())
	if merged.Band != prev.Band {
		if d.ctrl.ApplyDefaults(merged.Settings()) {
			d.logger.Info("band settings reloaded",
				"height", merged.Band.Height,
				"offset", merged.Band.Offset,
				"color", merged.Band.Color.Hex(),
			)
		} else {
			d.logger.Info("settings session open, keeping current band settings")
		}
	}
	d.audio.UpdateConfig(merged.Sound)
	d.notifier.SetEnabled(merged.Notify.Enabled)

	if merged.Sampler.Backend != prev.Sampler.Backend || merged.Hotkey != prev.Hotkey || merged.Tray != prev.Tray {
		d.logger.Warn("backend, hotkey and tray changes take effect after a restart")
	}

	d.notifier.NotifyConfigReloaded()
}

func (d *lineReader) shutdown() {
	d.logger.Info("application shutting down")
	d.cancel()

	if d.overlay != nil {
		d.stopping = true
		d.overlay.Disable()
	}
	if d.settings != nil {
		d.settings.Close()
	}
	if d.watcher != nil {
		d.watcher.Stop()
	}
	if d.themes != nil {
		d.themes.StopHotReload()
	}
	if d.tray != nil {
		d.tray.Stop()
	}
	if d.service != nil {
		if err := d.service.Stop(); err != nil {
			d.logger.Warn("failed to stop D-Bus service", "error", err)
		}
	}
	if d.audio != nil {
		d.audio.Stop()
	}
	if d.notifier != nil {
		d.notifier.Wait()
	}
	if d.platform != nil {
		d.platform.Close()
	}
	d.running.Store(false)
}
