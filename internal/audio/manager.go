package audio

import (
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/linereader/internal/config"
)

// sink is the playback backend used by Manager.
type sink interface {
	Play(path string) error
	PlayCue(on bool) error
	SetVolume(volume float64)
	ClearCache()
	Close()
}

// Manager plays the configured cue for each overlay state change.
type Manager struct {
	mu     sync.RWMutex
	logger *slog.Logger
	player sink
	config config.SoundConfig
	paths  map[bool]string
}

// NewManager creates a new audio manager.
func NewManager(cfg config.SoundConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return newManager(cfg, NewPlayer(logger), logger)
}

func newManager(cfg config.SoundConfig, player sink, logger *slog.Logger) *Manager {
	m := &Manager{
		logger: logger,
		player: player,
	}
	m.UpdateConfig(cfg)
	return m
}

// UpdateConfig applies new sound settings.
// This is called when the config file is hot-reloaded.
func (m *Manager) UpdateConfig(cfg config.SoundConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = cfg
	m.player.SetVolume(float64(cfg.Volume) / 100.0)
	m.player.ClearCache()

	m.paths = make(map[bool]string, 2)
	for active, path := range map[bool]string{true: cfg.On, false: cfg.Off} {
		if path == "" {
			continue
		}
		path = config.ExpandPath(path)
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found, using built-in cue", "path", path)
			continue
		}
		m.paths[active] = path
	}
}

// PlayState plays the cue for a state change. Playback failures are
// logged, never returned.
func (m *Manager) PlayState(active bool) {
	m.mu.RLock()
	enabled := m.config.Enabled
	path, ok := m.paths[active]
	m.mu.RUnlock()

	if !enabled {
		return
	}

	var err error
	if ok {
		err = m.player.Play(path)
	} else {
		err = m.player.PlayCue(active)
	}
	if err != nil {
		m.logger.Warn("failed to play sound", "active", active, "error", err)
	}
}

// Stop releases the speaker.
func (m *Manager) Stop() {
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}
