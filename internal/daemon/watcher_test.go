package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/linereader/internal/config"
)

type reloadRecorder struct {
	mu      sync.Mutex
	configs []*config.DaemonConfig
	errs    []error
}

func (r *reloadRecorder) onReload(cfg *config.DaemonConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = append(r.configs, cfg)
}

func (r *reloadRecorder) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *reloadRecorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.configs), len(r.errs)
}

func (r *reloadRecorder) last() *config.DaemonConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configs[len(r.configs)-1]
}

func startWatcher(t *testing.T, path string) (*ConfigWatcher, *reloadRecorder) {
	t.Helper()
	rec := &reloadRecorder{}
	w := NewConfigWatcher(path, nil)
	w.SetDebounce(20 * time.Millisecond)
	w.SetReloadCallback(rec.onReload)
	w.SetErrorCallback(rec.onError)
	require.NoError(t, w.Start(context.Background(), config.DefaultDaemonConfig()))
	t.Cleanup(w.Stop)
	return w, rec
}

func TestConfigWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linereaderd.toml")
	w, rec := startWatcher(t, path)
	assert.True(t, w.IsRunning())

	require.NoError(t, os.WriteFile(path, []byte("[band]\nheight = 42\n"), 0o644))

	assert.Eventually(t, func() bool {
		n, _ := rec.counts()
		return n >= 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 42, rec.last().Band.Height)
	assert.Equal(t, 42, w.GetCurrentConfig().Band.Height)
}

func TestConfigWatcher_InvalidKeepsCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linereaderd.toml")
	w, rec := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("[band]\nheight = -3\n"), 0o644))

	assert.Eventually(t, func() bool {
		_, n := rec.counts()
		return n >= 1
	}, 2*time.Second, 10*time.Millisecond)

	reloads, _ := rec.counts()
	assert.Zero(t, reloads)
	assert.Equal(t, config.DefaultDaemonConfig().Band.Height, w.GetCurrentConfig().Band.Height)
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	_, rec := startWatcher(t, filepath.Join(dir, "linereaderd.toml"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("window {}"), 0o644))
	time.Sleep(100 * time.Millisecond)

	reloads, errs := rec.counts()
	assert.Zero(t, reloads)
	assert.Zero(t, errs)
}

func TestConfigWatcher_UnchangedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linereaderd.toml")
	_, rec := startWatcher(t, path)

	// Same values as the defaults.
	require.NoError(t, os.WriteFile(path, []byte("[band]\nheight = 20\n"), 0o644))
	time.Sleep(150 * time.Millisecond)

	reloads, errs := rec.counts()
	assert.Zero(t, reloads)
	assert.Zero(t, errs)
}

func TestConfigWatcher_StopIsIdempotent(t *testing.T) {
	w := NewConfigWatcher(filepath.Join(t.TempDir(), "sub", "linereaderd.toml"), nil)
	w.Stop()
	require.NoError(t, w.Start(context.Background(), nil))
	require.NoError(t, w.Start(context.Background(), nil))
	w.Stop()
	w.Stop()
	assert.False(t, w.IsRunning())
}
