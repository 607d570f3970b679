package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/prefstore/internal/storage"
	"github.com/vk/prefstore/plugins/appearance"
	"github.com/vk/prefstore/plugins/telemetry"
)

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	validated, err := NewConfig(cfg)
	require.NoError(t, err)
	return NewApp(io.Discard, validated, appearance.New(), telemetry.New())
}

func memoryConfig() Config {
	return Config{
		AppName:      "prefstore-test",
		Storage:      "memory",
		SaveInterval: time.Millisecond,
	}
}

func TestFreshStoreIsSeededWithDefaults(t *testing.T) {
	a := newTestApp(t, memoryConfig())

	got := appearance.Get(a.Store())
	assert.Equal(t, "system", got.Theme)
	assert.Equal(t, 1.0, got.UIScale)
	assert.True(t, got.ShowStatusBar)
}

func TestUntouchedAppNeverSavesOnTickOrShutdown(t *testing.T) {
	a := newTestApp(t, memoryConfig())
	backend := a.backend.(*storage.MemoryBackend)

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, a.Tick(context.Background()))
	require.NoError(t, a.Shutdown(context.Background()))

	assert.Equal(t, 0, backend.SaveCount(), "seeding defaults must not count as a user change")
}

func TestMutationIsFlushedOnShutdown(t *testing.T) {
	a := newTestApp(t, memoryConfig())
	backend := a.backend.(*storage.MemoryBackend)

	appearance.Update(a.Store(), func(p *appearance.Preferences) {
		p.Theme = "dark"
	})
	require.NoError(t, a.Shutdown(context.Background()))

	assert.Equal(t, 1, backend.SaveCount())
}

func TestMutationIsSavedByTickAfterInterval(t *testing.T) {
	a := newTestApp(t, memoryConfig())
	backend := a.backend.(*storage.MemoryBackend)

	telemetry.Update(a.Store(), func(p *telemetry.Preferences) {
		p.Enabled = true
	})
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, a.Tick(context.Background()))

	assert.Equal(t, 1, backend.SaveCount())
}

func TestOnSavedNotification(t *testing.T) {
	a := newTestApp(t, memoryConfig())

	var notified int
	a.OnSaved(func() { notified++ })

	appearance.Update(a.Store(), func(p *appearance.Preferences) {
		p.UIScale = 1.25
	})
	require.NoError(t, a.Shutdown(context.Background()))

	assert.Equal(t, 1, notified)
}

func TestFilePersistenceAcrossAppInstances(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		AppName:    "prefstore-test",
		OrgName:    "example",
		Storage:    "file",
		StorageDir: dir,
	}

	first := newTestApp(t, cfg)
	telemetry.Update(first.Store(), func(p *telemetry.Preferences) {
		p.Enabled = true
		p.SessionCount = 7
		p.Tags = []string{"beta"}
	})
	require.NoError(t, first.Shutdown(context.Background()))

	_, err := os.Stat(filepath.Join(dir, "example.prefstore-test", "preferences.hcl"))
	require.NoError(t, err, "the app directory is created under the overridden parent")

	second := newTestApp(t, cfg)
	got := telemetry.Get(second.Store())
	assert.True(t, got.Enabled)
	assert.Equal(t, 7, got.SessionCount)
	assert.Equal(t, []string{"beta"}, got.Tags)

	unrelated := appearance.Get(second.Store())
	assert.Equal(t, "system", unrelated.Theme, "untouched types keep their defaults")
}

func TestJSONFormatPersistence(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		AppName:    "prefstore-test",
		Storage:    "file",
		StorageDir: dir,
		Format:     "json",
	}

	first := newTestApp(t, cfg)
	appearance.Update(first.Store(), func(p *appearance.Preferences) {
		p.Theme = "light"
	})
	require.NoError(t, first.Shutdown(context.Background()))

	_, err := os.Stat(filepath.Join(dir, "prefstore-test", "preferences.json"))
	require.NoError(t, err)

	second := newTestApp(t, cfg)
	assert.Equal(t, "light", appearance.Get(second.Store()).Theme)
}

func TestCorruptDocumentDegradesToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		AppName:    "prefstore-test",
		Storage:    "file",
		StorageDir: dir,
	}
	appDir := filepath.Join(dir, "prefstore-test")
	require.NoError(t, os.MkdirAll(appDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "preferences.hcl"), []byte("pref \"Broken"), 0o644))

	a := newTestApp(t, cfg)
	assert.Equal(t, "system", appearance.Get(a.Store()).Theme)
}

func TestStorageNoneDisablesScheduler(t *testing.T) {
	a := newTestApp(t, Config{AppName: "prefstore-test", Storage: "none"})

	require.Nil(t, a.sched)
	appearance.Update(a.Store(), func(p *appearance.Preferences) {
		p.Theme = "dark"
	})
	require.NoError(t, a.Tick(context.Background()))
	require.NoError(t, a.Shutdown(context.Background()))

	assert.Equal(t, "dark", appearance.Get(a.Store()).Theme, "the in-memory store still works")
}

func TestUnknownFormatPanics(t *testing.T) {
	cfg, err := NewConfig(Config{AppName: "prefstore-test", Storage: "memory", Format: "yaml"})
	require.NoError(t, err)

	require.Panics(t, func() {
		NewApp(io.Discard, cfg, appearance.New())
	})
}

func TestRunFlushesOnContextCancel(t *testing.T) {
	a := newTestApp(t, Config{
		AppName:      "prefstore-test",
		Storage:      "memory",
		SaveInterval: time.Minute,
		TickRate:     time.Millisecond,
	})
	backend := a.backend.(*storage.MemoryBackend)

	appearance.Update(a.Store(), func(p *appearance.Preferences) {
		p.Theme = "dark"
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Equal(t, 1, backend.SaveCount(), "shutdown flush bypasses the long debounce interval")
}

func TestNewLoggerRespectsLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "text", &buf)
	logger.Info("below threshold")
	logger.Warn("at threshold")
	assert.NotContains(t, buf.String(), "below threshold")
	assert.Contains(t, buf.String(), "at threshold")

	buf.Reset()
	logger = newLogger("debug", "json", &buf)
	logger.Debug("wire detail")
	assert.Contains(t, buf.String(), `"level":"DEBUG"`)
	assert.Contains(t, buf.String(), `"msg":"wire detail"`)
}

func TestNewLoggerUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("chatty", "text", &buf)
	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestConfigValidation(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)

	_, err = NewConfig(Config{AppName: "x", Storage: "carrier-pigeon"})
	require.Error(t, err)

	_, err = NewConfig(Config{AppName: "x", Storage: "remote"})
	require.Error(t, err, "remote storage requires a URL")

	cfg, err := NewConfig(Config{AppName: "x"})
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, cfg.TickRate)
}

func TestFullAppName(t *testing.T) {
	cfg := &Config{AppName: "app"}
	assert.Equal(t, "app", cfg.fullAppName())

	cfg.OrgName = "org"
	assert.Equal(t, "org.app", cfg.fullAppName())
}
