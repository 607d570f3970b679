package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vk/prefstore/internal/codec"
	"github.com/vk/prefstore/internal/ctxlog"
	"github.com/vk/prefstore/internal/format"
	"github.com/vk/prefstore/internal/prefmap"
	"github.com/vk/prefstore/internal/registry"
	"github.com/vk/prefstore/internal/remotestorage"
	"github.com/vk/prefstore/internal/scheduler"
	"github.com/vk/prefstore/internal/storage"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger builds the app-scoped logger. The global logger is left alone so
// several App instances can log to different writers. Levels outside
// logLevels fall back to info; the CLI rejects them before they get here.
func newLogger(level, logFormat string, outW io.Writer) *slog.Logger {
	lvl, ok := logLevels[level]
	if !ok {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if logFormat == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}

// App encapsulates the preference system's dependencies and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	store    *prefmap.Map
	backend  storage.Backend
	sched    *scheduler.Scheduler
	onSaved  []func()
}

// NewApp is the constructor for the preference system. It builds an isolated
// logger and registry, registers every plugin, seals the registry, loads the
// persisted document (degrading to defaults on any data-level failure) and
// prepares the save scheduler. Configuration mistakes are fatal startup
// errors and panic.
func NewApp(outW io.Writer, cfg *Config, plugins ...registry.Plugin) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	for _, plugin := range plugins {
		plugin.Register(reg)
	}
	reg.Seal()
	logger.Debug("All preference plugins registered.", "types", reg.Len())

	docFormat, err := format.ByName(cfg.Format)
	if err != nil {
		panic(fmt.Errorf("failed to configure preferences format: %w", err))
	}

	backend, err := buildBackend(cfg, docFormat)
	if err != nil {
		panic(fmt.Errorf("failed to configure preferences storage: %w", err))
	}

	store := loadStore(ctx, reg, backend)
	seedDefaults(ctx, store)

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		store:    store,
		backend:  backend,
	}

	if backend != nil {
		opts := []scheduler.Option{scheduler.WithOnSaved(a.notifySaved)}
		if cfg.SaveInterval > 0 {
			opts = append(opts, scheduler.WithMinInterval(cfg.SaveInterval))
		}
		a.sched = scheduler.New(saveTarget{store: store, backend: backend}, opts...)
	}
	return a
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Store returns the in-memory preference store.
func (a *App) Store() *prefmap.Map {
	return a.store
}

// OnSaved subscribes fn to the zero-payload notification emitted after each
// successful flush.
func (a *App) OnSaved(fn func()) {
	a.onSaved = append(a.onSaved, fn)
}

func (a *App) notifySaved() {
	a.logger.Debug("Preferences saved.")
	for _, fn := range a.onSaved {
		fn()
	}
}

// saveTarget adapts the store and backend to what the scheduler watches.
type saveTarget struct {
	store   *prefmap.Map
	backend storage.Backend
}

func (t saveTarget) Version() uint64 {
	return t.store.Version()
}

func (t saveTarget) Flush(ctx context.Context) error {
	doc, err := codec.Encode(ctx, t.store)
	if err != nil {
		// Saving a document with entries missing would lose data on the
		// next load, so an encode failure aborts the whole save.
		return err
	}
	return t.backend.Save(ctx, doc)
}

// loadStore runs the startup load path with the error taxonomy's
// degradation: not-found and broken documents yield an empty store, entries
// that fail individually are dropped by the codec.
func loadStore(ctx context.Context, reg *registry.Registry, backend storage.Backend) *prefmap.Map {
	logger := ctxlog.FromContext(ctx)

	if backend == nil {
		return prefmap.New(reg)
	}

	doc, err := backend.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Info("No preferences document found, starting from defaults.")
		} else {
			logger.Error("Error loading preferences, starting from defaults.", "error", err)
		}
		return prefmap.New(reg)
	}

	store, err := codec.Decode(ctx, reg, doc)
	if err != nil {
		logger.Error("Some preference entries could not be loaded.", "error", err)
	}
	return store
}

// seedDefaults inserts the registered default for every type the loaded
// document did not provide.
func seedDefaults(ctx context.Context, store *prefmap.Map) {
	logger := ctxlog.FromContext(ctx)
	for _, reg := range store.Registry().Registrations() {
		if store.SetDefault(reg) {
			logger.Debug("Seeded default preference value.", "type", reg.Path.Full)
		}
	}
}

func buildBackend(cfg *Config, docFormat format.Format) (storage.Backend, error) {
	switch cfg.Storage {
	case "none":
		return nil, nil
	case "memory":
		return storage.NewMemoryBackend(), nil
	case "remote":
		return remotestorage.New(remotestorage.Config{
			URL:                cfg.RemoteURL,
			Key:                cfg.fullAppName() + "_preferences",
			Format:             docFormat,
			InsecureSkipVerify: cfg.RemoteInsecureSkipVerify,
		})
	case "", "file":
		parent := cfg.StorageDir
		if parent == "" {
			base, err := os.UserConfigDir()
			if err != nil {
				return nil, fmt.Errorf("resolve user config directory: %w", err)
			}
			parent = base
		}
		return storage.NewFileBackend(filepath.Join(parent, cfg.fullAppName()), docFormat)
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}
