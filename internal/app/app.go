package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dori/checkmark/internal/config"
	"github.com/dori/checkmark/internal/db"
	"github.com/dori/checkmark/internal/logging"
	"github.com/dori/checkmark/internal/notify"
	"github.com/dori/checkmark/internal/snapshot"
	"github.com/dori/checkmark/internal/store"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// App holds the application state and dependencies
type App struct {
	Config   *config.Config
	Store    *store.Store
	Notifier *notify.Notifier
	Log      *zap.Logger

	db       *db.DB
	lockFile *flock.Flock
}

// Options controls how New wires the application
type Options struct {
	// Interactive takes the single-instance lock and logs to a file
	// instead of the console, since the TUI owns the terminal.
	Interactive bool
	// Console receives log lines in non-interactive mode; nil means stderr
	Console io.Writer
}

// New creates a new application instance and loads the stored tasks
func New(cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.FromEnv()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config:   cfg,
		Notifier: notify.NewNotifier(cfg.Notify),
	}

	if opts.Interactive {
		app.Log = logging.New(logging.FileConfig(cfg.LogPath(), cfg.LogLevel), nil)
		if err := app.acquireLock(); err != nil {
			return nil, err
		}
	} else {
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		app.Log = logging.New(logging.Config{Level: consoleLevel(cfg.LogLevel)}, console)
	}

	persister, err := app.openBackend()
	if err != nil {
		app.releaseLock()
		return nil, err
	}

	app.Store = store.New(
		store.WithPersister(persister),
		store.WithLogger(app.Log.Named("store")),
	)
	app.Store.Load(context.Background())

	if cfg.Theme != "" {
		if dark := cfg.Theme == "dark"; dark != app.Store.View().DarkMode {
			app.Store.ToggleTheme()
		}
	}
	app.Store.SetFilter(cfg.Filter)
	app.Store.SetSort(cfg.Sort)

	app.Log.Info("application started",
		zap.String("backend", string(cfg.Backend)),
		zap.String("data_dir", cfg.DataDir),
		zap.Int("tasks", app.Store.Len()),
	)
	return app, nil
}

// consoleLevel keeps info chatter off the terminal: levels below warn are
// raised to warn, except debug which is passed through.
func consoleLevel(level string) string {
	l := logging.ParseLevel(level)
	if l == zapcore.DebugLevel || l >= zapcore.WarnLevel {
		return l.String()
	}
	return zapcore.WarnLevel.String()
}

func (a *App) openBackend() (store.Persister, error) {
	switch a.Config.Backend {
	case config.BackendJSON:
		return snapshot.NewFile(a.Config.JSONPath()), nil
	default:
		database, err := db.Open(a.Config.DBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		a.db = database
		return database, nil
	}
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	a.lockFile = flock.New(a.Config.LockPath())

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of checkmark is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// NotifyOverdue sends a desktop reminder for overdue tasks. Failures are
// logged only.
func (a *App) NotifyOverdue(now time.Time) {
	if err := a.Notifier.SendOverdue(a.Store.Tasks(), now); err != nil {
		a.Log.Warn("failed to send overdue notification", zap.Error(err))
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()
	if a.Log != nil {
		_ = a.Log.Sync()
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
