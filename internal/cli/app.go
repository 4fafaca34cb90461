// Package cli wires configuration, logging, theming, and storage for the
// command-line entry points.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/bnema/lumiere/internal/build"
	"github.com/bnema/lumiere/internal/cli/styles"
	"github.com/bnema/lumiere/internal/config"
	"github.com/bnema/lumiere/internal/db"
	"github.com/bnema/lumiere/internal/history"
	"github.com/bnema/lumiere/internal/logging"
)

// App carries the shared state every command needs: loaded configuration,
// the terminal theme, build metadata, and a lazily opened history store.
type App struct {
	Config    *config.Config
	Theme     *styles.Theme
	BuildInfo build.Info

	ctx context.Context

	dbOnce   sync.Once
	dbErr    error
	database *sql.DB
	store    *history.Store
}

// NewApp loads configuration and sets up the logger and theme. The history
// database is not opened until a command asks for it.
func NewApp() (*App, error) {
	if err := config.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize configuration: %w", err)
	}
	cfg := config.Get()

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.Logging.Level)
	logCfg.Format = cfg.Logging.Format
	logger := logging.New(logCfg)

	ctx := logging.WithContext(context.Background(), logger)

	return &App{
		Config: cfg,
		Theme:  styles.NewTheme(cfg),
		ctx:    ctx,
	}, nil
}

// Ctx returns the application context carrying the configured logger.
func (a *App) Ctx() context.Context {
	return a.ctx
}

// History opens the playback history store, creating the database and
// applying migrations on first use.
func (a *App) History() (*history.Store, error) {
	a.dbOnce.Do(func() {
		database, err := db.InitDB(a.Config.Database.Path)
		if err != nil {
			a.dbErr = fmt.Errorf("failed to open history database: %w", err)
			return
		}
		a.database = database
		a.store = history.NewStore(database)
	})
	if a.dbErr != nil {
		return nil, a.dbErr
	}
	return a.store, nil
}

// Close releases resources held by the app.
func (a *App) Close() {
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			logging.FromContext(a.ctx).Warn().Err(err).Msg("failed to close history database")
		}
		a.database = nil
		a.store = nil
	}
}
