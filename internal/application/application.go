// Package application assembles the asset service and its optional audit
// log from configuration. The HTTP server and the operator CLI both start
// through Open.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/assetrepo/internal/asset"
	"github.com/JonMunkholm/assetrepo/internal/audit"
	"github.com/JonMunkholm/assetrepo/internal/config"
	"github.com/JonMunkholm/assetrepo/internal/table"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App holds the running components.
type App struct {
	Config *config.Config
	Store  *table.Store
	Assets *asset.Service
	Audit  *audit.Store // nil when the audit log is disabled

	pool *pgxpool.Pool
}

// Open builds the table store and asset service for cfg. When an audit
// database is configured it connects, ensures the schema and records every
// mutation there. The table's identity columns are checked but missing ones
// are only logged.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Store: table.NewStore(cfg.Store.Path, table.Options{
			SheetName:  cfg.Store.SheetName,
			MaxColumns: cfg.Store.MaxColumns,
			MaxRows:    cfg.Store.MaxRows,
		}),
	}

	var opts []asset.Option
	if cfg.Audit.Enabled() {
		pool, err := audit.Connect(ctx, cfg.Audit)
		if err != nil {
			return nil, err
		}
		store := audit.NewStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		app.pool = pool
		app.Audit = store
		opts = append(opts, asset.WithAuditRecorder(store))
		slog.Info("audit log enabled", "database", databaseName(cfg.Audit.URL))
	}

	app.Assets = asset.NewService(app.Store, opts...)

	if _, err := app.Assets.CheckSchema(ctx); err != nil {
		slog.Warn("asset table not readable at startup", "path", cfg.Store.Path, "error", err)
	}
	return app, nil
}

// StartRetention runs the audit retention job until ctx is cancelled.
// It returns immediately when the audit log is disabled.
func (a *App) StartRetention(ctx context.Context) {
	if a.Audit == nil {
		return
	}
	audit.StartRetention(ctx, a.Audit, audit.RetentionConfig{
		RetentionDays: a.Config.Audit.RetentionDays,
		CheckInterval: a.Config.Audit.CheckInterval,
	})
}

// Close releases the audit connection pool.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

// databaseName returns the database part of a connection URL for logging.
func databaseName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// Describe summarises the store location for log lines and the CLI.
func (a *App) Describe() string {
	return fmt.Sprintf("%s (sheet %s, %d columns)", a.Config.Store.Path, a.Config.Store.SheetName, a.Config.Store.MaxColumns)
}
