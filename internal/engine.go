package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/bidinote/internal/index"
	"github.com/starford/bidinote/internal/noteservice"
	"github.com/starford/bidinote/internal/storage"
	"github.com/starford/bidinote/internal/vault"
)

// Engine bundles the opened index with the note service built on it.
type Engine struct {
	DB      *index.DB
	Service *noteservice.Service
	Syncer  *vault.Syncer
}

// OpenEngine opens the SQLite index and builds the note service from the
// engine section of cfg. Extra options are applied after the configured ones.
// When a vault is configured, Syncer is set but no sync is run.
func OpenEngine(cfg *Config, logger *slog.Logger, opts ...noteservice.Option) (*Engine, error) {
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	svcOpts := append([]noteservice.Option{
		noteservice.WithSuggestionLimit(cfg.Engine.SuggestionLimit),
		noteservice.WithGraphDefaults(cfg.Engine.GraphDepth, cfg.Engine.DegreeThreshold),
	}, opts...)
	svc := noteservice.NewService(db, logger, svcOpts...)

	e := &Engine{DB: db, Service: svc}
	if cfg.Vault.Enabled() {
		if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
			db.Close()
			return nil, fmt.Errorf("create vault dir: %w", err)
		}
		store, err := storage.NewFS(cfg.Vault.Path)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("init storage: %w", err)
		}
		e.Syncer = vault.NewSyncer(db, svc, store, logger)
	}
	return e, nil
}

// Sync imports the vault if one is configured. Failures are logged, not returned.
func (e *Engine) Sync(ctx context.Context, logger *slog.Logger) {
	if e.Syncer == nil {
		return
	}
	if err := e.Syncer.Sync(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
}

// Close releases the index.
func (e *Engine) Close() error {
	return e.DB.Close()
}
