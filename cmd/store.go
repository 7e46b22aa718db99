package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/leopoldtraeger-ctrl/Estate-AI/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "estateai.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return initPostgres(ctx)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPostgres is used directly by the analytics commands, which need the
// underlying pool rather than the Store interface.
func initPostgres(ctx context.Context) (*store.PostgresStore, error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, eris.New("store.database_url is required for the postgres driver (ESTATEAI_STORE_DATABASE_URL)")
	}
	return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
}
