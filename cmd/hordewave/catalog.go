package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/hordewave/internal/catalog"
	"github.com/udisondev/hordewave/internal/config"
)

// catalogStore is the database side of the catalog. db.CatalogRepository implements it.
type catalogStore interface {
	LoadAll(ctx context.Context) (*catalog.Catalog, error)
	Sync(ctx context.Context, cat *catalog.Catalog) (bool, error)
}

var errNoStore = errors.New("catalog requires a database")

// loadCatalog loads monster definitions from the configured source. A file
// catalog is written to the store when Sync is set and the stored
// fingerprint differs.
func loadCatalog(ctx context.Context, cfg config.Catalog, store catalogStore) (*catalog.Catalog, error) {
	switch cfg.Source {
	case config.CatalogSourceDatabase:
		if store == nil {
			return nil, errNoStore
		}
		cat, err := store.LoadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading catalog from database: %w", err)
		}
		if cat.Len() == 0 {
			slog.Warn("monster catalog in database is empty, waves will not start")
		}
		return cat, nil

	default:
		cat, err := catalog.LoadFile(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		if !cfg.Sync {
			return cat, nil
		}
		if store == nil {
			return nil, errNoStore
		}
		written, err := store.Sync(ctx, cat)
		if err != nil {
			return nil, fmt.Errorf("syncing catalog to database: %w", err)
		}
		slog.Info("monster catalog synced", "written", written)
		return cat, nil
	}
}
