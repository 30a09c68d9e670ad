package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/hordewave/internal/catalog"
	"github.com/udisondev/hordewave/internal/model"
)

// CatalogRepository stores the monster catalog.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// LoadAll loads the catalog in its stored order.
// Returns an empty catalog when the table is empty.
func (r *CatalogRepository) LoadAll(ctx context.Context) (*catalog.Catalog, error) {
	query := `
		SELECT monster_type, template, base_hp, base_damage, base_speed, spawn_interval,
		       mul_hp, mul_damage, mul_speed, mul_spawn_interval
		FROM monsters
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading monsters: %w", err)
	}
	defer rows.Close()

	defs := make([]model.MonsterDefinition, 0, 16)

	for rows.Next() {
		var (
			def     model.MonsterDefinition
			typeStr string
		)

		if err := rows.Scan(
			&typeStr, &def.Template,
			&def.Base.HP, &def.Base.Damage, &def.Base.Speed, &def.SpawnInterval,
			&def.Multipliers.HP, &def.Multipliers.Damage, &def.Multipliers.Speed, &def.Multipliers.SpawnInterval,
		); err != nil {
			return nil, fmt.Errorf("scanning monster row: %w", err)
		}
		def.Type = model.MonsterType(typeStr)

		defs = append(defs, def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating monster rows: %w", err)
	}

	cat, err := catalog.New(defs)
	if err != nil {
		return nil, fmt.Errorf("building catalog from database: %w", err)
	}
	return cat, nil
}

// Fingerprint returns the fingerprint of the stored catalog, or "" if the
// catalog was never written.
func (r *CatalogRepository) Fingerprint(ctx context.Context) (string, error) {
	var fp string
	err := r.pool.QueryRow(ctx, `SELECT fingerprint FROM catalog_meta WHERE id = 1`).Scan(&fp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("querying catalog fingerprint: %w", err)
	}
	return fp, nil
}

// ReplaceAll replaces the stored catalog in a single transaction.
func (r *CatalogRepository) ReplaceAll(ctx context.Context, cat *catalog.Catalog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM monsters`); err != nil {
		return fmt.Errorf("deleting old monsters: %w", err)
	}

	defs := cat.Definitions()
	if len(defs) > 0 {
		rows := make([][]any, 0, len(defs))
		for i, d := range defs {
			rows = append(rows, []any{
				int32(i), d.Type.String(), d.Template,
				model.ClampStat(d.Base.HP), model.ClampStat(d.Base.Damage), d.Base.Speed, d.SpawnInterval,
				d.Multipliers.HP, d.Multipliers.Damage, d.Multipliers.Speed, d.Multipliers.SpawnInterval,
			})
		}

		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"monsters"},
			[]string{
				"position", "monster_type", "template",
				"base_hp", "base_damage", "base_speed", "spawn_interval",
				"mul_hp", "mul_damage", "mul_speed", "mul_spawn_interval",
			},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("inserting monsters: %w", err)
		}
	}

	fp := cat.Fingerprint()
	if _, err := tx.Exec(ctx, `
		INSERT INTO catalog_meta (id, fingerprint, updated_at)
		VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET fingerprint = EXCLUDED.fingerprint, updated_at = EXCLUDED.updated_at
	`, fp); err != nil {
		return fmt.Errorf("saving catalog fingerprint: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing catalog: %w", err)
	}

	slog.Info("monster catalog stored",
		"monsters", len(defs),
		"fingerprint", fp)

	return nil
}

// Sync writes cat only if its fingerprint differs from the stored one.
// Reports whether anything was written.
func (r *CatalogRepository) Sync(ctx context.Context, cat *catalog.Catalog) (bool, error) {
	stored, err := r.Fingerprint(ctx)
	if err != nil {
		return false, err
	}
	if stored == cat.Fingerprint() {
		slog.Debug("monster catalog up to date", "fingerprint", stored)
		return false, nil
	}
	if err := r.ReplaceAll(ctx, cat); err != nil {
		return false, err
	}
	return true, nil
}
