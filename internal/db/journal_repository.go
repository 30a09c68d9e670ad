package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/hordewave/internal/model"
	"github.com/udisondev/hordewave/internal/spawn"
)

// JournalRepository persists spawn records. Implements spawn.Journal.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new spawn journal repository
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

var journalColumns = []string{
	"object_id", "session_id", "sequence", "monster_type", "wave", "elapsed",
	"hp", "damage", "speed", "degraded", "x", "y", "z", "spawned_at",
}

// RecordBatch bulk-inserts records via COPY.
func (r *JournalRepository) RecordBatch(ctx context.Context, records []spawn.Record) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{
			int64(rec.ObjectID), int64(rec.SessionID), int64(rec.Sequence),
			rec.MonsterType.String(), int32(rec.Wave), rec.Elapsed,
			model.ClampStat(rec.HP), model.ClampStat(rec.Damage), rec.Speed, rec.Degraded,
			rec.Position.X, rec.Position.Y, rec.Position.Z,
			rec.SpawnedAt,
		})
	}

	if _, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"spawn_journal"},
		journalColumns,
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("inserting %d spawn records: %w", len(records), err)
	}
	return nil
}

// CountByType returns number of journaled spawns per monster type.
func (r *JournalRepository) CountByType(ctx context.Context) (map[model.MonsterType]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT monster_type, count(*)
		FROM spawn_journal
		GROUP BY monster_type
	`)
	if err != nil {
		return nil, fmt.Errorf("counting spawn records: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.MonsterType]int64)
	for rows.Next() {
		var (
			typeStr string
			n       int64
		)
		if err := rows.Scan(&typeStr, &n); err != nil {
			return nil, fmt.Errorf("scanning spawn count row: %w", err)
		}
		counts[model.MonsterType(typeStr)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn count rows: %w", err)
	}
	return counts, nil
}

// SessionRecords returns the records of one session ordered by sequence.
func (r *JournalRepository) SessionRecords(ctx context.Context, sessionID uint64) ([]spawn.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT object_id, session_id, sequence, monster_type, wave, elapsed,
		       hp, damage, speed, degraded, x, y, z, spawned_at
		FROM spawn_journal
		WHERE session_id = $1
		ORDER BY sequence
	`, int64(sessionID))
	if err != nil {
		return nil, fmt.Errorf("loading session %d: %w", sessionID, err)
	}
	defer rows.Close()

	var out []spawn.Record
	for rows.Next() {
		var (
			rec                         spawn.Record
			objectID, session, sequence int64
			typeStr                     string
			wave, hp, damage            int32
		)
		if err := rows.Scan(
			&objectID, &session, &sequence, &typeStr, &wave, &rec.Elapsed,
			&hp, &damage, &rec.Speed, &rec.Degraded,
			&rec.Position.X, &rec.Position.Y, &rec.Position.Z, &rec.SpawnedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning spawn record: %w", err)
		}
		rec.ObjectID = uint32(objectID)
		rec.SessionID = uint64(session)
		rec.Sequence = uint64(sequence)
		rec.MonsterType = model.MonsterType(typeStr)
		rec.Wave = int(wave)
		rec.HP = int(hp)
		rec.Damage = int(damage)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn records: %w", err)
	}
	return out, nil
}
