package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/statcalc/internal/model"
)

// StatsRepository stores character base stats, one row per non-zero stat.
type StatsRepository struct {
	db *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// Load returns the snapshot of characterID. ok is false when the character
// has no stored stats. Unknown stat names follow policy.
func (r *StatsRepository) Load(ctx context.Context, characterID string, policy model.UnknownStatPolicy) (s model.Snapshot, ok bool, err error) {
	rows, err := r.db.Query(ctx,
		`SELECT stat, value FROM character_stats WHERE character_id = $1`,
		characterID,
	)
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("querying stats for %q: %w", characterID, err)
	}
	defer rows.Close()

	values := make(map[string]float64, model.StatCount)
	for rows.Next() {
		var (
			name string
			v    float64
		)
		if err := rows.Scan(&name, &v); err != nil {
			return model.Snapshot{}, false, fmt.Errorf("scanning stat row: %w", err)
		}
		values[name] = v
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, false, fmt.Errorf("iterating stat rows: %w", err)
	}
	if len(values) == 0 {
		return model.Snapshot{}, false, nil
	}

	s, err = model.SnapshotFromMap(values, policy)
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("stats of %q: %w", characterID, err)
	}
	return s, true, nil
}

// SaveTx replaces the stored stats of characterID with s within an existing
// transaction.
func (r *StatsRepository) SaveTx(ctx context.Context, tx pgx.Tx, characterID string, s model.Snapshot) error {
	if _, err := tx.Exec(ctx, `DELETE FROM character_stats WHERE character_id = $1`, characterID); err != nil {
		return fmt.Errorf("deleting old stats for %q: %w", characterID, err)
	}

	values := s.Map()
	if len(values) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(values))
	for name, v := range values {
		rows = append(rows, []any{characterID, name, v})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"character_stats"},
		[]string{"character_id", "stat", "value"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting stats for %q: %w", characterID, err)
	}
	return nil
}

// Save replaces the stored stats of characterID using a standalone
// transaction.
func (r *StatsRepository) Save(ctx context.Context, characterID string, s model.Snapshot) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := r.SaveTx(ctx, tx, characterID, s); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing stats for %q: %w", characterID, err)
	}

	slog.Debug("saved character stats", "character", characterID, "count", len(s.Map()))
	return nil
}
