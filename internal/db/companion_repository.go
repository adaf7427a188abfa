package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/statcalc/internal/model"
)

// CompanionRepository stores the companion progress of one character.
// It implements companion.Store.
type CompanionRepository struct {
	db          *pgxpool.Pool
	characterID string
}

// NewCompanionRepository creates a CompanionRepository for characterID.
func NewCompanionRepository(db *pgxpool.Pool, characterID string) *CompanionRepository {
	return &CompanionRepository{db: db, characterID: characterID}
}

// Get returns the state of key. ok is false when no row exists.
func (r *CompanionRepository) Get(ctx context.Context, key model.CompanionKey) (model.CompanionState, bool, error) {
	var st model.CompanionState
	err := r.db.QueryRow(ctx,
		`SELECT unlocked, level FROM companions WHERE character_id = $1 AND companion_key = $2`,
		r.characterID, key.String(),
	).Scan(&st.Unlocked, &st.Level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.CompanionState{}, false, nil
		}
		return model.CompanionState{}, false, fmt.Errorf("querying companion %s: %w", key, err)
	}
	return st, true, nil
}

// List returns every stored companion of the character. Rows with keys that
// no longer parse are skipped.
func (r *CompanionRepository) List(ctx context.Context) (map[model.CompanionKey]model.CompanionState, error) {
	rows, err := r.db.Query(ctx,
		`SELECT companion_key, unlocked, level FROM companions WHERE character_id = $1 ORDER BY companion_key`,
		r.characterID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying companions for %q: %w", r.characterID, err)
	}
	defer rows.Close()

	result := make(map[model.CompanionKey]model.CompanionState, 25)
	for rows.Next() {
		var (
			name string
			st   model.CompanionState
		)
		if err := rows.Scan(&name, &st.Unlocked, &st.Level); err != nil {
			return nil, fmt.Errorf("scanning companion row: %w", err)
		}
		key, err := model.ParseCompanionKey(name)
		if err != nil {
			slog.Debug("skipping stored companion", "key", name, "error", err)
			continue
		}
		result[key] = st
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating companion rows: %w", err)
	}
	return result, nil
}

// Put inserts or updates the state of key.
func (r *CompanionRepository) Put(ctx context.Context, key model.CompanionKey, state model.CompanionState) error {
	query := `
		INSERT INTO companions (character_id, companion_key, unlocked, level)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (character_id, companion_key) DO UPDATE
		SET unlocked = EXCLUDED.unlocked, level = EXCLUDED.level
	`
	if _, err := r.db.Exec(ctx, query, r.characterID, key.String(), state.Unlocked, state.Level); err != nil {
		return fmt.Errorf("saving companion %s for %q: %w", key, r.characterID, err)
	}
	return nil
}

// SaveAllTx replaces every stored companion of the character with states
// within an existing transaction.
func (r *CompanionRepository) SaveAllTx(ctx context.Context, tx pgx.Tx, states map[model.CompanionKey]model.CompanionState) error {
	if _, err := tx.Exec(ctx, `DELETE FROM companions WHERE character_id = $1`, r.characterID); err != nil {
		return fmt.Errorf("deleting companions for %q: %w", r.characterID, err)
	}
	if len(states) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(states))
	for key, st := range states {
		rows = append(rows, []any{r.characterID, key.String(), st.Unlocked, st.Level})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"companions"},
		[]string{"character_id", "companion_key", "unlocked", "level"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting companions for %q: %w", r.characterID, err)
	}
	return nil
}
