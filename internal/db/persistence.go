package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/statcalc/internal/model"
)

// CharacterPersistenceService saves the stats and companions of a character
// in a single transaction.
type CharacterPersistenceService struct {
	pool      *pgxpool.Pool
	statsRepo *StatsRepository
}

// NewCharacterPersistenceService creates a new service.
func NewCharacterPersistenceService(pool *pgxpool.Pool) *CharacterPersistenceService {
	return &CharacterPersistenceService{
		pool:      pool,
		statsRepo: NewStatsRepository(pool),
	}
}

// SaveCharacter replaces the stored stats and companions of characterID.
// Either everything is saved or nothing is.
func (s *CharacterPersistenceService) SaveCharacter(
	ctx context.Context,
	characterID string,
	stats model.Snapshot,
	companions map[model.CompanionKey]model.CompanionState,
) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for character %q: %w", characterID, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("rollback failed", "character", characterID, "error", err)
		}
	}()

	if err := s.statsRepo.SaveTx(ctx, tx, characterID, stats); err != nil {
		return fmt.Errorf("saving stats for character %q: %w", characterID, err)
	}

	companionRepo := NewCompanionRepository(s.pool, characterID)
	if err := companionRepo.SaveAllTx(ctx, tx, companions); err != nil {
		return fmt.Errorf("saving companions for character %q: %w", characterID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for character %q: %w", characterID, err)
	}

	slog.Info("character data saved",
		"character", characterID,
		"stats", len(stats.Map()),
		"companions", len(companions))

	return nil
}
