package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statcalc/internal/model"
)

func TestCharacterPersistenceService_SaveCharacter(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	svc := NewCharacterPersistenceService(pool)

	mage := model.CompanionKey{Class: model.ClassMage, Rarity: model.RarityEpic}
	thief := model.CompanionKey{Class: model.ClassThief, Rarity: model.RarityCommon}
	stats := model.Snapshot{}.With(model.StatAttack, 900).With(model.StatDefPen, 20)

	require.NoError(t, svc.SaveCharacter(ctx, "main", stats, map[model.CompanionKey]model.CompanionState{
		mage:  {Unlocked: true, Level: 5},
		thief: {Unlocked: false, Level: 1},
	}))

	got, ok, err := NewStatsRepository(pool).Load(ctx, "main", model.UnknownStatStrict)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stats, got)

	companions, err := NewCompanionRepository(pool, "main").List(ctx)
	require.NoError(t, err)
	assert.Len(t, companions, 2)
	assert.Equal(t, model.CompanionState{Unlocked: true, Level: 5}, companions[mage])

	// A second save replaces both stats and companions.
	require.NoError(t, svc.SaveCharacter(ctx, "main", model.Snapshot{}.With(model.StatAttack, 1), map[model.CompanionKey]model.CompanionState{
		thief: {Unlocked: true, Level: 2},
	}))

	companions, err = NewCompanionRepository(pool, "main").List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[model.CompanionKey]model.CompanionState{thief: {Unlocked: true, Level: 2}}, companions)

	got, _, err = NewStatsRepository(pool).Load(ctx, "main", model.UnknownStatStrict)
	require.NoError(t, err)
	assert.Equal(t, model.Snapshot{}.With(model.StatAttack, 1), got)
}

func TestCharacterPersistenceService_Empty(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewCharacterPersistenceService(pool).SaveCharacter(ctx, "empty", model.Snapshot{}, nil))

	_, ok, err := NewStatsRepository(pool).Load(ctx, "empty", model.UnknownStatStrict)
	require.NoError(t, err)
	assert.False(t, ok)
}
