package companion_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/udisondev/statcalc/internal/game/companion"
	"github.com/udisondev/statcalc/internal/game/companion/mock_companion"
	"github.com/udisondev/statcalc/internal/game/stats"
	"github.com/udisondev/statcalc/internal/model"
)

var (
	mageEpic      = model.CompanionKey{Class: model.ClassMage, Rarity: model.RarityEpic}
	archerRare    = model.CompanionKey{Class: model.ClassArcher, Rarity: model.RarityRare}
	thiefUnique   = model.CompanionKey{Class: model.ClassThief, Rarity: model.RarityUnique}
	warriorCommon = model.CompanionKey{Class: model.ClassWarrior, Rarity: model.RarityCommon}
)

func bundle(key model.CompanionKey, level int, inv, equip model.StatID, v float64) *model.EffectBundle {
	b := &model.EffectBundle{Key: key, Level: level}
	b.Inventory[inv] = v
	b.Equip[equip] = v * 2
	return b
}

func TestCollect(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_companion.NewMockStore(ctrl)
	lookup := mock_companion.NewMockLookup(ctrl)
	agg := stats.NewAggregator(stats.DefaultRules(), model.UnknownStatStrict)

	store.EXPECT().
		List(gomock.Any()).
		Return(map[model.CompanionKey]model.CompanionState{
			mageEpic:      {Unlocked: true, Level: 3},
			archerRare:    {Unlocked: true, Level: 7},
			thiefUnique:   {Unlocked: false, Level: 1},
			warriorCommon: {Unlocked: true, Level: 99},
		}, nil)

	lookup.EXPECT().
		Lookup(model.ClassMage, model.RarityEpic, 3).
		Return(bundle(mageEpic, 3, model.StatFinalDamagePct, model.StatDamagePct, 10), true)
	lookup.EXPECT().
		Lookup(model.ClassArcher, model.RarityRare, 7).
		Return(bundle(archerRare, 7, model.StatFinalDamagePct, model.StatCritRate, 10), true)
	lookup.EXPECT().
		Lookup(model.ClassWarrior, model.RarityCommon, 99).
		Return(nil, false)

	pool, err := companion.Collect(context.Background(), store, lookup, agg)
	require.NoError(t, err)

	require.Len(t, pool.Companions, 3)
	assert.Equal(t, archerRare, pool.Companions[0].Key)
	assert.Equal(t, mageEpic, pool.Companions[1].Key)
	assert.Equal(t, thiefUnique, pool.Companions[2].Key)
	assert.Nil(t, pool.Companions[2].Bundle)
	assert.Equal(t, 1, pool.Skipped)

	unlocked := pool.Unlocked()
	require.Len(t, unlocked, 2)

	// Final damage inventory effects compound.
	assert.InDelta(t, 21.0, pool.Inventory[model.StatFinalDamagePct], 1e-9)
}

func TestCollect_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mock_companion.NewMockStore(ctrl)
	lookup := mock_companion.NewMockLookup(ctrl)
	boom := errors.New("connection refused")

	store.EXPECT().List(gomock.Any()).Return(nil, boom)

	pool, err := companion.Collect(context.Background(), store, lookup, stats.NewAggregator(stats.DefaultRules(), model.UnknownStatStrict))
	require.ErrorIs(t, err, boom)
	assert.Nil(t, pool)
}

func TestCollect_InvalidKeySkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mock_companion.NewMockLookup(ctrl)
	store := companion.NewMemoryStore(map[model.CompanionKey]model.CompanionState{
		{Class: model.CompanionClass(42), Rarity: model.RarityEpic}: {Unlocked: true, Level: 1},
	})

	pool, err := companion.Collect(context.Background(), store, lookup, stats.NewAggregator(stats.DefaultRules(), model.UnknownStatStrict))
	require.NoError(t, err)

	assert.Empty(t, pool.Companions)
	assert.Equal(t, 1, pool.Skipped)
	assert.True(t, pool.Inventory.IsZero())
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	seed := map[model.CompanionKey]model.CompanionState{mageEpic: {Unlocked: true, Level: 2}}
	s := companion.NewMemoryStore(seed)

	seed[archerRare] = model.CompanionState{Unlocked: true}
	_, ok, err := s.Get(ctx, archerRare)
	require.NoError(t, err)
	assert.False(t, ok, "store must not alias the seed map")

	require.NoError(t, s.Put(ctx, archerRare, model.CompanionState{Unlocked: true, Level: 5}))

	st, ok, err := s.Get(ctx, archerRare)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, st.Level)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	delete(all, mageEpic)
	_, ok, _ = s.Get(ctx, mageEpic)
	assert.True(t, ok, "List must return a copy")
}
