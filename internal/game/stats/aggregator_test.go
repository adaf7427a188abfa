package stats

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statcalc/internal/model"
)

func newTestAggregator(policy model.UnknownStatPolicy) *Aggregator {
	return NewAggregator(DefaultRules(), policy)
}

func TestApply_AdditiveRoundTrip(t *testing.T) {
	agg := newTestAggregator(model.UnknownStatStrict)
	base := model.Snapshot{}.
		With(model.StatAttack, 123.25).
		With(model.StatCritRate, 37.5).
		With(model.StatPrimaryMainStat, 4000)

	tests := []struct {
		stat  model.StatID
		delta float64
	}{
		{model.StatAttack, 17.5},
		{model.StatCritRate, 80}, // crosses the cap and comes back
		{model.StatPrimaryMainStat, 250},
		{model.StatBossDamagePct, 12.75},
		{model.StatAttackSpeed, 400},
	}

	for _, tt := range tests {
		t.Run(tt.stat.String(), func(t *testing.T) {
			up, err := agg.Apply(base, tt.stat, tt.delta)
			require.NoError(t, err)
			back, err := agg.Apply(up, tt.stat, -tt.delta)
			require.NoError(t, err)
			assert.Equal(t, base, back)
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	agg := newTestAggregator(model.UnknownStatStrict)
	base := model.Snapshot{}.With(model.StatAttack, 100)

	next, err := agg.Apply(base, model.StatAttack, 50)
	require.NoError(t, err)

	assert.Equal(t, 100.0, base.Get(model.StatAttack))
	assert.Equal(t, 150.0, next.Get(model.StatAttack))
}

func TestApply_FinalDamageCompounds(t *testing.T) {
	agg := newTestAggregator(model.UnknownStatStrict)

	s, err := agg.Apply(model.Snapshot{}, model.StatFinalDamagePct, 10)
	require.NoError(t, err)
	s, err = agg.Apply(s, model.StatFinalDamagePct, 10)
	require.NoError(t, err)

	assert.InDelta(t, 21.0, s.Get(model.StatFinalDamagePct), 1e-9, "+10%% twice is +21%%")
}

func TestApply_FinalDamageRoundTripIsNotNetZero(t *testing.T) {
	agg := newTestAggregator(model.UnknownStatStrict)

	up, err := agg.Apply(model.Snapshot{}, model.StatFinalDamagePct, 10)
	require.NoError(t, err)
	back, err := agg.Apply(up, model.StatFinalDamagePct, -10)
	require.NoError(t, err)

	// 1.1 × 0.9 = 0.99
	assert.InDelta(t, -1.0, back.Get(model.StatFinalDamagePct), 1e-9)
}

func TestApply_UnknownStatStrict(t *testing.T) {
	agg := newTestAggregator(model.UnknownStatStrict)
	base := model.Snapshot{}.With(model.StatAttack, 100)

	got, err := agg.Apply(base, model.StatID(200), 5)
	require.Error(t, err)

	var unknown *model.UnknownStatError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Stat(200)", unknown.Name)
	assert.Equal(t, base, got)
}

func TestApply_UnknownStatLenient(t *testing.T) {
	agg := newTestAggregator(model.UnknownStatLenient)
	base := model.Snapshot{}.With(model.StatAttack, 100)

	got, err := agg.Apply(base, model.StatCount, 5)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestMerge_EqualsSequentialApply(t *testing.T) {
	agg := newTestAggregator(model.UnknownStatStrict)
	base := model.Snapshot{}.
		With(model.StatAttack, 500).
		With(model.StatFinalDamagePct, 5)

	var x, y model.Delta
	x[model.StatAttack] = 40
	x[model.StatFinalDamagePct] = 10
	x[model.StatCritDamage] = 15
	y[model.StatAttack] = 60
	y[model.StatFinalDamagePct] = 20
	y[model.StatDefPen] = 7

	sequential := agg.ApplyDelta(agg.ApplyDelta(base, x), y)
	merged := agg.ApplyDelta(base, agg.Merge(x, y))

	for _, id := range model.AllStats() {
		assert.InDelta(t, sequential.Get(id), merged.Get(id), 1e-9, id.String())
	}
	assert.InDelta(t, 32.0, agg.Merge(x, y)[model.StatFinalDamagePct], 1e-9)
}

func TestMerge_DoesNotMutateArguments(t *testing.T) {
	agg := newTestAggregator(model.UnknownStatStrict)
	var x, y model.Delta
	x[model.StatAttack] = 1
	y[model.StatAttack] = 2

	_ = agg.Merge(x, y)

	assert.Equal(t, 1.0, x[model.StatAttack])
	assert.Equal(t, 2.0, y[model.StatAttack])
}

func TestRule_Effective(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name string
		stat model.StatID
		raw  float64
		want float64
	}{
		{"attack speed half", model.StatAttackSpeed, 150, 0.5},
		{"attack speed over cap", model.StatAttackSpeed, 1000, 0.5},
		{"attack speed negative", model.StatAttackSpeed, -20, 0},
		{"def pen", model.StatDefPen, 100, 0.5},
		{"def pen quarter", model.StatDefPen, 100.0 / 3, 0.25},
		{"crit rate capped", model.StatCritRate, 130, 100},
		{"crit damage capped", model.StatCritDamage, 900, 500},
		{"damage uncapped", model.StatDamagePct, 900, 900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, rules[tt.stat].Effective(tt.raw), 1e-12)
		})
	}
}

func TestRulesFromConfig_Kinds(t *testing.T) {
	rules := DefaultRules()

	assert.Equal(t, RuleAdditive, rules[model.StatAttack].Kind)
	assert.Equal(t, RuleAdditive, rules[model.StatDefense].Kind)
	assert.Equal(t, RuleAdditive, rules[model.StatSecondaryMainStat].Kind)
	assert.Equal(t, RulePercentage, rules[model.StatCritRate].Kind)
	assert.Equal(t, RuleDiminishing, rules[model.StatAttackSpeed].Kind)
	assert.Equal(t, RuleDiminishing, rules[model.StatDefPen].Kind)
	assert.Equal(t, RuleMultiplicative, rules[model.StatFinalDamagePct].Kind)
	assert.Equal(t, "multiplicative", RuleMultiplicative.String())
}
