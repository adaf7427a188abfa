package combat

import (
	"math"

	"github.com/udisondev/statcalc/internal/config"
	"github.com/udisondev/statcalc/internal/game/stats"
	"github.com/udisondev/statcalc/internal/model"
)

// DefenseProvider supplies the target defense (percent damage reduction,
// 0..100) of the selected content for a monster type.
type DefenseProvider interface {
	TargetDefense(m model.MonsterType) float64
}

// FixedDefense is a DefenseProvider with one value per monster type.
type FixedDefense struct {
	Boss   float64
	Normal float64
}

// TargetDefense implements DefenseProvider.
func (f FixedDefense) TargetDefense(m model.MonsterType) float64 {
	if m == model.MonsterNormal {
		return f.Normal
	}
	return f.Boss
}

// Breakdown is the DPS formula split into its folded factors.
// DPS is the product of Hit and the trailing factors, in field order.
type Breakdown struct {
	Attack        float64 // Attack × (1 + AttackPct)
	StatDamagePct float64 // StatDamagePct + main stat contribution
	DamageFactor  float64 // (1 + Damage%) × (1 + DamageAmp)
	TypeFactor    float64 // 1 + Boss% or Normal%
	SkillFactor   float64
	RangeFactor   float64 // average of min/max damage multipliers
	DefenseFactor float64
	Hit           float64
	CritFactor    float64
	SpeedFactor   float64
	FinalFactor   float64
	DPS           float64
}

// DPSModel folds a snapshot into a DPS number.
type DPSModel struct {
	agg     *stats.Aggregator
	cfg     config.DPS
	defense DefenseProvider
}

// NewDPSModel creates a DPSModel. A nil defense means zero target defense.
func NewDPSModel(agg *stats.Aggregator, cfg config.DPS, defense DefenseProvider) *DPSModel {
	if defense == nil {
		defense = FixedDefense{}
	}
	return &DPSModel{agg: agg, cfg: cfg, defense: defense}
}

// Aggregator returns the aggregator whose rules the model folds with.
func (m *DPSModel) Aggregator() *stats.Aggregator {
	return m.agg
}

// Config returns the damage formula constants.
func (m *DPSModel) Config() config.DPS {
	return m.cfg
}

// TargetDefense returns the defense used against monster, clamped to 0..100.
func (m *DPSModel) TargetDefense(monster model.MonsterType) float64 {
	return clamp(m.defense.TargetDefense(monster), 0, 100)
}

// WithDefense returns a copy of the model using another defense provider.
func (m *DPSModel) WithDefense(defense DefenseProvider) *DPSModel {
	cp := *m
	if defense == nil {
		defense = FixedDefense{}
	}
	cp.defense = defense
	return &cp
}

// Compute returns the DPS of s against monster.
// Degenerate snapshots (zero attack, all stats zero) return 0.
func (m *DPSModel) Compute(s model.Snapshot, monster model.MonsterType) float64 {
	return m.Breakdown(s, monster).DPS
}

// Gain returns the DPS gain of next over base in percent.
// ok is false when the base DPS is zero and no gain can be expressed.
func (m *DPSModel) Gain(base, next model.Snapshot, monster model.MonsterType) (pct float64, ok bool) {
	baseDPS := m.Compute(base, monster)
	if baseDPS <= 0 {
		return 0, false
	}
	return (m.Compute(next, monster) - baseDPS) / baseDPS * 100, true
}

// Breakdown computes every factor of the DPS formula.
//
// Folding order:
//
//	hit  = Attack × (1 + AttackPct)
//	hit ×= 1 + StatDamage, StatDamage = StatDamagePct + mainStat/MainStatPerPercent
//	hit ×= (1 + Damage%) × (1 + DamageAmp) × (1 + Boss%|Normal%) × (1 + SkillCoef)
//	hit ×= avg(1 + min, 1 + max), min = MinDamage + Mastery
//	hit ×= 1 - defense × (1 - DefPen_dr)
//	dps  = hit × crit expectation × hitsPerSecond × (1 + AttackSpeed_dr)
//	dps ×= 1 + FinalDamage (always last)
//
// Capped stats are clamped before folding, so increments beyond a cap change
// nothing.
func (m *DPSModel) Breakdown(s model.Snapshot, monster model.MonsterType) Breakdown {
	var b Breakdown
	rule := m.agg.Rule

	b.Attack = nonNeg(s[model.StatAttack]) * factor(rule(model.StatAttackPct).Effective(s[model.StatAttackPct]))

	mainStat := nonNeg(s[model.StatPrimaryMainStat]) * factor(s[model.StatMainStatPct])
	b.StatDamagePct = rule(model.StatStatDamagePct).Effective(s[model.StatStatDamagePct])
	if m.cfg.MainStatPerPercent > 0 {
		b.StatDamagePct += mainStat / m.cfg.MainStatPerPercent
	}

	b.DamageFactor = factor(s[model.StatDamagePct]) * factor(s[model.StatDamageAmp])
	typeStat := model.TypeDamageStat(monster)
	b.TypeFactor = factor(rule(typeStat).Effective(s[typeStat]))
	b.SkillFactor = factor(s[model.StatSkillCoefficientPct])

	minRule := rule(model.StatMinDamagePct)
	minDmg := minRule.Clamp(s[model.StatMinDamagePct] + s[model.StatMasteryPct])
	maxDmg := rule(model.StatMaxDamagePct).Clamp(s[model.StatMaxDamagePct])
	b.RangeFactor = (factor(minDmg) + factor(maxDmg)) / 2

	pen := rule(model.StatDefPen).Effective(s[model.StatDefPen])
	defense := m.TargetDefense(monster)
	b.DefenseFactor = nonNeg(1 - defense/100*(1-pen))

	b.Hit = b.Attack * factor(b.StatDamagePct) * b.DamageFactor * b.TypeFactor *
		b.SkillFactor * b.RangeFactor * b.DefenseFactor

	critRate := rule(model.StatCritRate).Clamp(s[model.StatCritRate]) / 100
	critDamage := rule(model.StatCritDamage).Clamp(s[model.StatCritDamage])
	b.CritFactor = critRate*factor(critDamage) + (1 - critRate)

	hitsPerSecond := m.cfg.BaseHitsPerSecond
	if hitsPerSecond <= 0 {
		hitsPerSecond = 1
	}
	b.SpeedFactor = hitsPerSecond * (1 + rule(model.StatAttackSpeed).Effective(s[model.StatAttackSpeed]))

	b.FinalFactor = factor(s[model.StatFinalDamagePct])

	dps := b.Hit * b.CritFactor * b.SpeedFactor
	dps *= b.FinalFactor
	if math.IsNaN(dps) || math.IsInf(dps, 0) || dps < 0 {
		dps = 0
	}
	b.DPS = dps
	return b
}

// factor converts a percent bonus into a multiplier, floored at 0.
func factor(pct float64) float64 {
	return nonNeg(1 + pct/100)
}

func nonNeg(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
