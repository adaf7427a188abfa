package stats

import (
	"github.com/udisondev/statcalc/internal/config"
	"github.com/udisondev/statcalc/internal/model"
)

// RuleKind defines how a delta combines with an existing stat value.
type RuleKind uint8

const (
	// RuleAdditive: new = old + delta (Attack, main stats).
	RuleAdditive RuleKind = iota
	// RulePercentage: new = old + delta, capped at Max when folded into DPS.
	RulePercentage
	// RuleDiminishing: raw accumulates additively, its DPS contribution
	// saturates as min(raw, Max) / (min(raw, Max) + Denominator).
	RuleDiminishing
	// RuleMultiplicative: (1 + old/100) × (1 + delta/100) - 1, in percent.
	RuleMultiplicative
)

func (k RuleKind) String() string {
	switch k {
	case RuleAdditive:
		return "additive"
	case RulePercentage:
		return "percentage"
	case RuleDiminishing:
		return "diminishing"
	case RuleMultiplicative:
		return "multiplicative"
	default:
		return "unknown"
	}
}

// Rule is the combination rule of one stat.
type Rule struct {
	Kind RuleKind
	// Max caps the folded value. Zero means uncapped.
	Max float64
	// Denominator of the saturation curve (RuleDiminishing only).
	Denominator float64
}

// Combine returns old combined with delta.
// The stored value is never clamped, so additive and percentage stats
// round-trip exactly; caps apply in Effective.
func (r Rule) Combine(old, delta float64) float64 {
	if r.Kind == RuleMultiplicative {
		return ((1+old/100)*(1+delta/100) - 1) * 100
	}
	return old + delta
}

// Clamp bounds a raw value to [0, Max] for capped rules.
// Uncapped values are returned unchanged.
func (r Rule) Clamp(raw float64) float64 {
	if r.Max <= 0 {
		return raw
	}
	if raw < 0 {
		return 0
	}
	if raw > r.Max {
		return r.Max
	}
	return raw
}

// Effective returns the value that participates in the DPS formula.
// Diminishing stats return the saturation ratio in [0, 1).
func (r Rule) Effective(raw float64) float64 {
	v := r.Clamp(raw)
	if r.Kind != RuleDiminishing {
		return v
	}
	if v <= 0 || r.Denominator <= 0 {
		return 0
	}
	return v / (v + r.Denominator)
}

// Rules maps every stat to its combination rule.
type Rules [model.StatCount]Rule

// RulesFromConfig builds the rule table from the DPS caps.
func RulesFromConfig(cfg config.DPS) Rules {
	var r Rules // zero value: every stat additive and uncapped

	for _, id := range []model.StatID{
		model.StatAttackPct,
		model.StatMainStatPct,
		model.StatStatDamagePct,
		model.StatDamagePct,
		model.StatDamageAmp,
		model.StatBossDamagePct,
		model.StatNormalDamagePct,
		model.StatSkillCoefficientPct,
		model.StatMasteryPct,
	} {
		r[id] = Rule{Kind: RulePercentage}
	}

	r[model.StatCritRate] = Rule{Kind: RulePercentage, Max: cfg.CritRateMax}
	r[model.StatCritDamage] = Rule{Kind: RulePercentage, Max: cfg.CritDamageMax}
	r[model.StatMinDamagePct] = Rule{Kind: RulePercentage, Max: cfg.MinDamageMax}
	r[model.StatMaxDamagePct] = Rule{Kind: RulePercentage, Max: cfg.MaxDamageMax}

	r[model.StatAttackSpeed] = Rule{Kind: RuleDiminishing, Max: cfg.AttackSpeedCap, Denominator: cfg.AttackSpeedDenominator}
	r[model.StatDefPen] = Rule{Kind: RuleDiminishing, Max: cfg.DefPenCap, Denominator: cfg.DefPenDenominator}

	r[model.StatFinalDamagePct] = Rule{Kind: RuleMultiplicative}

	return r
}

// DefaultRules returns the rules for the default DPS config.
func DefaultRules() Rules {
	return RulesFromConfig(config.DefaultCalculator().DPS)
}
