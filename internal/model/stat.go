package model

import (
	"fmt"
	"strings"
)

// StatID identifies a named character stat.
type StatID uint8

const (
	StatAttack StatID = iota
	StatAttackPct
	StatDefense
	StatCritRate
	StatCritDamage
	StatAttackSpeed
	StatPrimaryMainStat
	StatSecondaryMainStat
	StatMainStatPct
	StatStatDamagePct
	StatDamagePct
	StatDamageAmp
	StatDefPen
	StatBossDamagePct
	StatNormalDamagePct
	StatMinDamagePct
	StatMaxDamagePct
	StatFinalDamagePct
	StatSkillCoefficientPct
	StatMasteryPct

	// StatCount is the number of known stats. Not a stat itself.
	StatCount
)

var statNames = [StatCount]string{
	StatAttack:              "Attack",
	StatAttackPct:           "AttackPct",
	StatDefense:             "Defense",
	StatCritRate:            "CritRate",
	StatCritDamage:          "CritDamage",
	StatAttackSpeed:         "AttackSpeed",
	StatPrimaryMainStat:     "PrimaryMainStat",
	StatSecondaryMainStat:   "SecondaryMainStat",
	StatMainStatPct:         "MainStatPct",
	StatStatDamagePct:       "StatDamagePct",
	StatDamagePct:           "DamagePct",
	StatDamageAmp:           "DamageAmp",
	StatDefPen:              "DefPen",
	StatBossDamagePct:       "BossDamagePct",
	StatNormalDamagePct:     "NormalDamagePct",
	StatMinDamagePct:        "MinDamagePct",
	StatMaxDamagePct:        "MaxDamagePct",
	StatFinalDamagePct:      "FinalDamagePct",
	StatSkillCoefficientPct: "SkillCoefficientPct",
	StatMasteryPct:          "MasteryPct",
}

// Valid reports whether s is a known stat.
func (s StatID) Valid() bool {
	return s < StatCount
}

// String returns the canonical stat name used in configs and reports.
func (s StatID) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stat(%d)", uint8(s))
	}
	return statNames[s]
}

// AllStats returns every known stat in declaration order.
func AllStats() []StatID {
	ids := make([]StatID, 0, StatCount)
	for id := StatID(0); id < StatCount; id++ {
		ids = append(ids, id)
	}
	return ids
}

// ParseStat resolves a stat name (case-insensitive).
// Returns *UnknownStatError for names that are not known stats.
func ParseStat(name string) (StatID, error) {
	trimmed := strings.TrimSpace(name)
	for id, n := range statNames {
		if strings.EqualFold(n, trimmed) {
			return StatID(id), nil
		}
	}
	return 0, &UnknownStatError{Name: name}
}

// UnknownStatError is returned when a stat identifier is not recognised.
type UnknownStatError struct {
	Name string
}

func (e *UnknownStatError) Error() string {
	return fmt.Sprintf("unknown stat %q", e.Name)
}

// UnknownStatPolicy decides what happens to unrecognised stat identifiers.
type UnknownStatPolicy uint8

const (
	// UnknownStatStrict fails with *UnknownStatError.
	UnknownStatStrict UnknownStatPolicy = iota
	// UnknownStatLenient skips the entry and logs a warning.
	UnknownStatLenient
)

// String returns the config spelling of the policy.
func (p UnknownStatPolicy) String() string {
	switch p {
	case UnknownStatStrict:
		return "strict"
	case UnknownStatLenient:
		return "lenient"
	default:
		return "unknown"
	}
}

// ParseUnknownStatPolicy parses "strict" or "lenient". Empty means strict.
func ParseUnknownStatPolicy(s string) (UnknownStatPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return UnknownStatStrict, nil
	case "lenient":
		return UnknownStatLenient, nil
	default:
		return UnknownStatStrict, fmt.Errorf("invalid unknown stat policy %q (want strict or lenient)", s)
	}
}
