package model

import (
	"fmt"
	"strings"
)

// MonsterType is the target monster category DPS is computed against.
type MonsterType uint8

const (
	MonsterBoss MonsterType = iota
	MonsterNormal
)

// String returns the config spelling of the monster type.
func (m MonsterType) String() string {
	switch m {
	case MonsterBoss:
		return "boss"
	case MonsterNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// ParseMonsterType parses "boss" or "normal" (case-insensitive).
func ParseMonsterType(s string) (MonsterType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boss":
		return MonsterBoss, nil
	case "normal":
		return MonsterNormal, nil
	default:
		return MonsterBoss, fmt.Errorf("invalid monster type %q (want boss or normal)", s)
	}
}

// TypeDamageStat returns the stat that only counts against monster m.
func TypeDamageStat(m MonsterType) StatID {
	if m == MonsterNormal {
		return StatNormalDamagePct
	}
	return StatBossDamagePct
}

// TargetMonster returns the monster type a gain of stat id is measured
// against: Normal for NormalDamagePct, Boss for everything else.
func TargetMonster(id StatID) MonsterType {
	if id == StatNormalDamagePct {
		return MonsterNormal
	}
	return MonsterBoss
}
