package model

import (
	"fmt"
	"strings"
)

// CompanionClass is the combat class of a companion.
type CompanionClass uint8

const (
	ClassWarrior CompanionClass = iota
	ClassArcher
	ClassMage
	ClassThief
	ClassPirate

	classCount
)

var classNames = [classCount]string{"warrior", "archer", "mage", "thief", "pirate"}

// Valid reports whether c is a known class.
func (c CompanionClass) Valid() bool { return c < classCount }

func (c CompanionClass) String() string {
	if !c.Valid() {
		return fmt.Sprintf("class(%d)", uint8(c))
	}
	return classNames[c]
}

// ParseCompanionClass parses a class name (case-insensitive).
func ParseCompanionClass(s string) (CompanionClass, error) {
	for i, n := range classNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return CompanionClass(i), nil
		}
	}
	return 0, fmt.Errorf("unknown companion class %q", s)
}

// AllClasses returns every class in declaration order.
func AllClasses() []CompanionClass {
	out := make([]CompanionClass, 0, classCount)
	for c := CompanionClass(0); c < classCount; c++ {
		out = append(out, c)
	}
	return out
}

// Rarity is the rarity grade of a companion. Higher is rarer.
type Rarity uint8

const (
	RarityCommon Rarity = iota
	RarityRare
	RarityEpic
	RarityUnique
	RarityLegendary

	rarityCount
)

var rarityNames = [rarityCount]string{"common", "rare", "epic", "unique", "legendary"}

// Valid reports whether r is a known rarity.
func (r Rarity) Valid() bool { return r < rarityCount }

func (r Rarity) String() string {
	if !r.Valid() {
		return fmt.Sprintf("rarity(%d)", uint8(r))
	}
	return rarityNames[r]
}

// Tier returns the 1-based rarity tier (common=1 .. legendary=5).
func (r Rarity) Tier() int { return int(r) + 1 }

// ParseRarity parses a rarity name (case-insensitive).
func ParseRarity(s string) (Rarity, error) {
	for i, n := range rarityNames {
		if strings.EqualFold(n, strings.TrimSpace(s)) {
			return Rarity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown companion rarity %q", s)
}

// AllRarities returns every rarity in ascending order.
func AllRarities() []Rarity {
	out := make([]Rarity, 0, rarityCount)
	for r := Rarity(0); r < rarityCount; r++ {
		out = append(out, r)
	}
	return out
}

// CompanionKey identifies a companion: one per class × rarity.
// Level and unlock state are mutable and live in a companion store.
type CompanionKey struct {
	Class  CompanionClass
	Rarity Rarity
}

// Valid reports whether both parts of the key are known.
func (k CompanionKey) Valid() bool {
	return k.Class.Valid() && k.Rarity.Valid()
}

// String formats the key as "class/rarity", e.g. "mage/epic".
func (k CompanionKey) String() string {
	return k.Class.String() + "/" + k.Rarity.String()
}

// Less orders keys by class, then rarity.
func (k CompanionKey) Less(o CompanionKey) bool {
	if k.Class != o.Class {
		return k.Class < o.Class
	}
	return k.Rarity < o.Rarity
}

// ParseCompanionKey parses "class/rarity".
func ParseCompanionKey(s string) (CompanionKey, error) {
	classPart, rarityPart, ok := strings.Cut(s, "/")
	if !ok {
		return CompanionKey{}, fmt.Errorf("invalid companion key %q (want class/rarity)", s)
	}
	class, err := ParseCompanionClass(classPart)
	if err != nil {
		return CompanionKey{}, err
	}
	rarity, err := ParseRarity(rarityPart)
	if err != nil {
		return CompanionKey{}, err
	}
	return CompanionKey{Class: class, Rarity: rarity}, nil
}

// CompanionState is the mutable progress of one companion.
type CompanionState struct {
	Unlocked bool
	Level    int
}

// EffectBundle holds the stat contributions of a companion at one level.
// Inventory is active once the companion is unlocked; Equip only while it is
// assigned to a preset slot.
type EffectBundle struct {
	Key       CompanionKey
	Level     int
	Inventory Delta
	Equip     Delta
}

// Companion is a companion with its resolved state and effects.
// Bundle is nil when the (class, rarity, level) lookup failed.
type Companion struct {
	Key      CompanionKey
	Unlocked bool
	Level    int
	Bundle   *EffectBundle
}

// Eligible reports whether the companion can take a preset slot.
func (c Companion) Eligible() bool {
	return c.Unlocked && c.Bundle != nil
}
