package model

import (
	"errors"
	"fmt"
)

// PresetSubSlots is the number of sub companion slots in a preset.
const PresetSubSlots = 6

// PresetSlots is the total number of companion slots (main + subs).
const PresetSlots = 1 + PresetSubSlots

// ErrDuplicateCompanion is returned when a companion occupies two slots.
var ErrDuplicateCompanion = errors.New("companion assigned to more than one slot")

// PresetAssignment is one main companion plus six sub companions.
// Nil slots are empty. LockedMain marks a main slot the optimizer must keep.
type PresetAssignment struct {
	Main       *CompanionKey
	Subs       [PresetSubSlots]*CompanionKey
	LockedMain bool
}

// Keys returns the assigned companions, main first, skipping empty slots.
func (p PresetAssignment) Keys() []CompanionKey {
	keys := make([]CompanionKey, 0, PresetSlots)
	if p.Main != nil {
		keys = append(keys, *p.Main)
	}
	for _, k := range p.Subs {
		if k != nil {
			keys = append(keys, *k)
		}
	}
	return keys
}

// Filled returns the number of occupied slots.
func (p PresetAssignment) Filled() int {
	return len(p.Keys())
}

// Validate checks that no companion appears twice.
func (p PresetAssignment) Validate() error {
	seen := make(map[CompanionKey]struct{}, PresetSlots)
	for _, k := range p.Keys() {
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateCompanion, k)
		}
		seen[k] = struct{}{}
	}
	return nil
}
