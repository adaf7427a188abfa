package model

import (
	"fmt"
	"log/slog"
)

// Snapshot holds every stat quantity of a character.
//
// Snapshot is a value type: assignment copies it, so a what-if computation
// that starts from a snapshot can never leave residual state in the original.
// Values are unbounded; caps are applied by the DPS model when folding.
type Snapshot [StatCount]float64

// Get returns the value of id, or 0 for unknown stats.
func (s Snapshot) Get(id StatID) float64 {
	if !id.Valid() {
		return 0
	}
	return s[id]
}

// With returns a copy of s with id set to v. Unknown stats are ignored.
func (s Snapshot) With(id StatID, v float64) Snapshot {
	if id.Valid() {
		s[id] = v
	}
	return s
}

// Map returns the non-zero stats keyed by canonical name.
func (s Snapshot) Map() map[string]float64 {
	out := make(map[string]float64)
	for id, v := range s {
		if v != 0 {
			out[StatID(id).String()] = v
		}
	}
	return out
}

// SnapshotFromMap builds a snapshot from name -> value pairs.
// Unknown names fail with *UnknownStatError under UnknownStatStrict and are
// skipped with a warning under UnknownStatLenient.
func SnapshotFromMap(values map[string]float64, policy UnknownStatPolicy) (Snapshot, error) {
	var s Snapshot
	if err := fillFromMap(s[:], values, policy); err != nil {
		return Snapshot{}, fmt.Errorf("building snapshot: %w", err)
	}
	return s, nil
}

// Delta is a bag of stat changes laid out like Snapshot.
// How a delta combines with existing values is decided by the stat's
// combination rule, not by the delta.
type Delta [StatCount]float64

// IsZero reports whether the delta changes nothing.
func (d Delta) IsZero() bool {
	for _, v := range d {
		if v != 0 {
			return false
		}
	}
	return true
}

// Map returns the non-zero components keyed by canonical name.
func (d Delta) Map() map[string]float64 {
	return Snapshot(d).Map()
}

// DeltaFromMap builds a delta from name -> value pairs, honoring policy like
// SnapshotFromMap.
func DeltaFromMap(values map[string]float64, policy UnknownStatPolicy) (Delta, error) {
	var d Delta
	if err := fillFromMap(d[:], values, policy); err != nil {
		return Delta{}, fmt.Errorf("building delta: %w", err)
	}
	return d, nil
}

func fillFromMap(dst []float64, values map[string]float64, policy UnknownStatPolicy) error {
	for name, v := range values {
		id, err := ParseStat(name)
		if err != nil {
			if policy == UnknownStatLenient {
				slog.Warn("ignoring unknown stat", "stat", name, "value", v)
				continue
			}
			return err
		}
		dst[id] += v
	}
	return nil
}
