package stats

import (
	"log/slog"

	"github.com/udisondev/statcalc/internal/model"
)

// Aggregator applies stat deltas to snapshots according to per-stat rules.
//
// It holds no per-computation state: every method takes a snapshot by value
// and returns a new one, so one Aggregator can serve any number of
// unrelated what-if queries.
type Aggregator struct {
	rules  Rules
	policy model.UnknownStatPolicy
}

// NewAggregator creates an Aggregator. policy decides how Apply treats stat
// identifiers outside the known set.
func NewAggregator(rules Rules, policy model.UnknownStatPolicy) *Aggregator {
	return &Aggregator{rules: rules, policy: policy}
}

// Rule returns the combination rule of id. Unknown stats get the additive
// zero rule.
func (a *Aggregator) Rule(id model.StatID) Rule {
	if !id.Valid() {
		return Rule{}
	}
	return a.rules[id]
}

// Policy returns the unknown stat policy.
func (a *Aggregator) Policy() model.UnknownStatPolicy {
	return a.policy
}

// Apply returns s with delta applied to stat id.
//
// Unknown ids fail with *model.UnknownStatError under the strict policy; the
// lenient policy returns s unchanged and logs a warning.
func (a *Aggregator) Apply(s model.Snapshot, id model.StatID, delta float64) (model.Snapshot, error) {
	if !id.Valid() {
		if a.policy == model.UnknownStatLenient {
			slog.Warn("ignoring delta for unknown stat", "stat", id.String(), "delta", delta)
			return s, nil
		}
		return s, &model.UnknownStatError{Name: id.String()}
	}
	s[id] = a.rules[id].Combine(s[id], delta)
	return s, nil
}

// ApplyDelta returns s with every non-zero component of d applied.
func (a *Aggregator) ApplyDelta(s model.Snapshot, d model.Delta) model.Snapshot {
	for id, v := range d {
		if v == 0 {
			continue
		}
		s[id] = a.rules[id].Combine(s[id], v)
	}
	return s
}

// Merge combines two deltas stat by stat using the stat's rule, so applying
// Merge(x, y) equals applying x then y. Final damage compounds instead of
// summing.
func (a *Aggregator) Merge(x, y model.Delta) model.Delta {
	for id, v := range y {
		if v == 0 {
			continue
		}
		x[id] = a.rules[id].Combine(x[id], v)
	}
	return x
}
