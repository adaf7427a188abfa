package preset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/udisondev/statcalc/internal/config"
	"github.com/udisondev/statcalc/internal/game/combat"
	"github.com/udisondev/statcalc/internal/game/stats"
	"github.com/udisondev/statcalc/internal/metrics"
	"github.com/udisondev/statcalc/internal/model"
)

// ErrLockedMainNotEligible is returned when the locked main companion is not
// an unlocked companion of the pool with resolved effects.
var ErrLockedMainNotEligible = errors.New("locked main companion is not eligible")

// Request is one optimization query.
type Request struct {
	// Base snapshot the equip effects are applied to. Inventory effects of
	// unlocked companions are expected to be part of it already.
	Base       model.Snapshot
	Pool       []model.Companion
	Monster    model.MonsterType
	LockedMain *model.CompanionKey
}

// Result is the best preset found.
type Result struct {
	Assignment model.PresetAssignment
	DPS        float64
	BaseDPS    float64
	// Examined is the number of combinations evaluated.
	Examined int
	// Truncated is set when the enumeration cap stopped the search before
	// the space was exhausted; Assignment is then the best found so far.
	Truncated   bool
	Fingerprint string
}

// Optimizer searches companion combinations for the highest DPS preset.
type Optimizer struct {
	model   *combat.DPSModel
	agg     *stats.Aggregator
	cfg     config.Optimizer
	metrics *metrics.Recorder
}

// NewOptimizer creates an Optimizer. rec may be nil.
func NewOptimizer(m *combat.DPSModel, cfg config.Optimizer, rec *metrics.Recorder) *Optimizer {
	if cfg.MaxCombinations <= 0 {
		cfg.MaxCombinations = config.DefaultCalculator().Optimizer.MaxCombinations
	}
	if cfg.YieldEvery <= 0 {
		cfg.YieldEvery = config.DefaultCalculator().Optimizer.YieldEvery
	}
	return &Optimizer{model: m, agg: m.Aggregator(), cfg: cfg, metrics: rec}
}

// Optimize returns the preset with the highest DPS against req.Monster.
//
// Without a lock it enumerates combinations of PresetSlots companions and
// makes the first of each the main; with a lock the main is fixed and the
// subs are enumerated. Enumeration is lexicographic over the eligible pool
// sorted by key, so identical input gives identical output. Ties keep the
// first combination found.
//
// An empty eligible pool yields an all-empty assignment. Small pools fill
// as many slots as they can. Cancellation is checked every YieldEvery
// combinations and returns the context error.
func (o *Optimizer) Optimize(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	eligible := Eligible(req.Pool)

	res := &Result{
		Fingerprint: o.Fingerprint(req),
		BaseDPS:     o.model.Compute(req.Base, req.Monster),
	}
	res.DPS = res.BaseDPS
	if len(eligible) == 0 {
		return res, nil
	}

	var fixed []model.Companion
	candidates := eligible
	if req.LockedMain != nil {
		idx := indexOf(eligible, *req.LockedMain)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrLockedMainNotEligible, req.LockedMain)
		}
		fixed = []model.Companion{eligible[idx]}
		candidates = make([]model.Companion, 0, len(eligible)-1)
		candidates = append(candidates, eligible[:idx]...)
		candidates = append(candidates, eligible[idx+1:]...)
		res.Assignment.LockedMain = true
	}

	k := model.PresetSlots - len(fixed)
	if k > len(candidates) {
		k = len(candidates)
	}

	var fixedDelta model.Delta
	for _, c := range fixed {
		fixedDelta = o.agg.Merge(fixedDelta, c.Bundle.Equip)
	}

	best := -1.0
	bestIdx := make([]int, 0, k)
	combos := NewCombinations(len(candidates), k)
	for combos.Next() {
		if res.Examined >= o.cfg.MaxCombinations {
			res.Truncated = true
			break
		}
		if res.Examined%o.cfg.YieldEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("optimizing preset after %d combinations: %w", res.Examined, err)
			}
		}

		idx := combos.Indices()
		delta := fixedDelta
		for _, i := range idx {
			delta = o.agg.Merge(delta, candidates[i].Bundle.Equip)
		}
		dps := o.model.Compute(o.agg.ApplyDelta(req.Base, delta), req.Monster)
		res.Examined++

		if dps > best {
			best = dps
			bestIdx = append(bestIdx[:0], idx...)
		}
	}

	members := make([]model.CompanionKey, 0, model.PresetSlots)
	for _, c := range fixed {
		members = append(members, c.Key)
	}
	for _, i := range bestIdx {
		members = append(members, candidates[i].Key)
	}
	res.Assignment = assign(members, res.Assignment.LockedMain)
	res.DPS = best

	elapsed := time.Since(start)
	o.metrics.ObserveOptimize(res.Examined, res.Truncated, elapsed)
	if res.Truncated {
		slog.Warn("preset search truncated",
			"examined", res.Examined,
			"space", Binomial(len(candidates), k),
			"cap", o.cfg.MaxCombinations)
	}
	slog.Debug("preset optimized",
		"monster", req.Monster.String(),
		"eligible", len(eligible),
		"examined", res.Examined,
		"dps", res.DPS,
		"elapsed", elapsed)

	return res, nil
}

// Eligible returns the unlocked companions with resolved effects, sorted by
// key. Later duplicates of a key are dropped.
func Eligible(pool []model.Companion) []model.Companion {
	out := make([]model.Companion, 0, len(pool))
	seen := make(map[model.CompanionKey]struct{}, len(pool))
	for _, c := range pool {
		if !c.Eligible() {
			continue
		}
		if _, dup := seen[c.Key]; dup {
			slog.Debug("dropping duplicate companion from pool", "key", c.Key.String())
			continue
		}
		seen[c.Key] = struct{}{}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

func indexOf(pool []model.Companion, key model.CompanionKey) int {
	for i, c := range pool {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// assign places members[0] in the main slot and the rest in the subs.
func assign(members []model.CompanionKey, locked bool) model.PresetAssignment {
	p := model.PresetAssignment{LockedMain: locked}
	for i := range members {
		key := members[i]
		if i == 0 {
			p.Main = &key
			continue
		}
		if i-1 < model.PresetSubSlots {
			p.Subs[i-1] = &key
		}
	}
	return p
}
