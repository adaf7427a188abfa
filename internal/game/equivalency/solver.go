package equivalency

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/udisondev/statcalc/internal/config"
	"github.com/udisondev/statcalc/internal/game/combat"
	"github.com/udisondev/statcalc/internal/game/stats"
	"github.com/udisondev/statcalc/internal/metrics"
	"github.com/udisondev/statcalc/internal/model"
)

// Status is the outcome of one target stat search.
type Status uint8

const (
	// StatusMatched: Value reproduces the target gain within tolerance.
	StatusMatched Status = iota
	// StatusUnmatched: no value within the stat's range reproduces the gain.
	StatusUnmatched
	// StatusIneffective: the stat cannot affect the source's monster type
	// (BossDamagePct against a Normal gain and vice versa). Not searched.
	StatusIneffective
)

func (s Status) String() string {
	switch s {
	case StatusMatched:
		return "matched"
	case StatusUnmatched:
		return "unmatched"
	case StatusIneffective:
		return "ineffective"
	default:
		return "unknown"
	}
}

// Equivalent is the solved magnitude of one target stat.
// Value is meaningful only when Status is StatusMatched; it is never used to
// signal "no equivalent".
type Equivalent struct {
	Stat            model.StatID
	Status          Status
	Value           float64
	AchievedGainPct float64
	Iterations      int
}

// Matched reports whether the search produced a usable value.
func (e Equivalent) Matched() bool {
	return e.Status == StatusMatched
}

// Result is the equivalency of one source stat gain.
type Result struct {
	SourceStat    model.StatID
	SourceDelta   float64
	Monster       model.MonsterType
	BaseDPS       float64
	TargetGainPct float64
	Equivalents   map[model.StatID]Equivalent
}

// Sorted returns the equivalents in stat declaration order.
func (r *Result) Sorted() []Equivalent {
	out := make([]Equivalent, 0, len(r.Equivalents))
	for _, id := range model.AllStats() {
		if eq, ok := r.Equivalents[id]; ok {
			out = append(out, eq)
		}
	}
	return out
}

// Solver converts a gain of one stat into equivalent gains of the others by
// bisecting on the DPS model.
type Solver struct {
	model   *combat.DPSModel
	agg     *stats.Aggregator
	cfg     config.Solver
	ceiling [model.StatCount]float64
	metrics *metrics.Recorder
}

// NewSolver creates a Solver. Search ceilings come from cfg.SearchMax with
// cfg.DefaultSearchMax for stats that have none. rec may be nil.
func NewSolver(m *combat.DPSModel, cfg config.Solver, rec *metrics.Recorder) (*Solver, error) {
	s := &Solver{
		model:   m,
		agg:     m.Aggregator(),
		cfg:     cfg,
		metrics: rec,
	}
	for i := range s.ceiling {
		s.ceiling[i] = cfg.DefaultSearchMax
	}
	for name, v := range cfg.SearchMax {
		id, err := model.ParseStat(name)
		if err != nil {
			if s.agg.Policy() == model.UnknownStatLenient {
				slog.Warn("ignoring search ceiling for unknown stat", "stat", name)
				continue
			}
			return nil, fmt.Errorf("solver search_max: %w", err)
		}
		if v > 0 {
			s.ceiling[id] = v
		}
	}
	return s, nil
}

// Ceiling returns the upper bound of the search range for id.
func (s *Solver) Ceiling(id model.StatID) float64 {
	if !id.Valid() {
		return s.cfg.DefaultSearchMax
	}
	return s.ceiling[id]
}

// Solve computes, for every other stat, the value that reproduces the DPS
// gain of adding delta to source.
//
// Returns nil, nil when delta is zero or the baseline DPS is zero: there is
// no gain to convert. The context is checked between target stats.
func (s *Solver) Solve(ctx context.Context, base model.Snapshot, source model.StatID, delta float64) (*Result, error) {
	target, baseDPS, ok, err := s.targetGain(base, source, delta)
	if err != nil || !ok {
		return nil, err
	}

	res := &Result{
		SourceStat:    source,
		SourceDelta:   delta,
		Monster:       model.TargetMonster(source),
		BaseDPS:       baseDPS,
		TargetGainPct: target,
		Equivalents:   make(map[model.StatID]Equivalent, model.StatCount-1),
	}

	for _, id := range model.AllStats() {
		if id == source {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("solving equivalents of %s: %w", source, err)
		}
		res.Equivalents[id] = s.solveTarget(base, source, id, target)
	}

	slog.Debug("equivalency solved",
		"source", source.String(),
		"delta", delta,
		"target_gain_pct", target)

	return res, nil
}

// Convert returns the value of stat to that reproduces the gain of adding
// delta to stat from. ok is false for degenerate input (zero delta, zero
// baseline), mirroring Solve returning nil.
func (s *Solver) Convert(ctx context.Context, base model.Snapshot, from model.StatID, delta float64, to model.StatID) (eq Equivalent, ok bool, err error) {
	if !to.Valid() {
		return Equivalent{}, false, &model.UnknownStatError{Name: to.String()}
	}
	if err := ctx.Err(); err != nil {
		return Equivalent{}, false, err
	}
	target, _, ok, err := s.targetGain(base, from, delta)
	if err != nil || !ok {
		return Equivalent{}, false, err
	}
	if from == to {
		return Equivalent{Stat: to, Status: StatusMatched, Value: delta, AchievedGainPct: target}, true, nil
	}
	return s.solveTarget(base, from, to, target), true, nil
}

// targetGain applies delta to source and returns the DPS gain in percent
// against the source's monster type.
func (s *Solver) targetGain(base model.Snapshot, source model.StatID, delta float64) (gain, baseDPS float64, ok bool, err error) {
	if !source.Valid() {
		return 0, 0, false, &model.UnknownStatError{Name: source.String()}
	}
	if delta == 0 {
		return 0, 0, false, nil
	}
	monster := model.TargetMonster(source)
	baseDPS = s.model.Compute(base, monster)
	if baseDPS <= 0 {
		return 0, 0, false, nil
	}
	next, err := s.agg.Apply(base, source, delta)
	if err != nil {
		return 0, 0, false, err
	}
	gain = (s.model.Compute(next, monster) - baseDPS) / baseDPS * 100
	return gain, baseDPS, true, nil
}

// incompatible reports whether target only counts against the other
// monster type than the source gain was measured on.
func incompatible(source, target model.StatID) bool {
	srcMonster := model.TargetMonster(source)
	for _, m := range []model.MonsterType{model.MonsterBoss, model.MonsterNormal} {
		if m != srcMonster && target == model.TypeDamageStat(m) {
			return true
		}
	}
	return false
}

// noiseGainPct is the largest gain, in percent, treated as no gain at all.
const noiseGainPct = 1e-9

// solveTarget bisects [0, ceiling] for the value of id whose gain equals
// target. Each probe starts from base, never from a previous probe.
// A value matches when its gain is within GainTolerance of target, relative
// to target. Assumes DPS is non-decreasing in every stat.
func (s *Solver) solveTarget(base model.Snapshot, source, id model.StatID, target float64) Equivalent {
	eq := Equivalent{Stat: id, Status: StatusUnmatched}
	defer func() { s.metrics.ObserveTarget(eq.Status.String(), eq.Iterations) }()

	if incompatible(source, id) {
		eq.Status = StatusIneffective
		return eq
	}

	// A non-positive source gain (capped source, negative delta) has no
	// positive equivalent; report it instead of a near-zero "match".
	if target <= noiseGainPct {
		return eq
	}
	tol := s.cfg.GainTolerance * target

	monster := model.TargetMonster(id)
	baseDPS := s.model.Compute(base, monster)
	if baseDPS <= 0 {
		return eq
	}
	gainAt := func(v float64) float64 {
		next, err := s.agg.Apply(base, id, v)
		if err != nil {
			return math.Inf(-1)
		}
		return (s.model.Compute(next, monster) - baseDPS) / baseDPS * 100
	}

	low, high := 0.0, s.Ceiling(id)
	top := gainAt(high)
	if top < target-tol {
		// Saturated: even the ceiling falls short.
		eq.AchievedGainPct = top
		return eq
	}

	iter := 0
	for ; iter < s.cfg.MaxIterations && high-low > s.cfg.Precision; iter++ {
		mid := low + (high-low)/2
		if gainAt(mid) < target {
			low = mid
		} else {
			high = mid
		}
	}

	value := low + (high-low)/2
	achieved := gainAt(value)
	eq.Iterations = iter
	eq.AchievedGainPct = achieved
	if math.Abs(achieved-target) > tol {
		return eq
	}
	eq.Status = StatusMatched
	eq.Value = value
	return eq
}
