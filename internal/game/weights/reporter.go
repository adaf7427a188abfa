// Package weights builds stat weight tables: the DPS gain of a fixed
// increment of every stat.
package weights

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/statcalc/internal/config"
	"github.com/udisondev/statcalc/internal/game/combat"
	"github.com/udisondev/statcalc/internal/model"
)

// Row is the gain of one stat increment.
type Row struct {
	Stat      model.StatID
	Increment float64
	DPS       float64
	GainPct   float64
	// GainPerUnit is GainPct divided by Increment.
	GainPerUnit float64
}

// Summary aggregates the gains of a table.
type Summary struct {
	MeanGainPct   float64
	MedianGainPct float64
	MaxGainPct    float64
	// Best is the stat with the highest gain; meaningless when MaxGainPct is 0.
	Best model.StatID
}

// Table is the stat weight table against one monster type.
type Table struct {
	Monster model.MonsterType
	BaseDPS float64
	// Degenerate is set when the baseline DPS is zero; every gain is 0.
	Degenerate bool
	Rows       []Row
	Summary    Summary
}

// Reporter computes stat weight tables.
type Reporter struct {
	model      *combat.DPSModel
	increments [model.StatCount]float64
}

// NewReporter creates a Reporter. Stats with no configured increment are
// left out of the tables.
func NewReporter(m *combat.DPSModel, cfg config.Reporter) (*Reporter, error) {
	r := &Reporter{model: m}
	policy := m.Aggregator().Policy()
	for name, inc := range cfg.Increments {
		id, err := model.ParseStat(name)
		if err != nil {
			if policy == model.UnknownStatLenient {
				slog.Warn("ignoring increment for unknown stat", "stat", name)
				continue
			}
			return nil, fmt.Errorf("reporter increments: %w", err)
		}
		if inc != 0 {
			r.increments[id] = inc
		}
	}
	return r, nil
}

// Build computes the table for base against monster. Every row starts from
// base, so rows are independent.
func (r *Reporter) Build(base model.Snapshot, monster model.MonsterType) *Table {
	agg := r.model.Aggregator()
	t := &Table{
		Monster: monster,
		BaseDPS: r.model.Compute(base, monster),
	}
	t.Degenerate = t.BaseDPS <= 0

	for _, id := range model.AllStats() {
		inc := r.increments[id]
		if inc == 0 {
			continue
		}
		next, _ := agg.Apply(base, id, inc) // id is always known
		row := Row{Stat: id, Increment: inc, DPS: r.model.Compute(next, monster)}
		if !t.Degenerate {
			row.GainPct = (row.DPS - t.BaseDPS) / t.BaseDPS * 100
			row.GainPerUnit = row.GainPct / inc
		}
		t.Rows = append(t.Rows, row)
	}

	t.Summary = summarize(t.Rows)
	return t
}

// BuildBoth computes the Boss and Normal tables concurrently.
func (r *Reporter) BuildBoth(ctx context.Context, base model.Snapshot) (boss, normal *Table, err error) {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		boss = r.Build(base, model.MonsterBoss)
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		normal = r.Build(base, model.MonsterNormal)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("building weight tables: %w", err)
	}
	return boss, normal, nil
}

// Ranked returns the rows sorted by gain, highest first. Ties keep stat
// order.
func (t *Table) Ranked() []Row {
	out := append([]Row(nil), t.Rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].GainPct > out[j].GainPct })
	return out
}

func summarize(rows []Row) Summary {
	if len(rows) == 0 {
		return Summary{}
	}
	data := make(stats.Float64Data, 0, len(rows))
	for _, r := range rows {
		data = append(data, r.GainPct)
	}

	var s Summary
	// Errors only occur for empty input.
	s.MeanGainPct, _ = stats.Mean(data)
	s.MedianGainPct, _ = stats.Median(data)
	s.MaxGainPct, _ = stats.Max(data)
	for _, r := range rows {
		if r.GainPct == s.MaxGainPct {
			s.Best = r.Stat
			break
		}
	}
	return s
}
