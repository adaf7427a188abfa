package companion

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/udisondev/statcalc/internal/game/stats"
	"github.com/udisondev/statcalc/internal/model"
)

// Pool is the resolved companion collection of one character.
type Pool struct {
	// Companions in key order. Locked companions are included with a nil
	// bundle so callers can list them.
	Companions []model.Companion
	// Inventory is the merged inventory effect of every unlocked companion.
	Inventory model.Delta
	// Skipped counts stored entries that could not be resolved.
	Skipped int
}

// Unlocked returns the companions that can take a preset slot.
func (p *Pool) Unlocked() []model.Companion {
	out := make([]model.Companion, 0, len(p.Companions))
	for _, c := range p.Companions {
		if c.Eligible() {
			out = append(out, c)
		}
	}
	return out
}

// Collect resolves every stored companion through lookup and sums the
// inventory effects of the unlocked ones with agg.
//
// Invalid keys and levels the lookup rejects are skipped and logged; only a
// store failure is an error.
func Collect(ctx context.Context, store Store, lookup Lookup, agg *stats.Aggregator) (*Pool, error) {
	states, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing companions: %w", err)
	}

	keys := make([]model.CompanionKey, 0, len(states))
	for k := range states {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	pool := &Pool{Companions: make([]model.Companion, 0, len(keys))}
	for _, key := range keys {
		st := states[key]
		if !key.Valid() {
			slog.Debug("skipping companion with invalid key", "key", key.String())
			pool.Skipped++
			continue
		}

		c := model.Companion{Key: key, Unlocked: st.Unlocked, Level: st.Level}
		if st.Unlocked {
			bundle, ok := lookup.Lookup(key.Class, key.Rarity, st.Level)
			if !ok {
				slog.Debug("skipping companion without effects", "key", key.String(), "level", st.Level)
				pool.Skipped++
				continue
			}
			c.Bundle = bundle
			pool.Inventory = agg.Merge(pool.Inventory, bundle.Inventory)
		}
		pool.Companions = append(pool.Companions, c)
	}

	slog.Debug("companions collected",
		"stored", len(states),
		"unlocked", len(pool.Unlocked()),
		"skipped", pool.Skipped)

	return pool, nil
}
