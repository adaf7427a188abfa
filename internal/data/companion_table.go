package data

import (
	"embed"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"

	"github.com/maja42/goval"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/statcalc/internal/model"
)

//go:embed tables/*.yaml
var tables embed.FS

// companionFile is the YAML layout of a companion effect table.
type companionFile struct {
	Classes map[string]classEffects `yaml:"classes"`
}

type classEffects struct {
	Inventory map[string]string `yaml:"inventory"`
	Equip     map[string]string `yaml:"equip"`
}

// CompanionTable resolves companion effects for every class, rarity and
// level. Bundles are evaluated once at load time.
type CompanionTable struct {
	maxLevel int
	bundles  map[model.CompanionKey][]model.EffectBundle // index = level-1
}

// LoadCompanionTable loads the table from path, or the embedded default table
// when path is empty. Effect formulas are evaluated for every rarity and for
// levels 1..maxLevel; a formula that fails to evaluate fails the load.
func LoadCompanionTable(path string, maxLevel int, policy model.UnknownStatPolicy) (*CompanionTable, error) {
	raw, err := readTable(path, "tables/companions.yaml")
	if err != nil {
		return nil, err
	}
	return ParseCompanionTable(raw, maxLevel, policy)
}

// ParseCompanionTable builds a table from YAML bytes.
func ParseCompanionTable(raw []byte, maxLevel int, policy model.UnknownStatPolicy) (*CompanionTable, error) {
	if maxLevel <= 0 {
		return nil, fmt.Errorf("companion max level must be > 0, got %d", maxLevel)
	}

	var file companionFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing companion table: %w", err)
	}

	t := &CompanionTable{
		maxLevel: maxLevel,
		bundles:  make(map[model.CompanionKey][]model.EffectBundle),
	}
	eval := goval.NewEvaluator()

	names := make([]string, 0, len(file.Classes))
	for name := range file.Classes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		class, err := model.ParseCompanionClass(name)
		if err != nil {
			return nil, fmt.Errorf("companion table: %w", err)
		}
		effects := file.Classes[name]

		for _, rarity := range model.AllRarities() {
			key := model.CompanionKey{Class: class, Rarity: rarity}
			levels := make([]model.EffectBundle, maxLevel)
			for level := 1; level <= maxLevel; level++ {
				vars := map[string]interface{}{
					"level": float64(level),
					"tier":  float64(rarity.Tier()),
				}
				b := model.EffectBundle{Key: key, Level: level}
				if b.Inventory, err = evalEffects(eval, effects.Inventory, vars, policy); err != nil {
					return nil, fmt.Errorf("companion %s level %d inventory: %w", key, level, err)
				}
				if b.Equip, err = evalEffects(eval, effects.Equip, vars, policy); err != nil {
					return nil, fmt.Errorf("companion %s level %d equip: %w", key, level, err)
				}
				levels[level-1] = b
			}
			t.bundles[key] = levels
		}
	}

	slog.Debug("loaded companion table", "classes", len(names), "max_level", maxLevel)
	return t, nil
}

func evalEffects(eval *goval.Evaluator, exprs map[string]string, vars map[string]interface{}, policy model.UnknownStatPolicy) (model.Delta, error) {
	var d model.Delta
	for name, expr := range exprs {
		id, err := model.ParseStat(name)
		if err != nil {
			if policy == model.UnknownStatLenient {
				slog.Warn("ignoring companion effect for unknown stat", "stat", name)
				continue
			}
			return d, err
		}
		v, err := evalNumber(eval, expr, vars)
		if err != nil {
			return d, fmt.Errorf("stat %s: %w", name, err)
		}
		d[id] = v
	}
	return d, nil
}

func evalNumber(eval *goval.Evaluator, expr string, vars map[string]interface{}) (float64, error) {
	result, err := eval.Evaluate(expr, vars, nil)
	if err != nil {
		return 0, fmt.Errorf("evaluating %q: %w", expr, err)
	}
	var v float64
	switch r := result.(type) {
	case float64:
		v = r
	case int:
		v = float64(r)
	default:
		return 0, fmt.Errorf("expression %q returned %T, want number", expr, result)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("expression %q is not finite", expr)
	}
	return v, nil
}

// MaxLevel returns the highest level the table resolves.
func (t *CompanionTable) MaxLevel() int {
	return t.maxLevel
}

// Lookup returns a copy of the effects of (class, rarity) at level.
// Returns nil, false for an unknown class or rarity, a class missing from
// the table, or a level outside 1..MaxLevel.
func (t *CompanionTable) Lookup(class model.CompanionClass, rarity model.Rarity, level int) (*model.EffectBundle, bool) {
	key := model.CompanionKey{Class: class, Rarity: rarity}
	if !key.Valid() || level < 1 || level > t.maxLevel {
		return nil, false
	}
	levels, ok := t.bundles[key]
	if !ok {
		return nil, false
	}
	b := levels[level-1]
	return &b, true
}

// readTable reads path from disk, or the embedded fallback when path is empty.
func readTable(path, embedded string) ([]byte, error) {
	if path == "" {
		raw, err := tables.ReadFile(embedded)
		if err != nil {
			return nil, fmt.Errorf("reading embedded %s: %w", embedded, err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", path, err)
	}
	return raw, nil
}
