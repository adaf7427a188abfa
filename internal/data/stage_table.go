package data

import (
	"fmt"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/statcalc/internal/model"
)

// Stage is a piece of content with fixed target defense.
type Stage struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	BossDefense   float64 `yaml:"boss_defense"`
	NormalDefense float64 `yaml:"normal_defense"`
}

// TargetDefense returns the percent damage reduction of monsters of type m.
func (s Stage) TargetDefense(m model.MonsterType) float64 {
	if m == model.MonsterNormal {
		return s.NormalDefense
	}
	return s.BossDefense
}

// StageTable holds stages in file order.
type StageTable struct {
	stages []Stage
	byID   map[string]int
}

// LoadStageTable loads stages from path, or the embedded table when path is
// empty.
func LoadStageTable(path string) (*StageTable, error) {
	raw, err := readTable(path, "tables/stages.yaml")
	if err != nil {
		return nil, err
	}

	var file struct {
		Stages []Stage `yaml:"stages"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing stage table: %w", err)
	}

	t := &StageTable{
		stages: file.Stages,
		byID:   make(map[string]int, len(file.Stages)),
	}
	for i, s := range file.Stages {
		id := strings.ToLower(s.ID)
		if id == "" {
			return nil, fmt.Errorf("stage %d has no id", i)
		}
		if _, dup := t.byID[id]; dup {
			return nil, fmt.Errorf("duplicate stage id %q", s.ID)
		}
		if s.BossDefense < 0 || s.BossDefense > 100 || s.NormalDefense < 0 || s.NormalDefense > 100 {
			return nil, fmt.Errorf("stage %q: defense must be within 0..100", s.ID)
		}
		t.byID[id] = i
	}

	slog.Debug("loaded stage table", "count", len(t.stages))
	return t, nil
}

// Stage returns the stage with the given id (case-insensitive).
func (t *StageTable) Stage(id string) (Stage, bool) {
	i, ok := t.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return Stage{}, false
	}
	return t.stages[i], true
}

// All returns every stage in file order.
func (t *StageTable) All() []Stage {
	return append([]Stage(nil), t.stages...)
}
