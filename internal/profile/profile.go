// Package profile loads a character profile: base stats, companion progress
// and the selected content.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/statcalc/internal/game/companion"
	"github.com/udisondev/statcalc/internal/model"
)

// Profile is the YAML character profile.
//
//	character: main
//	stats:
//	  Attack: 1200
//	  CritRate: 45
//	companions:
//	  mage/epic: {unlocked: true, level: 3}
//	stage: citadel
//	locked_main: mage/epic
type Profile struct {
	// Character id used for database rows.
	Character  string                    `yaml:"character"`
	Stats      map[string]float64        `yaml:"stats"`
	Companions map[string]CompanionEntry `yaml:"companions"`
	// Stage id selecting target defense; empty uses the configured defaults.
	Stage      string `yaml:"stage"`
	LockedMain string `yaml:"locked_main"`
}

// CompanionEntry is the progress of one companion.
type CompanionEntry struct {
	Unlocked bool `yaml:"unlocked"`
	Level    int  `yaml:"level"`
}

// Load reads a profile from path.
func Load(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	p, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a profile from YAML bytes.
func Parse(raw []byte) (*Profile, error) {
	p := &Profile{}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if p.Character == "" {
		p.Character = "default"
	}
	return p, nil
}

// Snapshot returns the base stats, honoring policy for unknown stat names.
func (p *Profile) Snapshot(policy model.UnknownStatPolicy) (model.Snapshot, error) {
	return model.SnapshotFromMap(p.Stats, policy)
}

// CompanionStates parses the companion keys.
func (p *Profile) CompanionStates() (map[model.CompanionKey]model.CompanionState, error) {
	out := make(map[model.CompanionKey]model.CompanionState, len(p.Companions))
	for name, e := range p.Companions {
		key, err := model.ParseCompanionKey(name)
		if err != nil {
			return nil, fmt.Errorf("companion %q: %w", name, err)
		}
		out[key] = model.CompanionState{Unlocked: e.Unlocked, Level: e.Level}
	}
	return out, nil
}

// SetCompanions replaces the companion progress with states.
func (p *Profile) SetCompanions(states map[model.CompanionKey]model.CompanionState) {
	p.Companions = make(map[string]CompanionEntry, len(states))
	for key, st := range states {
		p.Companions[key.String()] = CompanionEntry{Unlocked: st.Unlocked, Level: st.Level}
	}
}

// Store returns an in-memory companion store seeded from the profile.
func (p *Profile) Store() (*companion.MemoryStore, error) {
	states, err := p.CompanionStates()
	if err != nil {
		return nil, err
	}
	return companion.NewMemoryStore(states), nil
}

// LockedMainKey returns the locked main companion, or nil when none is set.
func (p *Profile) LockedMainKey() (*model.CompanionKey, error) {
	if p.LockedMain == "" {
		return nil, nil
	}
	key, err := model.ParseCompanionKey(p.LockedMain)
	if err != nil {
		return nil, fmt.Errorf("locked_main: %w", err)
	}
	return &key, nil
}

// SetStats replaces the stats with the non-zero values of s.
func (p *Profile) SetStats(s model.Snapshot) {
	p.Stats = s.Map()
}

// Save writes the profile to path.
func (p *Profile) Save(path string) error {
	raw, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing profile %s: %w", path, err)
	}
	return nil
}
