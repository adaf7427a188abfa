package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Calculator holds all configuration for the stat calculator.
type Calculator struct {
	// debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// strict fails on unrecognised stat names, lenient skips them with a warning.
	UnknownStats string `yaml:"unknown_stats"`

	DPS        DPS        `yaml:"dps"`
	Solver     Solver     `yaml:"solver"`
	Optimizer  Optimizer  `yaml:"optimizer"`
	Companions Companions `yaml:"companions"`
	Reporter   Reporter   `yaml:"reporter"`

	Database DatabaseConfig `yaml:"database"`
}

// DPS holds the constants of the damage formula and the stat caps.
type DPS struct {
	// Points of primary main stat per 1 percentage point of stat damage.
	MainStatPerPercent float64 `yaml:"main_stat_per_percent"`
	BaseHitsPerSecond  float64 `yaml:"base_hits_per_second"`

	CritRateMax   float64 `yaml:"crit_rate_max"`
	CritDamageMax float64 `yaml:"crit_damage_max"`
	MinDamageMax  float64 `yaml:"min_damage_max"`
	MaxDamageMax  float64 `yaml:"max_damage_max"`

	AttackSpeedCap         float64 `yaml:"attack_speed_cap"`
	AttackSpeedDenominator float64 `yaml:"attack_speed_denominator"`
	DefPenCap              float64 `yaml:"def_pen_cap"`
	DefPenDenominator      float64 `yaml:"def_pen_denominator"`

	// Target defense (percent damage reduction) used when no stage is selected.
	BossDefense   float64 `yaml:"boss_defense"`
	NormalDefense float64 `yaml:"normal_defense"`
}

// Solver configures the equivalency binary search.
type Solver struct {
	// Search stops once high-low is at most Precision (stat units).
	Precision float64 `yaml:"precision"`
	// Max distance between achieved and target gain for a match, as a
	// fraction of the target gain.
	GainTolerance    float64 `yaml:"gain_tolerance"`
	MaxIterations    int     `yaml:"max_iterations"`
	DefaultSearchMax float64 `yaml:"default_search_max"`
	// Per-stat search ceiling, keyed by stat name.
	SearchMax map[string]float64 `yaml:"search_max"`
}

// Optimizer configures the preset search.
type Optimizer struct {
	MaxCombinations int `yaml:"max_combinations"`
	// Cancellation is checked every YieldEvery combinations.
	YieldEvery int `yaml:"yield_every"`
}

// Companions configures the companion effect lookup.
type Companions struct {
	MaxLevel int `yaml:"max_level"`
	// Optional YAML tables; the embedded defaults are used when empty.
	TablePath      string `yaml:"table_path"`
	StageTablePath string `yaml:"stage_table_path"`
}

// Reporter configures the stat weight (gain) table.
type Reporter struct {
	// Increment per stat name.
	Increments map[string]float64 `yaml:"increments"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultCalculator returns Calculator config with sensible defaults.
func DefaultCalculator() Calculator {
	return Calculator{
		LogLevel:     "info",
		UnknownStats: "strict",
		DPS: DPS{
			MainStatPerPercent:     100,
			BaseHitsPerSecond:      1,
			CritRateMax:            100,
			CritDamageMax:          500,
			MinDamageMax:           100,
			MaxDamageMax:           100,
			AttackSpeedCap:         150,
			AttackSpeedDenominator: 150,
			DefPenCap:              100,
			DefPenDenominator:      100,
		},
		Solver: Solver{
			Precision:        1e-6,
			GainTolerance:    1e-3,
			MaxIterations:    100,
			DefaultSearchMax: 1_000_000,
			SearchMax: map[string]float64{
				"CritRate":     100,
				"CritDamage":   500,
				"AttackSpeed":  150,
				"DefPen":       100,
				"MinDamagePct": 100,
				"MaxDamagePct": 100,
				"MasteryPct":   100,
			},
		},
		Optimizer: Optimizer{
			MaxCombinations: 50_000,
			YieldEvery:      1024,
		},
		Companions: Companions{
			MaxLevel: 10,
		},
		Reporter: Reporter{
			Increments: map[string]float64{
				"Attack":              100,
				"AttackPct":           1,
				"CritRate":            1,
				"CritDamage":          1,
				"AttackSpeed":         1,
				"PrimaryMainStat":     100,
				"MainStatPct":         1,
				"StatDamagePct":       1,
				"DamagePct":           1,
				"DamageAmp":           1,
				"DefPen":              1,
				"BossDamagePct":       1,
				"NormalDamagePct":     1,
				"MinDamagePct":        1,
				"MaxDamagePct":        1,
				"FinalDamagePct":      1,
				"SkillCoefficientPct": 1,
				"MasteryPct":          1,
			},
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "statcalc",
			Password: "statcalc",
			DBName:   "statcalc",
			SSLMode:  "disable",
		},
	}
}

// Validate rejects values the algorithms cannot work with.
func (c Calculator) Validate() error {
	var errs []error
	if c.DPS.MainStatPerPercent <= 0 {
		errs = append(errs, fmt.Errorf("dps.main_stat_per_percent must be > 0, got %v", c.DPS.MainStatPerPercent))
	}
	if c.DPS.AttackSpeedDenominator <= 0 || c.DPS.DefPenDenominator <= 0 {
		errs = append(errs, errors.New("dps diminishing-return denominators must be > 0"))
	}
	if c.Solver.Precision <= 0 {
		errs = append(errs, fmt.Errorf("solver.precision must be > 0, got %v", c.Solver.Precision))
	}
	if c.Solver.GainTolerance <= 0 {
		errs = append(errs, fmt.Errorf("solver.gain_tolerance must be > 0, got %v", c.Solver.GainTolerance))
	}
	if c.Solver.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("solver.max_iterations must be > 0, got %d", c.Solver.MaxIterations))
	}
	if c.Solver.DefaultSearchMax <= 0 {
		errs = append(errs, fmt.Errorf("solver.default_search_max must be > 0, got %v", c.Solver.DefaultSearchMax))
	}
	if c.Optimizer.MaxCombinations <= 0 {
		errs = append(errs, fmt.Errorf("optimizer.max_combinations must be > 0, got %d", c.Optimizer.MaxCombinations))
	}
	if c.Optimizer.YieldEvery <= 0 {
		errs = append(errs, fmt.Errorf("optimizer.yield_every must be > 0, got %d", c.Optimizer.YieldEvery))
	}
	if c.Companions.MaxLevel <= 0 {
		errs = append(errs, fmt.Errorf("companions.max_level must be > 0, got %d", c.Companions.MaxLevel))
	}
	return errors.Join(errs...)
}

// LoadCalculator loads calculator config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadCalculator(path string) (Calculator, error) {
	cfg := DefaultCalculator()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}
