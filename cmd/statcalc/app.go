package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/udisondev/statcalc/internal/config"
	"github.com/udisondev/statcalc/internal/data"
	"github.com/udisondev/statcalc/internal/db"
	"github.com/udisondev/statcalc/internal/game/combat"
	"github.com/udisondev/statcalc/internal/game/companion"
	"github.com/udisondev/statcalc/internal/game/stats"
	"github.com/udisondev/statcalc/internal/metrics"
	"github.com/udisondev/statcalc/internal/model"
	"github.com/udisondev/statcalc/internal/profile"
)

// options are the global command line flags.
type options struct {
	configPath  string
	profilePath string
	stage       string
	useDB       bool
	metricsFile string
}

// app holds everything loaded once per invocation.
type app struct {
	opts    options
	cfg     config.Calculator
	agg     *stats.Aggregator
	dps     *combat.DPSModel // default defense; see loadCharacter
	stages  *data.StageTable
	table   *data.CompanionTable
	metrics *metrics.Recorder

	db *db.DB // connected on first use
}

func newApp(opts options) (*app, error) {
	cfg, err := config.LoadCalculator(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	policy, err := model.ParseUnknownStatPolicy(cfg.UnknownStats)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	stages, err := data.LoadStageTable(cfg.Companions.StageTablePath)
	if err != nil {
		return nil, fmt.Errorf("loading stages: %w", err)
	}
	table, err := data.LoadCompanionTable(cfg.Companions.TablePath, cfg.Companions.MaxLevel, policy)
	if err != nil {
		return nil, fmt.Errorf("loading companion table: %w", err)
	}

	slog.Debug("calculator loaded",
		"config", opts.configPath,
		"unknown_stats", policy.String(),
		"stages", len(stages.All()),
		"companion_max_level", table.MaxLevel())

	agg := stats.NewAggregator(stats.RulesFromConfig(cfg.DPS), policy)
	return &app{
		opts:    opts,
		cfg:     cfg,
		agg:     agg,
		dps:     combat.NewDPSModel(agg, cfg.DPS, combat.FixedDefense{Boss: cfg.DPS.BossDefense, Normal: cfg.DPS.NormalDefense}),
		stages:  stages,
		table:   table,
		metrics: metrics.NewRecorder(),
	}, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
}

// dsn returns the database connection string. STATCALC_DSN overrides config.
func (a *app) dsn() string {
	if dsn := os.Getenv("STATCALC_DSN"); dsn != "" {
		return dsn
	}
	return a.cfg.Database.DSN()
}

func (a *app) database(ctx context.Context) (*db.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	database, err := db.New(ctx, a.dsn())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	a.db = database
	return database, nil
}

// defense resolves target defense from the --stage flag, then the profile
// stage. nil means the configured defaults.
func (a *app) defense(p *profile.Profile) (combat.DefenseProvider, error) {
	id := a.opts.stage
	if id == "" && p != nil {
		id = p.Stage
	}
	if id == "" {
		return nil, nil
	}
	st, ok := a.stages.Stage(id)
	if !ok {
		return nil, fmt.Errorf("unknown stage %q", id)
	}
	return st, nil
}

// character is a loaded profile resolved against the tables.
type character struct {
	profile *profile.Profile
	// raw holds the stats as stored, without companion inventory effects.
	raw  model.Snapshot
	base model.Snapshot
	pool *companion.Pool
	dps  *combat.DPSModel
	lock *model.CompanionKey
}

// loadCharacter reads the profile and resolves its companions. With --db,
// stored stats replace the profile stats and companions come from the
// database.
func (a *app) loadCharacter(ctx context.Context) (*character, error) {
	p, err := profile.Load(a.opts.profilePath)
	if err != nil {
		return nil, err
	}
	raw, err := p.Snapshot(a.agg.Policy())
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", a.opts.profilePath, err)
	}

	var store companion.Store
	if a.opts.useDB {
		database, err := a.database(ctx)
		if err != nil {
			return nil, err
		}
		stored, ok, err := db.NewStatsRepository(database.Pool()).Load(ctx, p.Character, a.agg.Policy())
		if err != nil {
			return nil, err
		}
		if ok {
			raw = stored
		}
		store = db.NewCompanionRepository(database.Pool(), p.Character)
	} else {
		if store, err = p.Store(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", a.opts.profilePath, err)
		}
	}

	pool, err := companion.Collect(ctx, store, a.table, a.agg)
	if err != nil {
		return nil, err
	}
	defense, err := a.defense(p)
	if err != nil {
		return nil, err
	}
	dps := a.dps
	if defense != nil {
		dps = a.dps.WithDefense(defense)
	}
	lock, err := p.LockedMainKey()
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", a.opts.profilePath, err)
	}

	return &character{
		profile: p,
		raw:     raw,
		base:    a.agg.ApplyDelta(raw, pool.Inventory),
		pool:    pool,
		dps:     dps,
		lock:    lock,
	}, nil
}
