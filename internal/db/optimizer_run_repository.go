package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/statcalc/internal/game/preset"
	"github.com/udisondev/statcalc/internal/model"
)

// OptimizerRun is a stored preset optimization result.
type OptimizerRun struct {
	ID          uuid.UUID
	Fingerprint string
	Monster     model.MonsterType
	Assignment  model.PresetAssignment
	DPS         float64
	BaseDPS     float64
	Examined    int
	Truncated   bool
	CreatedAt   time.Time
}

// RunFromResult converts an optimizer result into a run ready to save.
func RunFromResult(res *preset.Result, monster model.MonsterType) *OptimizerRun {
	return &OptimizerRun{
		Fingerprint: res.Fingerprint,
		Monster:     monster,
		Assignment:  res.Assignment,
		DPS:         res.DPS,
		BaseDPS:     res.BaseDPS,
		Examined:    res.Examined,
		Truncated:   res.Truncated,
	}
}

// Result converts the run back into an optimizer result.
func (r *OptimizerRun) Result() *preset.Result {
	return &preset.Result{
		Assignment:  r.Assignment,
		DPS:         r.DPS,
		BaseDPS:     r.BaseDPS,
		Examined:    r.Examined,
		Truncated:   r.Truncated,
		Fingerprint: r.Fingerprint,
	}
}

// assignmentDoc is the JSONB layout of a preset assignment.
type assignmentDoc struct {
	Main       *string                      `json:"main"`
	Subs       [model.PresetSubSlots]*string `json:"subs"`
	LockedMain bool                         `json:"locked_main"`
}

func encodeAssignment(p model.PresetAssignment) ([]byte, error) {
	doc := assignmentDoc{LockedMain: p.LockedMain}
	if p.Main != nil {
		s := p.Main.String()
		doc.Main = &s
	}
	for i, k := range p.Subs {
		if k != nil {
			s := k.String()
			doc.Subs[i] = &s
		}
	}
	return json.Marshal(doc)
}

func decodeAssignment(raw []byte) (model.PresetAssignment, error) {
	var doc assignmentDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.PresetAssignment{}, err
	}
	p := model.PresetAssignment{LockedMain: doc.LockedMain}
	parse := func(s *string) (*model.CompanionKey, error) {
		if s == nil {
			return nil, nil
		}
		k, err := model.ParseCompanionKey(*s)
		if err != nil {
			return nil, err
		}
		return &k, nil
	}
	var err error
	if p.Main, err = parse(doc.Main); err != nil {
		return model.PresetAssignment{}, err
	}
	for i, s := range doc.Subs {
		if p.Subs[i], err = parse(s); err != nil {
			return model.PresetAssignment{}, err
		}
	}
	if err := p.Validate(); err != nil {
		return model.PresetAssignment{}, err
	}
	return p, nil
}

// OptimizerRunRepository stores optimization results keyed by input
// fingerprint.
type OptimizerRunRepository struct {
	db *pgxpool.Pool
}

// NewOptimizerRunRepository creates a new OptimizerRunRepository.
func NewOptimizerRunRepository(db *pgxpool.Pool) *OptimizerRunRepository {
	return &OptimizerRunRepository{db: db}
}

// Save inserts run, assigning an ID when it has none. ID and CreatedAt are
// set on success.
func (r *OptimizerRunRepository) Save(ctx context.Context, run *OptimizerRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	assignment, err := encodeAssignment(run.Assignment)
	if err != nil {
		return fmt.Errorf("encoding assignment: %w", err)
	}

	query := `
		INSERT INTO optimizer_runs (id, fingerprint, monster, assignment, dps, base_dps, examined, truncated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err = r.db.QueryRow(ctx, query,
		run.ID, run.Fingerprint, run.Monster.String(), assignment,
		run.DPS, run.BaseDPS, run.Examined, run.Truncated,
	).Scan(&run.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting optimizer run %s: %w", run.ID, err)
	}
	return nil
}

// FindByFingerprint returns the latest run with the given fingerprint.
// Returns nil, nil if there is none.
func (r *OptimizerRunRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*OptimizerRun, error) {
	query := `
		SELECT id, fingerprint, monster, assignment, dps, base_dps, examined, truncated, created_at
		FROM optimizer_runs
		WHERE fingerprint = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var (
		run        OptimizerRun
		monster    string
		assignment []byte
	)
	err := r.db.QueryRow(ctx, query, fingerprint).Scan(
		&run.ID, &run.Fingerprint, &monster, &assignment,
		&run.DPS, &run.BaseDPS, &run.Examined, &run.Truncated, &run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying optimizer run %s: %w", fingerprint, err)
	}

	if run.Monster, err = model.ParseMonsterType(monster); err != nil {
		return nil, fmt.Errorf("optimizer run %s: %w", run.ID, err)
	}
	if run.Assignment, err = decodeAssignment(assignment); err != nil {
		return nil, fmt.Errorf("decoding assignment of run %s: %w", run.ID, err)
	}
	return &run, nil
}
