// Package sqlite archives simulation summaries in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tbc-warlock-sim/internal/engine"
	"tbc-warlock-sim/internal/spells"
	"tbc-warlock-sim/internal/storage/sqlite/migrations"
)

// ErrNotFound is returned when a run id is not in the archive.
var ErrNotFound = errors.New("run not found")

// Store persists run summaries.
type Store struct {
	sqlDB *sql.DB
}

// ActionSummary is the per-action total of an archived run.
type ActionSummary struct {
	Action   string
	Casts    int64
	Hits     int64
	Crits    int64
	Misses   int64
	Ticks    int64
	Damage   float64
	ManaGain float64
}

// Run is one archived simulation.
type Run struct {
	ID         uuid.UUID
	Label      string
	Seed       uint64
	Iterations int
	MeanDPS    float64
	StdDevDPS  float64
	MinDPS     float64
	MaxDPS     float64
	MeanFight  time.Duration
	CreatedAt  time.Time
	Actions    []ActionSummary
}

// NewRun summarizes an aggregate under a fresh id. Actions that never
// cast or ticked are left out.
func NewRun(label string, seed uint64, res *engine.AggregateResult) Run {
	run := Run{
		ID:         uuid.New(),
		Label:      label,
		Seed:       seed,
		Iterations: res.Iterations,
		MeanDPS:    res.MeanDPS(),
		StdDevDPS:  res.StdDevDPS(),
		MinDPS:     res.MinDPS,
		MaxDPS:     res.MaxDPS,
		MeanFight:  res.MeanFightLength(),
		CreatedAt:  time.Now().UTC(),
	}
	for i, s := range res.Actions {
		if s.Casts == 0 && s.Ticks == 0 {
			continue
		}
		run.Actions = append(run.Actions, ActionSummary{
			Action:   res.Label(spells.ID(i)),
			Casts:    s.Casts,
			Hits:     s.Hits,
			Crits:    s.Crits,
			Misses:   s.Misses,
			Ticks:    s.Ticks,
			Damage:   s.Damage,
			ManaGain: s.ManaGain,
		})
	}
	return run
}

// Open opens a SQLite archive at path and applies migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite store: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite store: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveRun inserts run and its actions in one transaction.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if run.ID == uuid.Nil {
		return fmt.Errorf("run id is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO runs (id, label, seed, iterations, mean_dps, stddev_dps, min_dps, max_dps, mean_fight_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Label, int64(run.Seed), run.Iterations,
		run.MeanDPS, run.StdDevDPS, run.MinDPS, run.MaxDPS,
		run.MeanFight.Milliseconds(), run.CreatedAt.UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, a := range run.Actions {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO run_actions (run_id, action, casts, hits, crits, misses, ticks, damage, mana_gain)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID.String(), a.Action, a.Casts, a.Hits, a.Crits, a.Misses, a.Ticks, a.Damage, a.ManaGain,
		); err != nil {
			return fmt.Errorf("insert run action %s: %w", a.Action, err)
		}
	}
	return tx.Commit()
}

// GetRun loads one run with its actions, ordered by damage descending.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	if s == nil || s.sqlDB == nil {
		return Run{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, label, seed, iterations, mean_dps, stddev_dps, min_dps, max_dps, mean_fight_ms, created_at
FROM runs WHERE id = ?`, id.String())
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT action, casts, hits, crits, misses, ticks, damage, mana_gain
FROM run_actions WHERE run_id = ? ORDER BY damage DESC, action ASC`, id.String())
	if err != nil {
		return Run{}, fmt.Errorf("query run actions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a ActionSummary
		if err := rows.Scan(&a.Action, &a.Casts, &a.Hits, &a.Crits, &a.Misses, &a.Ticks, &a.Damage, &a.ManaGain); err != nil {
			return Run{}, fmt.Errorf("scan run action: %w", err)
		}
		run.Actions = append(run.Actions, a)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("iterate run actions: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first, without their actions.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, label, seed, iterations, mean_dps, stddev_dps, min_dps, max_dps, mean_fight_ms, created_at
FROM runs ORDER BY created_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run       Run
		id        string
		seed      int64
		fightMS   int64
		createdMS int64
	)
	if err := row.Scan(&id, &run.Label, &seed, &run.Iterations,
		&run.MeanDPS, &run.StdDevDPS, &run.MinDPS, &run.MaxDPS, &fightMS, &createdMS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Run{}, fmt.Errorf("parse run id: %w", err)
	}
	run.ID = parsed
	run.Seed = uint64(seed)
	run.MeanFight = time.Duration(fightMS) * time.Millisecond
	run.CreatedAt = time.UnixMilli(createdMS).UTC()
	return run, nil
}
