// Package journal records one row per program run in the SQLite database:
// when it ran, how many points it wrote and how many failures of each
// kind it logged.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pisolar/energylog/internal/failure"
)

// Outcome summarises a run.
type Outcome string

const (
	// OutcomeOK means nothing failed.
	OutcomeOK Outcome = "ok"
	// OutcomePartial means something failed but at least one point was written.
	OutcomePartial Outcome = "partial"
	// OutcomeFailed means something failed and nothing was written.
	OutcomeFailed Outcome = "failed"
)

// OutcomeOf classifies a tally.
func OutcomeOf(t failure.Tally) Outcome {
	switch {
	case t.Errors() == 0:
		return OutcomeOK
	case t.Written > 0:
		return OutcomePartial
	default:
		return OutcomeFailed
	}
}

// Run is one row of the runs table.
type Run struct {
	ID         string
	Program    string
	StartedAt  time.Time
	FinishedAt time.Time
	Written    int
	Failures   map[failure.Kind]int
	Outcome    Outcome
}

// NewRun builds a Run from the tally of a finished run.
func NewRun(program string, started, finished time.Time, t failure.Tally) *Run {
	failures := make(map[failure.Kind]int, len(t.Failures))
	for k, v := range t.Failures {
		failures[k] = v
	}
	return &Run{
		Program:    program,
		StartedAt:  started.UTC(),
		FinishedAt: finished.UTC(),
		Written:    t.Written,
		Failures:   failures,
		Outcome:    OutcomeOf(t),
	}
}

// Repository stores runs.
type Repository interface {
	Record(ctx context.Context, run *Run) error
	Recent(ctx context.Context, program string, limit int) ([]Run, error)
}

// SQLiteRepository writes runs to the runs table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns a repository over db. The runs migration
// must already be applied.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts run, generating its ID if empty.
func (r *SQLiteRepository) Record(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = "run-" + uuid.NewString()[:8]
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, program, started_at, finished_at, points_written,
		   transport_failures, data_shape_failures, store_failures, unknown_failures, outcome)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Program,
		run.StartedAt.Format(time.RFC3339Nano),
		run.FinishedAt.Format(time.RFC3339Nano),
		run.Written,
		run.Failures[failure.KindTransport],
		run.Failures[failure.KindDataShape],
		run.Failures[failure.KindStore],
		run.Failures[failure.KindUnknown],
		string(run.Outcome),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// Recent returns the latest runs for program, newest first.
func (r *SQLiteRepository) Recent(ctx context.Context, program string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, program, started_at, finished_at, points_written,
		   transport_failures, data_shape_failures, store_failures, unknown_failures, outcome
		 FROM runs WHERE program = ? ORDER BY started_at DESC LIMIT ?`,
		program, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                          Run
			started, finished, outcome   string
			transport, shape, store, unk int
		)
		if err := rows.Scan(&run.ID, &run.Program, &started, &finished, &run.Written,
			&transport, &shape, &store, &unk, &outcome); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing run start %q: %w", started, err)
		}
		if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parsing run finish %q: %w", finished, err)
		}
		run.Outcome = Outcome(outcome)
		run.Failures = map[failure.Kind]int{
			failure.KindTransport: transport,
			failure.KindDataShape: shape,
			failure.KindStore:     store,
			failure.KindUnknown:   unk,
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}
