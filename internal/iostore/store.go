// Package iostore implements a SQLite-backed SummaryStore. The running
// summary survives process restarts, so an interrupted corpus pass can be
// resumed from the last flush instead of starting over.
package iostore

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/guittarj/TraitsTransplants/pkg/dissim"
	"github.com/guittarj/TraitsTransplants/pkg/pipeline"
)

const schema = `
CREATE TABLE IF NOT EXISTS distance_summary (
	trait         TEXT    NOT NULL,
	turf_id       TEXT    NOT NULL,
	year          INTEGER NOT NULL,
	m             REAL    NOT NULL,
	d             INTEGER NOT NULL,
	dissimilarity REAL    NOT NULL,
	reps          INTEGER NOT NULL,
	PRIMARY KEY (trait, turf_id, year, m, d)
)`

// The upsert performs the reps-weighted merge in SQL, so a flush is one
// statement per group regardless of how many records the group already
// absorbed.
const upsertQ = `
INSERT INTO distance_summary
	(trait, turf_id, year, m, d, dissimilarity, reps)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (trait, turf_id, year, m, d) DO UPDATE SET
	dissimilarity = (distance_summary.dissimilarity * distance_summary.reps
		+ excluded.dissimilarity * excluded.reps)
		/ (distance_summary.reps + excluded.reps),
	reps = distance_summary.reps + excluded.reps`

const loadQ = `
SELECT trait, turf_id, year, m, d, dissimilarity, reps
FROM distance_summary
ORDER BY trait, turf_id, year, d, m`

// Store is a SQLite implementation of pipeline.SummaryStore.
type Store struct {
	db   *sql.DB
	path string
}

var _ pipeline.SummaryStore = (*Store)(nil)

// Open opens (creating if needed) the checkpoint database at path.
// Connections are serialized; a busy timeout keeps concurrent flushes from
// failing fast on lock contention.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("cannot create checkpoint dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open checkpoint db %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err = db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cannot set busy_timeout on %s: %w", path, err)
	}
	if _, err = db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cannot init checkpoint schema in %s: %w", path, err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the location of the checkpoint file.
func (s *Store) Path() string {
	return s.path
}

// Upsert merges a batch of collapsed records into the store. Records with
// missing dissimilarity or without weight are dropped, matching the
// in-memory merge semantics.
func (s *Store) Upsert(ctx context.Context, recs []dissim.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot begin checkpoint tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertQ)
	if err != nil {
		return fmt.Errorf("cannot prepare checkpoint upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range recs {
		if r.Reps <= 0 || math.IsNaN(r.Dissim) {
			continue
		}
		_, err = stmt.ExecContext(ctx,
			r.Trait, r.TurfID, r.Year, r.M, r.D, r.Dissim, r.Reps,
		)
		if err != nil {
			return fmt.Errorf("cannot upsert record %s/%s/%d: %w",
				r.Trait, r.TurfID, r.Year, err)
		}
	}

	return tx.Commit()
}

// Load returns the merged summary, sorted.
func (s *Store) Load(ctx context.Context) ([]dissim.Record, error) {
	rows, err := s.db.QueryContext(ctx, loadQ)
	if err != nil {
		return nil, fmt.Errorf("cannot load checkpoint summary: %w", err)
	}
	defer rows.Close()

	var res []dissim.Record
	for rows.Next() {
		var r dissim.Record
		err = rows.Scan(
			&r.Trait, &r.TurfID, &r.Year, &r.M, &r.D, &r.Dissim, &r.Reps,
		)
		if err != nil {
			return nil, fmt.Errorf("cannot scan checkpoint record: %w", err)
		}
		res = append(res, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("checkpoint iteration failed: %w", err)
	}
	return res, nil
}

// Reset discards all stored records; a fresh run starts from an empty
// summary.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM distance_summary")
	if err != nil {
		return fmt.Errorf("cannot reset checkpoint: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
