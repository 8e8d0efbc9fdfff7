// Package pipeline defines the contracts between the streaming aggregator
// and its collaborators, plus an in-memory summary store for runs without
// a checkpoint file.
package pipeline

import (
	"context"

	"github.com/guittarj/TraitsTransplants/pkg/dissim"
)

// SummaryStore keeps the bounded running summary between flushes of the
// accumulation buffer. The store is a valid resume point at any moment:
// records already merged stay correct if the stream stops early.
type SummaryStore interface {
	// Upsert merges a batch of collapsed records into the store using
	// reps-weighted means per group key.
	Upsert(ctx context.Context, recs []dissim.Record) error

	// Load returns the merged summary, sorted deterministically.
	Load(ctx context.Context) ([]dissim.Record, error)

	// Reset discards all stored records.
	Reset(ctx context.Context) error

	Close() error
}

// Summarizer runs the corpus stream end to end and produces the final
// summary.
type Summarizer interface {
	Summarize(ctx context.Context) (*Result, error)
}

// Result is the outcome of one corpus pass.
type Result struct {
	// Summary holds the merged distance-to-control records,
	// one per (trait, turfID, year, m, d) group.
	Summary []dissim.Record

	// Baseline holds the pretreatment-year rows copied from observed
	// field distances, for the extended output table.
	Baseline []dissim.Record

	Stats Stats
}

// Stats counts the work done during one corpus pass.
type Stats struct {
	FilesSeen    int
	FilesMatched int
	FilesFailed  int
	RunsScored   int
	RunsSkipped  int
	Flushes      int
}
