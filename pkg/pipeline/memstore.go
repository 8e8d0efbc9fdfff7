package pipeline

import (
	"context"
	"sync"

	"github.com/guittarj/TraitsTransplants/pkg/dissim"
)

// MemStore is an in-memory SummaryStore. It is the default when no
// checkpoint database is configured.
type MemStore struct {
	mu   sync.Mutex
	recs []dissim.Record
}

// NewMemStore creates an empty in-memory summary store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

// Upsert merges the batch into the held summary. The store keeps at most
// one record per group key.
func (s *MemStore) Upsert(_ context.Context, recs []dissim.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = dissim.MergeRecords(append(s.recs, recs...))
	return nil
}

// Load returns a copy of the merged summary.
func (s *MemStore) Load(_ context.Context) ([]dissim.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]dissim.Record, len(s.recs))
	copy(res, s.recs)
	return res, nil
}

// Reset discards all stored records.
func (s *MemStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = nil
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error {
	return nil
}
