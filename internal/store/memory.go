package store

import (
	"sync"

	"github.com/gwlsn/aqreport/internal/analysis"
	"github.com/gwlsn/aqreport/internal/results"
)

// MemoryStore aggregates in process with the analysis package.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []results.Row
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends the rows of t.
func (s *MemoryStore) Insert(t *results.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, t.Rows...)
	return nil
}

// Summarize groups the inserted rows by scale.
func (s *MemoryStore) Summarize() (analysis.Summaries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return analysis.Summarize(results.NewTable(s.rows)), nil
}

// OptimalByDistance picks the best scale per distance.
func (s *MemoryStore) OptimalByDistance() ([]analysis.DistanceOptimum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return analysis.OptimalScaleByDistance(results.NewTable(s.rows)), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
