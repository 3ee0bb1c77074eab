package store

import (
	"fmt"

	"github.com/gwlsn/aqreport/internal/analysis"
	"github.com/gwlsn/aqreport/internal/results"
)

// Engine names accepted by Open.
const (
	EngineMemory = "memory"
	EngineSQLite = "sqlite"
)

// Store aggregates loaded result rows.
// Implementations must be safe for concurrent use.
type Store interface {
	// Insert adds every row of t. Absent values are kept absent.
	Insert(t *results.Table) error

	// Summarize returns the per-scale group means of everything inserted,
	// ordered by scale.
	Summarize() (analysis.Summaries, error)

	// OptimalByDistance returns the best scale per distance using the mean
	// of per-row dssim*bpp, ordered by distance.
	OptimalByDistance() ([]analysis.DistanceOptimum, error)

	// Close releases resources.
	Close() error
}

// Open returns the aggregation engine with the given name.
func Open(engine string) (Store, error) {
	switch engine {
	case EngineMemory, "":
		return NewMemoryStore(), nil
	case EngineSQLite:
		return NewSQLiteStore()
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
}
