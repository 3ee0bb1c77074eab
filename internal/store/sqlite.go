package store

import (
	"database/sql"
	"fmt"
	"math"
	"sync"

	"github.com/gwlsn/aqreport/internal/analysis"
	"github.com/gwlsn/aqreport/internal/logger"
	"github.com/gwlsn/aqreport/internal/results"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	image TEXT,
	distance REAL,
	aq_scale REAL,
	aq_mean REAL,
	file_size REAL,
	bpp REAL,
	dssim REAL,
	ssimulacra2 REAL
);

CREATE INDEX IF NOT EXISTS idx_results_scale ON results(aq_scale);
CREATE INDEX IF NOT EXISTS idx_results_distance_scale ON results(distance, aq_scale);
`

// SQLiteStore aggregates with SQL over an in-memory SQLite database.
// Nothing is written to disk.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex // Protects concurrent access
}

// NewSQLiteStore opens a fresh in-memory database.
func NewSQLiteStore() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every pooled connection to :memory: would get its own empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Insert copies all rows of t in a single transaction.
func (s *SQLiteStore) Insert(t *results.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO results (
			image, distance, aq_scale, aq_mean, file_size, bpp, dssim, ssimulacra2
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range t.Rows {
		_, err := stmt.Exec(
			nullString(r.Image), nullFloat64(r.Distance), nullFloat64(r.AQScale),
			nullFloat64(r.AQMean), nullFloat64(r.FileSize), nullFloat64(r.BPP),
			nullFloat64(r.DSSIM), nullFloat64(r.SSIMULACRA2),
		)
		if err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Debug("Inserted results into sqlite", "rows", len(t.Rows))
	return nil
}

// Summarize returns per-scale means computed by SQLite. AVG skips NULL, so
// absent values are excluded per column the same way the in-process engine
// does.
func (s *SQLiteStore) Summarize() (analysis.Summaries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT
			aq_scale,
			COUNT(*) as count,
			AVG(bpp) as bpp,
			AVG(dssim) as dssim,
			AVG(ssimulacra2) as ssimulacra2,
			AVG(file_size) as file_size
		FROM results
		WHERE aq_scale IS NOT NULL
		GROUP BY aq_scale
		ORDER BY aq_scale
	`)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	defer rows.Close()

	var out analysis.Summaries
	for rows.Next() {
		var scale float64
		var count int
		var bpp, dssim, ssim2, fileSize sql.NullFloat64
		if err := rows.Scan(&scale, &count, &bpp, &dssim, &ssim2, &fileSize); err != nil {
			return nil, err
		}
		out = append(out, analysis.NewGroupSummary(scale, count,
			floatOrNaN(bpp), floatOrNaN(dssim), floatOrNaN(ssim2), floatOrNaN(fileSize)))
	}
	return out, rows.Err()
}

// OptimalByDistance averages dssim*bpp per (distance, scale) in SQL and keeps
// the lowest scale per distance. Ties go to the smaller scale.
func (s *SQLiteStore) OptimalByDistance() ([]analysis.DistanceOptimum, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT distance, aq_scale, AVG(dssim * bpp) as rd
		FROM results
		WHERE distance IS NOT NULL AND aq_scale IS NOT NULL
		GROUP BY distance, aq_scale
		ORDER BY distance, aq_scale
	`)
	if err != nil {
		return nil, fmt.Errorf("optimal by distance: %w", err)
	}
	defer rows.Close()

	var out []analysis.DistanceOptimum
	best := math.Inf(1)
	for rows.Next() {
		var distance, scale float64
		var rd sql.NullFloat64
		if err := rows.Scan(&distance, &scale, &rd); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].Distance != distance {
			out = append(out, analysis.DistanceOptimum{Distance: distance})
			best = math.Inf(1)
		}
		cur := &out[len(out)-1]
		if rd.Valid && (!cur.OK || rd.Float64 < best) {
			best, cur.Scale, cur.OK = rd.Float64, scale, true
		}
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Helper functions for SQL values

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat64(f float64) interface{} {
	if results.IsAbsent(f) {
		return nil
	}
	return f
}

func floatOrNaN(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}
