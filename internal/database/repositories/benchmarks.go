package repositories

import (
	"database/sql"
	"fmt"

	"github.com/navlens/navlens/internal/domain"
	"github.com/rs/zerolog"
)

// BenchmarkRepository handles benchmark index history.
type BenchmarkRepository struct {
	*BaseRepository
}

// NewBenchmarkRepository creates a new benchmark repository.
func NewBenchmarkRepository(db *sql.DB, log zerolog.Logger) *BenchmarkRepository {
	return &BenchmarkRepository{
		BaseRepository: NewBase(db, log.With().Str("repo", "benchmarks").Logger()),
	}
}

// GetSeries returns a benchmark's history in ascending date order. An
// unknown benchmark name yields an empty series, not an error; callers
// treat the benchmark as absent.
func (r *BenchmarkRepository) GetSeries(name string) ([]domain.BenchmarkPoint, error) {
	rows, err := r.db.Query(
		`SELECT date, value FROM benchmark_history WHERE benchmark_name = ? ORDER BY date`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark %q: %w", name, err)
	}
	defer rows.Close()

	var series []domain.BenchmarkPoint
	for rows.Next() {
		var (
			dateStr string
			value   float64
		)
		if err := rows.Scan(&dateStr, &value); err != nil {
			return nil, fmt.Errorf("failed to scan benchmark row: %w", err)
		}
		date, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("bad benchmark date %q for %q: %w", dateStr, name, err)
		}
		series = append(series, domain.BenchmarkPoint{Date: date, Value: value})
	}
	return series, rows.Err()
}

// UpsertPoints writes benchmark observations keyed by (name, date).
func (r *BenchmarkRepository) UpsertPoints(name string, points []domain.BenchmarkPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin benchmark upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO benchmark_history (benchmark_name, date, value) VALUES (?, ?, ?)
		ON CONFLICT(benchmark_name, date) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return fmt.Errorf("failed to prepare benchmark upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(name, formatDate(p.Date), p.Value); err != nil {
			return fmt.Errorf("failed to upsert benchmark %q %s: %w",
				name, formatDate(p.Date), err)
		}
	}
	return tx.Commit()
}
