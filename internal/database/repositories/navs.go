package repositories

import (
	"database/sql"
	"fmt"

	"github.com/navlens/navlens/internal/domain"
	"github.com/rs/zerolog"
)

// NAVRepository handles per-fund NAV history.
type NAVRepository struct {
	*BaseRepository
}

// NewNAVRepository creates a new NAV repository.
func NewNAVRepository(db *sql.DB, log zerolog.Logger) *NAVRepository {
	return &NAVRepository{
		BaseRepository: NewBase(db, log.With().Str("repo", "navs").Logger()),
	}
}

// GetSeries returns a fund's full NAV history in ascending date order.
func (r *NAVRepository) GetSeries(fundID int64) ([]domain.NAVPoint, error) {
	rows, err := r.db.Query(
		`SELECT date, nav FROM nav_history WHERE fund_id = ? ORDER BY date`, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query NAV history for fund %d: %w", fundID, err)
	}
	defer rows.Close()

	var series []domain.NAVPoint
	for rows.Next() {
		var (
			dateStr string
			nav     float64
		)
		if err := rows.Scan(&dateStr, &nav); err != nil {
			return nil, fmt.Errorf("failed to scan NAV row: %w", err)
		}
		date, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("bad NAV date %q for fund %d: %w", dateStr, fundID, err)
		}
		series = append(series, domain.NAVPoint{Date: date, Value: nav})
	}
	return series, rows.Err()
}

// UpsertPoints writes NAV observations keyed by (fund_id, date) inside
// one transaction.
func (r *NAVRepository) UpsertPoints(fundID int64, points []domain.NAVPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin NAV upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO nav_history (fund_id, date, nav) VALUES (?, ?, ?)
		ON CONFLICT(fund_id, date) DO UPDATE SET nav = excluded.nav`)
	if err != nil {
		return fmt.Errorf("failed to prepare NAV upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(fundID, formatDate(p.Date), p.Value); err != nil {
			return fmt.Errorf("failed to upsert NAV %s for fund %d: %w",
				formatDate(p.Date), fundID, err)
		}
	}
	return tx.Commit()
}
