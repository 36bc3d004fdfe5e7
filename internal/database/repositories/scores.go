package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/navlens/navlens/internal/domain"
	"github.com/rs/zerolog"
)

// ScoreRepository handles persisted score records. Records are keyed by
// (fund_id, score_date): every write is an upsert, so re-running a
// scoring date is idempotent.
type ScoreRepository struct {
	*BaseRepository
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *sql.DB, log zerolog.Logger) *ScoreRepository {
	return &ScoreRepository{
		BaseRepository: NewBase(db, log.With().Str("repo", "scores").Logger()),
	}
}

// Upsert writes one score record keyed by (fund_id, score_date).
func (r *ScoreRepository) Upsert(rec domain.ScoreRecord) error {
	components, err := json.Marshal(rec.Components)
	if err != nil {
		return fmt.Errorf("failed to marshal components for fund %d: %w", rec.FundID, err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.db.Exec(`
		INSERT INTO score_records (fund_id, score_date, subcategory, components,
			returns_bucket, risk_bucket, fundamentals_bucket, other_bucket, total_score,
			subcategory_rank, subcategory_percentile, quartile, recommendation,
			config_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fund_id, score_date) DO UPDATE SET
			subcategory = excluded.subcategory,
			components = excluded.components,
			returns_bucket = excluded.returns_bucket,
			risk_bucket = excluded.risk_bucket,
			fundamentals_bucket = excluded.fundamentals_bucket,
			other_bucket = excluded.other_bucket,
			total_score = excluded.total_score,
			subcategory_rank = excluded.subcategory_rank,
			subcategory_percentile = excluded.subcategory_percentile,
			quartile = excluded.quartile,
			recommendation = excluded.recommendation,
			config_version = excluded.config_version,
			created_at = excluded.created_at`,
		rec.FundID, formatDate(rec.ScoreDate), rec.Subcategory, string(components),
		rec.ReturnsBucket, rec.RiskBucket, rec.FundamentalsBucket, rec.OtherBucket,
		rec.TotalScore, rec.SubcategoryRank, rec.SubcategoryPercentile, rec.Quartile,
		rec.Recommendation, rec.ConfigVersion, createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to upsert score for fund %d on %s: %w",
			rec.FundID, formatDate(rec.ScoreDate), err)
	}
	return nil
}

const scoreColumns = `fund_id, score_date, subcategory, components,
	returns_bucket, risk_bucket, fundamentals_bucket, other_bucket, total_score,
	subcategory_rank, subcategory_percentile, quartile, recommendation,
	config_version, created_at`

// GetByFundAndDate returns one record, or nil when none exists.
func (r *ScoreRepository) GetByFundAndDate(fundID int64, scoreDate time.Time) (*domain.ScoreRecord, error) {
	row := r.db.QueryRow(`SELECT `+scoreColumns+` FROM score_records
		WHERE fund_id = ? AND score_date = ?`, fundID, formatDate(scoreDate))
	rec, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get score for fund %d: %w", fundID, err)
	}
	return rec, nil
}

// GetLatestByFund returns the most recent record for a fund, or nil.
func (r *ScoreRepository) GetLatestByFund(fundID int64) (*domain.ScoreRecord, error) {
	row := r.db.QueryRow(`SELECT `+scoreColumns+` FROM score_records
		WHERE fund_id = ? ORDER BY score_date DESC LIMIT 1`, fundID)
	rec, err := scanScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest score for fund %d: %w", fundID, err)
	}
	return rec, nil
}

// ListBySubcategoryAndDate returns a subcategory's records for one date,
// ordered by rank then fund id.
func (r *ScoreRepository) ListBySubcategoryAndDate(subcategory string, scoreDate time.Time) ([]domain.ScoreRecord, error) {
	rows, err := r.db.Query(`SELECT `+scoreColumns+` FROM score_records
		WHERE subcategory = ? AND score_date = ?
		ORDER BY subcategory_rank, fund_id`, subcategory, formatDate(scoreDate))
	if err != nil {
		return nil, fmt.Errorf("failed to list scores for %q: %w", subcategory, err)
	}
	defer rows.Close()
	return collectScores(rows)
}

// ListByDate returns every record for one scoring date.
func (r *ScoreRepository) ListByDate(scoreDate time.Time) ([]domain.ScoreRecord, error) {
	rows, err := r.db.Query(`SELECT `+scoreColumns+` FROM score_records
		WHERE score_date = ? ORDER BY subcategory, fund_id`, formatDate(scoreDate))
	if err != nil {
		return nil, fmt.Errorf("failed to list scores for %s: %w", formatDate(scoreDate), err)
	}
	defer rows.Close()
	return collectScores(rows)
}

func collectScores(rows *sql.Rows) ([]domain.ScoreRecord, error) {
	var records []domain.ScoreRecord
	for rows.Next() {
		rec, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanScore(s scanner) (*domain.ScoreRecord, error) {
	var (
		rec        domain.ScoreRecord
		scoreDate  string
		components string
		createdAt  string
	)
	err := s.Scan(&rec.FundID, &scoreDate, &rec.Subcategory, &components,
		&rec.ReturnsBucket, &rec.RiskBucket, &rec.FundamentalsBucket, &rec.OtherBucket,
		&rec.TotalScore, &rec.SubcategoryRank, &rec.SubcategoryPercentile, &rec.Quartile,
		&rec.Recommendation, &rec.ConfigVersion, &createdAt)
	if err != nil {
		return nil, err
	}

	date, err := parseDate(scoreDate)
	if err != nil {
		return nil, fmt.Errorf("bad score date %q: %w", scoreDate, err)
	}
	rec.ScoreDate = date

	if err := json.Unmarshal([]byte(components), &rec.Components); err != nil {
		return nil, fmt.Errorf("bad components payload for fund %d: %w", rec.FundID, err)
	}

	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = created

	return &rec, nil
}
