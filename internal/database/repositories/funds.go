package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/navlens/navlens/internal/domain"
	"github.com/rs/zerolog"
)

// FundRepository handles fund reference data.
type FundRepository struct {
	*BaseRepository
}

// NewFundRepository creates a new fund repository.
func NewFundRepository(db *sql.DB, log zerolog.Logger) *FundRepository {
	return &FundRepository{
		BaseRepository: NewBase(db, log.With().Str("repo", "funds").Logger()),
	}
}

const fundColumns = `id, scheme_code, name, category, subcategory, benchmark_name,
	expense_ratio_pct, aum_crores, inception_date, active`

// GetByID returns one fund, or nil when the id is unknown.
func (r *FundRepository) GetByID(id int64) (*domain.Fund, error) {
	row := r.db.QueryRow(`SELECT `+fundColumns+` FROM funds WHERE id = ?`, id)
	fund, err := scanFund(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fund %d: %w", id, err)
	}
	return fund, nil
}

// ListActive returns every fund flagged active, ordered by id.
func (r *FundRepository) ListActive() ([]domain.Fund, error) {
	rows, err := r.db.Query(`SELECT ` + fundColumns + ` FROM funds WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active funds: %w", err)
	}
	defer rows.Close()

	var funds []domain.Fund
	for rows.Next() {
		fund, err := scanFund(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fund: %w", err)
		}
		funds = append(funds, *fund)
	}
	return funds, rows.Err()
}

// Upsert inserts or updates a fund keyed on scheme code and returns its id.
func (r *FundRepository) Upsert(f domain.Fund) (int64, error) {
	var inception interface{}
	if !f.InceptionDate.IsZero() {
		inception = formatDate(f.InceptionDate)
	}

	_, err := r.db.Exec(`
		INSERT INTO funds (scheme_code, name, category, subcategory, benchmark_name,
			expense_ratio_pct, aum_crores, inception_date, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scheme_code) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			subcategory = excluded.subcategory,
			benchmark_name = excluded.benchmark_name,
			expense_ratio_pct = excluded.expense_ratio_pct,
			aum_crores = excluded.aum_crores,
			inception_date = excluded.inception_date,
			active = excluded.active`,
		f.SchemeCode, f.Name, f.Category, f.Subcategory, f.BenchmarkName,
		f.ExpenseRatioPct, f.AUMCrores, inception, f.Active)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert fund %s: %w", f.SchemeCode, err)
	}

	var id int64
	if err := r.db.QueryRow(`SELECT id FROM funds WHERE scheme_code = ?`, f.SchemeCode).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to read back fund id for %s: %w", f.SchemeCode, err)
	}
	return id, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFund(s scanner) (*domain.Fund, error) {
	var (
		f         domain.Fund
		inception sql.NullString
		active    int
	)
	err := s.Scan(&f.ID, &f.SchemeCode, &f.Name, &f.Category, &f.Subcategory,
		&f.BenchmarkName, &f.ExpenseRatioPct, &f.AUMCrores, &inception, &active)
	if err != nil {
		return nil, err
	}
	f.Active = active != 0
	if inception.Valid && inception.String != "" {
		d, err := parseDate(inception.String)
		if err != nil {
			return nil, fmt.Errorf("bad inception date %q: %w", inception.String, err)
		}
		f.InceptionDate = d
	}
	return &f, nil
}
