package repositories

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navlens/navlens/internal/database"
	"github.com/navlens/navlens/internal/domain"
	"github.com/navlens/navlens/pkg/logger"
)

func testDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFundRepositoryUpsertAndList(t *testing.T) {
	db := testDB(t)
	log := logger.New(logger.Config{Level: "error"})
	repo := NewFundRepository(db.Conn(), log)

	fund := domain.Fund{
		SchemeCode:      "HDFC123",
		Name:            "HDFC Top 100",
		Category:        "Equity: Large Cap",
		Subcategory:     "Large Cap",
		BenchmarkName:   "NIFTY 50",
		ExpenseRatioPct: 1.1,
		AUMCrores:       25000,
		InceptionDate:   date(2000, 10, 11),
		Active:          true,
	}

	id, err := repo.Upsert(fund)
	require.NoError(t, err)
	require.NotZero(t, id)

	// Same scheme code updates in place, keeping the id stable.
	fund.AUMCrores = 26000
	id2, err := repo.Upsert(fund)
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	got, err := repo.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 26000.0, got.AUMCrores)
	assert.Equal(t, date(2000, 10, 11), got.InceptionDate)
	assert.True(t, got.Active)

	missing, err := repo.GetByID(9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	inactive := fund
	inactive.SchemeCode = "IDLE1"
	inactive.Active = false
	_, err = repo.Upsert(inactive)
	require.NoError(t, err)

	active, err := repo.ListActive()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "HDFC123", active[0].SchemeCode)
}

func TestNAVRepositoryRoundTrip(t *testing.T) {
	db := testDB(t)
	log := logger.New(logger.Config{Level: "error"})
	funds := NewFundRepository(db.Conn(), log)
	navs := NewNAVRepository(db.Conn(), log)

	id, err := funds.Upsert(domain.Fund{
		SchemeCode: "F1", Name: "Fund", Category: "Equity: Large Cap",
		Subcategory: "Large Cap", Active: true,
	})
	require.NoError(t, err)

	points := []domain.NAVPoint{
		{Date: date(2024, 1, 1), Value: 100},
		{Date: date(2024, 1, 2), Value: 101.5},
		{Date: date(2024, 1, 3), Value: 99.75},
	}
	require.NoError(t, navs.UpsertPoints(id, points))

	// Re-upserting a corrected value for an existing date must not
	// duplicate the row.
	require.NoError(t, navs.UpsertPoints(id, []domain.NAVPoint{
		{Date: date(2024, 1, 2), Value: 102},
	}))

	series, err := navs.GetSeries(id)
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, 102.0, series[1].Value)
	assert.True(t, series[0].Date.Before(series[1].Date))
	assert.True(t, series[1].Date.Before(series[2].Date))
}

func TestBenchmarkRepositoryRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewBenchmarkRepository(db.Conn(), logger.New(logger.Config{Level: "error"}))

	require.NoError(t, repo.UpsertPoints("NIFTY 50", []domain.BenchmarkPoint{
		{Date: date(2024, 1, 1), Value: 21000},
		{Date: date(2024, 1, 2), Value: 21150},
	}))

	series, err := repo.GetSeries("NIFTY 50")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 21150.0, series[1].Value)

	unknown, err := repo.GetSeries("NO SUCH INDEX")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestScoreRepositoryKeyedUpsert(t *testing.T) {
	db := testDB(t)
	log := logger.New(logger.Config{Level: "error"})
	funds := NewFundRepository(db.Conn(), log)
	scores := NewScoreRepository(db.Conn(), log)

	id, err := funds.Upsert(domain.Fund{
		SchemeCode: "F1", Name: "Fund", Category: "Equity: Large Cap",
		Subcategory: "Large Cap", Active: true,
	})
	require.NoError(t, err)

	r1y := 0.18
	rec := domain.ScoreRecord{
		FundID:      id,
		ScoreDate:   date(2024, 6, 30),
		Subcategory: "Large Cap",
		Components:  domain.ComponentScores{Return1Y: &r1y},

		ReturnsBucket: 32, RiskBucket: 24, FundamentalsBucket: 14, OtherBucket: 6,
		TotalScore:     76,
		Recommendation: domain.RecommendationStrongBuy,
		ConfigVersion:  "v1",
		CreatedAt:      time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC),
	}
	require.NoError(t, scores.Upsert(rec))

	// Second write for the same (fund, date) overwrites: this is what
	// makes scoring runs re-runnable.
	rec.TotalScore = 78
	rec.SubcategoryRank = 1
	rec.SubcategoryPercentile = 100
	rec.Quartile = 1
	require.NoError(t, scores.Upsert(rec))

	got, err := scores.GetByFundAndDate(id, date(2024, 6, 30))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 78.0, got.TotalScore)
	assert.Equal(t, 1, got.SubcategoryRank)
	require.NotNil(t, got.Components.Return1Y)
	assert.Equal(t, 0.18, *got.Components.Return1Y)
	assert.Nil(t, got.Components.Return5Y)

	latest, err := scores.GetLatestByFund(id)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, date(2024, 6, 30), latest.ScoreDate)

	listed, err := scores.ListBySubcategoryAndDate("Large Cap", date(2024, 6, 30))
	require.NoError(t, err)
	require.Len(t, listed, 1)

	all, err := scores.ListByDate(date(2024, 6, 30))
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
