package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/navlens/navlens/internal/domain"
	"github.com/navlens/navlens/internal/modules/backtest"
)

const dateLayout = "2006-01-02"

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "navlens",
	})
}

// handleFundScore returns a fund's score record, either for an explicit
// ?date= or the latest one on record.
func (s *Server) handleFundScore(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid fund id")
		return
	}

	var rec *domain.ScoreRecord
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		rec, err = s.scores.GetByFundAndDate(id, date)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
	} else {
		rec, err = s.scores.GetLatestByFund(id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
	}

	if rec == nil {
		fund, err := s.funds.GetByID(id)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		if fund == nil {
			s.writeError(w, http.StatusNotFound, "unknown fund")
			return
		}
		s.writeError(w, http.StatusNotFound, "no score record for fund")
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// handleRunScores triggers a scoring run for the given date (default
// today) and reports the run stats.
func (s *Server) handleRunScores(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date string `json:"date"`
	}
	// An empty body means "today"; anything else must parse.
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asOf := time.Now().UTC()
	if body.Date != "" {
		parsed, err := time.Parse(dateLayout, body.Date)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		asOf = parsed
	}

	stats, err := s.pipeline.RunScoringDate(r.Context(), asOf)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// handleSubcategoryRankings lists a subcategory's ranked records for one
// scoring date (default today).
func (s *Server) handleSubcategoryRankings(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	date := time.Now().UTC()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		date = parsed
	}

	records, err := s.scores.ListBySubcategoryAndDate(name, date)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"subcategory": name,
		"score_date":  date.UTC().Format(dateLayout),
		"rankings":    records,
	})
}

// backtestRequest is the wire shape shared by the backtest and optimize
// endpoints.
type backtestRequest struct {
	Allocations   []domain.Allocation `json:"allocations"`
	Start         string              `json:"start"`
	End           string              `json:"end"`
	InitialAmount float64             `json:"initial_amount"`
	BenchmarkName string              `json:"benchmark_name"`

	Policy struct {
		Kind         string  `json:"kind"`
		Cadence      string  `json:"cadence"`
		ThresholdPct float64 `json:"threshold_pct"`
	} `json:"policy"`

	Thresholds []float64 `json:"thresholds"`
}

// build converts the wire request into a simulator request plus the NAV
// and benchmark series it needs.
func (s *Server) buildBacktest(req backtestRequest) (backtest.Request, map[int64][]domain.NAVPoint, []domain.BenchmarkPoint, error) {
	start, err := time.Parse(dateLayout, req.Start)
	if err != nil {
		return backtest.Request{}, nil, nil, domain.ConfigurationError("invalid start date %q", req.Start)
	}
	end, err := time.Parse(dateLayout, req.End)
	if err != nil {
		return backtest.Request{}, nil, nil, domain.ConfigurationError("invalid end date %q", req.End)
	}

	policy := backtest.NonePolicy()
	switch req.Policy.Kind {
	case "", string(backtest.PolicyNone):
	case string(backtest.PolicyCalendar):
		policy, err = backtest.CalendarPolicy(req.Policy.Cadence)
		if err != nil {
			return backtest.Request{}, nil, nil, err
		}
	case string(backtest.PolicyThreshold):
		policy, err = backtest.ThresholdPolicy(req.Policy.ThresholdPct)
		if err != nil {
			return backtest.Request{}, nil, nil, err
		}
	default:
		return backtest.Request{}, nil, nil, domain.ConfigurationError("unknown policy kind %q", req.Policy.Kind)
	}

	navs := make(map[int64][]domain.NAVPoint, len(req.Allocations))
	for _, a := range req.Allocations {
		series, err := s.navs.GetSeries(a.FundID)
		if err != nil {
			return backtest.Request{}, nil, nil, err
		}
		navs[a.FundID] = series
	}

	var bench []domain.BenchmarkPoint
	if req.BenchmarkName != "" {
		bench, err = s.benchmarks.GetSeries(req.BenchmarkName)
		if err != nil {
			return backtest.Request{}, nil, nil, err
		}
	}

	return backtest.Request{
		Allocations:   req.Allocations,
		Start:         start,
		End:           end,
		InitialAmount: req.InitialAmount,
		Policy:        policy,
	}, navs, bench, nil
}

// handleBacktest runs one backtest and returns the full result.
func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	runReq, navs, bench, err := s.buildBacktest(req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	res, err := s.simulator.Run(runReq, navs, bench)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleOptimize sweeps the threshold grid and returns the best policy.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	runReq, navs, bench, err := s.buildBacktest(req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	out, err := s.optimizer.Optimize(runReq, req.Thresholds, navs, bench)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientData), errors.Is(err, domain.ErrAlignment):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.log.Error().Err(err).Msg("Request failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
