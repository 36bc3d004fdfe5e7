package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/navlens/navlens/internal/pipeline"
	"github.com/rs/zerolog"
)

// ScoringJob runs the nightly scoring pipeline for the current date.
// A run that is still in progress when the next trigger fires is not
// doubled up; the later trigger is skipped.
type ScoringJob struct {
	log      zerolog.Logger
	pipeline *pipeline.Service

	mu      sync.Mutex
	running bool
}

// NewScoringJob creates the nightly scoring job.
func NewScoringJob(p *pipeline.Service, log zerolog.Logger) *ScoringJob {
	return &ScoringJob{
		log:      log.With().Str("job", "scoring").Logger(),
		pipeline: p,
	}
}

// Name returns the job name
func (j *ScoringJob) Name() string {
	return "scoring"
}

// Run executes one scoring pass over all active funds.
func (j *ScoringJob) Run() error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		j.log.Warn().Msg("Scoring run already in progress, skipping")
		return nil
	}
	j.running = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	startTime := time.Now()
	stats, err := j.pipeline.RunScoringDate(context.Background(), time.Now().UTC())
	if err != nil {
		return err
	}

	j.log.Info().
		Int("funds", stats.Funds).
		Int("scored", stats.Scored).
		Int("skipped", stats.Skipped).
		Int("subcategories", stats.Subcategories).
		Dur("duration", time.Since(startTime)).
		Msg("Nightly scoring finished")

	return nil
}
