package currency

import (
	"context"
	"time"

	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
)

// RateSyncJob refreshes the rate of every known currency into the reporting
// currency so request paths find a warm cache.
type RateSyncJob struct {
	normalizer *Normalizer
	currencies []domain.Currency
	timeout    time.Duration
	log        zerolog.Logger
}

// NewRateSyncJob creates a new rate sync job
func NewRateSyncJob(normalizer *Normalizer, currencies []domain.Currency, log zerolog.Logger) *RateSyncJob {
	return &RateSyncJob{
		normalizer: normalizer,
		currencies: currencies,
		timeout:    2 * time.Minute,
		log:        log.With().Str("job", "rate_sync").Logger(),
	}
}

// Run executes the job
func (j *RateSyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	results, err := j.normalizer.Sync(ctx, j.currencies)
	for _, r := range results {
		if r.Error != "" {
			j.log.Warn().Str("pair", r.Pair).Str("error", r.Error).Msg("Rate sync failed for pair")
		}
	}
	if err != nil {
		j.log.Error().Err(err).Msg("Rate sync failed")
		return err
	}

	j.log.Info().Int("pairs", len(results)).Msg("Rate sync completed")
	return nil
}

// Name returns the job name for scheduling and logging
func (j *RateSyncJob) Name() string {
	return "rate_sync"
}
