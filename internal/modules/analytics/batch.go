// Package analytics drives per-ticker work across many tickers and computes
// portfolio-wide and cross-account statistics.
package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSpacing is the pause between two consecutive ticker calls
const DefaultSpacing = 100 * time.Millisecond

// BatchResult is the outcome of one ticker in a batch
type BatchResult[T any] struct {
	Value   T      `json:"value"`
	Ticker  string `json:"ticker"`
	Error   string `json:"error,omitempty"`
	Success bool   `json:"success"`
}

// Coordinator runs per-ticker work sequentially with a fixed pause between
// calls so unauthenticated providers are not hammered.
type Coordinator struct {
	spacing time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
	log     zerolog.Logger
}

// NewCoordinator creates a coordinator. A negative spacing is treated as zero.
func NewCoordinator(spacing time.Duration, log zerolog.Logger) *Coordinator {
	if spacing < 0 {
		spacing = 0
	}
	return &Coordinator{
		spacing: spacing,
		sleep:   sleepContext,
		log:     log.With().Str("service", "batch_coordinator").Logger(),
	}
}

// Spacing returns the pause between calls
func (c *Coordinator) Spacing() time.Duration {
	return c.spacing
}

// RunBatch calls fn for every ticker in order. A failing ticker never stops
// the batch. Once ctx is done, every remaining ticker is marked failed with
// the context error. The map always has one entry per distinct ticker.
func RunBatch[T any](ctx context.Context, c *Coordinator, tickers []string, fn func(ctx context.Context, ticker string) (T, error)) map[string]BatchResult[T] {
	results := make(map[string]BatchResult[T], len(tickers))
	failures := 0

	for i, ticker := range tickers {
		if _, done := results[ticker]; done {
			continue
		}

		if i > 0 && c.spacing > 0 {
			if err := c.sleep(ctx, c.spacing); err != nil {
				failures += markRemaining(results, tickers[i:], err)
				break
			}
		}
		if err := ctx.Err(); err != nil {
			failures += markRemaining(results, tickers[i:], err)
			break
		}

		value, err := fn(ctx, ticker)
		if err != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("Batch item failed")
			results[ticker] = BatchResult[T]{Ticker: ticker, Error: err.Error()}
			failures++
			continue
		}
		results[ticker] = BatchResult[T]{Ticker: ticker, Value: value, Success: true}
	}

	c.log.Debug().
		Int("tickers", len(results)).
		Int("failed", failures).
		Msg("Batch completed")
	return results
}

func markRemaining[T any](results map[string]BatchResult[T], tickers []string, err error) int {
	marked := 0
	for _, ticker := range tickers {
		if _, done := results[ticker]; done {
			continue
		}
		results[ticker] = BatchResult[T]{Ticker: ticker, Error: err.Error()}
		marked++
	}
	return marked
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
