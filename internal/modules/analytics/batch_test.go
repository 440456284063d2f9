package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecordingCoordinator(spacing time.Duration) (*Coordinator, *[]time.Duration) {
	c := NewCoordinator(spacing, zerolog.Nop())
	var slept []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return c, &slept
}

func TestRunBatch_SpacingBetweenCalls(t *testing.T) {
	c, slept := newRecordingCoordinator(100 * time.Millisecond)

	var order []string
	results := RunBatch(context.Background(), c, []string{"AAPL", "MSFT", "KBC.BR"},
		func(_ context.Context, ticker string) (int, error) {
			order = append(order, ticker)
			return len(ticker), nil
		})

	assert.Equal(t, []string{"AAPL", "MSFT", "KBC.BR"}, order)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 100 * time.Millisecond}, *slept)
	require.Len(t, results, 3)
	assert.True(t, results["KBC.BR"].Success)
	assert.Equal(t, 6, results["KBC.BR"].Value)
}

func TestRunBatch_FailureDoesNotAbort(t *testing.T) {
	c, _ := newRecordingCoordinator(0)

	results := RunBatch(context.Background(), c, []string{"A", "B", "C"},
		func(_ context.Context, ticker string) (string, error) {
			if ticker == "B" {
				return "", errors.New("provider down")
			}
			return ticker + "!", nil
		})

	require.Len(t, results, 3)
	assert.True(t, results["A"].Success)
	assert.False(t, results["B"].Success)
	assert.Equal(t, "provider down", results["B"].Error)
	assert.True(t, results["C"].Success)
	assert.Equal(t, "C!", results["C"].Value)
}

func TestRunBatch_CancellationMarksRemaining(t *testing.T) {
	c, _ := newRecordingCoordinator(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	results := RunBatch(ctx, c, []string{"A", "B", "C"},
		func(_ context.Context, ticker string) (int, error) {
			calls++
			cancel()
			return 1, nil
		})

	assert.Equal(t, 1, calls)
	require.Len(t, results, 3)
	assert.True(t, results["A"].Success)
	assert.Equal(t, context.Canceled.Error(), results["B"].Error)
	assert.Equal(t, context.Canceled.Error(), results["C"].Error)
}

func TestRunBatch_DuplicatesAndEmpty(t *testing.T) {
	c, _ := newRecordingCoordinator(0)

	calls := 0
	fn := func(context.Context, string) (int, error) { calls++; return 0, nil }

	assert.Len(t, RunBatch(context.Background(), c, []string{"A", "A"}, fn), 1)
	assert.Equal(t, 1, calls)
	assert.Empty(t, RunBatch(context.Background(), c, nil, fn))
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
