package main

import (
	"bytes"
	"context"
	"flag"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/pricefolio/pricefolio/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	a := newApp(out, errOut)
	dataDir := t.TempDir()
	a.loadCfg = func() (*config.Config, error) {
		return &config.Config{
			DataDir:           dataDir,
			LogLevel:          "error",
			ReportingCurrency: "EUR",
			Port:              8001,
			UseSQLite:         true,
			Providers: &config.ProviderConfig{
				PriceProviders:  []string{"yahoo"},
				RateProviders:   []string{"exchangerate-api"},
				ProviderTimeout: time.Second,
				RateCacheTTL:    time.Hour,
			},
			Scheduler: &config.SchedulerConfig{
				RateSyncSchedule: "@every 30m",
				CleanupSchedule:  "@daily",
			},
		}, nil
	}
	t.Cleanup(a.close)
	return a, out, errOut
}

func run(a *app, args ...string) subcommands.ExitStatus {
	fs := flag.NewFlagSet("folioctl", flag.ContinueOnError)
	commander := subcommands.NewCommander(fs, "folioctl")
	for _, c := range a.commands() {
		commander.Register(c, "")
	}
	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return commander.Execute(context.Background())
}

func TestDetect(t *testing.T) {
	a, out, _ := newTestApp(t)

	status := run(a, "detect", "asml.as", "AAPL", "BIRG.L", "NESN.SW")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "ASML.AS\tEUR\nAAPL\tUSD\nBIRG.L\tEUR\nNESN.SW\tCHF\n", out.String())
	assert.Nil(t, a.container, "detect must not open databases")
}

func TestDetect_NoArgs(t *testing.T) {
	a, _, _ := newTestApp(t)
	assert.Equal(t, subcommands.ExitUsageError, run(a, "detect"))
}

func TestConvert_Identity(t *testing.T) {
	a, out, _ := newTestApp(t)

	status := run(a, "convert", "-from", "EUR", "1234.5")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "€1,234.50 = €1,234.50 (rate 1.000000, identity)\n", out.String())
}

func TestConvert_InvalidAmount(t *testing.T) {
	a, _, errOut := newTestApp(t)

	status := run(a, "convert", "-from", "USD", "lots")
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, errOut.String(), `invalid amount "lots"`)
}

func TestSummary_RequiresAccount(t *testing.T) {
	a, _, _ := newTestApp(t)
	assert.Equal(t, subcommands.ExitUsageError, run(a, "summary"))
}

func TestSummary_EmptyAccount(t *testing.T) {
	a, out, _ := newTestApp(t)

	status := run(a, "summary", "-account", "alice")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "No lots recorded for alice\n", out.String())
}

func TestSummary_UnknownTicker(t *testing.T) {
	a, _, errOut := newTestApp(t)

	status := run(a, "summary", "-account", "alice", "AAPL")
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Contains(t, errOut.String(), "Error:")
}
