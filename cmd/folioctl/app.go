package main

import (
	"context"
	"fmt"
	"io"

	"github.com/google/subcommands"
	"github.com/pricefolio/pricefolio/internal/config"
	"github.com/pricefolio/pricefolio/internal/di"
	"github.com/pricefolio/pricefolio/internal/scheduler"
	"github.com/pricefolio/pricefolio/pkg/logger"
	"github.com/rs/zerolog"
)

// app holds what every command shares: output streams and a lazily wired container
type app struct {
	out       io.Writer
	errOut    io.Writer
	loadCfg   func() (*config.Config, error)
	container *di.Container
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut, loadCfg: config.Load}
}

func (a *app) commands() []subcommands.Command {
	return []subcommands.Command{
		&quoteCmd{app: a},
		&detectCmd{app: a},
		&convertCmd{app: a},
		&summaryCmd{app: a},
	}
}

// wire builds the container on first use. Logs go to errOut at warn level unless LOG_LEVEL says otherwise.
func (a *app) wire(ctx context.Context) (*di.Container, error) {
	if a.container != nil {
		return a.container, nil
	}

	cfg, err := a.loadCfg()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.LogLevel
	if level == "info" {
		level = "warn"
	}
	log := logger.New(logger.Config{Level: level, Pretty: true, Output: a.errOut})

	// The scheduler is never started; jobs are registered only to satisfy wiring
	container, _, err := di.Wire(ctx, cfg, scheduler.New(zerolog.Nop()), log)
	if err != nil {
		return nil, err
	}
	a.container = container
	return container, nil
}

func (a *app) close() {
	if a.container != nil {
		a.container.Close()
		a.container = nil
	}
}

func (a *app) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(a.errOut, "Error:", err)
	return subcommands.ExitFailure
}
