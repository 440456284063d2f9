package di

import (
	"fmt"

	"github.com/pricefolio/pricefolio/internal/clientdata"
	"github.com/pricefolio/pricefolio/internal/config"
	"github.com/pricefolio/pricefolio/internal/modules/currency"
	"github.com/pricefolio/pricefolio/internal/scheduler"
	"github.com/rs/zerolog"
)

// Fixed maintenance schedules (seconds field first)
const (
	walCheckpointSchedule = "0 */15 * * * *"
	integritySchedule     = "0 30 4 * * *"
)

// RegisterJobs creates the background jobs and registers them with sched
func RegisterJobs(container *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{
		RateSync:       currency.NewRateSyncJob(container.Normalizer, container.Detector.Currencies(), log),
		Cleanup:        clientdata.NewCleanupJob(container.ClientDataRepo, log),
		WALCheckpoints: scheduler.NewCheckWALCheckpointsJob(log, container.SQLiteDatabases()...),
		Databases:      scheduler.NewCheckDatabasesJob(log, container.SQLiteDatabases()...),
	}

	schedules := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.Scheduler.RateSyncSchedule, jobs.RateSync},
		{cfg.Scheduler.CleanupSchedule, jobs.Cleanup},
		{walCheckpointSchedule, jobs.WALCheckpoints},
		{integritySchedule, jobs.Databases},
	}
	for _, s := range schedules {
		if err := sched.AddJob(s.schedule, s.job); err != nil {
			return nil, fmt.Errorf("failed to register job %s: %w", s.job.Name(), err)
		}
	}

	return jobs, nil
}
