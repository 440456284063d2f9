package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name string
	err  error
	runs int
}

func (j *fakeJob) Run() error   { j.runs++; return j.err }
func (j *fakeJob) Name() string { return j.name }

func TestAddJob(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("@every 30m", &fakeJob{name: "rate_sync"}))
	require.NoError(t, s.AddJob("0 0 3 * * *", &fakeJob{name: "cleanup"}))
	assert.Error(t, s.AddJob("not a schedule", &fakeJob{name: "broken"}))

	status := s.Status()
	require.Len(t, status, 2)
	assert.Equal(t, "cleanup", status[0].Name)
	assert.Equal(t, "@every 30m", status[1].Schedule)
	assert.Zero(t, status[1].Runs)
}

func TestRunNowRecordsStatus(t *testing.T) {
	s := New(zerolog.Nop())
	start := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }

	job := &fakeJob{name: "rate_sync"}
	require.NoError(t, s.AddJob("@hourly", job))

	require.NoError(t, s.RunNow(job))
	job.err = errors.New("all pairs failed")
	assert.Error(t, s.RunNow(job))

	status := s.Status()
	require.Len(t, status, 1)
	assert.Equal(t, 2, status[0].Runs)
	assert.Equal(t, 1, status[0].Failures)
	assert.Equal(t, "all pairs failed", status[0].LastError)
	assert.Equal(t, start, status[0].LastRun)
	assert.Equal(t, 2, job.runs)
}

func TestRunNowUnregisteredJob(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.RunNow(&fakeJob{name: "adhoc"}))

	status := s.Status()
	require.Len(t, status, 1)
	assert.Equal(t, "adhoc", status[0].Name)
	assert.Empty(t, status[0].Schedule)
}

func TestStartStop(t *testing.T) {
	s := New(zerolog.Nop())
	s.Start()
	s.Stop()
}
