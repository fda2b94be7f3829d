package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *stubJob) Name() string        { return j.name }
func (j *stubJob) Description() string { return "stub job" }

func (j *stubJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestIntervalSchedule_Next(t *testing.T) {
	schedule := NewIntervalSchedule(30 * time.Second)

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	assert.True(t, schedule.Next(at).Equal(at.Add(30*time.Second)))
	assert.Equal(t, "@every 30s", schedule.String())
}

func TestIntervalSchedule_ClampsSubSecondIntervals(t *testing.T) {
	schedule := NewIntervalSchedule(10 * time.Millisecond)
	assert.Equal(t, time.Second, schedule.Interval)
}

func TestScheduler_RegisterAndList(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())

	job := &stubJob{name: "checkpoint"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Minute)))

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "checkpoint", jobs[0].Name)
	assert.True(t, jobs[0].Enabled)
	assert.Equal(t, "@every 1m0s", jobs[0].Schedule)
}

func TestScheduler_RejectsDuplicateAndNil(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())

	job := &stubJob{name: "checkpoint"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Minute)))

	assert.ErrorIs(t, s.Register(job, NewIntervalSchedule(time.Minute)), ErrJobAlreadyExists)
	assert.ErrorIs(t, s.Register(nil, NewIntervalSchedule(time.Minute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&stubJob{name: "other"}, nil), ErrNilSchedule)
}

func TestScheduler_RunNowExecutesJob(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())

	job := &stubJob{name: "refresh"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "refresh")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(1), job.runs.Load())
}

func TestScheduler_RunNowReportsJobFailure(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())

	job := &stubJob{name: "broken", err: errors.New("save failed")}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "broken")

	assert.Error(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Success)
}

func TestScheduler_RunNowUnknownJob(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())

	_, err := s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestScheduler_DisableJobPreventsExecution(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())

	job := &stubJob{name: "checkpoint"}
	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Minute)))
	require.NoError(t, s.DisableJob("checkpoint"))

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.False(t, jobs[0].Enabled)

	assert.ErrorIs(t, s.DisableJob("missing"), ErrJobNotFound)
}
