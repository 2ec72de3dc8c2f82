package harness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScenario counts lifecycle calls and fails on demand.
type fakeScenario struct {
	name      string
	befores   int
	tasks     int
	taskDelay time.Duration
	beforeErr error
	// failOn fails Task on the n-th call (1-based); 0 never fails.
	failOn  int
	taskErr error
}

func (s *fakeScenario) Name() string { return s.name }

func (s *fakeScenario) Before(ctx context.Context) error {
	s.befores++
	return s.beforeErr
}

func (s *fakeScenario) Task(ctx context.Context) error {
	s.tasks++
	if s.taskDelay > 0 {
		time.Sleep(s.taskDelay)
	}
	if s.failOn > 0 && s.tasks == s.failOn {
		return s.taskErr
	}
	return nil
}

func TestRunner_StopsAtMaxIterations(t *testing.T) {
	r, err := NewRunner(Config{
		MaxIterations: 5,
		MaxElapsed:    time.Hour,
		NumDocs:       1,
		ChunkSize:     1,
	})
	require.NoError(t, err)

	s := &fakeScenario{name: "instant"}
	res, err := r.Run(context.Background(), s)
	require.NoError(t, err)

	assert.Len(t, res.Samples, 5)
	assert.Equal(t, 5, res.Iterations)
	assert.Equal(t, 5, s.befores, "one Before per iteration")
	assert.Equal(t, 5, s.tasks)
	assert.Equal(t, StopIterations, res.Reason)
}

// The time budget is checked at the start of each iteration, so even a
// zero budget admits exactly one iteration; the in-flight first
// iteration is never preempted.
func TestRunner_ZeroBudgetRunsOnce(t *testing.T) {
	r, err := NewRunner(Config{
		MaxIterations: 1000000,
		MaxElapsed:    0,
		NumDocs:       1,
		ChunkSize:     1,
	})
	require.NoError(t, err)

	s := &fakeScenario{name: "budgeted", taskDelay: time.Millisecond}
	res, err := r.Run(context.Background(), s)
	require.NoError(t, err)

	assert.Len(t, res.Samples, 1)
	assert.Equal(t, StopElapsed, res.Reason)
}

func TestRunner_TaskFailureAbortsRun(t *testing.T) {
	r, err := NewRunner(Config{
		MaxIterations: 10,
		MaxElapsed:    time.Hour,
		NumDocs:       1,
		ChunkSize:     1,
	})
	require.NoError(t, err)

	boom := errors.New("write concern error")
	s := &fakeScenario{name: "flaky", failOn: 3, taskErr: boom}

	res, err := r.Run(context.Background(), s)
	require.Error(t, err)
	assert.Nil(t, res, "no partial result on failure")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "iteration 3")
	assert.Equal(t, 3, s.tasks, "no retry after the failed attempt")
}

func TestRunner_BeforeFailureAbortsRun(t *testing.T) {
	r, err := NewRunner(Config{
		MaxIterations: 10,
		MaxElapsed:    time.Hour,
		NumDocs:       1,
		ChunkSize:     1,
	})
	require.NoError(t, err)

	boom := errors.New("drop collection failed")
	s := &fakeScenario{name: "broken-setup", beforeErr: boom}

	_, err = r.Run(context.Background(), s)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "before")
	assert.Equal(t, 0, s.tasks, "task must not run after Before fails")
}

func TestRunner_SamplesAreNonNegative(t *testing.T) {
	r, err := NewRunner(DefaultConfig())
	require.NoError(t, err)

	s := &fakeScenario{name: "instant"}
	res, err := r.Run(context.Background(), s)
	require.NoError(t, err)

	require.NotEmpty(t, res.Samples)
	for _, d := range res.Samples {
		assert.GreaterOrEqual(t, d, time.Duration(0))
	}

	med, err := res.Median()
	require.NoError(t, err)
	assert.Contains(t, res.Samples, med)
}

func TestRunner_RejectsBadConfig(t *testing.T) {
	cases := []Config{
		{MaxIterations: 0, MaxElapsed: time.Second, NumDocs: 1, ChunkSize: 1},
		{MaxIterations: 1, MaxElapsed: -time.Second, NumDocs: 1, ChunkSize: 1},
		{MaxIterations: 1, MaxElapsed: time.Second, NumDocs: 0, ChunkSize: 1},
		{MaxIterations: 1, MaxElapsed: time.Second, NumDocs: 1, ChunkSize: 0},
	}
	for _, cfg := range cases {
		_, err := NewRunner(cfg)
		assert.ErrorIs(t, err, ErrConfig, "%+v", cfg)
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	r, err := NewRunner(DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Run(ctx, &fakeScenario{name: "cancelled"})
	assert.ErrorIs(t, err, context.Canceled)
}
