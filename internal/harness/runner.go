package harness

import (
	"context"
	"fmt"
	"time"
)

// Scenario is one named workload. The runner calls Before and Task in
// lockstep each iteration; only Task is timed. Implementations own any
// state Before mutates between iterations.
type Scenario interface {
	Name() string

	// Before does per-iteration setup. It runs outside the timed
	// window and may fail the run.
	Before(ctx context.Context) error

	// Task is the unit of work being measured.
	Task(ctx context.Context) error
}

// StopReason says which budget ended a run.
type StopReason int

const (
	StopIterations StopReason = iota // hit MaxIterations
	StopElapsed                      // hit MaxElapsed
)

func (r StopReason) String() string {
	if r == StopElapsed {
		return "time budget exhausted"
	}
	return "max iterations reached"
}

// Result is one scenario run's sample set. Samples is immutable once
// the run loop exits and is never empty on success.
type Result struct {
	Scenario   string
	Samples    []time.Duration
	Iterations int
	WallTime   time.Duration
	Reason     StopReason
}

// Median returns the nearest-rank 50th percentile of the run.
func (r *Result) Median() (time.Duration, error) {
	return Percentile(r.Samples, 50)
}

// Runner drives scenarios under an iteration-count and wall-clock
// budget. Iterations are strictly sequential; each sample reflects one
// isolated execution.
type Runner struct {
	cfg Config
}

// NewRunner validates cfg and returns a runner sharing it across runs.
func NewRunner(cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg}, nil
}

// Config returns the budget the runner was built with.
func (r *Runner) Config() Config {
	return r.cfg
}

// Run executes s.Before + s.Task up to MaxIterations times, stopping
// early once MaxElapsed has passed. The budget is checked at the start
// of each iteration, never mid-iteration, so an in-flight slow
// iteration always completes and the first iteration always runs.
//
// A Before or Task failure aborts the run immediately; no retries, no
// partial Result. The returned error names the failing iteration so
// the caller can report the stage.
func (r *Runner) Run(ctx context.Context, s Scenario) (*Result, error) {
	start := time.Now()
	samples := make([]time.Duration, 0, r.cfg.MaxIterations)
	reason := StopIterations

	for i := 0; i < r.cfg.MaxIterations; i++ {
		if i > 0 && time.Since(start) > r.cfg.MaxElapsed {
			reason = StopElapsed
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: iteration %d: %w", s.Name(), i+1, err)
		}

		if err := s.Before(ctx); err != nil {
			return nil, fmt.Errorf("%s: iteration %d: before: %w", s.Name(), i+1, err)
		}

		elapsed, err := Time(func() error { return s.Task(ctx) })
		if err != nil {
			return nil, fmt.Errorf("%s: iteration %d: %w", s.Name(), i+1, err)
		}
		samples = append(samples, elapsed)
	}

	return &Result{
		Scenario:   s.Name(),
		Samples:    samples,
		Iterations: len(samples),
		WallTime:   time.Since(start),
		Reason:     reason,
	}, nil
}
