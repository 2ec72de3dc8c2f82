package harness

import "time"

// Timer measures one unit of work with Go's monotonic clock, so wall
// clock adjustments mid-measurement cannot produce skewed or negative
// intervals.
type Timer struct {
	start   time.Time
	elapsed time.Duration
}

// Start records the begin timestamp. Calling Start again restarts the
// measurement.
func (t *Timer) Start() {
	t.start = time.Now()
	t.elapsed = 0
}

// Stop records the interval since Start and returns it.
func (t *Timer) Stop() time.Duration {
	t.elapsed = time.Since(t.start)
	if t.elapsed < 0 {
		t.elapsed = 0
	}
	return t.elapsed
}

// Elapsed returns the interval captured by the last Stop.
func (t *Timer) Elapsed() time.Duration {
	return t.elapsed
}

// Time runs fn and returns how long it took. The interval is measured
// whether or not fn fails; a failing attempt's duration is still
// meaningful to the caller.
func Time(fn func() error) (time.Duration, error) {
	var t Timer
	t.Start()
	err := fn()
	return t.Stop(), err
}
