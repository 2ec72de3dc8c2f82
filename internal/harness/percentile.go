package harness

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	// ErrConfig marks an iteration budget or chunk size that can
	// never run.
	ErrConfig = errors.New("invalid benchmark configuration")

	// ErrNoSamples is returned when a percentile is requested over an
	// empty sample set, which means a prior run produced nothing.
	ErrNoSamples = errors.New("no samples collected")

	// ErrPercentileRange is returned for percentiles outside [0,100].
	ErrPercentileRange = errors.New("percentile out of range")
)

// Percentile returns the nearest-rank p-th percentile of samples: the
// value at index int(n*p/100)-1 of the ascending sort, clamped to the
// slice bounds. It always returns an element actually present in
// samples. The formula is the one the driver benchmarking suite has
// always reported with; do not replace it with interpolation.
func Percentile(samples []time.Duration, p float64) (time.Duration, error) {
	if p < 0 || p > 100 {
		return 0, fmt.Errorf("%w: %g", ErrPercentileRange, p)
	}
	if len(samples) == 0 {
		return 0, ErrNoSamples
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	idx := int(float64(len(sorted))*p/100) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx], nil
}
