package stats

import (
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
)

// Summary condenses one scenario run's latency samples through an HDR
// histogram for the verbose report table. The headline p50 printed per
// scenario does NOT come from here; that one is the nearest-rank value
// over the raw samples, kept for compatibility with previously
// published numbers.
type Summary struct {
	hist  *hdrhistogram.Histogram
	count int
}

// NewSummary records every sample into a histogram with 3 significant
// figures. The ceiling starts at 10 minutes and grows to the slowest
// observed sample; iterations are never preempted, so a single one can
// outlive any fixed bound and must still land in the histogram.
func NewSummary(samples []time.Duration) *Summary {
	highest := int64(10 * time.Minute / time.Microsecond)
	for _, d := range samples {
		if us := d.Microseconds(); us > highest {
			highest = us
		}
	}

	h := hdrhistogram.New(1, highest, 3)
	count := 0
	for _, d := range samples {
		us := d.Microseconds()
		if us < 1 {
			us = 1
		}
		if err := h.RecordValue(us); err != nil {
			continue
		}
		count++
	}
	return &Summary{hist: h, count: count}
}

func (s *Summary) Count() int {
	return s.count
}

// Quantile returns the latency at quantile q (0..100).
func (s *Summary) Quantile(q float64) time.Duration {
	return time.Duration(s.hist.ValueAtQuantile(q)) * time.Microsecond
}

func (s *Summary) Mean() time.Duration {
	return time.Duration(s.hist.Mean() * float64(time.Microsecond))
}

func (s *Summary) Max() time.Duration {
	return time.Duration(s.hist.Max()) * time.Microsecond
}

func (s *Summary) Min() time.Duration {
	if s.count == 0 {
		return 0
	}
	return time.Duration(s.hist.Min()) * time.Microsecond
}
