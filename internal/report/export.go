package report

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"mongomark/internal/harness"
	"mongomark/internal/stats"
)

// RunReport is the JSON shape written by Export: one document per
// process run, samples included so custom percentiles can be computed
// after the fact.
type RunReport struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Config    ConfigReport     `json:"config"`
	Scenarios []ScenarioReport `json:"scenarios"`
}

type ConfigReport struct {
	MaxIterations int     `json:"max_iterations"`
	MaxElapsedSec float64 `json:"max_elapsed_sec"`
	NumDocs       int     `json:"num_docs"`
	ChunkSize     int     `json:"chunk_size"`
	Fast          bool    `json:"fast"`
}

type ScenarioReport struct {
	Name        string    `json:"name"`
	Iterations  int       `json:"iterations"`
	StoppedBy   string    `json:"stopped_by"`
	WallTimeSec float64   `json:"wall_time_sec"`
	MedianSec   float64   `json:"median_sec"`
	MeanSec     float64   `json:"mean_sec"`
	P90Sec      float64   `json:"p90_sec"`
	P99Sec      float64   `json:"p99_sec"`
	MaxSec      float64   `json:"max_sec"`
	SamplesSec  []float64 `json:"samples_sec"`
}

// Export writes the run report to path.
func Export(path string, cfg harness.Config, results []*harness.Result) error {
	run := RunReport{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Config: ConfigReport{
			MaxIterations: cfg.MaxIterations,
			MaxElapsedSec: cfg.MaxElapsed.Seconds(),
			NumDocs:       cfg.NumDocs,
			ChunkSize:     cfg.ChunkSize,
			Fast:          cfg.Fast,
		},
	}

	for _, res := range results {
		med, err := res.Median()
		if err != nil {
			return err
		}
		sum := stats.NewSummary(res.Samples)

		samples := make([]float64, len(res.Samples))
		for i, d := range res.Samples {
			samples[i] = d.Seconds()
		}

		run.Scenarios = append(run.Scenarios, ScenarioReport{
			Name:        res.Scenario,
			Iterations:  res.Iterations,
			StoppedBy:   res.Reason.String(),
			WallTimeSec: res.WallTime.Seconds(),
			MedianSec:   med.Seconds(),
			MeanSec:     sum.Mean().Seconds(),
			P90Sec:      sum.Quantile(90).Seconds(),
			P99Sec:      sum.Quantile(99).Seconds(),
			MaxSec:      sum.Max().Seconds(),
			SamplesSec:  samples,
		})
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
