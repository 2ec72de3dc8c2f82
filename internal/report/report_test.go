package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mongomark/internal/harness"
)

func sampleResult() *harness.Result {
	return &harness.Result{
		Scenario: "FindOneByID",
		Samples: []time.Duration{
			900 * time.Millisecond,
			812 * time.Millisecond,
			1100 * time.Millisecond,
		},
		Iterations: 3,
		WallTime:   3 * time.Second,
		Reason:     harness.StopIterations,
	}
}

func TestLine_Format(t *testing.T) {
	line, err := Line(sampleResult())
	require.NoError(t, err)

	// Name padded to 30 columns, median (nearest-rank: int(3*50/100)-1
	// picks the smallest sample) at millisecond precision.
	assert.Equal(t, "FindOneByID                   0.812", line)
}

func TestLine_EmptySamples(t *testing.T) {
	_, err := Line(&harness.Result{Scenario: "Broken"})
	assert.ErrorIs(t, err, harness.ErrNoSamples)
}

func TestTable_IncludesEveryScenario(t *testing.T) {
	out, err := Table([]*harness.Result{sampleResult(), {
		Scenario:   "RunCommand",
		Samples:    []time.Duration{time.Second},
		Iterations: 1,
		Reason:     harness.StopElapsed,
	}})
	require.NoError(t, err)

	assert.Contains(t, out, "FindOneByID")
	assert.Contains(t, out, "RunCommand")
	assert.Contains(t, out, "time budget exhausted")
}

func TestExport_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	cfg := harness.FastConfig()

	require.NoError(t, Export(path, cfg, []*harness.Result{sampleResult()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var run RunReport
	require.NoError(t, json.Unmarshal(data, &run))

	assert.NotEmpty(t, run.ID)
	assert.True(t, run.Config.Fast)
	require.Len(t, run.Scenarios, 1)
	sc := run.Scenarios[0]
	assert.Equal(t, "FindOneByID", sc.Name)
	assert.InDelta(t, 0.812, sc.MedianSec, 1e-9)
	assert.Len(t, sc.SamplesSec, 3)
}
