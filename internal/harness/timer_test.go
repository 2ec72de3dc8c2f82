package harness

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_MeasuresInterval(t *testing.T) {
	var tm Timer
	tm.Start()
	time.Sleep(10 * time.Millisecond)
	elapsed := tm.Stop()

	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
	assert.Equal(t, elapsed, tm.Elapsed())
}

func TestTimer_RestartResetsElapsed(t *testing.T) {
	var tm Timer
	tm.Start()
	tm.Stop()

	tm.Start()
	assert.Equal(t, time.Duration(0), tm.Elapsed())
}

// A failing unit of work still gets timed; the error propagates with
// the measured interval.
func TestTime_FailureStillMeasured(t *testing.T) {
	boom := errors.New("connection reset")

	elapsed, err := Time(func() error {
		time.Sleep(5 * time.Millisecond)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)
}

func TestTime_Success(t *testing.T) {
	elapsed, err := Time(func() error { return nil })
	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
}
