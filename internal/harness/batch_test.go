package harness

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 45 units at chunk size 20 must run as chunks of 20, 20, 5 with no
// unit starting before every unit in earlier chunks has settled.
func TestRunChunked_ChunkBoundaries(t *testing.T) {
	const (
		numUnits  = 45
		chunkSize = 20
	)

	var completed atomic.Int64
	var mu sync.Mutex
	startSnapshots := make([]int64, numUnits)

	units := make([]WorkUnit, numUnits)
	for i := range units {
		i := i
		units[i] = func(ctx context.Context) error {
			mu.Lock()
			startSnapshots[i] = completed.Load()
			mu.Unlock()
			completed.Add(1)
			return nil
		}
	}

	err := RunChunked(context.Background(), units, chunkSize)
	require.NoError(t, err)
	assert.EqualValues(t, numUnits, completed.Load(), "every unit completes")

	// A unit in chunk k can only start once the k*chunkSize units of
	// the earlier chunks are done.
	for i, snap := range startSnapshots {
		chunk := i / chunkSize
		assert.GreaterOrEqual(t, snap, int64(chunk*chunkSize),
			"unit %d started before chunk %d settled", i, chunk)
	}
}

func TestRunChunked_FailFastSkipsLaterChunks(t *testing.T) {
	const chunkSize = 5

	boom := errors.New("duplicate key")
	var chunk3Started atomic.Bool
	var chunk1Done atomic.Int64

	units := make([]WorkUnit, 15)
	for i := range units {
		i := i
		units[i] = func(ctx context.Context) error {
			switch {
			case i < 5:
				chunk1Done.Add(1)
				return nil
			case i == 7:
				return boom
			case i >= 10:
				chunk3Started.Store(true)
				return nil
			default:
				return nil
			}
		}
	}

	err := RunChunked(context.Background(), units, chunkSize)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "chunk 2")
	assert.EqualValues(t, 5, chunk1Done.Load(), "chunk 1 ran to completion")
	assert.False(t, chunk3Started.Load(), "chunk 3 must never start")
}

func TestRunChunked_CancelsSiblingsOnFailure(t *testing.T) {
	boom := errors.New("broken pipe")
	blocked := make(chan struct{})
	var sawCancel atomic.Bool

	units := []WorkUnit{
		func(ctx context.Context) error {
			close(blocked)
			return boom
		},
		func(ctx context.Context) error {
			<-blocked
			<-ctx.Done()
			sawCancel.Store(true)
			return ctx.Err()
		},
	}

	err := RunChunked(context.Background(), units, 2)
	require.ErrorIs(t, err, boom, "first error wins over the cancellation error")
	assert.True(t, sawCancel.Load())
}

func TestRunChunked_EmptyAndShortInputs(t *testing.T) {
	require.NoError(t, RunChunked(context.Background(), nil, 20))

	var ran atomic.Int64
	unit := WorkUnit(func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})

	// Fewer units than one chunk.
	require.NoError(t, RunChunked(context.Background(), []WorkUnit{unit, unit, unit}, 20))
	assert.EqualValues(t, 3, ran.Load())
}

func TestRunChunked_RejectsBadChunkSize(t *testing.T) {
	err := RunChunked(context.Background(), []WorkUnit{
		func(ctx context.Context) error { return nil },
	}, 0)
	assert.ErrorIs(t, err, ErrConfig)
}
