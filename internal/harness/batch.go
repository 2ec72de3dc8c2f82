package harness

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
)

// WorkUnit is one opaque asynchronous operation. The harness only
// observes completion and timing; results stay with the closure.
type WorkUnit func(ctx context.Context) error

// RunChunked executes units in contiguous chunks of chunkSize (the
// last chunk may be smaller). Units within a chunk run concurrently
// with no ordering between them; a chunk must settle completely before
// the next one starts. Chunking keeps peak connections and memory
// bounded when a workload fans out over thousands of files.
//
// First failure wins: the failing chunk's context is cancelled so its
// in-flight siblings abort, the error comes back wrapped with the
// chunk number, and later chunks never start. Partial completion
// inside the failed chunk is not tracked; callers must re-drive setup
// before retrying the batch.
func RunChunked(ctx context.Context, units []WorkUnit, chunkSize int) error {
	if chunkSize < 1 {
		return fmt.Errorf("%w: chunk size %d, need at least 1", ErrConfig, chunkSize)
	}

	for start := 0; start < len(units); start += chunkSize {
		end := min(start+chunkSize, len(units))

		p := pool.New().
			WithContext(ctx).
			WithCancelOnError().
			WithFirstError()
		for _, unit := range units[start:end] {
			p.Go(unit)
		}
		if err := p.Wait(); err != nil {
			return fmt.Errorf("chunk %d: %w", start/chunkSize+1, err)
		}
	}
	return nil
}
