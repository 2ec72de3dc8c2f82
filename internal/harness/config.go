package harness

import (
	"fmt"
	"time"
)

// Defaults match the driver performance benchmarking spec.
const (
	DefaultMaxIterations = 100
	DefaultMaxElapsed    = 300 * time.Second
	DefaultNumDocs       = 10000
	DefaultChunkSize     = 20
)

// Fast-mode overrides for smoke runs in CI.
const (
	FastMaxIterations = 1
	FastMaxElapsed    = 30 * time.Second
	FastNumDocs       = 10
)

// Config is the immutable iteration budget shared by every scenario
// run in a process. Build it once at startup and pass it by value.
type Config struct {
	// MaxIterations caps how many times a scenario's task runs.
	MaxIterations int

	// MaxElapsed is the wall-clock budget for a whole scenario run,
	// checked at the start of each iteration.
	MaxElapsed time.Duration

	// NumDocs is how many documents single/multi-doc scenarios
	// operate over per task.
	NumDocs int

	// ChunkSize bounds concurrency for batched parallel work.
	ChunkSize int

	// Fast marks the smoke-test configuration (also truncates the
	// parallel file corpora).
	Fast bool
}

// DefaultConfig returns the standard benchmark budget.
func DefaultConfig() Config {
	return Config{
		MaxIterations: DefaultMaxIterations,
		MaxElapsed:    DefaultMaxElapsed,
		NumDocs:       DefaultNumDocs,
		ChunkSize:     DefaultChunkSize,
	}
}

// FastConfig returns the smoke-test budget.
func FastConfig() Config {
	return Config{
		MaxIterations: FastMaxIterations,
		MaxElapsed:    FastMaxElapsed,
		NumDocs:       FastNumDocs,
		ChunkSize:     DefaultChunkSize,
		Fast:          true,
	}
}

// Validate reports a ErrConfig if the budget can never admit a single
// iteration or the chunk size is unusable.
func (c Config) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations %d, need at least 1", ErrConfig, c.MaxIterations)
	}
	if c.MaxElapsed < 0 {
		return fmt.Errorf("%w: negative time budget %s", ErrConfig, c.MaxElapsed)
	}
	if c.NumDocs < 1 {
		return fmt.Errorf("%w: num docs %d, need at least 1", ErrConfig, c.NumDocs)
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk size %d, need at least 1", ErrConfig, c.ChunkSize)
	}
	return nil
}
