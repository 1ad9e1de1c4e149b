// Package parallel splits index ranges across worker goroutines.
//
// Chunk boundaries depend only on the range length and the Config, so callers
// that reduce per-worker results in worker order get the same answer on every
// run regardless of scheduling.
package parallel

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on the physical core count.
func DefaultConfig() Config {
	n := DefaultWorkers()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1,
	}
}

// DefaultWorkers returns the number of physical cores, falling back to the
// logical CPU count when the CPU does not report it.
func DefaultWorkers() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Chunk is a contiguous index range [Start, End) assigned to Worker.
type Chunk struct {
	Worker int
	Start  int
	End    int
}

// Len returns the number of indices in the chunk.
func (c Chunk) Len() int { return c.End - c.Start }

// Split divides [0, n) into contiguous chunks, one per worker, in worker
// order. A disabled config yields a single chunk.
func Split(n int, cfg Config) []Chunk {
	if n <= 0 {
		return nil
	}
	workers := 1
	if cfg.Enabled && cfg.NumWorkers > 1 {
		minChunk := max(cfg.MinChunkSize, 1)
		workers = min(cfg.NumWorkers, (n+minChunk-1)/minChunk)
	}
	size := (n + workers - 1) / workers

	chunks := make([]Chunk, 0, workers)
	for start, w := 0, 0; start < n; start, w = start+size, w+1 {
		chunks = append(chunks, Chunk{Worker: w, Start: start, End: min(start+size, n)})
	}
	return chunks
}

// ForChunks runs f once per chunk of Split(n, cfg), each in its own
// goroutine when there is more than one chunk, and waits for all of them.
// The returned error is that of the lowest-numbered failing worker.
func ForChunks(n int, cfg Config, f func(c Chunk) error) error {
	chunks := Split(n, cfg)
	if len(chunks) == 1 {
		return f(chunks[0])
	}

	errs := make([]error, len(chunks))
	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f(c)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
