package audio

import "sync"

// Accumulator collects PCM-16 blocks in arrival order for one recording
// session. Blocks are appended by a single producer and merged into one
// contiguous buffer at finalize time; after a merge the accumulator is
// reset for the next session.
type Accumulator struct {
	blocks [][]int16
	total  int

	appends uint64
	merges  uint64

	mu sync.RWMutex
}

// AccumulatorStats represents accumulator statistics for monitoring
type AccumulatorStats struct {
	Blocks       int    `json:"blocks"`
	TotalSamples int    `json:"total_samples"`
	Appends      uint64 `json:"appends"`
	Merges       uint64 `json:"merges"`
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Append stores a block at the end of the timeline. The accumulator takes
// ownership of the slice; the caller must not mutate it afterwards.
func (a *Accumulator) Append(block []int16) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.blocks = append(a.blocks, block)
	a.total += len(block)
	a.appends++
}

// MergeAll concatenates every appended block into a single buffer sized to
// the exact total sample count, preserving append order. An empty
// accumulator merges to an empty slice.
func (a *Accumulator) MergeAll() []int16 {
	a.mu.Lock()
	defer a.mu.Unlock()

	merged := make([]int16, 0, a.total)
	for _, block := range a.blocks {
		merged = append(merged, block...)
	}
	a.merges++

	return merged
}

// Reset clears the accumulator for the next session. Statistics counters
// survive the reset.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.blocks = nil
	a.total = 0
}

// Len returns the number of appended blocks.
func (a *Accumulator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.blocks)
}

// TotalSamples returns the total number of accumulated samples.
func (a *Accumulator) TotalSamples() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.total
}

// GetStats returns current accumulator statistics
func (a *Accumulator) GetStats() AccumulatorStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return AccumulatorStats{
		Blocks:       len(a.blocks),
		TotalSamples: a.total,
		Appends:      a.appends,
		Merges:       a.merges,
	}
}
