package silence

import (
	"fmt"
	"math"
	"sync"
)

const (
	// DefaultThresholdPCM16 is the default RMS threshold on the PCM-16
	// scale, roughly -50 dBFS against 32767 full scale. The value is
	// hand-tuned for consumer microphones, not physically derived; treat
	// it as a configuration default.
	DefaultThresholdPCM16 = 25.0

	// PCM16FullScale converts between the PCM-16 and float threshold
	// scales: the float-domain equivalent of a PCM threshold t is t/32767.
	PCM16FullScale = 32767.0
)

// DefaultThresholdFloat is the default RMS threshold for float blocks in
// [-1, 1], the float-scale equivalent of DefaultThresholdPCM16.
const DefaultThresholdFloat = DefaultThresholdPCM16 / PCM16FullScale

// Detector classifies blocks of samples as silent. A block is silent if
// every sample is exactly zero or its RMS falls strictly below the
// configured threshold; a block whose RMS equals the threshold is not
// silent.
type Detector struct {
	threshold float64 // RMS threshold on the PCM-16 scale

	// Statistics
	blocksChecked uint64
	silentBlocks  uint64

	mu sync.RWMutex
}

// DetectorStats represents detector statistics for monitoring
type DetectorStats struct {
	Threshold        float64 `json:"threshold"`
	BlocksChecked    uint64  `json:"blocks_checked"`
	SilentBlocks     uint64  `json:"silent_blocks"`
	SilentPercentage float64 `json:"silent_percentage"`
}

// NewDetector creates a detector with the given RMS threshold on the
// PCM-16 scale. A zero threshold selects the default.
func NewDetector(threshold float64) (*Detector, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("threshold cannot be negative, got %f", threshold)
	}
	if threshold == 0 {
		threshold = DefaultThresholdPCM16
	}

	return &Detector{threshold: threshold}, nil
}

// RMS computes the root mean square of a PCM-16 block. An empty block has
// zero RMS.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}

	var energy float64
	for _, s := range samples {
		energy += float64(s) * float64(s)
	}

	return math.Sqrt(energy / float64(len(samples)))
}

// RMSFloat computes the root mean square of a float block. An empty block
// has zero RMS.
func RMSFloat(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}

	var energy float64
	for _, s := range samples {
		energy += float64(s) * float64(s)
	}

	return math.Sqrt(energy / float64(len(samples)))
}

// IsAbsolutelySilent reports whether every sample in the block is exactly
// zero. An empty block is absolutely silent.
func IsAbsolutelySilent(samples []int16) bool {
	for _, s := range samples {
		if s != 0 {
			return false
		}
	}
	return true
}

// IsAbsolutelySilentFloat is IsAbsolutelySilent for float blocks.
func IsAbsolutelySilentFloat(samples []float32) bool {
	for _, s := range samples {
		if s != 0 {
			return false
		}
	}
	return true
}

// IsSilent classifies a PCM-16 block: silent if absolutely silent or if
// its RMS is strictly below the threshold.
func (d *Detector) IsSilent(samples []int16) bool {
	silent := IsAbsolutelySilent(samples) || RMS(samples) < d.Threshold()
	d.recordResult(silent)
	return silent
}

// IsSilentFloat classifies a float block in [-1, 1] against the
// float-scale equivalent of the configured threshold.
func (d *Detector) IsSilentFloat(samples []float32) bool {
	silent := IsAbsolutelySilentFloat(samples) || RMSFloat(samples) < d.Threshold()/PCM16FullScale
	d.recordResult(silent)
	return silent
}

func (d *Detector) recordResult(silent bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.blocksChecked++
	if silent {
		d.silentBlocks++
	}
}

// Threshold returns the current RMS threshold on the PCM-16 scale.
func (d *Detector) Threshold() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.threshold
}

// UpdateThreshold changes the RMS threshold.
func (d *Detector) UpdateThreshold(threshold float64) error {
	if threshold < 0 {
		return fmt.Errorf("threshold cannot be negative, got %f", threshold)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.threshold = threshold
	return nil
}

// Reset clears the detector statistics.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.blocksChecked = 0
	d.silentBlocks = 0
}

// GetStats returns current detector statistics
func (d *Detector) GetStats() DetectorStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	silentPercentage := float64(0)
	if d.blocksChecked > 0 {
		silentPercentage = float64(d.silentBlocks) / float64(d.blocksChecked) * 100
	}

	return DetectorStats{
		Threshold:        d.threshold,
		BlocksChecked:    d.blocksChecked,
		SilentBlocks:     d.silentBlocks,
		SilentPercentage: silentPercentage,
	}
}
