package capture

import "fmt"

// Supported capture backends
const (
	BackendPortAudio = "portaudio"
	BackendMalgo     = "malgo"
)

// Source delivers discrete blocks of mono float samples in [-1, 1] at a
// declared sample rate. Delivery is push-based: the source invokes the
// callback once per captured block, in capture order, and hands over a
// freshly owned slice each time; the consumer may keep it.
type Source interface {
	// SampleRate returns the rate the device was opened with.
	SampleRate() int

	// Start begins capture and routes every block to onBlock. The
	// callback runs on the backend's capture goroutine; it must not
	// block for long.
	Start(onBlock func(block []float32)) error

	// Stop pauses capture. A stopped source can be started again.
	Stop() error

	// Close releases the device and backend resources.
	Close() error
}

// Open creates a capture source for the named backend.
func Open(backend string, sampleRate, framesPerBuffer int) (Source, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	if framesPerBuffer <= 0 {
		return nil, fmt.Errorf("frames per buffer must be positive, got %d", framesPerBuffer)
	}

	switch backend {
	case BackendPortAudio:
		return NewPortAudioSource(sampleRate, framesPerBuffer)
	case BackendMalgo:
		return NewMalgoSource(sampleRate, framesPerBuffer)
	default:
		return nil, fmt.Errorf("unknown capture backend %q", backend)
	}
}
