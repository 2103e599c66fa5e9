package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charantej-tpz/audio-test1/internal/audio"
	"github.com/charantej-tpz/audio-test1/internal/metrics"
	"github.com/charantej-tpz/audio-test1/internal/silence"
)

// State represents the pipeline state machine position
type State int

const (
	StateIdle State = iota
	StateRecording
	StateFinalizing
)

// String returns a human-readable state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateFinalizing:
		return "finalizing"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

const (
	// DefaultTargetRate is the fixed output sample rate of the recorder.
	DefaultTargetRate = 16000

	// DefaultQueueSize is the offload queue capacity in blocks.
	DefaultQueueSize = 256
)

var (
	// ErrNotRecording is returned by Push and Stop outside a recording
	// session. Blocks arriving after stop are expected from asynchronous
	// capture sources; producers treat this error as "ignore".
	ErrNotRecording = errors.New("pipeline is not recording")

	// ErrNotFinished is returned by Take when no finished container is
	// available, including when the container was already taken.
	ErrNotFinished = errors.New("no finished container available")
)

// Config contains the pipeline session configuration
type Config struct {
	SourceRate           int     // sample rate of incoming blocks, fixed per session
	TargetRate           int     // output rate, default 16000
	RemoveLeadingSilence bool    // trim blocks before the first non-silent one
	SilenceThreshold     float64 // RMS threshold on the PCM-16 scale, 0 = default
	Offload              bool    // process blocks on a dedicated worker
	QueueSize            int     // offload queue capacity, 0 = default

	// OnBlockProcessed, when set, is invoked with the output sample count
	// of every handled block (0 for blocks dropped as leading silence).
	// In offloaded mode it runs on the worker goroutine.
	OnBlockProcessed func(outputSamples int)
}

// Pipeline converts raw capture blocks into a finished WAV container.
// Exactly one goroutine mutates the audio timeline at any time: the caller
// of Push in synchronous mode, the worker in offloaded mode.
type Pipeline struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	cfg     Config

	acc      *audio.Accumulator
	detector *silence.Detector

	mu        sync.Mutex
	state     State
	blocks    chan []float32 // offloaded mode only
	done      chan struct{}
	container []byte
	taken     bool
	startTime time.Time

	// firstAccepted is owned by the processing goroutine for the session
	firstAccepted bool

	// Session counters
	received      atomic.Uint64
	accepted      atomic.Uint64
	droppedSilent atomic.Uint64
	droppedLate   atomic.Uint64
	samplesOut    atomic.Uint64
}

// Stats represents a snapshot of pipeline statistics
type Stats struct {
	State               string `json:"state"`
	BlocksReceived      uint64 `json:"blocks_received"`
	BlocksAccepted      uint64 `json:"blocks_accepted"`
	BlocksDroppedSilent uint64 `json:"blocks_dropped_silent"`
	BlocksDroppedLate   uint64 `json:"blocks_dropped_late"`
	SamplesAccumulated  uint64 `json:"samples_accumulated"`
	ContainerBytes      int    `json:"container_bytes"`
}

// New creates a pipeline for the given configuration.
func New(logger *slog.Logger, m *metrics.Metrics, cfg Config) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if m == nil {
		return nil, fmt.Errorf("metrics must not be nil")
	}

	if cfg.SourceRate <= 0 {
		return nil, fmt.Errorf("source rate must be positive, got %d", cfg.SourceRate)
	}

	if cfg.TargetRate == 0 {
		cfg.TargetRate = DefaultTargetRate
	}
	if cfg.TargetRate <= 0 {
		return nil, fmt.Errorf("target rate must be positive, got %d", cfg.TargetRate)
	}

	if cfg.QueueSize == 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.QueueSize < 1 {
		return nil, fmt.Errorf("queue size must be at least 1, got %d", cfg.QueueSize)
	}

	detector, err := silence.NewDetector(cfg.SilenceThreshold)
	if err != nil {
		return nil, fmt.Errorf("failed to create silence detector: %w", err)
	}

	return &Pipeline{
		logger:   logger,
		metrics:  m,
		cfg:      cfg,
		acc:      audio.NewAccumulator(),
		detector: detector,
		state:    StateIdle,
		done:     make(chan struct{}),
	}, nil
}

// SetSourceRate changes the source sample rate for subsequent sessions.
// The rate is fixed while a session is active.
func (p *Pipeline) SetSourceRate(rate int) error {
	if rate <= 0 {
		return fmt.Errorf("source rate must be positive, got %d", rate)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateIdle {
		return fmt.Errorf("cannot change source rate while %s", p.state)
	}

	p.cfg.SourceRate = rate
	return nil
}

// Start begins a recording session: the timeline is cleared, the
// first-block-accepted flag reset, and any previous container discarded.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateIdle {
		return fmt.Errorf("cannot start while %s", p.state)
	}

	p.acc.Reset()
	p.detector.Reset()
	p.firstAccepted = false
	p.container = nil
	p.taken = false
	p.done = make(chan struct{})
	p.startTime = time.Now()

	p.received.Store(0)
	p.accepted.Store(0)
	p.droppedSilent.Store(0)
	p.droppedLate.Store(0)
	p.samplesOut.Store(0)

	p.state = StateRecording

	if p.cfg.Offload {
		p.blocks = make(chan []float32, p.cfg.QueueSize)
		go p.worker(p.blocks)
	}

	p.metrics.RecordSessionStarted()
	p.logger.Info("Recording started",
		slog.Int("source_rate", p.cfg.SourceRate),
		slog.Int("target_rate", p.cfg.TargetRate),
		slog.Bool("remove_leading_silence", p.cfg.RemoveLeadingSilence),
		slog.Bool("offload", p.cfg.Offload),
	)

	return nil
}

// Push hands one raw block to the pipeline. Ownership of the slice
// transfers to the pipeline; the producer must not reuse or mutate it.
// Blocks pushed outside a recording session are counted and ignored,
// never queued; the returned ErrNotRecording carries no obligation for
// the producer beyond dropping the block.
func (p *Pipeline) Push(block []float32) error {
	p.mu.Lock()

	if p.state != StateRecording {
		p.mu.Unlock()
		p.droppedLate.Add(1)
		p.metrics.RecordBlockDroppedLate()
		return ErrNotRecording
	}

	p.received.Add(1)
	p.metrics.RecordBlockReceived()

	if p.cfg.Offload {
		// Holding the lock here keeps Stop from closing the channel
		// between the state check and the send. The worker drains
		// independently, so a full queue cannot deadlock against Stop.
		p.blocks <- block
		p.metrics.SetQueueSize(len(p.blocks))
		p.mu.Unlock()
		return nil
	}

	p.handleBlock(block)
	p.mu.Unlock()
	return nil
}

// Stop ends the session. No block pushed after Stop is accepted. In
// synchronous mode the container is ready when Stop returns; in offloaded
// mode every block pushed before Stop is still drained in order and
// completion is signaled through Done.
func (p *Pipeline) Stop() error {
	p.mu.Lock()

	if p.state != StateRecording {
		p.mu.Unlock()
		return ErrNotRecording
	}

	p.state = StateFinalizing
	p.logger.Info("Recording stopping",
		slog.Uint64("blocks_received", p.received.Load()),
		slog.Uint64("blocks_accepted", p.accepted.Load()),
	)

	if p.cfg.Offload {
		close(p.blocks)
		p.mu.Unlock()
		return nil
	}

	p.mu.Unlock()
	p.finalize()
	return nil
}

// Done returns a channel that is closed when the current session's
// container is ready.
func (p *Pipeline) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Finished reports whether a finished container is available to take.
func (p *Pipeline) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.container != nil && !p.taken
}

// Take yields the finished WAV container exactly once.
func (p *Pipeline) Take() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.container == nil || p.taken {
		return nil, ErrNotFinished
	}

	p.taken = true
	container := p.container
	p.container = nil
	return container, nil
}

// State returns the current state machine position.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// GetStats returns a snapshot of session statistics
func (p *Pipeline) GetStats() Stats {
	p.mu.Lock()
	state := p.state
	containerBytes := len(p.container)
	p.mu.Unlock()

	return Stats{
		State:               state.String(),
		BlocksReceived:      p.received.Load(),
		BlocksAccepted:      p.accepted.Load(),
		BlocksDroppedSilent: p.droppedSilent.Load(),
		BlocksDroppedLate:   p.droppedLate.Load(),
		SamplesAccumulated:  p.samplesOut.Load(),
		ContainerBytes:      containerBytes,
	}
}

// worker owns the processing state for an offloaded session. It drains the
// block channel in order and finalizes once the channel is closed by Stop.
func (p *Pipeline) worker(blocks <-chan []float32) {
	for block := range blocks {
		p.handleBlock(block)
		p.metrics.SetQueueSize(len(blocks))
	}
	p.finalize()
}

// handleBlock resamples, quantizes, silence-gates, and accumulates one
// block. Only the session's processing goroutine calls it.
func (p *Pipeline) handleBlock(block []float32) {
	start := time.Now()

	pcm := audio.ResampleToPCM16(block, p.cfg.SourceRate, p.cfg.TargetRate)

	// Leading-silence gate: active only until the first accepted block
	if p.cfg.RemoveLeadingSilence && !p.firstAccepted && p.detector.IsSilent(pcm) {
		p.droppedSilent.Add(1)
		p.metrics.RecordBlockDroppedSilent()
		if p.cfg.OnBlockProcessed != nil {
			p.cfg.OnBlockProcessed(0)
		}
		return
	}

	p.firstAccepted = true
	p.acc.Append(pcm)
	p.accepted.Add(1)
	p.samplesOut.Add(uint64(len(pcm)))

	p.metrics.RecordBlockProcessed(len(pcm), time.Since(start).Seconds())
	if p.cfg.OnBlockProcessed != nil {
		p.cfg.OnBlockProcessed(len(pcm))
	}
}

// finalize merges the timeline, encodes the container, and returns the
// pipeline to idle. An empty timeline produces the valid zero-sample
// container, not an error.
func (p *Pipeline) finalize() {
	samples := p.acc.MergeAll()
	container := audio.EncodeWAV(samples, p.cfg.TargetRate)
	p.acc.Reset()

	p.mu.Lock()
	p.container = container
	p.taken = false
	p.state = StateIdle
	p.blocks = nil
	done := p.done
	elapsed := time.Since(p.startTime)
	p.mu.Unlock()

	p.metrics.RecordSessionFinalized(elapsed.Seconds(), len(container))
	p.logger.Info("Recording finalized",
		slog.Int("samples", len(samples)),
		slog.Int("container_bytes", len(container)),
		slog.Duration("session_duration", elapsed),
		slog.Uint64("blocks_accepted", p.accepted.Load()),
		slog.Uint64("blocks_dropped_silent", p.droppedSilent.Load()),
	)

	close(done)
}
