package pipeline

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/charantej-tpz/audio-test1/internal/audio"
	"github.com/charantej-tpz/audio-test1/internal/metrics"
)

func newTestPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewMetrics(prometheus.NewRegistry())

	p, err := New(logger, m, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func zeroBlock(n int) []float32 {
	return make([]float32, n)
}

func constantBlock(value float32, n int) []float32 {
	block := make([]float32, n)
	for i := range block {
		block[i] = value
	}
	return block
}

func sineBlock(frequency float64, amplitude float32, sampleRate, n int) []float32 {
	block := make([]float32, n)
	for i := range block {
		block[i] = amplitude * float32(math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate)))
	}
	return block
}

func TestNewValidation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.NewMetrics(prometheus.NewRegistry())

	if _, err := New(logger, nil, Config{SourceRate: 48000}); err == nil {
		t.Error("Expected error for nil metrics")
	}

	if _, err := New(logger, m, Config{}); err == nil {
		t.Error("Expected error for zero source rate")
	}

	if _, err := New(logger, m, Config{SourceRate: 48000, SilenceThreshold: -1}); err == nil {
		t.Error("Expected error for negative silence threshold")
	}

	p, err := New(logger, m, Config{SourceRate: 48000})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p.cfg.TargetRate != DefaultTargetRate {
		t.Errorf("Expected default target rate %d, got %d", DefaultTargetRate, p.cfg.TargetRate)
	}
	if p.cfg.QueueSize != DefaultQueueSize {
		t.Errorf("Expected default queue size %d, got %d", DefaultQueueSize, p.cfg.QueueSize)
	}
}

func TestSyncLeadingSilenceRemoval(t *testing.T) {
	p := newTestPipeline(t, Config{
		SourceRate:           16000,
		TargetRate:           16000,
		RemoveLeadingSilence: true,
	})

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Two silent blocks, one loud block, one trailing silent block; the
	// gate drops the first two and keeps everything from the loud block on
	blocks := [][]float32{
		zeroBlock(1024),
		zeroBlock(1024),
		constantBlock(0.5, 1024),
		zeroBlock(1024),
	}
	for i, block := range blocks {
		if err := p.Push(block); err != nil {
			t.Fatalf("Push %d failed: %v", i, err)
		}
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	container, err := p.Take()
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}

	samples, rate, err := audio.DecodeWAV(container)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if rate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", rate)
	}
	if len(samples) != 2048 {
		t.Fatalf("Expected 2048 samples (loud block + trailing silence), got %d", len(samples))
	}
	if samples[0] != 16383 {
		t.Errorf("Expected first sample 16383, got %d", samples[0])
	}
	if samples[1024] != 0 {
		t.Errorf("Expected trailing silence sample 0, got %d", samples[1024])
	}

	stats := p.GetStats()
	if stats.BlocksReceived != 4 {
		t.Errorf("Expected 4 blocks received, got %d", stats.BlocksReceived)
	}
	if stats.BlocksAccepted != 2 {
		t.Errorf("Expected 2 blocks accepted, got %d", stats.BlocksAccepted)
	}
	if stats.BlocksDroppedSilent != 2 {
		t.Errorf("Expected 2 blocks dropped as silence, got %d", stats.BlocksDroppedSilent)
	}
}

func TestSyncNoSilenceRemoval(t *testing.T) {
	p := newTestPipeline(t, Config{
		SourceRate:           16000,
		TargetRate:           16000,
		RemoveLeadingSilence: false,
	})

	if err := p.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	p.Push(zeroBlock(1024))
	p.Push(zeroBlock(1024))
	p.Push(constantBlock(0.5, 1024))
	p.Push(zeroBlock(1024))

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	container, err := p.Take()
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}

	samples, _, err := audio.DecodeWAV(container)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if len(samples) != 4096 {
		t.Errorf("Expected all 4096 samples kept, got %d", len(samples))
	}
}

func TestLatePushSync(t *testing.T) {
	p := newTestPipeline(t, Config{SourceRate: 16000})

	if err := p.Push(zeroBlock(16)); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Expected ErrNotRecording before start, got %v", err)
	}

	p.Start()
	p.Push(constantBlock(0.5, 16))
	p.Stop()

	if err := p.Push(constantBlock(0.5, 16)); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Expected ErrNotRecording after stop, got %v", err)
	}

	// The late block never reaches the timeline
	container, err := p.Take()
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	samples, _, err := audio.DecodeWAV(container)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if len(samples) != 16 {
		t.Errorf("Expected 16 samples, got %d", len(samples))
	}

	stats := p.GetStats()
	if stats.BlocksDroppedLate != 1 {
		t.Errorf("Expected 1 late block, got %d", stats.BlocksDroppedLate)
	}
}

func TestEmptySession(t *testing.T) {
	p := newTestPipeline(t, Config{SourceRate: 48000})

	p.Start()
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	container, err := p.Take()
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}

	// An empty session yields the valid zero-sample container
	if len(container) != audio.WAVHeaderSize {
		t.Errorf("Expected %d-byte container, got %d", audio.WAVHeaderSize, len(container))
	}
	if err := audio.ValidateWAV(container); err != nil {
		t.Errorf("Empty container is invalid: %v", err)
	}
}

func TestStopWhenIdle(t *testing.T) {
	p := newTestPipeline(t, Config{SourceRate: 48000})

	if err := p.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Expected ErrNotRecording, got %v", err)
	}
}

func TestTakeOnce(t *testing.T) {
	p := newTestPipeline(t, Config{SourceRate: 16000})

	if _, err := p.Take(); !errors.Is(err, ErrNotFinished) {
		t.Errorf("Expected ErrNotFinished before any session, got %v", err)
	}

	p.Start()
	p.Push(constantBlock(0.5, 16))
	p.Stop()

	if !p.Finished() {
		t.Error("Expected Finished to report true after stop")
	}

	if _, err := p.Take(); err != nil {
		t.Fatalf("First Take failed: %v", err)
	}

	if p.Finished() {
		t.Error("Expected Finished to report false after take")
	}

	if _, err := p.Take(); !errors.Is(err, ErrNotFinished) {
		t.Errorf("Expected ErrNotFinished on second take, got %v", err)
	}
}

func TestOffloadedOrdering(t *testing.T) {
	p := newTestPipeline(t, Config{
		SourceRate: 16000,
		TargetRate: 16000,
		Offload:    true,
		QueueSize:  8,
	})

	p.Start()

	// Distinct constant amplitudes mark each block's position in the
	// merged timeline
	amplitudes := []float32{0.1, 0.2, 0.3}
	for _, a := range amplitudes {
		if err := p.Push(constantBlock(a, 4)); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	<-p.Done()

	container, err := p.Take()
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}

	samples, _, err := audio.DecodeWAV(container)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if len(samples) != 12 {
		t.Fatalf("Expected 12 samples, got %d", len(samples))
	}

	for i, a := range amplitudes {
		want := audio.Quantize(a)
		if samples[i*4] != want {
			t.Errorf("Block %d: expected sample %d, got %d", i, want, samples[i*4])
		}
	}
}

func TestOffloadedLatePush(t *testing.T) {
	p := newTestPipeline(t, Config{
		SourceRate: 16000,
		Offload:    true,
	})

	p.Start()
	p.Push(constantBlock(0.5, 16))

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if err := p.Push(constantBlock(0.5, 16)); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Expected ErrNotRecording after stop, got %v", err)
	}

	<-p.Done()

	container, err := p.Take()
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}
	samples, _, err := audio.DecodeWAV(container)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if len(samples) != 16 {
		t.Errorf("Expected 16 samples, got %d", len(samples))
	}
}

func TestOffloadedEndToEnd(t *testing.T) {
	p := newTestPipeline(t, Config{
		SourceRate:           48000,
		TargetRate:           16000,
		RemoveLeadingSilence: true,
		Offload:              true,
	})

	p.Start()

	// Leading silence followed by a 1kHz tone at half amplitude; each
	// 1024-sample block resamples to 341 samples at 16kHz
	p.Push(zeroBlock(1024))
	for i := 0; i < 3; i++ {
		p.Push(sineBlock(1000, 0.5, 48000, 1024))
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	<-p.Done()

	container, err := p.Take()
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}

	info, err := audio.GetWAVInfo(container)
	if err != nil {
		t.Fatalf("GetWAVInfo failed: %v", err)
	}
	if info.SampleRate != 16000 {
		t.Errorf("Expected sample rate 16000, got %d", info.SampleRate)
	}
	if info.NumSamples != 1023 {
		t.Errorf("Expected 1023 samples (3 blocks of 341), got %d", info.NumSamples)
	}
	if info.DataSize != 2046 {
		t.Errorf("Expected data size 2046, got %d", info.DataSize)
	}

	// Half-amplitude input keeps every sample well inside full scale
	samples, _, err := audio.DecodeWAV(container)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	for i, s := range samples {
		if s > 16384 || s < -16384 {
			t.Fatalf("Sample %d exceeds half scale: %d", i, s)
		}
	}

	if p.State() != StateIdle {
		t.Errorf("Expected idle state, got %s", p.State())
	}
}

func TestRestartAfterSession(t *testing.T) {
	p := newTestPipeline(t, Config{SourceRate: 16000})

	p.Start()
	p.Push(constantBlock(0.5, 8))
	p.Stop()
	first, err := p.Take()
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}

	// A second session starts from a clean timeline
	if err := p.Start(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	p.Push(constantBlock(0.25, 4))
	p.Stop()
	second, err := p.Take()
	if err != nil {
		t.Fatalf("Take failed: %v", err)
	}

	firstSamples, _, _ := audio.DecodeWAV(first)
	secondSamples, _, _ := audio.DecodeWAV(second)

	if len(firstSamples) != 8 {
		t.Errorf("Expected 8 samples in first session, got %d", len(firstSamples))
	}
	if len(secondSamples) != 4 {
		t.Errorf("Expected 4 samples in second session, got %d", len(secondSamples))
	}

	stats := p.GetStats()
	if stats.BlocksReceived != 1 {
		t.Errorf("Expected session counters reset on restart, got %d blocks received", stats.BlocksReceived)
	}
}

func TestStartWhileRecording(t *testing.T) {
	p := newTestPipeline(t, Config{SourceRate: 16000})

	p.Start()
	if err := p.Start(); err == nil {
		t.Error("Expected error starting while recording")
	}
	p.Stop()
}

func TestSetSourceRate(t *testing.T) {
	p := newTestPipeline(t, Config{SourceRate: 48000})

	if err := p.SetSourceRate(44100); err != nil {
		t.Fatalf("SetSourceRate failed: %v", err)
	}

	if err := p.SetSourceRate(0); err == nil {
		t.Error("Expected error for zero rate")
	}

	p.Start()
	if err := p.SetSourceRate(48000); err == nil {
		t.Error("Expected error changing rate while recording")
	}
	p.Stop()
}

func TestOnBlockProcessed(t *testing.T) {
	var counts []int
	p := newTestPipeline(t, Config{
		SourceRate:           16000,
		TargetRate:           16000,
		RemoveLeadingSilence: true,
		OnBlockProcessed: func(outputSamples int) {
			counts = append(counts, outputSamples)
		},
	})

	p.Start()
	p.Push(zeroBlock(1024))
	p.Push(constantBlock(0.5, 1024))
	p.Stop()

	if len(counts) != 2 {
		t.Fatalf("Expected 2 callbacks, got %d", len(counts))
	}
	if counts[0] != 0 {
		t.Errorf("Expected 0 output samples for dropped block, got %d", counts[0])
	}
	if counts[1] != 1024 {
		t.Errorf("Expected 1024 output samples for accepted block, got %d", counts[1])
	}
}
