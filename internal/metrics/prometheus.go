// Package metrics provides Prometheus instrumentation for the recorder.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the recorder
type Metrics struct {
	// Block metrics
	BlocksReceived      prometheus.Counter
	BlocksProcessed     prometheus.Counter
	BlocksDroppedSilent prometheus.Counter
	BlocksDroppedLate   prometheus.Counter
	BlockOutputSamples  prometheus.Histogram
	BlockProcessingTime prometheus.Histogram
	QueueSize           prometheus.Gauge

	// Session metrics
	SessionsStarted   prometheus.Counter
	SessionsFinalized prometheus.Counter
	SessionDuration   prometheus.Histogram
	ContainerSize     prometheus.Histogram
}

// NewMetrics creates and registers all recorder metrics against the given
// registerer. Tests pass a private registry so multiple instances can
// coexist in one process.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Block metrics
		BlocksReceived: factory.NewCounter(prometheus.CounterOpts{
			Name: "recorder_blocks_received_total",
			Help: "Total number of raw audio blocks received from the capture source",
		}),
		BlocksProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "recorder_blocks_processed_total",
			Help: "Total number of audio blocks resampled, quantized and accumulated",
		}),
		BlocksDroppedSilent: factory.NewCounter(prometheus.CounterOpts{
			Name: "recorder_blocks_dropped_silent_total",
			Help: "Total number of leading blocks dropped as silent",
		}),
		BlocksDroppedLate: factory.NewCounter(prometheus.CounterOpts{
			Name: "recorder_blocks_dropped_late_total",
			Help: "Total number of blocks ignored because they arrived after stop",
		}),
		BlockOutputSamples: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recorder_block_output_samples",
			Help:    "Output sample count per processed block",
			Buckets: prometheus.ExponentialBuckets(64, 2, 10), // 64 to ~32k samples
		}),
		BlockProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recorder_block_processing_duration_seconds",
			Help:    "Time spent resampling and quantizing a block",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8), // 10µs to ~160ms
		}),
		QueueSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "recorder_block_queue_size",
			Help: "Current number of blocks waiting in the offload queue",
		}),

		// Session metrics
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "recorder_sessions_started_total",
			Help: "Total number of recording sessions started",
		}),
		SessionsFinalized: factory.NewCounter(prometheus.CounterOpts{
			Name: "recorder_sessions_finalized_total",
			Help: "Total number of recording sessions finalized",
		}),
		SessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recorder_session_duration_seconds",
			Help:    "Duration of recording sessions in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~1 hour
		}),
		ContainerSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "recorder_container_size_bytes",
			Help:    "Size of finished WAV containers in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
		}),
	}
}

// RecordBlockReceived increments the blocks received counter
func (m *Metrics) RecordBlockReceived() {
	m.BlocksReceived.Inc()
}

// RecordBlockProcessed records a processed block with its output sample
// count and processing time
func (m *Metrics) RecordBlockProcessed(outputSamples int, seconds float64) {
	m.BlocksProcessed.Inc()
	m.BlockOutputSamples.Observe(float64(outputSamples))
	m.BlockProcessingTime.Observe(seconds)
}

// RecordBlockDroppedSilent increments the silent-drop counter
func (m *Metrics) RecordBlockDroppedSilent() {
	m.BlocksDroppedSilent.Inc()
}

// RecordBlockDroppedLate increments the late-drop counter
func (m *Metrics) RecordBlockDroppedLate() {
	m.BlocksDroppedLate.Inc()
}

// SetQueueSize sets the current offload queue size
func (m *Metrics) SetQueueSize(size int) {
	m.QueueSize.Set(float64(size))
}

// RecordSessionStarted increments the sessions started counter
func (m *Metrics) RecordSessionStarted() {
	m.SessionsStarted.Inc()
}

// RecordSessionFinalized records a finalized session with its duration and
// container size
func (m *Metrics) RecordSessionFinalized(durationSeconds float64, containerBytes int) {
	m.SessionsFinalized.Inc()
	m.SessionDuration.Observe(durationSeconds)
	m.ContainerSize.Observe(float64(containerBytes))
}
