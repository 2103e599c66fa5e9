package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/charantej-tpz/audio-test1/internal/capture"
	"github.com/charantej-tpz/audio-test1/internal/config"
	"github.com/charantej-tpz/audio-test1/internal/metrics"
	"github.com/charantej-tpz/audio-test1/internal/pipeline"
	"github.com/charantej-tpz/audio-test1/internal/sink"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "recorder"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	logger.Info("Recorder starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	logger.Info("Configuration loaded",
		slog.String("backend", cfg.Capture.Backend),
		slog.Int("source_rate", cfg.Capture.SampleRate),
		slog.Int("frames_per_buffer", cfg.Capture.FramesPerBuffer),
		slog.Int("target_rate", cfg.Audio.TargetSampleRate),
		slog.Bool("remove_leading_silence", cfg.Silence.RemoveLeading),
		slog.Float64("silence_threshold", cfg.Silence.Threshold),
		slog.Bool("offload", cfg.Pipeline.Offload),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	// Initialize the capture pipeline
	pipe, err := pipeline.New(logger, appMetrics, pipeline.Config{
		SourceRate:           cfg.Capture.SampleRate,
		TargetRate:           cfg.Audio.TargetSampleRate,
		RemoveLeadingSilence: cfg.Silence.RemoveLeading,
		SilenceThreshold:     cfg.Silence.Threshold,
		Offload:              cfg.Pipeline.Offload,
		QueueSize:            cfg.Pipeline.QueueSize,
	})
	if err != nil {
		logger.Error("Failed to create pipeline", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Open the capture source
	src, err := capture.Open(cfg.Capture.Backend, cfg.Capture.SampleRate, cfg.Capture.FramesPerBuffer)
	if err != nil {
		logger.Error("Failed to open capture source", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer src.Close()

	// Start recording
	if err := pipe.Start(); err != nil {
		logger.Error("Failed to start pipeline", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := src.Start(func(block []float32) {
		if err := pipe.Push(block); err != nil && !errors.Is(err, pipeline.ErrNotRecording) {
			logger.Warn("Failed to push block", slog.String("error", err.Error()))
		}
	}); err != nil {
		logger.Error("Failed to start capture", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Recording, press Ctrl+C to stop...")

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	// Stop the capture source first so no new blocks arrive
	if err := src.Stop(); err != nil {
		logger.Error("Error stopping capture source", slog.String("error", err.Error()))
	}

	// Finalize the recording and wait for the container
	if err := pipe.Stop(); err != nil {
		logger.Error("Error stopping pipeline", slog.String("error", err.Error()))
		os.Exit(1)
	}
	<-pipe.Done()

	container, err := pipe.Take()
	if err != nil {
		logger.Error("Failed to take recording", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Write the WAV container to disk
	fileSink := sink.NewFileSink(cfg.Output.Directory, cfg.Output.FileName)
	path, err := fileSink.Save(container)
	if err != nil {
		logger.Error("Failed to save recording", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Final statistics
	stats := pipe.GetStats()
	logger.Info("Recording saved",
		slog.String("path", path),
		slog.Int("container_bytes", len(container)),
		slog.Uint64("blocks_received", stats.BlocksReceived),
		slog.Uint64("blocks_accepted", stats.BlocksAccepted),
		slog.Uint64("blocks_dropped_silent", stats.BlocksDroppedSilent),
		slog.Uint64("samples_accumulated", stats.SamplesAccumulated),
	)

	logger.Info("Recorder stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo // default fallback
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug, // Add source info for debug level
	}

	// Determine output destination
	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	// Create handler based on format
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		// Default to text format
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
