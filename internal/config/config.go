package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the complete recorder configuration
type Config struct {
	Capture  CaptureConfig  `yaml:"capture"`
	Audio    AudioConfig    `yaml:"audio"`
	Silence  SilenceConfig  `yaml:"silence"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// CaptureConfig contains capture source configuration
type CaptureConfig struct {
	Backend         string `yaml:"backend"`           // portaudio or malgo
	SampleRate      int    `yaml:"sample_rate"`       // rate delivered by the device
	FramesPerBuffer int    `yaml:"frames_per_buffer"` // block size in samples
}

// AudioConfig contains output format parameters
type AudioConfig struct {
	TargetSampleRate int `yaml:"target_sample_rate"`
	Channels         int `yaml:"channels"`
	BitDepth         int `yaml:"bit_depth"`
}

// SilenceConfig contains leading-silence trimming configuration
type SilenceConfig struct {
	RemoveLeading bool    `yaml:"remove_leading"`
	Threshold     float64 `yaml:"threshold"` // RMS threshold, PCM-16 scale
}

// PipelineConfig contains processing scheduling configuration
type PipelineConfig struct {
	Offload   bool `yaml:"offload"`
	QueueSize int  `yaml:"queue_size"`
}

// OutputConfig contains output file configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	FileName  string `yaml:"filename"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the configuration the recorder ships with.
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			Backend:         "portaudio",
			SampleRate:      48000,
			FramesPerBuffer: 1024,
		},
		Audio: AudioConfig{
			TargetSampleRate: 16000,
			Channels:         1,
			BitDepth:         16,
		},
		Silence: SilenceConfig{
			RemoveLeading: true,
			Threshold:     25.0,
		},
		Pipeline: PipelineConfig{
			Offload:   true,
			QueueSize: 256,
		},
		Output: OutputConfig{
			Directory: ".",
			FileName:  "recording_16k.wav",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate performs validation of the complete configuration
func (c *Config) Validate() error {
	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Silence.Validate(); err != nil {
		return fmt.Errorf("silence config: %w", err)
	}

	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates capture configuration
func (cc *CaptureConfig) Validate() error {
	validBackends := map[string]bool{"portaudio": true, "malgo": true}
	if !validBackends[cc.Backend] {
		return fmt.Errorf("backend must be 'portaudio' or 'malgo', got '%s'", cc.Backend)
	}

	if cc.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", cc.SampleRate)
	}

	if cc.FramesPerBuffer <= 0 {
		return fmt.Errorf("frames_per_buffer must be positive, got %d", cc.FramesPerBuffer)
	}

	return nil
}

// Validate validates audio output configuration
func (a *AudioConfig) Validate() error {
	if a.TargetSampleRate != 16000 {
		return fmt.Errorf("target_sample_rate must be 16000 Hz, got %d", a.TargetSampleRate)
	}

	if a.Channels != 1 {
		return fmt.Errorf("channels must be 1 (mono), got %d", a.Channels)
	}

	if a.BitDepth != 16 {
		return fmt.Errorf("bit_depth must be 16, got %d", a.BitDepth)
	}

	return nil
}

// Validate validates silence configuration
func (s *SilenceConfig) Validate() error {
	if s.Threshold < 0 {
		return fmt.Errorf("threshold cannot be negative, got %f", s.Threshold)
	}

	return nil
}

// Validate validates pipeline configuration
func (p *PipelineConfig) Validate() error {
	if p.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1, got %d", p.QueueSize)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}
