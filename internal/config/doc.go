// Package config provides configuration loading and validation for the
// recorder. It handles YAML-based configuration with per-section
// validation of capture, audio, silence, pipeline, output, and logging
// parameters.
package config
