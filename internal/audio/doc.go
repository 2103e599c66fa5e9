// Package audio implements the numeric core of the recording pipeline:
// linear-interpolation sample-rate conversion, fixed-point quantization to
// 16-bit PCM, ordered block accumulation, and the canonical WAV container.
package audio
