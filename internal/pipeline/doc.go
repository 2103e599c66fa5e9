// Package pipeline orchestrates a recording session: it accepts raw float
// blocks from a capture source, resamples and quantizes them to 16 kHz
// PCM-16, optionally trims leading silence, and finalizes the session into
// a WAV container. Processing runs inline or on a dedicated worker.
package pipeline
