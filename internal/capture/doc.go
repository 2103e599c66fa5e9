// Package capture provides microphone capture sources that push ordered
// blocks of mono float samples into the pipeline. Two backends are
// available, PortAudio and malgo (miniaudio); both are plain plumbing and
// contain no signal processing.
package capture
