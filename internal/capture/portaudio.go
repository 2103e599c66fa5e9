package capture

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSource captures mono float32 audio from the default input
// device via PortAudio.
type PortAudioSource struct {
	stream  *portaudio.Stream
	rate    int
	onBlock func([]float32)
}

// NewPortAudioSource initializes PortAudio and opens the default input
// stream at the given rate and block size.
func NewPortAudioSource(sampleRate, framesPerBuffer int) (*PortAudioSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	s := &PortAudioSource{rate: sampleRate}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), framesPerBuffer, s.callback)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open default input stream: %w", err)
	}
	s.stream = stream

	return s, nil
}

// callback runs on the PortAudio capture thread. PortAudio reuses the
// input buffer after the callback returns, so each block is copied before
// ownership is handed downstream.
func (s *PortAudioSource) callback(in []float32) {
	onBlock := s.onBlock
	if onBlock == nil {
		return
	}

	block := make([]float32, len(in))
	copy(block, in)
	onBlock(block)
}

// SampleRate returns the rate the stream was opened with.
func (s *PortAudioSource) SampleRate() int {
	return s.rate
}

// Start begins capture, routing blocks to onBlock.
func (s *PortAudioSource) Start(onBlock func([]float32)) error {
	s.onBlock = onBlock

	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	return nil
}

// Stop pauses capture.
func (s *PortAudioSource) Stop() error {
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop input stream: %w", err)
	}

	return nil
}

// Close releases the stream and terminates PortAudio.
func (s *PortAudioSource) Close() error {
	err := s.stream.Close()
	if terr := portaudio.Terminate(); terr != nil && err == nil {
		err = terr
	}

	return err
}
