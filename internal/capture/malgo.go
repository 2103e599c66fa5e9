package capture

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gen2brain/malgo"
)

// MalgoSource captures mono float32 audio from the default input device
// via malgo (miniaudio).
type MalgoSource struct {
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	rate    int
	onBlock func([]float32)
}

// NewMalgoSource initializes a malgo context and a capture device in F32
// format at the given rate and block size.
func NewMalgoSource(sampleRate, framesPerBuffer int) (*MalgoSource, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	s := &MalgoSource{ctx: ctx, rate: sampleRate}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(framesPerBuffer)
	deviceConfig.Alsa.NoMMap = 1 // some ALSA drivers misbehave with mmap

	callbacks := malgo.DeviceCallbacks{
		// The input buffer is reused by the backend after the callback
		// returns; samples are decoded into a fresh block every time.
		Data: func(_, input []byte, frameCount uint32) {
			onBlock := s.onBlock
			if onBlock == nil {
				return
			}

			block := make([]float32, frameCount)
			for i := range block {
				bits := binary.LittleEndian.Uint32(input[i*4:])
				block[i] = math.Float32frombits(bits)
			}
			onBlock(block)
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}
	s.device = device

	return s, nil
}

// SampleRate returns the rate the device was opened with.
func (s *MalgoSource) SampleRate() int {
	return s.rate
}

// Start begins capture, routing blocks to onBlock.
func (s *MalgoSource) Start(onBlock func([]float32)) error {
	s.onBlock = onBlock

	if err := s.device.Start(); err != nil {
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	return nil
}

// Stop pauses capture.
func (s *MalgoSource) Stop() error {
	if err := s.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}

	return nil
}

// Close releases the device and the malgo context.
func (s *MalgoSource) Close() error {
	s.device.Uninit()

	err := s.ctx.Uninit()
	s.ctx.Free()

	return err
}
