package audio

import "encoding/binary"

// PCM16FullScale is the positive full-scale value of a signed 16-bit sample.
const PCM16FullScale = 32767

// Quantize converts a float sample to signed 16-bit PCM by scaling to full
// scale and truncating. The input is expected in [-1, 1]; values outside
// that range are NOT clamped and wrap around 16 bits. This is the canonical
// behavior of the pipeline and a known overflow risk that every caller
// inherits; use QuantizeClamped if saturation is wanted instead. The
// scaled value is routed through int32 so the wraparound is identical on
// every platform (a direct float-to-int16 conversion of an out-of-range
// value is implementation-defined in Go).
func Quantize(sample float32) int16 {
	return int16(int32(sample * PCM16FullScale))
}

// QuantizeClamped is the saturating alternative to Quantize: input is
// clipped to [-1, 1] before scaling, so out-of-range values pin at full
// scale instead of wrapping. This is NOT the canonical behavior; callers
// must opt in deliberately.
func QuantizeClamped(sample float32) int16 {
	if sample > 1 {
		sample = 1
	}
	if sample < -1 {
		sample = -1
	}
	return int16(int32(sample * PCM16FullScale))
}

// QuantizeBlock converts a block of float samples with Quantize. The same
// unclamped overflow caveat applies to every sample in the block.
func QuantizeBlock(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		out[i] = Quantize(s)
	}
	return out
}

// Int16ToBytes converts int16 samples to little-endian PCM bytes.
func Int16ToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

// BytesToInt16 converts little-endian PCM bytes to int16 samples.
func BytesToInt16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}
