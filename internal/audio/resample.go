package audio

import "math"

// Resample converts a block of mono float samples from sourceRate to
// targetRate using linear interpolation. The output length is
// floor(len(input) * targetRate / sourceRate); for each output index the
// two neighboring input samples are blended by the fractional source
// position, with the upper neighbor clamped to the last input sample.
// Equal rates degenerate to a plain copy. Empty input yields empty output;
// the function never fails.
//
// Linear interpolation is sufficient for voice recordings; it trades a
// little high-frequency accuracy for a tight inner loop.
func Resample(input []float32, sourceRate, targetRate int) []float32 {
	if len(input) == 0 {
		return []float32{}
	}

	if sourceRate == targetRate {
		out := make([]float32, len(input))
		copy(out, input)
		return out
	}

	ratio := float64(sourceRate) / float64(targetRate)
	outLen := int(float64(len(input)) / ratio)
	output := make([]float32, outLen)

	for i := 0; i < outLen; i++ {
		srcPos := float64(i) * ratio
		lo := int(math.Floor(srcPos))
		hi := int(math.Ceil(srcPos))
		if hi > len(input)-1 {
			hi = len(input) - 1
		}

		frac := float32(srcPos - float64(lo))
		output[i] = input[lo] + (input[hi]-input[lo])*frac
	}

	return output
}

// ResampleToPCM16 resamples a float block to targetRate and quantizes the
// result to 16-bit PCM in one step. Quantization is the unclamped kind; see
// Quantize for the overflow caveat.
func ResampleToPCM16(input []float32, sourceRate, targetRate int) []int16 {
	return QuantizeBlock(Resample(input, sourceRate, targetRate))
}
