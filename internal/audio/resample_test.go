package audio

import (
	"math"
	"testing"
)

func TestResampleIdentity(t *testing.T) {
	input := []float32{0.1, -0.2, 0.3, -0.4}

	output := Resample(input, 16000, 16000)

	if len(output) != len(input) {
		t.Fatalf("Expected %d samples, got %d", len(input), len(output))
	}

	for i, s := range input {
		if output[i] != s {
			t.Errorf("Sample %d: expected %f, got %f", i, s, output[i])
		}
	}

	// Identity resampling must return a copy, not the input slice
	output[0] = 99
	if input[0] == 99 {
		t.Error("Resample returned the input slice instead of a copy")
	}
}

func TestResampleEmpty(t *testing.T) {
	output := Resample([]float32{}, 48000, 16000)
	if output == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(output) != 0 {
		t.Errorf("Expected 0 samples, got %d", len(output))
	}
}

func TestResampleOutputLength(t *testing.T) {
	tests := []struct {
		name       string
		inputLen   int
		sourceRate int
		targetRate int
		expected   int
	}{
		{"48k to 16k, even block", 1536, 48000, 16000, 512},
		{"48k to 16k, browser block", 1024, 48000, 16000, 341},
		{"44.1k to 16k", 1024, 44100, 16000, 371},
		{"8k to 16k upsample", 100, 8000, 16000, 200},
		{"single sample downsample", 1, 48000, 16000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := make([]float32, tt.inputLen)
			output := Resample(input, tt.sourceRate, tt.targetRate)
			if len(output) != tt.expected {
				t.Errorf("Expected %d samples, got %d", tt.expected, len(output))
			}
		})
	}
}

func TestResampleDownsampleValues(t *testing.T) {
	// With a 3:1 ratio every output sample lands exactly on an input
	// sample, so no interpolation happens
	input := []float32{0, 1, 2, 3, 4, 5}

	output := Resample(input, 48000, 16000)

	if len(output) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(output))
	}
	if output[0] != 0 {
		t.Errorf("Sample 0: expected 0, got %f", output[0])
	}
	if output[1] != 3 {
		t.Errorf("Sample 1: expected 3, got %f", output[1])
	}
}

func TestResampleInterpolation(t *testing.T) {
	// With a 1:2 ratio every odd output sample is the midpoint of its
	// neighbors
	input := []float32{0, 1, 2, 3}

	output := Resample(input, 8000, 16000)

	if len(output) != 8 {
		t.Fatalf("Expected 8 samples, got %d", len(output))
	}

	expected := []float32{0, 0.5, 1, 1.5, 2, 2.5, 3, 3}
	for i, want := range expected {
		if math.Abs(float64(output[i]-want)) > 1e-6 {
			t.Errorf("Sample %d: expected %f, got %f", i, want, output[i])
		}
	}
}

func TestResampleUpperNeighborClamped(t *testing.T) {
	// The last output position can point past the final input sample; the
	// upper neighbor must clamp instead of reading out of bounds
	input := []float32{1, 2, 3}

	output := Resample(input, 8000, 16000)

	if len(output) != 6 {
		t.Fatalf("Expected 6 samples, got %d", len(output))
	}
	if output[5] != 3 {
		t.Errorf("Last sample: expected 3, got %f", output[5])
	}
}

func TestResampleToPCM16(t *testing.T) {
	input := []float32{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}

	output := ResampleToPCM16(input, 48000, 16000)

	if len(output) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(output))
	}
	for i, s := range output {
		if s != 16383 {
			t.Errorf("Sample %d: expected 16383, got %d", i, s)
		}
	}
}
