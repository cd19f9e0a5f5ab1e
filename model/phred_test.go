package model

import (
	"math"
	"testing"
)

func TestErrorProb(t *testing.T) {
	tests := []struct {
		qual byte
		want float64
	}{
		{'!', 1.0},    // Q0
		{'+', 0.1},    // Q10
		{'5', 0.01},   // Q20
		{'?', 0.001},  // Q30
		{'I', 0.0001}, // Q40
	}

	for _, tc := range tests {
		got := ErrorProb(tc.qual)
		if math.Abs(got-tc.want) > tc.want*1e-9 {
			t.Fatalf("ErrorProb(%q) = %v, expected %v", tc.qual, got, tc.want)
		}
	}
}

func TestErrorProbClamps(t *testing.T) {
	// below the Phred+33 offset clamps to Q0
	if got := ErrorProb(0); got != 1.0 {
		t.Fatalf("ErrorProb(0) = %v, expected 1.0", got)
	}

	// above the highest score clamps to Q93
	if got := ErrorProb(255); got != ErrorProb(33+93) {
		t.Fatalf("ErrorProb(255) = %v, expected the Q93 probability", got)
	}
}
