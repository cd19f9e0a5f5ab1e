package model

import (
	"math"
)

// PhredOffset is the ASCII offset of Phred+33 encoded quality bytes.
const PhredOffset = 33

// maxPhred is the highest representable Phred score in Phred+33.
const maxPhred = 93

// phredErrProb maps a Phred score to its error probability 10^(-Q/10).
// Built once at startup, read-only afterward.
var phredErrProb [maxPhred + 1]float64

func init() {
	for q := range phredErrProb {
		phredErrProb[q] = math.Pow(10, -float64(q)/10)
	}
}

// ErrorProb returns the error probability encoded by a Phred+33 quality
// byte. Bytes outside the valid range clamp to the nearest valid score.
func ErrorProb(qual byte) float64 {
	q := int(qual) - PhredOffset
	if q < 0 {
		q = 0
	} else if q > maxPhred {
		q = maxPhred
	}

	return phredErrProb[q]
}
