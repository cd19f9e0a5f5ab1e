package model

import (
	"math/rand"
)

// Fit folds an observed run into the length and quality models. The
// source calls observe once per read with its length and Phred+33
// quality bytes; any error it returns (a parse or read failure) is
// propagated unchanged. The random source drives the quality model's
// reservoir decisions only, so it can be independent of the one used
// for generation.
func Fit(lm *LengthModel, qm *QualityModel, rnd *rand.Rand, source func(observe func(length int, quality []byte)) error) error {
	return source(func(length int, quality []byte) {
		lm.Observe(length)
		qm.Observe(length, quality, rnd)
	})
}
