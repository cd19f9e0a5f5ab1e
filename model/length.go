// The model package implements the empirical models used to synthesize
// artificial sequencing reads: read length and quality-score distributions
// fitted from an observed run, and a parameterized error model.
package model

import (
	"math/rand"
	"sort"
)

// LengthModel is an empirical histogram of observed read lengths.
// Sampling returns a length with probability proportional to how often
// it was observed.
type LengthModel struct {
	counts  map[int]int
	lengths []int // observed lengths, ascending
	total   int
}

func NewLengthModel() *LengthModel {
	m := new(LengthModel)
	m.counts = make(map[int]int)

	return m
}

// Observe adds one observed read length to the histogram.
func (m *LengthModel) Observe(length int) {
	if _, seen := m.counts[length]; !seen {
		i := sort.SearchInts(m.lengths, length)
		m.lengths = append(m.lengths, 0)
		copy(m.lengths[i+1:], m.lengths[i:])
		m.lengths[i] = length
	}

	m.counts[length]++
	m.total++
}

// Total returns the number of lengths observed so far.
func (m *LengthModel) Total() int {
	return m.total
}

// Sample draws a length from the histogram, walking the observed lengths
// in ascending order so the result is deterministic for a given draw.
// Returns false if the model is empty.
func (m *LengthModel) Sample(rnd *rand.Rand) (int, bool) {
	if m.total == 0 {
		return 0, false
	}

	t := rnd.Intn(m.total)
	cum := 0
	for _, l := range m.lengths {
		cum += m.counts[l]
		if cum > t {
			return l, true
		}
	}

	// unreachable while total matches the sum of counts
	return 0, false
}
