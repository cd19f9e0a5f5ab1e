package model

import (
	"math/rand"
)

const (
	// DefaultBucketWidth is the width of each length bucket in bases.
	DefaultBucketWidth = 100

	// DefaultMaxBucketLength is the read length above which quality
	// strings go into the final catch-all bucket.
	DefaultMaxBucketLength = 20000

	// DefaultBucketCapacity is the maximum number of quality strings
	// stored per bucket.
	DefaultBucketCapacity = 1000
)

// bucket holds the quality strings observed for one read-length range.
// Once full it keeps a uniform random sample of everything ever offered
// to it, via reservoir sampling.
type bucket struct {
	qualities [][]byte
	capacity  int
	totalSeen int
}

func (b *bucket) observe(quality []byte, rnd *rand.Rand) {
	b.totalSeen++

	if len(b.qualities) < b.capacity {
		b.qualities = append(b.qualities, quality)
		return
	}

	// reservoir sampling: keep the new string with probability
	// len(stored)/totalSeen, replacing a uniformly chosen slot
	i := rnd.Intn(b.totalSeen)
	if i < len(b.qualities) {
		b.qualities[i] = quality
	}
}

// donors returns the stored quality strings long enough to serve a read
// of the requested length.
func (b *bucket) donors(length int) [][]byte {
	var ds [][]byte

	for _, q := range b.qualities {
		if len(q) >= length {
			ds = append(ds, q)
		}
	}

	return ds
}

// QualityModel is an empirical library of quality-score strings observed
// in a real run, partitioned into fixed-width read-length buckets. Each
// bucket is capacity-bounded with reservoir sampling, so memory stays
// bounded no matter how large the observed run is.
type QualityModel struct {
	buckets   []bucket
	width     int
	maxLength int
}

// NewQualityModel creates an empty quality model. A width, maxLength or
// capacity of 0 selects the default (100, 20000, 1000). The bucket array
// is allocated once: one bucket per width-sized step up to maxLength,
// plus a catch-all for longer reads.
func NewQualityModel(width, maxLength, capacity int) *QualityModel {
	if width <= 0 {
		width = DefaultBucketWidth
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxBucketLength
	}
	if capacity <= 0 {
		capacity = DefaultBucketCapacity
	}

	m := new(QualityModel)
	m.width = width
	m.maxLength = maxLength

	nb := (maxLength+width-1)/width + 1
	m.buckets = make([]bucket, nb)
	for i := range m.buckets {
		m.buckets[i].capacity = capacity
	}

	return m
}

func (m *QualityModel) bucketIdx(length int) int {
	if length < m.maxLength {
		return length / m.width
	}

	return len(m.buckets) - 1
}

// Observe routes a quality string to its length bucket.
func (m *QualityModel) Observe(length int, quality []byte, rnd *rand.Rand) {
	m.buckets[m.bucketIdx(length)].observe(quality, rnd)
}

// Sample picks a quality string usable for a read of the requested
// length and truncates it to exactly that length. It starts at the
// bucket for the length and walks forward through buckets of longer
// reads: only longer observed strings can donate, since truncation can
// shrink a string but never extend one. Returns false once all buckets
// are exhausted.
func (m *QualityModel) Sample(length int, rnd *rand.Rand) ([]byte, bool) {
	for i := m.bucketIdx(length); i < len(m.buckets); i++ {
		ds := m.buckets[i].donors(length)
		if len(ds) == 0 {
			continue
		}

		q := ds[rnd.Intn(len(ds))]
		return append([]byte(nil), q[:length]...), true
	}

	return nil, false
}
