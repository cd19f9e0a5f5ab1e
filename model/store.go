package model

import (
	"encoding/gob"
	"fmt"
	"os"
	"sort"

	"github.com/golang/snappy"
)

// Fitted models can be cached on disk so a large observed run only has
// to be scanned once. The cache is a snappy-compressed gob stream.

const storeVersion = 1

type lengthState struct {
	Counts map[int]int
}

type bucketState struct {
	Qualities [][]byte
	TotalSeen int
}

type qualityState struct {
	Width     int
	MaxLength int
	Capacity  int
	Buckets   []bucketState
}

type modelState struct {
	Version int
	Length  lengthState
	Quality qualityState
}

// Save writes the fitted length and quality models to fname.
func Save(fname string, lm *LengthModel, qm *QualityModel) error {
	st := modelState{
		Version: storeVersion,
		Length:  lengthState{Counts: lm.counts},
	}

	st.Quality.Width = qm.width
	st.Quality.MaxLength = qm.maxLength
	st.Quality.Buckets = make([]bucketState, len(qm.buckets))
	for i, b := range qm.buckets {
		if st.Quality.Capacity == 0 {
			st.Quality.Capacity = b.capacity
		}
		st.Quality.Buckets[i] = bucketState{Qualities: b.qualities, TotalSeen: b.totalSeen}
	}

	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	w := snappy.NewBufferedWriter(f)
	if err := gob.NewEncoder(w).Encode(&st); err != nil {
		return fmt.Errorf("encoding model cache %s: %w", fname, err)
	}

	return w.Close()
}

// Load reads models previously written by Save.
func Load(fname string) (*LengthModel, *QualityModel, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	var st modelState
	if err := gob.NewDecoder(snappy.NewReader(f)).Decode(&st); err != nil {
		return nil, nil, fmt.Errorf("decoding model cache %s: %w", fname, err)
	}

	if st.Version != storeVersion {
		return nil, nil, fmt.Errorf("model cache %s: unsupported version %d", fname, st.Version)
	}

	lm := NewLengthModel()
	lm.counts = st.Length.Counts
	if lm.counts == nil {
		lm.counts = make(map[int]int)
	}
	for l, c := range lm.counts {
		lm.lengths = append(lm.lengths, l)
		lm.total += c
	}
	sort.Ints(lm.lengths)

	qm := NewQualityModel(st.Quality.Width, st.Quality.MaxLength, st.Quality.Capacity)
	if len(st.Quality.Buckets) != len(qm.buckets) {
		return nil, nil, fmt.Errorf("model cache %s: %d buckets, expected %d",
			fname, len(st.Quality.Buckets), len(qm.buckets))
	}
	for i, b := range st.Quality.Buckets {
		qm.buckets[i].qualities = b.Qualities
		qm.buckets[i].totalSeen = b.TotalSeen
	}

	return lm, qm, nil
}
