package model

import (
	"bytes"
	"math/rand"
	"testing"
)

func fill(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func TestQualityBucketAssignment(t *testing.T) {
	m := NewQualityModel(0, 0, 0)
	rnd := rand.New(rand.NewSource(42))

	m.Observe(50, fill('A', 50), rnd)
	m.Observe(150, fill('B', 150), rnd)
	m.Observe(350, fill('C', 350), rnd)
	m.Observe(25000, fill('D', 25000), rnd)

	for _, c := range []struct {
		idx  int
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 0},
		{3, 1},
		{len(m.buckets) - 1, 1},
	} {
		if got := len(m.buckets[c.idx].qualities); got != c.want {
			t.Fatalf("bucket %d holds %d strings, expected %d", c.idx, got, c.want)
		}
	}
}

func TestQualityReservoirCap(t *testing.T) {
	m := NewQualityModel(100, 20000, 10)
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		m.Observe(50, fill('X', 50), rnd)
	}

	b := &m.buckets[0]
	if len(b.qualities) != 10 {
		t.Fatalf("bucket holds %d strings, expected capacity 10", len(b.qualities))
	}
	if b.totalSeen != 50 {
		t.Fatalf("totalSeen is %d, expected 50", b.totalSeen)
	}
}

func TestQualitySampleTruncatesToPrefix(t *testing.T) {
	m := NewQualityModel(0, 0, 0)
	rnd := rand.New(rand.NewSource(42))

	// distinct bytes so prefix truncation is verifiable
	q := make([]byte, 200)
	for i := range q {
		q[i] = byte(33 + i%60)
	}
	m.Observe(200, q, rnd)

	for _, want := range []int{150, 50, 200} {
		got, ok := m.Sample(want, rnd)
		if !ok {
			t.Fatalf("sample(%d) failed", want)
		}
		if len(got) != want {
			t.Fatalf("sample(%d) returned %d bytes", want, len(got))
		}
		if !bytes.Equal(got, q[:want]) {
			t.Fatalf("sample(%d) is not a prefix of the stored string", want)
		}
	}

	if _, ok := m.Sample(250, rnd); ok {
		t.Fatalf("sample(250) succeeded with no donor of that length")
	}
}

func TestQualitySampleFallsForward(t *testing.T) {
	m := NewQualityModel(0, 0, 0)
	rnd := rand.New(rand.NewSource(42))

	// only bucket 5 (500-599) has anything
	m.Observe(550, fill('K', 550), rnd)

	for _, want := range []int{250, 400} {
		got, ok := m.Sample(want, rnd)
		if !ok {
			t.Fatalf("sample(%d) did not fall forward to a longer bucket", want)
		}
		if len(got) != want {
			t.Fatalf("sample(%d) returned %d bytes", want, len(got))
		}
	}

	// backward fallback would require extending, never allowed
	if _, ok := m.Sample(600, rnd); ok {
		t.Fatalf("sample(600) succeeded with only 550-byte donors")
	}
}

func TestQualitySampleEmpty(t *testing.T) {
	m := NewQualityModel(0, 0, 0)
	rnd := rand.New(rand.NewSource(42))

	if _, ok := m.Sample(100, rnd); ok {
		t.Fatalf("sample succeeded on empty model")
	}
	if _, ok := m.Sample(5000, rnd); ok {
		t.Fatalf("sample succeeded on empty model")
	}
}
