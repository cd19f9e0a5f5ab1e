package gen

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"readfaker/io/fasta"
	"readfaker/model"
)

// fixedModels builds models that always yield the given length with a
// constant quality byte.
func fixedModels(t *testing.T, length int, qual byte) (*model.LengthModel, *model.QualityModel) {
	t.Helper()

	lm := model.NewLengthModel()
	lm.Observe(length)

	qm := model.NewQualityModel(0, 0, 0)
	qm.Observe(length, bytes.Repeat([]byte{qual}, length), rand.New(rand.NewSource(1)))

	return lm, qm
}

func noErrors(t *testing.T) *model.ErrorModel {
	t.Helper()

	// all-zero rates: every classification is a no-op
	em, err := model.NewErrorModel(model.ErrorRates{})
	if err != nil {
		t.Fatalf("error model construction failed: %v", err)
	}

	return em
}

func TestEmptyReferences(t *testing.T) {
	lm, qm := fixedModels(t, 10, '?')

	_, err := New(nil, lm, qm, noErrors(t), Config{Seed: 42})
	if err == nil {
		t.Fatalf("construction succeeded with no references")
	}
	if !strings.Contains(err.Error(), "references cannot be empty") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGenerateFixedScenario(t *testing.T) {
	ref := fasta.Record{ID: "ref1", Seq: []byte("ACGTACGTACGTACGTACGTACGTACGTACGTA")}
	if len(ref.Seq) != 33 {
		t.Fatalf("reference is %d bases, expected 33", len(ref.Seq))
	}

	lm, qm := fixedModels(t, 10, '?') // Phred 30
	g, err := New([]fasta.Record{ref}, lm, qm, noErrors(t), Config{Seed: 42})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		r, err := g.GenerateRead()
		if err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}

		if len(r.Seq) != 10 || len(r.Qual) != 10 {
			t.Fatalf("read %d has seq %d qual %d, expected 10/10", i, len(r.Seq), len(r.Qual))
		}
		for _, q := range r.Qual {
			if q < 33 {
				t.Fatalf("read %d has quality byte %d below Phred+33 offset", i, q)
			}
		}
		if !bytes.Contains(ref.Seq, r.Seq) {
			t.Fatalf("read %d (%s) is not a subsequence of the reference", i, r.Seq)
		}
		if seen[r.ID] {
			t.Fatalf("duplicate read id %s", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestSeqQualAlwaysEqualLength(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	seq := make([]byte, 2000)
	for i := range seq {
		seq[i] = nucleotides[rnd.Intn(4)]
	}
	refs := []fasta.Record{{ID: "ref", Seq: seq}}

	lm := model.NewLengthModel()
	qm := model.NewQualityModel(0, 0, 0)
	for _, l := range []int{80, 120, 300} {
		lm.Observe(l)
		// Phred 2: high error probability, exercising indels
		qm.Observe(l, bytes.Repeat([]byte{'#'}, l), rnd)
	}

	em, err := model.NewErrorModel(model.DefaultErrorRates())
	if err != nil {
		t.Fatalf("error model construction failed: %v", err)
	}

	g, err := New(refs, lm, qm, em, Config{Seed: 42})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	for i := 0; i < 100; i++ {
		r, err := g.GenerateRead()
		if err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
		if len(r.Seq) != len(r.Qual) {
			t.Fatalf("read %d has seq %d but qual %d", i, len(r.Seq), len(r.Qual))
		}
	}
}

func TestGenerateEmptyLengthModel(t *testing.T) {
	refs := []fasta.Record{{ID: "ref", Seq: []byte("ACGTACGT")}}
	lm := model.NewLengthModel()
	qm := model.NewQualityModel(0, 0, 0)

	g, err := New(refs, lm, qm, noErrors(t), Config{Seed: 42})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	_, err = g.GenerateRead()
	if err == nil {
		t.Fatalf("generation succeeded with an empty length model")
	}
	if !strings.Contains(err.Error(), "length model is empty") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGenerateRetryBudget(t *testing.T) {
	// every sampled length exceeds the only reference
	refs := []fasta.Record{{ID: "short", Seq: []byte("ACGTACGTACGT")}}
	lm, qm := fixedModels(t, 100, '?')

	g, err := New(refs, lm, qm, noErrors(t), Config{Seed: 42, RetryLimit: 10})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	_, err = g.GenerateRead()
	if err == nil {
		t.Fatalf("generation succeeded though no length can fit")
	}
	if !strings.Contains(err.Error(), "after 10 attempts") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(err.Error(), "exceeds reference") {
		t.Fatalf("error does not identify the mismatch: %v", err)
	}
}

func TestGenerateReproducible(t *testing.T) {
	rnd := rand.New(rand.NewSource(9))
	seq := make([]byte, 500)
	for i := range seq {
		seq[i] = nucleotides[rnd.Intn(4)]
	}
	refs := []fasta.Record{{ID: "ref", Seq: seq}}

	build := func() *Generator {
		lm := model.NewLengthModel()
		qm := model.NewQualityModel(0, 0, 0)
		fitRnd := rand.New(rand.NewSource(1))
		for _, l := range []int{50, 100} {
			lm.Observe(l)
			qm.Observe(l, bytes.Repeat([]byte{'5'}, l), fitRnd)
		}

		em, err := model.NewErrorModel(model.DefaultErrorRates())
		if err != nil {
			t.Fatalf("error model construction failed: %v", err)
		}

		g, err := New(refs, lm, qm, em, Config{Seed: 42})
		if err != nil {
			t.Fatalf("construction failed: %v", err)
		}

		return g
	}

	g1, g2 := build(), build()
	for i := 0; i < 10; i++ {
		r1, err1 := g1.GenerateRead()
		r2, err2 := g2.GenerateRead()
		if err1 != nil || err2 != nil {
			t.Fatalf("read %d failed: %v %v", i, err1, err2)
		}

		if r1.ID != r2.ID || !bytes.Equal(r1.Seq, r2.Seq) || !bytes.Equal(r1.Qual, r2.Qual) {
			t.Fatalf("read %d differs between equal-seed generators", i)
		}
	}
}

func TestNewReadLengthMismatch(t *testing.T) {
	if _, err := NewRead("r", []byte("ACGT"), []byte("II")); err == nil {
		t.Fatalf("mismatched lengths accepted")
	}
}

func TestSubstituteNeverReturnsOriginal(t *testing.T) {
	lm, qm := fixedModels(t, 10, '?')
	g, err := New([]fasta.Record{{ID: "r", Seq: []byte("ACGTACGTACGT")}}, lm, qm, noErrors(t), Config{Seed: 42})
	if err != nil {
		t.Fatalf("construction failed: %v", err)
	}

	for _, orig := range nucleotides {
		for i := 0; i < 100; i++ {
			if got := g.substitute(orig); got == orig {
				t.Fatalf("substitute(%q) returned the original base", orig)
			}
		}
	}

	// non-ACGT bases substitute to some nucleotide
	for i := 0; i < 100; i++ {
		got := g.substitute('N')
		if bytes.IndexByte(nucleotides, got) < 0 {
			t.Fatalf("substitute('N') returned %q", got)
		}
	}
}
