// The gen package synthesizes artificial reads from reference
// sequences, driven by the empirical length, quality and error models.
package gen

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"readfaker/io/fasta"
	"readfaker/model"
)

// DefaultRetryLimit bounds how many attempts one GenerateRead call may
// spend recovering from transient mismatches (a sampled length longer
// than the chosen reference, or no quality donor for a length) before
// giving up.
const DefaultRetryLimit = 1000

var nucleotides = []byte("ACGT")

// ntIndex maps a nucleotide byte to its index in nucleotides, -1 for
// anything else.
var ntIndex [256]int

func init() {
	for i := range ntIndex {
		ntIndex[i] = -1
	}
	for i, nt := range nucleotides {
		ntIndex[nt] = i
	}
}

// Read is one synthesized read. Seq and Qual always have equal length.
type Read struct {
	ID   string
	Seq  []byte
	Qual []byte
}

// NewRead builds a read, enforcing that sequence and quality match in
// length.
func NewRead(id string, seq, qual []byte) (*Read, error) {
	if len(seq) != len(qual) {
		return nil, fmt.Errorf("sequence length (%d) does not match quality length (%d)", len(seq), len(qual))
	}

	return &Read{ID: id, Seq: seq, Qual: qual}, nil
}

// Config holds the optional generator settings.
type Config struct {
	// Seed for the pseudo-random source; 0 derives one from the
	// wall clock.
	Seed int64

	// IDPrefix prefixes generated read ids; reads are numbered
	// sequentially under it.
	IDPrefix string

	// RetryLimit overrides DefaultRetryLimit when positive.
	RetryLimit int
}

// Generator produces reads on demand. It owns its pseudo-random source:
// calls advance it sequentially, so a fixed seed reproduces the same
// read series only when calls are not interleaved with another
// consumer. It is not safe for concurrent use.
type Generator struct {
	refs    []fasta.Record
	lengths *model.LengthModel
	quals   *model.QualityModel
	errs    *model.ErrorModel
	rnd     *rand.Rand

	idPrefix   string
	retryLimit int
	count      int
}

// New builds a generator over the reference collection and the three
// models. It fails if the reference collection is empty.
func New(refs []fasta.Record, lm *model.LengthModel, qm *model.QualityModel, em *model.ErrorModel, cfg Config) (*Generator, error) {
	if len(refs) == 0 {
		return nil, errors.New("references cannot be empty")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	prefix := cfg.IDPrefix
	if prefix == "" {
		prefix = "readfaker"
	}

	limit := cfg.RetryLimit
	if limit <= 0 {
		limit = DefaultRetryLimit
	}

	g := new(Generator)
	g.refs = refs
	g.lengths = lm
	g.quals = qm
	g.errs = em
	g.rnd = rand.New(rand.NewSource(seed))
	g.idPrefix = prefix
	g.retryLimit = limit

	return g, nil
}

// GenerateRead produces one read: sample a length, pick a reference and
// offset, sample a matching quality string, then run the error model
// over every base. A length that fits no chosen reference or a length
// with no quality donor restarts the attempt; an empty length model
// fails immediately. Exhausting the retry budget fails with the
// mismatch that kept recurring.
func (g *Generator) GenerateRead() (*Read, error) {
	lastMiss := ""

	for attempt := 0; attempt < g.retryLimit; attempt++ {
		length, ok := g.lengths.Sample(g.rnd)
		if !ok {
			return nil, errors.New("length model is empty: no read lengths were observed")
		}

		ref := &g.refs[g.rnd.Intn(len(g.refs))]
		if length > len(ref.Seq) {
			lastMiss = fmt.Sprintf("sampled length %d exceeds reference %s (%d bases)", length, ref.ID, len(ref.Seq))
			continue
		}

		off := g.rnd.Intn(len(ref.Seq) - length + 1)
		qual, ok := g.quals.Sample(length, g.rnd)
		if !ok {
			lastMiss = fmt.Sprintf("no quality string available for length %d", length)
			continue
		}

		seq, qual := g.applyErrors(ref.Seq[off:off+length], qual)

		g.count++
		return NewRead(fmt.Sprintf("%s_%d", g.idPrefix, g.count), seq, qual)
	}

	return nil, fmt.Errorf("no read generated after %d attempts: %s", g.retryLimit, lastMiss)
}

// applyErrors walks the extracted subsequence position by position. A
// base errors with the probability encoded by its quality byte; the
// error model then decides the alteration. Output sequence and quality
// grow in lock-step, so they always match in length even though indels
// change it.
func (g *Generator) applyErrors(seq, qual []byte) ([]byte, []byte) {
	outSeq := make([]byte, 0, len(seq))
	outQual := make([]byte, 0, len(seq))

	for i := 0; i < len(seq); {
		q := qual[i]
		if g.rnd.Float64() > model.ErrorProb(q) {
			outSeq = append(outSeq, seq[i])
			outQual = append(outQual, q)
			i++
			continue
		}

		alt := g.errs.Classify(g.rnd)
		switch alt.Kind {
		case model.AltSubstitution:
			outSeq = append(outSeq, g.substitute(seq[i]))
			outQual = append(outQual, q)
			i++

		case model.AltInsertion:
			// inserted bases inherit the quality of the
			// base that triggered them
			outSeq = append(outSeq, seq[i])
			outQual = append(outQual, q)
			for k := 0; k < alt.RunLen; k++ {
				outSeq = append(outSeq, nucleotides[g.rnd.Intn(len(nucleotides))])
				outQual = append(outQual, q)
			}
			i++

		case model.AltDeletion:
			n := alt.RunLen
			if n < 1 {
				n = 1
			}
			i += n

		default:
			outSeq = append(outSeq, seq[i])
			outQual = append(outQual, q)
			i++
		}
	}

	return outSeq, outQual
}

// substitute picks a nucleotide different from the original. A base
// outside ACGT (such as N) has no well-defined "three others" and maps
// to a uniform draw over all four.
func (g *Generator) substitute(orig byte) byte {
	oi := ntIndex[orig]
	if oi < 0 {
		return nucleotides[g.rnd.Intn(len(nucleotides))]
	}

	n := g.rnd.Intn(len(nucleotides) - 1)
	if n >= oi {
		n++
	}

	return nucleotides[n]
}
