package model

import (
	"fmt"
	"math/rand"
)

const (
	DefaultSubstitutionRate   = 0.7
	DefaultInsertionRate      = 0.1
	DefaultDeletionRate       = 0.2
	DefaultInsertionExtension = 0.4
	DefaultDeletionExtension  = 0.4

	// MaxRunLength caps geometric indel run-length sampling.
	MaxRunLength = 100
)

// ErrorRates parameterizes the error model. The three base rates select
// the alteration applied when a base errors; the extension rates drive
// the geometric run lengths of multi-base indels.
type ErrorRates struct {
	Substitution       float64
	Insertion          float64
	Deletion           float64
	InsertionExtension float64
	DeletionExtension  float64
}

// DefaultErrorRates returns the rates used when none are configured.
func DefaultErrorRates() ErrorRates {
	return ErrorRates{
		Substitution:       DefaultSubstitutionRate,
		Insertion:          DefaultInsertionRate,
		Deletion:           DefaultDeletionRate,
		InsertionExtension: DefaultInsertionExtension,
		DeletionExtension:  DefaultDeletionExtension,
	}
}

// AlterationKind tags the outcome of classifying one errored base.
type AlterationKind int

const (
	AltNone AlterationKind = iota
	AltSubstitution
	AltInsertion
	AltDeletion
)

// Alteration is the classification of a single errored base. RunLen is
// meaningful only for insertions and deletions and is always at least 1.
type Alteration struct {
	Kind   AlterationKind
	RunLen int
}

// ErrorModel decides how an errored base is altered. Rates are validated
// once at construction and immutable afterward.
type ErrorModel struct {
	sub       float64 // substitution band: [0, sub)
	subIns    float64 // insertion band: [sub, subIns)
	subInsDel float64 // deletion band: [subIns, subInsDel)
	insExt    float64
	delExt    float64
}

// NewErrorModel validates the rates and builds the model. Each rate must
// be in [0,1] and the substitution, insertion and deletion rates must
// sum to at most 1.
func NewErrorModel(r ErrorRates) (*ErrorModel, error) {
	for _, c := range []struct {
		name string
		val  float64
	}{
		{"substitution rate", r.Substitution},
		{"insertion rate", r.Insertion},
		{"deletion rate", r.Deletion},
		{"insertion extension rate", r.InsertionExtension},
		{"deletion extension rate", r.DeletionExtension},
	} {
		if c.val < 0 || c.val > 1 {
			return nil, fmt.Errorf("%s %v out of range [0, 1]", c.name, c.val)
		}
	}

	if sum := r.Substitution + r.Insertion + r.Deletion; sum > 1 {
		return nil, fmt.Errorf("substitution, insertion and deletion rates sum to %v, must not exceed 1 (%v + %v + %v)",
			sum, r.Substitution, r.Insertion, r.Deletion)
	}

	em := new(ErrorModel)
	em.sub = r.Substitution
	em.subIns = r.Substitution + r.Insertion
	em.subInsDel = r.Substitution + r.Insertion + r.Deletion
	em.insExt = r.InsertionExtension
	em.delExt = r.DeletionExtension

	return em, nil
}

// Classify draws the alteration for one errored base. A single uniform
// draw selects among the substitution, insertion and deletion bands;
// anything past the deletion band is no alteration, reachable only when
// the three base rates sum below 1.
func (em *ErrorModel) Classify(rnd *rand.Rand) Alteration {
	p := rnd.Float64()

	switch {
	case p < em.sub:
		return Alteration{Kind: AltSubstitution}
	case p < em.subIns:
		return Alteration{Kind: AltInsertion, RunLen: runLength(em.insExt, rnd)}
	case p < em.subInsDel:
		return Alteration{Kind: AltDeletion, RunLen: runLength(em.delExt, rnd)}
	}

	return Alteration{Kind: AltNone}
}

// runLength samples a capped geometric run length: start at 1 and keep
// extending while a uniform draw stays below ext, up to MaxRunLength.
// An extension rate of 0 always yields 1.
func runLength(ext float64, rnd *rand.Rand) int {
	n := 1
	for n < MaxRunLength && rnd.Float64() < ext {
		n++
	}

	return n
}
