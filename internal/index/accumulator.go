package index

import "github.com/cuemby/vaultindex/pkg/vaulterr"

// Accumulator carries the set of terms produced so far while composing
// an index or a query. A leaf exact index keeps the accumulator's
// cardinality unchanged; a prefix index on the write path multiplies it
// by the number of grams it emits. On the query path the final
// accumulator for a prefix leaf must collapse back to exactly one term.
type Accumulator struct {
	terms [][]byte
}

// FromSalt starts an accumulator with a single term: the per-record,
// per-index salt that seeds every subsequent HMAC in the chain.
func FromSalt(salt []byte) Accumulator {
	return Accumulator{terms: [][]byte{append([]byte(nil), salt...)}}
}

// EmptyAccumulator has no terms; composing against it always fails with
// ErrEmptyAccumulator until seeded via FromSalt.
func EmptyAccumulator() Accumulator {
	return Accumulator{}
}

// Terms returns the accumulator's terms, in insertion order. The
// returned slices are not copies; callers must not mutate them.
func (a Accumulator) Terms() [][]byte {
	return a.terms
}

// Len reports how many terms the accumulator currently holds.
func (a Accumulator) Len() int {
	return len(a.terms)
}

// ExactlyOne returns the accumulator's sole term, or an error if it
// holds zero or more than one.
func (a Accumulator) ExactlyOne() ([]byte, error) {
	switch len(a.terms) {
	case 0:
		return nil, vaulterr.Wrap(vaulterr.KindIndex, "Accumulator.ExactlyOne", vaulterr.ErrEmptyAccumulator)
	case 1:
		return a.terms[0], nil
	default:
		return nil, vaulterr.Wrap(vaulterr.KindIndex, "Accumulator.ExactlyOne", vaulterr.ErrMultipleTerms)
	}
}

// Add merges another accumulator's terms into a's.
func (a Accumulator) Add(other Accumulator) Accumulator {
	out := make([][]byte, 0, len(a.terms)+len(other.terms))
	out = append(out, a.terms...)
	out = append(out, other.terms...)
	return Accumulator{terms: out}
}

// Truncate clips every term to at most length bytes. length must be at
// most 32, matching the maximum HMAC-SHA256 output retained as a term.
func (a Accumulator) Truncate(length int) (Accumulator, error) {
	if length > 32 {
		return Accumulator{}, vaulterr.Wrap(vaulterr.KindIndex, "Accumulator.Truncate", vaulterr.ErrTermTooLong)
	}
	out := make([][]byte, len(a.terms))
	for i, t := range a.terms {
		if len(t) > length {
			out[i] = t[:length]
		} else {
			out[i] = t
		}
	}
	return Accumulator{terms: out}, nil
}

func fromTerms(terms [][]byte) Accumulator {
	return Accumulator{terms: terms}
}
