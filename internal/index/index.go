// Package index implements the deterministic indexers that turn a
// plaintext value into one or more HMAC terms: ExactIndex for equality
// lookups, PrefixIndex for "starts with" lookups, and CompoundIndex for
// composing several single-field indexes into one multi-field index.
package index

import (
	"crypto/hmac"
	"crypto/sha256"

	"github.com/cuemby/vaultindex/internal/plaintext"
	"github.com/cuemby/vaultindex/internal/tokenize"
	"github.com/cuemby/vaultindex/pkg/vaulterr"
)

// Operator is a query operator a declared index can answer.
type Operator int

const (
	OpEq Operator = iota
	OpStartsWith
)

func (o Operator) String() string {
	if o == OpStartsWith {
		return "starts_with"
	}
	return "eq"
}

// FieldOps names the operators a single field within an index supports.
type FieldOps struct {
	Field     string
	Operators []Operator
}

// SupportedOperators describes what a ComposableIndex can answer: a
// single field (Simple) or an ordered list of fields (Compound), the
// way the query builder expects to find a multi-field index declared.
type SupportedOperators struct {
	Simple   *FieldOps
	Compound []FieldOps
}

// Flatten normalizes Simple and Compound into one []FieldOps.
func (s SupportedOperators) Flatten() []FieldOps {
	if s.Simple != nil {
		return []FieldOps{*s.Simple}
	}
	return s.Compound
}

// ComposableIndex is the shared contract every leaf and compound
// indexer implements. ComposeIndex runs on the write path and may
// multiply the accumulator's cardinality (a prefix leaf fans out into
// many grams); ComposeQuery runs on the read path and must collapse to
// exactly one term for every leaf it touches.
type ComposableIndex interface {
	ComposeIndex(cp ComposablePlaintext, acc Accumulator) (Accumulator, error)
	ComposeQuery(cp ComposablePlaintext, acc Accumulator) (Accumulator, error)
	SupportedOperators() SupportedOperators
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// canonicalBytes renders a plaintext for hashing: a Utf8Str value has
// any LIKE-style wildcard markers stripped and its token filters
// applied (so "Foo" and "foo" hash identically under a Downcase
// filter, and "%foo%" matches a term indexed from "foo"), everything
// else uses the plain wire encoding.
func canonicalBytes(pt plaintext.Plaintext, filters []tokenize.Filter) []byte {
	if s, ok := pt.Utf8Str(); ok {
		s = tokenize.StripLikeWildcards(s)
		filtered := tokenize.ApplyAll(filters, []string{s})[0]
		return []byte(filtered)
	}
	return pt.ToBytes()
}

// ExactIndex hashes a single field's canonical bytes against every
// term currently in the accumulator, preserving its cardinality — it
// never changes how many terms are in flight, only what they hash to.
type ExactIndex struct {
	Field   string
	Filters []tokenize.Filter
}

func (e ExactIndex) ComposeIndex(cp ComposablePlaintext, acc Accumulator) (Accumulator, error) {
	return e.compose(cp, acc)
}

func (e ExactIndex) ComposeQuery(cp ComposablePlaintext, acc Accumulator) (Accumulator, error) {
	return e.compose(cp, acc)
}

func (e ExactIndex) compose(cp ComposablePlaintext, acc Accumulator) (Accumulator, error) {
	pt, tail := cp.Pop()
	if tail != nil {
		return Accumulator{}, vaulterr.Wrap(vaulterr.KindIndex, "ExactIndex.compose", vaulterr.ErrTooManyArguments)
	}
	terms := acc.Terms()
	if len(terms) == 0 {
		return Accumulator{}, vaulterr.Wrap(vaulterr.KindIndex, "ExactIndex.compose", vaulterr.ErrEmptyAccumulator)
	}
	data := canonicalBytes(pt, e.Filters)
	out := make([][]byte, len(terms))
	for i, t := range terms {
		out[i] = hmacSHA256(t, data)
	}
	return fromTerms(out), nil
}

func (e ExactIndex) SupportedOperators() SupportedOperators {
	return SupportedOperators{Simple: &FieldOps{Field: e.Field, Operators: []Operator{OpEq}}}
}

// PrefixIndex expands every accumulator term into one new term per
// edge-n-gram of the field value on the write path, and collapses a
// query string down to the single term matching the stored prefix on
// the read path.
type PrefixIndex struct {
	Field              string
	Filters            []tokenize.Filter
	MinLength, MaxLength int
}

func (p PrefixIndex) ComposeIndex(cp ComposablePlaintext, acc Accumulator) (Accumulator, error) {
	pt, tail := cp.Pop()
	if tail != nil {
		return Accumulator{}, vaulterr.Wrap(vaulterr.KindIndex, "PrefixIndex.ComposeIndex", vaulterr.ErrTooManyArguments)
	}
	s, ok := pt.Utf8Str()
	if !ok {
		return Accumulator{}, vaulterr.Wrap(vaulterr.KindIndex, "PrefixIndex.ComposeIndex", vaulterr.ErrIndexingRequiresText)
	}
	s = tokenize.StripLikeWildcards(s)
	terms := acc.Terms()
	if len(terms) == 0 {
		return Accumulator{}, vaulterr.Wrap(vaulterr.KindIndex, "PrefixIndex.ComposeIndex", vaulterr.ErrEmptyAccumulator)
	}
	grams := tokenize.EdgeNgramRaw{Min: p.MinLength, Max: p.MaxLength}.Tokenize(s)
	grams = tokenize.ApplyAll(p.Filters, grams)

	out := make([][]byte, 0, len(terms)*len(grams))
	for _, t := range terms {
		for _, g := range grams {
			out = append(out, hmacSHA256(t, []byte(g)))
		}
	}
	return fromTerms(out), nil
}

func (p PrefixIndex) ComposeQuery(cp ComposablePlaintext, acc Accumulator) (Accumulator, error) {
	pt, tail := cp.Pop()
	if tail != nil {
		return Accumulator{}, vaulterr.Wrap(vaulterr.KindIndex, "PrefixIndex.ComposeQuery", vaulterr.ErrTooManyArguments)
	}
	s, ok := pt.Utf8Str()
	if !ok {
		return Accumulator{}, vaulterr.Wrap(vaulterr.KindIndex, "PrefixIndex.ComposeQuery", vaulterr.ErrIndexingRequiresText)
	}
	s = tokenize.StripLikeWildcards(s)
	if len(s) < p.MinLength {
		return Accumulator{}, vaulterr.Wrap(vaulterr.KindIndex, "PrefixIndex.ComposeQuery", vaulterr.ErrQueryTooShort)
	}
	term, err := acc.ExactlyOne()
	if err != nil {
		return Accumulator{}, vaulterr.Wrap(vaulterr.KindIndex, "PrefixIndex.ComposeQuery", err)
	}
	filtered := tokenize.ApplyAll(p.Filters, []string{s})[0]
	return fromTerms([][]byte{hmacSHA256(term, []byte(filtered))}), nil
}

func (p PrefixIndex) SupportedOperators() SupportedOperators {
	return SupportedOperators{Simple: &FieldOps{Field: p.Field, Operators: []Operator{OpStartsWith}}}
}

// CompoundIndex composes one or more ComposableIndex leaves into a
// single index keyed on a cons-list of plaintexts. Build one with
// NewCompoundIndex and extend it with And in the order the fields are
// declared; the resulting ComposablePlaintext passed to ComposeIndex/
// ComposeQuery must supply one plaintext per leaf, in that same order.
// Each leaf consumes one plaintext and feeds its resulting accumulator
// to the next, so the accumulator's final cardinality is the product of
// every prefix leaf's gram count along the chain.
type CompoundIndex struct {
	leaves []ComposableIndex
}

// NewCompoundIndex starts a chain with a single leaf (or an
// already-composed index, to nest compounds).
func NewCompoundIndex(i ComposableIndex) CompoundIndex {
	return CompoundIndex{leaves: []ComposableIndex{i}}
}

// And appends another leaf, declared after every leaf already in the
// chain.
func (c CompoundIndex) And(other ComposableIndex) CompoundIndex {
	leaves := make([]ComposableIndex, len(c.leaves)+1)
	copy(leaves, c.leaves)
	leaves[len(c.leaves)] = other
	return CompoundIndex{leaves: leaves}
}

func (c CompoundIndex) ComposeIndex(cp ComposablePlaintext, acc Accumulator) (Accumulator, error) {
	return c.fold(cp, acc, ComposableIndex.ComposeIndex)
}

func (c CompoundIndex) ComposeQuery(cp ComposablePlaintext, acc Accumulator) (Accumulator, error) {
	return c.fold(cp, acc, ComposableIndex.ComposeQuery)
}

func (c CompoundIndex) fold(cp ComposablePlaintext, acc Accumulator, step func(ComposableIndex, ComposablePlaintext, Accumulator) (Accumulator, error)) (Accumulator, error) {
	rest := cp.items
	for _, leaf := range c.leaves {
		// A nested compound leaf consumes one plaintext per field it covers.
		n := len(leaf.SupportedOperators().Flatten())
		if len(rest) < n {
			return Accumulator{}, vaulterr.Wrap(vaulterr.KindIndex, "CompoundIndex.fold", vaulterr.ErrTooFewArguments)
		}
		var err error
		acc, err = step(leaf, ComposablePlaintext{items: rest[:n]}, acc)
		if err != nil {
			return Accumulator{}, err
		}
		rest = rest[n:]
	}
	if len(rest) > 0 {
		return Accumulator{}, vaulterr.Wrap(vaulterr.KindIndex, "CompoundIndex.fold", vaulterr.ErrTooManyArguments)
	}
	return acc, nil
}

func (c CompoundIndex) SupportedOperators() SupportedOperators {
	var ops []FieldOps
	for _, leaf := range c.leaves {
		ops = append(ops, leaf.SupportedOperators().Flatten()...)
	}
	return SupportedOperators{Compound: ops}
}
