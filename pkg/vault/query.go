package vault

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/cuemby/vaultindex/internal/index"
	"github.com/cuemby/vaultindex/internal/plaintext"
	"github.com/cuemby/vaultindex/internal/vlog"
	"github.com/cuemby/vaultindex/internal/vmetrics"
	"github.com/cuemby/vaultindex/pkg/vaulterr"
)

// Condition is one (field, operator, value) constraint a Query asks a
// declared index to answer. Operator must be one this field's index
// actually supports, checked via SupportedOperators before composing.
type Condition struct {
	Field    string
	Operator index.Operator
	Value    plaintext.Plaintext
}

// Query finds the single declared index whose field set matches a set
// of conditions exactly and composes the conditions into one lookup
// term. A two-field compound index over (a, b) answers a query over
// {a, b} together, but not a query over {a} or {b} alone.
type Query struct {
	record     Searchable
	conditions []Condition
}

// NewQuery starts a Query against record's declared indexes.
func NewQuery(record Searchable) *Query {
	return &Query{record: record}
}

// Where adds one condition. Conditions accumulate in the order given;
// Term tries every ordering of them against the declared indexes, so
// that order need not match a compound index's declared field order.
func (q *Query) Where(field string, op index.Operator, value plaintext.Plaintext) *Query {
	q.conditions = append(q.conditions, Condition{Field: field, Operator: op, Value: value})
	return q
}

// Term composes the query's conditions into a single lookup term
// against the index that matches them. The term is the only thing
// Driver.QueryByTerm needs: the secondary index it looks up against is
// global, not scoped by partition key, mirroring a DynamoDB GSI whose
// key condition expression is "term = :term" alone.
func (q *Query) Term(ctx context.Context, ks KeyService, termLength int) (term []byte, err error) {
	logger := vlog.WithRecordType(q.record.TypeName())

	if len(q.conditions) == 0 {
		vmetrics.QueriesTotal.WithLabelValues("no_conditions").Inc()
		return nil, vaulterr.Wrap(vaulterr.KindQuery, "Query.Term", vaulterr.ErrTooFewArguments)
	}

	indexName, idx, ordered, ok := findMatchingIndex(q.record, q.conditions)
	if !ok {
		vmetrics.QueriesTotal.WithLabelValues("no_matching_index").Inc()
		return nil, vaulterr.Wrap(vaulterr.KindQuery, "Query.Term", vaulterr.ErrUnsupportedOperator)
	}

	logger = logger.With().Str("index", indexName).Logger()

	values := make([]plaintext.Plaintext, len(ordered))
	for i, c := range ordered {
		values[i] = c.Value
	}
	cp, err := index.NewComposablePlaintext(values...)
	if err != nil {
		vmetrics.QueriesTotal.WithLabelValues("error").Inc()
		return nil, vaulterr.Wrap(vaulterr.KindQuery, "Query.Term", err)
	}

	salt := []byte(q.record.TypeName() + "#" + indexName)
	acc, err := idx.ComposeQuery(cp, index.FromSalt(salt))
	for i := range values {
		values[i].Zero()
	}
	if err != nil {
		vmetrics.QueriesTotal.WithLabelValues("error").Inc()
		return nil, vaulterr.Wrap(vaulterr.KindQuery, "Query.Term", err)
	}
	acc, err = acc.Truncate(termLength)
	if err != nil {
		vmetrics.QueriesTotal.WithLabelValues("error").Inc()
		return nil, vaulterr.Wrap(vaulterr.KindQuery, "Query.Term", err)
	}
	t, err := acc.ExactlyOne()
	if err != nil {
		vmetrics.QueriesTotal.WithLabelValues("error").Inc()
		return nil, vaulterr.Wrap(vaulterr.KindQuery, "Query.Term", err)
	}

	logger.Debug().Msg("query composed to single term")
	vmetrics.QueriesTotal.WithLabelValues("ok").Inc()
	return t, nil
}

// TermBase64 is Term with its term digest base64-encoded, the shape a
// Driver.QueryByTerm caller typically wants for logging or as a sort
// key literal.
func (q *Query) TermBase64(ctx context.Context, ks KeyService, termLength int) (term string, err error) {
	t, err := q.Term(ctx, ks, termLength)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(t), nil
}

// findMatchingIndex enumerates every permutation of conditions, in
// lexicographic order of their original positions, and for each one
// walks the record's declared indexes in declaration order looking for
// one whose field order matches it exactly — the query builder
// doesn't require the caller's Where(...) calls to already be in a
// declared index's field order, since a compound index like "a#b" and
// one declared "b#a" both need to be discoverable from the same two
// conditions supplied in either order. The first permutation/index
// pairing found, in that enumeration order, wins deterministically.
func findMatchingIndex(record Searchable, conditions []Condition) (string, index.ComposableIndex, []Condition, bool) {
	for _, perm := range permutations(len(conditions)) {
		ordered := make([]Condition, len(conditions))
		for i, p := range perm {
			ordered[i] = conditions[p]
		}
		for _, name := range record.ProtectedIndexes() {
			idx, ok := record.IndexByName(name)
			if !ok {
				continue
			}
			if indexMatches(idx, ordered) {
				return name, idx, ordered, true
			}
		}
	}
	return "", nil, nil, false
}

func indexMatches(idx index.ComposableIndex, conditions []Condition) bool {
	fields := idx.SupportedOperators().Flatten()
	if len(conditions) != len(fields) {
		return false
	}
	for i, c := range conditions {
		if fields[i].Field != c.Field {
			return false
		}
		if !supportsOperator(fields[i].Operators, c.Operator) {
			return false
		}
	}
	return true
}

// permutations returns every permutation of [0, n) as index slices, in
// lexicographic order, via a recursive swap-based generator followed by
// a sort of the generated set — n is always small (a handful of conjuncts at most),
// so clarity wins over picking an in-order generator.
func permutations(n int) [][]int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	var out [][]int
	var permute func([]int, int)
	permute = func(a []int, k int) {
		if k == len(a) {
			cp := make([]int, len(a))
			copy(cp, a)
			out = append(out, cp)
			return
		}
		for i := k; i < len(a); i++ {
			a[k], a[i] = a[i], a[k]
			permute(a, k+1)
			a[k], a[i] = a[i], a[k]
		}
	}
	permute(indices, 0)
	sort.Slice(out, func(i, j int) bool {
		for k := range out[i] {
			if out[i][k] != out[j][k] {
				return out[i][k] < out[j][k]
			}
		}
		return false
	})
	return out
}

func supportsOperator(ops []index.Operator, want index.Operator) bool {
	for _, o := range ops {
		if o == want {
			return true
		}
	}
	return false
}

// DescribeIndexes renders every index a record declares as a
// human-readable summary of the fields and operators it answers, for
// diagnostics.
func DescribeIndexes(record Searchable) []string {
	var out []string
	for _, name := range record.ProtectedIndexes() {
		idx, ok := record.IndexByName(name)
		if !ok {
			continue
		}
		for _, fo := range idx.SupportedOperators().Flatten() {
			out = append(out, fmt.Sprintf("%s: %s (%v)", name, fo.Field, fo.Operators))
		}
	}
	return out
}
