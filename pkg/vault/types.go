// Package vault implements the seal/unseal pipeline: turning a
// Searchable record into one base row plus one row per index term
// (Seal), and the inverse, turning a batch of stored rows back into
// application values (Unseal). It also derives primary keys for point
// lookups that don't have a full record in hand.
package vault

import (
	"context"

	"github.com/cuemby/vaultindex/internal/index"
	"github.com/cuemby/vaultindex/pkg/tableattr"
)

// MaxTermsPerIndex bounds how many term rows a single Seal call emits
// for each declared index. An index that would produce more terms than
// this has the excess dropped, with a warning logged, rather than
// writing an unbounded number of rows for one record.
const MaxTermsPerIndex = 25

// TableEntry is one physical row: a base row (Term is nil) carrying a
// record's attributes, or a term row (Term set) carrying a copy of the
// base row's attributes under its own SK, found through its index term.
type TableEntry struct {
	PK         string
	SK         string
	Term       []byte
	Attributes map[string]tableattr.TableAttribute
}

// Clone returns a deep-enough copy of e for building derived rows
// (term rows share the base row's attributes but get their own SK and
// Term).
func (e TableEntry) Clone() TableEntry {
	attrs := make(map[string]tableattr.TableAttribute, len(e.Attributes))
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	return TableEntry{PK: e.PK, SK: e.SK, Term: e.Term, Attributes: attrs}
}

// PrimaryKeyParts is the derived, storage-ready partition and sort key
// for a record — after any key-service HMAC wrapping a Searchable
// declares.
type PrimaryKeyParts struct {
	PK string
	SK string
}

// Identifiable declares how a record maps onto a primary key.
type Identifiable interface {
	TypeName() string
	PartitionKey() string
	SortKey() string
	IsPartitionKeyEncrypted() bool
	IsSortKeyEncrypted() bool
}

// Searchable extends Identifiable with the compound indexes a record
// declares over its protected attributes.
type Searchable interface {
	Identifiable
	ProtectedIndexes() []string
	IndexByName(name string) (index.ComposableIndex, bool)
	AttributeForIndex(name string) (index.ComposablePlaintext, bool)
}

// Driver is the storage collaborator: a narrow, DynamoDB-shaped
// contract over a pk/sk keyed table with a term secondary index. Seal/
// Unseal never talk to a Driver directly — callers do, using the rows
// Seal returns and the keys Unseal and the query builder compute — but
// it's declared here as the boundary every reference and production
// driver implements.
//
// QueryByTerm takes no partition key: the term index is a global
// secondary index keyed purely on the term column, the same way a
// DynamoDB GSI query condition is "term = :term" with no partition-key
// component. A term is already salted per record type and index name
// before it reaches here, so collisions across unrelated partitions
// are a key-derivation concern, not a storage one.
type Driver interface {
	PutItems(ctx context.Context, items []TableEntry) error
	GetItem(ctx context.Context, pk, sk string) (TableEntry, bool, error)
	QueryByTerm(ctx context.Context, term []byte) ([]TableEntry, error)
}
