package main

import (
	"github.com/cuemby/vaultindex/internal/index"
	"github.com/cuemby/vaultindex/internal/plaintext"
	"github.com/cuemby/vaultindex/internal/tokenize"
	"github.com/cuemby/vaultindex/pkg/vault"
)

// contact is the demo record type: a plaintext partition key, a
// protected name indexed both standalone (prefix) and compounded with
// the partition key (exact), and a plaintext tag.
type contact struct {
	pk, sk, name, tag string
}

const contactTypeName = "contact"

var (
	contactPkIndex    = index.ExactIndex{Field: "pk"}
	contactNameIndex  = index.PrefixIndex{Field: "name", Filters: []tokenize.Filter{tokenize.Downcase{}}, MinLength: 3, MaxLength: 10}
	contactEmailName  = index.NewCompoundIndex(contactPkIndex).And(contactNameIndex)
	contactIndexNames = []string{"pk", "name", "pk#name"}
)

func (c *contact) TypeName() string            { return contactTypeName }
func (c *contact) PartitionKey() string         { return c.pk }
func (c *contact) SortKey() string              { return c.sk }
func (c *contact) IsPartitionKeyEncrypted() bool { return false }
func (c *contact) IsSortKeyEncrypted() bool      { return false }
func (c *contact) ProtectedIndexes() []string    { return contactIndexNames }

func (c *contact) IndexByName(name string) (index.ComposableIndex, bool) {
	switch name {
	case "pk":
		return contactPkIndex, true
	case "name":
		return contactNameIndex, true
	case "pk#name":
		return contactEmailName, true
	}
	return nil, false
}

func (c *contact) AttributeForIndex(name string) (index.ComposablePlaintext, bool) {
	switch name {
	case "pk":
		cp, _ := index.NewComposablePlaintext(plaintext.NewUtf8Str(c.pk))
		return cp, true
	case "name":
		cp, _ := index.NewComposablePlaintext(plaintext.NewUtf8Str(c.name))
		return cp, true
	case "pk#name":
		cp, _ := index.NewComposablePlaintext(plaintext.NewUtf8Str(c.pk), plaintext.NewUtf8Str(c.name))
		return cp, true
	}
	return index.ComposablePlaintext{}, false
}

var _ vault.Searchable = (*contact)(nil)
