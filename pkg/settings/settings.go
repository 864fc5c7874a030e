// Package settings models the derive-time schema a record type
// declares: which attributes are protected, which are stored in the
// clear, which indexes are declared over them, and how its primary key
// is shaped. It mirrors the teacher's cluster-config layer (apiVersion/
// kind/spec YAML documents) but scoped to one record type's indexing
// schema instead of a deployable resource.
package settings

import (
	"strings"

	"github.com/cuemby/vaultindex/pkg/vaulterr"
)

// PrimaryKeyShape declares whether a record type is looked up by
// partition key alone or by partition+sort key together.
type PrimaryKeyShape int

const (
	PkOnly PrimaryKeyShape = iota
	PkAndSk
)

// IndexSettings declares one compound index: its name (conventionally
// the declared fields joined by "#"), the ordered field names it
// covers, and the operator each field supports.
type IndexSettings struct {
	Name      string   `yaml:"name"`
	Fields    []string `yaml:"fields"`
	Operators []string `yaml:"operators"` // "eq" or "starts_with", aligned with Fields
}

// reservedFieldNames must never appear as a declared attribute name;
// they're either storage-reserved (term) or reserved for the __pk/__sk
// aliasing scheme.
var reservedFieldNames = map[string]bool{
	"term": true,
	"__pk": true,
	"__sk": true,
}

// Settings is the full derive-time schema for one record type.
type Settings struct {
	TypeName            string          `yaml:"typeName"`
	ProtectedAttributes []string        `yaml:"protectedAttributes"`
	PlaintextAttributes []string        `yaml:"plaintextAttributes"`
	SkippedAttributes   []string        `yaml:"skippedAttributes"`
	Indexes             []IndexSettings `yaml:"indexes"`

	PartitionKeyField string `yaml:"partitionKeyField"`

	SortKeyField  string `yaml:"sortKeyField,omitempty"`
	SortKeyPrefix string `yaml:"sortKeyPrefix,omitempty"`

	PartitionKeyEncrypted bool `yaml:"partitionKeyEncrypted"`
	SortKeyEncrypted      bool `yaml:"sortKeyEncrypted"`

	PrimaryKeyShape PrimaryKeyShape `yaml:"-"`
}

// Validate enforces the schema's structural invariants: exactly one
// partition key field, no reserved or `__`-prefixed names, and the
// explicit-sort-key-plus-prefix conflict rejected at derive time rather
// than silently suppressing the prefix.
func (s Settings) Validate() error {
	if s.PartitionKeyField == "" {
		return vaulterr.Wrap(vaulterr.KindSettings, "Settings.Validate", vaulterr.ErrInvalidPartitionKey)
	}

	if s.SortKeyField != "" && s.SortKeyPrefix != "" {
		return vaulterr.Wrap(vaulterr.KindSettings, "Settings.Validate", vaulterr.ErrIndexSuppressed)
	}

	allNames := make([]string, 0, len(s.ProtectedAttributes)+len(s.PlaintextAttributes)+len(s.SkippedAttributes)+1)
	allNames = append(allNames, s.ProtectedAttributes...)
	allNames = append(allNames, s.PlaintextAttributes...)
	allNames = append(allNames, s.SkippedAttributes...)
	allNames = append(allNames, s.PartitionKeyField)
	if s.SortKeyField != "" {
		allNames = append(allNames, s.SortKeyField)
	}

	for _, name := range allNames {
		if reservedFieldNames[name] {
			return vaulterr.Wrap(vaulterr.KindSettings, "Settings.Validate", vaulterr.ErrReservedFieldName)
		}
		if strings.HasPrefix(name, "__") {
			return vaulterr.Wrap(vaulterr.KindSettings, "Settings.Validate", vaulterr.ErrReservedFieldName)
		}
	}

	for _, idx := range s.Indexes {
		if len(idx.Fields) != len(idx.Operators) {
			return vaulterr.Wrap(vaulterr.KindSettings, "Settings.Validate", vaulterr.ErrAssertionFailed)
		}
		if len(idx.Fields) == 0 || len(idx.Fields) > 4 {
			return vaulterr.Wrap(vaulterr.KindSettings, "Settings.Validate", vaulterr.ErrTooManyArguments)
		}
	}

	return nil
}

// ResolvedSortKey computes the sort-key value a record of this type
// should use at seal time: the configured sort-key field's value, the
// configured prefix joined with it, or the type name itself when
// neither is configured.
func (s Settings) ResolvedSortKey(sortKeyFieldValue string) string {
	if s.SortKeyField != "" {
		return sortKeyFieldValue
	}
	if s.SortKeyPrefix != "" {
		return s.SortKeyPrefix + "#" + sortKeyFieldValue
	}
	return s.TypeName
}

// IndexNames returns the declared index names, in declaration order.
func (s Settings) IndexNames() []string {
	out := make([]string, len(s.Indexes))
	for i, idx := range s.Indexes {
		out[i] = idx.Name
	}
	return out
}

// IndexByName finds a declared index by name.
func (s Settings) IndexByName(name string) (IndexSettings, bool) {
	for _, idx := range s.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return IndexSettings{}, false
}
