// Package attrs implements the descriptor grammar and the
// flatten/denormalize pair that let a nested map of protected
// attributes be encrypted as a flat list of (descriptor, plaintext)
// pairs and reassembled afterward.
//
// A descriptor has the shape `{prefix/}?name{.subkey}?`: an optional
// record-type prefix, the attribute name, and — for a value that lived
// inside a protected map — the map key as a subkey.
package attrs

import (
	"strings"

	"github.com/cuemby/vaultindex/internal/plaintext"
	"github.com/cuemby/vaultindex/pkg/vaulterr"
)

// AttrName is a parsed descriptor.
type AttrName struct {
	Prefix string
	Name   string
	Subkey string

	hasPrefix bool
	hasSubkey bool
}

// NewAttrName builds a scalar AttrName with no subkey.
func NewAttrName(prefix, name string) AttrName {
	an := AttrName{Name: name}
	if prefix != "" {
		an.Prefix, an.hasPrefix = prefix, true
	}
	return an
}

// WithSubkey returns a copy of a naming a field inside a protected map.
func (a AttrName) WithSubkey(subkey string) AttrName {
	a.Subkey, a.hasSubkey = subkey, true
	return a
}

// HasSubkey reports whether a names a map field rather than a scalar.
func (a AttrName) HasSubkey() bool { return a.hasSubkey }

// Descriptor renders the `{prefix/}?name{.subkey}?` grammar.
func (a AttrName) Descriptor() string {
	var b strings.Builder
	if a.hasPrefix {
		b.WriteString(a.Prefix)
		b.WriteByte('/')
	}
	b.WriteString(a.Name)
	if a.hasSubkey {
		b.WriteByte('.')
		b.WriteString(a.Subkey)
	}
	return b.String()
}

// ParseDescriptor parses a stored descriptor string back into its
// parts. The prefix, if present, is matched against everything before
// the first '/'; the subkey, if present, against everything after the
// first '.' in what remains.
func ParseDescriptor(descriptor string) AttrName {
	rest := descriptor
	var an AttrName
	if i := strings.Index(descriptor, "/"); i >= 0 {
		an.Prefix, an.hasPrefix = descriptor[:i], true
		rest = descriptor[i+1:]
	}
	if i := strings.Index(rest, "."); i >= 0 {
		an.Name = rest[:i]
		an.Subkey, an.hasSubkey = rest[i+1:], true
	} else {
		an.Name = rest
	}
	return an
}

// FlattenedAttribute pairs a plaintext with the descriptor that
// identifies where it's stored and ties it to its AAD on encryption.
type FlattenedAttribute struct {
	Descriptor string
	Plaintext  plaintext.Plaintext
}

// ValueKind distinguishes a scalar protected attribute from a map of
// them.
type ValueKind int

const (
	KindScalar ValueKind = iota
	KindMap
)

// NormalizedValue is either a single plaintext or a named map of them.
type NormalizedValue struct {
	Kind   ValueKind
	Scalar plaintext.Plaintext
	Map    map[string]plaintext.Plaintext
}

// Protected accumulates the protected attributes of a single record
// before sealing: a set of named scalars and named maps, grouped so
// that a map's fields flatten into one descriptor per field and
// reassemble back into one map on read.
type Protected struct {
	prefix  string
	scalars map[string]plaintext.Plaintext
	maps    map[string]map[string]plaintext.Plaintext
}

// NewProtected starts an empty set, tagging every descriptor it
// flattens with prefix (typically the record's type name).
func NewProtected(prefix string) *Protected {
	return &Protected{
		prefix:  prefix,
		scalars: map[string]plaintext.Plaintext{},
		maps:    map[string]map[string]plaintext.Plaintext{},
	}
}

// InsertScalar adds a top-level protected attribute. It is an error to
// insert a scalar under a name already holding a map.
func (p *Protected) InsertScalar(name string, pt plaintext.Plaintext) error {
	if _, ok := p.maps[name]; ok {
		return vaulterr.Wrap(vaulterr.KindAttribute, "Protected.InsertScalar", vaulterr.ErrAttributeKindConflict)
	}
	p.scalars[name] = pt
	return nil
}

// InsertMapField adds one field of a protected map. It is an error to
// insert a map field under a name already holding a scalar.
func (p *Protected) InsertMapField(name, subkey string, pt plaintext.Plaintext) error {
	if _, ok := p.scalars[name]; ok {
		return vaulterr.Wrap(vaulterr.KindAttribute, "Protected.InsertMapField", vaulterr.ErrAttributeKindConflict)
	}
	m, ok := p.maps[name]
	if !ok {
		m = map[string]plaintext.Plaintext{}
		p.maps[name] = m
	}
	m[subkey] = pt
	return nil
}

// Flatten returns one FlattenedAttribute per scalar and per map field,
// each carrying the full descriptor (prefix + name + optional subkey).
func (p *Protected) Flatten() []FlattenedAttribute {
	out := make([]FlattenedAttribute, 0, len(p.scalars)+len(p.maps))
	for name, pt := range p.scalars {
		out = append(out, FlattenedAttribute{
			Descriptor: NewAttrName(p.prefix, name).Descriptor(),
			Plaintext:  pt,
		})
	}
	for name, fields := range p.maps {
		for subkey, pt := range fields {
			out = append(out, FlattenedAttribute{
				Descriptor: NewAttrName(p.prefix, name).WithSubkey(subkey).Descriptor(),
				Plaintext:  pt,
			})
		}
	}
	return out
}

// Scalar returns a previously-inserted top-level scalar by name.
func (p *Protected) Scalar(name string) (plaintext.Plaintext, bool) {
	v, ok := p.scalars[name]
	return v, ok
}

// Map returns a previously-inserted map attribute by name.
func (p *Protected) Map(name string) (map[string]plaintext.Plaintext, bool) {
	v, ok := p.maps[name]
	return v, ok
}

// Names returns the set of top-level attribute names (scalars and
// maps) this set has accumulated, in no particular order.
func (p *Protected) Names() []string {
	out := make([]string, 0, len(p.scalars)+len(p.maps))
	for name := range p.scalars {
		out = append(out, name)
	}
	for name := range p.maps {
		out = append(out, name)
	}
	return out
}

// Denormalize regroups a flat list of decrypted (descriptor, plaintext)
// pairs back into named scalars and maps. The descriptor's prefix is
// discarded — it has done its job as AAD and is not needed again once
// a record has been verified and decrypted.
func Denormalize(items []FlattenedAttribute) (map[string]NormalizedValue, error) {
	out := map[string]NormalizedValue{}
	for _, item := range items {
		an := ParseDescriptor(item.Descriptor)
		if an.HasSubkey() {
			existing, ok := out[an.Name]
			if ok && existing.Kind != KindMap {
				return nil, vaulterr.Wrap(vaulterr.KindAttribute, "Denormalize", vaulterr.ErrAttributeKindConflict)
			}
			if !ok {
				existing = NormalizedValue{Kind: KindMap, Map: map[string]plaintext.Plaintext{}}
			}
			existing.Map[an.Subkey] = item.Plaintext
			out[an.Name] = existing
			continue
		}
		if _, ok := out[an.Name]; ok {
			return nil, vaulterr.Wrap(vaulterr.KindAttribute, "Denormalize", vaulterr.ErrAttributeKindConflict)
		}
		out[an.Name] = NormalizedValue{Kind: KindScalar, Scalar: item.Plaintext}
	}
	return out, nil
}
