package vault

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/cuemby/vaultindex/internal/attrs"
	"github.com/cuemby/vaultindex/internal/index"
	"github.com/cuemby/vaultindex/internal/plaintext"
	"github.com/cuemby/vaultindex/internal/vlog"
	"github.com/cuemby/vaultindex/internal/vmetrics"
	"github.com/cuemby/vaultindex/pkg/tableattr"
	"github.com/cuemby/vaultindex/pkg/vaulterr"
)

// Sealer accumulates a record's protected and plaintext attributes
// before a single Seal call turns them into table rows. It mirrors the
// builder a derive macro would generate calls against: AddProtected/
// AddPlaintext chain, and the first error any of them hits is returned
// from Seal instead of panicking mid-chain.
type Sealer struct {
	record   Searchable
	unsealed *Unsealed
	err      error
}

// NewSealer starts a Sealer for record.
func NewSealer(record Searchable) *Sealer {
	return &Sealer{record: record, unsealed: NewUnsealed(record.TypeName())}
}

// AddProtected declares a scalar protected attribute.
func (s *Sealer) AddProtected(name string, pt plaintext.Plaintext) *Sealer {
	if s.err == nil {
		s.err = s.unsealed.AddProtected(name, pt)
	}
	return s
}

// AddProtectedMapField declares one field of a protected map attribute.
func (s *Sealer) AddProtectedMapField(name, subkey string, pt plaintext.Plaintext) *Sealer {
	if s.err == nil {
		s.err = s.unsealed.AddProtectedMapField(name, subkey, pt)
	}
	return s
}

// AddPlaintext declares an unencrypted attribute, stored directly on
// the base row.
func (s *Sealer) AddPlaintext(name string, attr tableattr.TableAttribute) *Sealer {
	s.unsealed.AddUnprotected(name, attr)
	return s
}

// Seal derives the record's primary key, bulk-encrypts its protected
// attributes, composes every declared index, and returns the base row
// followed by up to MaxTermsPerIndex term rows for each declared index.
func (s *Sealer) Seal(ctx context.Context, ks KeyService, termLength int) (PrimaryKeyParts, []TableEntry, error) {
	if s.err != nil {
		return PrimaryKeyParts{}, nil, vaulterr.Wrap(vaulterr.KindSeal, "Sealer.Seal", s.err)
	}

	logger := vlog.WithRecordType(s.record.TypeName())
	logger.Debug().Msg("deriving primary key")

	pkParts, err := derivePrimaryKey(ctx, ks, s.record.PartitionKey(), s.record.SortKey(),
		s.record.IsPartitionKeyEncrypted(), s.record.IsSortKeyEncrypted())
	if err != nil {
		return PrimaryKeyParts{}, nil, vaulterr.Wrap(vaulterr.KindSeal, "Sealer.Seal", err)
	}

	baseAttrs := make(map[string]tableattr.TableAttribute, len(s.unsealed.unprotected))
	for k, v := range s.unsealed.unprotected {
		baseAttrs[k] = v
	}

	flattened := s.unsealed.Flatten()
	if len(flattened) > 0 {
		logger.Debug().Int("count", len(flattened)).Msg("bulk encrypting protected attributes")
		encrypted, err := ks.Encrypt(ctx, toBytesWithDescriptor(flattened))
		if err != nil {
			return PrimaryKeyParts{}, nil, vaulterr.Wrap(vaulterr.KindSeal, "Sealer.Seal", err)
		}
		if len(encrypted) != len(flattened) {
			return PrimaryKeyParts{}, nil, vaulterr.Wrap(vaulterr.KindSeal, "Sealer.Seal", vaulterr.ErrAssertionFailed)
		}
		if err := mergeEncrypted(baseAttrs, flattened, encrypted); err != nil {
			return PrimaryKeyParts{}, nil, vaulterr.Wrap(vaulterr.KindSeal, "Sealer.Seal", err)
		}
		// The plaintext payload is encrypted and merged into baseAttrs now;
		// nothing downstream needs it in the clear again.
		for i := range flattened {
			flattened[i].Plaintext.Zero()
		}
	}

	base := TableEntry{PK: pkParts.PK, SK: pkParts.SK, Attributes: baseAttrs}

	terms, err := composeAllIndexes(s.record, termLength)
	if err != nil {
		return PrimaryKeyParts{}, nil, vaulterr.Wrap(vaulterr.KindSeal, "Sealer.Seal", err)
	}
	vmetrics.TermsEmitted.Add(float64(len(terms)))

	rows := make([]TableEntry, 0, 1+len(terms))
	rows = append(rows, base)

	for i, it := range terms {
		termSK, err := hmacBase64(ctx, ks, "sk", fmt.Sprintf("%s#%s#%d", s.record.SortKey(), it.indexName, i), []byte(pkParts.PK))
		if err != nil {
			return PrimaryKeyParts{}, nil, vaulterr.Wrap(vaulterr.KindSeal, "Sealer.Seal", err)
		}
		row := base.Clone()
		row.SK = termSK
		row.Term = it.term
		rows = append(rows, row)
	}

	vmetrics.SealsTotal.Inc()
	return pkParts, rows, nil
}

type namedTerm struct {
	indexName string
	term      []byte
}

func composeAllIndexes(record Searchable, termLength int) ([]namedTerm, error) {
	var out []namedTerm
	for _, indexName := range record.ProtectedIndexes() {
		idx, ok := record.IndexByName(indexName)
		if !ok {
			return nil, fmt.Errorf("composeAllIndexes: %w: index %q not declared", vaulterr.ErrMissingAttribute, indexName)
		}
		cp, ok := record.AttributeForIndex(indexName)
		if !ok {
			return nil, fmt.Errorf("composeAllIndexes: %w: no attribute value for index %q", vaulterr.ErrMissingAttribute, indexName)
		}
		salt := []byte(record.TypeName() + "#" + indexName)
		acc, err := idx.ComposeIndex(cp, index.FromSalt(salt))
		if err != nil {
			return nil, err
		}
		acc, err = acc.Truncate(termLength)
		if err != nil {
			return nil, err
		}
		indexTerms := acc.Terms()
		if len(indexTerms) > MaxTermsPerIndex {
			vlog.WithRecordType(record.TypeName()).Warn().
				Str("index", indexName).
				Int("dropped", len(indexTerms)-MaxTermsPerIndex).
				Msg("term rows truncated at MaxTermsPerIndex")
			indexTerms = indexTerms[:MaxTermsPerIndex]
		}
		for _, t := range indexTerms {
			out = append(out, namedTerm{indexName: indexName, term: t})
		}
	}
	return out, nil
}

func toBytesWithDescriptor(items []attrs.FlattenedAttribute) []BytesWithDescriptor {
	out := make([]BytesWithDescriptor, len(items))
	for i, it := range items {
		out[i] = BytesWithDescriptor{Bytes: it.Plaintext.ToBytes(), Descriptor: it.Descriptor}
	}
	return out
}

// mergeEncrypted regroups the encrypted attributes back by name (and
// subkey, for map fields), writing each into dst under its storage
// name — with "pk"/"sk" aliased to "__pk"/"__sk" so an independently
// protected copy of the key value never collides with a literal
// attribute the record happens to name "pk" or "sk".
func mergeEncrypted(dst map[string]tableattr.TableAttribute, flattened []attrs.FlattenedAttribute, encrypted []tableattr.EncryptedRecord) error {
	mapsBuilder := map[string]map[string]tableattr.TableAttribute{}
	for i, f := range flattened {
		an := attrs.ParseDescriptor(f.Descriptor)
		name := storageAlias(an.Name)
		val := tableattr.NewEncryptedRecordAttribute(encrypted[i])
		if an.HasSubkey() {
			m, ok := mapsBuilder[name]
			if !ok {
				m = map[string]tableattr.TableAttribute{}
				mapsBuilder[name] = m
			}
			m[an.Subkey] = val
			continue
		}
		dst[name] = val
	}
	for name, fields := range mapsBuilder {
		m := tableattr.NewMap()
		for k, v := range fields {
			if err := m.TryInsertMap(k, v); err != nil {
				return err
			}
		}
		dst[name] = m
	}
	return nil
}

func storageAlias(name string) string {
	switch name {
	case "pk":
		return "__pk"
	case "sk":
		return "__sk"
	default:
		return name
	}
}

func unaliasStorageName(name string) string {
	switch name {
	case "__pk":
		return "pk"
	case "__sk":
		return "sk"
	default:
		return name
	}
}

// derivePrimaryKey computes a record's storage-ready pk/sk, applying
// the key-service HMAC wrap that's used whenever the corresponding key
// is declared encrypted. It stands alone from Sealer.Seal because a
// point lookup by known key needs the exact same derivation without
// holding a full record.
func derivePrimaryKey(ctx context.Context, ks KeyService, pk, sk string, pkEncrypted, skEncrypted bool) (PrimaryKeyParts, error) {
	outPK := pk
	if pkEncrypted {
		h, err := hmacBase64(ctx, ks, "pk", pk, nil)
		if err != nil {
			return PrimaryKeyParts{}, err
		}
		outPK = h
	}
	outSK := sk
	if skEncrypted {
		h, err := hmacBase64(ctx, ks, "sk", sk, []byte(outPK))
		if err != nil {
			return PrimaryKeyParts{}, err
		}
		outSK = h
	}
	return PrimaryKeyParts{PK: outPK, SK: outSK}, nil
}

// DerivePrimaryKey is the exported form of derivePrimaryKey, for
// looking up a record by key alone (component 7: primary-key
// derivation without a full record in hand).
func DerivePrimaryKey(ctx context.Context, ks KeyService, pk, sk string, pkEncrypted, skEncrypted bool) (PrimaryKeyParts, error) {
	return derivePrimaryKey(ctx, ks, pk, sk, pkEncrypted, skEncrypted)
}

func hmacBase64(ctx context.Context, ks KeyService, keyRole, data string, salt []byte) (string, error) {
	digest, err := ks.HMAC(ctx, keyRole, []byte(data), salt)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(digest), nil
}
