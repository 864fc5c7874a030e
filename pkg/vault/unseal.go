package vault

import (
	"context"
	"fmt"

	"github.com/cuemby/vaultindex/internal/attrs"
	"github.com/cuemby/vaultindex/internal/plaintext"
	"github.com/cuemby/vaultindex/internal/vlog"
	"github.com/cuemby/vaultindex/internal/vmetrics"
	"github.com/cuemby/vaultindex/pkg/tableattr"
	"github.com/cuemby/vaultindex/pkg/vaulterr"
)

// cipherSite locates one ciphertext within one row's attribute set, so
// the bulk-decrypted plaintext can be routed back after a single
// cross-row Decrypt call.
type cipherSite struct {
	row        int
	name       string // original, unaliased name
	subkey     string
	hasSubkey  bool
	descriptor string
}

// UnsealAll turns a batch of rows (base rows or term rows — a term row
// carries the same encrypted payload as its base row) into Unsealed
// values, bulk-decrypting every protected attribute across the whole
// batch in one KeyService.Decrypt call. protectedNames lists every
// protected attribute name the record type declares; a name whose
// stored value is a TableAttribute map is treated as a protected map
// attribute and every field found is decrypted.
func UnsealAll(ctx context.Context, ks KeyService, prefix string, protectedNames []string, rows []TableEntry) ([]*Unsealed, error) {
	var sites []cipherSite
	var ciphertexts []tableattr.EncryptedRecord

	for rowIdx, row := range rows {
		// A row's Term field, when set, only identifies which secondary-
		// index lookup found it — term rows carry the same encrypted
		// payload as the base row and unseal identically either way.
		for _, name := range protectedNames {
			storageKey := storageAlias(name)
			attr, ok := row.Attributes[storageKey]
			if !ok {
				return nil, vaulterr.Wrap(vaulterr.KindUnseal, "UnsealAll", fmt.Errorf("%w: %s", vaulterr.ErrMissingAttribute, name))
			}
			if m, ok := attr.AsMap(); ok {
				for subkey, sub := range m {
					descriptor := attrs.NewAttrName(prefix, name).WithSubkey(subkey).Descriptor()
					rec, err := sub.AsEncryptedRecord(descriptor)
					if err != nil {
						return nil, vaulterr.Wrap(vaulterr.KindUnseal, "UnsealAll", err)
					}
					sites = append(sites, cipherSite{row: rowIdx, name: name, subkey: subkey, hasSubkey: true, descriptor: descriptor})
					ciphertexts = append(ciphertexts, rec)
				}
				continue
			}
			descriptor := attrs.NewAttrName(prefix, name).Descriptor()
			rec, err := attr.AsEncryptedRecord(descriptor)
			if err != nil {
				return nil, vaulterr.Wrap(vaulterr.KindUnseal, "UnsealAll", err)
			}
			sites = append(sites, cipherSite{row: rowIdx, name: name, descriptor: descriptor})
			ciphertexts = append(ciphertexts, rec)
		}
	}

	logger := vlog.WithRecordType(prefix)

	var decoded []plaintext.Plaintext
	if len(ciphertexts) > 0 {
		logger.Debug().Int("count", len(ciphertexts)).Msg("bulk decrypting protected attributes")
		raw, err := ks.Decrypt(ctx, ciphertexts)
		if err != nil {
			return nil, vaulterr.Wrap(vaulterr.KindUnseal, "UnsealAll", err)
		}
		if len(raw) != len(ciphertexts) {
			return nil, vaulterr.Wrap(vaulterr.KindUnseal, "UnsealAll", vaulterr.ErrAssertionFailed)
		}
		decoded = make([]plaintext.Plaintext, len(raw))
		for i, b := range raw {
			pt, err := plaintext.FromBytes(b)
			if err != nil {
				return nil, vaulterr.Wrap(vaulterr.KindUnseal, "UnsealAll", err)
			}
			decoded[i] = pt
		}
	}

	out := make([]*Unsealed, len(rows))
	for i, row := range rows {
		u := NewUnsealed(prefix)
		for name, attr := range row.Attributes {
			original := unaliasStorageName(name)
			if isDeclared(original, protectedNames) {
				continue
			}
			u.AddUnprotected(original, attr)
		}
		out[i] = u
	}

	for i, site := range sites {
		u := out[site.row]
		var err error
		if site.hasSubkey {
			err = u.AddProtectedMapField(site.name, site.subkey, decoded[i])
		} else {
			err = u.AddProtected(site.name, decoded[i])
		}
		if err != nil {
			return nil, vaulterr.Wrap(vaulterr.KindUnseal, "UnsealAll", err)
		}
	}

	vmetrics.UnsealsTotal.Add(float64(len(rows)))
	return out, nil
}

// Unseal is the single-row convenience wrapper around UnsealAll.
func Unseal(ctx context.Context, ks KeyService, prefix string, protectedNames []string, row TableEntry) (*Unsealed, error) {
	out, err := UnsealAll(ctx, ks, prefix, protectedNames, []TableEntry{row})
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, vaulterr.Wrap(vaulterr.KindUnseal, "Unseal", vaulterr.ErrAssertionFailed)
	}
	return out[0], nil
}

func isDeclared(name string, names []string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
