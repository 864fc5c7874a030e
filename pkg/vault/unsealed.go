package vault

import (
	"github.com/cuemby/vaultindex/internal/attrs"
	"github.com/cuemby/vaultindex/internal/plaintext"
	"github.com/cuemby/vaultindex/pkg/tableattr"
)

// Unsealed is the application-visible form of a record: its protected
// attributes (decrypted, or not yet encrypted) alongside its plaintext
// attributes, before it is sealed into table rows or after it has been
// unsealed from them.
type Unsealed struct {
	prefix      string
	protected   *attrs.Protected
	unprotected map[string]tableattr.TableAttribute
}

// NewUnsealed starts an empty Unsealed. prefix tags every protected
// attribute's descriptor — it is typically the record's type name, so
// a descriptor ties a ciphertext to both its field and its table.
func NewUnsealed(prefix string) *Unsealed {
	return &Unsealed{
		prefix:      prefix,
		protected:   attrs.NewProtected(prefix),
		unprotected: map[string]tableattr.TableAttribute{},
	}
}

// AddProtected declares a scalar protected attribute.
func (u *Unsealed) AddProtected(name string, pt plaintext.Plaintext) error {
	return u.protected.InsertScalar(name, pt)
}

// AddProtectedMapField declares one field of a protected map attribute.
func (u *Unsealed) AddProtectedMapField(name, subkey string, pt plaintext.Plaintext) error {
	return u.protected.InsertMapField(name, subkey, pt)
}

// AddUnprotected declares a plaintext (unencrypted) attribute, stored
// directly in the base row.
func (u *Unsealed) AddUnprotected(name string, attr tableattr.TableAttribute) {
	u.unprotected[name] = attr
}

// Unprotected returns the plaintext attribute set.
func (u *Unsealed) Unprotected() map[string]tableattr.TableAttribute {
	return u.unprotected
}

// GetProtected returns a previously-declared (or decrypted) scalar
// protected attribute.
func (u *Unsealed) GetProtected(name string) (plaintext.Plaintext, bool) {
	return u.protected.Scalar(name)
}

// GetProtectedMap returns a previously-declared (or decrypted)
// protected map attribute.
func (u *Unsealed) GetProtectedMap(name string) (map[string]plaintext.Plaintext, bool) {
	return u.protected.Map(name)
}

// Flatten returns the full list of (descriptor, plaintext) pairs ready
// for bulk encryption.
func (u *Unsealed) Flatten() []attrs.FlattenedAttribute {
	return u.protected.Flatten()
}
