package vault

import (
	"context"

	"github.com/cuemby/vaultindex/pkg/tableattr"
)

// BytesWithDescriptor is one item of a bulk encrypt request: the
// plaintext's canonical bytes, and the descriptor that becomes its AAD
// and its stored tamper-detection tag.
type BytesWithDescriptor struct {
	Bytes      []byte
	Descriptor string
}

// KeyService is the external collaborator that performs every
// cryptographic operation the core itself never does: deterministic
// HMAC for key derivation and index terms, and bulk authenticated
// encryption/decryption of protected attributes. Implementations are
// expected to hold or reach the actual key material; the core only
// ever sees ciphertext and HMAC digests.
type KeyService interface {
	// HMAC computes a deterministic digest of data under the named key
	// role (e.g. "pk", "sk"), optionally salted (e.g. with the
	// partition key, when deriving a sort key).
	HMAC(ctx context.Context, keyRole string, data []byte, salt []byte) ([]byte, error)

	// Encrypt bulk-encrypts items, returning one EncryptedRecord per
	// input item in the same order.
	Encrypt(ctx context.Context, items []BytesWithDescriptor) ([]tableattr.EncryptedRecord, error)

	// Decrypt bulk-decrypts items, returning one plaintext byte slice
	// (in plaintext.Plaintext's canonical encoding) per input item in
	// the same order. A descriptor mismatch embedded in a record is
	// the caller's responsibility to have already checked via
	// TableAttribute.AsEncryptedRecord before calling Decrypt.
	Decrypt(ctx context.Context, items []tableattr.EncryptedRecord) ([][]byte, error)
}
