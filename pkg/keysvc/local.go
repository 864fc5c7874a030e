// Package keysvc provides a local, in-process KeyService implementation
// for the reference CLI and integration tests: AES-256-GCM for bulk
// encrypt/decrypt (descriptor bound in as AAD) and HMAC-SHA256 for
// index-root-key derivation, adapted from the teacher's
// pkg/security.SecretsManager. It holds real key material in memory and
// is not a substitute for a production KMS-backed key service.
package keysvc

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cuemby/vaultindex/internal/vlog"
	"github.com/cuemby/vaultindex/internal/vmetrics"
	"github.com/cuemby/vaultindex/pkg/tableattr"
	"github.com/cuemby/vaultindex/pkg/vault"
	"github.com/cuemby/vaultindex/pkg/vaulterr"
)

// indexRootKeyDescriptor names the key used when a settings document
// itself needs its root key encrypted at rest; it isn't consumed by
// this implementation directly but is kept as the documented constant
// an upstream config layer would reach for.
const indexRootKeyDescriptor = "dataset-config-index-root-key"

// Local is an in-process KeyService: one AES-256-GCM data key for
// encrypt/decrypt, one HMAC key for deterministic index/primary-key
// derivation.
type Local struct {
	dataKey  []byte // 32 bytes, AES-256-GCM
	indexKey []byte // 32 bytes, HMAC-SHA256
}

// NewLocal builds a Local key service from two 32-byte keys.
func NewLocal(dataKey, indexKey []byte) (*Local, error) {
	if len(dataKey) != 32 {
		return nil, vaulterr.Wrap(vaulterr.KindKeyService, "keysvc.NewLocal", fmt.Errorf("%w: data key must be 32 bytes, got %d", vaulterr.ErrAssertionFailed, len(dataKey)))
	}
	if len(indexKey) != 32 {
		return nil, vaulterr.Wrap(vaulterr.KindKeyService, "keysvc.NewLocal", fmt.Errorf("%w: index key must be 32 bytes, got %d", vaulterr.ErrAssertionFailed, len(indexKey)))
	}
	return &Local{dataKey: dataKey, indexKey: indexKey}, nil
}

// NewLocalFromPassword derives both keys from a single password, for
// quick-start use in tests and the CLI demo — never for production key
// management.
func NewLocalFromPassword(password string) (*Local, error) {
	if password == "" {
		return nil, vaulterr.Wrap(vaulterr.KindKeyService, "keysvc.NewLocalFromPassword", fmt.Errorf("%w: password cannot be empty", vaulterr.ErrAssertionFailed))
	}
	dataKey := sha256.Sum256([]byte("data:" + password))
	indexKey := sha256.Sum256([]byte("index:" + password))
	return NewLocal(dataKey[:], indexKey[:])
}

var _ vault.KeyService = (*Local)(nil)

// HMAC computes HMAC-SHA256(indexKey, keyRole || data || salt).
func (l *Local) HMAC(ctx context.Context, keyRole string, data []byte, salt []byte) ([]byte, error) {
	timer := prometheus.NewTimer(vmetrics.KeyServiceLatency.WithLabelValues("hmac"))
	defer timer.ObserveDuration()

	mac := hmac.New(sha256.New, l.indexKey)
	mac.Write([]byte(keyRole))
	mac.Write(data)
	mac.Write(salt)
	return mac.Sum(nil), nil
}

// Encrypt bulk-encrypts items with AES-256-GCM, binding each item's
// descriptor in as additional authenticated data.
func (l *Local) Encrypt(ctx context.Context, items []vault.BytesWithDescriptor) ([]tableattr.EncryptedRecord, error) {
	timer := prometheus.NewTimer(vmetrics.KeyServiceLatency.WithLabelValues("encrypt"))
	defer timer.ObserveDuration()

	if len(items) == 0 {
		return nil, nil
	}

	corrID := uuid.NewString()
	logger := vlog.WithCorrelationID(corrID)
	logger.Debug().Int("count", len(items)).Msg("bulk encrypt")

	gcm, err := l.gcm()
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindKeyService, "Local.Encrypt", err)
	}

	out := make([]tableattr.EncryptedRecord, len(items))
	for i, item := range items {
		nonce := make([]byte, gcm.NonceSize())
		if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
			return nil, vaulterr.Wrap(vaulterr.KindKeyService, "Local.Encrypt", fmt.Errorf("generating nonce: %w", err))
		}
		sealed := gcm.Seal(nonce, nonce, item.Bytes, []byte(item.Descriptor))
		out[i] = tableattr.EncryptedRecord{Descriptor: item.Descriptor, Ciphertext: sealed}
	}
	return out, nil
}

// Decrypt bulk-decrypts items, verifying each one's descriptor as AAD.
func (l *Local) Decrypt(ctx context.Context, items []tableattr.EncryptedRecord) ([][]byte, error) {
	timer := prometheus.NewTimer(vmetrics.KeyServiceLatency.WithLabelValues("decrypt"))
	defer timer.ObserveDuration()

	if len(items) == 0 {
		return nil, nil
	}

	corrID := uuid.NewString()
	logger := vlog.WithCorrelationID(corrID)
	logger.Debug().Int("count", len(items)).Msg("bulk decrypt")

	gcm, err := l.gcm()
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindKeyService, "Local.Decrypt", err)
	}

	nonceSize := gcm.NonceSize()
	out := make([][]byte, len(items))
	for i, item := range items {
		if len(item.Ciphertext) < nonceSize {
			return nil, vaulterr.Wrap(vaulterr.KindKeyService, "Local.Decrypt", vaulterr.ErrInvalidCiphertext)
		}
		nonce, ciphertext := item.Ciphertext[:nonceSize], item.Ciphertext[nonceSize:]
		plain, err := gcm.Open(nil, nonce, ciphertext, []byte(item.Descriptor))
		if err != nil {
			return nil, vaulterr.Wrap(vaulterr.KindKeyService, "Local.Decrypt", fmt.Errorf("%w: %v", vaulterr.ErrDescriptorMismatch, err))
		}
		out[i] = plain
	}
	return out, nil
}

func (l *Local) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(l.dataKey)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
