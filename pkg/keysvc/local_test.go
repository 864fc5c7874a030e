package keysvc

import (
	"bytes"
	"context"
	"testing"

	"github.com/cuemby/vaultindex/pkg/tableattr"
	"github.com/cuemby/vaultindex/pkg/vault"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	ks, err := NewLocalFromPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("NewLocalFromPassword: %v", err)
	}
	return ks
}

func TestHMACDeterministic(t *testing.T) {
	ks := newTestLocal(t)
	ctx := context.Background()

	a, err := ks.HMAC(ctx, "pk", []byte("dan@example.co"), nil)
	if err != nil {
		t.Fatalf("HMAC: %v", err)
	}
	b, err := ks.HMAC(ctx, "pk", []byte("dan@example.co"), nil)
	if err != nil {
		t.Fatalf("HMAC: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("expected deterministic HMAC output")
	}

	c, err := ks.HMAC(ctx, "sk", []byte("dan@example.co"), nil)
	if err != nil {
		t.Fatalf("HMAC: %v", err)
	}
	if bytes.Equal(a, c) {
		t.Fatal("expected different key roles to produce different digests")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	ks := newTestLocal(t)
	ctx := context.Background()

	items := []vault.BytesWithDescriptor{
		{Bytes: []byte("hello"), Descriptor: "User/name"},
		{Bytes: []byte("world"), Descriptor: "User/email"},
	}
	encrypted, err := ks.Encrypt(ctx, items)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(encrypted) != 2 {
		t.Fatalf("got %d records", len(encrypted))
	}

	decrypted, err := ks.Decrypt(ctx, encrypted)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(decrypted[0]) != "hello" || string(decrypted[1]) != "world" {
		t.Fatalf("got %q, %q", decrypted[0], decrypted[1])
	}
}

func TestDecryptRejectsDescriptorMismatch(t *testing.T) {
	ks := newTestLocal(t)
	ctx := context.Background()

	encrypted, err := ks.Encrypt(ctx, []vault.BytesWithDescriptor{{Bytes: []byte("hello"), Descriptor: "User/name"}})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	tampered := tableattr.EncryptedRecord{Descriptor: "User/other", Ciphertext: encrypted[0].Ciphertext}
	if _, err := ks.Decrypt(ctx, []tableattr.EncryptedRecord{tampered}); err == nil {
		t.Fatal("expected descriptor mismatch to fail decryption")
	}
}

func TestEncryptDecryptEmptyIsNoop(t *testing.T) {
	ks := newTestLocal(t)
	ctx := context.Background()

	encrypted, err := ks.Encrypt(ctx, nil)
	if err != nil || encrypted != nil {
		t.Fatalf("got %v, %v", encrypted, err)
	}
	decrypted, err := ks.Decrypt(ctx, nil)
	if err != nil || decrypted != nil {
		t.Fatalf("got %v, %v", decrypted, err)
	}
}
