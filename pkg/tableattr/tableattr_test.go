package tableattr

import (
	"testing"

	"github.com/cuemby/vaultindex/internal/plaintext"
)

func TestFromPlaintext(t *testing.T) {
	tests := []struct {
		name string
		pt   plaintext.Plaintext
		kind Kind
	}{
		{"string", plaintext.NewUtf8Str("hi"), KindString},
		{"int", plaintext.NewInt(5), KindNumber},
		{"bool", plaintext.NewBoolean(true), KindBool},
		{"null", plaintext.NewNull(plaintext.VariantInt), KindNull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromPlaintext(tt.pt)
			if got.Kind() != tt.kind {
				t.Fatalf("got kind %v want %v", got.Kind(), tt.kind)
			}
		})
	}

	boolAttr := FromPlaintext(plaintext.NewBoolean(true))
	if b, ok := boolAttr.AsBool(); !ok || !b {
		t.Fatalf("got %v %v", b, ok)
	}
	numAttr := FromPlaintext(plaintext.NewInt(-7))
	if n, ok := numAttr.AsNumber(); !ok || n != "-7" {
		t.Fatalf("got %q %v", n, ok)
	}
}

func TestMapInsert(t *testing.T) {
	m := NewMap()
	if err := m.TryInsertMap("k", NewString("v")); err != nil {
		t.Fatal(err)
	}
	got, ok := m.AsMap()
	if !ok || got["k"].str != "v" {
		t.Fatalf("got %#v", got)
	}

	notMap := NewString("x")
	if err := notMap.TryInsertMap("k", NewString("v")); err == nil {
		t.Fatal("expected error inserting into non-map")
	}
}

func TestEncryptedRecordRoundTripAndDescriptorCheck(t *testing.T) {
	rec := EncryptedRecord{Descriptor: "user/email", Ciphertext: []byte{1, 2, 3, 4}}
	attr := NewEncryptedRecordAttribute(rec)

	got, err := attr.AsEncryptedRecord("user/email")
	if err != nil {
		t.Fatal(err)
	}
	if got.Descriptor != rec.Descriptor || string(got.Ciphertext) != string(rec.Ciphertext) {
		t.Fatalf("got %#v", got)
	}

	if _, err := attr.AsEncryptedRecord("user/other"); err == nil {
		t.Fatal("expected descriptor mismatch error")
	}

	if _, err := NewString("not bytes").AsEncryptedRecord("x"); err == nil {
		t.Fatal("expected error for non-bytes attribute")
	}
}

func TestEncryptedRecordFromBytesMalformed(t *testing.T) {
	if _, err := EncryptedRecordFromBytes(nil); err == nil {
		t.Fatal("expected error")
	}
	if _, err := EncryptedRecordFromBytes([]byte{0, 10}); err == nil {
		t.Fatal("expected error for truncated descriptor")
	}
}
