package plaintext

import (
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		p    Plaintext
	}{
		{"bigint", NewBigInt(-9001)},
		{"biguint", NewBigUInt(9001)},
		{"bool-true", NewBoolean(true)},
		{"bool-false", NewBoolean(false)},
		{"decimal", NewDecimal("12.345")},
		{"float", NewFloat(3.14159)},
		{"int", NewInt(-42)},
		{"smallint", NewSmallInt(7)},
		{"timestamp", NewTimestamp(ts)},
		{"utf8", NewUtf8Str("hello world")},
		{"naivedate", NewNaiveDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))},
		{"null-utf8", NewNull(VariantUtf8Str)},
		{"null-int", NewNull(VariantInt)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.p.ToBytes()
			got, err := FromBytes(b)
			if err != nil {
				t.Fatalf("FromBytes: %v", err)
			}
			if got.Variant() != tt.p.Variant() {
				t.Fatalf("variant mismatch: got %v want %v", got.Variant(), tt.p.Variant())
			}
			if got.IsNull() != tt.p.IsNull() {
				t.Fatalf("null mismatch: got %v want %v", got.IsNull(), tt.p.IsNull())
			}
			if !tt.p.IsNull() {
				got2 := got.ToBytes()
				want2 := tt.p.ToBytes()
				if string(got2) != string(want2) {
					t.Fatalf("byte mismatch: got %x want %x", got2, want2)
				}
			}
		})
	}
}

func TestFromBytesMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"empty", nil},
		{"one-byte", []byte{1}},
		{"bad-version", []byte{9, byte(VariantInt)}},
		{"unknown-variant", []byte{version, 200}},
		{"short-int-payload", []byte{version, byte(VariantInt), 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromBytes(tt.in); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestUtf8Str(t *testing.T) {
	p := NewUtf8Str("abc")
	s, ok := p.Utf8Str()
	if !ok || s != "abc" {
		t.Fatalf("got %q %v", s, ok)
	}
	if _, ok := NewInt(1).Utf8Str(); ok {
		t.Fatal("expected false for non-utf8 variant")
	}
	if _, ok := NewNull(VariantUtf8Str).Utf8Str(); ok {
		t.Fatal("expected false for null utf8")
	}
}
