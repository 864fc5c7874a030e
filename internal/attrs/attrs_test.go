package attrs

import (
	"testing"

	"github.com/cuemby/vaultindex/internal/plaintext"
)

func TestDescriptorRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		an   AttrName
		want string
	}{
		{"scalar", NewAttrName("", "foo"), "foo"},
		{"prefixed-scalar", NewAttrName("pref", "foo"), "pref/foo"},
		{"map-field", NewAttrName("", "foo").WithSubkey("x"), "foo.x"},
		{"prefixed-map-field", NewAttrName("pref", "foo").WithSubkey("x"), "pref/foo.x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.an.Descriptor(); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
			parsed := ParseDescriptor(tt.want)
			if parsed.Descriptor() != tt.want {
				t.Fatalf("round trip: got %q want %q", parsed.Descriptor(), tt.want)
			}
		})
	}
}

func TestProtectedFlattenAndDenormalize(t *testing.T) {
	p := NewProtected("user")
	if err := p.InsertScalar("email", plaintext.NewUtf8Str("a@example.com")); err != nil {
		t.Fatal(err)
	}
	if err := p.InsertMapField("address", "city", plaintext.NewUtf8Str("Sydney")); err != nil {
		t.Fatal(err)
	}
	if err := p.InsertMapField("address", "zip", plaintext.NewUtf8Str("2000")); err != nil {
		t.Fatal(err)
	}

	flat := p.Flatten()
	if len(flat) != 3 {
		t.Fatalf("got %d flattened attrs, want 3", len(flat))
	}

	// strip the prefix as decryption would, since Denormalize discards it
	stripped := make([]FlattenedAttribute, len(flat))
	for i, f := range flat {
		an := ParseDescriptor(f.Descriptor)
		an2 := NewAttrName("", an.Name)
		if an.HasSubkey() {
			an2 = an2.WithSubkey(an.Subkey)
		}
		stripped[i] = FlattenedAttribute{Descriptor: an2.Descriptor(), Plaintext: f.Plaintext}
	}

	grouped, err := Denormalize(stripped)
	if err != nil {
		t.Fatal(err)
	}
	email, ok := grouped["email"]
	if !ok || email.Kind != KindScalar {
		t.Fatalf("expected scalar email, got %#v", email)
	}
	addr, ok := grouped["address"]
	if !ok || addr.Kind != KindMap || len(addr.Map) != 2 {
		t.Fatalf("expected 2-field map address, got %#v", addr)
	}
}

func TestInsertConflict(t *testing.T) {
	p := NewProtected("")
	if err := p.InsertScalar("x", plaintext.NewInt(1)); err != nil {
		t.Fatal(err)
	}
	if err := p.InsertMapField("x", "sub", plaintext.NewInt(1)); err == nil {
		t.Fatal("expected conflict error")
	}

	p2 := NewProtected("")
	if err := p2.InsertMapField("y", "sub", plaintext.NewInt(1)); err != nil {
		t.Fatal(err)
	}
	if err := p2.InsertScalar("y", plaintext.NewInt(1)); err == nil {
		t.Fatal("expected conflict error")
	}
}

func TestDenormalizeConflict(t *testing.T) {
	items := []FlattenedAttribute{
		{Descriptor: "x", Plaintext: plaintext.NewInt(1)},
		{Descriptor: "x.sub", Plaintext: plaintext.NewInt(2)},
	}
	if _, err := Denormalize(items); err == nil {
		t.Fatal("expected conflict error")
	}
}
