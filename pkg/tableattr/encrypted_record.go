package tableattr

import (
	"encoding/binary"

	"github.com/cuemby/vaultindex/pkg/vaulterr"
)

// EncryptedRecord is the wire shape a protected attribute's ciphertext
// takes once stored in a TableAttribute's Bytes variant: the
// descriptor it was encrypted under, alongside the ciphertext itself.
// Checking the descriptor on read is what detects a confused-deputy
// swap of one record's ciphertext into another's row.
type EncryptedRecord struct {
	Descriptor string
	Ciphertext []byte
}

// ToBytes renders a length-prefixed descriptor followed by the raw
// ciphertext.
func (r EncryptedRecord) ToBytes() []byte {
	out := make([]byte, 2, 2+len(r.Descriptor)+len(r.Ciphertext))
	binary.BigEndian.PutUint16(out, uint16(len(r.Descriptor)))
	out = append(out, []byte(r.Descriptor)...)
	out = append(out, r.Ciphertext...)
	return out
}

// EncryptedRecordFromBytes parses the encoding ToBytes produces.
func EncryptedRecordFromBytes(b []byte) (EncryptedRecord, error) {
	if len(b) < 2 {
		return EncryptedRecord{}, vaulterr.Wrap(vaulterr.KindAttribute, "EncryptedRecordFromBytes", vaulterr.ErrInvalidCiphertext)
	}
	n := int(binary.BigEndian.Uint16(b))
	if len(b) < 2+n {
		return EncryptedRecord{}, vaulterr.Wrap(vaulterr.KindAttribute, "EncryptedRecordFromBytes", vaulterr.ErrInvalidCiphertext)
	}
	return EncryptedRecord{
		Descriptor: string(b[2 : 2+n]),
		Ciphertext: b[2+n:],
	}, nil
}

// AsEncryptedRecord parses t as an EncryptedRecord and verifies its
// descriptor matches the one the caller expects to find at this
// location. A mismatch means the stored bytes may have been moved from
// a different row — a tamper signal, not a parse error.
func (t TableAttribute) AsEncryptedRecord(descriptor string) (EncryptedRecord, error) {
	b, ok := t.AsBytes()
	if !ok {
		return EncryptedRecord{}, vaulterr.Wrap(vaulterr.KindAttribute, "TableAttribute.AsEncryptedRecord", vaulterr.ErrAssertionFailed)
	}
	rec, err := EncryptedRecordFromBytes(b)
	if err != nil {
		return EncryptedRecord{}, vaulterr.Wrap(vaulterr.KindAttribute, "TableAttribute.AsEncryptedRecord", vaulterr.ErrInvalidCiphertext)
	}
	if rec.Descriptor != descriptor {
		return EncryptedRecord{}, vaulterr.Wrap(vaulterr.KindAttribute, "TableAttribute.AsEncryptedRecord", vaulterr.ErrDescriptorMismatch)
	}
	return rec, nil
}

// NewEncryptedRecordAttribute wraps an EncryptedRecord as the
// TableAttribute.Bytes variant used to store a protected attribute.
func NewEncryptedRecordAttribute(r EncryptedRecord) TableAttribute {
	return NewBytes(r.ToBytes())
}
