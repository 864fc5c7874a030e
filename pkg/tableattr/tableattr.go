// Package tableattr implements the value model stored in every table
// row attribute: TableAttribute, a small tagged union covering the
// scalar/vector/map/list shapes the storage driver needs to round-trip
// through a generic KV store, plus EncryptedRecord, the descriptor-
// tagged wrapper a protected attribute's ciphertext is stored as.
package tableattr

import (
	"encoding/binary"
	"math"
	"strconv"
	"time"

	"github.com/cuemby/vaultindex/internal/plaintext"
	"github.com/cuemby/vaultindex/pkg/vaulterr"
)

// Kind discriminates a TableAttribute's shape.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindBytes
	KindStringVec
	KindByteVec
	KindNumberVec
	KindMap
	KindList
	KindNull
)

// TableAttribute is the tagged value a storage row attribute holds.
// Numbers are kept as their decimal text representation so the value
// model never has to pick a fixed-width numeric type for the storage
// driver.
type TableAttribute struct {
	kind Kind

	str     string
	boolean bool
	bytes   []byte
	strVec  []string
	byteVec [][]byte
	numVec  []string
	m       map[string]TableAttribute
	list    []TableAttribute
}

func NewString(v string) TableAttribute   { return TableAttribute{kind: KindString, str: v} }
func NewNumber(v string) TableAttribute   { return TableAttribute{kind: KindNumber, str: v} }
func NewBool(v bool) TableAttribute       { return TableAttribute{kind: KindBool, boolean: v} }
func NewBytes(v []byte) TableAttribute    { return TableAttribute{kind: KindBytes, bytes: v} }
func NewStringVec(v []string) TableAttribute {
	return TableAttribute{kind: KindStringVec, strVec: v}
}
func NewByteVec(v [][]byte) TableAttribute {
	return TableAttribute{kind: KindByteVec, byteVec: v}
}
func NewNumberVec(v []string) TableAttribute {
	return TableAttribute{kind: KindNumberVec, numVec: v}
}
// NewList builds a List attribute, promoting it to the corresponding
// typed vector when every element shares the same scalar variant among
// String, Number, and Bytes — forming a set on the storage side. A
// mixed or empty sequence stays a generic List.
func NewList(v []TableAttribute) TableAttribute {
	if promoted, ok := promoteHomogeneousList(v); ok {
		return promoted
	}
	return TableAttribute{kind: KindList, list: v}
}

func promoteHomogeneousList(v []TableAttribute) (TableAttribute, bool) {
	if len(v) == 0 {
		return TableAttribute{}, false
	}
	switch v[0].kind {
	case KindString:
		out := make([]string, len(v))
		for i, e := range v {
			s, ok := e.AsString()
			if !ok {
				return TableAttribute{}, false
			}
			out[i] = s
		}
		return NewStringVec(out), true
	case KindNumber:
		out := make([]string, len(v))
		for i, e := range v {
			n, ok := e.AsNumber()
			if !ok {
				return TableAttribute{}, false
			}
			out[i] = n
		}
		return NewNumberVec(out), true
	case KindBytes:
		out := make([][]byte, len(v))
		for i, e := range v {
			b, ok := e.AsBytes()
			if !ok {
				return TableAttribute{}, false
			}
			out[i] = b
		}
		return NewByteVec(out), true
	default:
		return TableAttribute{}, false
	}
}
func Null() TableAttribute { return TableAttribute{kind: KindNull} }

// NewMap starts an empty map attribute.
func NewMap() TableAttribute {
	return TableAttribute{kind: KindMap, m: map[string]TableAttribute{}}
}

func (t TableAttribute) Kind() Kind { return t.kind }

func (t TableAttribute) AsString() (string, bool) {
	if t.kind != KindString {
		return "", false
	}
	return t.str, true
}

func (t TableAttribute) AsNumber() (string, bool) {
	if t.kind != KindNumber {
		return "", false
	}
	return t.str, true
}

func (t TableAttribute) AsBool() (bool, bool) {
	if t.kind != KindBool {
		return false, false
	}
	return t.boolean, true
}

func (t TableAttribute) AsBytes() ([]byte, bool) {
	if t.kind != KindBytes {
		return nil, false
	}
	return t.bytes, true
}

func (t TableAttribute) AsMap() (map[string]TableAttribute, bool) {
	if t.kind != KindMap {
		return nil, false
	}
	return t.m, true
}

func (t TableAttribute) AsStringVec() ([]string, bool) {
	if t.kind != KindStringVec {
		return nil, false
	}
	return t.strVec, true
}

func (t TableAttribute) AsNumberVec() ([]string, bool) {
	if t.kind != KindNumberVec {
		return nil, false
	}
	return t.numVec, true
}

func (t TableAttribute) AsByteVec() ([][]byte, bool) {
	if t.kind != KindByteVec {
		return nil, false
	}
	return t.byteVec, true
}

func (t TableAttribute) AsList() ([]TableAttribute, bool) {
	if t.kind != KindList {
		return nil, false
	}
	return t.list, true
}

// TryInsertMap inserts key/value if t is a map attribute.
func (t *TableAttribute) TryInsertMap(key string, value TableAttribute) error {
	if t.kind != KindMap {
		return vaulterr.Wrap(vaulterr.KindAttribute, "TableAttribute.TryInsertMap", vaulterr.ErrAssertionFailed)
	}
	if t.m == nil {
		t.m = map[string]TableAttribute{}
	}
	t.m[key] = value
	return nil
}

// FromPlaintext renders a decrypted or unprotected Plaintext as the
// TableAttribute shape closest to its type, for storage in a row that
// isn't itself encrypted.
func FromPlaintext(pt plaintext.Plaintext) TableAttribute {
	if pt.IsNull() {
		return Null()
	}
	switch pt.Variant() {
	case plaintext.VariantUtf8Str:
		s, _ := pt.Utf8Str()
		return NewString(s)
	case plaintext.VariantBoolean:
		return decodeBoolean(pt)
	case plaintext.VariantTimestamp, plaintext.VariantNaiveDate:
		return NewString(decodeTimeString(pt))
	default:
		return NewNumber(decodeNumberString(pt))
	}
}

func decodeBoolean(pt plaintext.Plaintext) TableAttribute {
	b := pt.ToBytes()
	return NewBool(len(b) == 3 && b[2] != 0)
}

func decodeTimeString(pt plaintext.Plaintext) string {
	b := pt.ToBytes()
	if len(b) < 2 {
		return ""
	}
	payload := b[2:]
	switch pt.Variant() {
	case plaintext.VariantTimestamp:
		if len(payload) != 8 {
			return ""
		}
		ms := int64(binary.BigEndian.Uint64(payload))
		return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
	case plaintext.VariantNaiveDate:
		if len(payload) != 4 {
			return ""
		}
		days := int32(binary.BigEndian.Uint32(payload))
		return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(days)).Format("2006-01-02")
	}
	return ""
}

func decodeNumberString(pt plaintext.Plaintext) string {
	b := pt.ToBytes()
	if len(b) < 2 {
		return "0"
	}
	payload := b[2:]
	switch pt.Variant() {
	case plaintext.VariantBigInt:
		if len(payload) == 8 {
			return strconv.FormatInt(int64(binary.BigEndian.Uint64(payload)), 10)
		}
	case plaintext.VariantBigUInt:
		if len(payload) == 8 {
			return strconv.FormatUint(binary.BigEndian.Uint64(payload), 10)
		}
	case plaintext.VariantInt:
		if len(payload) == 4 {
			return strconv.FormatInt(int64(int32(binary.BigEndian.Uint32(payload))), 10)
		}
	case plaintext.VariantSmallInt:
		if len(payload) == 2 {
			return strconv.FormatInt(int64(int16(binary.BigEndian.Uint16(payload))), 10)
		}
	case plaintext.VariantFloat:
		if len(payload) == 8 {
			bits := binary.BigEndian.Uint64(payload)
			return strconv.FormatFloat(math.Float64frombits(bits), 'g', -1, 64)
		}
	case plaintext.VariantDecimal:
		return string(payload)
	}
	return "0"
}
