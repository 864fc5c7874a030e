// Package plaintext implements the canonical byte encoding used for
// every value that may be indexed or sealed. A Plaintext carries a type
// tag even when its value is null, so a stored null column still tells
// the reader what type it would have held.
package plaintext

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cuemby/vaultindex/pkg/vaulterr"
)

// Variant identifies the concrete value a Plaintext holds.
type Variant byte

const (
	VariantBigInt Variant = iota + 1
	VariantBigUInt
	VariantBoolean
	VariantDecimal
	VariantFloat
	VariantInt
	VariantNaiveDate
	VariantSmallInt
	VariantTimestamp
	VariantUtf8Str
)

const (
	version       byte = 1
	nullFlagsMask byte = 0b1000_0000
)

func (v Variant) String() string {
	switch v {
	case VariantBigInt:
		return "BigInt"
	case VariantBigUInt:
		return "BigUInt"
	case VariantBoolean:
		return "Boolean"
	case VariantDecimal:
		return "Decimal"
	case VariantFloat:
		return "Float"
	case VariantInt:
		return "Int"
	case VariantNaiveDate:
		return "NaiveDate"
	case VariantSmallInt:
		return "SmallInt"
	case VariantTimestamp:
		return "Timestamp"
	case VariantUtf8Str:
		return "Utf8Str"
	default:
		return fmt.Sprintf("Variant(%d)", byte(v))
	}
}

// Plaintext is a tagged, typed value. The zero value is not valid; use
// one of the New* constructors.
type Plaintext struct {
	variant Variant
	null    bool

	bigInt    int64
	bigUInt   uint64
	boolean   bool
	decimal   string
	float     float64
	intVal    int32
	naiveDate time.Time
	smallInt  int16
	timestamp time.Time
	utf8Str   string
}

func NewBigInt(v int64) Plaintext    { return Plaintext{variant: VariantBigInt, bigInt: v} }
func NewBigUInt(v uint64) Plaintext  { return Plaintext{variant: VariantBigUInt, bigUInt: v} }
func NewBoolean(v bool) Plaintext    { return Plaintext{variant: VariantBoolean, boolean: v} }
func NewDecimal(v string) Plaintext  { return Plaintext{variant: VariantDecimal, decimal: v} }
func NewFloat(v float64) Plaintext   { return Plaintext{variant: VariantFloat, float: v} }
func NewInt(v int32) Plaintext       { return Plaintext{variant: VariantInt, intVal: v} }
func NewSmallInt(v int16) Plaintext  { return Plaintext{variant: VariantSmallInt, smallInt: v} }
func NewUtf8Str(v string) Plaintext  { return Plaintext{variant: VariantUtf8Str, utf8Str: v} }

func NewNaiveDate(v time.Time) Plaintext {
	return Plaintext{variant: VariantNaiveDate, naiveDate: v}
}

func NewTimestamp(v time.Time) Plaintext {
	return Plaintext{variant: VariantTimestamp, timestamp: v}
}

// NewNull builds a null Plaintext of the given variant. The variant is
// retained so the caller and any downstream index still know what type
// the column would have held.
func NewNull(v Variant) Plaintext {
	return Plaintext{variant: v, null: true}
}

func (p Plaintext) Variant() Variant { return p.variant }
func (p Plaintext) IsNull() bool     { return p.null }

// Utf8Str returns the string value and whether p is a non-null Utf8Str.
func (p Plaintext) Utf8Str() (string, bool) {
	if p.variant != VariantUtf8Str || p.null {
		return "", false
	}
	return p.utf8Str, true
}

func (p Plaintext) flags() byte {
	b := byte(p.variant)
	if p.null {
		b |= nullFlagsMask
	}
	return b
}

// ToBytes renders the canonical encoding: a version byte, a flags byte
// (variant code with the high bit set when null), followed by the
// variant's big-endian payload. A null value has no payload.
func (p Plaintext) ToBytes() []byte {
	out := []byte{version, p.flags()}
	if p.null {
		return out
	}
	switch p.variant {
	case VariantBigInt:
		out = binary.BigEndian.AppendUint64(out, uint64(p.bigInt))
	case VariantBigUInt:
		out = binary.BigEndian.AppendUint64(out, p.bigUInt)
	case VariantBoolean:
		if p.boolean {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	case VariantDecimal:
		out = append(out, []byte(p.decimal)...)
	case VariantFloat:
		out = binary.BigEndian.AppendUint64(out, math.Float64bits(p.float))
	case VariantInt:
		out = binary.BigEndian.AppendUint32(out, uint32(p.intVal))
	case VariantNaiveDate:
		out = binary.BigEndian.AppendUint32(out, uint32(daysSinceEpoch(p.naiveDate)))
	case VariantSmallInt:
		out = binary.BigEndian.AppendUint16(out, uint16(p.smallInt))
	case VariantTimestamp:
		out = binary.BigEndian.AppendUint64(out, uint64(p.timestamp.UnixMilli()))
	case VariantUtf8Str:
		out = append(out, []byte(p.utf8Str)...)
	}
	return out
}

// FromBytes parses the canonical encoding produced by ToBytes.
func FromBytes(b []byte) (Plaintext, error) {
	if len(b) < 2 {
		return Plaintext{}, vaulterr.Wrap(vaulterr.KindPlaintext, "plaintext.FromBytes", vaulterr.ErrMalformedRecord)
	}
	if b[0] != version {
		return Plaintext{}, vaulterr.Wrap(vaulterr.KindPlaintext, "plaintext.FromBytes", vaulterr.ErrMalformedRecord)
	}
	flags := b[1]
	isNull := flags&nullFlagsMask != 0
	variant := Variant(flags &^ nullFlagsMask)
	payload := b[2:]

	if isNull {
		if !validVariant(variant) {
			return Plaintext{}, vaulterr.Wrap(vaulterr.KindPlaintext, "plaintext.FromBytes", vaulterr.ErrUnknownVariant)
		}
		return Plaintext{variant: variant, null: true}, nil
	}

	switch variant {
	case VariantBigInt:
		if len(payload) != 8 {
			return Plaintext{}, shortPayload()
		}
		return NewBigInt(int64(binary.BigEndian.Uint64(payload))), nil
	case VariantBigUInt:
		if len(payload) != 8 {
			return Plaintext{}, shortPayload()
		}
		return NewBigUInt(binary.BigEndian.Uint64(payload)), nil
	case VariantBoolean:
		if len(payload) != 1 {
			return Plaintext{}, shortPayload()
		}
		return NewBoolean(payload[0] != 0), nil
	case VariantDecimal:
		return NewDecimal(lossyUTF8(payload)), nil
	case VariantFloat:
		if len(payload) != 8 {
			return Plaintext{}, shortPayload()
		}
		return NewFloat(math.Float64frombits(binary.BigEndian.Uint64(payload))), nil
	case VariantInt:
		if len(payload) != 4 {
			return Plaintext{}, shortPayload()
		}
		return NewInt(int32(binary.BigEndian.Uint32(payload))), nil
	case VariantNaiveDate:
		if len(payload) != 4 {
			return Plaintext{}, shortPayload()
		}
		return NewNaiveDate(epochPlusDays(int32(binary.BigEndian.Uint32(payload)))), nil
	case VariantSmallInt:
		if len(payload) != 2 {
			return Plaintext{}, shortPayload()
		}
		return NewSmallInt(int16(binary.BigEndian.Uint16(payload))), nil
	case VariantTimestamp:
		if len(payload) != 8 {
			return Plaintext{}, shortPayload()
		}
		return NewTimestamp(time.UnixMilli(int64(binary.BigEndian.Uint64(payload))).UTC()), nil
	case VariantUtf8Str:
		return NewUtf8Str(lossyUTF8(payload)), nil
	default:
		return Plaintext{}, vaulterr.Wrap(vaulterr.KindPlaintext, "plaintext.FromBytes", vaulterr.ErrUnknownVariant)
	}
}

func validVariant(v Variant) bool {
	return v >= VariantBigInt && v <= VariantUtf8Str
}

func shortPayload() error {
	return vaulterr.Wrap(vaulterr.KindPlaintext, "plaintext.FromBytes", vaulterr.ErrMalformedRecord)
}

// lossyUTF8 tolerates invalid UTF-8: a payload that isn't valid UTF-8
// never errors, it decodes with each run of invalid bytes replaced by a
// single U+FFFD rather than failing or passing raw bytes through.
func lossyUTF8(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// Zero overwrites p's payload fields once they're no longer needed —
// the explicit-call-site stand-in for the destructor Go doesn't have.
// Go strings are immutable, so this can't scrub the backing array a
// string payload's bytes live in without reaching for unsafe; what it
// does guarantee is that p itself stops holding a readable copy, so a
// Plaintext that's been Zeroed can't be ToBytes'd or inspected again
// through this value. Callers that need the stronger guarantee should
// keep sensitive input as a []byte and zero that slice directly before
// ever calling a New* constructor with it.
func (p *Plaintext) Zero() {
	p.bigInt = 0
	p.bigUInt = 0
	p.boolean = false
	p.decimal = ""
	p.float = 0
	p.intVal = 0
	p.naiveDate = time.Time{}
	p.smallInt = 0
	p.timestamp = time.Time{}
	p.utf8Str = ""
	p.variant = 0
	p.null = false
}

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

func daysSinceEpoch(t time.Time) int64 {
	return int64(t.UTC().Sub(epoch).Hours() / 24)
}

func epochPlusDays(days int32) time.Time {
	return epoch.AddDate(0, 0, int(days))
}
