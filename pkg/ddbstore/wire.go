package ddbstore

import (
	"encoding/base64"

	"github.com/cuemby/vaultindex/pkg/tableattr"
	"github.com/cuemby/vaultindex/pkg/vault"
)

// wireEntry is the JSON-marshalable shape of a vault.TableEntry.
// TableAttribute's fields are unexported (by design — it's a tagged
// union, not a struct literal type), so the storage layer round-trips
// it through wireAttr instead of marshaling it directly.
type wireEntry struct {
	PK         string              `json:"pk"`
	SK         string              `json:"sk"`
	Term       string              `json:"term,omitempty"` // base64
	Attributes map[string]wireAttr `json:"attributes"`
}

// wireAttr is the JSON-marshalable shape of a tableattr.TableAttribute.
type wireAttr struct {
	Kind    int                 `json:"kind"`
	Str     string              `json:"str,omitempty"`
	Bool    bool                `json:"bool,omitempty"`
	Bytes   string              `json:"bytes,omitempty"` // base64
	StrVec  []string            `json:"str_vec,omitempty"`
	ByteVec []string            `json:"byte_vec,omitempty"` // base64 each
	NumVec  []string            `json:"num_vec,omitempty"`
	Map     map[string]wireAttr `json:"map,omitempty"`
	List    []wireAttr          `json:"list,omitempty"`
}

func toWire(e vault.TableEntry) wireEntry {
	w := wireEntry{PK: e.PK, SK: e.SK, Attributes: make(map[string]wireAttr, len(e.Attributes))}
	if len(e.Term) > 0 {
		w.Term = base64.StdEncoding.EncodeToString(e.Term)
	}
	for k, v := range e.Attributes {
		w.Attributes[k] = attrToWire(v)
	}
	return w
}

func fromWire(w wireEntry) vault.TableEntry {
	e := vault.TableEntry{PK: w.PK, SK: w.SK, Attributes: make(map[string]tableattr.TableAttribute, len(w.Attributes))}
	if w.Term != "" {
		if b, err := base64.StdEncoding.DecodeString(w.Term); err == nil {
			e.Term = b
		}
	}
	for k, v := range w.Attributes {
		e.Attributes[k] = attrFromWire(v)
	}
	return e
}

func attrToWire(a tableattr.TableAttribute) wireAttr {
	w := wireAttr{Kind: int(a.Kind())}
	switch a.Kind() {
	case tableattr.KindString:
		w.Str, _ = a.AsString()
	case tableattr.KindNumber:
		w.Str, _ = a.AsNumber()
	case tableattr.KindBool:
		w.Bool, _ = a.AsBool()
	case tableattr.KindBytes:
		b, _ := a.AsBytes()
		w.Bytes = base64.StdEncoding.EncodeToString(b)
	case tableattr.KindMap:
		m, _ := a.AsMap()
		w.Map = make(map[string]wireAttr, len(m))
		for k, v := range m {
			w.Map[k] = attrToWire(v)
		}
	case tableattr.KindStringVec:
		w.StrVec, _ = a.AsStringVec()
	case tableattr.KindNumberVec:
		w.NumVec, _ = a.AsNumberVec()
	case tableattr.KindByteVec:
		vec, _ := a.AsByteVec()
		w.ByteVec = make([]string, len(vec))
		for i, b := range vec {
			w.ByteVec[i] = base64.StdEncoding.EncodeToString(b)
		}
	case tableattr.KindList:
		list, _ := a.AsList()
		w.List = make([]wireAttr, len(list))
		for i, v := range list {
			w.List[i] = attrToWire(v)
		}
	}
	return w
}

func attrFromWire(w wireAttr) tableattr.TableAttribute {
	switch tableattr.Kind(w.Kind) {
	case tableattr.KindString:
		return tableattr.NewString(w.Str)
	case tableattr.KindNumber:
		return tableattr.NewNumber(w.Str)
	case tableattr.KindBool:
		return tableattr.NewBool(w.Bool)
	case tableattr.KindBytes:
		b, _ := base64.StdEncoding.DecodeString(w.Bytes)
		return tableattr.NewBytes(b)
	case tableattr.KindMap:
		m := tableattr.NewMap()
		for k, v := range w.Map {
			_ = m.TryInsertMap(k, attrFromWire(v))
		}
		return m
	case tableattr.KindStringVec:
		return tableattr.NewStringVec(w.StrVec)
	case tableattr.KindNumberVec:
		return tableattr.NewNumberVec(w.NumVec)
	case tableattr.KindByteVec:
		out := make([][]byte, len(w.ByteVec))
		for i, s := range w.ByteVec {
			out[i], _ = base64.StdEncoding.DecodeString(s)
		}
		return tableattr.NewByteVec(out)
	case tableattr.KindList:
		out := make([]tableattr.TableAttribute, len(w.List))
		for i, v := range w.List {
			out[i] = attrFromWire(v)
		}
		return tableattr.NewList(out)
	default:
		return tableattr.Null()
	}
}
