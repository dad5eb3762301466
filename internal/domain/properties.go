package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// PropertyKind enumerates the closed set of value shapes a property may take.
// The set is deliberately closed so that serialization code can be
// exhaustive instead of reflecting over arbitrary dynamic values.
type PropertyKind int

const (
	KindNull PropertyKind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// String returns a human-readable name for the kind.
func (k PropertyKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// PropertyValue is a tagged variant holding one JSON-compatible value.
// The zero value is the null value.
type PropertyValue struct {
	kind PropertyKind
	str  string
	num  float64
	b    bool
	list []PropertyValue
	bag  PropertyBag
}

// Null returns the null property value.
func Null() PropertyValue {
	return PropertyValue{kind: KindNull}
}

// String wraps a string as a property value.
func String(s string) PropertyValue {
	return PropertyValue{kind: KindString, str: s}
}

// Number wraps a float64 as a property value.
func Number(f float64) PropertyValue {
	return PropertyValue{kind: KindNumber, num: f}
}

// Bool wraps a bool as a property value.
func Bool(b bool) PropertyValue {
	return PropertyValue{kind: KindBool, b: b}
}

// List wraps an ordered sequence of property values.
func List(values ...PropertyValue) PropertyValue {
	list := make([]PropertyValue, len(values))
	copy(list, values)
	return PropertyValue{kind: KindList, list: list}
}

// Map wraps a nested property bag.
func Map(bag PropertyBag) PropertyValue {
	return PropertyValue{kind: KindMap, bag: bag.Clone()}
}

// Kind returns the variant tag of the value.
func (v PropertyValue) Kind() PropertyKind {
	return v.kind
}

// AsString returns the string payload; ok is false for other kinds.
func (v PropertyValue) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the numeric payload; ok is false for other kinds.
func (v PropertyValue) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsBool returns the boolean payload; ok is false for other kinds.
func (v PropertyValue) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsList returns a copy of the list payload; ok is false for other kinds.
func (v PropertyValue) AsList() ([]PropertyValue, bool) {
	if v.kind != KindList {
		return nil, false
	}
	list := make([]PropertyValue, len(v.list))
	copy(list, v.list)
	return list, true
}

// AsMap returns a copy of the nested bag; ok is false for other kinds.
func (v PropertyValue) AsMap() (PropertyBag, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.bag.Clone(), true
}

// IsNull reports whether the value is the null variant.
func (v PropertyValue) IsNull() bool {
	return v.kind == KindNull
}

// Equal reports deep equality of two property values.
func (v PropertyValue) Equal(other PropertyValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num || (math.IsNaN(v.num) && math.IsNaN(other.num))
	case KindBool:
		return v.b == other.b
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.bag.Equal(other.bag)
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler with an exhaustive switch over kinds.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindMap:
		if v.bag == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.bag)
	default:
		return nil, fmt.Errorf("property value has unknown kind %d", int(v.kind))
	}
}

// UnmarshalJSON implements json.Unmarshaler, decoding any JSON value
// into the matching variant.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	value, err := propertyFromAny(raw)
	if err != nil {
		return err
	}
	*v = value
	return nil
}

// propertyFromAny converts a decoded JSON value into the closed variant type.
// Numbers must arrive as json.Number, which UnmarshalJSON guarantees.
func propertyFromAny(raw any) (PropertyValue, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return PropertyValue{}, fmt.Errorf("property number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case float64:
		return Number(t), nil
	case []any:
		list := make([]PropertyValue, 0, len(t))
		for i, item := range t {
			value, err := propertyFromAny(item)
			if err != nil {
				return PropertyValue{}, fmt.Errorf("list index %d: %w", i, err)
			}
			list = append(list, value)
		}
		return PropertyValue{kind: KindList, list: list}, nil
	case map[string]any:
		bag := make(PropertyBag, len(t))
		for key, item := range t {
			value, err := propertyFromAny(item)
			if err != nil {
				return PropertyValue{}, fmt.Errorf("key %q: %w", key, err)
			}
			bag[key] = value
		}
		return PropertyValue{kind: KindMap, bag: bag}, nil
	default:
		return PropertyValue{}, fmt.Errorf("unsupported property type %T", raw)
	}
}

// PropertyBag carries arbitrary domain attributes on nodes and edges.
// Keys are unique; key order is irrelevant.
type PropertyBag map[string]PropertyValue

// NewPropertyBag returns an empty bag.
func NewPropertyBag() PropertyBag {
	return make(PropertyBag)
}

// Clone returns an independent deep copy of the bag. Cloning a nil bag
// returns nil so that "no properties" survives a round trip unchanged.
func (b PropertyBag) Clone() PropertyBag {
	if b == nil {
		return nil
	}
	out := make(PropertyBag, len(b))
	for key, value := range b {
		out[key] = value.clone()
	}
	return out
}

func (v PropertyValue) clone() PropertyValue {
	switch v.kind {
	case KindList:
		list := make([]PropertyValue, len(v.list))
		for i := range v.list {
			list[i] = v.list[i].clone()
		}
		return PropertyValue{kind: KindList, list: list}
	case KindMap:
		return PropertyValue{kind: KindMap, bag: v.bag.Clone()}
	default:
		return v
	}
}

// Equal reports whether two bags hold the same keys and equal values.
// A nil bag and an empty bag compare equal.
func (b PropertyBag) Equal(other PropertyBag) bool {
	if len(b) != len(other) {
		return false
	}
	for key, value := range b {
		otherValue, ok := other[key]
		if !ok || !value.Equal(otherValue) {
			return false
		}
	}
	return true
}

// UnmarshalJSON decodes a JSON object into a bag of closed variants.
func (b *PropertyBag) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	bag := make(PropertyBag, len(raw))
	for key, item := range raw {
		value, err := propertyFromAny(item)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		bag[key] = value
	}
	*b = bag
	return nil
}
