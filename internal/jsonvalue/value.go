// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jsonvalue models parsed JSON as an explicit tagged union so that
// coercion and traversal code can switch exhaustively over every shape.
// Objects keep their members in declaration order.
// Implements: docs/ARCHITECTURE § JSON Model.
package jsonvalue

// Kind tags the shape held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// String returns the lowercase JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "unknown"
}

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	b       bool
	num     float64
	str     string
	elems   []Value
	members []Member
}

// NullValue returns the JSON null.
func NullValue() Value { return Value{} }

// BoolValue wraps b.
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue wraps f. Out-of-range literals parse to ±Inf and are kept
// as-is; finiteness is checked by consumers.
func NumberValue(f float64) Value { return Value{kind: Number, num: f} }

// StringValue wraps s.
func StringValue(s string) Value { return Value{kind: String, str: s} }

// ArrayValue wraps elems in order.
func ArrayValue(elems ...Value) Value {
	return Value{kind: Array, elems: elems}
}

// ObjectValue builds an object from members. A repeated key replaces the
// earlier value but keeps the earlier position.
func ObjectValue(members ...Member) Value {
	out := make([]Member, 0, len(members))
	index := make(map[string]int, len(members))
	for _, m := range members {
		if i, ok := index[m.Key]; ok {
			out[i].Value = m.Value
			continue
		}
		index[m.Key] = len(out)
		out = append(out, m)
	}
	return Value{kind: Object, members: out}
}

// Kind returns the shape tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == Null }

// AsBool returns the boolean and whether v is a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == Bool }

// AsNumber returns the number and whether v is a Number.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == Number }

// AsString returns the text and whether v is a String.
func (v Value) AsString() (string, bool) { return v.str, v.kind == String }

// Elems returns the array elements, or nil when v is not an Array.
// The returned slice must not be modified.
func (v Value) Elems() []Value {
	if v.kind != Array {
		return nil
	}
	return v.elems
}

// Members returns the object members in declaration order, or nil when v
// is not an Object. The returned slice must not be modified.
func (v Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	return v.members
}

// Len returns the number of elements or members, zero for scalars.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.elems)
	case Object:
		return len(v.members)
	}
	return 0
}

// Index returns the i-th array element.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.elems) {
		return Value{}, false
	}
	return v.elems[i], true
}

// Get returns the member value for key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}
