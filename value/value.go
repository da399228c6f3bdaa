// Package value provides the JSON value domain produced by the descent parser.
//
// A Value is a tagged union of null, boolean, number, string, array and
// object. The zero Value is null. Values are immutable once built: the
// accessors that return containers return copies.
package value

import (
	"fmt"
	"maps"
	"slices"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull   Kind = iota // null
	KindBool                // true or false
	KindNumber              // float64
	KindString              // text
	KindArray               // ordered sequence of values
	KindObject              // mapping from text to value
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON value.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	arr  []Value
	obj  map[string]Value
}

// Member is a key/value pair of an object, in source order.
type Member struct {
	Key   string
	Value Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a number value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Array returns an array holding a copy of elems. Array() is the empty array.
func Array(elems ...Value) Value {
	arr := make([]Value, len(elems))
	copy(arr, elems)
	return Value{kind: KindArray, arr: arr}
}

// Object returns an object holding a copy of m. A nil map gives the empty object.
func Object(m map[string]Value) Value {
	obj := make(map[string]Value, len(m))
	maps.Copy(obj, m)
	return Value{kind: KindObject, obj: obj}
}

// ObjectFromPairs folds members into an object. When a key repeats, the
// later member wins.
func ObjectFromPairs(members []Member) Value {
	obj := make(map[string]Value, len(members))
	for _, m := range members {
		obj[m.Key] = m.Value
	}
	return Value{kind: KindObject, obj: obj}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v. ok is false for other kinds.
func (v Value) AsBool() (b, ok bool) {
	return v.b, v.kind == KindBool
}

// AsNumber returns the number held by v. ok is false for other kinds.
func (v Value) AsNumber() (float64, bool) {
	return v.n, v.kind == KindNumber
}

// AsString returns the text held by v. ok is false for other kinds.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

// Len returns the number of elements of an array or entries of an
// object, and 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	}
	return 0
}

// Index returns element i of an array. ok is false when v is not an
// array or i is out of range.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// Elements returns a copy of the elements of an array, or nil.
func (v Value) Elements() []Value {
	if v.kind != KindArray {
		return nil
	}
	return slices.Clone(v.arr)
}

// Get returns the value stored under key in an object.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	e, ok := v.obj[key]
	return e, ok
}

// Keys returns the object keys in sorted order, or nil.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	return slices.Sorted(maps.Keys(v.obj))
}

// Depth returns the container nesting depth: 0 for scalars, 1 for a flat
// array or object, and one more than the deepest child otherwise.
func (v Value) Depth() int {
	d := 0
	switch v.kind {
	case KindArray:
		for _, e := range v.arr {
			d = max(d, e.Depth())
		}
	case KindObject:
		for _, e := range v.obj {
			d = max(d, e.Depth())
		}
	default:
		return 0
	}
	return d + 1
}

// Equal reports whether v and o are structurally equal. Object key order
// never matters.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString:
		return v.s == o.s
	case KindArray:
		return slices.EqualFunc(v.arr, o.arr, Value.Equal)
	case KindObject:
		return maps.EqualFunc(v.obj, o.obj, Value.Equal)
	}
	return false
}

// Interface converts v to plain Go values: nil, bool, float64, string,
// []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Interface()
		}
		return out
	}
	return nil
}

// FromInterface converts plain Go values, as produced by encoding/json or
// yaml.v3 decoding, into a Value.
func FromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case string:
		return String(t), nil
	case []any:
		arr := make([]Value, len(t))
		for i, e := range t {
			ev, err := FromInterface(e)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			arr[i] = ev
		}
		return Value{kind: KindArray, arr: arr}, nil
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			ev, err := FromInterface(e)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			obj[k] = ev
		}
		return Value{kind: KindObject, obj: obj}, nil
	}
	return Value{}, fmt.Errorf("unsupported type %T", x)
}
