package licensechain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// ValueType identifies which JSON type a Value holds.
type ValueType uint8

const (
	ValueNull ValueType = iota
	ValueBool
	ValueNumber
	ValueString
	ValueArray
	ValueObject
)

func (t ValueType) String() string {
	switch t {
	case ValueNull:
		return "null"
	case ValueBool:
		return "bool"
	case ValueNumber:
		return "number"
	case ValueString:
		return "string"
	case ValueArray:
		return "array"
	case ValueObject:
		return "object"
	default:
		return "ValueType(" + strconv.Itoa(int(t)) + ")"
	}
}

// Value is an arbitrary JSON value. The zero Value is JSON null.
// Numbers keep their textual form, so integers beyond 2^53 survive a
// decode/encode cycle unchanged.
type Value struct {
	typ ValueType
	b   bool
	n   json.Number
	s   string
	a   []Value
	o   map[string]Value
}

// Metadata holds free-form key/value data attached to licenses, users and products.
type Metadata = map[string]Value

// Null returns the JSON null value.
func Null() Value { return Value{} }

// Bool returns a JSON boolean.
func Bool(b bool) Value { return Value{typ: ValueBool, b: b} }

// String returns a JSON string.
func String(s string) Value { return Value{typ: ValueString, s: s} }

// Int returns a JSON number holding i.
func Int(i int64) Value {
	return Value{typ: ValueNumber, n: json.Number(strconv.FormatInt(i, 10))}
}

// Float returns a JSON number holding f. NaN and infinities become null.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{typ: ValueNumber, n: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

// Number returns a JSON number from its textual form.
func Number(n json.Number) Value { return Value{typ: ValueNumber, n: n} }

// Array returns a JSON array.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{typ: ValueArray, a: items}
}

// Object returns a JSON object.
func Object(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{typ: ValueObject, o: fields}
}

// ValueOf converts a decoded Go value (nil, bool, numbers, string, []any,
// map[string]any, or a Value) into a Value.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case json.Number:
		return Number(x), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(float64(x)), nil
	case int:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Number(json.Number(strconv.FormatUint(uint64(x), 10))), nil
	case uint64:
		return Number(json.Number(strconv.FormatUint(x, 10))), nil
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			iv, err := ValueOf(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items[i] = iv
		}
		return Array(items...), nil
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, item := range x {
			iv, err := ValueOf(item)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			fields[k] = iv
		}
		return Object(fields), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %s", reflect.TypeOf(v))
	}
}

// Type reports the JSON type held by v.
func (v Value) Type() ValueType { return v.typ }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.typ == ValueNull }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.typ == ValueBool }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.typ == ValueString }

// AsNumber returns the number held by v in its textual form.
func (v Value) AsNumber() (json.Number, bool) { return v.n, v.typ == ValueNumber }

// AsFloat returns the number held by v as a float64.
func (v Value) AsFloat() (float64, bool) {
	if v.typ != ValueNumber {
		return 0, false
	}
	f, err := v.n.Float64()
	return f, err == nil
}

// AsInt returns the number held by v when it is an integer.
func (v Value) AsInt() (int64, bool) {
	if v.typ != ValueNumber {
		return 0, false
	}
	i, err := v.n.Int64()
	return i, err == nil
}

// AsArray returns the elements held by v.
func (v Value) AsArray() ([]Value, bool) { return v.a, v.typ == ValueArray }

// AsObject returns the fields held by v.
func (v Value) AsObject() (map[string]Value, bool) { return v.o, v.typ == ValueObject }

// Interface converts v to plain Go values: nil, bool, json.Number, string,
// []any or map[string]any.
func (v Value) Interface() any {
	switch v.typ {
	case ValueBool:
		return v.b
	case ValueNumber:
		return v.n
	case ValueString:
		return v.s
	case ValueArray:
		out := make([]any, len(v.a))
		for i, item := range v.a {
			out[i] = item.Interface()
		}
		return out
	case ValueObject:
		out := make(map[string]any, len(v.o))
		for k, item := range v.o {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether v and other hold the same JSON value. Numbers are
// compared by their textual form.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case ValueNull:
		return true
	case ValueBool:
		return v.b == other.b
	case ValueNumber:
		return v.n == other.n
	case ValueString:
		return v.s == other.s
	case ValueArray:
		if len(v.a) != len(other.a) {
			return false
		}
		for i := range v.a {
			if !v.a[i].Equal(other.a[i]) {
				return false
			}
		}
		return true
	case ValueObject:
		if len(v.o) != len(other.o) {
			return false
		}
		for k, item := range v.o {
			o, ok := other.o[k]
			if !ok || !item.Equal(o) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.typ {
	case ValueNull:
		return []byte("null"), nil
	case ValueBool:
		return json.Marshal(v.b)
	case ValueNumber:
		if v.n == "" {
			return []byte("0"), nil
		}
		return json.Marshal(v.n)
	case ValueString:
		return json.Marshal(v.s)
	case ValueArray:
		if v.a == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.a)
	case ValueObject:
		if v.o == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.o)
	default:
		return nil, fmt.Errorf("marshal value: unknown type %s", v.typ)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	*v = parsed
	return nil
}
