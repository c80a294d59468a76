package tabular

import (
	"bytes"
	"fmt"
	"math"
	"time"
)

// Value is a single cell. The zero Value is not null and matches no column
// type; callers build null with Null() and non-null values with the typed
// constructors below so the underlying Go type always matches the column's
// declared Type.
type Value struct {
	null bool
	raw  any
}

// Null returns the null value.
func Null() Value { return Value{null: true} }

func StringValue(v string) Value    { return Value{raw: v} }
func Int64Value(v int64) Value      { return Value{raw: v} }
func Float64Value(v float64) Value  { return Value{raw: v} }
func BoolValue(v bool) Value        { return Value{raw: v} }
func TimestampValue(v time.Time) Value { return Value{raw: v} }
func BytesValue(v []byte) Value     { return Value{raw: v} }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.null }

// Raw returns the underlying Go value (nil if null). Used by callers that
// need to print or hash a value generically.
func (v Value) Raw() any {
	if v.null {
		return nil
	}
	return v.raw
}

func (v Value) String() (string, bool) {
	s, ok := v.raw.(string)
	return s, ok
}

func (v Value) Int64() (int64, bool) {
	i, ok := v.raw.(int64)
	return i, ok
}

func (v Value) Float64() (float64, bool) {
	f, ok := v.raw.(float64)
	return f, ok
}

func (v Value) Bool() (bool, bool) {
	b, ok := v.raw.(bool)
	return b, ok
}

func (v Value) Timestamp() (time.Time, bool) {
	t, ok := v.raw.(time.Time)
	return t, ok
}

func (v Value) Bytes() ([]byte, bool) {
	b, ok := v.raw.([]byte)
	return b, ok
}

// CheckType reports whether a non-null value's underlying Go type matches
// typ. Called when rows are handed to a Table to catch schema/value
// mismatches early.
func (v Value) CheckType(typ Type) error {
	if v.null {
		return nil
	}
	switch typ {
	case TypeString:
		if _, ok := v.raw.(string); !ok {
			return fmt.Errorf("tabular: expected STRING, got %T", v.raw)
		}
	case TypeInt64:
		if _, ok := v.raw.(int64); !ok {
			return fmt.Errorf("tabular: expected INT64, got %T", v.raw)
		}
	case TypeFloat64:
		if _, ok := v.raw.(float64); !ok {
			return fmt.Errorf("tabular: expected FLOAT64, got %T", v.raw)
		}
	case TypeBool:
		if _, ok := v.raw.(bool); !ok {
			return fmt.Errorf("tabular: expected BOOL, got %T", v.raw)
		}
	case TypeTimestamp:
		if _, ok := v.raw.(time.Time); !ok {
			return fmt.Errorf("tabular: expected TIMESTAMP, got %T", v.raw)
		}
	case TypeBytes:
		if _, ok := v.raw.([]byte); !ok {
			return fmt.Errorf("tabular: expected BYTES, got %T", v.raw)
		}
	default:
		return fmt.Errorf("tabular: unknown column type %v", typ)
	}
	return nil
}

// Equal implements the engine's null-sensitive, type-native equality rule:
// two nulls are equal, a null and a non-null are never equal, and non-nulls
// are compared exactly for their declared type (bit-equal for floats, never
// tolerant).
//
// This is deliberately not SQL's three-valued NULL logic: SQL's NULL <> NULL
// would break idempotence on a table containing nulls (see P1 in the spec).
func Equal(a, b Value, typ Type) bool {
	if a.null || b.null {
		return a.null && b.null
	}
	switch typ {
	case TypeString:
		x, _ := a.raw.(string)
		y, _ := b.raw.(string)
		return x == y
	case TypeInt64:
		x, _ := a.raw.(int64)
		y, _ := b.raw.(int64)
		return x == y
	case TypeFloat64:
		x, _ := a.raw.(float64)
		y, _ := b.raw.(float64)
		return math.Float64bits(x) == math.Float64bits(y)
	case TypeBool:
		x, _ := a.raw.(bool)
		y, _ := b.raw.(bool)
		return x == y
	case TypeTimestamp:
		x, _ := a.raw.(time.Time)
		y, _ := b.raw.(time.Time)
		return x.Equal(y)
	case TypeBytes:
		x, _ := a.raw.([]byte)
		y, _ := b.raw.([]byte)
		return bytes.Equal(x, y)
	default:
		return false
	}
}
