package gracejoin

import (
	"bytes"
	"strconv"

	"rsc.io/ordered"
)

// Value is a single typed cell of a Record. The zero Value is an int 0.
type Value struct {
	typ Type
	i   int64
	f   float64
	s   string
	b   bool
}

func IntValue(v int32) Value {
	return Value{typ: IntType, i: int64(v)}
}

func LongValue(v int64) Value {
	return Value{typ: LongType, i: v}
}

func FloatValue(v float32) Value {
	// Fold -0 into 0 so equal numbers share a key.
	if v == 0 {
		v = 0
	}
	return Value{typ: FloatType, f: float64(v)}
}

func BoolValue(v bool) Value {
	return Value{typ: BoolType, b: v}
}

func StringValue(v string) Value {
	return Value{typ: StringType, s: v}
}

func (v Value) Type() Type {
	return v.typ
}

func (v Value) Int() int32 {
	return int32(v.i)
}

func (v Value) Long() int64 {
	return v.i
}

func (v Value) Float() float32 {
	return float32(v.f)
}

func (v Value) Bool() bool {
	return v.b
}

func (v Value) Text() string {
	return v.s
}

// Key returns the type-tagged, order-preserving encoding of v. Two values
// are equal exactly when their keys are equal.
func (v Value) Key() []byte {
	switch v.typ {
	case IntType, LongType:
		return ordered.Encode(int64(v.typ), v.i)
	case FloatType:
		return ordered.Encode(int64(v.typ), v.f)
	case BoolType:
		var n int64
		if v.b {
			n = 1
		}
		return ordered.Encode(int64(v.typ), n)
	case StringType:
		return ordered.Encode(int64(v.typ), v.s)
	default:
		return ordered.Encode(int64(v.typ))
	}
}

func (v Value) Equal(other Value) bool {
	return v.typ == other.typ && bytes.Equal(v.Key(), other.Key())
}

func (v Value) String() string {
	switch v.typ {
	case IntType, LongType:
		return strconv.FormatInt(v.i, 10)
	case FloatType:
		return strconv.FormatFloat(v.f, 'g', -1, 32)
	case BoolType:
		return strconv.FormatBool(v.b)
	case StringType:
		return v.s
	default:
		return "?"
	}
}
