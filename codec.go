package gracejoin

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

type Marshaler interface {
	Marshal(v any) (data []byte, err error)
}

type Unmarshaler interface {
	Unmarshal(data []byte, v any) error
}

// MarshalUnmarshaler encodes records spilled to partitions and runs.
type MarshalUnmarshaler interface {
	Marshaler
	Unmarshaler
}

var (
	JsonMaUn    MarshalUnmarshaler = jsonMarshalUnmarshaler{}
	GobMaUn     MarshalUnmarshaler = gobMarshalUnmarshaler{}
	MsgpackMaUn MarshalUnmarshaler = msgpackMarshalUnmarshaler{}
)

type jsonMarshalUnmarshaler struct{}

func (jsonMarshalUnmarshaler) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonMarshalUnmarshaler) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type gobMarshalUnmarshaler struct{}

func (gobMarshalUnmarshaler) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobMarshalUnmarshaler) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

type msgpackMarshalUnmarshaler struct{}

func (msgpackMarshalUnmarshaler) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (msgpackMarshalUnmarshaler) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// wireValue is the spilled form of a Value. Every codec round-trips it
// without losing the type tag. Floats travel as their IEEE 754 bits so NaN
// and infinities survive JSON.
type wireValue struct {
	Type  Type   `msgpack:"t" json:"t"`
	Int   int64  `msgpack:"i,omitempty" json:"i,omitempty"`
	Float uint64 `msgpack:"f,omitempty" json:"f,omitempty"`
	Str   string `msgpack:"s,omitempty" json:"s,omitempty"`
	Bool  bool   `msgpack:"b,omitempty" json:"b,omitempty"`
}

func encodeRecord(maUn MarshalUnmarshaler, r Record) ([]byte, error) {
	wire := make([]wireValue, r.Len())
	for i, v := range r.values {
		wire[i] = wireValue{Type: v.typ, Int: v.i, Float: math.Float64bits(v.f), Str: v.s, Bool: v.b}
	}
	return maUn.Marshal(wire)
}

func decodeRecord(maUn MarshalUnmarshaler, data []byte) (Record, error) {
	var wire []wireValue
	if err := maUn.Unmarshal(data, &wire); err != nil {
		return Record{}, err
	}
	values := make([]Value, len(wire))
	for i, w := range wire {
		if !w.Type.valid() {
			return Record{}, ErrUnknownType(w.Type)
		}
		values[i] = Value{typ: w.Type, i: w.Int, f: math.Float64frombits(w.Float), s: w.Str, b: w.Bool}
	}
	return Record{values: values}, nil
}
