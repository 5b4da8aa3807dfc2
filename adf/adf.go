// Package adf exposes decoded structured records as trees of named fields.
package adf

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// ErrMalformedRecord is returned when record bytes cannot be decoded or a
// field does not have the expected shape.
var ErrMalformedRecord = errors.New("malformed record")

type Decoder interface {
	Decode(data []byte) (*Record, error)
}

// Record is a decoded container. Field values are one of int, int64, uint64,
// float64, string, []byte, []interface{} or a nested map.
type Record struct {
	Instances []Struct
}

type Struct map[string]interface{}

// Instance returns the i-th root instance.
func (r *Record) Instance(i int) (Struct, error) {
	if i < 0 || i >= len(r.Instances) {
		return nil, errors.Wrapf(ErrMalformedRecord, "instance %d of %d", i, len(r.Instances))
	}
	return r.Instances[i], nil
}

func (s Struct) field(name string) (interface{}, error) {
	v, ok := s[name]
	if !ok {
		return nil, errors.Wrapf(ErrMalformedRecord, "missing field %q", name)
	}
	return v, nil
}

func (s Struct) Struct(name string) (Struct, error) {
	v, err := s.field(name)
	if err != nil {
		return nil, err
	}
	return asStruct(name, v)
}

func (s Struct) List(name string) ([]interface{}, error) {
	v, err := s.field(name)
	if err != nil {
		return nil, err
	}
	l, ok := v.([]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrMalformedRecord, "field %q is %T, not a list", name, v)
	}
	return l, nil
}

// Structs returns a list field whose elements are all structs.
func (s Struct) Structs(name string) ([]Struct, error) {
	l, err := s.List(name)
	if err != nil {
		return nil, err
	}
	result := make([]Struct, len(l))
	for i, v := range l {
		if result[i], err = asStruct(fmt.Sprintf("%s[%d]", name, i), v); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s Struct) Floats(name string) ([]float64, error) {
	l, err := s.List(name)
	if err != nil {
		return nil, err
	}
	result := make([]float64, len(l))
	for i, v := range l {
		f, ok := toFloat(v)
		if !ok {
			return nil, errors.Wrapf(ErrMalformedRecord, "field %q[%d] is %T, not a number", name, i, v)
		}
		result[i] = f
	}
	return result, nil
}

func (s Struct) Uint64(name string) (uint64, error) {
	v, err := s.field(name)
	if err != nil {
		return 0, err
	}
	u, ok := toUint(v)
	if !ok {
		return 0, errors.Wrapf(ErrMalformedRecord, "field %q is %T, not an unsigned integer", name, v)
	}
	return u, nil
}

func (s Struct) String(name string) (string, error) {
	v, err := s.field(name)
	if err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	}
	return "", errors.Wrapf(ErrMalformedRecord, "field %q is %T, not a string", name, v)
}

// Bytes returns a list of 32-bit words as their little-endian byte image.
func (s Struct) Bytes(name string) ([]byte, error) {
	l, err := s.List(name)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 4*len(l))
	for i, v := range l {
		u, ok := toUint(v)
		if !ok || u > 0xffffffff {
			return nil, errors.Wrapf(ErrMalformedRecord, "field %q[%d] is not a 32-bit word", name, i)
		}
		binary.LittleEndian.PutUint32(out[i*4:], uint32(u))
	}
	return out, nil
}

func asStruct(name string, v interface{}) (Struct, error) {
	switch t := v.(type) {
	case Struct:
		return t, nil
	case map[string]interface{}:
		return Struct(t), nil
	}
	return nil, errors.Wrapf(ErrMalformedRecord, "field %q is %T, not a struct", name, v)
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}

func toUint(v interface{}) (uint64, bool) {
	switch t := v.(type) {
	case int:
		return uint64(t), t >= 0
	case int64:
		return uint64(t), t >= 0
	case uint64:
		return t, true
	case uint32:
		return uint64(t), true
	}
	return 0, false
}
