// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package settings

import (
	"math"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindUint is an unsigned 32-bit integer field.
	KindUint Kind = iota

	// KindFloat is a 32-bit float field with an interpolation scale.
	KindFloat
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single setting: either an unsigned integer or a float paired
// with its interpolation scale.
//
// The scale is not a display unit. Its sign gives the direction of an edit
// step and its magnitude a step multiplier. It is carried through loads and
// interpolation unchanged.
type Value struct {
	kind  Kind
	u     uint32
	f     float32
	scale float32
}

// Uint returns an integer Value.
func Uint(v uint32) Value {
	return Value{kind: KindUint, u: v}
}

// Float returns a float Value with the given interpolation scale.
func Float(v, scale float32) Value {
	return Value{kind: KindFloat, f: v, scale: scale}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// AsUint returns the integer payload. ok is false for float values.
func (v Value) AsUint() (value uint32, ok bool) {
	return v.u, v.kind == KindUint
}

// AsFloat returns the float payload and its scale. ok is false for integer values.
func (v Value) AsFloat() (value, scale float32, ok bool) {
	return v.f, v.scale, v.kind == KindFloat
}

// WithFloat returns a copy of v carrying a new float payload and the same scale.
func (v Value) WithFloat(f float32) Value {
	v.f = f
	return v
}

// String formats the payload the way it appears in settings files.
func (v Value) String() string {
	if v.kind == KindUint {
		return strconv.FormatUint(uint64(v.u), 10)
	}
	return strconv.FormatFloat(float64(v.f), 'g', -1, 32)
}

// parseAs parses text as a value of the same kind as v, keeping v's scale.
func (v Value) parseAs(text string) (Value, error) {
	if v.kind == KindUint {
		u, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return Value{}, err
		}
		return Uint(uint32(u)), nil
	}
	f, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return Value{}, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, ErrNonFinite
	}
	return Float(float32(f), v.scale), nil
}

// identical reports whether v and o have the same kind and bit patterns.
// NaN payloads compare equal to themselves.
func (v Value) identical(o Value) bool {
	return v.kind == o.kind && v.u == o.u &&
		math.Float32bits(v.f) == math.Float32bits(o.f) &&
		math.Float32bits(v.scale) == math.Float32bits(o.scale)
}
