// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package settings

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"
)

// Settings is the live parameter set of the renderer.
//
// Every field of the default table is always present: loads update values
// in place and never add keys. The kind of each field is fixed by the table.
//
// A field marked constant is baked into the generated kernel source instead
// of being read from the configuration buffer, and is skipped by animation
// and edit cycling. Because of that, changing the constants set or the value
// of a constant field requests a kernel rebuild.
//
// Settings is not safe for concurrent use; see package interactive for the
// shared, locked form.
type Settings struct {
	values   []Value
	constant []bool
	rebuild  bool
}

// New returns settings populated from the default table.
func New() *Settings {
	s := &Settings{
		values:   make([]Value, len(defaults)),
		constant: make([]bool, len(defaults)),
	}
	for i, f := range defaults {
		s.values[i] = f.value
		s.constant[i] = f.constant
	}
	return s
}

// Clone returns a deep copy, including the constants set and rebuild flag.
func (s *Settings) Clone() *Settings {
	return &Settings{
		values:   append([]Value(nil), s.values...),
		constant: append([]bool(nil), s.constant...),
		rebuild:  s.rebuild,
	}
}

// Get returns the value of name.
func (s *Settings) Get(name string) (Value, error) {
	i, ok := index[name]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownKey, name)
	}
	return s.values[i], nil
}

// Float returns the float payload of name.
func (s *Settings) Float(name string) (float32, error) {
	v, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	f, _, ok := v.AsFloat()
	if !ok {
		return 0, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, name, v.Kind())
	}
	return f, nil
}

// Uint returns the integer payload of name.
func (s *Settings) Uint(name string) (uint32, error) {
	v, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	u, ok := v.AsUint()
	if !ok {
		return 0, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, name, v.Kind())
	}
	return u, nil
}

// Set replaces the value of name. The kind must match the kind of the
// field's default.
func (s *Settings) Set(name string, v Value) error {
	i, ok := index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, name)
	}
	if want := defaults[i].value.Kind(); v.Kind() != want {
		return fmt.Errorf("%w: %s is %s, got %s", ErrTypeMismatch, name, want, v.Kind())
	}
	s.setAt(i, v)
	return nil
}

// setAt stores v at table position i, requesting a rebuild when a constant
// field changes.
func (s *Settings) setAt(i int, v Value) {
	if s.constant[i] && !s.values[i].identical(v) {
		s.rebuild = true
	}
	s.values[i] = v
}

// At returns the value at table position i.
func (s *Settings) At(i int) Value { return s.values[i] }

// All iterates over the fields in table order.
func (s *Settings) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for i, v := range s.values {
			if !yield(defaults[i].name, v) {
				return
			}
		}
	}
}

// IsConstant reports whether name is locked as a constant.
// Unknown names are never constant.
func (s *Settings) IsConstant(name string) bool {
	i, ok := index[name]
	return ok && s.constant[i]
}

// SetConstant locks or unlocks name.
func (s *Settings) SetConstant(name string, constant bool) error {
	i, ok := index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, name)
	}
	if s.constant[i] != constant {
		s.constant[i] = constant
		s.rebuild = true
	}
	return nil
}

// ClearConstants unlocks every field.
func (s *Settings) ClearConstants() {
	s.fillConstants(false)
}

// LockAllConstants locks every field.
func (s *Settings) LockAllConstants() {
	s.fillConstants(true)
}

func (s *Settings) fillConstants(constant bool) {
	for i := range s.constant {
		if s.constant[i] != constant {
			s.constant[i] = constant
			s.rebuild = true
		}
	}
}

// Constants returns the locked field names in table order.
func (s *Settings) Constants() []string {
	var names []string
	for i, c := range s.constant {
		if c {
			names = append(names, defaults[i].name)
		}
	}
	return names
}

// RequestRebuild marks the kernel for recompilation.
func (s *Settings) RequestRebuild() {
	s.rebuild = true
}

// CheckAndClearRebuild reports whether a rebuild was requested and clears
// the request. The execution controller calls it once per frame.
func (s *Settings) CheckAndClearRebuild() bool {
	r := s.rebuild
	s.rebuild = false
	return r
}

// Equal reports whether s and o hold the same values, compared bit for bit.
// The constants set and the rebuild flag are not compared.
func (s *Settings) Equal(o *Settings) bool {
	if s == nil || o == nil {
		return s == o
	}
	for i := range s.values {
		if !s.values[i].identical(o.values[i]) {
			return false
		}
	}
	return true
}

// BinarySize is the length of the binary form produced by MarshalBinary.
const BinarySize = 4 * len(defaults)

// AppendBinary appends the fixed-layout binary form of the values to b:
// one little-endian 32-bit word per field in table order, holding either the
// float32 bits or the integer.
func (s *Settings) AppendBinary(b []byte) ([]byte, error) {
	for _, v := range s.values {
		if v.kind == KindUint {
			b = binary.LittleEndian.AppendUint32(b, v.u)
		} else {
			b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v.f))
		}
	}
	return b, nil
}

// MarshalBinary returns the configuration buffer uploaded to the device.
// Two stores with equal values always produce identical bytes.
func (s *Settings) MarshalBinary() ([]byte, error) {
	return s.AppendBinary(make([]byte, 0, BinarySize))
}
