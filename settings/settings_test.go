// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package settings

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"slices"
	"testing"
)

func TestNewHasEveryDefault(t *testing.T) {
	s := New()
	for _, name := range Keys() {
		v, err := s.Get(name)
		if err != nil {
			t.Fatalf("Get(%q) = %v", name, err)
		}
		want, _ := DefaultFor(name)
		if v != want {
			t.Errorf("Get(%q) = %v, want %v", name, v, want)
		}
	}
	if got := len(Keys()); got != Len() {
		t.Errorf("len(Keys()) = %d, want %d", got, Len())
	}
}

func TestNewConstants(t *testing.T) {
	s := New()
	want := []string{
		"bailout", "de_multiplier", "max_ray_dist", "quality_first_ray",
		"quality_rest_ray", "white_clamp", "max_iters", "max_ray_steps", "num_ray_bounces",
	}
	if got := s.Constants(); !slices.Equal(got, want) {
		t.Errorf("Constants() = %v, want %v", got, want)
	}
	if s.CheckAndClearRebuild() {
		t.Error("new settings should not request a rebuild")
	}
}

func TestGetUnknownKey(t *testing.T) {
	s := New()
	if _, err := s.Get("nope"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Get(nope) error = %v, want ErrUnknownKey", err)
	}
	if err := s.Set("nope", Uint(1)); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Set(nope) error = %v, want ErrUnknownKey", err)
	}
	if err := s.SetConstant("nope", true); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("SetConstant(nope) error = %v, want ErrUnknownKey", err)
	}
}

func TestSetTypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value Value
	}{
		{"uint into float", "fov", Uint(2)},
		{"float into uint", "max_iters", Float(2, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			before, _ := s.Get(tt.key)
			if err := s.Set(tt.key, tt.value); !errors.Is(err, ErrTypeMismatch) {
				t.Fatalf("Set() error = %v, want ErrTypeMismatch", err)
			}
			after, _ := s.Get(tt.key)
			if after != before {
				t.Errorf("rejected Set changed the value: %v -> %v", before, after)
			}
		})
	}
}

func TestSetAndAccessors(t *testing.T) {
	s := New()
	if err := s.Set("fov", Float(2.5, -1)); err != nil {
		t.Fatal(err)
	}
	if f, err := s.Float("fov"); err != nil || f != 2.5 {
		t.Errorf("Float(fov) = %v, %v; want 2.5", f, err)
	}
	if _, err := s.Uint("fov"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Uint(fov) error = %v, want ErrTypeMismatch", err)
	}
	if u, err := s.Uint("render_scale"); err != nil || u != 1 {
		t.Errorf("Uint(render_scale) = %v, %v; want 1", u, err)
	}
}

func TestConstantEditsRequestRebuild(t *testing.T) {
	tests := []struct {
		name string
		edit func(s *Settings)
		want bool
	}{
		{"non-constant value", func(s *Settings) { _ = s.Set("fov", Float(2, -1)) }, false},
		{"constant value", func(s *Settings) { _ = s.Set("max_iters", Uint(32)) }, true},
		{"constant same value", func(s *Settings) { _ = s.Set("max_iters", Uint(64)) }, false},
		{"lock field", func(s *Settings) { _ = s.SetConstant("fov", true) }, true},
		{"lock locked field", func(s *Settings) { _ = s.SetConstant("bailout", true) }, false},
		{"clear constants", func(s *Settings) { s.ClearConstants() }, true},
		{"lock all", func(s *Settings) { s.LockAllConstants() }, true},
		{"explicit request", func(s *Settings) { s.RequestRebuild() }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			tt.edit(s)
			if got := s.CheckAndClearRebuild(); got != tt.want {
				t.Errorf("CheckAndClearRebuild() = %v, want %v", got, tt.want)
			}
			if s.CheckAndClearRebuild() {
				t.Error("second CheckAndClearRebuild() should be false")
			}
		})
	}
}

func TestConstantsHelpers(t *testing.T) {
	s := New()
	s.ClearConstants()
	if len(s.Constants()) != 0 {
		t.Errorf("Constants() after clear = %v", s.Constants())
	}
	s.LockAllConstants()
	if len(s.Constants()) != Len() {
		t.Errorf("len(Constants()) after lock all = %d, want %d", len(s.Constants()), Len())
	}
	if err := s.SetConstant("fov", false); err != nil {
		t.Fatal(err)
	}
	if s.IsConstant("fov") {
		t.Error("fov should be unlocked")
	}
	if s.IsConstant("nope") {
		t.Error("unknown keys are never constant")
	}
}

func TestEqualIgnoresConstantsAndRebuild(t *testing.T) {
	a, b := New(), New()
	_ = b.SetConstant("fov", true)
	b.RequestRebuild()
	if !a.Equal(b) {
		t.Error("Equal should ignore constants and the rebuild flag")
	}
	_ = b.Set("fov", Float(1, 2))
	if a.Equal(b) {
		t.Error("Equal should compare interpolation scales")
	}
	if a.Equal(nil) {
		t.Error("Equal(nil) should be false")
	}
}

func TestEqualComparesBits(t *testing.T) {
	nan := float32(math.NaN())
	a, b := New(), New()
	_ = a.Set("fov", Float(nan, 1))
	_ = b.Set("fov", Float(nan, 1))
	if !a.Equal(a.Clone()) || !a.Equal(b) {
		t.Error("settings holding the same NaN should be equal")
	}
	_ = b.Set("fov", Float(float32(math.Copysign(0, -1)), 1))
	_ = a.Set("fov", Float(0, 1))
	if a.Equal(b) {
		t.Error("0 and -0 have different bits and should differ")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := New()
	b := a.Clone()
	_ = b.Set("pos_x", Float(9, 1))
	_ = b.SetConstant("pos_x", true)
	if f, _ := a.Float("pos_x"); f != 0 {
		t.Errorf("clone edit leaked into original: pos_x = %v", f)
	}
	if a.IsConstant("pos_x") {
		t.Error("clone constant edit leaked into original")
	}
}

func TestMarshalBinary(t *testing.T) {
	s := New()
	b, err := s.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != BinarySize {
		t.Fatalf("len = %d, want %d", len(b), BinarySize)
	}
	posZ, _ := Index("pos_z")
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[4*posZ:])); got != 5 {
		t.Errorf("pos_z word = %v, want 5", got)
	}
	iters, _ := Index("max_iters")
	if got := binary.LittleEndian.Uint32(b[4*iters:]); got != 64 {
		t.Errorf("max_iters word = %v, want 64", got)
	}

	again, _ := s.Clone().MarshalBinary()
	if !bytes.Equal(b, again) {
		t.Error("equal settings serialized differently")
	}

	_ = s.Set("fov", Float(1.5, -1))
	changed, _ := s.MarshalBinary()
	if bytes.Equal(b, changed) {
		t.Error("changed settings serialized identically")
	}
}

func TestMarshalBinaryIgnoresScale(t *testing.T) {
	a, b := New(), New()
	_ = b.Set("fov", Float(1, 7))
	ab, _ := a.MarshalBinary()
	bb, _ := b.MarshalBinary()
	if !bytes.Equal(ab, bb) {
		t.Error("interpolation scale should not reach the device")
	}
}

func TestStatusLines(t *testing.T) {
	s := New()
	lines := s.StatusLines(0)
	if len(lines) != Len() {
		t.Fatalf("len = %d, want %d", len(lines), Len())
	}
	if lines[0] != "* pos_x = 0" {
		t.Errorf("lines[0] = %q", lines[0])
	}
	bailout, _ := Index("bailout")
	if lines[bailout] != " @bailout = 1024" {
		t.Errorf("bailout line = %q", lines[bailout])
	}
	if s.StatusLines(-1)[0] != "  pos_x = 0" {
		t.Errorf("unhighlighted line = %q", s.StatusLines(-1)[0])
	}
}

func TestValueKinds(t *testing.T) {
	u := Uint(7)
	if v, ok := u.AsUint(); !ok || v != 7 {
		t.Errorf("AsUint() = %v, %v", v, ok)
	}
	if _, _, ok := u.AsFloat(); ok {
		t.Error("AsFloat() on uint should fail")
	}
	f := Float(1.25, -0.5)
	if v, sc, ok := f.AsFloat(); !ok || v != 1.25 || sc != -0.5 {
		t.Errorf("AsFloat() = %v, %v, %v", v, sc, ok)
	}
	if g := f.WithFloat(3); g.String() != "3" {
		t.Errorf("WithFloat(3).String() = %q", g.String())
	}
	if KindFloat.String() != "float" || KindUint.String() != "uint" {
		t.Error("Kind.String mismatch")
	}
}

func BenchmarkMarshalBinary(b *testing.B) {
	s := New()
	buf := make([]byte, 0, BinarySize)
	b.ReportAllocs()
	for b.Loop() {
		buf, _ = s.AppendBinary(buf[:0])
	}
}
