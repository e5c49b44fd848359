// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package keyframe

import "math"

// catmullRom evaluates the uniform Catmull-Rom segment between p1 and p2.
func catmullRom(p0, p1, p2, p3, t float32) float32 {
	t2 := t * t
	t3 := t2 * t
	return (2*p1 +
		(-p0+p2)*t +
		(2*p0-5*p1+4*p2-p3)*t2 +
		(-p0+3*p1-3*p2+p3)*t3) / 2
}

// catmullRomUint interpolates in float64, which represents every uint32
// exactly, then rounds and clamps back into range.
func catmullRomUint(p0, p1, p2, p3 uint32, t float32) uint32 {
	a, b, c, d := float64(p0), float64(p1), float64(p2), float64(p3)
	u := float64(t)
	u2 := u * u
	u3 := u2 * u
	r := (2*b + (-a+c)*u + (2*a-5*b+4*c-d)*u2 + (-a+3*b-3*c+d)*u3) / 2
	r = math.Round(r)
	switch {
	case r <= 0 || math.IsNaN(r):
		return 0
	case r >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(r)
}
