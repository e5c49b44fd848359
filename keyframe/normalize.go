// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package keyframe

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/marcher/settings"
)

type vec3 [3]float32

func (a vec3) dot(b vec3) float32 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func (a vec3) sub(b vec3) vec3 { return vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func (a vec3) scale(s float32) vec3 { return vec3{a[0] * s, a[1] * s, a[2] * s} }

// unit returns a scaled to length 1, or a unchanged when its length is 0.
func (a vec3) unit() vec3 {
	l := math32.Sqrt(a.dot(a))
	if l == 0 {
		return a
	}
	return a.scale(1 / l)
}

var (
	lookKeys = [3]string{"look_x", "look_y", "look_z"}
	upKeys   = [3]string{"up_x", "up_y", "up_z"}
)

// normalize makes look a unit vector and up the unit vector orthogonal to
// look in the plane of look and the original up.
func normalize(s *settings.Settings) error {
	look, err := readVec(s, lookKeys)
	if err != nil {
		return err
	}
	up, err := readVec(s, upKeys)
	if err != nil {
		return err
	}
	look = look.unit()
	up = up.sub(look.scale(up.dot(look))).unit()
	if err := writeVec(s, lookKeys, look); err != nil {
		return err
	}
	return writeVec(s, upKeys, up)
}

func readVec(s *settings.Settings, keys [3]string) (vec3, error) {
	var v vec3
	for i, k := range keys {
		f, err := s.Float(k)
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

func writeVec(s *settings.Settings, keys [3]string, v vec3) error {
	for i, k := range keys {
		old, err := s.Get(k)
		if err != nil {
			return err
		}
		if err := s.Set(k, old.WithFloat(v[i])); err != nil {
			return err
		}
	}
	return nil
}
