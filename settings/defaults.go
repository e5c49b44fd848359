// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package settings

// field is one row of the compiled-in default table.
type field struct {
	name     string
	value    Value
	constant bool
}

// defaults is the canonical field table. Its order is the order of the
// binary upload, the text files and the status listing.
var defaults = [...]field{
	{"pos_x", Float(0.0, 1.0), false},
	{"pos_y", Float(0.0, 1.0), false},
	{"pos_z", Float(5.0, 1.0), false},
	{"look_x", Float(0.0, 1.0), false},
	{"look_y", Float(0.0, 1.0), false},
	{"look_z", Float(-1.0, 1.0), false},
	{"up_x", Float(0.0, 1.0), false},
	{"up_y", Float(1.0, 1.0), false},
	{"up_z", Float(0.0, 1.0), false},
	{"fov", Float(1.0, -1.0), false},
	{"focal_distance", Float(3.0, -1.0), false},
	{"scale", Float(-2.0, 0.5), false},
	{"folding_limit", Float(1.0, -0.5), false},
	{"fixed_radius_2", Float(1.0, -0.5), false},
	{"min_radius_2", Float(0.125, -0.5), false},
	{"dof_amount", Float(0.001, -0.5), false},
	{"fog_distance", Float(10.0, -1.0), false},
	{"fog_brightness", Float(1.0, 0.5), false},
	{"light_pos_1_x", Float(3.0, 0.5), false},
	{"light_pos_1_y", Float(3.5, 0.5), false},
	{"light_pos_1_z", Float(2.5, 0.5), false},
	{"light_radius_1", Float(1.0, -0.5), false},
	{"light_brightness_1_hue", Float(0.0, 0.25), false},
	{"light_brightness_1_sat", Float(0.4, -1.0), false},
	{"light_brightness_1_val", Float(4.0, -1.0), false},
	{"ambient_brightness_hue", Float(0.65, 0.25), false},
	{"ambient_brightness_sat", Float(0.2, -1.0), false},
	{"ambient_brightness_val", Float(1.0, -1.0), false},
	{"reflect_brightness", Float(1.0, 0.125), false},
	{"surface_color_variance", Float(1.0, -0.25), false},
	{"surface_color_shift", Float(0.0, 0.25), false},
	{"surface_color_saturation", Float(1.0, 0.125), false},
	{"bailout", Float(1024.0, -1.0), true},
	{"de_multiplier", Float(0.9375, 0.125), true},
	{"max_ray_dist", Float(16.0, -0.5), true},
	{"quality_first_ray", Float(2.0, -0.5), true},
	{"quality_rest_ray", Float(64.0, -0.5), true},
	{"white_clamp", Uint(0), true},
	{"max_iters", Uint(64), true},
	{"max_ray_steps", Uint(256), true},
	{"num_ray_bounces", Uint(3), true},
	{"render_scale", Uint(1), false},
}

// index maps field names to their table position.
var index = func() map[string]int {
	m := make(map[string]int, len(defaults))
	for i, f := range defaults {
		m[f.name] = i
	}
	return m
}()

// Len returns the number of fields in the default table.
func Len() int { return len(defaults) }

// Keys returns the field names in table order.
func Keys() []string {
	keys := make([]string, len(defaults))
	for i, f := range defaults {
		keys[i] = f.name
	}
	return keys
}

// Nth returns the name of the i-th field in table order.
// It panics if i is out of range.
func Nth(i int) string { return defaults[i].name }

// Index returns the table position of name.
func Index(name string) (int, bool) {
	i, ok := index[name]
	return i, ok
}

// DefaultFor returns the compiled-in default of name.
func DefaultFor(name string) (Value, bool) {
	i, ok := index[name]
	if !ok {
		return Value{}, false
	}
	return defaults[i].value, true
}
