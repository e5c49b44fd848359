// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package keyframe interpolates settings between recorded keyframes.
//
// A keyframe log is a settings file holding several records separated by
// "---" lines, typically built by calling settings.SaveKeyframe during an
// interactive session. Each record only needs the fields that changed: it
// is applied on top of the previous one.
//
// Interpolate evaluates a uniform Catmull-Rom spline through the keyframes
// for every field, then re-orthonormalizes the camera look and up vectors.
package keyframe
