// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package settings holds the renderer's typed parameter set.
//
// # File format
//
// Settings are stored as plain text, one field per line:
//
//	pos_x = 0
//	fov = 1
//	max_iters = 64
//
// A keyframe log is a sequence of such records, each followed by a line
// containing exactly "---". Whitespace around '=' and around the separator
// is ignored.
//
// # Binary form
//
// MarshalBinary produces the buffer uploaded to the compute kernel: one
// little-endian 32-bit word per field in table order.
package settings
