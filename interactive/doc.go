// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package interactive runs the per-frame loop of a live session.
//
// The settings are shared between the render goroutine and the goroutine
// delivering window and input events. Session guards them with a mutex and
// performs the whole read-modify-publish cycle of a frame (integrate input,
// consume the rebuild request, snapshot) in one critical section, so the
// renderer never sees half of an edit. Rendering itself runs on the
// snapshot, outside the lock.
package interactive
