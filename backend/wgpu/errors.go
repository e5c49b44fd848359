// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import "errors"

// Package errors.
var (
	// ErrBackendUnavailable is returned when the HAL backend is not
	// compiled in or cannot create an instance.
	ErrBackendUnavailable = errors.New("wgpu: backend unavailable")

	// ErrNoHALAccess is returned by NewHostPlatform when the provider does
	// not expose its HAL device and queue.
	ErrNoHALAccess = errors.New("wgpu: provider does not expose HAL types")

	// ErrForeignObject is returned when a buffer or program from another
	// implementation is passed in.
	ErrForeignObject = errors.New("wgpu: object from another context")

	// ErrTimeout is returned when the device does not signal a fence in time.
	ErrTimeout = errors.New("wgpu: timed out waiting for the GPU")

	// ErrNotBound is returned by Dispatch for a program without bindings.
	ErrNotBound = errors.New("wgpu: program has no bindings")
)
