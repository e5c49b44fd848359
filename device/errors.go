// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import "errors"

// Package errors.
var (
	// ErrDeviceSelection is wrapped by every error returned from Select.
	ErrDeviceSelection = errors.New("device: selection failed")

	// ErrDeviceIndexOutOfRange is returned when the override index does
	// not name an enumerated device.
	ErrDeviceIndexOutOfRange = errors.New("device: index out of range")

	// ErrNoComputeDeviceFound is returned when no platform yields a context.
	ErrNoComputeDeviceFound = errors.New("device: no compute device found")

	// ErrInteropUnsupported is returned by platforms that cannot share
	// resources with the host graphics API.
	ErrInteropUnsupported = errors.New("device: graphics interop unsupported")

	// ErrNoMatchingDevice is returned by Open when no device satisfies the options.
	ErrNoMatchingDevice = errors.New("device: no matching device")
)
