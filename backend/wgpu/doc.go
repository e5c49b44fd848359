// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements the device interfaces on the gogpu/wgpu HAL.
//
// Importing the package registers a "vulkan" platform with the device
// registry:
//
//	import _ "github.com/gogpu/marcher/backend/wgpu"
//
// Standalone platforms own their device and cannot share buffers with a
// host renderer. An application that already has a gogpu device wraps it
// with NewHostPlatform; that platform shares the host's device and queue,
// supports interop and never destroys the device on Close.
//
// Kernels are WGSL, compiled to SPIR-V with gogpu/naga. Dispatches are
// submitted with an increasing fence value and at most two submissions
// are in flight, one per parameter slot.
package wgpu
