// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package device abstracts the compute API used by the kernel controller
// and selects a device at startup.
//
// A Platform enumerates Devices and opens a Context: the bound device and
// queue that every other component receives explicitly. Backends register
// platform factories with Register; Platforms instantiates them in a fixed
// priority order so that the flat index reported by List is stable.
//
// Select runs a tiered search: an explicit index (usually from the
// MARCHER_DEVICE environment variable), then any GPU, then any device.
//
//	ctx, err := device.Select(device.Platforms(), device.Options{
//		Index:   device.EnvIndex(),
//		Interop: false,
//	})
package device
