// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package marcher is the core of an interactive GPU fractal ray-marcher.
//
// # Overview
//
// A compute kernel renders a Mandelbox-style distance-estimated fractal into
// a GPU-resident buffer every frame. The image is refined progressively: the
// kernel accumulates samples across frames until something invalidates them.
// The packages are:
//
//   - settings: the typed key/value parameter set edited live by the user
//   - device: compute device abstraction and the fallback device search
//   - backend/wgpu: the gogpu/wgpu HAL implementation of device
//   - kernel: GPU resource pool, kernel source generation and the
//     per-frame execution controller
//   - keyframe: Catmull-Rom interpolation between settings snapshots
//   - interactive: the mutex-guarded session shared with an input thread
//   - offline: still-image and animation rendering
//   - output: pixel conversion and image sinks
//   - config: application configuration
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/marcher/device"
//	    "github.com/gogpu/marcher/kernel"
//	    "github.com/gogpu/marcher/settings"
//
//	    _ "github.com/gogpu/marcher/backend/wgpu" // register HAL platforms
//	)
//
//	ctx, err := device.Select(device.Platforms(), device.Options{Index: device.EnvIndex()})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	ctrl := kernel.NewController(ctx, kernel.Config{Width: 1280, Height: 720})
//	s := settings.New()
//	for range 64 {
//	    if err := ctrl.Step(s, false); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	img, err := ctrl.Download()
//
// # Progressive accumulation
//
// The controller keeps a frame counter that the kernel receives as an
// argument. Frame 0 tells the kernel to discard accumulated samples. The
// counter is reset when the kernel is rebuilt, when the output buffers are
// reallocated and whenever the settings content changes.
package marcher

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
