// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/marcher/device"
)

// GPUInfo describes an enumerated adapter.
type GPUInfo struct {
	// Name is the adapter name (e.g., "NVIDIA GeForce RTX 3080").
	Name string
	// DeviceType is the type of GPU (discrete, integrated, etc.).
	DeviceType gputypes.DeviceType
	// Backend is the platform name.
	Backend string
}

// String returns a human-readable description of the GPU.
func (g *GPUInfo) String() string {
	return fmt.Sprintf("%s (%v, %s)", g.Name, g.DeviceType, g.Backend)
}

// classify maps a HAL device type onto a device class.
func classify(t gputypes.DeviceType) device.Class {
	if t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU {
		return device.ClassGPU
	}
	return device.ClassOther
}

// adapter is an enumerated HAL adapter.
type adapter struct {
	exposed hal.ExposedAdapter
	info    GPUInfo
}

func newAdapter(exposed hal.ExposedAdapter, backend string) *adapter {
	return &adapter{
		exposed: exposed,
		info: GPUInfo{
			Name:       exposed.Info.Name,
			DeviceType: exposed.Info.DeviceType,
			Backend:    backend,
		},
	}
}

func (a *adapter) Name() string        { return a.info.Name }
func (a *adapter) Class() device.Class { return classify(a.info.DeviceType) }

// Info returns the adapter description.
func (a *adapter) Info() GPUInfo { return a.info }
