// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/marcher/device"
)

// halProvider is implemented by device providers that expose their HAL
// device and queue, such as a gogpu window.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// HostPlatform shares the device of a host application. It offers one
// device and is the only platform supporting interop: shared buffers live
// on the host's device, so the host can sample them without a copy.
type HostPlatform struct {
	device hal.Device
	queue  hal.Queue
	dev    hostDevice
}

// NewHostPlatform wraps provider. It fails with ErrNoHALAccess unless the
// provider implements HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewHostPlatform(provider gpucontext.DeviceProvider) (*HostPlatform, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALAccess
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok || dev == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALAccess)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALAccess)
	}
	return &HostPlatform{device: dev, queue: queue}, nil
}

type hostDevice struct{}

func (hostDevice) Name() string        { return "host device" }
func (hostDevice) Class() device.Class { return device.ClassGPU }

func (p *HostPlatform) Name() string { return "host" }

func (p *HostPlatform) Devices() ([]device.Device, error) {
	return []device.Device{p.dev}, nil
}

// Open returns a context on the shared device. The context does not
// destroy the device when closed.
func (p *HostPlatform) Open(dev device.Device, opts device.OpenOptions) (device.Context, error) {
	if dev != nil {
		if _, ok := dev.(hostDevice); !ok {
			return nil, fmt.Errorf("host: %w", ErrForeignObject)
		}
	}
	return newContext(contextConfig{
		name:    p.dev.Name(),
		device:  p.device,
		queue:   p.queue,
		interop: true,
	}), nil
}

var _ device.Platform = (*HostPlatform)(nil)
