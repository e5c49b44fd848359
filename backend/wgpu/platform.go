// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL backend.
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/marcher"
	"github.com/gogpu/marcher/device"
)

func init() {
	device.Register("vulkan", func() device.Platform {
		return newPlatform("vulkan", gputypes.BackendVulkan)
	})
}

// platform is a standalone HAL backend. The instance is created on first
// use and destroyed when the platform is idle: after a failed Open, on Idle
// with nothing open, and when the last context opened from it closes.
type platform struct {
	name    string
	backend gputypes.Backend

	mu       sync.Mutex
	instance hal.Instance
	open     int
}

// newPlatform returns nil when the backend is not compiled in.
func newPlatform(name string, backend gputypes.Backend) device.Platform {
	if _, ok := hal.GetBackend(backend); !ok {
		return nil
	}
	return &platform{name: name, backend: backend}
}

func (p *platform) Name() string { return p.name }

// instanceLocked must be called with p.mu held.
func (p *platform) instanceLocked() (hal.Instance, error) {
	if p.instance != nil {
		return p.instance, nil
	}
	backend, ok := hal.GetBackend(p.backend)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, p.name)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: create instance: %w", ErrBackendUnavailable, p.name, err)
	}
	p.instance = instance
	return instance, nil
}

func (p *platform) adaptersLocked() ([]*adapter, error) {
	instance, err := p.instanceLocked()
	if err != nil {
		return nil, err
	}
	exposed := instance.EnumerateAdapters(nil)
	out := make([]*adapter, len(exposed))
	for i := range exposed {
		out[i] = newAdapter(exposed[i], p.name)
	}
	return out, nil
}

func (p *platform) Devices() ([]device.Device, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	adapters, err := p.adaptersLocked()
	if err != nil {
		return nil, err
	}
	out := make([]device.Device, len(adapters))
	for i, a := range adapters {
		out[i] = a
	}
	return out, nil
}

// Open opens dev, or the first adapter matching opts when dev is nil.
// Standalone platforms never support interop.
func (p *platform) Open(dev device.Device, opts device.OpenOptions) (device.Context, error) {
	if opts.Interop {
		return nil, fmt.Errorf("%s: %w", p.name, device.ErrInteropUnsupported)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var chosen *adapter
	if dev != nil {
		a, ok := dev.(*adapter)
		if !ok || a.info.Backend != p.name {
			p.idleLocked()
			return nil, fmt.Errorf("%s: %w", p.name, ErrForeignObject)
		}
		chosen = a
	} else {
		adapters, err := p.adaptersLocked()
		if err != nil {
			p.idleLocked()
			return nil, err
		}
		for _, a := range adapters {
			if !opts.PreferGPU || a.Class() == device.ClassGPU {
				chosen = a
				break
			}
		}
		if chosen == nil {
			p.idleLocked()
			return nil, fmt.Errorf("%s: %w", p.name, device.ErrNoMatchingDevice)
		}
	}

	openDev, err := chosen.exposed.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		p.idleLocked()
		return nil, fmt.Errorf("%s: open %s: %w", p.name, chosen.info.Name, err)
	}
	p.open++
	marcher.Logger().Info("wgpu: opened device", "gpu", chosen.info.String())

	return newContext(contextConfig{
		name:    chosen.info.Name,
		device:  openDev.Device,
		queue:   openDev.Queue,
		owned:   true,
		onClose: p.release,
	}), nil
}

func (p *platform) release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open--
	p.idleLocked()
}

// Idle destroys the instance if no context is open.
func (p *platform) Idle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idleLocked()
}

// idleLocked must be called with p.mu held.
func (p *platform) idleLocked() {
	if p.open == 0 && p.instance != nil {
		p.instance.Destroy()
		p.instance = nil
	}
}

var _ device.Idler = (*platform)(nil)
