// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/marcher"
	"github.com/gogpu/marcher/device"
)

const (
	// BytesPerPixel is the output size of one pixel: RGBA float32.
	BytesPerPixel = 16

	// ScratchWords is the number of 32-bit scratch words per pixel:
	// accumulated RGB and two RNG state words.
	ScratchWords = 5
)

// Resources are the allocated buffers for the current effective size.
type Resources struct {
	// Output is the kernel's output buffer. With interop it is Shared.
	Output  device.Buffer
	Shared  device.Shared
	Scratch device.Buffer
	Width   uint32
	Height  uint32
}

// Pool owns the output and scratch buffers and the frame counter.
//
// The pool is Unallocated until Prepare. Resize and Rescale drop it back to
// Unallocated when they change the effective size, which is the requested
// size divided by the render scale. Allocation resets the frame counter.
type Pool struct {
	ctx     device.Context
	interop bool

	width, height int
	scale         int

	res   *Resources
	frame uint32
	hooks []func()
}

// NewPool returns an unallocated pool for a width × height target.
func NewPool(ctx device.Context, width, height int, interop bool) *Pool {
	return &Pool{
		ctx:     ctx,
		interop: interop,
		width:   max(width, 1),
		height:  max(height, 1),
		scale:   1,
	}
}

func effective(width, height, scale int) (int, int) {
	return max(1, width/scale), max(1, height/scale)
}

// Size returns the effective size.
func (p *Pool) Size() (width, height int) {
	return effective(p.width, p.height, p.scale)
}

// Resize sets the requested size. It reports whether the resources were
// torn down; a resize that keeps the effective size is a no-op.
func (p *Pool) Resize(width, height int) bool {
	width, height = max(width, 1), max(height, 1)
	ow, oh := p.Size()
	p.width, p.height = width, height
	return p.invalidate(ow, oh)
}

// Rescale sets the render scale, clamped to at least 1. It reports whether
// the resources were torn down.
func (p *Pool) Rescale(scale uint32) bool {
	s := int(min(max(scale, 1), math.MaxInt32))
	if s == p.scale {
		return false
	}
	ow, oh := p.Size()
	p.scale = s
	return p.invalidate(ow, oh)
}

func (p *Pool) invalidate(oldW, oldH int) bool {
	w, h := p.Size()
	if w == oldW && h == oldH {
		return false
	}
	if p.res == nil {
		return false
	}
	marcher.Logger().Debug("kernel: effective size changed", "from_w", oldW, "from_h", oldH, "to_w", w, "to_h", h)
	p.teardown()
	return true
}

// Allocated reports whether buffers exist.
func (p *Pool) Allocated() bool { return p.res != nil }

// Prepare allocates the buffers if needed and returns them.
func (p *Pool) Prepare() (Resources, error) {
	if p.res != nil {
		return *p.res, nil
	}
	w, h := p.Size()
	pixels := uint64(w) * uint64(h)

	res := &Resources{Width: uint32(w), Height: uint32(h)}
	if p.interop {
		shared, err := p.ctx.NewShared("marcher-output", pixels*BytesPerPixel)
		if err != nil {
			return Resources{}, dispatchErr("allocate shared output", err)
		}
		res.Shared = shared
		res.Output = shared
	} else {
		out, err := p.ctx.NewBuffer("marcher-output", pixels*BytesPerPixel)
		if err != nil {
			return Resources{}, dispatchErr("allocate output", err)
		}
		res.Output = out
	}
	scratch, err := p.ctx.NewBuffer("marcher-scratch", pixels*ScratchWords*4)
	if err != nil {
		destroyOutput(res)
		return Resources{}, dispatchErr("allocate scratch", err)
	}
	res.Scratch = scratch

	p.res = res
	p.frame = 0
	marcher.Logger().Debug("kernel: allocated", "width", w, "height", h, "interop", p.interop)
	return *res, nil
}

// OnTeardown registers fn to run first whenever the buffers are destroyed,
// so that programs drop references to them before they go away.
func (p *Pool) OnTeardown(fn func()) {
	p.hooks = append(p.hooks, fn)
}

// teardown destroys the buffers: hooks, then scratch, then the compute side
// of the output and last the graphics side of a shared output.
func (p *Pool) teardown() {
	if p.res == nil {
		return
	}
	for _, fn := range p.hooks {
		fn()
	}
	p.res.Scratch.Destroy()
	destroyOutput(p.res)
	p.res = nil
}

func destroyOutput(res *Resources) {
	if res.Shared != nil {
		res.Shared.Destroy()
		res.Shared.DestroyGraphics()
		return
	}
	if res.Output != nil {
		res.Output.Destroy()
	}
}

// Frame returns the accumulation counter.
func (p *Pool) Frame() uint32 { return p.frame }

// ResetFrame restarts progressive accumulation.
func (p *Pool) ResetFrame() { p.frame = 0 }

func (p *Pool) advance() { p.frame++ }

// Download returns the current image. With interop it is the shared
// handle; otherwise it blocks until queued work completes and copies the
// output to the host. Before the first allocation it returns Empty.
func (p *Pool) Download() (Image, error) {
	if p.res == nil {
		return Empty{}, nil
	}
	w, h := int(p.res.Width), int(p.res.Height)
	if p.res.Shared != nil {
		return Interop{Handle: p.res.Shared.Handle(), Width: w, Height: h}, nil
	}
	raw := make([]byte, w*h*BytesPerPixel)
	if err := p.ctx.Queue().Read(p.res.Output, raw); err != nil {
		return nil, dispatchErr("download", err)
	}
	pixels := make([]float32, w*h*4)
	for i := range pixels {
		pixels[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return HostBuffer{Pixels: pixels, Width: w, Height: h}, nil
}

// Close destroys the buffers.
func (p *Pool) Close() {
	p.teardown()
}
