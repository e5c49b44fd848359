// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/marcher"
	"github.com/gogpu/marcher/device"
)

const (
	// paramsSize is the size of the Params uniform: width, height, frame
	// and padding.
	paramsSize = 16

	// slotCount bounds the number of submissions in flight.
	slotCount = 2

	workgroupSize = 8
)

// slot is one set of per-dispatch resources. A slot is reused only after
// the submission that last used it has completed.
type slot struct {
	uniform hal.Buffer
	group   hal.BindGroup
	key     [3]*buffer
	cmd     hal.CommandBuffer
	fence   uint64
}

// program is a compiled compute pipeline.
type program struct {
	ctx   *halContext
	label string

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	slots [slotCount]slot
	next  int

	bound  [3]*buffer
	params [paramsSize]byte
	ok     bool
}

func newProgram(c *halContext, label, source string) (*program, error) {
	spirv, err := compileWGSL(source)
	if err != nil {
		return nil, err
	}
	p := &program{ctx: c, label: label}
	if err := p.create(spirv); err != nil {
		p.Destroy()
		return nil, err
	}
	marcher.Logger().Debug("wgpu: program compiled", "label", label, "spirv_words", len(spirv))
	return p, nil
}

func (p *program) create(spirv []uint32) error {
	d := p.ctx.device
	var err error

	p.shader, err = d.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}

	p.bindLayout, err = d.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: p.label + "_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}

	p.pipeLayout, err = d.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: p.label + "_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	p.pipeline, err = d.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   p.label,
		Layout:  p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}

	for i := range p.slots {
		p.slots[i].uniform, err = d.CreateBuffer(&hal.BufferDescriptor{
			Label: p.label + "_params",
			Size:  paramsSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create params buffer: %w", err)
		}
	}
	return nil
}

// encodeParams packs the Params uniform.
func encodeParams(width, height, frame uint32) [paramsSize]byte {
	var b [paramsSize]byte
	binary.LittleEndian.PutUint32(b[0:], width)
	binary.LittleEndian.PutUint32(b[4:], height)
	binary.LittleEndian.PutUint32(b[8:], frame)
	return b
}

// workgroups returns the dispatch size covering n invocations.
func workgroups(n uint32) uint32 {
	return (n + workgroupSize - 1) / workgroupSize
}

// Bind records the arguments for the next dispatch. Bind groups are
// rebuilt lazily when the buffers change.
func (p *program) Bind(b device.Bindings) error {
	var key [3]*buffer
	for i, buf := range []device.Buffer{b.Output, b.Scratch, b.Config} {
		hb, err := p.ctx.halBuffer(buf)
		if err != nil {
			return fmt.Errorf("wgpu: bind %s: argument %d: %w", p.label, i, err)
		}
		key[i] = hb
	}
	p.bound = key
	p.params = encodeParams(b.Width, b.Height, b.Frame)
	p.ok = true
	return nil
}

// prepareSlot waits for the next slot, refreshes its bind group and
// uniform, and returns it.
func (p *program) prepareSlot() (*slot, error) {
	if !p.ok {
		return nil, ErrNotBound
	}
	s := &p.slots[p.next]
	if err := p.ctx.q.wait(s.fence); err != nil {
		return nil, err
	}
	if s.cmd != nil {
		p.ctx.device.FreeCommandBuffer(s.cmd)
		s.cmd = nil
	}
	if s.group == nil || s.key != p.bound {
		if s.group != nil {
			p.ctx.device.DestroyBindGroup(s.group)
			s.group = nil
		}
		out, scratch, cfg := p.bound[0], p.bound[1], p.bound[2]
		group, err := p.ctx.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  p.label + "_bind_group",
			Layout: p.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: out.buf.NativeHandle(), Offset: 0, Size: out.size}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: scratch.buf.NativeHandle(), Offset: 0, Size: scratch.size}},
				{Binding: 2, Resource: gputypes.BufferBinding{Buffer: cfg.buf.NativeHandle(), Offset: 0, Size: cfg.size}},
				{Binding: 3, Resource: gputypes.BufferBinding{Buffer: s.uniform.NativeHandle(), Offset: 0, Size: paramsSize}},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("create bind group: %w", err)
		}
		s.group = group
		s.key = p.bound
	}
	p.ctx.queue.WriteBuffer(s.uniform, 0, p.params[:])
	return s, nil
}

// Unbind waits for queued work and drops the bind groups, which reference
// the bound buffers.
func (p *program) Unbind() {
	if err := p.ctx.q.Finish(); err != nil {
		marcher.Logger().Warn("wgpu: wait before unbind failed", "label", p.label, "err", err)
	}
	for i := range p.slots {
		s := &p.slots[i]
		if s.group != nil {
			p.ctx.device.DestroyBindGroup(s.group)
			s.group = nil
		}
		s.key = [3]*buffer{}
	}
	p.bound = [3]*buffer{}
	p.ok = false
}

// Destroy releases the pipeline and its resources.
func (p *program) Destroy() {
	d := p.ctx.device
	p.Unbind()
	for i := range p.slots {
		s := &p.slots[i]
		if s.cmd != nil {
			d.FreeCommandBuffer(s.cmd)
			s.cmd = nil
		}
		if s.uniform != nil {
			d.DestroyBuffer(s.uniform)
			s.uniform = nil
		}
	}
	if p.pipeline != nil {
		d.DestroyComputePipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		d.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		d.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		d.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

var _ device.Program = (*program)(nil)
