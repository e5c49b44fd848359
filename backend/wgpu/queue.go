// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/marcher/device"
)

// waitTimeout bounds a single fence wait.
const waitTimeout = 30 * time.Second

// queue submits work with one fence whose value increases by one per
// submission.
type queue struct {
	ctx *halContext

	fence     hal.Fence
	submitted uint64
	completed uint64

	staging     hal.Buffer
	stagingSize uint64
}

func (q *queue) ensureFence() error {
	if q.fence != nil {
		return nil
	}
	fence, err := q.ctx.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	q.fence = fence
	return nil
}

// wait blocks until the submission with fence value v has completed.
func (q *queue) wait(v uint64) error {
	if v == 0 || v <= q.completed || q.fence == nil {
		return nil
	}
	ok, err := q.ctx.device.Wait(q.fence, v, waitTimeout)
	if err != nil {
		return fmt.Errorf("wgpu: wait: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (fence value %d)", ErrTimeout, v)
	}
	q.completed = v
	return nil
}

func (q *queue) submit(cmd hal.CommandBuffer) (uint64, error) {
	if err := q.ensureFence(); err != nil {
		return 0, err
	}
	v := q.submitted + 1
	if err := q.ctx.queue.Submit([]hal.CommandBuffer{cmd}, q.fence, v); err != nil {
		return 0, fmt.Errorf("wgpu: submit: %w", err)
	}
	q.submitted = v
	return v, nil
}

// Write uploads data after queued work completes, since the kernel may
// still be reading the buffer.
func (q *queue) Write(dst device.Buffer, data []byte) error {
	b, err := q.ctx.halBuffer(dst)
	if err != nil {
		return err
	}
	if uint64(len(data)) > b.size {
		return fmt.Errorf("wgpu: write of %d bytes into %s (%d bytes)", len(data), b.label, b.size)
	}
	if err := q.Finish(); err != nil {
		return err
	}
	q.ctx.queue.WriteBuffer(b.buf, 0, data)
	return nil
}

// Dispatch encodes one compute pass over width × height and submits it
// without waiting.
func (q *queue) Dispatch(p device.Program, width, height uint32) error {
	prog, ok := p.(*program)
	if !ok || prog.ctx != q.ctx {
		return ErrForeignObject
	}
	s, err := prog.prepareSlot()
	if err != nil {
		return err
	}

	encoder, err := q.ctx.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: prog.label + "_encoder"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(prog.label); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: prog.label + "_pass"})
	pass.SetPipeline(prog.pipeline)
	pass.SetBindGroup(0, s.group, nil)
	pass.Dispatch(workgroups(width), workgroups(height), 1)
	pass.End()
	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}

	v, err := q.submit(cmd)
	if err != nil {
		q.ctx.device.FreeCommandBuffer(cmd)
		return err
	}
	s.cmd = cmd
	s.fence = v
	prog.next = (prog.next + 1) % slotCount
	return nil
}

func (q *queue) ensureStaging(size uint64) error {
	if q.staging != nil && q.stagingSize >= size {
		return nil
	}
	if q.staging != nil {
		q.ctx.device.DestroyBuffer(q.staging)
		q.staging = nil
	}
	staging, err := q.ctx.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "marcher-staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	q.staging = staging
	q.stagingSize = size
	return nil
}

// Read copies src into a staging buffer after queued work and blocks
// until the copy completes.
func (q *queue) Read(src device.Buffer, dst []byte) error {
	b, err := q.ctx.halBuffer(src)
	if err != nil {
		return err
	}
	size := min(uint64(len(dst)), b.size)
	if size == 0 {
		return nil
	}
	if err := q.ensureStaging(size); err != nil {
		return err
	}

	encoder, err := q.ctx.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "marcher-readback"})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("marcher-readback"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	encoder.CopyBufferToBuffer(b.buf, q.staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: size},
	})
	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer q.ctx.device.FreeCommandBuffer(cmd)

	v, err := q.submit(cmd)
	if err != nil {
		return err
	}
	if err := q.wait(v); err != nil {
		return err
	}
	if err := q.ctx.queue.ReadBuffer(q.staging, 0, dst[:size]); err != nil {
		return fmt.Errorf("wgpu: readback: %w", err)
	}
	return nil
}

// Finish blocks until every submission has completed.
func (q *queue) Finish() error {
	return q.wait(q.submitted)
}

func (q *queue) close() error {
	err := q.Finish()
	if q.staging != nil {
		q.ctx.device.DestroyBuffer(q.staging)
		q.staging = nil
	}
	if q.fence != nil {
		q.ctx.device.DestroyFence(q.fence)
		q.fence = nil
	}
	return err
}

var _ device.Queue = (*queue)(nil)
