// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/marcher"
	"github.com/gogpu/marcher/device"
)

type contextConfig struct {
	name    string
	device  hal.Device
	queue   hal.Queue
	interop bool
	owned   bool // false when the device belongs to a host application
	onClose func()
}

// halContext implements device.Context on a HAL device.
type halContext struct {
	contextConfig
	q      *queue
	closed bool
}

func newContext(cfg contextConfig) *halContext {
	c := &halContext{contextConfig: cfg}
	c.q = &queue{ctx: c}
	return c
}

func (c *halContext) Name() string        { return c.name }
func (c *halContext) Interop() bool       { return c.interop }
func (c *halContext) Queue() device.Queue { return c.q }

// storageUsage is the usage of every kernel-visible buffer.
const storageUsage = gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst

func (c *halContext) createBuffer(label string, size uint64) (*buffer, error) {
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: storageUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer %s: %w", label, err)
	}
	marcher.Logger().Debug("wgpu: buffer created", "label", label, "size", size)
	return &buffer{ctx: c, buf: buf, size: size, label: label}, nil
}

func (c *halContext) NewBuffer(label string, size uint64) (device.Buffer, error) {
	return c.createBuffer(label, size)
}

func (c *halContext) NewShared(label string, size uint64) (device.Shared, error) {
	if !c.interop {
		return nil, device.ErrInteropUnsupported
	}
	b, err := c.createBuffer(label, size)
	if err != nil {
		return nil, err
	}
	return &shared{buffer: b}, nil
}

func (c *halContext) Compile(label, source string) (device.Program, error) {
	return newProgram(c, label, source)
}

// Close waits for queued work, releases the queue's resources and, for
// devices the context owns, the device.
func (c *halContext) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	err := c.q.close()
	if c.owned {
		c.device.Destroy()
	}
	if c.onClose != nil {
		c.onClose()
	}
	return err
}

// buffer is a storage buffer.
type buffer struct {
	ctx       *halContext
	buf       hal.Buffer
	size      uint64
	label     string
	destroyed bool
}

func (b *buffer) Size() uint64 { return b.size }

// Destroy waits for queued work that may use the buffer, then frees it.
func (b *buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	if err := b.ctx.q.Finish(); err != nil {
		marcher.Logger().Warn("wgpu: wait before destroy failed", "label", b.label, "err", err)
	}
	b.ctx.device.DestroyBuffer(b.buf)
}

// shared is a storage buffer on the host's device. The host graphics
// pipeline reads it through Handle.
type shared struct {
	*buffer
	acquired bool
	released bool // compute side destroyed
}

// Handle returns the hal.Buffer.
func (s *shared) Handle() any { return s.buf }

func (s *shared) Acquire() error {
	s.acquired = true
	return nil
}

// Release waits until the compute work queued since Acquire has completed,
// so the host never reads a partially written buffer.
func (s *shared) Release() error {
	if !s.acquired {
		return nil
	}
	s.acquired = false
	return s.ctx.q.Finish()
}

// Destroy drops the compute side: it waits for queued work and stops
// treating the buffer as a kernel resource. The memory itself belongs to
// the graphics side and is freed by DestroyGraphics.
func (s *shared) Destroy() {
	if s.released {
		return
	}
	s.released = true
	if err := s.ctx.q.Finish(); err != nil {
		marcher.Logger().Warn("wgpu: wait before release failed", "label", s.label, "err", err)
	}
}

func (s *shared) DestroyGraphics() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.ctx.device.DestroyBuffer(s.buf)
}

// halBuffer returns the HAL buffer behind a device.Buffer created by c.
func (c *halContext) halBuffer(b device.Buffer) (*buffer, error) {
	switch v := b.(type) {
	case *buffer:
		if v.ctx == c && !v.destroyed {
			return v, nil
		}
	case *shared:
		if v.ctx == c && !v.destroyed && !v.released {
			return v.buffer, nil
		}
	}
	return nil, ErrForeignObject
}

var (
	_ device.Context = (*halContext)(nil)
	_ device.Shared  = (*shared)(nil)
)
