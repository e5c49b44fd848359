// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import (
	"bytes"
	"errors"

	"github.com/gogpu/marcher"
	"github.com/gogpu/marcher/device"
	"github.com/gogpu/marcher/settings"
)

// Config configures a Controller.
type Config struct {
	Width  int
	Height int

	// Interop renders into a buffer shared with the host graphics API.
	// The context must support it.
	Interop bool

	// Source is the kernel body. Nil selects EmbeddedSource.
	Source Source
}

// Controller runs one render step per frame: change detection, kernel
// rebuilds, argument binding and dispatch.
//
// A Controller is driven from a single goroutine.
type Controller struct {
	ctx    device.Context
	pool   *Pool
	source Source

	program  device.Program
	buildErr error

	cfg     device.Buffer
	lastCfg []byte
	last    *settings.Settings

	closed bool
}

// NewController returns a controller rendering at width × height. No device
// work happens until the first Step.
func NewController(ctx device.Context, cfg Config) *Controller {
	src := cfg.Source
	if src == nil {
		src = EmbeddedSource{}
	}
	c := &Controller{
		ctx:    ctx,
		pool:   NewPool(ctx, cfg.Width, cfg.Height, cfg.Interop),
		source: src,
	}
	c.pool.OnTeardown(func() {
		if c.program != nil {
			c.program.Unbind()
		}
	})
	return c
}

// Step renders one frame with s:
//
//  1. rebuild the kernel if s requests it, force is set or none exists;
//     a failed build keeps the previous program;
//  2. upload the configuration if its bytes changed;
//  3. apply render_scale to the pool;
//  4. bind the arguments and dispatch, bracketed by acquire and release
//     of the shared output with interop.
//
// A settings change restarts accumulation at frame 0. The change is
// committed only once its dispatch succeeds, so a failed Step leaves the
// frame counter unchanged and the next Step renders the change again.
// Without a program the dispatch is skipped. Device errors wrap
// ErrDispatch. Step does not wait for the dispatch to complete.
func (c *Controller) Step(s *settings.Settings, force bool) error {
	if c.closed {
		return ErrClosed
	}

	if rebuild := s.CheckAndClearRebuild(); rebuild || force || c.program == nil {
		c.rebuild(s)
	}

	change, err := c.upload(s)
	if err != nil {
		return err
	}

	scale, err := s.Uint("render_scale")
	if err != nil {
		return err
	}
	c.pool.Rescale(scale)

	if c.program == nil {
		c.commit(change)
		return nil
	}
	return c.dispatch(change)
}

func (c *Controller) rebuild(s *settings.Settings) {
	log := marcher.Logger()
	prog, err := c.build(s)
	if err != nil {
		c.buildErr = &BuildError{Source: c.source.Name(), Err: err}
		log.Warn("kernel: build failed, keeping previous program",
			"source", c.source.Name(), "have_program", c.program != nil, "err", err)
		return
	}
	if c.program != nil {
		c.program.Unbind()
		c.program.Destroy()
	}
	c.program = prog
	c.buildErr = nil
	c.pool.ResetFrame()
	log.Info("kernel: rebuilt", "source", c.source.Name())
}

func (c *Controller) build(s *settings.Settings) (device.Program, error) {
	body, err := c.source.Load()
	if err != nil {
		return nil, err
	}
	src, err := Generate(body, s)
	if err != nil {
		return nil, err
	}
	return c.ctx.Compile("marcher-kernel", src)
}

// change is a settings change detected by upload, committed by the first
// successful dispatch.
type change struct {
	cfg      []byte             // uploaded bytes, nil if unchanged
	snapshot *settings.Settings // nil if values are unchanged
}

// upload writes the configuration buffer when its bytes differ from the
// last committed upload and reports the change, or nil.
func (c *Controller) upload(s *settings.Settings) (*change, error) {
	data, err := s.MarshalBinary()
	if err != nil {
		return nil, err
	}
	var ch change
	if !bytes.Equal(data, c.lastCfg) {
		if c.cfg == nil || c.cfg.Size() != uint64(len(data)) {
			buf, err := c.ctx.NewBuffer("marcher-config", uint64(len(data)))
			if err != nil {
				return nil, dispatchErr("allocate config", err)
			}
			if c.cfg != nil {
				c.cfg.Destroy()
			}
			c.cfg = buf
		}
		if err := c.ctx.Queue().Write(c.cfg, data); err != nil {
			return nil, dispatchErr("upload config", err)
		}
		ch.cfg = data
	}
	if !s.Equal(c.last) {
		ch.snapshot = s.Clone()
	}
	if ch.cfg == nil && ch.snapshot == nil {
		return nil, nil
	}
	return &ch, nil
}

func (c *Controller) commit(ch *change) {
	if ch == nil {
		return
	}
	if ch.cfg != nil {
		c.lastCfg = ch.cfg
	}
	if ch.snapshot != nil {
		c.last = ch.snapshot
	}
	c.pool.ResetFrame()
}

func (c *Controller) dispatch(ch *change) error {
	res, err := c.pool.Prepare()
	if err != nil {
		return err
	}
	frame := c.pool.Frame()
	if ch != nil {
		frame = 0
	}
	err = c.program.Bind(device.Bindings{
		Output:  res.Output,
		Scratch: res.Scratch,
		Config:  c.cfg,
		Width:   res.Width,
		Height:  res.Height,
		Frame:   frame,
	})
	if err != nil {
		return dispatchErr("bind", err)
	}

	if res.Shared != nil {
		if err := res.Shared.Acquire(); err != nil {
			return dispatchErr("acquire", err)
		}
	}
	err = c.ctx.Queue().Dispatch(c.program, res.Width, res.Height)
	if res.Shared != nil {
		if rerr := res.Shared.Release(); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}
	if err != nil {
		return dispatchErr("dispatch", err)
	}
	c.commit(ch)
	c.pool.advance()
	return nil
}

// LastBuildError returns the most recent build failure, or nil after a
// successful build.
func (c *Controller) LastBuildError() error { return c.buildErr }

// HasProgram reports whether a kernel is available for dispatch.
func (c *Controller) HasProgram() bool { return c.program != nil }

// Resize changes the target size. Buffers are reallocated on the next Step
// only if the effective size changed.
func (c *Controller) Resize(width, height int) {
	if c.pool.Resize(width, height) {
		c.pool.ResetFrame()
	}
}

// Size returns the effective render size.
func (c *Controller) Size() (width, height int) { return c.pool.Size() }

// Frame returns the accumulation counter.
func (c *Controller) Frame() uint32 { return c.pool.Frame() }

// Download returns the rendered image; see Pool.Download.
func (c *Controller) Download() (Image, error) {
	if c.closed {
		return nil, ErrClosed
	}
	return c.pool.Download()
}

// Sync blocks until all queued device work has completed.
func (c *Controller) Sync() error {
	if c.closed {
		return ErrClosed
	}
	if err := c.ctx.Queue().Finish(); err != nil {
		return dispatchErr("finish", err)
	}
	return nil
}

// Close releases the program and buffers. The context stays open.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.pool.Close()
	if c.program != nil {
		c.program.Destroy()
		c.program = nil
	}
	if c.cfg != nil {
		c.cfg.Destroy()
		c.cfg = nil
	}
}
