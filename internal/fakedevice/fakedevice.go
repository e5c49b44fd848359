// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package fakedevice is an in-memory implementation of the device
// interfaces for tests. It records every allocation, dispatch and teardown
// in a shared event log and can be told to fail on demand.
package fakedevice

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/gogpu/marcher/device"
)

// Errors returned by the fake.
var (
	ErrForeignBuffer = errors.New("fakedevice: buffer from another implementation")
	ErrDestroyed     = errors.New("fakedevice: use of destroyed buffer")
	ErrNotAcquired   = errors.New("fakedevice: shared buffer used without acquire")
)

// Log is an ordered, concurrency-safe event list.
type Log struct {
	mu     sync.Mutex
	events []string
}

// Add appends a formatted event.
func (l *Log) Add(format string, args ...any) {
	l.mu.Lock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (l *Log) Events() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.events)
}

// Reset clears the log.
func (l *Log) Reset() {
	l.mu.Lock()
	l.events = nil
	l.mu.Unlock()
}

// Device is a fake enumerated device.
type Device struct {
	DeviceName  string
	DeviceClass device.Class
}

func (d *Device) Name() string        { return d.DeviceName }
func (d *Device) Class() device.Class { return d.DeviceClass }

// Platform is a fake platform.
type Platform struct {
	PlatformName string
	Devs         []*Device

	// DevicesErr is returned by Devices.
	DevicesErr error

	// OpenErr, when set, makes every Open fail.
	OpenErr error

	// InteropCapable allows Open with OpenOptions.Interop.
	InteropCapable bool

	Log *Log

	mu     sync.Mutex
	opened []*Context
	idled  int
}

// NewPlatform returns a platform with the given devices and a fresh log.
func NewPlatform(name string, devs ...*Device) *Platform {
	return &Platform{PlatformName: name, Devs: devs, Log: &Log{}}
}

func (p *Platform) Name() string { return p.PlatformName }

func (p *Platform) Devices() ([]device.Device, error) {
	if p.DevicesErr != nil {
		return nil, p.DevicesErr
	}
	out := make([]device.Device, len(p.Devs))
	for i, d := range p.Devs {
		out[i] = d
	}
	return out, nil
}

func (p *Platform) Open(dev device.Device, opts device.OpenOptions) (device.Context, error) {
	if p.OpenErr != nil {
		return nil, p.OpenErr
	}
	if opts.Interop && !p.InteropCapable {
		return nil, device.ErrInteropUnsupported
	}
	var chosen *Device
	if dev != nil {
		d, ok := dev.(*Device)
		if !ok || !slices.Contains(p.Devs, d) {
			return nil, device.ErrNoMatchingDevice
		}
		chosen = d
	} else {
		for _, d := range p.Devs {
			if !opts.PreferGPU || d.DeviceClass == device.ClassGPU {
				chosen = d
				break
			}
		}
	}
	if chosen == nil {
		return nil, device.ErrNoMatchingDevice
	}
	ctx := NewContext(chosen.DeviceName, opts.Interop)
	if p.Log != nil {
		ctx.Log = p.Log
	}
	p.mu.Lock()
	p.opened = append(p.opened, ctx)
	p.mu.Unlock()
	return ctx, nil
}

// Idle counts calls; see Idled.
func (p *Platform) Idle() {
	p.mu.Lock()
	p.idled++
	p.mu.Unlock()
}

// Idled returns how many times Idle was called.
func (p *Platform) Idled() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idled
}

// Opened returns the contexts built by Open.
func (p *Platform) Opened() []*Context {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.opened)
}

// Context is a fake compute context.
type Context struct {
	DeviceName string
	InteropOn  bool
	Log        *Log

	// CompileErr, when set, makes Compile fail.
	CompileErr error
	// BindErr, DispatchErr, WriteErr and ReadErr make the matching call fail.
	BindErr     error
	DispatchErr error
	WriteErr    error
	ReadErr     error

	mu       sync.Mutex
	buffers  []*Buffer
	programs []*Program
	queue    *Queue
	closed   bool
}

// NewContext returns a standalone fake context.
func NewContext(name string, interop bool) *Context {
	c := &Context{DeviceName: name, InteropOn: interop, Log: &Log{}}
	c.queue = &Queue{ctx: c}
	return c
}

func (c *Context) Name() string  { return c.DeviceName }
func (c *Context) Interop() bool { return c.InteropOn }

func (c *Context) NewBuffer(label string, size uint64) (device.Buffer, error) {
	b := c.alloc(label, size)
	c.Log.Add("alloc %s %d", label, size)
	return b, nil
}

func (c *Context) NewShared(label string, size uint64) (device.Shared, error) {
	if !c.InteropOn {
		return nil, device.ErrInteropUnsupported
	}
	s := &Shared{Buffer: c.alloc(label, size)}
	c.Log.Add("alloc-shared %s %d", label, size)
	return s, nil
}

func (c *Context) alloc(label string, size uint64) *Buffer {
	b := &Buffer{Label: label, Data: make([]byte, size), log: c.Log}
	c.mu.Lock()
	c.buffers = append(c.buffers, b)
	c.mu.Unlock()
	return b
}

func (c *Context) Compile(label, source string) (device.Program, error) {
	if c.CompileErr != nil {
		c.Log.Add("compile-failed %s", label)
		return nil, c.CompileErr
	}
	p := &Program{Label: label, Source: source, ctx: c}
	c.mu.Lock()
	c.programs = append(c.programs, p)
	c.mu.Unlock()
	c.Log.Add("compile %s", label)
	return p, nil
}

func (c *Context) Queue() device.Queue { return c.queue }

func (c *Context) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.Log.Add("close")
	return nil
}

// Closed reports whether Close was called.
func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Buffers returns every buffer allocated so far, including destroyed ones.
func (c *Context) Buffers() []*Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.buffers)
}

// Live returns the buffers that have not been destroyed.
func (c *Context) Live() []*Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*Buffer
	for _, b := range c.buffers {
		if !b.Destroyed {
			out = append(out, b)
		}
	}
	return out
}

// Programs returns every program compiled so far.
func (c *Context) Programs() []*Program {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.programs)
}

// FakeQueue returns the concrete queue.
func (c *Context) FakeQueue() *Queue { return c.queue }

// Buffer is a fake device buffer backed by host memory.
type Buffer struct {
	Label     string
	Data      []byte
	Destroyed bool
	log       *Log
}

func (b *Buffer) Size() uint64 { return uint64(len(b.Data)) }

func (b *Buffer) Destroy() {
	b.Destroyed = true
	b.log.Add("destroy %s", b.Label)
}

// Shared is a fake interop buffer.
type Shared struct {
	*Buffer
	Acquired          bool
	GraphicsDestroyed bool
}

func (s *Shared) Handle() any { return s }

func (s *Shared) Acquire() error {
	s.Acquired = true
	s.log.Add("acquire %s", s.Label)
	return nil
}

func (s *Shared) Release() error {
	s.Acquired = false
	s.log.Add("release %s", s.Label)
	return nil
}

func (s *Shared) DestroyGraphics() {
	s.GraphicsDestroyed = true
	s.log.Add("destroy-graphics %s", s.Label)
}

// Program is a fake compiled kernel.
type Program struct {
	Label     string
	Source    string
	Bound     device.Bindings
	Unbound   bool
	Destroyed bool
	ctx       *Context
}

func (p *Program) Bind(b device.Bindings) error {
	if p.ctx.BindErr != nil {
		return p.ctx.BindErr
	}
	p.Bound = b
	p.Unbound = false
	p.ctx.Log.Add("bind %dx%d frame=%d", b.Width, b.Height, b.Frame)
	return nil
}

func (p *Program) Unbind() {
	p.Bound = device.Bindings{}
	p.Unbound = true
	p.ctx.Log.Add("unbind %s", p.Label)
}

func (p *Program) Destroy() {
	p.Destroyed = true
	p.ctx.Log.Add("destroy-program %s", p.Label)
}

// Dispatch records one kernel launch.
type Dispatch struct {
	Program *Program
	Width   uint32
	Height  uint32
	Frame   uint32
}

// Queue is a fake command queue. Dispatch fills every output channel with
// frame+1 so that downloads observe which dispatch produced them.
type Queue struct {
	ctx *Context

	mu         sync.Mutex
	dispatches []Dispatch
	finishes   int
}

func rawBuffer(b device.Buffer) (*Buffer, error) {
	switch v := b.(type) {
	case *Buffer:
		return v, nil
	case *Shared:
		return v.Buffer, nil
	default:
		return nil, ErrForeignBuffer
	}
}

func (q *Queue) Write(dst device.Buffer, data []byte) error {
	if q.ctx.WriteErr != nil {
		return q.ctx.WriteErr
	}
	b, err := rawBuffer(dst)
	if err != nil {
		return err
	}
	if b.Destroyed {
		return ErrDestroyed
	}
	if len(data) > len(b.Data) {
		return fmt.Errorf("fakedevice: write of %d bytes into %d byte buffer", len(data), len(b.Data))
	}
	copy(b.Data, data)
	q.ctx.Log.Add("write %s %d", b.Label, len(data))
	return nil
}

func (q *Queue) Dispatch(p device.Program, width, height uint32) error {
	if q.ctx.DispatchErr != nil {
		return q.ctx.DispatchErr
	}
	prog, ok := p.(*Program)
	if !ok {
		return fmt.Errorf("fakedevice: foreign program %T", p)
	}
	if s, ok := prog.Bound.Output.(*Shared); ok && !s.Acquired {
		return ErrNotAcquired
	}
	out, err := rawBuffer(prog.Bound.Output)
	if err != nil {
		return err
	}
	if out.Destroyed {
		return ErrDestroyed
	}
	v := math.Float32bits(float32(prog.Bound.Frame + 1))
	for i := 0; i+4 <= len(out.Data); i += 4 {
		binary.LittleEndian.PutUint32(out.Data[i:], v)
	}
	q.mu.Lock()
	q.dispatches = append(q.dispatches, Dispatch{Program: prog, Width: width, Height: height, Frame: prog.Bound.Frame})
	q.mu.Unlock()
	q.ctx.Log.Add("dispatch %dx%d frame=%d", width, height, prog.Bound.Frame)
	return nil
}

func (q *Queue) Read(src device.Buffer, dst []byte) error {
	if q.ctx.ReadErr != nil {
		return q.ctx.ReadErr
	}
	b, err := rawBuffer(src)
	if err != nil {
		return err
	}
	if b.Destroyed {
		return ErrDestroyed
	}
	copy(dst, b.Data)
	q.ctx.Log.Add("read %s %d", b.Label, len(dst))
	return nil
}

func (q *Queue) Finish() error {
	q.mu.Lock()
	q.finishes++
	q.mu.Unlock()
	q.ctx.Log.Add("finish")
	return nil
}

// Dispatches returns the recorded kernel launches.
func (q *Queue) Dispatches() []Dispatch {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.dispatches)
}

// Finishes returns how many times Finish was called.
func (q *Queue) Finishes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.finishes
}

var (
	_ device.Platform = (*Platform)(nil)
	_ device.Idler    = (*Platform)(nil)
	_ device.Context  = (*Context)(nil)
	_ device.Shared   = (*Shared)(nil)
	_ device.Program  = (*Program)(nil)
	_ device.Queue    = (*Queue)(nil)
)
