// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

// Class is the coarse category of a compute device.
type Class int

const (
	// ClassOther covers CPU, virtual and unknown devices.
	ClassOther Class = iota

	// ClassGPU covers discrete and integrated GPUs.
	ClassGPU
)

// String returns the class name.
func (c Class) String() string {
	if c == ClassGPU {
		return "gpu"
	}
	return "other"
}

// Platform is one compute API implementation, such as a Vulkan instance or
// a device shared by the host application.
type Platform interface {
	// Name identifies the platform in logs and listings.
	Name() string

	// Devices enumerates the platform's devices in a stable order.
	Devices() ([]Device, error)

	// Open builds a context. If dev is nil the platform picks a device,
	// restricted to ClassGPU when opts.PreferGPU is set. Open fails if
	// opts.Interop is set and the platform cannot share resources with the
	// host graphics API.
	Open(dev Device, opts OpenOptions) (Context, error)
}

// Idler is implemented by platforms that keep state created by Devices,
// such as an API instance, until a context is opened. Idle releases that
// state when no context from the platform is open; Devices recreates it.
// Devices returned earlier must not be passed to Open after Idle.
type Idler interface {
	Idle()
}

// Idle calls Idle on every platform that implements Idler.
func Idle(platforms []Platform) {
	for _, p := range platforms {
		if i, ok := p.(Idler); ok {
			i.Idle()
		}
	}
}

// OpenOptions configures Platform.Open.
type OpenOptions struct {
	// PreferGPU restricts automatic device choice to GPUs.
	PreferGPU bool

	// Interop requires graphics interoperability.
	Interop bool
}

// Device is an enumerated compute device.
type Device interface {
	Name() string
	Class() Class
}

// Context is a bound platform, device and queue. It is created once by
// Select and owned by the caller for the lifetime of the process.
type Context interface {
	// Name returns the device name.
	Name() string

	// Interop reports whether NewShared is available.
	Interop() bool

	// NewBuffer allocates a device buffer of size bytes usable as kernel
	// storage, copy source and copy destination.
	NewBuffer(label string, size uint64) (Buffer, error)

	// NewShared allocates a buffer shared with the host graphics API.
	NewShared(label string, size uint64) (Shared, error)

	// Compile builds a kernel program from source.
	Compile(label, source string) (Program, error)

	// Queue returns the context's command queue.
	Queue() Queue

	// Close releases the context. Resources created from it must be
	// destroyed first.
	Close() error
}

// Buffer is a device memory allocation.
type Buffer interface {
	Size() uint64

	// Destroy releases the compute-side allocation or binding.
	Destroy()
}

// Shared is a buffer visible to both the compute context and the host
// graphics API.
//
// Compute work touching it must be bracketed by Acquire and Release so
// that the two APIs never access it concurrently. On teardown, Destroy
// (the compute side) must be called before DestroyGraphics.
type Shared interface {
	Buffer

	// Handle returns the graphics-side handle passed to the host.
	Handle() any

	// Acquire hands the buffer to the compute API.
	Acquire() error

	// Release hands the buffer back to the graphics API once the queued
	// compute work that uses it has completed.
	Release() error

	// DestroyGraphics destroys the graphics-side resource.
	DestroyGraphics()
}

// Bindings are the kernel arguments for one dispatch.
type Bindings struct {
	Output  Buffer
	Scratch Buffer
	Config  Buffer
	Width   uint32
	Height  uint32
	Frame   uint32
}

// Program is a compiled kernel.
type Program interface {
	// Bind sets the kernel arguments used by the next dispatch.
	Bind(b Bindings) error

	// Unbind drops any references the program holds to bound buffers.
	Unbind()

	// Destroy releases the program.
	Destroy()
}

// Queue submits work to the device.
type Queue interface {
	// Write uploads data to dst at offset 0.
	Write(dst Buffer, data []byte) error

	// Dispatch runs p over a width × height grid with its bound arguments.
	// It does not wait for completion.
	Dispatch(p Program, width, height uint32) error

	// Read blocks until previously queued work completes, then copies the
	// first len(dst) bytes of src to dst.
	Read(src Buffer, dst []byte) error

	// Finish blocks until all previously queued work has completed.
	Finish() error
}
