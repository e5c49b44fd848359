// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

// Image is the result of a download. It is one of HostBuffer, Interop or
// Empty; consumers switch on the concrete type.
type Image interface {
	// Size returns the effective render size in pixels.
	Size() (width, height int)

	image()
}

// HostBuffer holds pixels copied back from the device: Width × Height
// RGBA float32 quadruples in row-major order.
type HostBuffer struct {
	Pixels []float32
	Width  int
	Height int
}

// Interop is a zero-copy result: the graphics-side handle of the shared
// output buffer.
type Interop struct {
	Handle any
	Width  int
	Height int
}

// Empty is returned when nothing has been rendered yet.
type Empty struct{}

func (h HostBuffer) Size() (int, int) { return h.Width, h.Height }
func (i Interop) Size() (int, int)    { return i.Width, i.Height }
func (Empty) Size() (int, int)        { return 0, 0 }

func (HostBuffer) image() {}
func (Interop) image()    {}
func (Empty) image()      {}
