// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package output converts downloaded images to 8-bit RGBA and writes them
// to disk.
package output

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/gogpu/marcher"
	"github.com/gogpu/marcher/kernel"
)

// Package errors.
var (
	// ErrNotHostImage is returned for interop images, which live on the
	// device and have no host pixels.
	ErrNotHostImage = errors.New("output: image is not a host buffer")

	// ErrEmptyImage is returned when nothing has been rendered.
	ErrEmptyImage = errors.New("output: empty image")

	// ErrBadBuffer is returned when the pixel count does not match the size.
	ErrBadBuffer = errors.New("output: pixel buffer does not match its size")
)

func toByte(v float32) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// ToRGBA converts hb to 8-bit RGBA, clamping each channel to [0, 1].
//
// When displayW and displayH are positive and differ from the buffer
// size, the result is scaled to the display size with nearest-neighbour
// sampling, undoing a render scale above 1.
func ToRGBA(hb kernel.HostBuffer, displayW, displayH int) (*image.RGBA, error) {
	if hb.Width <= 0 || hb.Height <= 0 || len(hb.Pixels) != hb.Width*hb.Height*4 {
		return nil, fmt.Errorf("%w: %dx%d with %d floats", ErrBadBuffer, hb.Width, hb.Height, len(hb.Pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, hb.Width, hb.Height))
	for i, v := range hb.Pixels {
		img.Pix[i] = toByte(v)
	}
	if displayW <= 0 || displayH <= 0 || (displayW == hb.Width && displayH == hb.Height) {
		return img, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, displayW, displayH))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

// Convert returns the host pixels of img as RGBA.
func Convert(img kernel.Image, displayW, displayH int) (*image.RGBA, error) {
	switch v := img.(type) {
	case kernel.HostBuffer:
		return ToRGBA(v, displayW, displayH)
	case kernel.Interop:
		return nil, ErrNotHostImage
	case kernel.Empty:
		return nil, ErrEmptyImage
	default:
		return nil, fmt.Errorf("output: unknown image %T", img)
	}
}

// DefaultPattern names frames frame00000.png, frame00001.png, ...
const DefaultPattern = "frame%05d.png"

// PNGSink writes each frame to Dir as a PNG file named by Pattern, a
// format string taking the frame index. A Pattern without a verb names a
// single file that every frame overwrites.
type PNGSink struct {
	Dir     string
	Pattern string

	// Width and Height are the display size; zero keeps the render size.
	Width  int
	Height int
}

// Path returns the file written for frame index.
func (p *PNGSink) Path(index int) string {
	pattern := p.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	if !strings.Contains(pattern, "%") {
		return filepath.Join(p.Dir, pattern)
	}
	return filepath.Join(p.Dir, fmt.Sprintf(pattern, index))
}

// WriteFrame encodes img and writes it to Path(index).
func (p *PNGSink) WriteFrame(index int, img kernel.Image) error {
	rgba, err := Convert(img, p.Width, p.Height)
	if err != nil {
		return err
	}
	if p.Dir != "" {
		if err := os.MkdirAll(p.Dir, 0o755); err != nil {
			return err
		}
	}
	path := p.Path(index)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, rgba); err != nil {
		f.Close()
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	marcher.Logger().Debug("output: frame written", "path", path)
	return nil
}
