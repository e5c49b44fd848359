// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package offline renders still images and keyframe animations.
package offline

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/marcher"
	"github.com/gogpu/marcher/kernel"
	"github.com/gogpu/marcher/keyframe"
	"github.com/gogpu/marcher/settings"
)

// ErrInvalidOptions is returned for non-positive frame or sample counts.
var ErrInvalidOptions = errors.New("offline: invalid options")

// Renderer is the controller surface used for offline rendering.
// *kernel.Controller implements it.
type Renderer interface {
	Step(s *settings.Settings, force bool) error
	Sync() error
	Download() (kernel.Image, error)
}

var _ Renderer = (*kernel.Controller)(nil)

// Sink receives finished frames.
type Sink interface {
	WriteFrame(index int, img kernel.Image) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(index int, img kernel.Image) error

// WriteFrame calls f.
func (f SinkFunc) WriteFrame(index int, img kernel.Image) error { return f(index, img) }

// Options configures Animate.
type Options struct {
	// Frames is the number of output frames.
	Frames int

	// Samples is the number of accumulated dispatches per frame.
	Samples int

	// Progress, if set, is called after each frame.
	Progress func(done, total int)
}

func (o Options) validate() error {
	if o.Frames < 1 || o.Samples < 1 {
		return fmt.Errorf("%w: frames=%d samples=%d", ErrInvalidOptions, o.Frames, o.Samples)
	}
	return nil
}

// frameTime maps frame i of n onto [0, 1]; a single frame sits at 0.
func frameTime(i, n int) float32 {
	if n <= 1 {
		return 0
	}
	return float32(i) / float32(n-1)
}

// Animate renders opts.Frames frames spread evenly over the keyframe
// list, from the first keyframe to the last. Each frame accumulates
// opts.Samples dispatches, waits for the device and is handed to sink.
//
// ctx is checked between frames; a dispatch that has been queued always
// runs to completion.
func Animate(ctx context.Context, r Renderer, list *keyframe.List, opts Options, sink Sink) error {
	if err := opts.validate(); err != nil {
		return err
	}
	log := marcher.Logger()
	for i := range opts.Frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := list.Interpolate(frameTime(i, opts.Frames))
		if err != nil {
			return fmt.Errorf("offline: frame %d: %w", i, err)
		}
		if err := render(r, s, opts.Samples, i, sink); err != nil {
			return err
		}
		log.Info("offline: frame done", "frame", i+1, "of", opts.Frames)
		if opts.Progress != nil {
			opts.Progress(i+1, opts.Frames)
		}
	}
	return nil
}

// Still renders a single image of s with the given number of samples.
func Still(ctx context.Context, r Renderer, s *settings.Settings, samples int, sink Sink) error {
	if err := (Options{Frames: 1, Samples: samples}).validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return render(r, s, samples, 0, sink)
}

func render(r Renderer, s *settings.Settings, samples, index int, sink Sink) error {
	for range samples {
		if err := r.Step(s, false); err != nil {
			return fmt.Errorf("offline: frame %d: %w", index, err)
		}
	}
	if err := r.Sync(); err != nil {
		return fmt.Errorf("offline: frame %d: %w", index, err)
	}
	img, err := r.Download()
	if err != nil {
		return fmt.Errorf("offline: frame %d: %w", index, err)
	}
	if err := sink.WriteFrame(index, img); err != nil {
		return fmt.Errorf("offline: frame %d: write: %w", index, err)
	}
	return nil
}
