// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package offline_test

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/marcher/internal/fakedevice"
	"github.com/gogpu/marcher/kernel"
	"github.com/gogpu/marcher/keyframe"
	"github.com/gogpu/marcher/offline"
	"github.com/gogpu/marcher/settings"
)

type frame struct {
	index int
	img   kernel.Image
}

func collect(frames *[]frame) offline.Sink {
	return offline.SinkFunc(func(i int, img kernel.Image) error {
		*frames = append(*frames, frame{i, img})
		return nil
	})
}

func newController(t *testing.T) (*kernel.Controller, *fakedevice.Context) {
	t.Helper()
	ctx := fakedevice.NewContext("fake", false)
	c := kernel.NewController(ctx, kernel.Config{Width: 4, Height: 2})
	t.Cleanup(c.Close)
	return c, ctx
}

func TestAnimate(t *testing.T) {
	c, ctx := newController(t)
	list, err := keyframe.Build(bufio.NewScanner(strings.NewReader("fov = 1\n---\nfov = 2\n---\n")), settings.New())
	if err != nil {
		t.Fatal(err)
	}

	var frames []frame
	var progress []int
	err = offline.Animate(context.Background(), c, list, offline.Options{
		Frames:   3,
		Samples:  4,
		Progress: func(done, total int) { progress = append(progress, done) },
	}, collect(&frames))
	if err != nil {
		t.Fatalf("Animate: %v", err)
	}

	if len(frames) != 3 {
		t.Fatalf("%d frames written, want 3", len(frames))
	}
	for i, f := range frames {
		if f.index != i {
			t.Errorf("frame %d has index %d", i, f.index)
		}
		hb, ok := f.img.(kernel.HostBuffer)
		if !ok {
			t.Fatalf("frame %d is %T", i, f.img)
		}
		// Every frame changes fov, so accumulation restarts and the last
		// of four samples ran with frame counter 3.
		if hb.Pixels[0] != 4 {
			t.Errorf("frame %d pixel = %v, want 4", i, hb.Pixels[0])
		}
	}
	if got := len(ctx.FakeQueue().Dispatches()); got != 12 {
		t.Errorf("%d dispatches, want 12", got)
	}
	if got := ctx.FakeQueue().Finishes(); got != 3 {
		t.Errorf("%d syncs, want 3", got)
	}
	if len(progress) != 3 || progress[2] != 3 {
		t.Errorf("progress = %v", progress)
	}
}

func TestAnimateCancelled(t *testing.T) {
	c, _ := newController(t)
	list, err := keyframe.Build(bufio.NewScanner(strings.NewReader("fov = 1\n")), settings.New())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())

	var frames []frame
	sink := offline.SinkFunc(func(i int, img kernel.Image) error {
		frames = append(frames, frame{i, img})
		cancel()
		return nil
	})
	err = offline.Animate(ctx, c, list, offline.Options{Frames: 5, Samples: 1}, sink)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Animate() = %v, want context.Canceled", err)
	}
	if len(frames) != 1 {
		t.Errorf("%d frames written after cancel, want 1", len(frames))
	}
}

func TestStill(t *testing.T) {
	c, _ := newController(t)
	var frames []frame
	if err := offline.Still(context.Background(), c, settings.New(), 2, collect(&frames)); err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 {
		t.Fatalf("%d frames, want 1", len(frames))
	}
	if w, h := frames[0].img.Size(); w != 4 || h != 2 {
		t.Errorf("image %dx%d, want 4x2", w, h)
	}
}

func TestInvalidOptions(t *testing.T) {
	c, _ := newController(t)
	var frames []frame
	if err := offline.Still(context.Background(), c, settings.New(), 0, collect(&frames)); !errors.Is(err, offline.ErrInvalidOptions) {
		t.Errorf("Still(0 samples) = %v", err)
	}
	list, err := keyframe.Build(bufio.NewScanner(strings.NewReader("fov = 1\n")), settings.New())
	if err != nil {
		t.Fatal(err)
	}
	if err := offline.Animate(context.Background(), c, list, offline.Options{Frames: 0, Samples: 1}, collect(&frames)); !errors.Is(err, offline.ErrInvalidOptions) {
		t.Errorf("Animate(0 frames) = %v", err)
	}
}

func TestDispatchErrorStops(t *testing.T) {
	c, ctx := newController(t)
	boom := errors.New("device lost")
	ctx.DispatchErr = boom
	var frames []frame
	err := offline.Still(context.Background(), c, settings.New(), 1, collect(&frames))
	if !errors.Is(err, kernel.ErrDispatch) || !errors.Is(err, boom) {
		t.Errorf("Still() = %v", err)
	}
	if len(frames) != 0 {
		t.Error("frame written after dispatch failure")
	}
}

func TestSinkError(t *testing.T) {
	c, _ := newController(t)
	boom := errors.New("disk full")
	err := offline.Still(context.Background(), c, settings.New(), 1, offline.SinkFunc(func(int, kernel.Image) error { return boom }))
	if !errors.Is(err, boom) {
		t.Errorf("Still() = %v", err)
	}
}
