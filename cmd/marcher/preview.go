// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gogpu/marcher"
	"github.com/gogpu/marcher/interactive"
	"github.com/gogpu/marcher/kernel"
	"github.com/gogpu/marcher/output"
	"github.com/gogpu/marcher/settings"
)

// preview runs a live session until ctx is done. Every Samples frames the
// current image is written over preview.png. With kernel.watch set, edits
// to the kernel source rebuild it in place.
func preview(ctx context.Context, ctrl *kernel.Controller, s *settings.Settings, opts *options, w io.Writer) error {
	sess := interactive.NewSession(s, ctrl, nil)
	defer sess.Close()

	if opts.cfg.Kernel.Watch {
		if err := sess.WatchSource(kernel.FileSource{Path: opts.cfg.Kernel.Source}); err != nil {
			return err
		}
	}

	dir := opts.cfg.Render.OutputDir
	if opts.out != "" {
		dir = opts.out
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	sink := &output.PNGSink{Dir: dir, Pattern: "preview.png"}
	keyframes := filepath.Join(dir, "preview.keyframes")

	every := opts.cfg.Render.Samples
	last := time.Now()
	for n := 1; ctx.Err() == nil; n++ {
		now := time.Now()
		if err := sess.Frame(now.Sub(last)); err != nil {
			return err
		}
		last = now
		if n%every != 0 {
			continue
		}
		if err := ctrl.Sync(); err != nil {
			return err
		}
		img, err := ctrl.Download()
		if err != nil {
			return err
		}
		if err := sink.WriteFrame(0, img); err != nil {
			return err
		}
		marcher.Logger().Debug("preview written", "frame", ctrl.Frame(), "fps", sess.FPS())
	}

	if err := sess.SaveKeyframe(keyframes); err != nil {
		return err
	}
	if err := sess.WriteStatus(w, -1); err != nil {
		return err
	}
	fmt.Fprintf(w, "%.1f fps, keyframe appended to %s\n", sess.FPS(), keyframes)
	return nil
}

// splitOutput splits a still output path into a sink directory and file
// name. A name without an extension is treated as a directory.
func splitOutput(path string) (dir, name string) {
	if filepath.Ext(path) == "" {
		return path, "still.png"
	}
	return filepath.Dir(path), filepath.Base(path)
}
