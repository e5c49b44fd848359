// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command marcher renders the fractal headlessly.
//
// Usage:
//
//	marcher [flags] devices|still|animate|preview
//
// devices lists the compute devices in selection order, still renders a
// single image from the settings file, animate renders the keyframe log to
// numbered PNG files and preview runs a live session that rewrites one PNG
// as the image refines.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/gogpu/marcher"
	"github.com/gogpu/marcher/config"
	"github.com/gogpu/marcher/device"
	"github.com/gogpu/marcher/kernel"
	"github.com/gogpu/marcher/keyframe"
	"github.com/gogpu/marcher/offline"
	"github.com/gogpu/marcher/output"
	"github.com/gogpu/marcher/settings"

	_ "github.com/gogpu/marcher/backend/wgpu"
)

var errUsage = errors.New("usage: marcher [flags] devices|still|animate|preview")

// errInterop is returned for configurations requesting interop. Only a host
// application holding a graphics device can share buffers with the kernel,
// through wgpu.NewHostPlatform; the command has no such device.
var errInterop = errors.New("interop needs a host graphics device and is not available from the command line")

// platforms is replaced in tests.
var platforms = device.Platforms

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "marcher: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	cfg  config.Config
	mode string
	out  string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("marcher", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath = fs.String("config", "", "YAML configuration file")
		envPath = fs.String("env", "", "environment file (default .env if present)")
		setPath = fs.String("settings", "", "settings file, overrides the configuration")
		keys    = fs.String("keyframes", "", "keyframe log, overrides the configuration")
		out     = fs.String("o", "", "output directory, or file for still")
		frames  = fs.Int("frames", 0, "animation frames, overrides the configuration")
		samples = fs.Int("samples", 0, "samples per frame, overrides the configuration")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, errUsage
	}

	var envFiles []string
	if *envPath != "" {
		envFiles = append(envFiles, *envPath)
	}
	if err := config.LoadEnv(envFiles...); err != nil {
		return nil, fmt.Errorf("env: %w", err)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return nil, err
		}
	}
	if *setPath != "" {
		cfg.Settings = *setPath
	}
	if *keys != "" {
		cfg.Keyframes = *keys
	}
	if *frames > 0 {
		cfg.Render.Frames = *frames
	}
	if *samples > 0 {
		cfg.Render.Samples = *samples
	}
	if cfg.Interop {
		return nil, errInterop
	}
	return &options{cfg: cfg, mode: fs.Arg(0), out: *out}, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(opts.cfg.Log, stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	marcher.SetLogger(logger)
	defer marcher.SetLogger(nil)

	switch opts.mode {
	case "devices":
		return listDevices(stdout)
	case "still", "animate", "preview":
	default:
		return fmt.Errorf("%w: unknown mode %q", errUsage, opts.mode)
	}

	s := settings.New()
	if opts.cfg.Settings != "" {
		if err := s.Load(opts.cfg.Settings); err != nil {
			return err
		}
	}

	dctx, err := device.Select(platforms(), device.Options{
		Index:   opts.cfg.DeviceIndex(),
		Interop: opts.cfg.Interop,
	})
	if err != nil {
		return err
	}
	defer dctx.Close()

	var src kernel.Source = kernel.EmbeddedSource{}
	if opts.cfg.Kernel.Source != "" {
		src = kernel.FileSource{Path: opts.cfg.Kernel.Source}
	}
	ctrl := kernel.NewController(dctx, kernel.Config{
		Width:   opts.cfg.Width,
		Height:  opts.cfg.Height,
		Interop: opts.cfg.Interop,
		Source:  src,
	})
	defer ctrl.Close()

	switch opts.mode {
	case "still":
		return renderStill(ctx, ctrl, s, opts, stdout)
	case "animate":
		return renderAnimation(ctx, ctrl, s, opts, stdout)
	default:
		return preview(ctx, ctrl, s, opts, stdout)
	}
}

func listDevices(w io.Writer) error {
	ps := platforms()
	defer device.Idle(ps)
	entries, err := device.List(ps)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return device.ErrNoComputeDeviceFound
	}
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(w, "%d compute devices (set %s to choose one)\n", len(entries), device.EnvDevice)
	for _, e := range entries {
		fmt.Fprintln(w, e)
	}
	return nil
}

func renderStill(ctx context.Context, ctrl *kernel.Controller, s *settings.Settings, opts *options, w io.Writer) error {
	sink := &output.PNGSink{Dir: opts.cfg.Render.OutputDir, Pattern: "still.png"}
	if opts.out != "" {
		sink.Dir, sink.Pattern = splitOutput(opts.out)
	}
	if err := offline.Still(ctx, ctrl, s, opts.cfg.Render.Samples, sink); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s\n", sink.Path(0))
	return nil
}

func renderAnimation(ctx context.Context, ctrl *kernel.Controller, s *settings.Settings, opts *options, w io.Writer) error {
	if opts.cfg.Keyframes == "" {
		return fmt.Errorf("animate: no keyframe log configured")
	}
	list, err := keyframe.Open(opts.cfg.Keyframes, s)
	if err != nil {
		return err
	}
	sink := &output.PNGSink{Dir: opts.cfg.Render.OutputDir, Pattern: opts.cfg.Render.Pattern}
	if opts.out != "" {
		sink.Dir = opts.out
	}
	async := output.NewAsyncSink(sink, 0)
	progress := color.New(color.FgGreen)
	err = offline.Animate(ctx, ctrl, list, offline.Options{
		Frames:  opts.cfg.Render.Frames,
		Samples: opts.cfg.Render.Samples,
		Progress: func(done, total int) {
			progress.Fprintf(w, "\rframe %d/%d", done, total)
			if done == total {
				fmt.Fprintln(w)
			}
		},
	}, async)
	if cerr := async.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %d frames to %s\n", opts.cfg.Render.Frames, sink.Dir)
	return nil
}
