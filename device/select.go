// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/marcher"
)

// EnvDevice names the environment variable holding the device override index.
const EnvDevice = "MARCHER_DEVICE"

// NoOverride disables the explicit device index.
const NoOverride = -1

// Options configures Select.
type Options struct {
	// Index selects the device at this position of List. Negative values
	// enable the automatic search.
	Index int

	// Interop requires a context able to share buffers with the host
	// graphics API.
	Interop bool
}

// Entry is one (platform, device) pair of the flat enumeration.
type Entry struct {
	Index    int
	Platform Platform
	Device   Device
}

// String formats the entry the way the device listing prints it.
func (e Entry) String() string {
	return fmt.Sprintf("[%d]: %s (%s, %s)", e.Index, e.Device.Name(), e.Platform.Name(), e.Device.Class())
}

// List enumerates every device of every platform, in platform order and then
// in each platform's device order. The position in the result is the index
// accepted by Options.Index.
// Call Idle once the entries are no longer needed.
func List(platforms []Platform) ([]Entry, error) {
	var entries []Entry
	for _, p := range platforms {
		devs, err := p.Devices()
		if err != nil {
			return entries, fmt.Errorf("device: enumerate %s: %w", p.Name(), err)
		}
		for _, d := range devs {
			entries = append(entries, Entry{Index: len(entries), Platform: p, Device: d})
		}
	}
	return entries, nil
}

// Select returns a context using the first strategy that succeeds:
//
//  1. with an override index, the device at that position of List;
//  2. each platform in turn, letting it choose a GPU;
//  3. each platform in turn, letting it choose any device;
//
// Each tier is more permissive than the one before, since graphics interop
// setup can fail on a platform whose devices exist. Every error wraps
// ErrDeviceSelection. An override index that names no device fails with
// ErrDeviceIndexOutOfRange without opening anything; exhausting the search
// fails with ErrNoComputeDeviceFound joined with the last platform error.
//
// Before returning, Select idles every platform, so only the platform of
// the returned context keeps its state.
func Select(platforms []Platform, opts Options) (Context, error) {
	defer Idle(platforms)
	log := marcher.Logger()

	if opts.Index >= 0 {
		entries, err := List(platforms)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDeviceSelection, err)
		}
		if opts.Index >= len(entries) {
			return nil, fmt.Errorf("%w: %w: %d (found %d devices)",
				ErrDeviceSelection, ErrDeviceIndexOutOfRange, opts.Index, len(entries))
		}
		e := entries[opts.Index]
		ctx, err := e.Platform.Open(e.Device, OpenOptions{Interop: opts.Interop})
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", ErrDeviceSelection, e, err)
		}
		log.Info("device: selected by index", "index", opts.Index, "device", ctx.Name(), "platform", e.Platform.Name())
		return ctx, nil
	}

	if entries, err := List(platforms); err == nil {
		for _, e := range entries {
			log.Info("device: available", "entry", e.String())
		}
		log.Info("device: set " + EnvDevice + "={index} to select one")
	}

	var lastErr error
	for _, preferGPU := range []bool{true, false} {
		for _, p := range platforms {
			ctx, err := p.Open(nil, OpenOptions{PreferGPU: preferGPU, Interop: opts.Interop})
			if err != nil {
				log.Debug("device: platform rejected", "platform", p.Name(), "gpu", preferGPU, "err", err)
				lastErr = err
				continue
			}
			log.Info("device: selected", "device", ctx.Name(), "platform", p.Name(), "gpu", preferGPU)
			return ctx, nil
		}
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceSelection, errors.Join(ErrNoComputeDeviceFound, lastErr))
	}
	return nil, fmt.Errorf("%w: %w", ErrDeviceSelection, ErrNoComputeDeviceFound)
}

// EnvIndex returns the override index from MARCHER_DEVICE, or NoOverride
// when it is unset or not a non-negative integer.
func EnvIndex() int {
	v, ok := os.LookupEnv(EnvDevice)
	if !ok {
		return NoOverride
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || i < 0 {
		marcher.Logger().Warn("device: ignoring invalid override", "var", EnvDevice, "value", v)
		return NoOverride
	}
	return i
}
