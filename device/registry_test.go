// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device_test

import (
	"slices"
	"testing"

	"github.com/gogpu/marcher/device"
	"github.com/gogpu/marcher/internal/fakedevice"
)

func TestRegistryOrder(t *testing.T) {
	names := []string{"zeta", "gl", "alpha", "vulkan"}
	for _, name := range names {
		p := fakedevice.NewPlatform(name, gpu(name+"0"))
		device.Register(name, func() device.Platform { return p })
	}
	device.Register("missing", func() device.Platform { return nil })
	t.Cleanup(func() {
		for _, name := range append(names, "missing") {
			device.Unregister(name)
		}
	})

	got := device.Available()
	want := []string{"vulkan", "gl", "alpha", "missing", "zeta"}
	if !slices.Equal(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}

	var platformNames []string
	for _, p := range device.Platforms() {
		platformNames = append(platformNames, p.Name())
	}
	want = []string{"vulkan", "gl", "alpha", "zeta"}
	if !slices.Equal(platformNames, want) {
		t.Errorf("Platforms() = %v, want %v", platformNames, want)
	}
}

func TestUnregister(t *testing.T) {
	device.Register("temp", func() device.Platform { return fakedevice.NewPlatform("temp") })
	device.Unregister("temp")
	if slices.Contains(device.Available(), "temp") {
		t.Error("temp still registered after Unregister")
	}
}
