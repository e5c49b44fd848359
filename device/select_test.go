// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package device_test

import (
	"errors"
	"testing"

	"github.com/gogpu/marcher/device"
	"github.com/gogpu/marcher/internal/fakedevice"
)

func gpu(name string) *fakedevice.Device {
	return &fakedevice.Device{DeviceName: name, DeviceClass: device.ClassGPU}
}

func cpu(name string) *fakedevice.Device {
	return &fakedevice.Device{DeviceName: name, DeviceClass: device.ClassOther}
}

func TestListFlatOrder(t *testing.T) {
	a := fakedevice.NewPlatform("a", gpu("a0"), cpu("a1"))
	b := fakedevice.NewPlatform("b", gpu("b0"))

	entries, err := device.List([]device.Platform{a, b})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"a0", "a1", "b0"}
	if len(entries) != len(want) {
		t.Fatalf("List returned %d entries, want %d", len(entries), len(want))
	}
	for i, e := range entries {
		if e.Index != i {
			t.Errorf("entry %d has Index %d", i, e.Index)
		}
		if e.Device.Name() != want[i] {
			t.Errorf("entry %d = %s, want %s", i, e.Device.Name(), want[i])
		}
	}
	if got := entries[1].String(); got != "[1]: a1 (a, other)" {
		t.Errorf("String() = %q", got)
	}
}

func TestSelectByIndex(t *testing.T) {
	a := fakedevice.NewPlatform("a", gpu("a0"), cpu("a1"))
	b := fakedevice.NewPlatform("b", gpu("b0"))

	ctx, err := device.Select([]device.Platform{a, b}, device.Options{Index: 2})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if ctx.Name() != "b0" {
		t.Errorf("selected %s, want b0", ctx.Name())
	}
	if len(a.Opened()) != 0 {
		t.Errorf("platform a opened %d contexts, want 0", len(a.Opened()))
	}
}

func TestSelectIndexOutOfRange(t *testing.T) {
	a := fakedevice.NewPlatform("a", gpu("a0"))
	b := fakedevice.NewPlatform("b", cpu("b0"))

	_, err := device.Select([]device.Platform{a, b}, device.Options{Index: 5})
	if !errors.Is(err, device.ErrDeviceSelection) {
		t.Errorf("error %v does not wrap ErrDeviceSelection", err)
	}
	if !errors.Is(err, device.ErrDeviceIndexOutOfRange) {
		t.Errorf("error %v does not wrap ErrDeviceIndexOutOfRange", err)
	}
	if n := len(a.Opened()) + len(b.Opened()); n != 0 {
		t.Errorf("%d contexts opened on a miss, want 0", n)
	}
}

func TestSelectTiers(t *testing.T) {
	boom := errors.New("driver missing")

	tests := []struct {
		name      string
		platforms func() []*fakedevice.Platform
		interop   bool
		want      string
		wantErr   error
	}{
		{
			name: "first GPU wins over earlier CPU-only platform",
			platforms: func() []*fakedevice.Platform {
				return []*fakedevice.Platform{
					fakedevice.NewPlatform("cpu-only", cpu("c0")),
					fakedevice.NewPlatform("gpus", cpu("g-cpu"), gpu("g0")),
				}
			},
			want: "g0",
		},
		{
			name: "falls back to any device",
			platforms: func() []*fakedevice.Platform {
				return []*fakedevice.Platform{
					fakedevice.NewPlatform("cpu-only", cpu("c0")),
				}
			},
			want: "c0",
		},
		{
			name: "failing platform is skipped",
			platforms: func() []*fakedevice.Platform {
				broken := fakedevice.NewPlatform("broken", gpu("x"))
				broken.OpenErr = boom
				return []*fakedevice.Platform{broken, fakedevice.NewPlatform("ok", gpu("ok0"))}
			},
			want: "ok0",
		},
		{
			name: "interop skips incapable platforms",
			platforms: func() []*fakedevice.Platform {
				plain := fakedevice.NewPlatform("plain", gpu("p0"))
				host := fakedevice.NewPlatform("host", cpu("h0"))
				host.InteropCapable = true
				return []*fakedevice.Platform{plain, host}
			},
			interop: true,
			want:    "h0",
		},
		{
			name: "nothing works",
			platforms: func() []*fakedevice.Platform {
				broken := fakedevice.NewPlatform("broken", gpu("x"))
				broken.OpenErr = boom
				return []*fakedevice.Platform{broken}
			},
			wantErr: boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ps []device.Platform
			for _, p := range tt.platforms() {
				ps = append(ps, p)
			}
			ctx, err := device.Select(ps, device.Options{Index: device.NoOverride, Interop: tt.interop})
			if tt.wantErr != nil {
				if !errors.Is(err, device.ErrNoComputeDeviceFound) {
					t.Errorf("error %v does not wrap ErrNoComputeDeviceFound", err)
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error %v does not carry the last platform error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if ctx.Name() != tt.want {
				t.Errorf("selected %s, want %s", ctx.Name(), tt.want)
			}
			if ctx.Interop() != tt.interop {
				t.Errorf("Interop() = %v, want %v", ctx.Interop(), tt.interop)
			}
		})
	}
}

func TestSelectNoPlatforms(t *testing.T) {
	_, err := device.Select(nil, device.Options{Index: device.NoOverride})
	if !errors.Is(err, device.ErrNoComputeDeviceFound) {
		t.Errorf("error %v does not wrap ErrNoComputeDeviceFound", err)
	}
}

func TestSelectIdlesPlatforms(t *testing.T) {
	tests := []struct {
		name string
		opts device.Options
		ok   bool
	}{
		{"index out of range", device.Options{Index: 9}, false},
		{"automatic search fails", device.Options{Index: device.NoOverride, Interop: true}, false},
		{"selected", device.Options{Index: device.NoOverride}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := fakedevice.NewPlatform("a", gpu("a0"))
			b := fakedevice.NewPlatform("b", cpu("b0"))
			_, err := device.Select([]device.Platform{a, b}, tt.opts)
			if (err == nil) != tt.ok {
				t.Fatalf("Select() error = %v", err)
			}
			for _, p := range []*fakedevice.Platform{a, b} {
				if p.Idled() != 1 {
					t.Errorf("platform %s idled %d times, want 1", p.Name(), p.Idled())
				}
			}
		})
	}
}

func TestEnvIndex(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"0", 0},
		{" 3 ", 3},
		{"-1", device.NoOverride},
		{"gpu", device.NoOverride},
		{"", device.NoOverride},
	}
	for _, tt := range tests {
		t.Setenv(device.EnvDevice, tt.value)
		if got := device.EnvIndex(); got != tt.want {
			t.Errorf("EnvIndex() with %q = %d, want %d", tt.value, got, tt.want)
		}
	}
}
