// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/marcher/device"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
width: 640
height: 360
device: 1
kernel:
  source: k.wgsl
  watch: true
render:
  samples: 8
log:
  level: debug
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Width != 640 || cfg.Height != 360 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Device == nil || *cfg.Device != 1 {
		t.Errorf("Device = %v", cfg.Device)
	}
	if !cfg.Kernel.Watch || cfg.Kernel.Source != "k.wgsl" {
		t.Errorf("Kernel = %+v", cfg.Kernel)
	}
	if cfg.Render.Samples != 8 || cfg.Render.Frames != Default().Render.Frames {
		t.Errorf("Render = %+v, defaults not kept", cfg.Render)
	}
	if lvl, _ := cfg.Log.SlogLevel(); lvl != slog.LevelDebug {
		t.Errorf("level = %v", lvl)
	}
	if cfg.DeviceIndex() != 1 {
		t.Errorf("DeviceIndex() = %d", cfg.DeviceIndex())
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != Default().Width {
		t.Errorf("Width = %d", cfg.Width)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		invalid bool
	}{
		{"unknown key", "colour: red\n", false},
		{"bad yaml", "width: [\n", false},
		{"zero width", "width: 0\n", true},
		{"negative device", "device: -2\n", true},
		{"no samples", "render:\n  samples: 0\n", true},
		{"watch without source", "kernel:\n  watch: true\n", true},
		{"bad level", "log:\n  level: loud\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse succeeded")
			}
			if errors.Is(err, ErrInvalid) != tt.invalid {
				t.Errorf("errors.Is(%v, ErrInvalid) = %v", err, !tt.invalid)
			}
		})
	}
}

func TestLoadRoundTrip(t *testing.T) {
	cfg := Default()
	idx := 2
	cfg.Device = &idx
	cfg.Keyframes = "keys.clam5"
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "marcher.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Keyframes != "keys.clam5" || got.Device == nil || *got.Device != 2 {
		t.Errorf("Load() = %+v", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) = %v", err)
	}
}

func TestDeviceIndexFromEnv(t *testing.T) {
	t.Setenv(device.EnvDevice, "3")
	if got := Default().DeviceIndex(); got != 3 {
		t.Errorf("DeviceIndex() = %d, want 3", got)
	}
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(device.EnvDevice+"=4\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(device.EnvDevice, "")
	os.Unsetenv(device.EnvDevice)

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if got := device.EnvIndex(); got != 4 {
		t.Errorf("EnvIndex() after LoadEnv = %d, want 4", got)
	}

	if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("LoadEnv(missing) succeeded")
	}
}
