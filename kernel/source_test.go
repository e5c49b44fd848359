// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/marcher/kernel"
	"github.com/gogpu/marcher/settings"
)

func containsLine(src, line string) bool {
	for l := range strings.Lines(src) {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}

func TestGenerateAccessors(t *testing.T) {
	s := settings.New()
	src, err := kernel.Generate("// body", s)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := []string{
		"fn cfg_pos_x() -> f32 { return bitcast<f32>(cfg[0u]); }",
		"fn cfg_render_scale() -> u32 { return cfg[41u]; }",
		"fn cfg_bailout() -> f32 { return 1024.0; }",
		"fn cfg_de_multiplier() -> f32 { return 0.9375; }",
		"fn cfg_max_iters() -> u32 { return 64u; }",
		"@group(0) @binding(3) var<uniform> params: Params;",
	}
	for _, line := range want {
		if !containsLine(src, line) {
			t.Errorf("generated source lacks %q", line)
		}
	}
	if !strings.HasSuffix(src, "// body") {
		t.Error("body not appended")
	}
	if n := strings.Count(src, "fn "+kernel.AccessorPrefix); n != settings.Len() {
		t.Errorf("%d accessors, want %d", n, settings.Len())
	}
}

func TestGenerateFollowsConstants(t *testing.T) {
	s := settings.New()
	if err := s.SetConstant("fov", true); err != nil {
		t.Fatal(err)
	}
	if err := s.SetConstant("max_iters", false); err != nil {
		t.Fatal(err)
	}
	src, err := kernel.Generate("", s)
	if err != nil {
		t.Fatal(err)
	}
	if !containsLine(src, "fn cfg_fov() -> f32 { return 1.0; }") {
		t.Error("locked fov not inlined")
	}
	if !containsLine(src, "fn cfg_max_iters() -> u32 { return cfg[38u]; }") {
		t.Error("unlocked max_iters not read from the config buffer")
	}
}

func TestGenerateRejectsNonFiniteConstant(t *testing.T) {
	s := settings.New()
	if err := s.Set("bailout", settings.Float(float32(math.Inf(1)), -1)); err != nil {
		t.Fatal(err)
	}
	if _, err := kernel.Generate("", s); err == nil {
		t.Error("Generate accepted an infinite constant")
	}
}

func TestEmbeddedSource(t *testing.T) {
	body, err := kernel.EmbeddedSource{}.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body, "@compute @workgroup_size(8, 8, 1)") {
		t.Error("embedded kernel lacks its entry point")
	}
	for name := range settings.New().All() {
		if name == "render_scale" {
			continue
		}
		if !strings.Contains(body, kernel.AccessorPrefix+name+"()") {
			t.Errorf("embedded kernel never reads %s", name)
		}
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "k.wgsl")
	if err := os.WriteFile(path, []byte("fn main() {}"), 0o600); err != nil {
		t.Fatal(err)
	}
	src := kernel.FileSource{Path: path}
	body, err := src.Load()
	if err != nil {
		t.Fatal(err)
	}
	if body != "fn main() {}" || src.Name() != path {
		t.Errorf("Load() = %q, Name() = %q", body, src.Name())
	}

	if _, err := (kernel.FileSource{Path: filepath.Join(t.TempDir(), "missing")}).Load(); !os.IsNotExist(err) {
		t.Errorf("missing file error = %v", err)
	}
}
