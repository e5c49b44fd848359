// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/marcher/settings"
)

//go:embed shaders/mandelbox.wgsl
var mandelboxShaderSource string

// Source provides the body of the kernel program.
type Source interface {
	// Name identifies the source in logs and build errors.
	Name() string

	// Load returns the WGSL body. It is called on every rebuild.
	Load() (string, error)
}

// EmbeddedSource is the built-in Mandelbox kernel.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string          { return "mandelbox.wgsl" }
func (EmbeddedSource) Load() (string, error) { return mandelboxShaderSource, nil }

// FileSource reads the kernel body from disk, so it can be edited while
// the renderer runs (see Watcher).
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return f.Path }

func (f FileSource) Load() (string, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AccessorPrefix prefixes the generated per-field accessor functions.
const AccessorPrefix = "cfg_"

// Generate returns a complete kernel: a prelude declaring the bindings and
// one accessor per settings field, followed by body.
//
// Constant fields become literals, letting the shader compiler fold them.
// Other fields read word i of the configuration buffer, so editing them
// needs only an upload.
func Generate(body string, s *settings.Settings) (string, error) {
	var b strings.Builder
	b.WriteString(prelude)
	for i := range settings.Len() {
		name := settings.Nth(i)
		v := s.At(i)
		fn := AccessorPrefix + name
		switch v.Kind() {
		case settings.KindUint:
			u, _ := v.AsUint()
			if s.IsConstant(name) {
				fmt.Fprintf(&b, "fn %s() -> u32 { return %du; }\n", fn, u)
			} else {
				fmt.Fprintf(&b, "fn %s() -> u32 { return cfg[%du]; }\n", fn, i)
			}
		default:
			f, _, _ := v.AsFloat()
			if s.IsConstant(name) {
				lit, err := floatLiteral(f)
				if err != nil {
					return "", fmt.Errorf("constant %s: %w", name, err)
				}
				fmt.Fprintf(&b, "fn %s() -> f32 { return %s; }\n", fn, lit)
			} else {
				fmt.Fprintf(&b, "fn %s() -> f32 { return bitcast<f32>(cfg[%du]); }\n", fn, i)
			}
		}
	}
	b.WriteString("\n")
	b.WriteString(body)
	return b.String(), nil
}

func floatLiteral(f float32) (string, error) {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return "", fmt.Errorf("non-finite value %v", f)
	}
	s := strconv.FormatFloat(float64(f), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

const prelude = `// Generated bindings.
struct Params {
    width: u32,
    height: u32,
    frame: u32,
    pad: u32,
}

@group(0) @binding(0) var<storage, read_write> output: array<vec4<f32>>;
@group(0) @binding(1) var<storage, read_write> scratch: array<u32>;
@group(0) @binding(2) var<storage, read> cfg: array<u32>;
@group(0) @binding(3) var<uniform> params: Params;

`
