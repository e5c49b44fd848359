// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads the YAML configuration of the marcher command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/marcher/device"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Config is the command configuration.
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Interop shares the output buffer with a host graphics device. Only
	// applications that embed the library and register a host platform can
	// honour it.
	Interop bool `yaml:"interop"`

	// Device overrides MARCHER_DEVICE when set.
	Device *int `yaml:"device,omitempty"`

	// Settings is a settings file applied on top of the defaults.
	Settings string `yaml:"settings,omitempty"`

	// Keyframes is the keyframe log used by animations.
	Keyframes string `yaml:"keyframes,omitempty"`

	Kernel KernelConfig `yaml:"kernel"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
}

// KernelConfig selects the kernel source.
type KernelConfig struct {
	// Source is a WGSL file; empty uses the built-in kernel.
	Source string `yaml:"source,omitempty"`

	// Watch rebuilds the kernel when Source changes.
	Watch bool `yaml:"watch"`
}

// RenderConfig configures offline rendering.
type RenderConfig struct {
	Frames    int    `yaml:"frames"`
	Samples   int    `yaml:"samples"`
	OutputDir string `yaml:"output_dir"`
	Pattern   string `yaml:"pattern"`
}

// LogConfig configures logging. An empty File logs to stderr.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Width:  1280,
		Height: 720,
		Render: RenderConfig{
			Frames:    120,
			Samples:   64,
			OutputDir: "render",
			Pattern:   "frame%05d.png",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
}

// Load reads path over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Width < 1 || c.Height < 1:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.Device != nil && *c.Device < 0:
		return fmt.Errorf("%w: device %d", ErrInvalid, *c.Device)
	case c.Render.Frames < 1:
		return fmt.Errorf("%w: render.frames %d", ErrInvalid, c.Render.Frames)
	case c.Render.Samples < 1:
		return fmt.Errorf("%w: render.samples %d", ErrInvalid, c.Render.Samples)
	case c.Kernel.Watch && c.Kernel.Source == "":
		return fmt.Errorf("%w: kernel.watch needs kernel.source", ErrInvalid)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	return nil
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	err := lvl.UnmarshalText([]byte(l.Level))
	return lvl, err
}

// DeviceIndex returns the device override: Device when set, otherwise
// MARCHER_DEVICE.
func (c Config) DeviceIndex() int {
	if c.Device != nil {
		return *c.Device
	}
	return device.EnvIndex()
}

// Marshal encodes c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// LoadEnv loads environment files without overriding variables that are
// already set. With no paths it loads ".env" if present.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		err := godotenv.Load()
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(paths...)
}
