// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import (
	"errors"
	"fmt"
)

// Package errors.
var (
	// ErrKernelBuild is wrapped by every *BuildError. Build failures are
	// recoverable: the controller keeps the previous program.
	ErrKernelBuild = errors.New("kernel: build failed")

	// ErrDispatch is wrapped by device errors during allocation, upload,
	// binding, dispatch or readback. These are fatal to the render loop.
	ErrDispatch = errors.New("kernel: dispatch failed")

	// ErrClosed is returned by a closed controller.
	ErrClosed = errors.New("kernel: controller closed")
)

// BuildError reports a failed kernel build.
type BuildError struct {
	// Source names the kernel source that failed.
	Source string
	Err    error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("kernel: build %s: %v", e.Source, e.Err)
}

// Unwrap returns ErrKernelBuild and the underlying cause.
func (e *BuildError) Unwrap() []error { return []error{ErrKernelBuild, e.Err} }

func dispatchErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDispatch, op, err)
}
