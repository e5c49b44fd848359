// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package settings

import (
	"errors"
	"fmt"
)

// Package errors.
var (
	// ErrUnknownKey is returned when a field name is not in the default table.
	ErrUnknownKey = errors.New("settings: unknown key")

	// ErrTypeMismatch is returned by Set when the value kind differs from
	// the kind fixed for the field by the default table.
	ErrTypeMismatch = errors.New("settings: type mismatch")

	// ErrNonFinite is returned for NaN and infinite float values in
	// settings files.
	ErrNonFinite = errors.New("settings: non-finite value")

	// ErrParse is wrapped by every ParseError.
	ErrParse = errors.New("settings: parse error")
)

// ParseError reports a settings line that could not be applied.
// Lines applied before it stay applied.
type ParseError struct {
	// Line is the offending line, trimmed.
	Line string

	// Key is the field name, empty if the line did not split.
	Key string

	// Err is the underlying cause.
	Err error
}

func (e *ParseError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("settings: parse %q: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("settings: parse %q (key %s): %v", e.Line, e.Key, e.Err)
}

// Unwrap returns the cause.
func (e *ParseError) Unwrap() error { return e.Err }

// Is reports ParseError as ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }
