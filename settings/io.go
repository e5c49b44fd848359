// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package settings

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// RecordSeparator is the line that ends one record in a keyframe log.
const RecordSeparator = "---"

// LineSource yields lines one at a time. *bufio.Scanner satisfies it.
type LineSource interface {
	Scan() bool
	Text() string
	Err() error
}

// LoadFrom reads "key = value" lines from src into s until a record
// separator or the end of input.
//
// It returns the number of fields read and whether the record ended at a
// separator, in which case more records may follow. Blank lines are
// skipped. A line without '=', with an unknown key or with a value that
// does not parse as the field's kind stops the load with a *ParseError;
// fields applied before it keep their new values.
func (s *Settings) LoadFrom(src LineSource) (count int, more bool, err error) {
	for src.Scan() {
		line := strings.TrimSpace(src.Text())
		if line == "" {
			continue
		}
		if line == RecordSeparator {
			return count, true, nil
		}
		if err := s.applyLine(line); err != nil {
			return count, false, err
		}
		count++
	}
	if err := src.Err(); err != nil {
		return count, false, fmt.Errorf("settings: read: %w", err)
	}
	return count, false, nil
}

func (s *Settings) applyLine(line string) error {
	eq := strings.LastIndexByte(line, '=')
	if eq < 0 {
		return &ParseError{Line: line, Err: errors.New("missing '='")}
	}
	key := strings.TrimSpace(line[:eq])
	text := strings.TrimSpace(line[eq+1:])
	if key == "" || text == "" {
		return &ParseError{Line: line, Key: key, Err: errors.New("expected key = value")}
	}
	i, ok := index[key]
	if !ok {
		return &ParseError{Line: line, Key: key, Err: ErrUnknownKey}
	}
	v, err := s.values[i].parseAs(text)
	if err != nil {
		return &ParseError{Line: line, Key: key, Err: err}
	}
	s.setAt(i, v)
	return nil
}

// Load reads one record from the file at path.
func (s *Settings) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("settings: load: %w", err)
	}
	defer f.Close()
	_, _, err = s.LoadFrom(bufio.NewScanner(f))
	return err
}

// WriteTo writes one "key = value" line per field in table order.
func (s *Settings) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for name, v := range s.All() {
		m, err := fmt.Fprintf(bw, "%s = %s\n", name, v)
		n += int64(m)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// Save writes s to the file at path, replacing its contents.
func (s *Settings) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("settings: save: %w", err)
	}
	return f.Close()
}

// SaveKeyframe appends s to the keyframe log at path as one record followed
// by a separator line, creating the file if needed.
func (s *Settings) SaveKeyframe(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("settings: save keyframe: %w", err)
	}
	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("settings: save keyframe: %w", err)
	}
	if _, err := io.WriteString(f, RecordSeparator+"\n"); err != nil {
		f.Close()
		return fmt.Errorf("settings: save keyframe: %w", err)
	}
	return f.Close()
}
