// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package keyframe

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/chewxy/math32"

	"github.com/gogpu/marcher"
	"github.com/gogpu/marcher/settings"
)

// Package errors.
var (
	// ErrEmptyKeyframeLog is returned by Build when the log holds no records.
	ErrEmptyKeyframeLog = errors.New("keyframe: empty keyframe log")

	// ErrInconsistentType is returned by Interpolate when a field's kind
	// differs between keyframes.
	ErrInconsistentType = errors.New("keyframe: inconsistent field type")
)

// List is an immutable sequence of keyframes plus the working copy that
// Interpolate overwrites.
type List struct {
	frames []*settings.Settings
	work   *settings.Settings
}

// Build reads records from src, applying each on top of base and taking a
// snapshot after it. base is left holding the last record.
//
// A final record without a trailing separator is kept. Records with no
// fields are skipped.
func Build(src settings.LineSource, base *settings.Settings) (*List, error) {
	var frames []*settings.Settings
	for {
		count, more, err := base.LoadFrom(src)
		if err != nil {
			return nil, fmt.Errorf("keyframe: record %d: %w", len(frames), err)
		}
		if count > 0 {
			frames = append(frames, base.Clone())
		}
		if !more {
			break
		}
	}
	if len(frames) == 0 {
		return nil, ErrEmptyKeyframeLog
	}
	marcher.Logger().Info("keyframe: loaded", "keyframes", len(frames))
	return &List{frames: frames, work: base.Clone()}, nil
}

// Open builds a List from the log at path.
func Open(path string, base *settings.Settings) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("keyframe: %w", err)
	}
	defer f.Close()
	return Build(bufio.NewScanner(f), base)
}

// Len returns the number of keyframes.
func (l *List) Len() int { return len(l.frames) }

// At returns keyframe i. The result must not be modified.
func (l *List) At(i int) *settings.Settings { return l.frames[i] }

// Interpolate returns the settings at normalized time t, clamped to [0, 1].
//
// The returned store is the list's working copy: it is overwritten by the
// next call. Exactly on a keyframe (including t = 0, t = 1 and a single
// keyframe) the keyframe's values are returned unchanged.
func (l *List) Interpolate(t float32) (*settings.Settings, error) {
	if !(t > 0) {
		t = 0
	}
	t = math32.Min(t, 1)

	n := len(l.frames)
	u := t * float32(n-1)
	cur := int(math32.Floor(u))
	frac := u - float32(cur)
	if cur >= n-1 {
		cur, frac = n-1, 0
	}

	if frac == 0 {
		src := l.frames[cur]
		for i := range settings.Len() {
			if err := l.work.Set(settings.Nth(i), src.At(i)); err != nil {
				return nil, err
			}
		}
		return l.work, nil
	}

	p0 := l.frames[max(cur-1, 0)]
	p1 := l.frames[cur]
	p2 := l.frames[min(cur+1, n-1)]
	p3 := l.frames[min(cur+2, n-1)]
	for i := range settings.Len() {
		v, err := interpolateField(p0.At(i), p1.At(i), p2.At(i), p3.At(i), frac)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, settings.Nth(i))
		}
		if err := l.work.Set(settings.Nth(i), v); err != nil {
			return nil, err
		}
	}
	if err := normalize(l.work); err != nil {
		return nil, err
	}
	return l.work, nil
}

func interpolateField(v0, v1, v2, v3 settings.Value, t float32) (settings.Value, error) {
	k := v1.Kind()
	if v0.Kind() != k || v2.Kind() != k || v3.Kind() != k {
		return settings.Value{}, ErrInconsistentType
	}
	if k == settings.KindUint {
		a, _ := v0.AsUint()
		b, _ := v1.AsUint()
		c, _ := v2.AsUint()
		d, _ := v3.AsUint()
		return settings.Uint(catmullRomUint(a, b, c, d, t)), nil
	}
	a, _, _ := v0.AsFloat()
	b, _, _ := v1.AsFloat()
	c, _, _ := v2.AsFloat()
	d, _, _ := v3.AsFloat()
	return v1.WithFloat(catmullRom(a, b, c, d, t)), nil
}
