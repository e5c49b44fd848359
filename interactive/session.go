// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interactive

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gogpu/marcher"
	"github.com/gogpu/marcher/kernel"
	"github.com/gogpu/marcher/settings"
)

// ErrClosed is returned by a closed session.
var ErrClosed = errors.New("interactive: session closed")

// InputIntegrator applies accumulated input to the settings once per
// frame. It runs with the session lock held.
type InputIntegrator interface {
	Integrate(s *settings.Settings, dt time.Duration)
}

// InputFunc adapts a function to InputIntegrator.
type InputFunc func(s *settings.Settings, dt time.Duration)

// Integrate calls f.
func (f InputFunc) Integrate(s *settings.Settings, dt time.Duration) { f(s, dt) }

// Renderer renders one frame. *kernel.Controller implements it.
type Renderer interface {
	Step(s *settings.Settings, force bool) error
	Resize(width, height int)
}

var _ Renderer = (*kernel.Controller)(nil)

// Session owns the shared settings of an interactive run.
type Session struct {
	mu       sync.Mutex
	settings *settings.Settings
	input    InputIntegrator
	resize   *[2]int
	closed   bool

	renderer Renderer
	fps      FPS
	watcher  *kernel.Watcher
}

// NewSession returns a session editing s. input may be nil.
func NewSession(s *settings.Settings, r Renderer, input InputIntegrator) *Session {
	return &Session{settings: s, renderer: r, input: input}
}

// Update runs fn with the settings locked. Event handlers use it to edit
// the settings from any goroutine.
func (x *Session) Update(fn func(s *settings.Settings)) {
	x.mu.Lock()
	defer x.mu.Unlock()
	fn(x.settings)
}

// Resize records a new window size, applied at the start of the next Frame.
func (x *Session) Resize(width, height int) {
	x.mu.Lock()
	x.resize = &[2]int{width, height}
	x.mu.Unlock()
}

// Frame renders one frame. It must be called from the render goroutine.
//
// Under the lock it integrates input, consumes the rebuild request and
// clones the settings; it then renders the clone. Errors from the
// renderer are returned unchanged and are fatal to the loop.
func (x *Session) Frame(dt time.Duration) error {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return ErrClosed
	}
	if x.input != nil {
		x.input.Integrate(x.settings, dt)
	}
	rebuild := x.settings.CheckAndClearRebuild()
	snapshot := x.settings.Clone()
	resize := x.resize
	x.resize = nil
	x.mu.Unlock()

	if resize != nil {
		x.renderer.Resize(resize[0], resize[1])
	}
	if err := x.renderer.Step(snapshot, rebuild); err != nil {
		return err
	}
	x.fps.Tick(dt)
	return nil
}

// SaveKeyframe appends the current settings to the keyframe log at path.
func (x *Session) SaveKeyframe(path string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.settings.SaveKeyframe(path); err != nil {
		return err
	}
	marcher.Logger().Info("interactive: keyframe saved", "path", path)
	return nil
}

// FPS returns the smoothed frame rate.
func (x *Session) FPS() float64 { return x.fps.Rate() }

// Status returns the settings listing with selected highlighted.
func (x *Session) Status(selected int) string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return Status(x.settings, selected)
}

// WriteStatus writes the colored settings listing to w.
func (x *Session) WriteStatus(w io.Writer, selected int) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return WriteStatus(w, x.settings, selected)
}

// WatchSource requests a kernel rebuild whenever src changes on disk.
func (x *Session) WatchSource(src kernel.FileSource) error {
	w, err := kernel.Watch(src, func() {
		x.Update(func(s *settings.Settings) { s.RequestRebuild() })
	})
	if err != nil {
		return err
	}
	x.mu.Lock()
	old := x.watcher
	x.watcher = w
	x.mu.Unlock()
	if old != nil {
		return old.Close()
	}
	return nil
}

// Close stops watching the kernel source. Later calls to Frame fail.
func (x *Session) Close() error {
	x.mu.Lock()
	x.closed = true
	w := x.watcher
	x.watcher = nil
	x.mu.Unlock()
	if w != nil {
		return w.Close()
	}
	return nil
}
