// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package interactive

import (
	"sync"
	"time"
)

// fpsWeight is the weight of the newest frame in the moving average.
const fpsWeight = 0.1

// FPS is an exponential moving average of the frame rate.
// The zero value is ready to use.
type FPS struct {
	mu     sync.Mutex
	rate   float64
	frames uint64
}

// Tick records a frame that took dt. Non-positive durations are ignored.
func (f *FPS) Tick(dt time.Duration) {
	if dt <= 0 {
		return
	}
	r := float64(time.Second) / float64(dt)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frames == 0 {
		f.rate = r
	} else {
		f.rate += (r - f.rate) * fpsWeight
	}
	f.frames++
}

// Rate returns the smoothed frames per second, or 0 before the first tick.
func (f *FPS) Rate() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rate
}

// Frames returns the number of recorded frames.
func (f *FPS) Frames() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}
