// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package output

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/marcher/kernel"
	"github.com/gogpu/marcher/offline"
)

// ErrSinkClosed is returned by WriteFrame after Close.
var ErrSinkClosed = errors.New("output: sink closed")

// AsyncSink encodes frames on a pool of goroutines so the device can
// render the next frame while the previous one is written. The sink takes
// ownership of each image passed to WriteFrame.
//
// The first error from the wrapped sink is returned by every later
// WriteFrame and by Close.
//
// Thread safety: AsyncSink is safe for concurrent use.
type AsyncSink struct {
	sink offline.Sink

	// queue feeds the workers; its capacity bounds the frames in flight.
	queue chan func()

	wg      sync.WaitGroup
	running atomic.Bool

	mu  sync.Mutex
	err error
}

var _ offline.Sink = (*AsyncSink)(nil)

// NewAsyncSink starts workers goroutines writing to sink.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewAsyncSink(sink offline.Sink, workers int) *AsyncSink {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	a := &AsyncSink{
		sink:  sink,
		queue: make(chan func(), workers*2),
	}
	a.running.Store(true)
	a.wg.Add(workers)
	for range workers {
		go a.worker()
	}
	return a
}

func (a *AsyncSink) worker() {
	defer a.wg.Done()
	for work := range a.queue {
		work()
	}
}

func (a *AsyncSink) fail(err error) {
	a.mu.Lock()
	if a.err == nil {
		a.err = err
	}
	a.mu.Unlock()
}

// Err returns the first write error.
func (a *AsyncSink) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// WriteFrame queues img. It blocks while the queue is full.
func (a *AsyncSink) WriteFrame(index int, img kernel.Image) error {
	if err := a.Err(); err != nil {
		return err
	}
	if !a.running.Load() {
		return ErrSinkClosed
	}
	a.queue <- func() {
		if err := a.sink.WriteFrame(index, img); err != nil {
			a.fail(err)
		}
	}
	return nil
}

// Close waits for queued frames to be written and stops the workers.
// It must not be called concurrently with WriteFrame. Close is safe to
// call multiple times.
func (a *AsyncSink) Close() error {
	if a.running.CompareAndSwap(true, false) {
		close(a.queue)
		a.wg.Wait()
	}
	return a.Err()
}
