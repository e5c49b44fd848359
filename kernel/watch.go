// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package kernel

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/marcher"
)

// Watcher calls a function whenever a FileSource changes on disk.
//
// The parent directory is watched rather than the file, since editors
// often replace files by rename.
type Watcher struct {
	w        *fsnotify.Watcher
	path     string
	onChange func()

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// Watch starts watching src. onChange runs on the watcher's goroutine.
func Watch(src FileSource, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	path, err := filepath.Abs(src.Path)
	if err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		w:        fw,
		path:     filepath.Clean(path),
		onChange: onChange,
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	log := marcher.Logger()
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				log.Info("kernel: source changed", "path", w.path, "op", ev.Op.String())
				w.onChange()
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			log.Warn("kernel: watch error", "path", w.path, "err", err)
		case <-w.done:
			return
		}
	}
}

// Close stops watching and waits for the goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.w.Close()
		w.wg.Wait()
	})
	return err
}
