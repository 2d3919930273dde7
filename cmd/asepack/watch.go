// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package main

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is the quiet time after the last event of a file before it is
// reported, so that a save made of several writes is reported once.
const debounce = 100 * time.Millisecond

// watcher reports input files that were written or created.
type watcher struct {
	watcher *fsnotify.Watcher
	inputs  map[string]bool       // Cleaned paths of the watched files
	pending map[string]*time.Timer // Files waiting for their quiet time
	fired   chan string
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// newWatcher watches the given files through their directories.
func newWatcher(files []string) (*watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	inputs := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, file := range files {
		inputs[filepath.Clean(file)] = true
		dirs[filepath.Dir(file)] = true
	}

	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	out := &watcher{
		watcher: w,
		inputs:  inputs,
		pending: make(map[string]*time.Timer),
		fired:   make(chan string, 16),
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go out.run()
	return out, nil
}

// Close stops watching.
func (w *watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *watcher) run() {
	defer func() {
		for _, timer := range w.pending {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if name := filepath.Clean(event.Name); w.relevant(name, event.Op) {
				w.schedule(name)
			}
		case name := <-w.fired:
			delete(w.pending, name)
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// schedule reports a file once no event was seen for it during debounce.
func (w *watcher) schedule(name string) {
	if timer, ok := w.pending[name]; ok && timer.Stop() {
		timer.Reset(debounce)
		return
	}

	w.pending[name] = time.AfterFunc(debounce, func() {
		select {
		case w.fired <- name:
		case <-w.closeCh:
		}
	})
}

// relevant returns whether an event changed the content of an input file.
func (w *watcher) relevant(name string, op fsnotify.Op) bool {
	return op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 && w.inputs[name]
}
