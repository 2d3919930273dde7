// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package ase

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"codeberg.org/go-mmap/mmap"
)

// Library caches decoded assets by source identity, so that every entity
// playing the same file shares a single document and atlas.
type Library struct {
	assets  sync.Map     // Decoded assets (key to *Asset)
	lock    sync.RWMutex // Guards maxSize
	maxSize image.Point  // Maximum atlas page size
}

// NewLibrary creates a new, empty library.
func NewLibrary(options ...Option) *Library {
	lib := &Library{
		maxSize: DefaultAtlasSize,
	}

	for _, opt := range options {
		opt(lib)
	}
	return lib
}

// Load decodes the file at the given path, or returns the asset already
// decoded for it. Failed loads are not cached.
func (l *Library) Load(path string) (*Asset, error) {
	key := filepath.Clean(path)
	if a, ok := l.Get(key); ok {
		return a, nil
	}

	data, err := readFile(key)
	if err != nil {
		return nil, fmt.Errorf("ase: unable to read '%s': %w", key, err)
	}

	return l.add(key, data)
}

// Add decodes the given bytes under a caller-provided key, or returns the
// asset already decoded for that key.
func (l *Library) Add(key string, data []byte) (*Asset, error) {
	if a, ok := l.Get(key); ok {
		return a, nil
	}

	return l.add(key, data)
}

// add decodes and publishes an asset, keeping the first one stored if
// another goroutine raced us.
func (l *Library) add(key string, data []byte) (*Asset, error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("ase: unable to decode '%s': %w", key, err)
	}

	asset := &Asset{Key: key, Document: doc, lib: l}
	actual, _ := l.assets.LoadOrStore(key, asset)
	return actual.(*Asset), nil
}

// Get returns a cached asset.
func (l *Library) Get(key string) (*Asset, bool) {
	if a, ok := l.assets.Load(key); ok {
		return a.(*Asset), true
	}
	return nil, false
}

// Remove evicts an asset, so that the next load decodes it again. Entities
// still holding the asset keep using it.
func (l *Library) Remove(key string) bool {
	_, ok := l.assets.LoadAndDelete(key)
	return ok
}

// Range calls fn for every cached asset until it returns false.
func (l *Library) Range(fn func(*Asset) bool) {
	l.assets.Range(func(_, value any) bool {
		return fn(value.(*Asset))
	})
}

// MaxAtlasSize returns the maximum size of the atlas pages.
func (l *Library) MaxAtlasSize() image.Point {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.maxSize
}

// SetMaxAtlasSize changes the maximum size of the atlas pages. Atlases built
// with another size are rebuilt the next time they are requested.
func (l *Library) SetMaxAtlasSize(width, height int) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.maxSize = image.Pt(width, height)
}

// readFile copies the content of a file through a read-only memory map.
func readFile(path string) ([]byte, error) {
	file, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data := make([]byte, file.Len())
	if n, err := file.ReadAt(data, 0); err != nil && n < len(data) {
		return nil, err
	}
	return data, nil
}

// ---------------------------------- Asset ----------------------------------

// Asset is a decoded document with its lazily packed atlas.
type Asset struct {
	Key      string    // Source identity
	Document *Document // Decoded document, read-only
	lib      *Library
	lock     sync.Mutex
	atlas    *Atlas      // Last atlas built
	size     image.Point // Maximum page size of the atlas
}

// Atlas returns the atlas of the asset, packing it on first use or when the
// maximum page size of the library changed since it was built. A failed pack
// is not cached and the document stays usable.
func (a *Asset) Atlas() (*Atlas, error) {
	size := DefaultAtlasSize
	if a.lib != nil {
		size = a.lib.MaxAtlasSize()
	}

	a.lock.Lock()
	defer a.lock.Unlock()
	if a.atlas != nil && a.size == size {
		return a.atlas, nil
	}

	atlas, err := Pack(a.Document.Frames, size)
	if err != nil {
		return nil, fmt.Errorf("ase: unable to pack '%s': %w", a.Key, err)
	}

	a.atlas, a.size = atlas, size
	return atlas, nil
}

// Play creates a playback state of this asset for an entity.
func (a *Asset) Play(entity Entity, desc Descriptor) *State {
	return NewState(entity, a.Document, desc)
}

// Slice returns a binding to a named slice of this asset.
func (a *Asset) Slice(name string) SliceBinding {
	return a.Document.Bind(name)
}
