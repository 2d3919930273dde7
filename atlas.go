// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package ase

import (
	"errors"
	"fmt"
	"image"

	"github.com/kelindar/ase/internal/shelf"
	"golang.org/x/image/draw"
)

// ErrFrameTooLarge is returned by Pack when a frame can not fit on any page.
var ErrFrameTooLarge = errors.New("frame too large")

// PackError describes a frame that could not be packed.
type PackError struct {
	Frame int         // Index of the frame
	Size  image.Point // Size of the frame
	Max   image.Point // Maximum page size
}

// Error implements the error interface.
func (e *PackError) Error() string {
	return fmt.Sprintf("ase: %v: frame %d is %dx%d, pages are at most %dx%d",
		ErrFrameTooLarge, e.Frame, e.Size.X, e.Size.Y, e.Max.X, e.Max.Y)
}

// Unwrap returns ErrFrameTooLarge.
func (e *PackError) Unwrap() error {
	return ErrFrameTooLarge
}

// UV is a rectangle in texture coordinates, normalized to [0,1] by the size
// of its page.
type UV struct {
	U0, V0 float32 // Top-left corner
	U1, V1 float32 // Bottom-right corner
}

// Region is where a frame lives in an atlas.
type Region struct {
	Page int             // Page index
	Rect image.Rectangle // Pixel rectangle on the page
	UV   UV              // Normalized rectangle on the page
}

// Atlas is a set of pages holding every frame of a document. It is read-only
// once built.
type Atlas struct {
	Pages   []*image.NRGBA // Texture pages, each no larger than the maximum size
	Regions []Region       // One region per frame, indexed by frame
}

// Pack packs frame images onto pages no larger than max, tallest first in
// rows. It fails with a *PackError before allocating anything if a frame is
// larger than max on either axis. Identical inputs produce identical atlases.
func Pack(frames []Frame, max image.Point) (*Atlas, error) {
	sizes := make([]image.Point, len(frames))
	for i, f := range frames {
		if f.Image != nil {
			sizes[i] = f.Image.Bounds().Size()
		}

		if sizes[i].X > max.X || sizes[i].Y > max.Y {
			return nil, &PackError{Frame: i, Size: sizes[i], Max: max}
		}
	}

	placements, extents := shelf.Pack(sizes, max)
	atlas := &Atlas{
		Pages:   make([]*image.NRGBA, len(extents)),
		Regions: make([]Region, len(frames)),
	}

	for i, extent := range extents {
		atlas.Pages[i] = image.NewNRGBA(image.Rectangle{Max: extent})
	}

	for i, p := range placements {
		page := atlas.Pages[p.Page]
		atlas.Regions[i] = Region{
			Page: p.Page,
			Rect: p.Rect,
			UV:   uvOf(p.Rect, extents[p.Page]),
		}

		if src := frames[i].Image; src != nil {
			draw.Draw(page, p.Rect, src, src.Bounds().Min, draw.Src)
		}
	}

	return atlas, nil
}

// Len returns the number of frames in the atlas.
func (a *Atlas) Len() int {
	return len(a.Regions)
}

// Region returns the region of a frame.
func (a *Atlas) Region(frame int) (Region, bool) {
	if frame < 0 || frame >= len(a.Regions) {
		return Region{}, false
	}
	return a.Regions[frame], true
}

// Image returns the pixels of a frame, sharing the memory of its page.
func (a *Atlas) Image(frame int) *image.NRGBA {
	region, ok := a.Region(frame)
	if !ok {
		return nil
	}
	return a.Pages[region.Page].SubImage(region.Rect).(*image.NRGBA)
}

// uvOf normalizes a rectangle by the size of its page.
func uvOf(r image.Rectangle, page image.Point) UV {
	if page.X == 0 || page.Y == 0 {
		return UV{}
	}

	w, h := float32(page.X), float32(page.Y)
	return UV{
		U0: float32(r.Min.X) / w,
		V0: float32(r.Min.Y) / h,
		U1: float32(r.Max.X) / w,
		V1: float32(r.Max.Y) / h,
	}
}
