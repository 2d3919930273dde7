// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package render draws packed sprites with ebiten. It uploads the pages of an
// atlas once and looks up the sub-image of the current frame of a playback
// state or the nine patches of a slice.
package render

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/kelindar/ase"
)

// Sheet is an atlas uploaded to the GPU.
type Sheet struct {
	atlas  *ase.Atlas
	pages  []*ebiten.Image
	frames []*ebiten.Image
}

// NewSheet uploads the pages of an atlas.
func NewSheet(atlas *ase.Atlas) *Sheet {
	sheet := &Sheet{
		atlas:  atlas,
		pages:  make([]*ebiten.Image, 0, len(atlas.Pages)),
		frames: make([]*ebiten.Image, 0, len(atlas.Regions)),
	}

	for _, page := range atlas.Pages {
		sheet.pages = append(sheet.pages, ebiten.NewImageFromImage(page))
	}

	for _, region := range atlas.Regions {
		page := sheet.pages[region.Page]
		sheet.frames = append(sheet.frames, page.SubImage(region.Rect).(*ebiten.Image))
	}
	return sheet
}

// Len returns the number of frames of the sheet.
func (s *Sheet) Len() int {
	return len(s.frames)
}

// Frame returns the image of a frame, or nil if it does not exist.
func (s *Sheet) Frame(frame int) *ebiten.Image {
	if frame < 0 || frame >= len(s.frames) {
		return nil
	}
	return s.frames[frame]
}

// Dispose releases the GPU memory of the pages.
func (s *Sheet) Dispose() {
	for _, page := range s.pages {
		page.Deallocate()
	}
	s.pages, s.frames = nil, nil
}

// DrawState draws the current frame of a playback state. Idle states draw
// nothing.
func (s *Sheet) DrawState(dst *ebiten.Image, state *ase.State, op *ebiten.DrawImageOptions) {
	if state.Status() == ase.Idle {
		return
	}

	if img := s.Frame(state.Frame()); img != nil {
		dst.DrawImage(img, op)
	}
}

// DrawSlice draws a slice of a frame stretched to fill bounds on dst. Slices
// with a nine-slice center keep their corners and stretch their edges.
func (s *Sheet) DrawSlice(dst *ebiten.Image, geo ase.SliceGeometry, frame int, bounds image.Rectangle) {
	region, ok := s.atlas.Region(frame)
	if !ok {
		return
	}

	page := s.pages[region.Page]
	offset := region.Rect.Min
	for _, patch := range geo.Patches(bounds) {
		if patch.Src.Empty() || patch.Dst.Empty() {
			continue
		}

		src := page.SubImage(patch.Src.Add(offset)).(*ebiten.Image)
		op := &ebiten.DrawImageOptions{GeoM: PatchGeoM(patch)}
		op.Filter = ebiten.FilterNearest
		dst.DrawImage(src, op)
	}
}

// PatchGeoM returns the transform mapping the source rectangle of a patch
// onto its destination rectangle.
func PatchGeoM(patch ase.Patch) ebiten.GeoM {
	var m ebiten.GeoM
	sx := float64(patch.Dst.Dx()) / float64(patch.Src.Dx())
	sy := float64(patch.Dst.Dy()) / float64(patch.Src.Dy())
	m.Scale(sx, sy)
	m.Translate(float64(patch.Dst.Min.X), float64(patch.Dst.Min.Y))
	return m
}

// Options returns draw options placing the pivot of a slice, or the top-left
// corner of the canvas when there is none, at the given screen position.
func Options(x, y float64, geo *ase.SliceGeometry) *ebiten.DrawImageOptions {
	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterNearest
	if geo != nil {
		origin := geo.Origin()
		op.GeoM.Translate(-float64(origin.X), -float64(origin.Y))
	}
	op.GeoM.Translate(x, y)
	return op
}
