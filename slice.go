// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package ase

import (
	"image"
	"image/color"
)

// Border is the nine-slice insets of a slice, in pixels from each edge.
type Border struct {
	Left, Top, Right, Bottom int
}

// SliceGeometry is the geometry of a slice at a given frame.
type SliceGeometry struct {
	Name      string
	Key       int             // Frame of the key this geometry comes from
	Bounds    image.Rectangle // Bounds on the canvas
	Pivot     image.Point     // Pivot relative to Bounds.Min, valid if HasPivot
	Border    Border          // Nine-slice insets, valid if HasBorder
	HasPivot  bool
	HasBorder bool
	Color     color.NRGBA
	UserData  string
}

// Resolve returns the geometry of the named slice at a frame, taken from the
// last key at or before that frame. It returns false if there is no such
// slice or no key covers the frame.
func Resolve(doc *Document, name string, frame int) (SliceGeometry, bool) {
	if doc == nil {
		return SliceGeometry{}, false
	}

	slice, ok := doc.Slice(name)
	if !ok {
		return SliceGeometry{}, false
	}

	key := -1
	for i := range slice.Keys {
		if slice.Keys[i].Frame > frame {
			break
		}
		key = i
	}

	if key < 0 {
		return SliceGeometry{}, false
	}

	k := &slice.Keys[key]
	geo := SliceGeometry{
		Name:      slice.Name,
		Key:       k.Frame,
		Bounds:    k.Bounds,
		Pivot:     k.Pivot,
		HasPivot:  k.HasPivot,
		HasBorder: k.HasCenter,
		Color:     slice.Color,
		UserData:  slice.UserData,
	}

	if k.HasCenter {
		geo.Border = Border{
			Left:   k.Center.Min.X,
			Top:    k.Center.Min.Y,
			Right:  k.Bounds.Dx() - k.Center.Max.X,
			Bottom: k.Bounds.Dy() - k.Center.Max.Y,
		}
	}

	return geo, true
}

// Center returns the nine-slice center on the canvas, or the whole bounds if
// the slice has no border.
func (g *SliceGeometry) Center() image.Rectangle {
	return image.Rect(
		g.Bounds.Min.X+g.Border.Left,
		g.Bounds.Min.Y+g.Border.Top,
		g.Bounds.Max.X-g.Border.Right,
		g.Bounds.Max.Y-g.Border.Bottom,
	)
}

// Origin returns the pivot on the canvas, or the top-left corner of the
// bounds if the slice has no pivot.
func (g *SliceGeometry) Origin() image.Point {
	return g.Bounds.Min.Add(g.Pivot)
}

// Patch maps a source rectangle of a slice to a destination rectangle.
type Patch struct {
	Src image.Rectangle
	Dst image.Rectangle
}

// Patches splits the slice into nine patches stretched to fill dst, in rows
// from the top-left corner. Corners keep their size, edges stretch along one
// axis and the center along both. Empty patches are returned as such.
func (g *SliceGeometry) Patches(dst image.Rectangle) [9]Patch {
	center := g.Center()
	sx := [4]int{g.Bounds.Min.X, center.Min.X, center.Max.X, g.Bounds.Max.X}
	sy := [4]int{g.Bounds.Min.Y, center.Min.Y, center.Max.Y, g.Bounds.Max.Y}
	dx := splitAxis(dst.Min.X, dst.Max.X, g.Border.Left, g.Border.Right)
	dy := splitAxis(dst.Min.Y, dst.Max.Y, g.Border.Top, g.Border.Bottom)

	var out [9]Patch
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			out[row*3+col] = Patch{
				Src: image.Rect(sx[col], sy[row], sx[col+1], sy[row+1]),
				Dst: image.Rect(dx[col], dy[row], dx[col+1], dy[row+1]),
			}
		}
	}
	return out
}

// splitAxis splits [lo, hi) into the three spans of a nine-slice. When the
// destination is smaller than both insets, the center collapses and the insets
// share the space.
func splitAxis(lo, hi, lead, trail int) [4]int {
	a, b := lo+lead, hi-trail
	if a > b {
		mid := lo + (hi-lo)*lead/max(lead+trail, 1)
		a, b = mid, mid
	}
	return [4]int{lo, a, b, hi}
}

// SliceBinding is a read-only reference to a named slice of a document.
type SliceBinding struct {
	Document *Document
	Name     string
}

// Bind creates a binding to a named slice of the document.
func (d *Document) Bind(name string) SliceBinding {
	return SliceBinding{Document: d, Name: name}
}

// Resolve returns the geometry of the slice at a frame.
func (b SliceBinding) Resolve(frame int) (SliceGeometry, bool) {
	return Resolve(b.Document, b.Name, frame)
}
