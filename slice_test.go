// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package ase

import (
	"image"
	"image/color"
	"testing"

	"github.com/kelindar/ase/internal/asetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sliceDocument(t *testing.T) *Document {
	pivot := image.Pt(4, 8)
	teal := color.NRGBA{G: 0x80, B: 0x80, A: 0xFF}
	s := asetest.Animation(4, 32, 32, 100)
	s.Slices = []asetest.Slice{
		{
			Name:     "panel",
			Color:    &teal,
			UserData: "ui",
			Keys: []asetest.SliceKey{
				{Frame: 0, Bounds: image.Rect(0, 0, 16, 12), Center: image.Rect(3, 2, 13, 9)},
				{Frame: 2, Bounds: image.Rect(8, 8, 24, 20), Center: image.Rect(4, 4, 12, 8), Pivot: &pivot},
			},
		},
		{
			Name: "late",
			Keys: []asetest.SliceKey{{Frame: 2, Bounds: image.Rect(1, 1, 2, 2)}},
		},
	}
	return decode(t, s)
}

func TestResolve(t *testing.T) {
	doc := sliceDocument(t)

	geo, ok := Resolve(doc, "panel", 1)
	require.True(t, ok)
	assert.Equal(t, "panel", geo.Name)
	assert.Equal(t, 0, geo.Key)
	assert.Equal(t, image.Rect(0, 0, 16, 12), geo.Bounds)
	assert.True(t, geo.HasBorder)
	assert.Equal(t, image.Point{}, geo.Pivot)
	assert.Equal(t, Border{Left: 3, Top: 2, Right: 3, Bottom: 3}, geo.Border)
	assert.Equal(t, image.Rect(3, 2, 13, 9), geo.Center())
	assert.Equal(t, color.NRGBA{G: 0x80, B: 0x80, A: 0xFF}, geo.Color)
	assert.Equal(t, "ui", geo.UserData)

	// The key at frame 2 redefines the geometry from then on
	for _, frame := range []int{2, 3, 100} {
		geo, ok = Resolve(doc, "panel", frame)
		require.True(t, ok)
		assert.Equal(t, 2, geo.Key)
		assert.Equal(t, image.Rect(8, 8, 24, 20), geo.Bounds)
		assert.Equal(t, image.Pt(4, 8), geo.Pivot)
		assert.Equal(t, image.Pt(12, 16), geo.Origin())
		assert.Equal(t, Border{Left: 4, Top: 4, Right: 4, Bottom: 4}, geo.Border)
	}
}

func TestResolve_Missing(t *testing.T) {
	doc := sliceDocument(t)

	_, ok := Resolve(doc, "nope", 0)
	assert.False(t, ok)

	_, ok = Resolve(doc, "late", 1)
	assert.False(t, ok)

	_, ok = Resolve(doc, "panel", -1)
	assert.False(t, ok)

	_, ok = Resolve(nil, "panel", 0)
	assert.False(t, ok)
}

func TestResolve_Idempotent(t *testing.T) {
	doc := sliceDocument(t)
	binding := doc.Bind("panel")
	for frame := 0; frame < 4; frame++ {
		a, okA := binding.Resolve(frame)
		b, okB := Resolve(doc, "panel", frame)
		assert.Equal(t, okA, okB)
		assert.Equal(t, a, b)
	}
}

func TestPatches(t *testing.T) {
	geo := SliceGeometry{
		Bounds:    image.Rect(10, 10, 20, 20),
		Border:    Border{Left: 2, Top: 3, Right: 4, Bottom: 1},
		HasBorder: true,
	}

	patches := geo.Patches(image.Rect(0, 0, 50, 30))

	// Corners keep their size
	assert.Equal(t, Patch{Src: image.Rect(10, 10, 12, 13), Dst: image.Rect(0, 0, 2, 3)}, patches[0])
	assert.Equal(t, Patch{Src: image.Rect(16, 10, 20, 13), Dst: image.Rect(46, 0, 50, 3)}, patches[2])
	assert.Equal(t, Patch{Src: image.Rect(10, 19, 12, 20), Dst: image.Rect(0, 29, 2, 30)}, patches[6])
	assert.Equal(t, Patch{Src: image.Rect(16, 19, 20, 20), Dst: image.Rect(46, 29, 50, 30)}, patches[8])

	// Edges and center stretch
	assert.Equal(t, Patch{Src: image.Rect(12, 10, 16, 13), Dst: image.Rect(2, 0, 46, 3)}, patches[1])
	assert.Equal(t, Patch{Src: image.Rect(10, 13, 12, 19), Dst: image.Rect(0, 3, 2, 29)}, patches[3])
	assert.Equal(t, Patch{Src: image.Rect(12, 13, 16, 19), Dst: image.Rect(2, 3, 46, 29)}, patches[4])
}

func TestPatches_Collapse(t *testing.T) {
	geo := SliceGeometry{
		Bounds: image.Rect(0, 0, 10, 10),
		Border: Border{Left: 4, Top: 4, Right: 4, Bottom: 4},
	}

	patches := geo.Patches(image.Rect(0, 0, 4, 4))
	assert.Equal(t, image.Rect(0, 0, 2, 2), patches[0].Dst)
	assert.True(t, patches[4].Dst.Empty())
	assert.Equal(t, image.Rect(2, 2, 4, 4), patches[8].Dst)
}

func TestPatches_NoBorder(t *testing.T) {
	geo := SliceGeometry{Bounds: image.Rect(5, 5, 9, 9)}
	patches := geo.Patches(image.Rect(0, 0, 8, 8))
	assert.Equal(t, Patch{Src: geo.Bounds, Dst: image.Rect(0, 0, 8, 8)}, patches[4])
	assert.True(t, patches[0].Src.Empty())
}
