// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package aseprite

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/kelindar/ase/internal/asetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = color.NRGBA{R: 0xFF, A: 0xFF}
	green = color.NRGBA{G: 0xFF, A: 0xFF}
	blue  = color.NRGBA{B: 0xFF, A: 0xFF}
)

func TestParse_Animation(t *testing.T) {
	s := asetest.Animation(3, 4, 2, 120, asetest.Tag{Name: "walk", From: 0, To: 2, Direction: 2, Repeat: 3})
	f, err := Parse(asetest.Encode(s))
	require.NoError(t, err)

	assert.Equal(t, uint16(4), f.Header.Width)
	assert.Equal(t, uint16(2), f.Header.Height)
	assert.Equal(t, DepthRGBA, f.Header.Depth)
	assert.Len(t, f.Frames, 3)
	assert.Len(t, f.Layers, 1)
	assert.Equal(t, "Layer 1", f.Layers[0].Name)
	assert.Equal(t, LayerVisible, f.Layers[0].Flags&LayerVisible)

	for i, frame := range f.Frames {
		assert.Equal(t, uint16(120), frame.Duration)
		require.Len(t, frame.Cels, 1)
		assert.Equal(t, asetest.Fill(4, 2, asetest.Color(i)), frame.Cels[0].Pixels)
	}

	require.Len(t, f.Tags, 1)
	assert.Equal(t, Tag{From: 0, To: 2, Direction: 2, Repeat: 3, Name: "walk",
		UserData: UserData{Color: color.NRGBA{A: 0xFF}}}, f.Tags[0])
}

func TestParse_InvalidHeader(t *testing.T) {
	data := asetest.Encode(asetest.Animation(1, 2, 2, 100))

	_, err := Parse(data[:100])
	assert.ErrorIs(t, err, ErrInvalidHeader)

	bad := append([]byte(nil), data...)
	binary.LittleEndian.PutUint16(bad[4:], 0x1234)
	_, err = Parse(bad)
	assert.ErrorIs(t, err, ErrInvalidHeader)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, 4, decodeErr.Offset)
	assert.Contains(t, err.Error(), "offset 4")
}

func TestParse_BadFrameMagic(t *testing.T) {
	data := asetest.Encode(asetest.Animation(1, 2, 2, 100))
	binary.LittleEndian.PutUint16(data[HeaderSize+4:], 0xBEEF)

	_, err := Parse(data)
	assert.ErrorIs(t, err, ErrInvalidHeader)
}

func TestParse_UnsupportedColorMode(t *testing.T) {
	s := asetest.Animation(1, 2, 2, 100)
	s.Depth = 24

	_, err := Parse(asetest.Encode(s))
	assert.ErrorIs(t, err, ErrUnsupportedColorMode)
}

func TestParse_Truncated(t *testing.T) {
	data := asetest.Encode(asetest.Animation(2, 4, 4, 100))

	_, err := Parse(data[:len(data)-10])
	assert.ErrorIs(t, err, ErrTruncated)

	// A chunk declaring more bytes than its frame holds
	data = asetest.Encode(asetest.Animation(1, 4, 4, 100))
	binary.LittleEndian.PutUint32(data[HeaderSize+FrameHeaderSize:], 0xFFFF)
	_, err = Parse(data)
	assert.ErrorIs(t, err, ErrTruncated)

	// A chunk declaring less than its own header
	binary.LittleEndian.PutUint32(data[HeaderSize+FrameHeaderSize:], 2)
	_, err = Parse(data)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestParse_CompressedCel(t *testing.T) {
	pixels := asetest.Fill(3, 3, blue)
	s := asetest.Sprite{
		Width: 3, Height: 3,
		Layers: []asetest.Layer{{Name: "a"}},
		Frames: []asetest.Frame{{Cels: []asetest.Cel{{Width: 3, Height: 3, Pixels: pixels, Compressed: true}}}},
	}

	f, err := Parse(asetest.Encode(s))
	require.NoError(t, err)
	assert.Equal(t, CelCompressed, f.Frames[0].Cels[0].Type)
	assert.Equal(t, pixels, f.Frames[0].Cels[0].Pixels)
}

func TestParse_CorruptCompressedCel(t *testing.T) {
	s := asetest.Sprite{
		Width: 2, Height: 2,
		Layers: []asetest.Layer{{Name: "a"}},
		Frames: []asetest.Frame{{Cels: []asetest.Cel{{Width: 8, Height: 8, Pixels: asetest.Fill(2, 2, red), Compressed: true}}}},
	}

	_, err := Parse(asetest.Encode(s))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestParse_OversizedCompressedCel(t *testing.T) {
	s := asetest.Sprite{
		Width: 2, Height: 2,
		Layers: []asetest.Layer{{Name: "a"}},
		Frames: []asetest.Frame{{Cels: []asetest.Cel{{Width: 0xFFFF, Height: 0xFFFF, Pixels: asetest.Fill(2, 2, red), Compressed: true}}}},
	}

	_, err := Parse(asetest.Encode(s))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestParse_LinkedCel(t *testing.T) {
	s := asetest.Animation(2, 2, 2, 100)
	s.Frames[1].Cels[0] = asetest.Cel{Linked: true, Link: 0, UserData: "copy"}

	f, err := Parse(asetest.Encode(s))
	require.NoError(t, err)

	cel := f.Frames[1].Cels[0]
	assert.True(t, cel.Linked)
	assert.Equal(t, uint16(0), cel.Link)
	assert.Equal(t, uint16(2), cel.Width)
	assert.Equal(t, asetest.Fill(2, 2, asetest.Color(0)), cel.Pixels)
	assert.Equal(t, "copy", cel.UserData.Text)
	assert.False(t, f.Frames[0].Cels[0].Linked)
}

func TestParse_LinkedCelMissing(t *testing.T) {
	s := asetest.Animation(2, 2, 2, 100)
	s.Frames[1].Cels[0] = asetest.Cel{Linked: true, Link: 5}

	_, err := Parse(asetest.Encode(s))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestParse_CelMissingLayer(t *testing.T) {
	s := asetest.Animation(1, 2, 2, 100)
	s.Frames[0].Cels[0].Layer = 3

	_, err := Parse(asetest.Encode(s))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestParse_TilemapCelSkipped(t *testing.T) {
	s := asetest.Animation(1, 2, 2, 100)
	s.Layers[0].Type = uint16(LayerTilemap)

	f, err := Parse(asetest.Encode(s))
	require.NoError(t, err)
	assert.Empty(t, f.Frames[0].Cels)
	assert.Equal(t, LayerTilemap, f.Layers[0].Type)
}

func TestParse_UnknownChunk(t *testing.T) {
	s := asetest.Animation(1, 2, 2, 100)
	s.Frames[0].Chunks = []asetest.Chunk{{Type: 0x2007, Data: []byte{1, 2, 3, 4, 5}}, {Type: 0x7777}}

	f, err := Parse(asetest.Encode(s))
	require.NoError(t, err)
	assert.Len(t, f.Frames[0].Cels, 1)
}

func TestParse_Palette(t *testing.T) {
	s := asetest.Animation(1, 1, 1, 100)
	s.Palette = []color.NRGBA{red, green, blue}

	f, err := Parse(asetest.Encode(s))
	require.NoError(t, err)
	assert.Len(t, f.Palette, 256)
	assert.Equal(t, color.Color(green), f.Palette[1])
	assert.Equal(t, color.Color(color.NRGBA{}), f.Palette[3])
}

func TestParse_InvalidPalette(t *testing.T) {
	data := make([]byte, 20)
	binary.LittleEndian.PutUint32(data[0:], 4) // size
	binary.LittleEndian.PutUint32(data[4:], 3) // first
	binary.LittleEndian.PutUint32(data[8:], 1) // last

	s := asetest.Animation(1, 1, 1, 100)
	s.Frames[0].Chunks = []asetest.Chunk{{Type: chunkPalette, Data: data}}

	_, err := Parse(asetest.Encode(s))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestParse_OversizedPalette(t *testing.T) {
	entry := []byte{0, 0, 1, 2, 3, 4}
	tests := map[string]struct {
		size, first, last uint32
		kind              error
	}{
		"too many entries":   {size: 50_000_000, first: 0, last: 0, kind: ErrInvalidRange},
		"max dword size":     {size: 0xFFFFFFFF, first: 0, last: 0, kind: ErrInvalidRange},
		"entries not stored": {size: 256, first: 0, last: 255, kind: ErrTruncated},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			data := make([]byte, 20)
			binary.LittleEndian.PutUint32(data[0:], tc.size)
			binary.LittleEndian.PutUint32(data[4:], tc.first)
			binary.LittleEndian.PutUint32(data[8:], tc.last)

			s := asetest.Animation(1, 1, 1, 100)
			s.Frames[0].Chunks = []asetest.Chunk{{Type: chunkPalette, Data: append(data, entry...)}}

			_, err := Parse(asetest.Encode(s))
			assert.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestParse_OversizedOldPalette(t *testing.T) {
	data := []byte{0x2C, 0x01} // 300 packets, each skipping 255 entries
	for i := 0; i < 300; i++ {
		data = append(data, 255, 1, 10, 20, 30)
	}

	s := asetest.Animation(1, 1, 1, 100)
	s.Frames[0].Chunks = []asetest.Chunk{{Type: chunkOldPalette, Data: data}}

	_, err := Parse(asetest.Encode(s))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestParse_OldPalette(t *testing.T) {
	s := asetest.Animation(1, 1, 1, 100)
	s.Frames[0].Chunks = []asetest.Chunk{
		{Type: chunkOldPalette, Data: []byte{1, 0, 2, 2, 10, 20, 30, 40, 50, 60}},
		{Type: chunkOldPalette64, Data: []byte{1, 0, 10, 1, 63, 0, 32}},
	}

	f, err := Parse(asetest.Encode(s))
	require.NoError(t, err)
	assert.Equal(t, color.Color(color.NRGBA{R: 10, G: 20, B: 30, A: 0xFF}), f.Palette[2])
	assert.Equal(t, color.Color(color.NRGBA{R: 40, G: 50, B: 60, A: 0xFF}), f.Palette[3])
	assert.Equal(t, color.Color(color.NRGBA{R: 255, G: 0, B: 129, A: 0xFF}), f.Palette[10])
}

func TestParse_UserData(t *testing.T) {
	teal := color.NRGBA{G: 0x80, B: 0x80, A: 0xFF}
	s := asetest.Animation(1, 2, 2, 100,
		asetest.Tag{Name: "a", UserData: "first", Color: red},
		asetest.Tag{Name: "b", Color: green},
	)
	s.Layers[0].UserData = "layer"
	s.Frames[0].Cels[0].UserData = "cel"
	s.Slices = []asetest.Slice{{
		Name:     "hit",
		UserData: "slice",
		Color:    &teal,
		Keys:     []asetest.SliceKey{{Bounds: image.Rect(0, 0, 1, 1)}},
	}}

	f, err := Parse(asetest.Encode(s))
	require.NoError(t, err)
	assert.Equal(t, "layer", f.Layers[0].UserData.Text)
	assert.Equal(t, "cel", f.Frames[0].Cels[0].UserData.Text)
	assert.Equal(t, "first", f.Tags[0].UserData.Text)
	assert.Equal(t, red, f.Tags[0].UserData.Color)
	assert.False(t, f.Tags[1].UserData.HasText)
	assert.Equal(t, green, f.Tags[1].UserData.Color)
	assert.Equal(t, UserData{Text: "slice", Color: teal, HasText: true, HasColor: true}, f.Slices[0].UserData)
}

func TestParse_Slices(t *testing.T) {
	pivot := image.Pt(2, 3)
	s := asetest.Animation(2, 8, 8, 100)
	s.Slices = []asetest.Slice{{
		Name: "panel",
		Keys: []asetest.SliceKey{
			{Frame: 0, Bounds: image.Rect(1, 1, 7, 7), Center: image.Rect(2, 2, 4, 4), Pivot: &pivot},
			{Frame: 1, Bounds: image.Rect(0, 0, 4, 4)},
		},
	}}

	f, err := Parse(asetest.Encode(s))
	require.NoError(t, err)
	require.Len(t, f.Slices, 1)
	assert.Equal(t, "panel", f.Slices[0].Name)
	assert.Equal(t, uint32(3), f.Slices[0].Flags)

	keys := f.Slices[0].Keys
	require.Len(t, keys, 2)
	assert.Equal(t, image.Rect(1, 1, 7, 7), keys[0].Bounds)
	assert.Equal(t, image.Rect(2, 2, 4, 4), keys[0].Center)
	assert.Equal(t, pivot, keys[0].Pivot)
	assert.True(t, keys[0].HasCenter)
	assert.True(t, keys[0].HasPivot)
	assert.Equal(t, uint32(1), keys[1].Frame)
	assert.Equal(t, image.Rect(0, 0, 4, 4), keys[1].Bounds)
}

func TestReader_Sticky(t *testing.T) {
	r := newReader([]byte{1, 0, 2}, 10)
	assert.Equal(t, uint16(1), r.word())
	assert.Equal(t, uint32(0), r.dword())
	assert.ErrorIs(t, r.err, ErrTruncated)
	assert.Equal(t, uint8(0), r.byte())
	assert.Nil(t, r.bytes(1))
	assert.Equal(t, 12, r.offset())
	assert.Contains(t, r.err.Error(), "offset 12")
}
