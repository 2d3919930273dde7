// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package asetest writes small Aseprite files in memory so that the decoder,
// packer and playback tests can run without binary fixtures on disk.
package asetest

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"image"
	"image/color"
)

// Sprite describes the content of a file to encode.
type Sprite struct {
	Width, Height int
	Depth         int    // 32, 16 or 8 bits per pixel, 32 if zero
	Flags         uint32 // Header flags, 1 (valid layer opacity) if zero
	Transparent   uint8  // Transparent palette index for indexed sprites
	Layers        []Layer
	Frames        []Frame
	Tags          []Tag
	Slices        []Slice
	Palette       []color.NRGBA
}

// Layer describes a layer chunk, written in the first frame.
type Layer struct {
	Name       string
	Hidden     bool
	Flags      uint16 // Extra flags, the visible bit is derived from Hidden
	Type       uint16
	ChildLevel uint16
	Opacity    uint8 // 255 if zero
	UserData   string
}

// Cel describes a cel chunk.
type Cel struct {
	Layer      int
	X, Y       int
	Width      int
	Height     int
	Pixels     []byte
	Opacity    uint8 // 255 if zero
	ZIndex     int
	Compressed bool
	Linked     bool
	Link       int // Frame position when Linked
	UserData   string
}

// Chunk is an arbitrary chunk appended to a frame.
type Chunk struct {
	Type uint16
	Data []byte
}

// Frame describes a frame and its cels.
type Frame struct {
	Duration int // Milliseconds, 100 if zero
	Cels     []Cel
	Chunks   []Chunk
}

// Tag describes an entry of the tags chunk.
type Tag struct {
	Name      string
	From, To  int
	Direction uint8
	Repeat    int
	Color     color.NRGBA
	UserData  string
}

// SliceKey describes a slice key. Center is relative to the bounds and only
// written when not empty.
type SliceKey struct {
	Frame  int
	Bounds image.Rectangle
	Center image.Rectangle
	Pivot  *image.Point
}

// Slice describes a slice chunk.
type Slice struct {
	Name     string
	Keys     []SliceKey
	UserData string
	Color    *color.NRGBA
}

// Encode writes the sprite in the Aseprite binary format.
func Encode(s Sprite) []byte {
	depth := s.Depth
	if depth == 0 {
		depth = 32
	}

	flags := s.Flags
	if flags == 0 {
		flags = 1
	}

	out := new(writer)
	out.dword(0) // patched below
	out.word(0xA5E0)
	out.word(uint16(len(s.Frames)))
	out.word(uint16(s.Width))
	out.word(uint16(s.Height))
	out.word(uint16(depth))
	out.dword(flags)
	out.word(100)
	out.zero(8)
	out.byte(s.Transparent)
	out.zero(3)
	out.word(uint16(len(s.Palette)))
	out.byte(1)
	out.byte(1)
	out.word(0)
	out.word(0)
	out.word(16)
	out.word(16)
	out.zero(84)

	for i, frame := range s.Frames {
		var chunks []Chunk
		if i == 0 {
			chunks = append(chunks, s.headerChunks()...)
		}
		for _, cel := range frame.Cels {
			chunks = append(chunks, Chunk{Type: 0x2005, Data: encodeCel(cel)})
			if cel.UserData != "" {
				chunks = append(chunks, userData(cel.UserData, nil))
			}
		}
		chunks = append(chunks, frame.Chunks...)
		out.Write(EncodeFrame(frame.Duration, chunks))
	}

	data := out.Bytes()
	binary.LittleEndian.PutUint32(data, uint32(len(data)))
	return data
}

// EncodeFrame writes a frame header followed by its chunks.
func EncodeFrame(duration int, chunks []Chunk) []byte {
	if duration == 0 {
		duration = 100
	}

	body := new(writer)
	for _, c := range chunks {
		body.dword(uint32(len(c.Data) + 6))
		body.word(c.Type)
		body.Write(c.Data)
	}

	out := new(writer)
	out.dword(uint32(body.Len() + 16))
	out.word(0xF1FA)
	if len(chunks) < 0xFFFF {
		out.word(uint16(len(chunks)))
	} else {
		out.word(0xFFFF)
	}
	out.word(uint16(duration))
	out.zero(2)
	out.dword(uint32(len(chunks)))
	out.Write(body.Bytes())
	return out.Bytes()
}

// headerChunks returns the palette, layer, tag and slice chunks of the first frame.
func (s *Sprite) headerChunks() (chunks []Chunk) {
	if len(s.Palette) > 0 {
		w := new(writer)
		w.dword(uint32(len(s.Palette)))
		w.dword(0)
		w.dword(uint32(len(s.Palette) - 1))
		w.zero(8)
		for _, c := range s.Palette {
			w.word(0)
			w.Write([]byte{c.R, c.G, c.B, c.A})
		}
		chunks = append(chunks, Chunk{Type: 0x2019, Data: w.Bytes()})
	}

	for _, layer := range s.Layers {
		w := new(writer)
		flags := layer.Flags
		if !layer.Hidden {
			flags |= 1
		}
		opacity := layer.Opacity
		if opacity == 0 {
			opacity = 255
		}

		w.word(flags)
		w.word(layer.Type)
		w.word(layer.ChildLevel)
		w.zero(4)
		w.word(0)
		w.byte(opacity)
		w.zero(3)
		w.string(layer.Name)
		if layer.Type == 2 {
			w.dword(0)
		}
		chunks = append(chunks, Chunk{Type: 0x2004, Data: w.Bytes()})
		if layer.UserData != "" {
			chunks = append(chunks, userData(layer.UserData, nil))
		}
	}

	if len(s.Tags) > 0 {
		w := new(writer)
		w.word(uint16(len(s.Tags)))
		w.zero(8)
		withData := false
		for _, tag := range s.Tags {
			w.word(uint16(tag.From))
			w.word(uint16(tag.To))
			w.byte(tag.Direction)
			w.word(uint16(tag.Repeat))
			w.zero(6)
			w.Write([]byte{tag.Color.R, tag.Color.G, tag.Color.B, 0})
			w.string(tag.Name)
			withData = withData || tag.UserData != ""
		}
		chunks = append(chunks, Chunk{Type: 0x2018, Data: w.Bytes()})
		if withData {
			for _, tag := range s.Tags {
				c := tag.Color
				chunks = append(chunks, userData(tag.UserData, &c))
			}
		}
	}

	for _, slice := range s.Slices {
		chunks = append(chunks, Chunk{Type: 0x2022, Data: encodeSlice(slice)})
		if slice.UserData != "" || slice.Color != nil {
			chunks = append(chunks, userData(slice.UserData, slice.Color))
		}
	}
	return
}

func encodeCel(cel Cel) []byte {
	opacity := cel.Opacity
	if opacity == 0 {
		opacity = 255
	}

	w := new(writer)
	w.word(uint16(cel.Layer))
	w.word(uint16(int16(cel.X)))
	w.word(uint16(int16(cel.Y)))
	w.byte(opacity)
	switch {
	case cel.Linked:
		w.word(1)
	case cel.Compressed:
		w.word(2)
	default:
		w.word(0)
	}
	w.word(uint16(int16(cel.ZIndex)))
	w.zero(5)

	switch {
	case cel.Linked:
		w.word(uint16(cel.Link))
	case cel.Compressed:
		w.word(uint16(cel.Width))
		w.word(uint16(cel.Height))
		w.Write(Compress(cel.Pixels))
	default:
		w.word(uint16(cel.Width))
		w.word(uint16(cel.Height))
		w.Write(cel.Pixels)
	}
	return w.Bytes()
}

func encodeSlice(slice Slice) []byte {
	var flags uint32
	for _, k := range slice.Keys {
		if !k.Center.Empty() {
			flags |= 1
		}
		if k.Pivot != nil {
			flags |= 2
		}
	}

	w := new(writer)
	w.dword(uint32(len(slice.Keys)))
	w.dword(flags)
	w.dword(0)
	w.string(slice.Name)
	for _, k := range slice.Keys {
		w.dword(uint32(k.Frame))
		w.dword(uint32(int32(k.Bounds.Min.X)))
		w.dword(uint32(int32(k.Bounds.Min.Y)))
		w.dword(uint32(k.Bounds.Dx()))
		w.dword(uint32(k.Bounds.Dy()))
		if flags&1 != 0 {
			w.dword(uint32(int32(k.Center.Min.X)))
			w.dword(uint32(int32(k.Center.Min.Y)))
			w.dword(uint32(k.Center.Dx()))
			w.dword(uint32(k.Center.Dy()))
		}
		if flags&2 != 0 {
			var p image.Point
			if k.Pivot != nil {
				p = *k.Pivot
			}
			w.dword(uint32(int32(p.X)))
			w.dword(uint32(int32(p.Y)))
		}
	}
	return w.Bytes()
}

func userData(text string, c *color.NRGBA) Chunk {
	w := new(writer)
	var flags uint32
	if text != "" {
		flags |= 1
	}
	if c != nil {
		flags |= 2
	}

	w.dword(flags)
	if text != "" {
		w.string(text)
	}
	if c != nil {
		w.Write([]byte{c.R, c.G, c.B, c.A})
	}
	return Chunk{Type: 0x2020, Data: w.Bytes()}
}

// Compress deflates data with zlib, as compressed cels store their pixels.
func Compress(data []byte) []byte {
	var buf bytes.Buffer
	z := zlib.NewWriter(&buf)
	z.Write(data)
	z.Close()
	return buf.Bytes()
}

// Fill returns w*h pixels of the given color in RGBA depth.
func Fill(w, h int, c color.NRGBA) []byte {
	out := make([]byte, 0, w*h*4)
	for i := 0; i < w*h; i++ {
		out = append(out, c.R, c.G, c.B, c.A)
	}
	return out
}

// Color returns a distinct opaque color for the i-th frame.
func Color(i int) color.NRGBA {
	return color.NRGBA{R: uint8(10 + i*20), G: uint8(200 - i*10), B: uint8(i * 7), A: 0xFF}
}

// Animation returns a single-layer RGBA sprite of the given frame size where
// every frame is filled with Color(i) and lasts duration milliseconds.
func Animation(frames, w, h, duration int, tags ...Tag) Sprite {
	s := Sprite{
		Width:  w,
		Height: h,
		Layers: []Layer{{Name: "Layer 1"}},
		Tags:   tags,
	}

	for i := 0; i < frames; i++ {
		s.Frames = append(s.Frames, Frame{
			Duration: duration,
			Cels:     []Cel{{Width: w, Height: h, Pixels: Fill(w, h, Color(i))}},
		})
	}
	return s
}

// writer is a little-endian byte buffer.
type writer struct {
	bytes.Buffer
}

func (w *writer) byte(v uint8) {
	w.WriteByte(v)
}

func (w *writer) word(v uint16) {
	w.Write(binary.LittleEndian.AppendUint16(nil, v))
}

func (w *writer) dword(v uint32) {
	w.Write(binary.LittleEndian.AppendUint32(nil, v))
}

func (w *writer) zero(n int) {
	w.Write(make([]byte, n))
}

func (w *writer) string(v string) {
	w.word(uint16(len(v)))
	w.WriteString(v)
}
