// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package aseprite

import (
	"image"
	"image/color"
)

// Parse decodes the chunk structure of an Aseprite file. It does not
// composite frames; see File.Compose.
func Parse(data []byte) (*File, error) {
	if len(data) < HeaderSize {
		return nil, Errorf(ErrInvalidHeader, 0, "got %d bytes, header needs %d", len(data), HeaderSize)
	}

	r := newReader(data, 0)
	header, magic := readHeader(r)
	switch {
	case magic != FileMagic:
		return nil, Errorf(ErrInvalidHeader, 4, "bad magic 0x%04X", magic)
	case header.Depth.BytesPerPixel() == 0:
		return nil, Errorf(ErrUnsupportedColorMode, 12, "color depth %d", header.Depth)
	}

	p := &parser{file: &File{
		Header:  header,
		Frames:  make([]Frame, 0, header.Frames),
		Palette: make(color.Palette, 256),
	}}

	for i := range p.file.Palette {
		p.file.Palette[i] = color.NRGBA{}
	}

	for i := 0; i < int(header.Frames); i++ {
		if err := p.readFrame(r); err != nil {
			return nil, err
		}
	}

	if err := p.file.resolveLinks(); err != nil {
		return nil, err
	}

	return p.file, nil
}

// readHeader reads the 128-byte header and returns it with its magic number.
func readHeader(r *reader) (Header, uint16) {
	var h Header
	h.FileSize = r.dword()
	magic := r.word()
	h.Frames = r.word()
	h.Width = r.word()
	h.Height = r.word()
	h.Depth = ColorDepth(r.word())
	h.Flags = r.dword()
	h.Speed = r.word()
	r.skip(8)
	h.Transparent = r.byte()
	r.skip(3)
	h.Colors = r.word()
	h.PixelWidth = r.byte()
	h.PixelHeight = r.byte()
	h.GridX = r.short()
	h.GridY = r.short()
	h.GridWidth = r.word()
	h.GridHeight = r.word()
	r.skip(84)
	return h, magic
}

// userDataTarget is what the next user data chunk applies to.
type userDataTarget struct {
	data *UserData
	tags int // index of the next tag to receive user data, -1 if not after a tags chunk
}

type parser struct {
	file   *File
	target userDataTarget
}

// readFrame reads a frame header and all of its chunks.
func (p *parser) readFrame(r *reader) error {
	start := r.offset()
	size := r.dword()
	magic := r.word()
	oldCount := r.word()
	duration := r.word()
	r.skip(2)
	newCount := r.dword()
	switch {
	case r.err != nil:
		return r.err
	case magic != FrameMagic:
		return Errorf(ErrInvalidHeader, start+4, "bad frame magic 0x%04X", magic)
	case size < FrameHeaderSize:
		return Errorf(ErrTruncated, start, "frame declares %d bytes", size)
	}

	body := r.bytes(int(size) - FrameHeaderSize)
	if r.err != nil {
		return r.err
	}

	count := int(newCount)
	if count == 0 {
		count = int(oldCount)
	}

	frame := Frame{Duration: duration}
	index := len(p.file.Frames)
	p.file.Frames = append(p.file.Frames, frame)
	p.target = userDataTarget{tags: -1}

	chunks := newReader(body, start+FrameHeaderSize)
	for i := 0; i < count; i++ {
		at := chunks.offset()
		length := int(chunks.dword())
		kind := chunks.word()
		if chunks.err != nil {
			return chunks.err
		}
		if length < chunkHeaderSize {
			return Errorf(ErrTruncated, at, "chunk declares %d bytes", length)
		}

		data := chunks.bytes(length - chunkHeaderSize)
		if chunks.err != nil {
			return chunks.err
		}

		if err := p.readChunk(index, kind, newReader(data, at+chunkHeaderSize)); err != nil {
			return err
		}
	}

	return nil
}

// readChunk dispatches a single chunk.
func (p *parser) readChunk(frame int, kind uint16, r *reader) error {
	if kind == chunkUserData {
		return p.readUserData(r)
	}

	p.target = userDataTarget{tags: -1}
	switch kind {
	case chunkLayer:
		return p.readLayer(r)
	case chunkCel:
		return p.readCel(frame, r)
	case chunkTags:
		return p.readTags(r)
	case chunkPalette:
		return p.readPalette(r)
	case chunkOldPalette, chunkOldPalette64:
		return p.readOldPalette(r, kind == chunkOldPalette64)
	case chunkSlice:
		return p.readSlice(r)
	default:
		// Cel extra, color profile, external files, tilesets, masks and paths
		// carry nothing the decoder needs.
		return nil
	}
}

func (p *parser) readLayer(r *reader) error {
	var layer Layer
	layer.Flags = LayerFlags(r.word())
	layer.Type = LayerType(r.word())
	layer.ChildLevel = r.word()
	r.skip(4) // default width and height, ignored
	layer.BlendMode = r.word()
	layer.Opacity = r.byte()
	r.skip(3)
	layer.Name = r.string()
	if layer.Type == LayerTilemap {
		layer.Tileset = r.dword()
	}
	if p.file.Header.Flags&FlagLayerUUID != 0 {
		r.skip(16)
	}
	if r.err != nil {
		return r.err
	}

	p.file.Layers = append(p.file.Layers, layer)
	p.target.data = &p.file.Layers[len(p.file.Layers)-1].UserData
	return nil
}

func (p *parser) readCel(frame int, r *reader) error {
	var cel Cel
	cel.Layer = r.word()
	cel.X = r.short()
	cel.Y = r.short()
	cel.Opacity = r.byte()
	cel.Type = CelType(r.word())
	cel.ZIndex = r.short()
	r.skip(5)
	if r.err != nil {
		return r.err
	}

	switch {
	case int(cel.Layer) >= len(p.file.Layers):
		return Errorf(ErrInvalidRange, r.offset(), "cel references layer %d of %d", cel.Layer, len(p.file.Layers))
	case p.file.Layers[cel.Layer].Type == LayerTilemap:
		return nil // tilemaps reference tilesets, which are not rendered
	}

	bpp := p.file.Header.Depth.BytesPerPixel()
	switch cel.Type {
	case CelRaw:
		cel.Width = r.word()
		cel.Height = r.word()
		cel.Pixels = r.bytes(int(cel.Width) * int(cel.Height) * bpp)
	case CelLinked:
		cel.Link = r.word()
	case CelCompressed:
		cel.Width = r.word()
		cel.Height = r.word()
		at := r.offset()
		data := r.bytes(r.remaining())
		if r.err != nil {
			return r.err
		}

		size := int(cel.Width) * int(cel.Height) * bpp
		if size > len(data)*maxInflateRatio {
			return Errorf(ErrInvalidRange, at, "compressed cel of %d bytes cannot expand to %d", len(data), size)
		}

		pixels, err := inflate(data, size)
		if err != nil {
			return Errorf(ErrTruncated, at, "compressed cel: %v", err)
		}
		cel.Pixels = pixels
	default:
		return nil
	}

	if r.err != nil {
		return r.err
	}

	f := &p.file.Frames[frame]
	f.Cels = append(f.Cels, cel)
	p.target.data = &f.Cels[len(f.Cels)-1].UserData
	return nil
}

func (p *parser) readTags(r *reader) error {
	count := int(r.word())
	r.skip(8)

	first := len(p.file.Tags)
	for i := 0; i < count && r.err == nil; i++ {
		var tag Tag
		tag.From = r.word()
		tag.To = r.word()
		tag.Direction = r.byte()
		tag.Repeat = r.word()
		r.skip(6)
		rgb := r.bytes(3)
		r.skip(1)
		tag.Name = r.string()
		if len(rgb) == 3 {
			tag.UserData.Color = color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xFF}
		}
		p.file.Tags = append(p.file.Tags, tag)
	}

	if r.err != nil {
		return r.err
	}

	// The user data chunks following a tags chunk apply to each tag in order
	p.target.tags = first
	return nil
}

func (p *parser) readPalette(r *reader) error {
	size := int(r.dword())
	first := int(r.dword())
	last := int(r.dword())
	r.skip(8)
	if r.err != nil {
		return r.err
	}
	switch {
	case size > maxPaletteSize:
		return Errorf(ErrInvalidRange, r.offset(), "palette of %d entries exceeds %d", size, maxPaletteSize)
	case first > last || last >= size:
		return Errorf(ErrInvalidRange, r.offset(), "palette entries %d..%d of %d", first, last, size)
	case (last-first+1)*6 > r.remaining():
		return Errorf(ErrTruncated, r.offset(), "palette entries %d..%d need %d bytes, %d remaining",
			first, last, (last-first+1)*6, r.remaining())
	}

	p.growPalette(size)
	for i := first; i <= last && r.err == nil; i++ {
		flags := r.word()
		c := color.NRGBA{R: r.byte(), G: r.byte(), B: r.byte(), A: r.byte()}
		if flags&1 != 0 {
			_ = r.string()
		}
		p.file.Palette[i] = c
	}

	return r.err
}

func (p *parser) readOldPalette(r *reader, sixBit bool) error {
	packets := int(r.word())
	index := 0
	for i := 0; i < packets && r.err == nil; i++ {
		index += int(r.byte())
		count := int(r.byte())
		if count == 0 {
			count = 256
		}

		if index+count > maxPaletteSize {
			return Errorf(ErrInvalidRange, r.offset(), "palette entries %d..%d exceed %d", index, index+count-1, maxPaletteSize)
		}

		p.growPalette(index + count)
		for j := 0; j < count && r.err == nil; j++ {
			c := color.NRGBA{R: r.byte(), G: r.byte(), B: r.byte(), A: 0xFF}
			if sixBit {
				c.R, c.G, c.B = scale6(c.R), scale6(c.G), scale6(c.B)
			}
			p.file.Palette[index] = c
			index++
		}
	}

	return r.err
}

func (p *parser) readSlice(r *reader) error {
	var slice Slice
	count := int(r.dword())
	slice.Flags = r.dword()
	r.skip(4)
	slice.Name = r.string()

	for i := 0; i < count && r.err == nil; i++ {
		var key SliceKey
		key.Frame = r.dword()
		x, y := int(r.long()), int(r.long())
		w, h := int(r.dword()), int(r.dword())
		key.Bounds = image.Rect(x, y, x+w, y+h)
		if slice.Flags&1 != 0 {
			cx, cy := int(r.long()), int(r.long())
			cw, ch := int(r.dword()), int(r.dword())
			key.Center = image.Rect(cx, cy, cx+cw, cy+ch)
			key.HasCenter = true
		}
		if slice.Flags&2 != 0 {
			key.Pivot = image.Pt(int(r.long()), int(r.long()))
			key.HasPivot = true
		}
		slice.Keys = append(slice.Keys, key)
	}

	if r.err != nil {
		return r.err
	}

	p.file.Slices = append(p.file.Slices, slice)
	p.target.data = &p.file.Slices[len(p.file.Slices)-1].UserData
	return nil
}

func (p *parser) readUserData(r *reader) error {
	var data UserData
	flags := r.dword()
	if flags&1 != 0 {
		data.Text = r.string()
		data.HasText = true
	}
	if flags&2 != 0 {
		data.Color = color.NRGBA{R: r.byte(), G: r.byte(), B: r.byte(), A: r.byte()}
		data.HasColor = true
	}
	if r.err != nil {
		return r.err
	}

	// Properties maps (flag 4) are not decoded, the rest of the chunk is ignored
	switch {
	case p.target.tags >= 0 && p.target.tags < len(p.file.Tags):
		tag := &p.file.Tags[p.target.tags]
		if !data.HasColor {
			data.Color = tag.UserData.Color
		}
		tag.UserData = data
		p.target.tags++
	case p.target.data != nil:
		*p.target.data = data
		p.target.data = nil
	}
	return nil
}

// growPalette makes sure the palette holds at least n entries.
func (p *parser) growPalette(n int) {
	for len(p.file.Palette) < n {
		p.file.Palette = append(p.file.Palette, color.NRGBA{})
	}
}

// resolveLinks replaces linked cels with the data of the cel they point to.
func (f *File) resolveLinks() error {
	for i := range f.Frames {
		for j := range f.Frames[i].Cels {
			cel := &f.Frames[i].Cels[j]
			if cel.Type != CelLinked {
				continue
			}

			if int(cel.Link) >= len(f.Frames) {
				return Errorf(ErrInvalidRange, -1, "frame %d links layer %d to missing frame %d", i, cel.Layer, cel.Link)
			}

			target, ok := f.Frames[cel.Link].cel(cel.Layer)
			if !ok || target.Type == CelLinked {
				return Errorf(ErrInvalidRange, -1, "frame %d links layer %d to empty frame %d", i, cel.Layer, cel.Link)
			}

			link, data := cel.Link, cel.UserData
			*cel = *target
			cel.Link, cel.Linked = link, true
			if data.HasText || data.HasColor {
				cel.UserData = data
			}
		}
	}
	return nil
}

// cel returns the cel of the frame for the given layer.
func (f *Frame) cel(layer uint16) (*Cel, bool) {
	for i := range f.Cels {
		if f.Cels[i].Layer == layer {
			return &f.Cels[i], true
		}
	}
	return nil, false
}

// scale6 maps a 6-bit color component to 8 bits.
func scale6(v uint8) uint8 {
	return uint8(int(v&0x3F) * 255 / 63)
}
