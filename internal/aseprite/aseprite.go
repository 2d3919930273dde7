// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package aseprite reads the raw chunk structure of Aseprite (.ase/.aseprite)
// files: header, frames, layers, cels, palette, tags, slices and user data.
package aseprite

import (
	"image"
	"image/color"
)

const (
	HeaderSize      = 128    // Size of the file header
	FrameHeaderSize = 16     // Size of every frame header
	FileMagic       = 0xA5E0 // Magic number of the file header
	FrameMagic      = 0xF1FA // Magic number of every frame header
	chunkHeaderSize = 6      // DWORD size + WORD type
	maxPaletteSize  = 1 << 16
	maxInflateRatio = 1032 // Best compression ratio deflate can achieve
)

// Chunk types
const (
	chunkOldPalette    = 0x0004
	chunkOldPalette64  = 0x0011
	chunkLayer         = 0x2004
	chunkCel           = 0x2005
	chunkCelExtra      = 0x2006
	chunkColorProfile  = 0x2007
	chunkExternalFiles = 0x2008
	chunkTags          = 0x2018
	chunkPalette       = 0x2019
	chunkUserData      = 0x2020
	chunkSlice         = 0x2022
	chunkTileset       = 0x2023
)

// Header flags
const (
	FlagLayerOpacity = 1 << 0 // Layer opacity has a valid value
	FlagGroupOpacity = 1 << 1 // Layer blend mode/opacity is valid for groups
	FlagLayerUUID    = 1 << 2 // Layers have an UUID
)

// ColorDepth is the number of bits per pixel of the sprite.
type ColorDepth uint16

// Supported color depths
const (
	DepthIndexed   ColorDepth = 8
	DepthGrayscale ColorDepth = 16
	DepthRGBA      ColorDepth = 32
)

// BytesPerPixel returns the size of a single pixel, or zero for unknown depths.
func (d ColorDepth) BytesPerPixel() int {
	switch d {
	case DepthIndexed, DepthGrayscale, DepthRGBA:
		return int(d) / 8
	default:
		return 0
	}
}

// Header is the 128-byte file header.
type Header struct {
	FileSize     uint32     // File size
	Frames       uint16     // Number of frames
	Width        uint16     // Canvas width in pixels
	Height       uint16     // Canvas height in pixels
	Depth        ColorDepth // Color depth (bits per pixel)
	Flags        uint32     // Header flags
	Speed        uint16     // Deprecated speed, frame durations are used instead
	Transparent  uint8      // Palette entry which is transparent in non-background layers
	Colors       uint16     // Number of colors (0 means 256 for old sprites)
	PixelWidth   uint8      // Pixel ratio width
	PixelHeight  uint8      // Pixel ratio height
	GridX, GridY int16      // Grid position
	GridWidth    uint16     // Grid width (0 if no grid)
	GridHeight   uint16     // Grid height (0 if no grid)
}

// LayerFlags describe the state of a layer.
type LayerFlags uint16

// Layer flags
const (
	LayerVisible    LayerFlags = 1 << 0
	LayerEditable   LayerFlags = 1 << 1
	LayerLocked     LayerFlags = 1 << 2
	LayerBackground LayerFlags = 1 << 3
	LayerLinkedCels LayerFlags = 1 << 4
	LayerCollapsed  LayerFlags = 1 << 5
	LayerReference  LayerFlags = 1 << 6
)

// LayerType is the kind of a layer.
type LayerType uint16

// Layer types
const (
	LayerNormal  LayerType = 0
	LayerGroup   LayerType = 1
	LayerTilemap LayerType = 2
)

// UserData is the optional text and color attached to a layer, cel, tag or slice.
type UserData struct {
	Text     string      // Text, valid if HasText
	Color    color.NRGBA // Color, valid if HasColor
	HasText  bool        // Whether the text was set
	HasColor bool        // Whether the color was set
}

// Layer is a decoded layer chunk.
type Layer struct {
	Flags      LayerFlags
	Type       LayerType
	ChildLevel uint16
	BlendMode  uint16
	Opacity    uint8
	Name       string
	Tileset    uint32
	UserData   UserData
}

// CelType is the storage type of a cel.
type CelType uint16

// Cel types
const (
	CelRaw        CelType = 0
	CelLinked     CelType = 1
	CelCompressed CelType = 2
	CelTilemap    CelType = 3
)

// Cel is a decoded cel chunk. Pixels are always uncompressed; linked cels are
// resolved to the cel they link to once the whole file is read, keeping only
// Link and Linked to tell them apart.
type Cel struct {
	Layer    uint16  // Layer index
	X, Y     int16   // Position of the cel on the canvas
	Opacity  uint8   // Cel opacity
	Type     CelType // Storage type as found in the file
	ZIndex   int16   // Relative z-index
	Width    uint16  // Width in pixels
	Height   uint16  // Height in pixels
	Pixels   []byte  // Uncompressed pixels in the file color depth
	Link     uint16  // Frame position for linked cels
	Linked   bool    // Whether the pixels were borrowed from the cel at frame Link
	UserData UserData
}

// Frame is a single frame: its duration and the cels placed on it.
type Frame struct {
	Duration uint16 // Duration in milliseconds
	Cels     []Cel
}

// Tag is a named frame range.
type Tag struct {
	From      uint16
	To        uint16
	Direction uint8  // 0 forward, 1 reverse, 2 ping-pong, 3 ping-pong reverse
	Repeat    uint16 // 0 means infinite
	Name      string
	UserData  UserData
}

// SliceKey is the geometry of a slice starting at a given frame.
type SliceKey struct {
	Frame     uint32
	Bounds    image.Rectangle // Slice bounds on the canvas
	Center    image.Rectangle // Nine-slice center, relative to Bounds.Min
	Pivot     image.Point     // Pivot, relative to Bounds.Min
	HasCenter bool
	HasPivot  bool
}

// Slice is a named region with one or more keys.
type Slice struct {
	Name     string
	Flags    uint32
	Keys     []SliceKey
	UserData UserData
}

// File is the raw content of an Aseprite file.
type File struct {
	Header  Header
	Frames  []Frame
	Layers  []Layer
	Tags    []Tag
	Slices  []Slice
	Palette color.Palette
}
