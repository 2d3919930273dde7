// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package ase

import (
	"image"
	"image/color"
	"sort"
	"time"

	"github.com/kelindar/ase/internal/aseprite"
)

// Decode errors, usable with errors.Is on any error returned by Decode.
var (
	ErrInvalidHeader        = aseprite.ErrInvalidHeader
	ErrTruncated            = aseprite.ErrTruncated
	ErrUnsupportedColorMode = aseprite.ErrUnsupportedColorMode
	ErrInvalidRange         = aseprite.ErrInvalidRange
)

// DecodeError describes why a file could not be decoded: its Kind is one of
// the Err* values above and Offset is the byte offset where it was found.
type DecodeError = aseprite.DecodeError

// defaultDuration is used for frames that carry no duration at all.
const defaultDuration = 100 * time.Millisecond

// ColorMode is the pixel format of the source file.
type ColorMode int

// Color modes
const (
	ColorRGBA ColorMode = iota
	ColorGrayscale
	ColorIndexed
)

// String returns the name of the color mode.
func (m ColorMode) String() string {
	switch m {
	case ColorRGBA:
		return "rgba"
	case ColorGrayscale:
		return "grayscale"
	case ColorIndexed:
		return "indexed"
	default:
		return "unknown"
	}
}

// Document is a decoded sprite. It is immutable once returned by Decode and
// can be shared freely between goroutines.
type Document struct {
	Width     int           // Canvas width in pixels
	Height    int           // Canvas height in pixels
	ColorMode ColorMode     // Pixel format of the source file
	Frames    []Frame       // Composited frames, in order
	Tags      []Tag         // Named frame ranges
	Slices    []Slice       // Named regions
	Layers    []Layer       // Layers, bottom to top
	Palette   color.Palette // Palette of the source file
}

// Frame is a composited frame image and its display duration.
type Frame struct {
	Image    *image.NRGBA
	Duration time.Duration
}

// Tag is a named, inclusive frame range with a playback hint.
type Tag struct {
	Name      string
	From, To  int         // Inclusive frame range
	Direction Direction   // Playback direction hint
	Repeat    int         // Number of passes, 0 means forever
	Color     color.NRGBA // Color of the tag in the editor
	UserData  string
}

// Len returns the number of frames covered by the tag.
func (t *Tag) Len() int {
	return t.To - t.From + 1
}

// Layer describes a layer of the sprite.
type Layer struct {
	Name      string
	Type      aseprite.LayerType
	Level     int  // Nesting depth within groups
	Visible   bool // Whether the layer itself is visible
	Opacity   uint8
	BlendMode int
	UserData  string
}

// Slice is a named region whose geometry may change at given frames.
type Slice struct {
	Name     string
	Color    color.NRGBA
	UserData string
	Keys     []SliceKey // Keys sorted by frame
}

// SliceKey is the geometry of a slice from a given frame onwards.
type SliceKey struct {
	Frame     int
	Bounds    image.Rectangle // Bounds on the canvas
	Center    image.Rectangle // Nine-slice center, relative to Bounds.Min
	Pivot     image.Point     // Pivot, relative to Bounds.Min
	HasCenter bool
	HasPivot  bool
}

// Decode decodes an Aseprite file and composites all of its frames. The
// result is fully validated: tag ranges lie within the frames and slice keys
// reference existing frames with bounds inside the canvas.
func Decode(data []byte) (*Document, error) {
	file, err := aseprite.Parse(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Width:     int(file.Header.Width),
		Height:    int(file.Header.Height),
		ColorMode: colorModeOf(file.Header.Depth),
		Frames:    make([]Frame, len(file.Frames)),
		Tags:      make([]Tag, 0, len(file.Tags)),
		Slices:    make([]Slice, 0, len(file.Slices)),
		Layers:    make([]Layer, 0, len(file.Layers)),
		Palette:   file.Palette,
	}

	for _, l := range file.Layers {
		doc.Layers = append(doc.Layers, Layer{
			Name:      l.Name,
			Type:      l.Type,
			Level:     int(l.ChildLevel),
			Visible:   l.Flags&aseprite.LayerVisible != 0,
			Opacity:   l.Opacity,
			BlendMode: int(l.BlendMode),
			UserData:  l.UserData.Text,
		})
	}

	for _, t := range file.Tags {
		if err := doc.addTag(t); err != nil {
			return nil, err
		}
	}

	for _, s := range file.Slices {
		if err := doc.addSlice(s); err != nil {
			return nil, err
		}
	}

	for i, f := range file.Frames {
		doc.Frames[i] = Frame{
			Image:    file.Compose(i),
			Duration: frameDuration(f.Duration, file.Header.Speed),
		}
	}

	return doc, nil
}

// Tag returns the tag with the given name.
func (d *Document) Tag(name string) (*Tag, bool) {
	for i := range d.Tags {
		if d.Tags[i].Name == name {
			return &d.Tags[i], true
		}
	}
	return nil, false
}

// Slice returns the slice with the given name.
func (d *Document) Slice(name string) (*Slice, bool) {
	for i := range d.Slices {
		if d.Slices[i].Name == name {
			return &d.Slices[i], true
		}
	}
	return nil, false
}

// Bounds returns the canvas rectangle.
func (d *Document) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.Width, d.Height)
}

func (d *Document) addTag(t aseprite.Tag) error {
	from, to := int(t.From), int(t.To)
	if from > to || to >= len(d.Frames) {
		return aseprite.Errorf(ErrInvalidRange, -1, "tag '%s' spans frames %d..%d of %d", t.Name, from, to, len(d.Frames))
	}

	d.Tags = append(d.Tags, Tag{
		Name:      t.Name,
		From:      from,
		To:        to,
		Direction: directionOf(t.Direction),
		Repeat:    int(t.Repeat),
		Color:     t.UserData.Color,
		UserData:  t.UserData.Text,
	})
	return nil
}

func (d *Document) addSlice(s aseprite.Slice) error {
	slice := Slice{
		Name:     s.Name,
		Color:    s.UserData.Color,
		UserData: s.UserData.Text,
		Keys:     make([]SliceKey, 0, len(s.Keys)),
	}

	canvas := d.Bounds()
	for _, k := range s.Keys {
		switch {
		case int(k.Frame) >= len(d.Frames):
			return aseprite.Errorf(ErrInvalidRange, -1, "slice '%s' references frame %d of %d", s.Name, k.Frame, len(d.Frames))
		case !k.Bounds.In(canvas):
			return aseprite.Errorf(ErrInvalidRange, -1, "slice '%s' bounds %v lie outside of canvas %v", s.Name, k.Bounds, canvas)
		}

		slice.Keys = append(slice.Keys, SliceKey{
			Frame:     int(k.Frame),
			Bounds:    k.Bounds,
			Center:    k.Center,
			Pivot:     k.Pivot,
			HasCenter: k.HasCenter,
			HasPivot:  k.HasPivot,
		})
	}

	sort.SliceStable(slice.Keys, func(i, j int) bool {
		return slice.Keys[i].Frame < slice.Keys[j].Frame
	})

	d.Slices = append(d.Slices, slice)
	return nil
}

// frameDuration returns the duration of a frame, falling back to the
// deprecated header speed and then to a default for frames without one.
func frameDuration(ms, speed uint16) time.Duration {
	switch {
	case ms > 0:
		return time.Duration(ms) * time.Millisecond
	case speed > 0:
		return time.Duration(speed) * time.Millisecond
	default:
		return defaultDuration
	}
}

func colorModeOf(depth aseprite.ColorDepth) ColorMode {
	switch depth {
	case aseprite.DepthGrayscale:
		return ColorGrayscale
	case aseprite.DepthIndexed:
		return ColorIndexed
	default:
		return ColorRGBA
	}
}
