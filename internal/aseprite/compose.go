// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package aseprite

import (
	"image"
	"image/color"
	"sort"

	"github.com/kelindar/ase/internal/bitmap"
	"golang.org/x/image/draw"
)

// Compose renders a frame onto a transparent canvas of the sprite size. Only
// visible normal layers are drawn; cels are blended source-over in layer
// order adjusted by their z-index. It returns nil if the frame does not exist.
func (f *File) Compose(frame int) *image.NRGBA {
	if frame < 0 || frame >= len(f.Frames) {
		return nil
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, int(f.Header.Width), int(f.Header.Height)))
	visible := f.visibleLayers()
	palette := f.celPalette()

	cels := make([]*Cel, 0, len(f.Frames[frame].Cels))
	for i := range f.Frames[frame].Cels {
		if cel := &f.Frames[frame].Cels[i]; visible[cel.Layer] {
			cels = append(cels, cel)
		}
	}

	sort.SliceStable(cels, func(i, j int) bool {
		oi := int(cels[i].Layer) + int(cels[i].ZIndex)
		oj := int(cels[j].Layer) + int(cels[j].ZIndex)
		if oi != oj {
			return oi < oj
		}
		return cels[i].ZIndex < cels[j].ZIndex
	})

	for _, cel := range cels {
		f.drawCel(canvas, cel, palette)
	}

	return canvas
}

// drawCel blends a single cel onto the canvas.
func (f *File) drawCel(canvas *image.NRGBA, cel *Cel, palette color.Palette) {
	layer := &f.Layers[cel.Layer]
	src := f.celImage(cel, layer, palette)
	if src == nil {
		return
	}

	opacity := int(cel.Opacity)
	if f.Header.Flags&FlagLayerOpacity != 0 {
		opacity = opacity * int(layer.Opacity) / 255
	}

	dst := image.Rect(int(cel.X), int(cel.Y), int(cel.X)+int(cel.Width), int(cel.Y)+int(cel.Height))
	switch opacity {
	case 0:
		return
	case 255:
		draw.Draw(canvas, dst, src, image.Point{}, draw.Over)
	default:
		mask := image.NewUniform(color.Alpha{A: uint8(opacity)})
		draw.DrawMask(canvas, dst, src, image.Point{}, mask, image.Point{}, draw.Over)
	}
}

// celImage wraps the cel pixels into an image of the file color depth.
func (f *File) celImage(cel *Cel, layer *Layer, palette color.Palette) image.Image {
	w, h := int(cel.Width), int(cel.Height)
	if w == 0 || h == 0 || len(cel.Pixels) < w*h*f.Header.Depth.BytesPerPixel() {
		return nil
	}

	rect := image.Rect(0, 0, w, h)
	switch f.Header.Depth {
	case DepthRGBA:
		return &image.NRGBA{Pix: cel.Pixels, Stride: 4 * w, Rect: rect}
	case DepthGrayscale:
		return bitmap.FromPixels(cel.Pixels, w, h)
	case DepthIndexed:
		if layer.Flags&LayerBackground != 0 {
			palette = f.Palette
		}
		return &image.Paletted{Pix: cel.Pixels, Stride: w, Rect: rect, Palette: palette}
	default:
		return nil
	}
}

// celPalette returns the palette used by indexed cels of non-background
// layers, where the transparent index is fully transparent.
func (f *File) celPalette() color.Palette {
	if f.Header.Depth != DepthIndexed {
		return nil
	}

	palette := make(color.Palette, len(f.Palette))
	copy(palette, f.Palette)
	if int(f.Header.Transparent) < len(palette) {
		palette[f.Header.Transparent] = color.NRGBA{}
	}
	return palette
}

// visibleLayers returns, per layer, whether its cels are drawn. A layer is
// hidden when it or any of its parent groups is hidden. Groups, reference and
// tilemap layers never draw cels of their own.
func (f *File) visibleLayers() []bool {
	visible := make([]bool, len(f.Layers))
	shown := make([]bool, 0, 4) // shown[level] of the last layer seen at that level
	for i, layer := range f.Layers {
		level := int(layer.ChildLevel)
		if level > len(shown) {
			level = len(shown)
		}

		on := layer.Flags&LayerVisible != 0 && layer.Flags&LayerReference == 0
		if level > 0 {
			on = on && shown[level-1]
		}

		shown = append(shown[:level], on)
		visible[i] = on && layer.Type == LayerNormal
	}
	return visible
}
