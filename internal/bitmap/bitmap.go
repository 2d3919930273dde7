// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package bitmap

import (
	"image"
	"image/color"
)

// GrayAlphaColor represents a 16-bit grayscale pixel as stored by Aseprite:
// one byte of value followed by one byte of (non-premultiplied) alpha.
type GrayAlphaColor struct {
	Y, A uint8
}

// RGBA implements the color.Color interface, returning alpha-premultiplied
// 16-bit channels as required by the image/color contract.
func (c GrayAlphaColor) RGBA() (r, g, b, a uint32) {
	y := uint32(c.Y) * 0x101
	a = uint32(c.A) * 0x101
	y = y * a / 0xFFFF
	return y, y, y, a
}

// GrayAlphaModel is the color model for GrayAlphaColor values.
var GrayAlphaModel color.Model = color.ModelFunc(grayAlphaModel)

func grayAlphaModel(c color.Color) color.Color {
	if _, ok := c.(GrayAlphaColor); ok {
		return c
	}

	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0 {
		return GrayAlphaColor{}
	}

	// Same luma weights as color.GrayModel, on straight (non-premultiplied) values
	y := (19595*uint32(n.R) + 38470*uint32(n.G) + 7471*uint32(n.B) + 1<<15) >> 16
	return GrayAlphaColor{Y: uint8(y), A: n.A}
}

// GrayAlpha is an in-memory image whose pixels are GrayAlphaColor values.
type GrayAlpha struct {
	Pix    []byte          // Pix holds the image's pixels as value/alpha byte pairs.
	Stride int             // Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Rect   image.Rectangle // Rect is the image's bounds.
}

// NewGrayAlpha returns a new GrayAlpha image with the given bounds.
func NewGrayAlpha(r image.Rectangle) *GrayAlpha {
	w, h := r.Dx(), r.Dy()
	stride := w * 2
	return &GrayAlpha{Pix: make([]byte, stride*h), Stride: stride, Rect: r}
}

// FromPixels wraps raw value/alpha pairs as a w×h image. The slice is not copied.
func FromPixels(pix []byte, w, h int) *GrayAlpha {
	return &GrayAlpha{Pix: pix, Stride: w * 2, Rect: image.Rect(0, 0, w, h)}
}

// ColorModel implements the Image interface.
func (p *GrayAlpha) ColorModel() color.Model {
	return GrayAlphaModel
}

// Bounds implements the Image interface.
func (p *GrayAlpha) Bounds() image.Rectangle {
	return p.Rect
}

// At implements the Image interface.
func (p *GrayAlpha) At(x, y int) color.Color {
	return p.GrayAlphaAt(x, y)
}

// GrayAlphaAt returns the pixel at (x, y), or a transparent pixel when out of bounds.
func (p *GrayAlpha) GrayAlphaAt(x, y int) GrayAlphaColor {
	if !(image.Point{x, y}.In(p.Rect)) {
		return GrayAlphaColor{}
	}

	i := p.PixOffset(x, y)
	return GrayAlphaColor{Y: p.Pix[i], A: p.Pix[i+1]}
}

// PixOffset returns the index of the first element of Pix that corresponds to
// the pixel at (x, y).
func (p *GrayAlpha) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

// Set sets the color of the pixel at (x, y).
func (p *GrayAlpha) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}

	v := GrayAlphaModel.Convert(c).(GrayAlphaColor)
	i := p.PixOffset(x, y)
	p.Pix[i] = v.Y
	p.Pix[i+1] = v.A
}

// SubImage returns an image representing the portion of the image p visible
// through r. The returned value shares pixels with the original image.
func (p *GrayAlpha) SubImage(r image.Rectangle) image.Image {
	r = r.Intersect(p.Rect)
	if r.Empty() {
		return &GrayAlpha{}
	}

	i := p.PixOffset(r.Min.X, r.Min.Y)
	return &GrayAlpha{
		Pix:    p.Pix[i:],
		Stride: p.Stride,
		Rect:   r,
	}
}

// Opaque scans the entire image and reports whether it is fully opaque.
func (p *GrayAlpha) Opaque() bool {
	if p.Rect.Empty() {
		return true
	}

	for y := p.Rect.Min.Y; y < p.Rect.Max.Y; y++ {
		i := p.PixOffset(p.Rect.Min.X, y)
		for x := 0; x < p.Rect.Dx(); x++ {
			if p.Pix[i+1] != 0xFF {
				return false
			}
			i += 2
		}
	}
	return true
}
