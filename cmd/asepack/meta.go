// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package main

import (
	"fmt"
	"time"

	"github.com/kelindar/ase"
)

// Metadata describes a packed sprite next to its pages.
type Metadata struct {
	Name   string      `yaml:"name"`
	Width  int         `yaml:"width"`
	Height int         `yaml:"height"`
	Pages  []PageMeta  `yaml:"pages"`
	Frames []FrameMeta `yaml:"frames"`
	Tags   []TagMeta   `yaml:"tags,omitempty"`
	Slices []SliceMeta `yaml:"slices,omitempty"`
}

// PageMeta describes a page image.
type PageMeta struct {
	File   string `yaml:"file"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// FrameMeta describes where a frame lives and how long it lasts.
type FrameMeta struct {
	Page     int        `yaml:"page"`
	Rect     [4]int     `yaml:"rect,flow"` // x, y, width, height
	UV       [4]float32 `yaml:"uv,flow"`   // u0, v0, u1, v1
	Duration int        `yaml:"duration"`  // Milliseconds
}

// TagMeta describes a tag.
type TagMeta struct {
	Name      string `yaml:"name"`
	From      int    `yaml:"from"`
	To        int    `yaml:"to"`
	Direction string `yaml:"direction"`
	Repeat    int    `yaml:"repeat,omitempty"`
	UserData  string `yaml:"userData,omitempty"`
}

// SliceMeta describes a slice and its keys.
type SliceMeta struct {
	Name     string         `yaml:"name"`
	UserData string         `yaml:"userData,omitempty"`
	Keys     []SliceKeyMeta `yaml:"keys"`
}

// SliceKeyMeta describes the geometry of a slice from a frame onwards.
type SliceKeyMeta struct {
	Frame  int     `yaml:"frame"`
	Rect   [4]int  `yaml:"rect,flow"`             // x, y, width, height
	Border *[4]int `yaml:"border,flow,omitempty"` // left, top, right, bottom
	Pivot  *[2]int `yaml:"pivot,flow,omitempty"`  // x, y relative to the rect
}

// newMetadata describes a document packed into an atlas.
func newMetadata(name string, doc *ase.Document, atlas *ase.Atlas) *Metadata {
	meta := &Metadata{
		Name:   name,
		Width:  doc.Width,
		Height: doc.Height,
	}

	for i, page := range atlas.Pages {
		size := page.Bounds().Size()
		meta.Pages = append(meta.Pages, PageMeta{
			File:   pageName(name, i),
			Width:  size.X,
			Height: size.Y,
		})
	}

	for i, frame := range doc.Frames {
		region, _ := atlas.Region(i)
		meta.Frames = append(meta.Frames, FrameMeta{
			Page:     region.Page,
			Rect:     [4]int{region.Rect.Min.X, region.Rect.Min.Y, region.Rect.Dx(), region.Rect.Dy()},
			UV:       [4]float32{region.UV.U0, region.UV.V0, region.UV.U1, region.UV.V1},
			Duration: int(frame.Duration / time.Millisecond),
		})
	}

	for _, tag := range doc.Tags {
		meta.Tags = append(meta.Tags, TagMeta{
			Name:      tag.Name,
			From:      tag.From,
			To:        tag.To,
			Direction: tag.Direction.String(),
			Repeat:    tag.Repeat,
			UserData:  tag.UserData,
		})
	}

	for _, slice := range doc.Slices {
		sm := SliceMeta{Name: slice.Name, UserData: slice.UserData}
		for _, key := range slice.Keys {
			geo, _ := ase.Resolve(doc, slice.Name, key.Frame)
			km := SliceKeyMeta{
				Frame: key.Frame,
				Rect:  [4]int{geo.Bounds.Min.X, geo.Bounds.Min.Y, geo.Bounds.Dx(), geo.Bounds.Dy()},
			}
			if geo.HasBorder {
				km.Border = &[4]int{geo.Border.Left, geo.Border.Top, geo.Border.Right, geo.Border.Bottom}
			}
			if geo.HasPivot {
				km.Pivot = &[2]int{geo.Pivot.X, geo.Pivot.Y}
			}
			sm.Keys = append(sm.Keys, km)
		}
		meta.Slices = append(meta.Slices, sm)
	}

	return meta
}

// pageName returns the file name of a page.
func pageName(name string, page int) string {
	return fmt.Sprintf("%s_%d.png", name, page)
}
