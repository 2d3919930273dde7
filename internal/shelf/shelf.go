// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Package shelf places rectangles on size-bounded pages with a shelf (row)
// heuristic: tallest first, left to right, a new row when the width runs out
// and a new page when the height runs out. It only computes geometry.
package shelf

import (
	"image"
	"sort"
)

// Placement is where a rectangle was placed.
type Placement struct {
	Page int             // Page index
	Rect image.Rectangle // Pixel rectangle on the page
}

// Pack places rectangles of the given sizes on pages no larger than max and
// returns one placement per size, in input order, along with the used extent
// of every page. Every size must fit within max. The output only depends on
// the input: equal heights keep their input order.
func Pack(sizes []image.Point, max image.Point) ([]Placement, []image.Point) {
	order := make([]int, len(sizes))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return sizes[order[a]].Y > sizes[order[b]].Y
	})

	out := make([]Placement, len(sizes))
	pages := make([]image.Point, 0, 1)
	if len(sizes) > 0 {
		pages = append(pages, image.Point{})
	}

	var x, y, row, page int
	for _, i := range order {
		size := sizes[i]
		if x+size.X > max.X {
			x, y, row = 0, y+row, 0
		}
		if y+size.Y > max.Y {
			x, y, row = 0, 0, 0
			page++
			pages = append(pages, image.Point{})
		}

		out[i] = Placement{
			Page: page,
			Rect: image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x+size.X, y+size.Y)},
		}

		x += size.X
		if size.Y > row {
			row = size.Y
		}

		extent := &pages[page]
		if x > extent.X {
			extent.X = x
		}
		if y+size.Y > extent.Y {
			extent.Y = y + size.Y
		}
	}

	return out, pages
}
