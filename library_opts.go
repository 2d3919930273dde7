// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package ase

import "image"

// DefaultAtlasSize is the default maximum size of an atlas page.
var DefaultAtlasSize = image.Pt(4096, 4096)

// Option configures a Library.
type Option func(*Library)

// WithMaxAtlasSize sets the maximum size of the atlas pages.
func WithMaxAtlasSize(width, height int) Option {
	return func(l *Library) {
		l.maxSize = image.Pt(width, height)
	}
}
