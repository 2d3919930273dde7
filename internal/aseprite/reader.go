// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package aseprite

import (
	"encoding/binary"
)

// reader is a little-endian cursor over a byte slice. The first failed read
// records a truncation error and every later read returns zero values, so a
// chunk parser only needs to check r.err once at the end.
type reader struct {
	buf  []byte
	pos  int
	base int // absolute offset of buf[0] in the file
	err  error
}

// newReader creates a reader over buf, whose first byte is at absolute offset base.
func newReader(buf []byte, base int) *reader {
	return &reader{buf: buf, base: base}
}

// offset returns the absolute position of the cursor.
func (r *reader) offset() int {
	return r.base + r.pos
}

// remaining returns the number of unread bytes.
func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

// need checks that n more bytes can be read.
func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}

	if n < 0 || r.remaining() < n {
		r.err = Errorf(ErrTruncated, r.offset(), "need %d bytes, %d remaining", n, r.remaining())
		return false
	}
	return true
}

func (r *reader) byte() uint8 {
	if !r.need(1) {
		return 0
	}

	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *reader) word() uint16 {
	if !r.need(2) {
		return 0
	}

	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *reader) short() int16 {
	return int16(r.word())
}

func (r *reader) dword() uint32 {
	if !r.need(4) {
		return 0
	}

	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) long() int32 {
	return int32(r.dword())
}

// bytes returns the next n bytes without copying.
func (r *reader) bytes(n int) []byte {
	if !r.need(n) {
		return nil
	}

	v := r.buf[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return v
}

func (r *reader) skip(n int) {
	if r.need(n) {
		r.pos += n
	}
}

// string reads a WORD length followed by that many UTF-8 bytes.
func (r *reader) string() string {
	n := int(r.word())
	return string(r.bytes(n))
}
