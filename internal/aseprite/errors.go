// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package aseprite

import (
	"errors"
	"fmt"
)

// Decode error kinds. Every error returned by Parse is a *DecodeError whose
// Kind is one of these, so callers can test with errors.Is.
var (
	ErrInvalidHeader        = errors.New("invalid header")
	ErrTruncated            = errors.New("truncated data")
	ErrUnsupportedColorMode = errors.New("unsupported color mode")
	ErrInvalidRange         = errors.New("invalid range")
)

// DecodeError describes why a file could not be decoded and where.
type DecodeError struct {
	Kind   error  // One of the Err* kinds above
	Offset int    // Byte offset in the input where the problem was found, -1 if not applicable
	Detail string // Human readable context
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("aseprite: %v: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("aseprite: %v at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

// Unwrap returns the error kind.
func (e *DecodeError) Unwrap() error {
	return e.Kind
}

// Errorf creates a new *DecodeError of the given kind.
func Errorf(kind error, offset int, format string, args ...any) error {
	return &DecodeError{
		Kind:   kind,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	}
}
