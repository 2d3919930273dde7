// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package aseprite

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// inflate decompresses zlib data which must expand to exactly size bytes.
func inflate(data []byte, size int) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib reader: %w", err)
	}
	defer reader.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("failed to inflate %d bytes: %w", size, err)
	}

	return out, nil
}
