// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package ase

import (
	"image"
	"testing"
	"time"

	"github.com/kelindar/ase/internal/asetest"
	"github.com/stretchr/testify/require"
)

func BenchmarkAse(b *testing.B) {
	s := asetest.Animation(16, 64, 64, 100,
		asetest.Tag{Name: "walk", From: 0, To: 7},
		asetest.Tag{Name: "swing", From: 8, To: 15, Direction: 2},
	)
	s.Slices = []asetest.Slice{{Name: "hitbox", Keys: []asetest.SliceKey{
		{Frame: 0, Bounds: image.Rect(8, 8, 56, 56)},
		{Frame: 8, Bounds: image.Rect(4, 4, 60, 60)},
	}}}

	data := asetest.Encode(s)
	doc, err := Decode(data)
	require.NoError(b, err)

	b.Run("Decode", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := Decode(data); err != nil {
				b.Fatalf("decode error: %v", err)
			}
		}
	})

	b.Run("Pack", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := Pack(doc.Frames, image.Pt(256, 256)); err != nil {
				b.Fatalf("pack error: %v", err)
			}
		}
	})

	b.Run("Tick", func(b *testing.B) {
		player := NewPlayer()
		for e := 0; e < 1000; e++ {
			tag := "walk"
			if e%2 == 0 {
				tag = "swing"
			}
			player.Attach(Entity(e), doc, Play(tag))
		}

		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			player.Tick(16 * time.Millisecond)
		}
	})

	b.Run("Resolve", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, ok := Resolve(doc, "hitbox", i%16); !ok {
				b.Fatal("slice not found")
			}
		}
	})
}
