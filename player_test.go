// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package ase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayer_AttachDetach(t *testing.T) {
	doc := clip([]int{100, 100, 100})
	p := NewPlayer()

	a := p.Attach(1, doc, Play(""))
	b := p.Attach(2, doc, Play(""))
	c := p.Attach(3, doc, Play(""))
	assert.Equal(t, 3, p.Len())

	// Removing the first entity moves the last one into its slot
	assert.True(t, p.Detach(1))
	assert.False(t, p.Detach(1))
	assert.Equal(t, 2, p.Len())

	var order []Entity
	p.Range(func(s *State) bool {
		order = append(order, s.Entity())
		return true
	})
	assert.Equal(t, []Entity{3, 2}, order)

	state, ok := p.State(3)
	require.True(t, ok)
	assert.Same(t, c, state)

	state, ok = p.State(2)
	require.True(t, ok)
	assert.Same(t, b, state)

	_, ok = p.State(1)
	assert.False(t, ok)
	assert.NotNil(t, a)

	// Removing the last entity needs no swap
	assert.True(t, p.Detach(2))
	_, ok = p.State(3)
	assert.True(t, ok)
	assert.Equal(t, 1, p.Len())
}

func TestPlayer_Tick(t *testing.T) {
	doc := clip([]int{100, 100}, Tag{Name: "once", From: 0, To: 1, Repeat: 1})
	p := NewPlayer()
	p.Attach(10, doc, Play(""))
	p.Attach(20, doc, Play("once"))

	events := p.Tick(100 * ms)
	assert.Equal(t, []Event{
		{Kind: EventNextFrame, Entity: 10, From: 0, To: 1},
		{Kind: EventNextFrame, Entity: 20, From: 0, To: 1},
	}, events)

	events = p.Tick(100 * ms)
	assert.Equal(t, []Event{
		{Kind: EventNextFrame, Entity: 10, From: 1, To: 0},
		{Kind: EventLoopCompleted, Entity: 10, From: 0, To: 0},
		{Kind: EventFinished, Entity: 20, From: 1, To: 1},
	}, events)
}

func TestPlayer_Reattach(t *testing.T) {
	doc := clip([]int{100, 100, 100}, Tag{Name: "end", From: 2, To: 2})
	p := NewPlayer()
	s := p.Attach(1, doc, Play(""))
	p.Tick(150 * ms)
	assert.Equal(t, 1, s.Frame())

	// Attaching again replaces the descriptor of the same state
	again := p.Attach(1, doc, Play("end"))
	assert.Same(t, s, again)
	assert.Equal(t, 2, s.Frame())
	assert.Equal(t, 1, p.Len())
}

func TestPlayer_Step(t *testing.T) {
	doc := clip([]int{100, 100})
	p := NewPlayer()
	p.Attach(5, doc, Play("").WithManual())

	assert.Empty(t, p.Tick(ms*1000))
	assert.Equal(t, []Event{{Kind: EventNextFrame, Entity: 5, From: 0, To: 1}}, p.Step(5))
	assert.Empty(t, p.Step(6))
}
