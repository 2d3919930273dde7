// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package ase

import (
	"time"

	"github.com/kelindar/intmap"
)

// Player keeps the playback states of many entities in a dense slice and
// ticks them together. It is not safe for concurrent use.
type Player struct {
	slots  *intmap.Map // Entity to slot index
	states []*State    // Dense states, in slot order
	events []Event     // Event buffer reused between ticks
}

// NewPlayer creates an empty player.
func NewPlayer() *Player {
	return &Player{
		slots: intmap.New(64, .95),
	}
}

// Attach starts playing a descriptor for an entity. If the entity already has
// a state, its document and descriptor are replaced and playback restarts.
func (p *Player) Attach(entity Entity, doc *Document, desc Descriptor) *State {
	if slot, ok := p.slots.Load(uint32(entity)); ok {
		state := p.states[slot]
		state.doc = doc
		state.Play(desc)
		return state
	}

	state := NewState(entity, doc, desc)
	p.slots.Store(uint32(entity), uint32(len(p.states)))
	p.states = append(p.states, state)
	return state
}

// Detach removes the state of an entity. The last state is moved into the
// freed slot.
func (p *Player) Detach(entity Entity) bool {
	slot, ok := p.slots.Load(uint32(entity))
	if !ok {
		return false
	}

	last := len(p.states) - 1
	if int(slot) != last {
		moved := p.states[last]
		p.states[slot] = moved
		p.slots.Store(uint32(moved.entity), slot)
	}

	p.states[last] = nil
	p.states = p.states[:last]
	p.slots.Delete(uint32(entity))
	return true
}

// State returns the playback state of an entity.
func (p *Player) State(entity Entity) (*State, bool) {
	slot, ok := p.slots.Load(uint32(entity))
	if !ok {
		return nil, false
	}
	return p.states[slot], true
}

// Len returns the number of attached entities.
func (p *Player) Len() int {
	return len(p.states)
}

// Tick advances every state by dt and returns the events of this tick, in
// slot order. The returned slice is only valid until the next call.
func (p *Player) Tick(dt time.Duration) []Event {
	p.events = p.events[:0]
	for _, state := range p.states {
		p.events = state.Tick(dt, p.events)
	}
	return p.events
}

// Step advances the state of an entity by exactly one frame.
func (p *Player) Step(entity Entity) []Event {
	p.events = p.events[:0]
	if state, ok := p.State(entity); ok {
		p.events = state.Step(p.events)
	}
	return p.events
}

// Range calls fn for every state in slot order until it returns false.
func (p *Player) Range(fn func(*State) bool) {
	for _, state := range p.states {
		if !fn(state) {
			return
		}
	}
}
