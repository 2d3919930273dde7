// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package ase

import (
	"time"
)

// Entity identifies the owner of a playback state.
type Entity uint32

// Status is the state of a playback.
type Status uint8

// Playback statuses
const (
	Idle     Status = iota // Nothing to play
	Playing                // Frames advance on Tick
	Paused                 // Frames only advance on Step
	Finished               // The last pass is complete, the boundary frame is held
)

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// EventKind is the kind of a playback event.
type EventKind uint8

// Event kinds
const (
	EventNextFrame     EventKind = iota // The current frame changed from From to To
	EventLoopCompleted                  // A pass over the clip completed and another one starts
	EventFinished                       // The last pass completed
)

// Event is emitted by a playback state when it changes. Events of a single
// tick are ordered: a frame change always comes before the loop or finish
// event it triggered.
type Event struct {
	Kind   EventKind
	Entity Entity
	From   int // Previous frame
	To     int // Current frame
}

// State is the playback state of a single entity. It is not safe for
// concurrent use, but separate states can be ticked concurrently.
type State struct {
	entity   Entity
	doc      *Document
	desc     Descriptor
	queue    []Descriptor  // Clips to play next
	status   Status        // Current status
	from, to int           // Inclusive frame range of the clip
	frame    int           // Current frame
	elapsed  time.Duration // Time spent on the current frame
	backward bool          // Whether frames are walked backwards
	pingpong bool          // Whether the direction flips at each boundary
	limit    int           // Number of passes to play, 0 for forever
	passes   int           // Number of completed passes
	speed    float64       // Speed multiplier
	resume   Status        // Status to restore on Resume
}

// NewState creates the playback state of an entity and starts playing.
func NewState(entity Entity, doc *Document, desc Descriptor) *State {
	s := &State{entity: entity, doc: doc}
	s.Play(desc)
	return s
}

// Play replaces the descriptor and restarts playback from the first frame of
// the clip in its direction. Replacing a descriptor is not a loop completion
// and emits no events.
func (s *State) Play(desc Descriptor) {
	s.start(desc, nil)
}

// start resets the state for a descriptor, followed by the given clips.
func (s *State) start(desc Descriptor, rest []Descriptor) {
	s.desc = desc
	s.queue = append(append(make([]Descriptor, 0, len(desc.Next)+len(rest)), desc.Next...), rest...)
	s.elapsed = 0
	s.passes = 0
	s.status = Idle
	s.resume = Idle

	if s.doc == nil || len(s.doc.Frames) == 0 {
		return
	}

	var tag *Tag
	s.from, s.to = 0, len(s.doc.Frames)-1
	if desc.Tag != "" {
		t, ok := s.doc.Tag(desc.Tag)
		if !ok {
			return
		}
		tag, s.from, s.to = t, t.From, t.To
	}

	dir := desc.Direction
	if dir == DirectionDefault {
		dir = Forward
		if tag != nil {
			dir = tag.Direction
		}
	}

	s.backward = dir == Reverse || dir == PingPongReverse
	s.pingpong = dir == PingPong || dir == PingPongReverse
	s.limit = desc.Repeat.passes(tag)
	s.speed = desc.Speed
	if s.speed <= 0 {
		s.speed = 1
	}

	s.frame = s.from
	if s.backward {
		s.frame = s.to
	}

	s.status = Playing
	if desc.Manual {
		s.status = Paused
	}
}

// Entity returns the owner of the state.
func (s *State) Entity() Entity {
	return s.entity
}

// Document returns the document being played.
func (s *State) Document() *Document {
	return s.doc
}

// Descriptor returns the descriptor being played.
func (s *State) Descriptor() Descriptor {
	return s.desc
}

// Status returns the playback status.
func (s *State) Status() Status {
	return s.status
}

// Frame returns the index of the current frame in the document.
func (s *State) Frame() int {
	return s.frame
}

// Elapsed returns the time spent on the current frame.
func (s *State) Elapsed() time.Duration {
	return s.elapsed
}

// Passes returns the number of passes completed since the clip started.
func (s *State) Passes() int {
	return s.passes
}

// Direction returns the direction frames are currently walked in, either
// Forward or Reverse.
func (s *State) Direction() Direction {
	if s.backward {
		return Reverse
	}
	return Forward
}

// PingPong returns whether the direction flips at each end of the clip.
func (s *State) PingPong() bool {
	return s.pingpong
}

// Pause suspends automatic playback. The state can still be stepped.
func (s *State) Pause() {
	if s.status == Playing {
		s.status = Paused
		s.resume = Playing
	}
}

// Resume continues a playback suspended by Pause.
func (s *State) Resume() {
	if s.status == Paused && s.resume == Playing {
		s.status = Playing
		s.resume = Idle
	}
}

// Tick advances the playback by dt scaled by the speed multiplier and
// appends the resulting events. It does nothing unless the state is playing.
func (s *State) Tick(dt time.Duration, events []Event) []Event {
	if s.status != Playing || dt <= 0 {
		return events
	}

	s.elapsed += time.Duration(float64(dt) * s.speed)
	folded := false
	for steps := 0; s.status == Playing; steps++ {
		duration := s.duration(s.frame)
		if s.elapsed < duration {
			break
		}

		// Runaway guard: once a clip length of frames was walked in a single
		// tick, a remainder of at least one cycle is folded into less than a
		// cycle and the skipped cycles count as a single pass. A shorter
		// remainder is walked normally.
		if steps >= s.length() && !folded {
			folded = true
			if cycle := s.cycle(); s.elapsed >= cycle {
				s.elapsed %= cycle
				events = s.fold(events)
				continue
			}
		}

		s.elapsed -= duration
		events = s.advance(events)
	}

	return events
}

// Step advances exactly one frame regardless of the elapsed time, using the
// same direction and repeat rules as Tick.
func (s *State) Step(events []Event) []Event {
	if s.status != Playing && s.status != Paused {
		return events
	}

	s.elapsed = 0
	return s.advance(events)
}

// advance moves to the next frame, applying the repeat policy at the
// boundaries of the clip.
func (s *State) advance(events []Event) []Event {
	old := s.frame
	next := old + 1
	if s.backward {
		next = old - 1
	}

	if next >= s.from && next <= s.to {
		s.frame = next
		return append(events, s.event(EventNextFrame, old))
	}

	s.passes++
	if s.limit > 0 && s.passes >= s.limit {
		return s.finish(events)
	}

	switch {
	case s.pingpong:
		s.backward = !s.backward
		if next = old + 1; s.backward {
			next = old - 1
		}
		if next < s.from || next > s.to {
			next = old
		}
	case s.backward:
		next = s.to
	default:
		next = s.from
	}

	s.frame = next
	if next != old {
		events = append(events, s.event(EventNextFrame, old))
	}
	return append(events, s.event(EventLoopCompleted, s.frame))
}

// fold counts the cycles skipped by the runaway guard as a single pass.
func (s *State) fold(events []Event) []Event {
	s.passes++
	if s.limit > 0 && s.passes >= s.limit {
		old := s.frame
		switch {
		case s.backward:
			s.frame = s.from
		default:
			s.frame = s.to
		}
		if s.frame != old {
			events = append(events, s.event(EventNextFrame, old))
		}
		return s.finish(events)
	}

	return append(events, s.event(EventLoopCompleted, s.frame))
}

// finish holds the current frame and emits the finished event, then starts
// the next queued clip if there is one.
func (s *State) finish(events []Event) []Event {
	s.status = Finished
	s.elapsed = 0
	events = append(events, s.event(EventFinished, s.frame))
	if len(s.queue) > 0 {
		s.start(s.queue[0], s.queue[1:])
	}
	return events
}

// event creates an event moving from the given frame to the current one.
func (s *State) event(kind EventKind, from int) Event {
	return Event{Kind: kind, Entity: s.entity, From: from, To: s.frame}
}

// duration returns the duration of a frame, at least a millisecond.
func (s *State) duration(frame int) time.Duration {
	if d := s.doc.Frames[frame].Duration; d > time.Millisecond {
		return d
	}
	return time.Millisecond
}

// length returns the number of frames in the clip.
func (s *State) length() int {
	return s.to - s.from + 1
}

// cycle returns the time it takes to come back to the same frame in the same
// direction: one pass, or a round trip for ping-pong clips.
func (s *State) cycle() (total time.Duration) {
	for i := s.from; i <= s.to; i++ {
		total += s.duration(i)
	}

	if s.pingpong && s.to > s.from {
		total = 2*total - s.duration(s.from) - s.duration(s.to)
	}
	return
}
