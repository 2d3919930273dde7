// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package ase

import "fmt"

// Direction is the order in which the frames of a clip are played.
type Direction uint8

// Playback directions
const (
	DirectionDefault Direction = iota // Use the direction of the tag
	Forward                           // From the first frame to the last
	Reverse                           // From the last frame to the first
	PingPong                          // Forward, then back, flipping at each end
	PingPongReverse                   // Backward, then forward, flipping at each end
)

// String returns the name of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionDefault:
		return "default"
	case Forward:
		return "forward"
	case Reverse:
		return "reverse"
	case PingPong:
		return "pingpong"
	case PingPongReverse:
		return "pingpong_reverse"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// directionOf maps the direction stored in a tag.
func directionOf(hint uint8) Direction {
	switch hint {
	case 1:
		return Reverse
	case 2:
		return PingPong
	case 3:
		return PingPongReverse
	default:
		return Forward
	}
}

// Repeat is how many times a clip is played before it finishes.
type Repeat struct {
	count int  // Number of passes, 0 loops forever
	set   bool // Whether the policy overrides the one of the tag
}

var (
	RepeatDefault = Repeat{}                    // Use the repeat count of the tag
	Loop          = Repeat{set: true}           // Play forever
	Once          = Repeat{count: 1, set: true} // Play a single pass and hold the last frame
)

// Count plays the clip n times and then holds the last frame. A count of
// zero or less loops forever, as it does for tags.
func Count(n int) Repeat {
	if n < 0 {
		n = 0
	}
	return Repeat{count: n, set: true}
}

// String returns a readable form of the policy.
func (r Repeat) String() string {
	switch {
	case !r.set:
		return "default"
	case r.count == 0:
		return "loop"
	case r.count == 1:
		return "once"
	default:
		return fmt.Sprintf("count(%d)", r.count)
	}
}

// passes resolves the number of passes to play, 0 meaning forever.
func (r Repeat) passes(tag *Tag) int {
	switch {
	case r.set:
		return r.count
	case tag != nil:
		return tag.Repeat
	default:
		return 0
	}
}

// Descriptor describes what to play. It is a value: the With* methods return
// modified copies.
type Descriptor struct {
	Tag       string       // Name of the tag to play, empty for all frames
	Direction Direction    // Direction override
	Repeat    Repeat       // Repeat override
	Speed     float64      // Speed multiplier, 0 means 1
	Manual    bool         // Whether frames only advance with Step
	Next      []Descriptor // Clips to play once this one finishes
}

// Play returns a descriptor playing the given tag with its own settings.
func Play(tag string) Descriptor {
	return Descriptor{Tag: tag}
}

// WithDirection overrides the direction of the tag.
func (d Descriptor) WithDirection(dir Direction) Descriptor {
	d.Direction = dir
	return d
}

// WithRepeat overrides the repeat count of the tag.
func (d Descriptor) WithRepeat(r Repeat) Descriptor {
	d.Repeat = r
	return d
}

// WithSpeed sets the speed multiplier.
func (d Descriptor) WithSpeed(speed float64) Descriptor {
	d.Speed = speed
	return d
}

// WithManual only advances frames when the state is stepped.
func (d Descriptor) WithManual() Descriptor {
	d.Manual = true
	return d
}

// Then queues clips to play once this one finishes.
func (d Descriptor) Then(next ...Descriptor) Descriptor {
	queue := make([]Descriptor, 0, len(d.Next)+len(next))
	queue = append(queue, d.Next...)
	d.Next = append(queue, next...)
	return d
}
