/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package audio provides the transition sound side channel for page turns.
// Cue selection is a pure function; playback goes through the Player port so
// the engine is testable without an audio device.
package audio

// Cue identifies one transition sound.
type Cue int

const (
	CueNone Cue = iota
	CueTurn1
	CueTurn2
	CueTurn3
	CueTurn4
	CueCoverOpen
	CueCoverClose
)

// turnPool is the fixed pool of interchangeable page-turn cues used for
// ordinary leaves.
var turnPool = []Cue{CueTurn1, CueTurn2, CueTurn3, CueTurn4}

// LeafKind classifies a leaf for cue selection.
type LeafKind int

const (
	LeafPage LeafKind = iota
	LeafFrontCover
	LeafBackCover
)

// CueFor selects the cue for a transition. Ordinary leaves draw uniformly
// from the turn pool using pick (an index source, typically rand.Intn).
// Cover leaves map (role, direction) to the dedicated open/close cues:
// turning the front cover forward opens the book, turning the back cover
// forward closes it, and the reverse directions mirror that.
func CueFor(kind LeafKind, forward bool, pick func(n int) int) Cue {
	switch kind {
	case LeafFrontCover:
		if forward {
			return CueCoverOpen
		}
		return CueCoverClose
	case LeafBackCover:
		if forward {
			return CueCoverClose
		}
		return CueCoverOpen
	default:
		if pick == nil {
			return turnPool[0]
		}
		return turnPool[pick(len(turnPool))]
	}
}

func (c Cue) String() string {
	switch c {
	case CueTurn1:
		return "turn1"
	case CueTurn2:
		return "turn2"
	case CueTurn3:
		return "turn3"
	case CueTurn4:
		return "turn4"
	case CueCoverOpen:
		return "cover_open"
	case CueCoverClose:
		return "cover_close"
	default:
		return "none"
	}
}
