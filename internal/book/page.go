/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package book

import (
	"log/slog"
	"math/rand"

	"flipbook/internal/audio"
	applog "flipbook/internal/log"
)

// FlipCommand tells a page unit which way to turn. The sequencer sends these
// instead of holding imperative handles into the view layer; the unit replies
// through its completion callback.
type FlipCommand struct {
	Forward bool
}

// Page is a single flippable leaf. It owns only its own visual flipped flag;
// all shared state (flip vector, draw order, cursor) lives in the Sequencer,
// which the page reports into via onFlip. A page never mutates shared state
// directly.
type Page struct {
	index  int
	kind   audio.LeafKind
	player audio.Player
	pick   func(n int) int
	onFlip func(index int, flipped bool)
	log    *slog.Logger

	flipped bool
}

// NewPage creates a page unit. onFlip is invoked with the new flipped value
// after every imperative or commanded flip; it is never invoked by
// SetFlipped. player may be nil, in which case cues are silently skipped.
func NewPage(index int, kind audio.LeafKind, player audio.Player, onFlip func(index int, flipped bool)) *Page {
	return &Page{
		index:  index,
		kind:   kind,
		player: player,
		pick:   rand.Intn,
		onFlip: onFlip,
		log:    applog.WithComponent("page").With(slog.Int("index", index)),
	}
}

// Index returns the leaf's position in the book.
func (p *Page) Index() int { return p.index }

// Kind returns the leaf classification used for cue selection.
func (p *Page) Kind() audio.LeafKind { return p.kind }

// Flipped reports the unit's own visual flipped flag.
func (p *Page) Flipped() bool { return p.flipped }

// Flip toggles the leaf imperatively, as a manual interaction would.
// The transition cue fires and the owner is notified of the new value.
func (p *Page) Flip() {
	p.flipped = !p.flipped
	p.playCue(p.flipped)
	if p.onFlip != nil {
		p.onFlip(p.index, p.flipped)
	}
}

// Apply executes a flip command from the sequencer: the leaf takes the
// commanded direction regardless of its current value, cues, and reports.
func (p *Page) Apply(cmd FlipCommand) {
	p.flipped = cmd.Forward
	p.playCue(cmd.Forward)
	if p.onFlip != nil {
		p.onFlip(p.index, p.flipped)
	}
}

// SetFlipped synchronizes the unit to an externally-decided value without
// re-invoking the owner callback, so declarative updates cannot loop back.
func (p *Page) SetFlipped(v bool) { p.flipped = v }

// playCue fires the transition sound. Playback failures are logged and
// swallowed; sound is a side channel and must never block or break a flip.
func (p *Page) playCue(forward bool) {
	if p.player == nil {
		return
	}
	cue := audio.CueFor(p.kind, forward, p.pick)
	if err := p.player.Play(cue); err != nil {
		p.log.Debug("cue playback failed", slog.String("cue", cue.String()), slog.Any("err", err))
	}
}
