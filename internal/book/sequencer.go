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
	"time"

	applog "flipbook/internal/log"

	"sync"
)

// Default engine timing. Overridable through Options / config.
const (
	DefaultCascadeDelay = 180 * time.Millisecond
	DefaultSettleDelay  = 400 * time.Millisecond
)

// Status is the read-only view the sequencer publishes after every mutation.
type Status struct {
	CurrentPage int
	PageCount   int
	OnFirstPage bool
	OnLastPage  bool
	Navigating  bool
}

// Options configures a Sequencer.
type Options struct {
	Clock        Clock
	CascadeDelay time.Duration // extra delay added per successive flip in a sequence
	SettleDelay  time.Duration // quiet period after the last flip before Idle
	OnChange     func(Status)  // called outside the sequencer lock
	OnRegister   func(index int)
}

// Sequencer owns the authoritative flip-state vector, the draw-order vector,
// and the current-page cursor for one book, and is their only writer.
//
// It is a two-state machine: Idle, or Navigating while a scheduled cascade
// of single-leaf flips runs. A navigation request that arrives while one is
// in flight is dropped, not queued; the in-flight sequence always completes
// (or truncates silently when a leaf is not mounted yet).
//
// The cursor is never incremented independently: after every completed flip
// it is re-derived as the count of true entries in the flip vector, so the
// two cannot drift apart.
type Sequencer struct {
	mu      sync.Mutex
	clock   Clock
	cascade time.Duration
	settle  time.Duration
	log     *slog.Logger

	pages   []*Page // nil slots are not mounted yet
	flipped []bool
	order   []int
	cursor  int

	navigating bool
	gen        uint64 // generation counter; stale timers compare against it
	truncated  bool

	onChange   func(Status)
	onRegister func(index int)
}

// NewSequencer creates a sequencer for a book of n leaves. All leaves start
// unflipped; leaf 0 gets the highest initial draw order so the closed book
// stacks front-to-back.
func NewSequencer(n int, opts Options) *Sequencer {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.CascadeDelay <= 0 {
		opts.CascadeDelay = DefaultCascadeDelay
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	s := &Sequencer{
		clock:      opts.Clock,
		cascade:    opts.CascadeDelay,
		settle:     opts.SettleDelay,
		log:        applog.WithComponent("sequencer"),
		pages:      make([]*Page, n),
		flipped:    make([]bool, n),
		order:      make([]int, n),
		onChange:   opts.OnChange,
		onRegister: opts.OnRegister,
	}
	for i := range s.order {
		s.order[i] = n - i
	}
	return s
}

// Register mounts a page unit at its leaf index. Out-of-range or duplicate
// registrations are ignored with a warning.
func (s *Sequencer) Register(index int, p *Page) {
	s.mu.Lock()
	if index < 0 || index >= len(s.pages) {
		s.mu.Unlock()
		s.log.Warn("register out of range", slog.Int("index", index))
		return
	}
	if s.pages[index] != nil {
		s.mu.Unlock()
		s.log.Warn("page already registered", slog.Int("index", index))
		return
	}
	s.pages[index] = p
	p.SetFlipped(s.flipped[index])
	cb := s.onRegister
	s.mu.Unlock()
	if cb != nil {
		cb(index)
	}
}

// Navigate requests a transition to target (a cursor value in [0, leafCount]).
// It returns false when the request is dropped: target equals the current
// cursor, or a sequence is already in flight. The scheduled flips cascade,
// each delayed one increment after the previous, ascending for forward
// navigation and descending for backward.
func (s *Sequencer) Navigate(target int) bool {
	s.mu.Lock()
	if s.navigating {
		s.log.Debug("navigation in flight, dropping request", slog.Int("target", target))
		s.mu.Unlock()
		return false
	}
	if target < 0 {
		target = 0
	}
	if target > len(s.pages) {
		target = len(s.pages)
	}
	if target == s.cursor {
		s.mu.Unlock()
		return false
	}

	s.navigating = true
	s.truncated = false
	s.gen++
	gen := s.gen

	cursor := s.cursor
	forward := target > cursor
	var steps []int
	if forward {
		for i := cursor; i < target; i++ {
			steps = append(steps, i)
		}
	} else {
		for i := cursor - 1; i >= target; i-- {
			steps = append(steps, i)
		}
	}

	for k, idx := range steps {
		idx := idx
		s.clock.AfterFunc(time.Duration(k)*s.cascade, func() { s.step(gen, idx, forward) })
	}
	settleAt := time.Duration(len(steps)-1)*s.cascade + s.settle
	s.clock.AfterFunc(settleAt, func() { s.finish(gen) })

	st := s.statusLocked()
	cb := s.onChange
	s.log.Debug("navigation started",
		slog.Int("from", cursor), slog.Int("to", target), slog.Int("steps", len(steps)))
	s.mu.Unlock()
	if cb != nil {
		cb(st)
	}
	return true
}

// FlipPage resolves a manual click on leaf index through the navigation
// path: advancing when the leaf is unflipped, retreating when it is flipped.
// There is exactly one code path for all transitions.
func (s *Sequencer) FlipPage(index int) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.flipped) {
		s.mu.Unlock()
		return false
	}
	flipped := s.flipped[index]
	s.mu.Unlock()
	if flipped {
		return s.Navigate(index)
	}
	return s.Navigate(index + 1)
}

// step executes one scheduled flip. A nil page unit truncates the rest of
// the sequence: the cursor simply stops short of the target, a degraded but
// stable outcome, never an error surfaced to the user.
func (s *Sequencer) step(gen uint64, index int, forward bool) {
	s.mu.Lock()
	if gen != s.gen || !s.navigating || s.truncated {
		s.mu.Unlock()
		return
	}
	p := s.pages[index]
	if p == nil {
		s.truncated = true
		s.log.Warn("leaf not mounted, truncating sequence", slog.Int("index", index))
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// The unit cues and reports back through completeFlip.
	p.Apply(FlipCommand{Forward: forward})
}

// completeFlip is the single write entry point for shared state. Each
// reporting leaf gets the new maximum draw order so the most recently
// flipped page always renders above previously settled ones.
func (s *Sequencer) completeFlip(index int, flipped bool) {
	s.mu.Lock()
	if index < 0 || index >= len(s.flipped) {
		s.mu.Unlock()
		return
	}
	s.flipped[index] = flipped
	s.order[index] = s.maxOrderLocked() + 1
	s.cursor = countTrue(s.flipped)
	st := s.statusLocked()
	cb := s.onChange
	s.mu.Unlock()
	if cb != nil {
		cb(st)
	}
}

// finish returns the machine to Idle after the settle delay.
func (s *Sequencer) finish(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.navigating {
		s.mu.Unlock()
		return
	}
	s.navigating = false
	if s.truncated {
		s.log.Info("navigation settled short of target", slog.Int("cursor", s.cursor))
	}
	st := s.statusLocked()
	cb := s.onChange
	s.mu.Unlock()
	if cb != nil {
		cb(st)
	}
}

// CompletionHandler returns the callback page units report into.
func (s *Sequencer) CompletionHandler() func(index int, flipped bool) {
	return s.completeFlip
}

// Status returns a snapshot of the derived view.
func (s *Sequencer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// CurrentPage returns the cursor: the count of flipped leaves.
func (s *Sequencer) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Flipped returns a copy of the flip-state vector.
func (s *Sequencer) Flipped() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bool, len(s.flipped))
	copy(out, s.flipped)
	return out
}

// DrawOrder returns a copy of the draw-order vector.
func (s *Sequencer) DrawOrder() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Sequencer) statusLocked() Status {
	n := len(s.flipped)
	st := Status{
		CurrentPage: s.cursor,
		PageCount:   n,
		Navigating:  s.navigating,
	}
	if n > 0 {
		st.OnFirstPage = !s.flipped[0]
		st.OnLastPage = s.flipped[n-1]
	}
	return st
}

func (s *Sequencer) maxOrderLocked() int {
	max := 0
	for _, v := range s.order {
		if v > max {
			max = v
		}
	}
	return max
}

func countTrue(v []bool) int {
	n := 0
	for _, b := range v {
		if b {
			n++
		}
	}
	return n
}
