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
	"sync"
	"time"

	"flipbook/internal/audio"
	"flipbook/internal/domain"
	applog "flipbook/internal/log"
)

// HostOptions configures a Host.
type HostOptions struct {
	Clock        Clock
	Player       audio.Player
	CascadeDelay time.Duration
	SettleDelay  time.Duration
	IntroAdvance int           // leaves to auto-turn after mount; 0 disables the intro
	MountWait    time.Duration // bounded wait for page mounts before the intro proceeds anyway
	HistoryDepth int
	OnStatus     func(Status)
	OnContent    func(pageID int) // a face payload was swapped in
}

const defaultMountWait = 3 * time.Second

// Host is the top-level owner of one book: it assembles the page units from
// the descriptor list once (identity and position stay stable for the life
// of the book), runs the intro auto-advance after all units have mounted,
// and swaps late-arriving content payloads into descriptors in place.
type Host struct {
	mu   sync.Mutex
	book domain.Book

	seq     *Sequencer
	pages   []*Page
	barrier *Barrier
	history *History

	clock        Clock
	mountWait    time.Duration
	introAdvance int
	onContent    func(pageID int)
	log          *slog.Logger

	started bool
}

// NewHost builds the host and its page units. The book is deep-copied so
// descriptor content can be swapped without aliasing the caller's value.
func NewHost(b domain.Book, opts HostOptions) *Host {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.MountWait <= 0 {
		opts.MountWait = defaultMountWait
	}

	h := &Host{
		book:         cloneBook(b),
		barrier:      NewBarrier(len(b.Pages)),
		history:      NewHistory(opts.HistoryDepth),
		clock:        opts.Clock,
		mountWait:    opts.MountWait,
		introAdvance: opts.IntroAdvance,
		onContent:    opts.OnContent,
		log:          applog.WithComponent("host"),
	}
	h.seq = NewSequencer(len(b.Pages), Options{
		Clock:        opts.Clock,
		CascadeDelay: opts.CascadeDelay,
		SettleDelay:  opts.SettleDelay,
		OnChange:     opts.OnStatus,
		OnRegister:   func(int) { h.barrier.Arrive() },
	})

	h.pages = make([]*Page, len(h.book.Pages))
	for i, d := range h.book.Pages {
		h.pages[i] = NewPage(i, leafKind(d), opts.Player, h.seq.CompletionHandler())
	}
	return h
}

func leafKind(d domain.PageDescriptor) audio.LeafKind {
	switch {
	case d.IsCover() && d.FrontCover:
		return audio.LeafFrontCover
	case d.IsCover():
		return audio.LeafBackCover
	default:
		return audio.LeafPage
	}
}

// Len returns the number of leaves.
func (h *Host) Len() int { return len(h.pages) }

// Page returns the page unit for a leaf, for the view layer to mount.
func (h *Host) Page(i int) *Page {
	if i < 0 || i >= len(h.pages) {
		return nil
	}
	return h.pages[i]
}

// Mount registers the page unit at index with the sequencer, counting it
// toward the mount barrier.
func (h *Host) Mount(i int) {
	if p := h.Page(i); p != nil {
		h.seq.Register(i, p)
	}
}

// MountAll registers every page unit. Headless callers (CLI, tests) use this
// in place of per-widget mounting.
func (h *Host) MountAll() {
	for i := range h.pages {
		h.Mount(i)
	}
}

// Start launches the intro sequence: wait (bounded) for all page units to
// mount, then issue one navigation request advancing the configured number
// of leaves. Safe to call once; later calls are ignored.
func (h *Host) Start() {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()

	go func() {
		if !h.barrier.Wait(h.clock, h.mountWait) {
			h.log.Warn("mount wait timed out, starting intro anyway",
				slog.Int("unmounted", h.barrier.Remaining()))
		}
		if h.introAdvance > 0 {
			h.Navigate(h.introAdvance)
		}
	}()
}

// Navigate requests a jump to target, recording the departure point in the
// history when the request is accepted.
func (h *Host) Navigate(target int) bool {
	prev := h.seq.CurrentPage()
	if !h.seq.Navigate(target) {
		return false
	}
	h.history.Push(prev)
	return true
}

// FlipPage resolves a manual click on one leaf through the same path.
func (h *Host) FlipPage(index int) bool {
	prev := h.seq.CurrentPage()
	if !h.seq.FlipPage(index) {
		return false
	}
	h.history.Push(prev)
	return true
}

// Back jumps to the most recently recorded cursor position.
func (h *Host) Back() bool {
	prev, ok := h.history.Pop()
	if !ok {
		return false
	}
	if !h.seq.Navigate(prev) {
		// keep the entry so Back can be retried once the sequence settles
		h.history.Push(prev)
		return false
	}
	return true
}

// Status returns the sequencer's derived view.
func (h *Host) Status() Status { return h.seq.Status() }

// Sequencer exposes the engine for read access and tests.
func (h *Host) Sequencer() *Sequencer { return h.seq }

// Descriptor returns a deep copy of the descriptor at index.
func (h *Host) Descriptor(i int) (domain.PageDescriptor, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if i < 0 || i >= len(h.book.Pages) {
		return domain.PageDescriptor{}, false
	}
	return cloneDescriptor(h.book.Pages[i]), true
}

// Title returns the book title.
func (h *Host) Title() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.book.Title
}

// PendingContentKeys lists the content keys of faces still holding
// placeholder payloads, for the content client to resolve.
func (h *Host) PendingContentKeys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var keys []string
	for _, d := range h.book.Pages {
		for _, f := range []*domain.Face{d.Front, d.Back, d.Cover} {
			if f != nil && f.ContentKey != "" && f.Placeholder() {
				keys = append(keys, f.ContentKey)
			}
		}
	}
	return keys
}

// ResolveContent swaps the payload into every face registered under key.
// Identity and position of the descriptors never change; only the payload
// inside does. Returns the number of faces updated.
func (h *Host) ResolveContent(key, title, body string) int {
	if key == "" {
		return 0
	}
	h.mu.Lock()
	var updated []int
	for _, d := range h.book.Pages {
		for _, f := range []*domain.Face{d.Front, d.Back, d.Cover} {
			if f != nil && f.ContentKey == key {
				if title != "" {
					f.Title = title
				}
				f.Body = body
				updated = append(updated, d.ID)
			}
		}
	}
	cb := h.onContent
	h.mu.Unlock()

	if cb != nil {
		for _, id := range updated {
			cb(id)
		}
	}
	if len(updated) > 0 {
		h.log.Debug("content resolved", slog.String("key", key), slog.Int("faces", len(updated)))
	}
	return len(updated)
}

func cloneBook(b domain.Book) domain.Book {
	out := b
	out.Pages = make([]domain.PageDescriptor, len(b.Pages))
	for i, d := range b.Pages {
		out.Pages[i] = cloneDescriptor(d)
	}
	return out
}

func cloneDescriptor(d domain.PageDescriptor) domain.PageDescriptor {
	out := d
	out.Front = cloneFace(d.Front)
	out.Back = cloneFace(d.Back)
	out.Cover = cloneFace(d.Cover)
	if d.Bookmark != nil {
		bm := *d.Bookmark
		out.Bookmark = &bm
	}
	return out
}

func cloneFace(f *domain.Face) *domain.Face {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}
