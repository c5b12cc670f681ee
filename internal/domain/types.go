/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for a flipbook: an ordered stack of
// leaves that can be turned forward and backward. It serializes to a
// human-readable JSON manifest (book.json).

// Book is the root of the manifest. Pages are ordered; a leaf's position in
// the slice is its index for the lifetime of the book and must never change.
type Book struct {
	Title    string           `json:"title"`
	Metadata Metadata         `json:"metadata,omitempty"`
	Pages    []PageDescriptor `json:"pages"`
}

// Metadata contains optional descriptive metadata for a book.
type Metadata struct {
	Author string `json:"author,omitempty"`
	Series string `json:"series,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// PageDescriptor describes one flippable leaf. ID is unique and stable for
// the lifetime of the book. Ordinary leaves carry a Front and a Back face;
// cover leaves carry a single Cover face rendered identically on both sides,
// with FrontCover distinguishing the opening cover from the closing one.
// Face payloads may be swapped in later when external content resolves, but
// neither ID nor position ever changes.
type PageDescriptor struct {
	ID         int       `json:"id"`
	Front      *Face     `json:"front,omitempty"`
	Back       *Face     `json:"back,omitempty"`
	Cover      *Face     `json:"cover,omitempty"`
	FrontCover bool      `json:"frontCover,omitempty"`
	Bookmark   *Bookmark `json:"bookmark,omitempty"`
}

// IsCover reports whether the leaf is an outer cover.
func (p PageDescriptor) IsCover() bool { return p.Cover != nil }

// Face is one renderable side of a leaf. An empty Body renders as a
// placeholder. A non-empty ContentKey marks the body as late-resolving:
// the real payload is fetched from a content source after mount and swapped
// in without touching the descriptor's identity.
type Face struct {
	Title      string `json:"title,omitempty"`
	Body       string `json:"body,omitempty"`
	ContentKey string `json:"contentKey,omitempty"`
}

// Placeholder reports whether the face currently has no resolved payload.
func (f *Face) Placeholder() bool { return f == nil || f.Body == "" }

// Bookmark is a clickable marker attached to one face of a leaf. Clicking it
// requests navigation to TargetPage; the click never counts as a manual flip
// of the carrying leaf.
type Bookmark struct {
	Label      string `json:"label"`
	TargetPage int    `json:"targetPage"`
	Anchor     string `json:"anchor,omitempty"` // "front" (default) or "back"
	OffsetY    int    `json:"offsetY,omitempty"`
	Color      Color  `json:"color,omitempty"`
}

// AnchorFront reports whether the bookmark hangs off the front face.
func (b Bookmark) AnchorFront() bool { return b.Anchor != "back" }

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}
