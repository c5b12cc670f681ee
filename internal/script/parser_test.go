/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"strings"
	"testing"
)

const sampleScript = `Title: Field Notes
Author: Jo Harper
Series: Seasons

= front cover
A year outdoors.

= page Spring
The river thawed in late March.

Buds opened a week early.
@ bookmark "Spring" -> 1

= page
~ weather/summer

= page Autumn
Leaves turned by the first week of October.

= page
Back of the autumn leaf.

= back cover
`

func TestParseHeaderAndFaces(t *testing.T) {
	s, errs := Parse(sampleScript)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %+v", errs)
	}
	if s.Title != "Field Notes" || s.Author != "Jo Harper" || s.Series != "Seasons" {
		t.Fatalf("unexpected header: %+v", s)
	}
	if len(s.Faces) != 6 {
		t.Fatalf("expected 6 faces, got %d", len(s.Faces))
	}
	if s.Faces[0].Kind != FaceFrontCover {
		t.Fatalf("first face should be the front cover, got %v", s.Faces[0].Kind)
	}
	if s.Faces[5].Kind != FaceBackCover {
		t.Fatalf("last face should be the back cover, got %v", s.Faces[5].Kind)
	}
	spring := s.Faces[1]
	if spring.Title != "Spring" {
		t.Fatalf("expected face title Spring, got %q", spring.Title)
	}
	if !strings.Contains(spring.Body, "river thawed") || !strings.Contains(spring.Body, "Buds opened") {
		t.Fatalf("body paragraphs not accumulated: %q", spring.Body)
	}
	if spring.Bookmark == nil || spring.Bookmark.Label != "Spring" || spring.Bookmark.TargetPage != 1 {
		t.Fatalf("bookmark not parsed: %+v", spring.Bookmark)
	}
	if s.Faces[2].ContentKey != "weather/summer" {
		t.Fatalf("content key not parsed: %q", s.Faces[2].ContentKey)
	}
}

func TestParseReportsTextBeforeFirstMarker(t *testing.T) {
	_, errs := Parse("Title: X\nstray line\n= page\nbody\n")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %+v", errs)
	}
	if errs[0].Line != 2 {
		t.Fatalf("expected error on line 2, got %d", errs[0].Line)
	}
}

func TestBuildPairsFacesIntoLeaves(t *testing.T) {
	s, errs := Parse(sampleScript)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %+v", errs)
	}
	b, berrs := Build(s)
	if len(berrs) != 0 {
		t.Fatalf("unexpected build errors: %+v", berrs)
	}
	// front cover + 2 ordinary leaves + back cover
	if len(b.Pages) != 4 {
		t.Fatalf("expected 4 leaves, got %d", len(b.Pages))
	}
	if !b.Pages[0].IsCover() || !b.Pages[0].FrontCover {
		t.Fatalf("leaf 0 should be the front cover: %+v", b.Pages[0])
	}
	if !b.Pages[3].IsCover() || b.Pages[3].FrontCover {
		t.Fatalf("leaf 3 should be the back cover: %+v", b.Pages[3])
	}
	leaf1 := b.Pages[1]
	if leaf1.Front == nil || leaf1.Front.Title != "Spring" {
		t.Fatalf("leaf 1 front should be Spring: %+v", leaf1.Front)
	}
	if leaf1.Back == nil || leaf1.Back.ContentKey != "weather/summer" {
		t.Fatalf("leaf 1 back should carry the content key: %+v", leaf1.Back)
	}
	if leaf1.Bookmark == nil || leaf1.Bookmark.Anchor != "front" {
		t.Fatalf("leaf 1 should carry the Spring bookmark on its front: %+v", leaf1.Bookmark)
	}
	// IDs stay unique and sequential
	for i, d := range b.Pages {
		if d.ID != i+1 {
			t.Fatalf("leaf %d has ID %d", i, d.ID)
		}
	}
}

func TestBuildUnpairedFaceGetsEmptyBack(t *testing.T) {
	s, errs := Parse("Title: T\n= page Only\nbody\n")
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %+v", errs)
	}
	b, berrs := Build(s)
	if len(berrs) != 0 {
		t.Fatalf("unexpected build errors: %+v", berrs)
	}
	if len(b.Pages) != 1 {
		t.Fatalf("expected 1 leaf, got %d", len(b.Pages))
	}
	if b.Pages[0].Back == nil || !b.Pages[0].Back.Placeholder() {
		t.Fatalf("unpaired face should get an empty back: %+v", b.Pages[0].Back)
	}
}

func TestBuildFlagsOutOfRangeBookmark(t *testing.T) {
	s, _ := Parse("Title: T\n= page\n@ bookmark \"Far\" -> 99\nbody\n")
	_, berrs := Build(s)
	if len(berrs) == 0 {
		t.Fatal("expected a build error for an out-of-range bookmark target")
	}
}
