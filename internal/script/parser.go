/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"flipbook/internal/domain"
)

// Parse parses a book script into a structured Script.
// Supported syntax (minimal):
//   - Header fields before the first face marker: "Title: ...",
//     "Author: ...", "Series: ...", "Notes: ...".
//   - "= front cover" / "= back cover" introduce a cover face.
//   - "= page" or "= page Optional Title" introduces an ordinary face.
//   - "@ bookmark "Label" -> N" attaches a bookmark to the leaf carrying
//     the current face; N is the navigation target in flipped-leaf counts.
//   - "~ some/content-key" marks the current face as late-resolving: the
//     body arrives from the content service under that key.
//   - Anything else accumulates into the current face's body. Blank lines
//     separate paragraphs.
func Parse(input string) (Script, []Error) {
	var s Script
	var errs []Error

	reHeader := regexp.MustCompile(`^(?i)(Title|Author|Series|Notes)\s*:\s*(.*)$`)
	reFace := regexp.MustCompile(`^=\s*(.*)$`)
	reBookmark := regexp.MustCompile(`^@\s*bookmark\s+"([^"]+)"\s*->\s*(\d+)\s*$`)
	reContent := regexp.MustCompile(`^~\s*(\S+)\s*$`)

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	var cur *FaceDecl
	var body []string

	flushFace := func() {
		if cur == nil {
			return
		}
		cur.Body = strings.TrimSpace(strings.Join(body, "\n"))
		s.Faces = append(s.Faces, *cur)
		cur = nil
		body = nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		trim := strings.TrimSpace(line)

		if m := reFace.FindStringSubmatch(trim); m != nil {
			flushFace()
			rest := strings.TrimSpace(m[1])
			fd := FaceDecl{LineNo: lineNo}
			switch strings.ToLower(rest) {
			case "front cover":
				fd.Kind = FaceFrontCover
			case "back cover":
				fd.Kind = FaceBackCover
			default:
				fd.Kind = FaceOrdinary
				if t := strings.TrimSpace(strings.TrimPrefix(rest, "page")); strings.HasPrefix(strings.ToLower(rest), "page") {
					fd.Title = t
				} else if rest != "" {
					errs = append(errs, Error{Line: lineNo, Column: 1, Message: "unknown face marker: " + rest})
				}
			}
			cur = &fd
			continue
		}

		if cur == nil {
			if trim == "" {
				continue
			}
			if m := reHeader.FindStringSubmatch(trim); m != nil {
				val := strings.TrimSpace(m[2])
				switch strings.ToLower(m[1]) {
				case "title":
					s.Title = val
				case "author":
					s.Author = val
				case "series":
					s.Series = val
				case "notes":
					s.Notes = val
				}
				continue
			}
			errs = append(errs, Error{Line: lineNo, Column: 1, Message: "text before first face marker: " + trim})
			continue
		}

		if m := reBookmark.FindStringSubmatch(trim); m != nil {
			target, err := strconv.Atoi(m[2])
			if err != nil || target < 0 {
				errs = append(errs, Error{Line: lineNo, Column: 1, Message: "invalid bookmark target: " + m[2]})
				continue
			}
			if cur.Bookmark != nil {
				errs = append(errs, Error{Line: lineNo, Column: 1, Message: "face already has a bookmark"})
				continue
			}
			cur.Bookmark = &BookmarkDecl{Label: m[1], TargetPage: target, LineNo: lineNo}
			continue
		}

		if m := reContent.FindStringSubmatch(trim); m != nil {
			if cur.ContentKey != "" {
				errs = append(errs, Error{Line: lineNo, Column: 1, Message: "face already has a content key"})
				continue
			}
			cur.ContentKey = m[1]
			continue
		}

		body = append(body, line)
	}
	flushFace()

	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Column: 1, Message: err.Error()})
	}
	return s, errs
}

// Build pairs the parsed faces into leaves and assembles a book manifest.
// Cover faces become single-face cover leaves; ordinary faces pair up
// front/back in declaration order, with a trailing unpaired face getting an
// empty back. A bookmark declared on a back face anchors "back".
func Build(s Script) (domain.Book, []Error) {
	var errs []Error
	b := domain.Book{
		Title: s.Title,
		Metadata: domain.Metadata{
			Author: s.Author,
			Series: s.Series,
			Notes:  s.Notes,
		},
	}
	if b.Title == "" {
		errs = append(errs, Error{Line: 1, Column: 1, Message: "script has no Title header"})
		b.Title = "Untitled"
	}

	var frontCover, backCover *FaceDecl
	var ordinary []FaceDecl
	for i := range s.Faces {
		fd := s.Faces[i]
		switch fd.Kind {
		case FaceFrontCover:
			if frontCover != nil {
				errs = append(errs, Error{Line: fd.LineNo, Column: 1, Message: "duplicate front cover"})
				continue
			}
			frontCover = &s.Faces[i]
		case FaceBackCover:
			if backCover != nil {
				errs = append(errs, Error{Line: fd.LineNo, Column: 1, Message: "duplicate back cover"})
				continue
			}
			backCover = &s.Faces[i]
		default:
			ordinary = append(ordinary, fd)
		}
	}

	id := 1
	addLeaf := func(d domain.PageDescriptor) {
		d.ID = id
		id++
		b.Pages = append(b.Pages, d)
	}

	if frontCover != nil {
		addLeaf(domain.PageDescriptor{
			Cover:      faceFromDecl(*frontCover),
			FrontCover: true,
			Bookmark:   bookmarkFromDecl(frontCover.Bookmark, ""),
		})
	}
	for i := 0; i < len(ordinary); i += 2 {
		front := ordinary[i]
		d := domain.PageDescriptor{Front: faceFromDecl(front)}
		d.Bookmark = bookmarkFromDecl(front.Bookmark, "front")
		if i+1 < len(ordinary) {
			back := ordinary[i+1]
			d.Back = faceFromDecl(back)
			if back.Bookmark != nil {
				if d.Bookmark != nil {
					errs = append(errs, Error{Line: back.Bookmark.LineNo, Column: 1, Message: "leaf already has a bookmark on its front face"})
				} else {
					d.Bookmark = bookmarkFromDecl(back.Bookmark, "back")
				}
			}
		} else {
			d.Back = &domain.Face{}
		}
		addLeaf(d)
	}
	if backCover != nil {
		addLeaf(domain.PageDescriptor{
			Cover:    faceFromDecl(*backCover),
			Bookmark: bookmarkFromDecl(backCover.Bookmark, ""),
		})
	}

	// Validate bookmark targets against the assembled leaf count.
	for _, d := range b.Pages {
		if d.Bookmark != nil && d.Bookmark.TargetPage > len(b.Pages) {
			errs = append(errs, Error{Line: 1, Column: 1,
				Message: "bookmark \"" + d.Bookmark.Label + "\" targets page beyond the book"})
		}
	}
	return b, errs
}

func faceFromDecl(fd FaceDecl) *domain.Face {
	return &domain.Face{Title: fd.Title, Body: fd.Body, ContentKey: fd.ContentKey}
}

func bookmarkFromDecl(bd *BookmarkDecl, anchor string) *domain.Bookmark {
	if bd == nil {
		return nil
	}
	return &domain.Bookmark{Label: bd.Label, TargetPage: bd.TargetPage, Anchor: anchor}
}
