/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

// Script represents a parsed book script: header metadata plus an ordered
// list of face declarations. Faces are paired into leaves by Build.

type Script struct {
	Title  string
	Author string
	Series string
	Notes  string
	Faces  []FaceDecl
}

// FaceKind classifies a face declaration.
// Ordinary faces pair up front/back onto leaves; cover faces become
// single-face cover leaves at either end of the book.

type FaceKind int

const (
	FaceOrdinary FaceKind = iota
	FaceFrontCover
	FaceBackCover
)

// FaceDecl captures one declared face: its optional title, accumulated body
// text, an optional late-resolving content key, and an optional bookmark
// that will attach to the leaf carrying this face.

type FaceDecl struct {
	Kind       FaceKind
	Title      string
	Body       string
	ContentKey string
	Bookmark   *BookmarkDecl
	LineNo     int // 1-based starting line number in the source
}

// BookmarkDecl is a bookmark parsed from an "@ bookmark" line.

type BookmarkDecl struct {
	Label      string
	TargetPage int
	LineNo     int
}

// Error represents a parse error with position context.

type Error struct {
	Line    int
	Column  int
	Message string
}
