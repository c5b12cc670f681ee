/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textflow

import "testing"

func TestWrapMeasuredRespectsWidth(t *testing.T) {
	w := NewWrapper(BasicProvider{})
	// Face7x13 advances 7px per glyph; 70px fits 10 characters.
	box := w.Wrap("aaa bbb ccc ddd eee", 70)
	if len(box.Lines) < 2 {
		t.Fatalf("expected wrapping, got %v", box.Lines)
	}
	for _, ln := range box.Lines {
		if 7*len(ln) > 70 {
			t.Fatalf("line %q exceeds 70px", ln)
		}
	}
	if box.Height <= 0 || box.Width <= 0 {
		t.Fatalf("box not measured: %+v", box)
	}
}

func TestWrapKeepsOverlongWordWhole(t *testing.T) {
	w := NewWrapper(nil)
	box := w.Wrap("supercalifragilistic", 20)
	if len(box.Lines) != 1 || box.Lines[0] != "supercalifragilistic" {
		t.Fatalf("overlong word should stay on one line: %v", box.Lines)
	}
}

func TestWrapPreservesParagraphBreaks(t *testing.T) {
	w := NewWrapper(nil)
	box := w.Wrap("one\n\ntwo", 0)
	if len(box.Lines) != 3 || box.Lines[1] != "" {
		t.Fatalf("blank line should survive as separator: %v", box.Lines)
	}
}

func TestWrapColumnsBreaksOnWords(t *testing.T) {
	lines := WrapColumns("one two three four five", 9)
	for _, ln := range lines {
		if len(ln) > 9 {
			t.Fatalf("line exceeds column budget: %q", ln)
		}
	}
	if len(lines) < 3 {
		t.Fatalf("expected at least 3 lines, got %d: %v", len(lines), lines)
	}
}
