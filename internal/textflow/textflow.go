/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textflow

// Word wrapping for face bodies. The same flow feeds the PNG exporter (pixel
// measured against a concrete font face) and the spread preview (column
// estimated, since the toolkit owns the font there). Both break on spaces and
// preserve blank lines as paragraph separators.

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// TextBox is the result of flowing text into a box width.
type TextBox struct {
	Lines   []string
	Width   float32
	Height  float32
	Metrics Metrics
}

// Provider maps to a concrete font.Face for measurement.
type Provider interface {
	Resolve() (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic output.
type BasicProvider struct{}

func (BasicProvider) Resolve() (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// Wrapper breaks text on spaces against measured advances; it does not
// perform shaping or hyphenation. Exact enough for page previews and export.
type Wrapper struct{ Provider Provider }

func NewWrapper(provider Provider) *Wrapper { return &Wrapper{Provider: provider} }

// Wrap flows text into maxWidth pixels. A word wider than the box gets a
// line of its own rather than being split.
func (w *Wrapper) Wrap(text string, maxWidth float32) TextBox {
	if w.Provider == nil {
		w.Provider = BasicProvider{}
	}
	face, met := w.Provider.Resolve()
	drawer := &font.Drawer{Face: face}
	measure := func(s string) float32 {
		return float32(drawer.MeasureString(s).Round())
	}

	box := TextBox{Metrics: met}
	lineH := met.Ascent + met.Descent + met.LineGap
	addLine := func(s string) {
		box.Lines = append(box.Lines, s)
		if lw := measure(s); lw > box.Width {
			box.Width = lw
		}
		box.Height += lineH
	}

	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			addLine("")
			continue
		}
		cur := words[0]
		for _, word := range words[1:] {
			if maxWidth > 0 && measure(cur+" "+word) > maxWidth {
				addLine(cur)
				cur = word
				continue
			}
			cur += " " + word
		}
		addLine(cur)
	}
	return box
}

// WrapColumns breaks text into lines of at most cols characters. Used where
// only a character budget is known, not a pixel width.
func WrapColumns(s string, cols int) []string {
	if cols < 8 {
		cols = 8
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, word := range words[1:] {
			if len(cur)+1+len(word) > cols {
				lines = append(lines, cur)
				cur = word
				continue
			}
			cur += " " + word
		}
		lines = append(lines, cur)
	}
	return lines
}
