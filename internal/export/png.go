/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"flipbook/internal/storage"
	"flipbook/internal/textflow"
)

// PNGOptions controls PNG preview export.
// - Width/Height are pixel sizes; defaults produce a half-letter aspect.
// - Pages restricts to specific leaf indices; empty means all.
type PNGOptions struct {
	Width  int
	Height int
	Pages  []int
}

// ExportBookPNGPages renders each face of the book as a separate PNG preview.
// Files are named <leaf>-<side>.png under the book's exports folder unless
// outDir is absolute. Covers render a single file per leaf.
func ExportBookPNGPages(bh *storage.BookHandle, outDir string, opt PNGOptions) error {
	if bh == nil {
		return fmt.Errorf("book handle is nil")
	}
	w := opt.Width
	if w <= 0 {
		w = 528
	}
	h := opt.Height
	if h <= 0 {
		h = 816
	}

	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(bh.Root, "exports", outDir)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}

	for _, rf := range readingOrder(bh.Book, opt.Pages) {
		img := renderFace(rf, w, h)
		side := "cover"
		if !strings.Contains(rf.label, "cover") {
			if strings.HasSuffix(rf.label, "front") {
				side = "front"
			} else {
				side = "back"
			}
		}
		name := filepath.Join(outDir, fmt.Sprintf("leaf-%d-%s.png", rf.leafIndex, side))
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("create png: %w", err)
		}
		if err := png.Encode(f, img); err != nil {
			_ = f.Close()
			return fmt.Errorf("encode png: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close png: %w", err)
		}
	}
	return nil
}

// renderFace draws one face preview: paper background, border, title line,
// wrapped body text, and the bookmark tab when the leaf carries one.
func renderFace(rf readingFace, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	paper := color.RGBA{252, 250, 245, 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{C: paper}, image.Point{}, draw.Src)
	border := color.RGBA{60, 60, 60, 255}
	strokeRect(img, 0, 0, w-1, h-1, border)

	face := basicfont.Face7x13
	margin := 24
	y := margin + face.Ascent

	if rf.face != nil && rf.face.Title != "" {
		drawString(img, face, margin, y, rf.face.Title, color.RGBA{0, 0, 0, 255})
		y += 2 * face.Height
	}

	body := ""
	if rf.face != nil {
		body = rf.face.Body
		if rf.face.Placeholder() && rf.face.ContentKey != "" {
			body = "[content pending: " + rf.face.ContentKey + "]"
		}
	}
	if body == "" && (rf.face == nil || rf.face.Title == "") {
		drawString(img, face, margin, h/2, rf.label, color.RGBA{150, 150, 150, 255})
	}
	if body != "" {
		grey := color.RGBA{40, 40, 40, 255}
		box := textflow.NewWrapper(textflow.BasicProvider{}).Wrap(body, float32(w-2*margin))
		for _, line := range box.Lines {
			if y > h-margin {
				break
			}
			drawString(img, face, margin, y, line, grey)
			y += face.Height + 2
		}
	}

	if rf.bookmark != nil {
		c := rf.bookmark.Color
		tab := color.RGBA{c.R, c.G, c.B, 255}
		if c.A == 0 {
			tab = color.RGBA{180, 40, 40, 255}
		}
		top := margin + rf.bookmark.OffsetY
		fillRect(img, w-14, top, w-2, top+40, tab)
	}
	return img
}

func drawString(img *image.RGBA, face font.Face, x, y int, s string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
