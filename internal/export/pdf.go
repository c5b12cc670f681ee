/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a book into static formats: a multi-page PDF in
// reading order and per-face PNG previews.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"flipbook/internal/domain"
	"flipbook/internal/storage"
)

// PDFOptions controls PDF export behavior. Units are points (pt).
// Text is vector via built-in Helvetica; no font embedding.
type PDFOptions struct {
	PageWidth  float64 // defaults to US Letter half (396pt)
	PageHeight float64 // defaults to 612pt
	Margin     float64 // defaults to 36pt
	Pages      []int   // leaf indices; if empty, export all leaves
}

// readingFace is one PDF page: a face plus where it came from.
type readingFace struct {
	face      *domain.Face
	leafIndex int
	label     string
	bookmark  *domain.Bookmark
}

// readingOrder flattens the leaf stack into the face sequence a reader sees:
// each cover contributes one page, each ordinary leaf front then back.
func readingOrder(b domain.Book, only []int) []readingFace {
	include := func(i int) bool {
		if len(only) == 0 {
			return true
		}
		for _, v := range only {
			if v == i {
				return true
			}
		}
		return false
	}
	var out []readingFace
	for i, p := range b.Pages {
		if !include(i) {
			continue
		}
		if p.IsCover() {
			label := "Back cover"
			if p.FrontCover {
				label = "Front cover"
			}
			out = append(out, readingFace{face: p.Cover, leafIndex: i, label: label, bookmark: p.Bookmark})
			continue
		}
		out = append(out, readingFace{face: p.Front, leafIndex: i, label: fmt.Sprintf("Leaf %d front", i), bookmark: p.Bookmark})
		out = append(out, readingFace{face: p.Back, leafIndex: i, label: fmt.Sprintf("Leaf %d back", i)})
	}
	return out
}

// ExportBookPDF exports the book to a single multi-page PDF placed at outPath.
// Leaves carrying bookmarks contribute PDF outline entries so viewers can
// jump the same way the in-app bookmarks do.
func ExportBookPDF(bh *storage.BookHandle, outPath string, opt PDFOptions) error {
	if bh == nil {
		return fmt.Errorf("book handle is nil")
	}
	w := opt.PageWidth
	if w <= 0 {
		w = 396
	}
	h := opt.PageHeight
	if h <= 0 {
		h = 612
	}
	margin := opt.Margin
	if margin <= 0 {
		margin = 36
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
		OrientationStr: "",
	})
	pdf.SetTitle(bh.Book.Title, false)
	if bh.Book.Metadata.Author != "" {
		pdf.SetAuthor(bh.Book.Metadata.Author, false)
	}
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)

	for _, rf := range readingOrder(bh.Book, opt.Pages) {
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})
		if rf.bookmark != nil {
			pdf.Bookmark(rf.bookmark.Label, 0, 0)
		}

		if rf.face == nil || (rf.face.Title == "" && rf.face.Placeholder()) {
			pdf.SetFont("Helvetica", "I", 10)
			pdf.SetTextColor(150, 150, 150)
			pdf.Text(margin, h/2, rf.label)
			pdf.SetTextColor(0, 0, 0)
			continue
		}

		y := margin
		if rf.face.Title != "" {
			pdf.SetFont("Helvetica", "B", 16)
			pdf.Text(margin, y+16, rf.face.Title)
			y += 32
		}
		body := rf.face.Body
		if rf.face.Placeholder() && rf.face.ContentKey != "" {
			body = fmt.Sprintf("[content pending: %s]", rf.face.ContentKey)
		}
		if body != "" {
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetXY(margin, y)
			pdf.MultiCell(w-2*margin, 14, body, "", "L", false)
		}

		// Page number footer in reading order
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.Text(margin, h-margin/2, rf.label)
		pdf.SetTextColor(0, 0, 0)
	}

	// Ensure output path is under the book's exports folder if relative
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(bh.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
