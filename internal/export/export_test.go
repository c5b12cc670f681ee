/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"flipbook/internal/domain"
	"flipbook/internal/storage"
)

func testHandle(t *testing.T) *storage.BookHandle {
	t.Helper()
	b := domain.Book{
		Title:    "Export Test",
		Metadata: domain.Metadata{Author: "R. Harper"},
		Pages: []domain.PageDescriptor{
			{ID: 0, Cover: &domain.Face{Title: "Export Test"}, FrontCover: true},
			{ID: 1,
				Front:    &domain.Face{Title: "One", Body: "A reasonably long paragraph that should wrap across several lines when rendered into the preview image or the PDF body."},
				Back:     &domain.Face{Body: "Short back."},
				Bookmark: &domain.Bookmark{Label: "Chapter", TargetPage: 1, Color: domain.Color{R: 10, G: 120, B: 40, A: 255}},
			},
			{ID: 2, Front: &domain.Face{ContentKey: "late/key"}, Back: &domain.Face{}},
			{ID: 3, Cover: &domain.Face{Title: "Export Test"}},
		},
	}
	bh, err := storage.InitBook(t.TempDir(), b)
	if err != nil {
		t.Fatalf("InitBook: %v", err)
	}
	return bh
}

func TestExportBookPDFWritesReadableFile(t *testing.T) {
	bh := testHandle(t)
	if err := ExportBookPDF(bh, "book.pdf", PDFOptions{}); err != nil {
		t.Fatalf("ExportBookPDF: %v", err)
	}
	out := filepath.Join(bh.Root, "exports", "book.pdf")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF")
	}
	if len(data) < 1000 {
		t.Fatalf("pdf suspiciously small: %d bytes", len(data))
	}
}

func TestReadingOrderFlattensLeaves(t *testing.T) {
	bh := testHandle(t)
	faces := readingOrder(bh.Book, nil)
	// cover + 2*2 inner leaves + cover
	if len(faces) != 6 {
		t.Fatalf("faces = %d, want 6", len(faces))
	}
	if faces[0].label != "Front cover" || faces[5].label != "Back cover" {
		t.Fatalf("cover labels: %q %q", faces[0].label, faces[5].label)
	}
	if faces[1].leafIndex != 1 || faces[2].leafIndex != 1 || faces[3].leafIndex != 2 {
		t.Fatalf("leaf order broken: %+v", faces)
	}

	only := readingOrder(bh.Book, []int{2})
	if len(only) != 2 || only[0].leafIndex != 2 {
		t.Fatalf("page filter: %+v", only)
	}
}

func TestExportBookPNGPagesRendersEveryFace(t *testing.T) {
	bh := testHandle(t)
	if err := ExportBookPNGPages(bh, "previews", PNGOptions{Width: 200, Height: 300}); err != nil {
		t.Fatalf("ExportBookPNGPages: %v", err)
	}
	dir := filepath.Join(bh.Root, "exports", "previews")
	want := []string{
		"leaf-0-cover.png",
		"leaf-1-front.png",
		"leaf-1-back.png",
		"leaf-2-front.png",
		"leaf-2-back.png",
		"leaf-3-cover.png",
	}
	for _, name := range want {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		img, err := png.Decode(f)
		_ = f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		b := img.Bounds()
		if b.Dx() != 200 || b.Dy() != 300 {
			t.Fatalf("%s size = %dx%d", name, b.Dx(), b.Dy())
		}
	}
}
