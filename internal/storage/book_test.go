/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"flipbook/internal/domain"
)

func sampleBook() domain.Book {
	return domain.Book{
		Title:    "Field Notes",
		Metadata: domain.Metadata{Author: "R. Harper", Series: "Notebooks"},
		Pages: []domain.PageDescriptor{
			{ID: 0, Cover: &domain.Face{Title: "Field Notes"}, FrontCover: true},
			{ID: 1,
				Front:    &domain.Face{Title: "Spring", Body: "The river thawed early this year."},
				Back:     &domain.Face{Title: "Summer", Body: "Dry spell through July."},
				Bookmark: &domain.Bookmark{Label: "Seasons", TargetPage: 1},
			},
			{ID: 2, Front: &domain.Face{ContentKey: "weather/autumn"}, Back: &domain.Face{Body: "First frost on the 12th."}},
			{ID: 3, Cover: &domain.Face{Title: "Field Notes"}},
		},
	}
}

func TestInitBookScaffoldsAndWritesManifest(t *testing.T) {
	root := filepath.Join(t.TempDir(), "book")
	bh, err := InitBook(root, sampleBook())
	if err != nil {
		t.Fatalf("InitBook: %v", err)
	}
	for _, d := range standardSubDirs {
		if fi, err := os.Stat(filepath.Join(root, d)); err != nil || !fi.IsDir() {
			t.Fatalf("subdir %s missing: %v", d, err)
		}
	}
	if _, err := os.Stat(bh.ManifestPath); err != nil {
		t.Fatalf("manifest missing: %v", err)
	}

	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.Book.Title != "Field Notes" || len(got.Book.Pages) != 4 {
		t.Fatalf("round trip: %+v", got.Book)
	}
	if got.Book.Pages[1].Bookmark == nil || got.Book.Pages[1].Bookmark.Label != "Seasons" {
		t.Fatalf("bookmark lost in round trip")
	}
}

func TestSaveCreatesTimestampedBackup(t *testing.T) {
	root := t.TempDir()
	bh, err := InitBook(root, sampleBook())
	if err != nil {
		t.Fatalf("InitBook: %v", err)
	}

	bh.Book.Title = "Field Notes, Revised"
	if err := Save(bh); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups: %v", err)
	}
	if len(ents) == 0 {
		t.Fatalf("expected a backup of the previous manifest")
	}

	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.Book.Title != "Field Notes, Revised" {
		t.Fatalf("title = %q", got.Book.Title)
	}
}

func TestOpenFallsBackToLatestBackupOnCorruption(t *testing.T) {
	root := t.TempDir()
	bh, err := InitBook(root, sampleBook())
	if err != nil {
		t.Fatalf("InitBook: %v", err)
	}
	// Create a backup by saving once more, then corrupt the live manifest.
	if err := Save(bh); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(bh.ManifestPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}

	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open after corruption: %v", err)
	}
	if got.Book.Title != "Field Notes" {
		t.Fatalf("backup not used, got title %q", got.Book.Title)
	}
}

func TestSaveAsScaffoldsNewRoot(t *testing.T) {
	root := t.TempDir()
	bh, err := InitBook(root, sampleBook())
	if err != nil {
		t.Fatalf("InitBook: %v", err)
	}
	newRoot := filepath.Join(t.TempDir(), "copy")
	if err := SaveAs(bh, newRoot); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if bh.Root != newRoot {
		t.Fatalf("handle root not updated")
	}
	if _, err := os.Stat(filepath.Join(newRoot, ManifestFileName)); err != nil {
		t.Fatalf("manifest missing at new root: %v", err)
	}
}

func TestOpenMissingBookFails(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nowhere")); err == nil {
		t.Fatalf("expected error opening missing book")
	}
}
