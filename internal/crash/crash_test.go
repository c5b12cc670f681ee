/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flipbook/internal/domain"
	"flipbook/internal/storage"
)

func testHandle(t *testing.T) *storage.BookHandle {
	t.Helper()
	b := domain.Book{Title: "Crash Test", Pages: []domain.PageDescriptor{
		{ID: 0, Cover: &domain.Face{Title: "Crash Test"}, FrontCover: true},
		{ID: 1, Front: &domain.Face{Body: "front"}, Back: &domain.Face{Body: "back"}},
	}}
	bh, err := storage.InitBook(t.TempDir(), b)
	if err != nil {
		t.Fatalf("InitBook: %v", err)
	}
	return bh
}

func TestRecoverWritesReportAndSnapshot(t *testing.T) {
	bh := testHandle(t)

	prevExit := exitFn
	exited := -1
	exitFn = func(code int) { exited = code }
	defer func() { exitFn = prevExit }()

	func() {
		defer Recover(bh)
		panic("boom in test")
	}()

	if exited != 2 {
		t.Fatalf("exit code = %d, want 2", exited)
	}

	ents, err := os.ReadDir(filepath.Join(bh.Root, storage.BackupsDirName))
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	var report string
	for _, e := range ents {
		if strings.HasPrefix(e.Name(), "crash-") && strings.HasSuffix(e.Name(), ".log") {
			report = filepath.Join(bh.Root, storage.BackupsDirName, e.Name())
		}
	}
	if report == "" {
		t.Fatalf("no crash report written")
	}
	data, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{"boom in test", "Stack:", "BookRoot:"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("report missing %q", want)
		}
	}

	snap, _, err := storage.LatestSnapshot(context.Background(), bh)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if snap == nil || snap.Title != "Crash Test" {
		t.Fatalf("no autosave snapshot after crash: %+v", snap)
	}
}

func TestRecoverWithoutPanicIsNoop(t *testing.T) {
	prevExit := exitFn
	called := false
	exitFn = func(code int) { called = true }
	defer func() { exitFn = prevExit }()

	func() {
		defer Recover(nil)
	}()
	if called {
		t.Fatalf("Recover exited without a panic")
	}
}

func TestRecoverWithNilHandleStillReports(t *testing.T) {
	prevExit := exitFn
	exitFn = func(code int) {}
	defer func() { exitFn = prevExit }()

	func() {
		defer Recover(nil)
		panic("no handle")
	}()
	// Report lands in the temp dir; just make sure nothing panicked again.
}
