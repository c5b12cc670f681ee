/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flipbook/internal/domain"
	applog "flipbook/internal/log"
	"flipbook/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores all per-book ephemeral/index data under the book root.
	IndexDirName  = ".flipbook"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// IndexPath returns the full path to the book's embedded index database file.
func IndexPath(bookRoot string) string {
	return filepath.Join(bookRoot, IndexDirName, IndexFileName)
}

// InitOrOpenIndex ensures that the per-book SQLite index exists at
// .flipbook/index.sqlite, opens the database, enables WAL mode, and ensures
// the meta/version tables exist. The returned *sql.DB is ready for use.
func InitOrOpenIndex(bookRoot string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("root", bookRoot),
	)
	if strings.TrimSpace(bookRoot) == "" {
		return nil, errors.New("book root is required")
	}
	if err := os.MkdirAll(filepath.Join(bookRoot, IndexDirName), 0o755); err != nil {
		l.Error("create .flipbook dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create .flipbook dir: %w", err)
	}

	path := IndexPath(bookRoot)
	// Use a URI with shared cache and a busy timeout. Convert to forward slashes for SQLite URI.
	uriPath := filepath.ToSlash(path)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}

	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Info("index ready", slog.String("path", path))
	return db, nil
}

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	// Seed or update single-row version info
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Update app and timestamp only; keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Do not downgrade
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_documents_kind ON documents(kind);`,
				`CREATE INDEX IF NOT EXISTS idx_bookmarks_target ON bookmarks(target_page);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
			// Best-effort FTS optimize (outside the tx)
			if _, err := db.ExecContext(ctx, `INSERT INTO fts_documents(fts_documents) VALUES('optimize')`); err != nil {
				// best-effort optimize; ignore errors
			}
		default:
			// Unknown future step; break
		}
		cur = next
	}
	return nil
}

// ensureIndexSchema creates core index tables and FTS structures if they do not exist.
func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		// Core documents table: one row per indexed text, kind describes where
		// it came from (title, face_front, face_back, face_cover, bookmark, notes).
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id     INTEGER PRIMARY KEY,
			kind       TEXT    NOT NULL,
			path       TEXT    NOT NULL,
			page_index INTEGER,
			text       TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_path ON documents(path);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_page ON documents(page_index);`,

		// External-content FTS5 index over documents.text, kept in sync via
		// triggers. External content (rather than contentless) so snippet()
		// can read the source text for highlighted excerpts.
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_documents USING fts5(
			text,
			content='documents',
			content_rowid='doc_id',
			tokenize = 'unicode61'
		);`,

		// Bookmark catalog for fast target lookup without scanning the manifest.
		`CREATE TABLE IF NOT EXISTS bookmarks (
			page_index  INTEGER PRIMARY KEY,
			label       TEXT    NOT NULL,
			target_page INTEGER NOT NULL,
			anchor      TEXT    NOT NULL
		);`,

		// Snapshots (crash autosave history of the manifest)
		`CREATE TABLE IF NOT EXISTS snapshots (
			id         INTEGER PRIMARY KEY,
			ts         TEXT    NOT NULL,
			manifest   BLOB    NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(ts);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	// Triggers keep the external-content FTS index in sync with documents.text
	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_au AFTER UPDATE OF text ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
	}
	for _, q := range triggers {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure fts triggers: %w", err)
		}
	}
	return nil
}

// DetectAndRebuildIndex checks for corruption or missing schema and rebuilds the index if needed.
// It returns true when a rebuild was performed.
func DetectAndRebuildIndex(ctx context.Context, bookRoot string, b domain.Book) (bool, error) {
	path := IndexPath(bookRoot)
	db, err := InitOrOpenIndex(bookRoot)
	if err != nil {
		backupIndexFile(path)
		_ = os.Remove(path)
		if rbErr := RebuildIndex(ctx, bookRoot, b); rbErr != nil {
			return false, fmt.Errorf("rebuild after open failure: %w (open err: %v)", rbErr, err)
		}
		return true, nil
	}
	defer db.Close()
	needs := false
	// quick_check for corruption
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		needs = true
	}
	if !needs {
		if _, err := db.ExecContext(ctx, `SELECT 1 FROM documents LIMIT 1;`); err != nil {
			needs = true
		}
	}
	if !needs {
		return false, nil
	}
	backupIndexFile(path)
	_ = os.Remove(path)
	if err := RebuildIndex(ctx, bookRoot, b); err != nil {
		return false, err
	}
	return true, nil
}

// backupIndexFile copies the current index file into a timestamped backup in .flipbook/backups.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format("20060102-150405")
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// BuildIndexIfEmpty populates the index from the manifest when the documents
// table has no rows yet.
func BuildIndexIfEmpty(ctx context.Context, bookRoot string, b domain.Book) error {
	db, err := InitOrOpenIndex(bookRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	var cnt int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents;").Scan(&cnt); err != nil {
		return fmt.Errorf("check documents count: %w", err)
	}
	if cnt > 0 {
		return nil // already built
	}
	return rebuildDocumentsFromBook(ctx, db, b)
}

// UpdateIndex updates the embedded index with changes from the book manifest.
// Minimal safe implementation: replace the documents content from the provided manifest.
func UpdateIndex(ctx context.Context, bookRoot string, b domain.Book) error {
	db, err := InitOrOpenIndex(bookRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	return rebuildDocumentsFromBook(ctx, db, b)
}

// RebuildIndex drops and recreates core index tables and rebuilds content from the manifest.
// It preserves meta/version tables. The index is derived from book.json, so this is always safe.
func RebuildIndex(ctx context.Context, bookRoot string, b domain.Book) error {
	db, err := InitOrOpenIndex(bookRoot)
	if err != nil {
		return err
	}
	defer db.Close()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	drops := []string{
		"DROP TABLE IF EXISTS bookmarks;",
		"DROP TABLE IF EXISTS snapshots;",
		"DROP TRIGGER IF EXISTS documents_ai;",
		"DROP TRIGGER IF EXISTS documents_ad;",
		"DROP TRIGGER IF EXISTS documents_au;",
		"DROP TABLE IF EXISTS documents;",
		"DROP TABLE IF EXISTS fts_documents;",
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		return err
	}
	return rebuildDocumentsFromBook(ctx, db, b)
}

// rebuildDocumentsFromBook replaces the documents and bookmarks content from the given manifest.
func rebuildDocumentsFromBook(ctx context.Context, db *sql.DB, b domain.Book) error {
	type row struct {
		kind      string
		path      string
		pageIndex sql.NullInt64
		text      string
	}
	rows := make([]row, 0, 4*len(b.Pages)+4)
	if s := strings.TrimSpace(b.Title); s != "" {
		rows = append(rows, row{kind: "title", path: "book:title", text: s})
	}
	if s := strings.TrimSpace(b.Metadata.Author); s != "" {
		rows = append(rows, row{kind: "author", path: "book:author", text: s})
	}
	if s := strings.TrimSpace(b.Metadata.Series); s != "" {
		rows = append(rows, row{kind: "series", path: "book:series", text: s})
	}
	if s := strings.TrimSpace(b.Metadata.Notes); s != "" {
		rows = append(rows, row{kind: "notes", path: "book:notes", text: s})
	}

	addFace := func(idx int, side string, f *domain.Face) {
		if f == nil {
			return
		}
		page := sql.NullInt64{Int64: int64(idx), Valid: true}
		if s := strings.TrimSpace(f.Title); s != "" {
			rows = append(rows, row{kind: "face_" + side, path: fmt.Sprintf("page:%d/%s:title", idx, side), pageIndex: page, text: s})
		}
		if s := strings.TrimSpace(f.Body); s != "" {
			rows = append(rows, row{kind: "face_" + side, path: fmt.Sprintf("page:%d/%s:body", idx, side), pageIndex: page, text: s})
		}
	}

	type bm struct {
		pageIndex int
		label     string
		target    int
		anchor    string
	}
	var bookmarks []bm

	for idx, p := range b.Pages {
		addFace(idx, "front", p.Front)
		addFace(idx, "back", p.Back)
		addFace(idx, "cover", p.Cover)
		if p.Bookmark != nil {
			page := sql.NullInt64{Int64: int64(idx), Valid: true}
			if s := strings.TrimSpace(p.Bookmark.Label); s != "" {
				rows = append(rows, row{kind: "bookmark", path: fmt.Sprintf("page:%d/bookmark", idx), pageIndex: page, text: s})
			}
			anchor := "front"
			if !p.Bookmark.AnchorFront() {
				anchor = "back"
			}
			bookmarks = append(bookmarks, bm{pageIndex: idx, label: p.Bookmark.Label, target: p.Bookmark.TargetPage, anchor: anchor})
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear documents: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM bookmarks;"); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear bookmarks: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, "INSERT INTO documents(kind, path, page_index, text) VALUES(?,?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for _, r := range rows {
		if _, err := ins.ExecContext(ctx, r.kind, r.path, r.pageIndex, r.text); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert document: %w", err)
		}
	}
	insBm, err := tx.PrepareContext(ctx, "INSERT INTO bookmarks(page_index, label, target_page, anchor) VALUES(?,?,?,?);")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare bookmark insert: %w", err)
	}
	defer insBm.Close()
	for _, m := range bookmarks {
		if _, err := insBm.ExecContext(ctx, m.pageIndex, m.label, m.target, m.anchor); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert bookmark: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
