/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// AnyPage disables one side of the page range filter. Leaf indices start at
// zero, so zero cannot double as "unset" the way it could for 1-based pages.
const AnyPage = -1

// SearchQuery describes the in-app search request.
// Text uses SQLite FTS5 syntax (simple terms, phrases in quotes, AND/OR/NOT).
// Kinds can restrict to document kinds like: title, face_front, face_back,
// face_cover, bookmark. PageFrom/To are inclusive leaf indices; use AnyPage
// to leave a side open. Limit/Offset implement pagination; reasonable
// defaults applied if zero.
type SearchQuery struct {
	Text     string
	Kinds    []string
	PageFrom int
	PageTo   int
	Limit    int
	Offset   int
}

// SearchResult represents a single match row.
// Snippet is a highlighted excerpt using [ ] markers when FTS text is used.
// PageIndex is the leaf index carrying the match, -1 when the match belongs
// to the book itself (title, metadata). Navigation jumps straight to it.
type SearchResult struct {
	DocID     int64
	Kind      string
	Path      string
	PageIndex int
	Snippet   string
}

// Search performs full-text search with optional filters over the embedded index.
// When q.Text is empty, it falls back to a non-FTS scan over documents with filters applied.
func Search(ctx context.Context, bookRoot string, q SearchQuery) ([]SearchResult, error) {
	if strings.TrimSpace(bookRoot) == "" {
		return nil, errors.New("book root is required")
	}
	db, err := InitOrOpenIndex(bookRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return searchDB(ctx, db, q)
}

func searchDB(ctx context.Context, db *sql.DB, q SearchQuery) ([]SearchResult, error) {
	var args []any
	var sb strings.Builder
	useFTS := strings.TrimSpace(q.Text) != ""
	if useFTS {
		sb.WriteString("SELECT d.doc_id, d.kind, d.path, COALESCE(d.page_index,-1), snippet(fts_documents, 0, '[', ']', '...', 10)\n")
		sb.WriteString("FROM fts_documents JOIN documents d ON fts_documents.rowid = d.doc_id\n")
		sb.WriteString("WHERE fts_documents MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT d.doc_id, d.kind, d.path, COALESCE(d.page_index,-1), ''\n")
		sb.WriteString("FROM documents d\nWHERE 1=1\n")
	}
	if len(q.Kinds) > 0 {
		sb.WriteString(" AND d.kind IN (" + placeholders(len(q.Kinds)) + ")\n")
		for _, k := range q.Kinds {
			args = append(args, k)
		}
	}
	if q.PageFrom >= 0 && q.PageTo >= 0 && q.PageTo >= q.PageFrom {
		sb.WriteString(" AND d.page_index BETWEEN ? AND ?\n")
		args = append(args, q.PageFrom, q.PageTo)
	} else if q.PageFrom >= 0 {
		sb.WriteString(" AND d.page_index >= ?\n")
		args = append(args, q.PageFrom)
	} else if q.PageTo >= 0 {
		sb.WriteString(" AND d.page_index <= ?\n")
		args = append(args, q.PageTo)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	sb.WriteString("ORDER BY d.page_index NULLS LAST, d.doc_id\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, q.Offset)

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		var page sql.NullInt64
		var sn sql.NullString
		if err := rows.Scan(&r.DocID, &r.Kind, &r.Path, &page, &sn); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.PageIndex = -1
		if page.Valid {
			r.PageIndex = int(page.Int64)
		}
		if sn.Valid {
			r.Snippet = sn.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// BookmarkTarget is one row of the bookmark catalog.
type BookmarkTarget struct {
	PageIndex  int
	Label      string
	TargetPage int
	Anchor     string
}

// ListBookmarks returns the bookmark catalog ordered by carrying leaf.
func ListBookmarks(ctx context.Context, bookRoot string) ([]BookmarkTarget, error) {
	if strings.TrimSpace(bookRoot) == "" {
		return nil, errors.New("book root is required")
	}
	db, err := InitOrOpenIndex(bookRoot)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, `SELECT page_index, label, target_page, anchor FROM bookmarks ORDER BY page_index`)
	if err != nil {
		return nil, fmt.Errorf("bookmark query: %w", err)
	}
	defer rows.Close()
	var out []BookmarkTarget
	for rows.Next() {
		var t BookmarkTarget
		if err := rows.Scan(&t.PageIndex, &t.Label, &t.TargetPage, &t.Anchor); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := strings.Builder{}
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("?")
	}
	return b.String()
}
