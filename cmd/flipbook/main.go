/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"flipbook/internal/assetpack"
	"flipbook/internal/content"
	"flipbook/internal/crash"
	"flipbook/internal/domain"
	"flipbook/internal/export"
	applog "flipbook/internal/log"
	"flipbook/internal/script"
	"flipbook/internal/storage"
	"flipbook/internal/ui"
	"flipbook/internal/version"
)

func usage() {
	fmt.Println("Flipbook — interactive page-turning book")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  flipbook version|-v|--version              Show version")
	fmt.Println("  flipbook init <dir> <title> [leaves]       Create a new book at <dir> with <title> and optional inner leaf count")
	fmt.Println("  flipbook import <script.txt> <dir>         Build a book at <dir> from a plain-text book script")
	fmt.Println("  flipbook open <dir>                        Open book at <dir> and print summary")
	fmt.Println("  flipbook save <dir>                        Save book at <dir> (creates backup, refreshes index)")
	fmt.Println("  flipbook search <dir> <text>               Full-text search across faces and bookmarks")
	fmt.Println("  flipbook bookmarks <dir>                   List the book's bookmarks")
	fmt.Println("  flipbook export <dir> pdf [out.pdf]        Export the book as a PDF")
	fmt.Println("  flipbook export <dir> png [subdir]         Export every face as a PNG image")
	fmt.Println("  flipbook pack export <dir> <out.zip>       Zip the book's assets directory into a pack")
	fmt.Println("  flipbook pack install <dir> <pack.zip>     Install an asset pack into the book")
	fmt.Println("  flipbook serve                             Run the content service (Postgres-backed)")
	fmt.Println("  flipbook ui [<dir>]                        Launch desktop reader (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var bh *storage.BookHandle
	defer func() { crash.Recover(bh) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Flipbook — interactive page-turning book")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <title>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			title := args[3]
			leaves := 3
			if len(args) >= 5 {
				if n, err := strconv.Atoi(args[4]); err == nil && n >= 0 {
					leaves = n
				}
			}
			abs, _ := filepath.Abs(dir)
			l.Info("init book", slog.String("root", abs), slog.String("title", title), slog.Int("leaves", leaves))
			h, err := storage.InitBook(abs, scaffoldBook(title, leaves))
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			bh = h
			if err := buildIndex(abs, h.Book); err != nil {
				l.Warn("index build failed", slog.Any("err", err))
			}
			fmt.Println("Created book at", abs)
			return
		case "import":
			if len(args) < 4 {
				fmt.Println("import requires <script.txt> and <dir>")
				usage()
				os.Exit(2)
			}
			src := args[2]
			dir := args[3]
			raw, err := os.ReadFile(src)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			parsed, perrs := script.Parse(string(raw))
			b, berrs := script.Build(parsed)
			for _, e := range append(perrs, berrs...) {
				fmt.Printf("%s:%d: %s\n", src, e.Line, e.Message)
			}
			if len(perrs)+len(berrs) > 0 {
				os.Exit(1)
			}
			abs, _ := filepath.Abs(dir)
			l.Info("import book", slog.String("script", src), slog.String("root", abs))
			h, err := storage.InitBook(abs, b)
			if err != nil {
				l.Error("import failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			bh = h
			if err := buildIndex(abs, h.Book); err != nil {
				l.Warn("index build failed", slog.Any("err", err))
			}
			fmt.Printf("Imported %q (%d leaves) to %s\n", b.Title, len(b.Pages), abs)
			return
		case "open":
			h := mustOpen(args, l)
			bh = h
			fmt.Printf("Opened book: %s\n", h.Book.Title)
			fmt.Printf("Leaves: %d\n", len(h.Book.Pages))
			if h.Book.Metadata.Author != "" {
				fmt.Println("Author:", h.Book.Metadata.Author)
			}
			nb := 0
			for _, d := range h.Book.Pages {
				if d.Bookmark != nil {
					nb++
				}
			}
			fmt.Printf("Bookmarks: %d\n", nb)
			fmt.Println("Root:", h.Root)
			return
		case "save":
			h := mustOpen(args, l)
			bh = h
			h.Book.Metadata.Notes = fmt.Sprintf("Saved at %s", time.Now().Format(time.RFC3339))
			if err := storage.Save(h); err != nil {
				l.Error("save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if err := buildIndex(h.Root, h.Book); err != nil {
				l.Warn("index refresh failed", slog.Any("err", err))
			}
			fmt.Println("Saved book and created a backup of the previous manifest (if any).")
			return
		case "search":
			if len(args) < 4 {
				fmt.Println("search requires <dir> and <text>")
				usage()
				os.Exit(2)
			}
			h := mustOpen(args, l)
			bh = h
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			if err := storage.BuildIndexIfEmpty(ctx, h.Root, h.Book); err != nil {
				l.Warn("index build failed", slog.Any("err", err))
			}
			res, err := storage.Search(ctx, h.Root, storage.SearchQuery{
				Text:     args[3],
				PageFrom: storage.AnyPage,
				PageTo:   storage.AnyPage,
				Limit:    50,
			})
			if err != nil {
				l.Error("search failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, r := range res {
				page := "-"
				if r.PageIndex >= 0 {
					page = strconv.Itoa(r.PageIndex)
				}
				fmt.Printf("leaf %s\t%s\t%s\n", page, r.Kind, r.Snippet)
			}
			fmt.Printf("%d results\n", len(res))
			return
		case "bookmarks":
			h := mustOpen(args, l)
			bh = h
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			if err := storage.BuildIndexIfEmpty(ctx, h.Root, h.Book); err != nil {
				l.Warn("index build failed", slog.Any("err", err))
			}
			bms, err := storage.ListBookmarks(ctx, h.Root)
			if err != nil {
				l.Error("list bookmarks failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, b := range bms {
				fmt.Printf("leaf %d\t%q -> page %d\n", b.PageIndex, b.Label, b.TargetPage)
			}
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <dir> and a format (pdf|png)")
				usage()
				os.Exit(2)
			}
			h := mustOpen(args, l)
			bh = h
			switch args[3] {
			case "pdf":
				out := "book.pdf"
				if len(args) >= 5 {
					out = args[4]
				}
				if err := export.ExportBookPDF(h, out, export.PDFOptions{}); err != nil {
					l.Error("export pdf failed", slog.Any("err", err))
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				fmt.Println("Exported PDF to", filepath.Join(h.Root, "exports", out))
			case "png":
				sub := "pages"
				if len(args) >= 5 {
					sub = args[4]
				}
				if err := export.ExportBookPNGPages(h, sub, export.PNGOptions{}); err != nil {
					l.Error("export png failed", slog.Any("err", err))
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				fmt.Println("Exported page images to", filepath.Join(h.Root, "exports", sub))
			default:
				fmt.Println("unknown export format:", args[3])
				usage()
				os.Exit(2)
			}
			return
		case "pack":
			if len(args) < 5 {
				fmt.Println("pack requires export|install, <dir> and a zip path")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[3])
			switch args[2] {
			case "export":
				if err := assetpack.ExportBookAssets(abs, args[4]); err != nil {
					l.Error("pack export failed", slog.Any("err", err))
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				fmt.Println("Exported asset pack to", args[4])
			case "install":
				n, err := assetpack.InstallPack(abs, args[4])
				if err != nil {
					l.Error("pack install failed", slog.Any("err", err))
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				fmt.Printf("Installed %d files into %s\n", n, filepath.Join(abs, "assets"))
			default:
				fmt.Println("unknown pack action:", args[2])
				usage()
				os.Exit(2)
			}
			return
		case "serve":
			if err := content.Start(); err != nil {
				l.Error("content service failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "ui":
			var dir string
			if len(args) >= 3 {
				dir = args[2]
			}
			if err := ui.Run(dir); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func mustOpen(args []string, l *slog.Logger) *storage.BookHandle {
	if len(args) < 3 {
		fmt.Printf("%s requires <dir>\n", args[1])
		usage()
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[2])
	l.Info("open book", slog.String("root", abs))
	h, err := storage.Open(abs)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return h
}

func buildIndex(root string, b domain.Book) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return storage.UpdateIndex(ctx, root, b)
}

// scaffoldBook builds a starter manifest: a front cover, a few blank inner
// leaves, and a back cover.
func scaffoldBook(title string, leaves int) domain.Book {
	pages := make([]domain.PageDescriptor, 0, leaves+2)
	pages = append(pages, domain.PageDescriptor{
		ID:         1,
		Cover:      &domain.Face{Title: title},
		FrontCover: true,
	})
	for i := 0; i < leaves; i++ {
		pages = append(pages, domain.PageDescriptor{
			ID:    i + 2,
			Front: &domain.Face{},
			Back:  &domain.Face{},
		})
	}
	pages = append(pages, domain.PageDescriptor{
		ID:    leaves + 2,
		Cover: &domain.Face{},
	})
	return domain.Book{Title: title, Pages: pages}
}
