//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"flipbook/internal/audio"
	"flipbook/internal/book"
	"flipbook/internal/config"
	"flipbook/internal/content"
	"flipbook/internal/crash"
	"flipbook/internal/domain"
	"flipbook/internal/export"
	applog "flipbook/internal/log"
	"flipbook/internal/storage"
	"flipbook/internal/telemetry"
	"flipbook/internal/textflow"
	"flipbook/internal/version"
)

// Run starts the Fyne-based desktop reader.
func Run(bookDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")
	telemetry.Event("app_start", nil)

	cfg, token, err := config.Load()
	if err != nil {
		l.Warn("load config failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	var bh *storage.BookHandle
	defer func() { crash.Recover(bh) }()

	var player audio.Player = audio.Nop{}
	if cfg.Book.Audio {
		if s, serr := audio.NewSynth(); serr != nil {
			l.Warn("audio unavailable, cues disabled", slog.Any("err", serr))
		} else {
			player = s
		}
	}
	defer player.Close()

	fyneApp := app.NewWithID("flipbook")
	w := fyneApp.NewWindow("Flipbook")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1100)
	winH := prefs.IntWithFallback("window.height", 760)
	if winW < 900 {
		winW = 900
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	spread := NewSpreadCanvas()

	var host *book.Host
	lastIdleCursor := 0
	autosaver := storage.NewAutosaver(storage.AutosaveConfig{
		MinInterval: 2 * time.Second,
		MaxPending:  50,
		KeepLast:    20,
	})

	// pull descriptor state (including swapped-in content) back into the
	// handle so autosave snapshots reflect what the reader sees
	syncHandle := func() {
		if host == nil || bh == nil {
			return
		}
		for i := range bh.Book.Pages {
			if d, ok := host.Descriptor(i); ok {
				bh.Book.Pages[i] = d
			}
		}
	}

	prevBtn := widget.NewButton("◀ Previous", nil)
	nextBtn := widget.NewButton("Next ▶", nil)
	backBtn := widget.NewButton("Back", nil)
	prevBtn.Disable()
	nextBtn.Disable()
	backBtn.Disable()

	bookmarksBox := container.NewVBox()

	refreshNav := func(st book.Status) {
		if st.OnFirstPage || st.Navigating {
			prevBtn.Disable()
		} else {
			prevBtn.Enable()
		}
		if st.OnLastPage || st.Navigating {
			nextBtn.Disable()
		} else {
			nextBtn.Enable()
		}
		if st.Navigating {
			backBtn.Disable()
		} else {
			backBtn.Enable()
		}
	}

	refreshSpread := func() {
		if host == nil {
			return
		}
		st := host.Status()
		left, right := spreadFaces(host, st.CurrentPage)
		spread.SetSpread(left, right)
		spread.SetTabs(visibleTabs(host, st.CurrentPage))
		spread.Refresh()
		refreshNav(st)
		if st.Navigating {
			status.SetText(fmt.Sprintf("Turning… (page %d of %d)", st.CurrentPage, st.PageCount))
		} else {
			status.SetText(fmt.Sprintf("Page %d of %d", st.CurrentPage, st.PageCount))
		}
	}

	refreshBookmarks := func() {
		bookmarksBox.Objects = nil
		if host != nil {
			for i := 0; i < host.Len(); i++ {
				d, ok := host.Descriptor(i)
				if !ok || d.Bookmark == nil {
					continue
				}
				target := d.Bookmark.TargetPage
				label := d.Bookmark.Label
				bookmarksBox.Add(widget.NewButton(label, func() {
					if host != nil && host.Navigate(target) {
						telemetry.BookmarkUsed(target)
					}
				}))
			}
		}
		bookmarksBox.Refresh()
	}

	prevBtn.OnTapped = func() {
		if host == nil {
			return
		}
		st := host.Status()
		host.Navigate(st.CurrentPage - 1)
	}
	nextBtn.OnTapped = func() {
		if host == nil {
			return
		}
		st := host.Status()
		host.Navigate(st.CurrentPage + 1)
	}
	backBtn.OnTapped = func() {
		if host != nil {
			host.Back()
		}
	}
	spread.OnTabTapped = func(target int) {
		if host != nil && host.Navigate(target) {
			telemetry.BookmarkUsed(target)
		}
	}

	// Search results pane
	var searchResults []storage.SearchResult
	var searchItems []string
	searchList := widget.NewList(
		func() int { return len(searchItems) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if int(id) < len(searchItems) {
				o.(*widget.Label).SetText(searchItems[id])
			}
		},
	)
	omniBox := widget.NewEntry()
	omniBox.SetPlaceHolder("Search book…")
	runSearch := func(q string) {
		qq := strings.TrimSpace(q)
		if qq == "" || bh == nil {
			searchItems = searchItems[:0]
			searchResults = searchResults[:0]
			searchList.Refresh()
			return
		}
		status.SetText("Searching…")
		go func(root, text string) {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			res, err := storage.Search(ctx, root, storage.SearchQuery{
				Text:     text,
				PageFrom: storage.AnyPage,
				PageTo:   storage.AnyPage,
				Limit:    200,
			})
			fyne.Do(func() {
				if err != nil {
					l.Error("search failed", slog.Any("err", err))
					status.SetText("Search failed.")
					return
				}
				searchResults = res
				searchItems = searchItems[:0]
				for _, r := range res {
					page := "-"
					if r.PageIndex >= 0 {
						page = fmt.Sprintf("%d", r.PageIndex)
					}
					sn := strings.TrimSpace(r.Snippet)
					if sn == "" {
						sn = r.Path
					}
					if len(sn) > 120 {
						sn = sn[:120] + "…"
					}
					searchItems = append(searchItems, fmt.Sprintf("leaf %s — %s — %s", page, r.Kind, sn))
				}
				searchList.Refresh()
				status.SetText(fmt.Sprintf("%d results", len(res)))
			})
		}(bh.Root, qq)
	}
	omniBox.OnSubmitted = func(s string) { runSearch(s) }
	searchList.OnSelected = func(id widget.ListItemID) {
		if id < 0 || int(id) >= len(searchResults) || host == nil {
			return
		}
		r := searchResults[id]
		if r.PageIndex < 0 {
			return
		}
		target := r.PageIndex
		if r.Kind == "face_back" {
			// back faces sit on the left of the spread after the leaf flips
			target++
		}
		host.Navigate(target)
		searchList.UnselectAll()
	}

	buildHost := func() {
		host = book.NewHost(bh.Book, book.HostOptions{
			Player:       player,
			CascadeDelay: cfg.Book.CascadeDelay(),
			SettleDelay:  cfg.Book.SettleDelay(),
			IntroAdvance: cfg.Book.IntroAdvancePages,
			MountWait:    cfg.Book.MountWait(),
			OnStatus: func(st book.Status) {
				fyne.Do(func() {
					if !st.Navigating && st.CurrentPage != lastIdleCursor {
						telemetry.Navigation(lastIdleCursor, st.CurrentPage, host.Len())
						lastIdleCursor = st.CurrentPage
					}
					refreshSpread()
				})
			},
			OnContent: func(pageID int) {
				fyne.Do(func() {
					syncHandle()
					if err := autosaver.Capture(bh.Book); err != nil {
						l.Warn("autosave capture failed", slog.Any("err", err))
					}
					refreshSpread()
					status.SetText(fmt.Sprintf("Content arrived for page %d", pageID))
				})
			},
		})
		host.MountAll()
		host.Start()
		refreshSpread()
		refreshBookmarks()

		if cfg.Content.BaseURL != "" {
			cl := content.NewClient(cfg.Content.BaseURL, token, content.ClientOptions{
				Timeout:     cfg.Content.EffectiveTimeout(),
				TLSInsecure: cfg.Content.TLSInsecure,
			})
			h := host
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Content.EffectiveTimeout())
				defer cancel()
				n, rerr := cl.ResolvePending(ctx, h)
				if rerr != nil {
					l.Warn("content resolution incomplete", slog.Any("err", rerr), slog.Int("resolved", n))
				} else if n > 0 {
					l.Info("content resolved", slog.Int("resolved", n))
				}
				if n > 0 && bh != nil {
					if _, ferr := autosaver.Flush(ctx, bh); ferr != nil {
						l.Warn("autosave flush failed", slog.Any("err", ferr))
					}
				}
			}()
		}
	}

	openBook := func(dir string) error {
		if err := doOpenBook(dir, &bh, w, l, status); err != nil {
			return err
		}
		lastIdleCursor = 0
		buildHost()
		go func(root string, b storage.BookHandle) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := storage.DetectAndRebuildIndex(ctx, root, b.Book); err != nil {
				l.Warn("index check failed", slog.Any("err", err))
			}
		}(bh.Root, *bh)
		return nil
	}

	showOpenDialog := func() {
		dialog.ShowFolderOpen(func(list fyne.ListableURI, derr error) {
			if derr != nil || list == nil {
				return
			}
			if oerr := openBook(list.Path()); oerr != nil {
				dialog.ShowError(oerr, w)
			}
		}, w)
	}

	exportPDF := func() {
		if bh == nil {
			return
		}
		out := fmt.Sprintf("%s.pdf", sanitizeFileName(bh.Book.Title))
		go func(h storage.BookHandle, name string) {
			err := export.ExportBookPDF(&h, name, export.PDFOptions{})
			fyne.Do(func() {
				if err != nil {
					l.Error("export pdf failed", slog.Any("err", err))
					dialog.ShowError(err, w)
					return
				}
				status.SetText(fmt.Sprintf("Exported %s", filepath.Join("exports", name)))
			})
		}(*bh, out)
	}

	exportPNG := func() {
		if bh == nil {
			return
		}
		go func(h storage.BookHandle) {
			err := export.ExportBookPNGPages(&h, "pages", export.PNGOptions{})
			fyne.Do(func() {
				if err != nil {
					l.Error("export png failed", slog.Any("err", err))
					dialog.ShowError(err, w)
					return
				}
				status.SetText("Exported page images to exports/pages")
			})
		}(*bh)
	}

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Book…", showOpenDialog),
		fyne.NewMenuItem("Save", func() {
			if bh == nil {
				return
			}
			if serr := storage.Save(bh); serr != nil {
				dialog.ShowError(serr, w)
				return
			}
			status.SetText("Saved.")
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PDF", exportPDF),
		fyne.NewMenuItem("Export Page Images", exportPNG),
	)
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() {
			dialog.ShowInformation("Flipbook", fmt.Sprintf("Flipbook %s", version.String()), w)
		}),
	)
	w.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))

	controls := container.NewHBox(prevBtn, backBtn, nextBtn)
	right := container.NewBorder(
		container.NewVBox(widget.NewLabel("Bookmarks"), bookmarksBox, widget.NewSeparator(), omniBox),
		nil, nil, nil,
		searchList,
	)
	root := container.NewBorder(
		nil,
		container.NewVBox(container.NewCenter(controls), status),
		nil,
		right,
		spread,
	)
	w.SetContent(root)

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if bh != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if _, ferr := autosaver.Flush(ctx, bh); ferr != nil {
				l.Warn("autosave flush on close failed", slog.Any("err", ferr))
			}
			cancel()
		}
		w.Close()
	})

	if strings.TrimSpace(bookDir) != "" {
		if oerr := openBook(bookDir); oerr != nil {
			l.Error("open book", slog.String("dir", bookDir), slog.Any("err", oerr))
			status.SetText(fmt.Sprintf("Could not open %s: %v", bookDir, oerr))
		}
	} else {
		status.SetText("Open a book folder to start reading (File → Open Book…).")
	}

	w.ShowAndRun()
	flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	telemetry.Flush(flushCtx)
	cancel()
	return nil
}

func doOpenBook(dir string, bh **storage.BookHandle, w fyne.Window, l *slog.Logger, status *widget.Label) error {
	abs, _ := filepath.Abs(dir)
	l.Info("open book", slog.String("root", abs))
	h, err := storage.Open(abs)
	if err != nil {
		return err
	}
	*bh = h
	w.SetTitle(fmt.Sprintf("Flipbook — %s", h.Book.Title))
	status.SetText(fmt.Sprintf("Opened book: %s", abs))
	return nil
}

// spreadFaces resolves the two faces visible at a cursor position: the back
// of the last flipped leaf on the left, the front of the next leaf on the
// right. Cover leaves show their single cover face on either side.
func spreadFaces(h *book.Host, cursor int) (left, right faceView) {
	left = faceView{empty: true}
	right = faceView{empty: true}
	if cursor > 0 {
		if d, ok := h.Descriptor(cursor - 1); ok {
			if d.IsCover() {
				left = faceFromDescriptor(d.Cover, fmt.Sprintf("Leaf %d", cursor-1))
			} else {
				left = faceFromDescriptor(d.Back, fmt.Sprintf("Leaf %d back", cursor-1))
			}
		}
	}
	if d, ok := h.Descriptor(cursor); ok {
		if d.IsCover() {
			right = faceFromDescriptor(d.Cover, fmt.Sprintf("Leaf %d", cursor))
		} else {
			right = faceFromDescriptor(d.Front, fmt.Sprintf("Leaf %d front", cursor))
		}
	}
	return left, right
}

// visibleTabs collects the bookmark tabs that hang off the two visible leaves.
func visibleTabs(h *book.Host, cursor int) []tabView {
	var tabs []tabView
	add := func(leaf int, onRight bool) {
		d, ok := h.Descriptor(leaf)
		if !ok || d.Bookmark == nil {
			return
		}
		b := d.Bookmark
		col := color.RGBA{R: b.Color.R, G: b.Color.G, B: b.Color.B, A: b.Color.A}
		if col.A == 0 {
			col = color.RGBA{R: 180, G: 40, B: 40, A: 255}
		}
		tabs = append(tabs, tabView{
			label:   b.Label,
			target:  b.TargetPage,
			col:     col,
			offsetY: float32(b.OffsetY),
			right:   onRight,
		})
	}
	if cursor > 0 {
		add(cursor-1, false)
	}
	add(cursor, true)
	return tabs
}

func faceFromDescriptor(f *domain.Face, label string) faceView {
	fv := faceView{label: label}
	if f != nil {
		fv.title = f.Title
		fv.body = f.Body
		if f.Body == "" && f.ContentKey != "" {
			fv.body = fmt.Sprintf("[content pending: %s]", f.ContentKey)
		}
	}
	fv.placeholder = f.Placeholder()
	return fv
}

func sanitizeFileName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "book"
	}
	repl := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "-", "?", "-", "\"", "-", "<", "-", ">", "-", "|", "-")
	return repl.Replace(s)
}

// faceView is the render model for one visible face.
type faceView struct {
	label       string
	title       string
	body        string
	placeholder bool
	empty       bool
}

// tabView is the render model for one bookmark tab on the spread.
type tabView struct {
	label   string
	target  int
	col     color.RGBA
	offsetY float32
	right   bool
}

// SpreadCanvas renders the open spread of the book: two page faces, the
// spine between them, and any bookmark tabs on the visible leaves. Tab hits
// invoke OnTabTapped with the bookmark's target page.
type SpreadCanvas struct {
	widget.BaseWidget

	zoom  float32
	leafW float32 // leaf width in pt
	leafH float32 // leaf height in pt

	left  faceView
	right faceView
	tabs  []tabView

	// Hit rectangles for tabs, tracked after each layout.
	tabRects []tabHit

	OnTabTapped func(target int)
}

type tabHit struct {
	pos    fyne.Position
	size   fyne.Size
	target int
}

func NewSpreadCanvas() *SpreadCanvas {
	sc := &SpreadCanvas{
		zoom:  0.5,
		leafW: 396, // half-letter portrait in pt
		leafH: 612,
		left:  faceView{empty: true},
		right: faceView{empty: true},
	}
	sc.ExtendBaseWidget(sc)
	return sc
}

// PreferredSize sets a decent default size for the widget.
func (s *SpreadCanvas) PreferredSize() fyne.Size { return fyne.NewSize(800, 600) }

// SetSpread replaces both visible faces.
func (s *SpreadCanvas) SetSpread(left, right faceView) {
	s.left = left
	s.right = right
}

// SetTabs replaces the bookmark tabs shown on the spread.
func (s *SpreadCanvas) SetTabs(tabs []tabView) {
	s.tabs = tabs
}

// Tapped dispatches clicks landing on a bookmark tab.
func (s *SpreadCanvas) Tapped(ev *fyne.PointEvent) {
	for _, th := range s.tabRects {
		if ev.Position.X >= th.pos.X && ev.Position.X <= th.pos.X+th.size.Width &&
			ev.Position.Y >= th.pos.Y && ev.Position.Y <= th.pos.Y+th.size.Height {
			if s.OnTabTapped != nil {
				s.OnTabTapped(th.target)
			}
			return
		}
	}
}

// CreateRenderer builds the canvas primitives we position manually.
func (s *SpreadCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})

	paper := color.RGBA{R: 252, G: 250, B: 245, A: 255}
	leftPage := canvas.NewRectangle(paper)
	leftPage.StrokeColor = color.RGBA{R: 60, G: 55, B: 45, A: 255}
	leftPage.StrokeWidth = 1
	rightPage := canvas.NewRectangle(paper)
	rightPage.StrokeColor = leftPage.StrokeColor
	rightPage.StrokeWidth = 1

	spine := canvas.NewRectangle(color.RGBA{R: 120, G: 110, B: 95, A: 255})

	mk := func(size float32, bold bool) *canvas.Text {
		t := canvas.NewText("", color.RGBA{R: 40, G: 36, B: 30, A: 255})
		t.TextSize = size
		t.TextStyle = fyne.TextStyle{Bold: bold}
		return t
	}
	leftTitle := mk(16, true)
	rightTitle := mk(16, true)
	leftLabel := mk(10, false)
	leftLabel.Color = color.RGBA{R: 140, G: 135, B: 125, A: 255}
	rightLabel := mk(10, false)
	rightLabel.Color = leftLabel.Color

	r := &spreadRenderer{
		sc:         s,
		bg:         bg,
		leftPage:   leftPage,
		rightPage:  rightPage,
		spine:      spine,
		leftTitle:  leftTitle,
		rightTitle: rightTitle,
		leftLabel:  leftLabel,
		rightLabel: rightLabel,
	}
	return r
}

const spreadBodyLines = 24

type spreadRenderer struct {
	sc *SpreadCanvas

	bg                    *canvas.Rectangle
	leftPage, rightPage   *canvas.Rectangle
	spine                 *canvas.Rectangle
	leftTitle, rightTitle *canvas.Text
	leftLabel, rightLabel *canvas.Text
	leftBody, rightBody   []*canvas.Text
	tabRects              []*canvas.Rectangle

	size fyne.Size
}

func (r *spreadRenderer) MinSize() fyne.Size { return fyne.NewSize(640, 480) }

func (r *spreadRenderer) Layout(size fyne.Size) {
	r.size = size
	r.bg.Move(fyne.NewPos(0, 0))
	r.bg.Resize(size)

	z := r.sc.zoom
	pw := r.sc.leafW * z
	ph := r.sc.leafH * z
	// Scale spread down to fit if the window is small.
	if 2*pw+40 > size.Width {
		f := (size.Width - 40) / (2 * pw)
		if f > 0 {
			pw *= f
			ph *= f
		}
	}
	if ph+40 > size.Height {
		f := (size.Height - 40) / ph
		if f > 0 {
			pw *= f
			ph *= f
		}
	}
	x0 := (size.Width - 2*pw) / 2
	y0 := (size.Height - ph) / 2

	r.leftPage.Move(fyne.NewPos(x0, y0))
	r.leftPage.Resize(fyne.NewSize(pw, ph))
	r.rightPage.Move(fyne.NewPos(x0+pw, y0))
	r.rightPage.Resize(fyne.NewSize(pw, ph))
	r.spine.Move(fyne.NewPos(x0+pw-1, y0))
	r.spine.Resize(fyne.NewSize(2, ph))

	margin := float32(14)
	r.layoutFace(r.sc.left, r.leftTitle, r.leftLabel, &r.leftBody, x0, y0, pw, ph, margin)
	r.layoutFace(r.sc.right, r.rightTitle, r.rightLabel, &r.rightBody, x0+pw, y0, pw, ph, margin)

	// Bookmark tabs at the outer edges of the spread.
	for len(r.tabRects) < len(r.sc.tabs) {
		r.tabRects = append(r.tabRects, canvas.NewRectangle(color.Transparent))
	}
	r.sc.tabRects = r.sc.tabRects[:0]
	tabW, tabH := float32(18), float32(30)
	for i, rect := range r.tabRects {
		if i >= len(r.sc.tabs) {
			rect.Hide()
			continue
		}
		tv := r.sc.tabs[i]
		rect.FillColor = tv.col
		ty := y0 + 20 + tv.offsetY*z
		if ty+tabH > y0+ph {
			ty = y0 + ph - tabH
		}
		tx := x0 - tabW
		if tv.right {
			tx = x0 + 2*pw
		}
		rect.Move(fyne.NewPos(tx, ty))
		rect.Resize(fyne.NewSize(tabW, tabH))
		rect.Show()
		rect.Refresh()
		r.sc.tabRects = append(r.sc.tabRects, tabHit{
			pos:    fyne.NewPos(tx, ty),
			size:   fyne.NewSize(tabW, tabH),
			target: tv.target,
		})
	}
}

func (r *spreadRenderer) layoutFace(fv faceView, title, label *canvas.Text, body *[]*canvas.Text, x, y, w, h, margin float32) {
	if fv.empty {
		title.Text = ""
		label.Text = ""
		title.Refresh()
		label.Refresh()
		for _, t := range *body {
			t.Hide()
		}
		return
	}
	title.Text = fv.title
	title.Move(fyne.NewPos(x+margin, y+margin))
	title.Refresh()

	label.Text = fv.label
	label.Move(fyne.NewPos(x+margin, y+h-margin-12))
	label.Refresh()

	text := fv.body
	if text == "" && fv.placeholder {
		text = "…"
	}
	cols := int((w - 2*margin) / 7)
	if cols < 8 {
		cols = 8
	}
	lines := textflow.WrapColumns(text, cols)
	if len(lines) > spreadBodyLines {
		lines = lines[:spreadBodyLines]
	}
	for len(*body) < len(lines) {
		t := canvas.NewText("", color.RGBA{R: 40, G: 36, B: 30, A: 255})
		t.TextSize = 11
		*body = append(*body, t)
	}
	lineY := y + margin + 28
	for i, t := range *body {
		if i >= len(lines) {
			t.Hide()
			continue
		}
		t.Text = lines[i]
		t.Move(fyne.NewPos(x+margin, lineY))
		lineY += 15
		t.Show()
		t.Refresh()
	}
}

func (r *spreadRenderer) Refresh() {
	r.Layout(r.size)
	canvas.Refresh(r.sc)
}

func (r *spreadRenderer) Objects() []fyne.CanvasObject {
	objs := []fyne.CanvasObject{r.bg, r.leftPage, r.rightPage, r.spine,
		r.leftTitle, r.rightTitle, r.leftLabel, r.rightLabel}
	for _, t := range r.leftBody {
		objs = append(objs, t)
	}
	for _, t := range r.rightBody {
		objs = append(objs, t)
	}
	for _, rect := range r.tabRects {
		objs = append(objs, rect)
	}
	return objs
}

func (r *spreadRenderer) Destroy() {}
