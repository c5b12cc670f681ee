//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne-based UI components. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
//
// Ensure you have the Fyne dependencies installed and a working OS driver.
package ui

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
)

func TestSpreadCanvas_Defaults(t *testing.T) {
	sc := NewSpreadCanvas()
	if sc.zoom != 0.5 {
		t.Fatalf("expected default zoom 0.5, got %v", sc.zoom)
	}
	if sc.leafW != 396 || sc.leafH != 612 {
		t.Fatalf("unexpected default leaf size: %v x %v", sc.leafW, sc.leafH)
	}
	sz := sc.PreferredSize()
	if sz.Width != 800 || sz.Height != 600 {
		t.Fatalf("unexpected PreferredSize: %v", sz)
	}
}

func TestSpreadCanvas_LayoutCentersSpread(t *testing.T) {
	sc := NewSpreadCanvas()
	sc.SetSpread(
		faceView{label: "Leaf 0 back", title: "Left", body: "left body"},
		faceView{label: "Leaf 1 front", title: "Right", body: "right body"},
	)
	r, ok := sc.CreateRenderer().(*spreadRenderer)
	if !ok {
		t.Fatalf("expected spreadRenderer, got %T", sc.CreateRenderer())
	}

	containerSize := fyne.NewSize(1000, 800)
	r.Layout(containerSize)

	// Expected page sizes with default zoom 0.5
	pw := float32(396) * 0.5
	ph := float32(612) * 0.5
	lp := r.leftPage
	rp := r.rightPage
	if lp.Size().Width != pw || lp.Size().Height != ph {
		t.Fatalf("unexpected left page size: %v", lp.Size())
	}
	if rp.Position().X != lp.Position().X+pw {
		t.Fatalf("right page should abut left page: left=%v right=%v", lp.Position(), rp.Position())
	}
	wantX := (containerSize.Width - 2*pw) / 2
	if lp.Position().X != wantX {
		t.Fatalf("spread not centered: got x=%v want %v", lp.Position().X, wantX)
	}
}

func TestSpreadCanvas_TabHitDispatch(t *testing.T) {
	sc := NewSpreadCanvas()
	sc.SetSpread(
		faceView{label: "Leaf 0 back"},
		faceView{label: "Leaf 1 front"},
	)
	sc.SetTabs([]tabView{{
		label:  "Chapter 2",
		target: 4,
		col:    color.RGBA{R: 180, G: 40, B: 40, A: 255},
		right:  true,
	}})
	r := sc.CreateRenderer().(*spreadRenderer)
	r.Layout(fyne.NewSize(1000, 800))

	if len(sc.tabRects) != 1 {
		t.Fatalf("expected 1 tab hit rect, got %d", len(sc.tabRects))
	}
	got := -1
	sc.OnTabTapped = func(target int) { got = target }

	th := sc.tabRects[0]
	inside := fyne.NewPos(th.pos.X+th.size.Width/2, th.pos.Y+th.size.Height/2)
	sc.Tapped(&fyne.PointEvent{Position: inside})
	if got != 4 {
		t.Fatalf("expected tab tap to dispatch target 4, got %d", got)
	}

	got = -1
	outside := fyne.NewPos(th.pos.X-50, th.pos.Y-50)
	sc.Tapped(&fyne.PointEvent{Position: outside})
	if got != -1 {
		t.Fatalf("tap outside tab should not dispatch, got %d", got)
	}
}
