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
	"context"
	"testing"
	"time"
)

func TestAutosaverCoalescesRapidCaptures(t *testing.T) {
	a := NewAutosaver(AutosaveConfig{MinInterval: time.Hour})
	b := sampleBook()
	if err := a.Capture(b); err != nil {
		t.Fatalf("capture: %v", err)
	}
	b.Metadata.Notes = "edit one"
	if err := a.Capture(b); err != nil {
		t.Fatalf("capture: %v", err)
	}
	b.Metadata.Notes = "edit two"
	if err := a.Capture(b); err != nil {
		t.Fatalf("capture: %v", err)
	}
	_, n := a.Stats()
	if n != 1 {
		t.Fatalf("rapid captures should coalesce to 1 pending, got %d", n)
	}
}

func TestAutosaverSeparatedCapturesAccumulate(t *testing.T) {
	a := NewAutosaver(AutosaveConfig{MinInterval: time.Nanosecond})
	b := sampleBook()
	for i := 0; i < 3; i++ {
		b.Metadata.Notes = time.Now().String()
		if err := a.Capture(b); err != nil {
			t.Fatalf("capture: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	_, n := a.Stats()
	if n != 3 {
		t.Fatalf("expected 3 pending snapshots, got %d", n)
	}
}

func TestAutosaverEnforcesPendingCap(t *testing.T) {
	a := NewAutosaver(AutosaveConfig{MinInterval: time.Nanosecond, MaxPending: 2})
	b := sampleBook()
	for i := 0; i < 5; i++ {
		if err := a.Capture(b); err != nil {
			t.Fatalf("capture: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	bytes, n := a.Stats()
	if n != 2 {
		t.Fatalf("expected pending capped at 2, got %d", n)
	}
	if bytes <= 0 {
		t.Fatalf("byte accounting went non-positive: %d", bytes)
	}
}

func TestAutosaverFlushWritesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	bh, err := InitBook(dir, sampleBook())
	if err != nil {
		t.Fatalf("init book: %v", err)
	}
	a := NewAutosaver(AutosaveConfig{MinInterval: time.Nanosecond, KeepLast: 2})
	b := bh.Book
	for i := 0; i < 4; i++ {
		b.Metadata.Notes = time.Now().String()
		if err := a.Capture(b); err != nil {
			t.Fatalf("capture: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	ctx := context.Background()
	written, err := a.Flush(ctx, bh)
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if written != 4 {
		t.Fatalf("expected 4 snapshots written, got %d", written)
	}
	if _, n := a.Stats(); n != 0 {
		t.Fatalf("buffer should be empty after flush, got %d pending", n)
	}
	snaps, err := ListSnapshots(ctx, bh, 10)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(snaps) != 2 {
		t.Fatalf("expected KeepLast=2 rows after flush, got %d", len(snaps))
	}
}

func TestAutosaverFlushEmptyIsNoop(t *testing.T) {
	dir := t.TempDir()
	bh, err := InitBook(dir, sampleBook())
	if err != nil {
		t.Fatalf("init book: %v", err)
	}
	a := NewAutosaver(AutosaveConfig{})
	written, err := a.Flush(context.Background(), bh)
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if written != 0 {
		t.Fatalf("expected 0 written, got %d", written)
	}
}
