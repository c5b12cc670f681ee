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
	"encoding/json"
	"errors"
	"sync"
	"time"

	"flipbook/internal/domain"
)

// AutosaveConfig controls memory caps and coalescing behavior for the
// in-memory autosave buffer.
type AutosaveConfig struct {
	// MaxBytes is a soft cap on buffered snapshot bytes; oldest entries are
	// pruned when exceeded.
	MaxBytes int
	// MaxPending limits the number of buffered snapshots (0 means unlimited).
	MaxPending int
	// MinInterval coalesces captures within the interval, replacing the
	// previous buffered snapshot instead of pushing a new one.
	MinInterval time.Duration
	// KeepLast bounds the snapshot rows retained in the index after a flush.
	KeepLast int
}

// Autosaver buffers manifest snapshots in memory and flushes them to the
// index's snapshots table. Captures are cheap and can happen on every content
// swap; the flush is the only write that touches the database.
// It is safe for concurrent use.
type Autosaver struct {
	cfg AutosaveConfig

	mu         sync.Mutex
	pending    []Snapshot
	totalBytes int
}

func NewAutosaver(cfg AutosaveConfig) *Autosaver {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 8 * 1024 * 1024 // 8 MiB
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	if cfg.KeepLast <= 0 {
		cfg.KeepLast = 20
	}
	return &Autosaver{cfg: cfg}
}

// Capture buffers the manifest's current state. A capture arriving within
// MinInterval of the previous one replaces it instead of growing the buffer.
func (a *Autosaver) Capture(b domain.Book) error {
	blob, err := json.Marshal(b)
	if err != nil {
		return err
	}
	now := time.Now()

	a.mu.Lock()
	defer a.mu.Unlock()
	if n := len(a.pending); n > 0 {
		last := a.pending[n-1]
		if now.Sub(last.TS) < a.cfg.MinInterval {
			a.totalBytes -= len(last.Blob)
			a.totalBytes += len(blob)
			a.pending[n-1] = Snapshot{TS: now, Blob: blob}
			a.enforceCapsLocked()
			return nil
		}
	}
	a.pending = append(a.pending, Snapshot{TS: now, Blob: blob})
	a.totalBytes += len(blob)
	a.enforceCapsLocked()
	return nil
}

// Flush writes the buffered snapshots to the index, prunes old rows down to
// KeepLast, and empties the buffer. Returns the number of snapshots written.
func (a *Autosaver) Flush(ctx context.Context, bh *BookHandle) (int, error) {
	if bh == nil {
		return 0, errors.New("nil BookHandle")
	}

	a.mu.Lock()
	batch := a.pending
	a.pending = nil
	a.totalBytes = 0
	a.mu.Unlock()

	if len(batch) == 0 {
		return 0, nil
	}

	db, err := InitOrOpenIndex(bh.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()

	written := 0
	for _, s := range batch {
		if _, err := db.ExecContext(ctx, insertSnapshotSQL, s.TS.UTC().Format(time.RFC3339Nano), s.Blob); err != nil {
			return written, err
		}
		written++
	}
	if _, err := db.ExecContext(ctx, pruneOldSnapshotsSQL, a.cfg.KeepLast); err != nil {
		return written, err
	}
	return written, nil
}

// Stats returns current buffer sizes for diagnostics.
func (a *Autosaver) Stats() (totalBytes int, pendingCount int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalBytes, len(a.pending)
}

func (a *Autosaver) enforceCapsLocked() {
	if a.cfg.MaxPending > 0 && len(a.pending) > a.cfg.MaxPending {
		toDrop := len(a.pending) - a.cfg.MaxPending
		for i := 0; i < toDrop; i++ {
			a.totalBytes -= len(a.pending[i].Blob)
		}
		a.pending = append([]Snapshot{}, a.pending[toDrop:]...)
	}
	for a.cfg.MaxBytes > 0 && a.totalBytes > a.cfg.MaxBytes && len(a.pending) > 1 {
		a.totalBytes -= len(a.pending[0].Blob)
		a.pending = a.pending[1:]
	}
}
