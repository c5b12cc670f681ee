/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package book

import "sync"

// History is a bounded trail of cursor positions supporting a "back to where
// I was" jump. Consecutive duplicates coalesce; when the cap is exceeded the
// oldest entries are pruned.
type History struct {
	mu    sync.Mutex
	max   int
	stack []int
}

// NewHistory creates a history keeping at most max entries (default 50 when
// max <= 0).
func NewHistory(max int) *History {
	if max <= 0 {
		max = 50
	}
	return &History{max: max}
}

// Push records a cursor position.
func (h *History) Push(cursor int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := len(h.stack); n > 0 && h.stack[n-1] == cursor {
		return
	}
	h.stack = append(h.stack, cursor)
	if len(h.stack) > h.max {
		h.stack = h.stack[len(h.stack)-h.max:]
	}
}

// Pop removes and returns the most recent position.
func (h *History) Pop() (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.stack)
	if n == 0 {
		return 0, false
	}
	v := h.stack[n-1]
	h.stack = h.stack[:n-1]
	return v, true
}

// Len reports the number of recorded positions.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stack)
}
