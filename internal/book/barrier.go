/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package book

import (
	"sync"
	"time"
)

// Barrier is a countdown latch: each mounting page unit arrives once, and a
// waiter blocks until every unit has arrived or the timeout passes. It
// replaces polling for child mounts with an explicit synchronization point.
type Barrier struct {
	mu        sync.Mutex
	remaining int
	done      chan struct{}
}

// NewBarrier creates a barrier waiting for n arrivals. With n <= 0 the
// barrier starts released.
func NewBarrier(n int) *Barrier {
	b := &Barrier{remaining: n, done: make(chan struct{})}
	if n <= 0 {
		close(b.done)
	}
	return b
}

// Arrive records one registration. Arrivals beyond the expected count are
// ignored.
func (b *Barrier) Arrive() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.remaining <= 0 {
		return
	}
	b.remaining--
	if b.remaining == 0 {
		close(b.done)
	}
}

// Wait blocks until all arrivals happened or timeout passes on the given
// clock. It returns true when the barrier was fully released in time.
func (b *Barrier) Wait(clock Clock, timeout time.Duration) bool {
	select {
	case <-b.done:
		return true
	case <-clock.After(timeout):
		return false
	}
}

// Remaining reports how many arrivals are still outstanding.
func (b *Barrier) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}
