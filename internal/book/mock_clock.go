/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package book

import (
	"sort"
	"sync"
	"time"
)

// MockClock is a manually-advanced Clock for tests. Scheduled callbacks fire
// synchronously inside Advance, ordered by due time, then by scheduling
// order for ties, so a test observes exactly the interleaving the real
// timers would produce.
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	nextSeq int
	timers  []*mockTimer
}

type mockTimer struct {
	due time.Time
	seq int
	f   func()
	ch  chan time.Time
}

// NewMockClock creates a mock clock starting at the given time.
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *MockClock) AfterFunc(d time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers = append(m.timers, &mockTimer{due: m.now.Add(d), seq: m.nextSeq, f: f})
	m.nextSeq++
}

func (m *MockClock) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan time.Time, 1)
	m.timers = append(m.timers, &mockTimer{due: m.now.Add(d), seq: m.nextSeq, ch: ch})
	m.nextSeq++
	return ch
}

// Advance moves the clock forward by d, firing every timer that comes due in
// time order. Callbacks may schedule further timers; those fire too if they
// fall within the advanced window.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		if t.f != nil {
			t.f()
		}
		if t.ch != nil {
			t.ch <- t.due
		}
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// popDue removes and returns the earliest timer due at or before target,
// also advancing now to that timer's due time.
func (m *MockClock) popDue(target time.Time) *mockTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due.Before(m.timers[j].due)
	})
	if len(m.timers) == 0 || m.timers[0].due.After(target) {
		return nil
	}
	t := m.timers[0]
	m.timers = m.timers[1:]
	if t.due.After(m.now) {
		m.now = t.due
	}
	return t
}

// Pending reports the number of timers not yet fired.
func (m *MockClock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
