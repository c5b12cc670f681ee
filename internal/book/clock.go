/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package book implements the page-flip sequencing engine: per-leaf flip
// state, draw-order recomputation, animated multi-step navigation between
// arbitrary page indices, and the guard that keeps overlapping requests from
// corrupting an in-flight sequence.
package book

import "time"

// Clock abstracts time so every cascade and settle delay is testable
// without sleeping. The real implementation delegates to the time package.
type Clock interface {
	Now() time.Time
	// AfterFunc schedules f to run after d on an unspecified goroutine.
	AfterFunc(d time.Duration, f func())
	// After returns a channel that delivers the time after d.
	After(d time.Duration) <-chan time.Time
}

// SystemClock returns the wall clock.
func SystemClock() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) AfterFunc(d time.Duration, f func())    { time.AfterFunc(d, f) }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
