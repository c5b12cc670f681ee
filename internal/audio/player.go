/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package audio

// Player is the playback port. Implementations must be safe for concurrent
// use. Callers treat playback as fire-and-forget: errors are logged by the
// caller and never propagated further.
type Player interface {
	Play(c Cue) error
	Close()
}

// Nop is a Player that discards every cue. Used in headless and test builds.
type Nop struct{}

func (Nop) Play(Cue) error { return nil }
func (Nop) Close()         {}
