/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(48000)

// Synth is a Player that synthesizes every cue on the fly, so no audio
// assets ship with the application. Page turns are filtered-noise swishes;
// cover open/close are low thumps with opposite pitch slopes.
type Synth struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSynth initializes the speaker and starts the mixer.
func NewSynth() (*Synth, error) {
	s := &Synth{mixer: &beep.Mixer{}}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return nil, err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return s, nil
}

// swishProfiles makes the four pooled page-turn cues audibly distinct.
var swishProfiles = map[Cue]struct {
	dur    time.Duration
	cutoff float64
}{
	CueTurn1: {280 * time.Millisecond, 0.12},
	CueTurn2: {240 * time.Millisecond, 0.18},
	CueTurn3: {320 * time.Millisecond, 0.09},
	CueTurn4: {260 * time.Millisecond, 0.15},
}

// Play queues the cue on the mixer. It never blocks on playback.
func (s *Synth) Play(c Cue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return nil
	}
	switch c {
	case CueTurn1, CueTurn2, CueTurn3, CueTurn4:
		p := swishProfiles[c]
		s.mixer.Add(beep.Take(sampleRate.N(p.dur), newSwishGenerator(sampleRate, p.dur, p.cutoff)))
	case CueCoverOpen:
		s.mixer.Add(beep.Take(sampleRate.N(time.Millisecond*420), newThumpGenerator(sampleRate, true)))
	case CueCoverClose:
		s.mixer.Add(beep.Take(sampleRate.N(time.Millisecond*420), newThumpGenerator(sampleRate, false)))
	}
	return nil
}

// Close silences the mixer. beep has no speaker Close; clearing the mixer
// is enough to stop output.
func (s *Synth) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	s.mixer.Clear()
	s.initialized = false
}

// swishGenerator produces a paper-swish: white noise through a one-pole
// low-pass whose brightness follows the amplitude envelope.
type swishGenerator struct {
	sr      beep.SampleRate
	pos     int
	samples int
	cutoff  float64
	seed    int64
	lp      float64
}

func newSwishGenerator(sr beep.SampleRate, dur time.Duration, cutoff float64) *swishGenerator {
	return &swishGenerator{
		sr:      sr,
		samples: sr.N(dur),
		cutoff:  cutoff,
		seed:    time.Now().UnixNano(),
	}
}

func (g *swishGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		progress := float64(g.pos) / float64(g.samples)
		if progress > 1 {
			progress = 1
		}

		// Arc-shaped envelope: quick rise, long fall
		envelope := math.Sin(progress * math.Pi)
		envelope *= envelope

		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1

		// One-pole low-pass; cutoff tracks the envelope so the swish
		// brightens mid-turn and dulls at the edges
		alpha := g.cutoff * (0.4 + 0.6*envelope)
		g.lp += alpha * (noise - g.lp)

		sample := 0.35 * envelope * g.lp

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *swishGenerator) Err() error { return nil }

// thumpGenerator produces the cover cue: a low sine thump whose pitch rises
// when opening and falls when closing, with a touch of noise for texture.
type thumpGenerator struct {
	sr     beep.SampleRate
	pos    int
	rising bool
	seed   int64
}

func newThumpGenerator(sr beep.SampleRate, rising bool) *thumpGenerator {
	return &thumpGenerator{sr: sr, rising: rising, seed: time.Now().UnixNano()}
}

func (g *thumpGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		envelope := math.Exp(-t * 7)

		freq := 70.0
		if g.rising {
			freq += 60 * t
		} else {
			freq += 60 * math.Max(0, 0.42-t)
		}

		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1

		sample := envelope * (0.4*math.Sin(2*math.Pi*freq*t) + 0.05*noise)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *thumpGenerator) Err() error { return nil }
