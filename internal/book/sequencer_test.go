package book

import (
	"sync"
	"testing"
	"time"

	"flipbook/internal/audio"
)

const (
	testCascade = 100 * time.Millisecond
	testSettle  = 250 * time.Millisecond
)

// flipEvent records one completed flip in arrival order.
type flipEvent struct {
	index   int
	flipped bool
}

type testRig struct {
	clock  *MockClock
	seq    *Sequencer
	pages  []*Page
	player *recordPlayer

	mu       sync.Mutex
	events   []flipEvent
	statuses []Status
}

func newTestRig(t *testing.T, n int) *testRig {
	t.Helper()
	r := &testRig{
		clock:  NewMockClock(time.Unix(1_700_000_000, 0)),
		player: &recordPlayer{},
	}
	r.seq = NewSequencer(n, Options{
		Clock:        r.clock,
		CascadeDelay: testCascade,
		SettleDelay:  testSettle,
		OnChange: func(st Status) {
			r.mu.Lock()
			r.statuses = append(r.statuses, st)
			r.mu.Unlock()
		},
	})
	r.pages = make([]*Page, n)
	for i := 0; i < n; i++ {
		i := i
		r.pages[i] = NewPage(i, audio.LeafPage, r.player, func(idx int, flipped bool) {
			r.mu.Lock()
			r.events = append(r.events, flipEvent{idx, flipped})
			r.mu.Unlock()
			r.seq.CompletionHandler()(idx, flipped)
		})
		r.seq.Register(i, r.pages[i])
	}
	return r
}

// settleDuration covers any sequence the rig can schedule.
func (r *testRig) settleAll() { r.clock.Advance(time.Minute) }

func (r *testRig) recordedEvents() []flipEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]flipEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *testRig) clearEvents() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type recordPlayer struct {
	mu   sync.Mutex
	cues []audio.Cue
	err  error
}

func (p *recordPlayer) Play(c audio.Cue) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cues = append(p.cues, c)
	return p.err
}

func (p *recordPlayer) Close() {}

func (p *recordPlayer) recorded() []audio.Cue {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]audio.Cue, len(p.cues))
	copy(out, p.cues)
	return out
}

func TestForwardNavigationFlipsAscendingInOrder(t *testing.T) {
	r := newTestRig(t, 12)

	if !r.seq.Navigate(3) {
		t.Fatalf("Navigate(3) rejected from idle")
	}
	if st := r.seq.Status(); !st.Navigating {
		t.Fatalf("sequencer should be navigating")
	}

	// Flips cascade one per delay increment, strictly ascending.
	r.clock.Advance(0)
	if got := r.recordedEvents(); len(got) != 1 || got[0] != (flipEvent{0, true}) {
		t.Fatalf("after step 0: events = %v", got)
	}
	r.clock.Advance(testCascade)
	if got := r.recordedEvents(); len(got) != 2 || got[1] != (flipEvent{1, true}) {
		t.Fatalf("after step 1: events = %v", got)
	}
	r.clock.Advance(testCascade)
	if got := r.recordedEvents(); len(got) != 3 || got[2] != (flipEvent{2, true}) {
		t.Fatalf("after step 2: events = %v", got)
	}

	// Still navigating until the settle delay passes.
	if st := r.seq.Status(); !st.Navigating {
		t.Fatalf("should still be navigating before settle")
	}
	r.clock.Advance(testSettle)
	st := r.seq.Status()
	if st.Navigating {
		t.Fatalf("should be idle after settle")
	}
	if st.CurrentPage != 3 {
		t.Fatalf("cursor = %d, want 3", st.CurrentPage)
	}
	if st.OnFirstPage {
		t.Fatalf("onFirstPage should be false after page 0 flipped")
	}
	if st.OnLastPage {
		t.Fatalf("onLastPage should be false at cursor 3 of 12")
	}
}

func TestBackwardNavigationFlipsDescendingInOrder(t *testing.T) {
	r := newTestRig(t, 12)
	r.seq.Navigate(9)
	r.settleAll()
	if got := r.seq.CurrentPage(); got != 9 {
		t.Fatalf("setup cursor = %d, want 9", got)
	}
	r.clearEvents()

	if !r.seq.Navigate(6) {
		t.Fatalf("Navigate(6) rejected from idle")
	}
	r.settleAll()

	want := []flipEvent{{8, false}, {7, false}, {6, false}}
	got := r.recordedEvents()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
	if c := r.seq.CurrentPage(); c != 6 {
		t.Fatalf("cursor = %d, want 6", c)
	}
}

func TestNavigateToCurrentCursorIsNoop(t *testing.T) {
	r := newTestRig(t, 5)

	if r.seq.Navigate(0) {
		t.Fatalf("Navigate(cursor) should be rejected")
	}
	if n := r.clock.Pending(); n != 0 {
		t.Fatalf("no flips should be scheduled, have %d timers", n)
	}
	if got := r.recordedEvents(); len(got) != 0 {
		t.Fatalf("no flips expected, got %v", got)
	}
}

func TestRequestWhileNavigatingIsDropped(t *testing.T) {
	r := newTestRig(t, 12)

	if !r.seq.Navigate(5) {
		t.Fatalf("first request rejected")
	}
	// Second request arrives before the first settles: dropped entirely,
	// first-in-flight wins.
	if r.seq.Navigate(2) {
		t.Fatalf("overlapping request should be dropped")
	}
	r.settleAll()

	if c := r.seq.CurrentPage(); c != 5 {
		t.Fatalf("cursor = %d, want 5 (dropped request must not win)", c)
	}
	for i, ev := range r.recordedEvents() {
		if !ev.flipped {
			t.Fatalf("event %d unexpectedly backward: %v", i, ev)
		}
	}
}

func TestCursorAlwaysDerivedFromFlipCount(t *testing.T) {
	r := newTestRig(t, 10)

	for _, target := range []int{4, 1, 9, 0, 7, 7, 3} {
		r.seq.Navigate(target)
		r.settleAll()
		flipped := r.seq.Flipped()
		if got, want := r.seq.CurrentPage(), countTrue(flipped); got != want {
			t.Fatalf("after Navigate(%d): cursor %d != flipped count %d", target, got, want)
		}
	}
}

func TestDrawOrderMonotonicOnEveryFlip(t *testing.T) {
	r := newTestRig(t, 6)

	check := func(idx int) {
		order := r.seq.DrawOrder()
		for i, v := range order {
			if i != idx && v >= order[idx] {
				t.Fatalf("flipped page %d does not hold strict max draw order: %v", idx, order)
			}
		}
	}

	r.seq.Navigate(4)
	for step := 0; step < 4; step++ {
		if step == 0 {
			r.clock.Advance(0)
		} else {
			r.clock.Advance(testCascade)
		}
		check(step)
	}
	r.settleAll()

	r.seq.Navigate(2)
	r.clock.Advance(0)
	check(3)
	r.clock.Advance(testCascade)
	check(2)
}

func TestBoundaryFlagsTrackEdges(t *testing.T) {
	r := newTestRig(t, 3)

	st := r.seq.Status()
	if !st.OnFirstPage || st.OnLastPage {
		t.Fatalf("initial flags wrong: %+v", st)
	}

	r.seq.Navigate(3)
	r.settleAll()
	st = r.seq.Status()
	if st.OnFirstPage || !st.OnLastPage {
		t.Fatalf("flags after flipping all: %+v", st)
	}

	r.seq.Navigate(0)
	r.settleAll()
	st = r.seq.Status()
	if !st.OnFirstPage || st.OnLastPage {
		t.Fatalf("flags after unflipping all: %+v", st)
	}
}

func TestMissingPageTruncatesSequenceSilently(t *testing.T) {
	r := &testRig{clock: NewMockClock(time.Unix(1_700_000_000, 0)), player: &recordPlayer{}}
	r.seq = NewSequencer(5, Options{
		Clock:        r.clock,
		CascadeDelay: testCascade,
		SettleDelay:  testSettle,
	})
	// Only leaves 0 and 1 ever mount.
	for i := 0; i < 2; i++ {
		i := i
		p := NewPage(i, audio.LeafPage, r.player, r.seq.CompletionHandler())
		r.seq.Register(i, p)
	}

	if !r.seq.Navigate(4) {
		t.Fatalf("Navigate(4) rejected")
	}
	r.clock.Advance(time.Minute)

	// Cursor stops short of target and the machine still settles to idle.
	st := r.seq.Status()
	if st.CurrentPage != 2 {
		t.Fatalf("cursor = %d, want 2 (truncated at unmounted leaf)", st.CurrentPage)
	}
	if st.Navigating {
		t.Fatalf("sequencer must return to idle after truncation")
	}
	// A new request is accepted afterward.
	if !r.seq.Navigate(0) {
		t.Fatalf("sequencer did not recover after truncation")
	}
	r.clock.Advance(time.Minute)
	if c := r.seq.CurrentPage(); c != 0 {
		t.Fatalf("cursor = %d, want 0", c)
	}
}

func TestManualFlipResolvesThroughNavigationPath(t *testing.T) {
	r := newTestRig(t, 4)

	// Unflipped leaf advances to index+1.
	if !r.seq.FlipPage(0) {
		t.Fatalf("FlipPage(0) rejected")
	}
	r.settleAll()
	if c := r.seq.CurrentPage(); c != 1 {
		t.Fatalf("cursor = %d, want 1", c)
	}

	// Flipped leaf retreats to index.
	if !r.seq.FlipPage(0) {
		t.Fatalf("FlipPage(0) retreat rejected")
	}
	r.settleAll()
	if c := r.seq.CurrentPage(); c != 0 {
		t.Fatalf("cursor = %d, want 0", c)
	}

	// Manual flips are guarded by the same in-flight check.
	r.seq.Navigate(3)
	if r.seq.FlipPage(1) {
		t.Fatalf("manual flip during navigation should be dropped")
	}
	r.settleAll()
}

func TestNavigationTargetsAreClamped(t *testing.T) {
	r := newTestRig(t, 4)

	if !r.seq.Navigate(99) {
		t.Fatalf("overshooting target should clamp, not reject")
	}
	r.settleAll()
	if c := r.seq.CurrentPage(); c != 4 {
		t.Fatalf("cursor = %d, want 4", c)
	}

	if !r.seq.Navigate(-3) {
		t.Fatalf("negative target should clamp, not reject")
	}
	r.settleAll()
	if c := r.seq.CurrentPage(); c != 0 {
		t.Fatalf("cursor = %d, want 0", c)
	}
}

func TestStatusChangeNotificationsSettle(t *testing.T) {
	r := newTestRig(t, 3)
	r.seq.Navigate(2)
	r.settleAll()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 {
		t.Fatalf("no status notifications recorded")
	}
	last := r.statuses[len(r.statuses)-1]
	if last.Navigating || last.CurrentPage != 2 {
		t.Fatalf("final status = %+v", last)
	}
	first := r.statuses[0]
	if !first.Navigating {
		t.Fatalf("first status should mark navigation start: %+v", first)
	}
}

func TestRegistrationRejectsDuplicatesAndOutOfRange(t *testing.T) {
	r := newTestRig(t, 2)

	// Duplicate and out-of-range registrations are ignored.
	r.seq.Register(0, r.pages[0])
	r.seq.Register(-1, r.pages[0])
	r.seq.Register(5, r.pages[0])

	r.seq.Navigate(2)
	r.settleAll()
	if c := r.seq.CurrentPage(); c != 2 {
		t.Fatalf("cursor = %d, want 2", c)
	}
}
