package book

import (
	"testing"
	"time"
)

func TestBarrierReleasesWhenAllArrive(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	b := NewBarrier(3)

	done := make(chan bool, 1)
	go func() { done <- b.Wait(clock, time.Second) }()

	b.Arrive()
	b.Arrive()
	b.Arrive()

	select {
	case ok := <-done:
		if !ok {
			t.Fatalf("Wait returned timeout despite full arrival")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Wait did not return after all arrivals")
	}
	if r := b.Remaining(); r != 0 {
		t.Fatalf("remaining = %d, want 0", r)
	}
}

func TestBarrierTimesOutAndProceeds(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	b := NewBarrier(2)
	b.Arrive()

	done := make(chan bool, 1)
	go func() { done <- b.Wait(clock, 500*time.Millisecond) }()

	// Let the waiter park on the timer before advancing the clock.
	for i := 0; i < 100 && clock.Pending() == 0; i++ {
		time.Sleep(time.Millisecond)
	}
	clock.Advance(500 * time.Millisecond)

	select {
	case ok := <-done:
		if ok {
			t.Fatalf("Wait should report timeout")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Wait did not return on timeout")
	}
	if r := b.Remaining(); r != 1 {
		t.Fatalf("remaining = %d, want 1", r)
	}
}

func TestBarrierZeroCountStartsReleased(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	b := NewBarrier(0)
	if !b.Wait(clock, time.Millisecond) {
		t.Fatalf("empty barrier should be released immediately")
	}
	// Extra arrivals are ignored.
	b.Arrive()
}
