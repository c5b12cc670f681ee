package book

import "testing"

func TestHistoryPushPopOrder(t *testing.T) {
	h := NewHistory(10)
	h.Push(0)
	h.Push(3)
	h.Push(7)

	for _, want := range []int{7, 3, 0} {
		got, ok := h.Pop()
		if !ok || got != want {
			t.Fatalf("Pop = %d,%v, want %d,true", got, ok, want)
		}
	}
	if _, ok := h.Pop(); ok {
		t.Fatalf("Pop on empty history should fail")
	}
}

func TestHistoryCoalescesConsecutiveDuplicates(t *testing.T) {
	h := NewHistory(10)
	h.Push(2)
	h.Push(2)
	h.Push(2)
	if h.Len() != 1 {
		t.Fatalf("len = %d, want 1", h.Len())
	}
}

func TestHistoryPrunesOldestBeyondCap(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 6; i++ {
		h.Push(i)
	}
	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}
	if got, _ := h.Pop(); got != 5 {
		t.Fatalf("most recent = %d, want 5", got)
	}
}
