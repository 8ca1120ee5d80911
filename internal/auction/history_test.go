package auction

import (
	"testing"

	"github.com/Vishal-code-E/ipl/internal/models"
)

func numberedSnapshot(n int) *models.AuctionState {
	return &models.AuctionState{CurrentPlayerIndex: n}
}

func TestHistoryPushPop(t *testing.T) {
	h := NewHistory(3)

	if h.Pop() != nil {
		t.Error("Pop() on empty history != nil")
	}

	h.Push(numberedSnapshot(1))
	h.Push(numberedSnapshot(2))
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}

	if got := h.Pop(); got.CurrentPlayerIndex != 2 {
		t.Errorf("Pop() = snapshot %d, want 2", got.CurrentPlayerIndex)
	}
	if got := h.Pop(); got.CurrentPlayerIndex != 1 {
		t.Errorf("Pop() = snapshot %d, want 1", got.CurrentPlayerIndex)
	}
	if h.Pop() != nil {
		t.Error("Pop() after drain != nil")
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Push(numberedSnapshot(i))
	}
	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want capacity 3", h.Len())
	}
	// Snapshots 1 and 2 were evicted; 5, 4, 3 remain newest-first.
	for _, want := range []int{5, 4, 3} {
		got := h.Pop()
		if got == nil || got.CurrentPlayerIndex != want {
			t.Fatalf("Pop() = %v, want snapshot %d", got, want)
		}
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(3)
	h.Push(numberedSnapshot(1))
	h.Clear()
	if h.Len() != 0 || h.Pop() != nil {
		t.Error("Clear() left snapshots behind")
	}
}

func TestHistoryDefaultCapacity(t *testing.T) {
	h := NewHistory(0)
	for i := 1; i <= UndoDepth+5; i++ {
		h.Push(numberedSnapshot(i))
	}
	if h.Len() != UndoDepth {
		t.Errorf("Len() = %d, want %d", h.Len(), UndoDepth)
	}
}
