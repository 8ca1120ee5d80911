package auction

import "github.com/Vishal-code-E/ipl/internal/models"

// UndoDepth is how many prior snapshots a view keeps for undo.
const UndoDepth = 10

// History is a bounded stack of session snapshots backing undo. When
// full, pushing evicts the oldest entry. It is strictly local to one
// view and never synchronized across views.
type History struct {
	snapshots []*models.AuctionState
	capacity  int
}

// NewHistory creates a history bounded to capacity snapshots.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = UndoDepth
	}
	return &History{capacity: capacity}
}

// Push records a snapshot, evicting the oldest when at capacity.
func (h *History) Push(s *models.AuctionState) {
	if len(h.snapshots) >= h.capacity {
		n := copy(h.snapshots, h.snapshots[len(h.snapshots)-h.capacity+1:])
		h.snapshots = h.snapshots[:n]
	}
	h.snapshots = append(h.snapshots, s)
}

// Pop removes and returns the most recent snapshot, or nil when empty.
func (h *History) Pop() *models.AuctionState {
	if len(h.snapshots) == 0 {
		return nil
	}
	s := h.snapshots[len(h.snapshots)-1]
	h.snapshots = h.snapshots[:len(h.snapshots)-1]
	return s
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Clear drops all stored snapshots.
func (h *History) Clear() {
	h.snapshots = h.snapshots[:0]
}
