package models

import "time"

// AuctionPhase describes where the session is in its lifecycle.
type AuctionPhase string

const (
	PhaseNotStarted AuctionPhase = "NOT_STARTED"
	PhaseActive     AuctionPhase = "ACTIVE"
	PhasePaused     AuctionPhase = "PAUSED"
	PhaseCompleted  AuctionPhase = "COMPLETED"
)

// BidRecord is one entry in the append-only bid ledger.
type BidRecord struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	TeamID     string    `json:"team_id"`
	TeamName   string    `json:"team_name"`
	Amount     int64     `json:"amount_lakh"`
	Timestamp  time.Time `json:"timestamp"`
}

// AuctionState is the root aggregate for one auction session. Engine
// operations never mutate it in place: each produces a fresh snapshot
// via Clone, which keeps undo history and cross-view broadcast
// send-by-value correct.
type AuctionState struct {
	IsActive             bool                  `json:"is_active"`
	IsPaused             bool                  `json:"is_paused"`
	CurrentPlayerIndex   int                   `json:"current_player_index"`
	CurrentBid           int64                 `json:"current_bid_lakh"`
	CurrentBiddingTeamID string                `json:"current_bidding_team_id,omitempty"`
	PlayerQueue          []Player              `json:"player_queue"`
	SoldPlayers          []SoldPlayer          `json:"sold_players"`
	UnsoldPlayers        []Player              `json:"unsold_players"`
	TeamStates           map[string]*TeamState `json:"team_states"`
	BidHistory           []BidRecord           `json:"bid_history"`
	BidIncrement         int64                 `json:"bid_increment_lakh"`
}

// Phase derives the lifecycle phase from the activity flags and queue
// position.
func (s *AuctionState) Phase() AuctionPhase {
	switch {
	case !s.IsActive:
		return PhaseNotStarted
	case s.Completed():
		return PhaseCompleted
	case s.IsPaused:
		return PhasePaused
	default:
		return PhaseActive
	}
}

// Completed reports whether the queue has been exhausted.
func (s *AuctionState) Completed() bool {
	return s.CurrentPlayerIndex >= len(s.PlayerQueue)
}

// CurrentPlayer returns the player on the block, or nil past the end of
// the queue.
func (s *AuctionState) CurrentPlayer() *Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.PlayerQueue) {
		return nil
	}
	return &s.PlayerQueue[s.CurrentPlayerIndex]
}

// NextPlayer returns the player after the current one, or nil.
func (s *AuctionState) NextPlayer() *Player {
	i := s.CurrentPlayerIndex + 1
	if i < 0 || i >= len(s.PlayerQueue) {
		return nil
	}
	return &s.PlayerQueue[i]
}

// Clone returns a deep copy of the snapshot. Slices keep their order;
// the team-state map is copied entry by entry.
func (s *AuctionState) Clone() *AuctionState {
	out := &AuctionState{
		IsActive:             s.IsActive,
		IsPaused:             s.IsPaused,
		CurrentPlayerIndex:   s.CurrentPlayerIndex,
		CurrentBid:           s.CurrentBid,
		CurrentBiddingTeamID: s.CurrentBiddingTeamID,
		BidIncrement:         s.BidIncrement,
	}
	if s.PlayerQueue != nil {
		out.PlayerQueue = make([]Player, len(s.PlayerQueue))
		for i, p := range s.PlayerQueue {
			out.PlayerQueue[i] = p.clone()
		}
	}
	if s.SoldPlayers != nil {
		out.SoldPlayers = make([]SoldPlayer, len(s.SoldPlayers))
		for i, sp := range s.SoldPlayers {
			out.SoldPlayers[i] = sp.clone()
		}
	}
	if s.UnsoldPlayers != nil {
		out.UnsoldPlayers = make([]Player, len(s.UnsoldPlayers))
		for i, p := range s.UnsoldPlayers {
			out.UnsoldPlayers[i] = p.clone()
		}
	}
	if s.TeamStates != nil {
		out.TeamStates = make(map[string]*TeamState, len(s.TeamStates))
		for id, ts := range s.TeamStates {
			out.TeamStates[id] = ts.clone()
		}
	}
	if s.BidHistory != nil {
		out.BidHistory = append([]BidRecord(nil), s.BidHistory...)
	}
	return out
}
