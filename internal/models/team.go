package models

import "time"

// Team is an immutable roster record for a bidding franchise.
type Team struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ShortName    string `json:"short_name"`
	Logo         string `json:"logo,omitempty"`
	Color        string `json:"color,omitempty"`
	InitialPurse int64  `json:"initial_purse_lakh"`
}

// SoldPlayer records a completed sale: the player, the buying team, the
// hammer price and when it happened.
type SoldPlayer struct {
	Player    Player    `json:"player"`
	TeamID    string    `json:"team_id"`
	Amount    int64     `json:"amount_lakh"`
	Timestamp time.Time `json:"timestamp"`
}

// TeamState is the per-session mutable companion of a Team. The purse
// identity RemainingPurse + TotalSpent == Team.InitialPurse holds after
// every operation.
type TeamState struct {
	TeamID         string       `json:"team_id"`
	RemainingPurse int64        `json:"remaining_purse_lakh"`
	TotalSpent     int64        `json:"total_spent_lakh"`
	Players        []SoldPlayer `json:"players"`
}

func (t *TeamState) clone() *TeamState {
	out := &TeamState{
		TeamID:         t.TeamID,
		RemainingPurse: t.RemainingPurse,
		TotalSpent:     t.TotalSpent,
	}
	if t.Players != nil {
		out.Players = make([]SoldPlayer, len(t.Players))
		for i, sp := range t.Players {
			out.Players[i] = sp.clone()
		}
	}
	return out
}

func (sp SoldPlayer) clone() SoldPlayer {
	out := sp
	out.Player = sp.Player.clone()
	return out
}
