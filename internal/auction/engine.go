package auction

import (
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Vishal-code-E/ipl/internal/models"
)

// Engine is the auction state machine. Every operation takes the
// current session snapshot and returns a new one; the input is never
// mutated. The engine holds no session state of its own, only the
// roster (for ledger entries) and a clock (for timestamps).
type Engine struct {
	clock clockwork.Clock
	teams map[string]models.Team
}

// NewEngine creates an engine over the given roster.
func NewEngine(clock clockwork.Clock, teams []models.Team) *Engine {
	idx := make(map[string]models.Team, len(teams))
	for _, t := range teams {
		idx[t.ID] = t
	}
	return &Engine{clock: clock, teams: idx}
}

// NewSession seeds a fresh session: full catalog queue in original
// order, every purse restored, all history lists empty.
func (e *Engine) NewSession(players []models.Player, bidIncrement int64) *models.AuctionState {
	teamStates := make(map[string]*models.TeamState, len(e.teams))
	for id, t := range e.teams {
		teamStates[id] = &models.TeamState{
			TeamID:         id,
			RemainingPurse: t.InitialPurse,
			TotalSpent:     0,
			Players:        []models.SoldPlayer{},
		}
	}
	queue := make([]models.Player, len(players))
	copy(queue, players)
	return &models.AuctionState{
		CurrentPlayerIndex: 0,
		PlayerQueue:        queue,
		SoldPlayers:        []models.SoldPlayer{},
		UnsoldPlayers:      []models.Player{},
		TeamStates:         teamStates,
		BidHistory:         []models.BidRecord{},
		BidIncrement:       bidIncrement,
	}
}

// Start activates a not-yet-started session and opens bidding at the
// first queued player's base price.
func (e *Engine) Start(s *models.AuctionState) (*models.AuctionState, error) {
	if s.IsActive {
		return nil, ErrAlreadyStarted
	}
	next := s.Clone()
	next.IsActive = true
	next.IsPaused = false
	next.CurrentBid = 0
	if p := next.CurrentPlayer(); p != nil {
		next.CurrentBid = p.BasePrice
	}
	return next, nil
}

// TogglePause flips the paused flag of an active session.
func (e *Engine) TogglePause(s *models.AuctionState) (*models.AuctionState, error) {
	if !s.IsActive {
		return nil, ErrNotActive
	}
	next := s.Clone()
	next.IsPaused = !s.IsPaused
	return next, nil
}

// PlaceBid records a bid by teamID on the current player. Only purse
// sufficiency is checked: a bid lower than or equal to the current bid
// is accepted, so the operator can correct a mis-entered amount. Purses
// are not debited here; that happens at sale.
func (e *Engine) PlaceBid(s *models.AuctionState, teamID string, amount int64) (*models.AuctionState, error) {
	if !s.IsActive {
		return nil, ErrNotActive
	}
	if s.IsPaused {
		return nil, ErrPaused
	}
	player := s.CurrentPlayer()
	if player == nil {
		return nil, ErrNoCurrentPlayer
	}
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	team, ok := e.teams[teamID]
	if !ok {
		return nil, ErrUnknownTeam
	}
	ts, ok := s.TeamStates[teamID]
	if !ok {
		return nil, ErrUnknownTeam
	}
	if ts.RemainingPurse < amount {
		return nil, ErrInsufficientPurse
	}

	next := s.Clone()
	next.CurrentBid = amount
	next.CurrentBiddingTeamID = teamID
	next.BidHistory = append(next.BidHistory, models.BidRecord{
		ID:         uuid.New().String(),
		PlayerID:   player.ID,
		PlayerName: player.Name,
		TeamID:     teamID,
		TeamName:   team.Name,
		Amount:     amount,
		Timestamp:  e.clock.Now(),
	})
	return next, nil
}

// RaiseBid bumps the current bid by the configured increment on behalf
// of the team already leading.
func (e *Engine) RaiseBid(s *models.AuctionState) (*models.AuctionState, error) {
	if s.CurrentBiddingTeamID == "" {
		return nil, ErrNoActiveBidder
	}
	return e.PlaceBid(s, s.CurrentBiddingTeamID, s.CurrentBid+s.BidIncrement)
}

// Sell hammers the current player to the leading team: debits the
// purse, records the sale in both the team's history and the session's
// sold list, and advances to the next player.
func (e *Engine) Sell(s *models.AuctionState) (*models.AuctionState, error) {
	if s.CurrentBiddingTeamID == "" {
		return nil, ErrNoActiveBidder
	}
	player := s.CurrentPlayer()
	if player == nil {
		return nil, ErrNoCurrentPlayer
	}

	next := s.Clone()
	ts := next.TeamStates[next.CurrentBiddingTeamID]
	sold := models.SoldPlayer{
		Player:    *player,
		TeamID:    next.CurrentBiddingTeamID,
		Amount:    next.CurrentBid,
		Timestamp: e.clock.Now(),
	}
	ts.RemainingPurse -= next.CurrentBid
	ts.TotalSpent += next.CurrentBid
	ts.Players = append(ts.Players, sold)
	next.SoldPlayers = append(next.SoldPlayers, sold)
	e.advance(next)
	return next, nil
}

// MarkUnsold passes over the current player without a sale. Purses are
// untouched.
func (e *Engine) MarkUnsold(s *models.AuctionState) (*models.AuctionState, error) {
	player := s.CurrentPlayer()
	if player == nil {
		return nil, ErrNoCurrentPlayer
	}
	next := s.Clone()
	next.UnsoldPlayers = append(next.UnsoldPlayers, *player)
	e.advance(next)
	return next, nil
}

// SetBidIncrement updates the configured increment. Past ledger entries
// are unaffected.
func (e *Engine) SetBidIncrement(s *models.AuctionState, increment int64) (*models.AuctionState, error) {
	if increment <= 0 {
		return nil, ErrInvalidAmount
	}
	next := s.Clone()
	next.BidIncrement = increment
	return next, nil
}

// advance moves to the next queued player, resetting the bid to its
// base price (0 past the end) and clearing the leading team.
func (e *Engine) advance(s *models.AuctionState) {
	s.CurrentPlayerIndex++
	s.CurrentBiddingTeamID = ""
	s.CurrentBid = 0
	if p := s.CurrentPlayer(); p != nil {
		s.CurrentBid = p.BasePrice
	}
}
