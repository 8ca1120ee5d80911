package models

// PlayerRole defines the role of a player in the catalog.
type PlayerRole string

const (
	RoleBatsman      PlayerRole = "Batsman"
	RoleBowler       PlayerRole = "Bowler"
	RoleAllRounder   PlayerRole = "All-Rounder"
	RoleWicketKeeper PlayerRole = "Wicket-Keeper"
)

// PlayerStats holds career statistics for a player. Which fields are
// populated depends on the role: batsmen carry batting numbers, bowlers
// carry wickets and economy, all-rounders both. Absent fields stay nil.
type PlayerStats struct {
	Matches     int      `json:"matches"`
	Runs        *int     `json:"runs,omitempty"`
	Wickets     *int     `json:"wickets,omitempty"`
	Average     *float64 `json:"average,omitempty"`
	StrikeRate  *float64 `json:"strike_rate,omitempty"`
	Economy     *float64 `json:"economy,omitempty"`
	Fifties     *int     `json:"fifties,omitempty"`
	Hundreds    *int     `json:"hundreds,omitempty"`
	BestBowling *string  `json:"best_bowling,omitempty"`
}

// Player is an immutable catalog record. All monetary amounts in this
// package are integer lakh (100 lakh = 1 crore) so purse arithmetic is
// exact.
type Player struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Role       PlayerRole  `json:"role"`
	Country    string      `json:"country"`
	BasePrice  int64       `json:"base_price_lakh"`
	Stats      PlayerStats `json:"stats"`
	ImageURL   string      `json:"image_url,omitempty"`
	IPLHistory []string    `json:"ipl_history,omitempty"`
	YearRange  string      `json:"year_range,omitempty"`
}

// ValidRole reports whether r is one of the known player roles.
func ValidRole(r PlayerRole) bool {
	switch r {
	case RoleBatsman, RoleBowler, RoleAllRounder, RoleWicketKeeper:
		return true
	default:
		return false
	}
}

// clone returns a deep copy of the player.
func (p Player) clone() Player {
	out := p
	out.Stats = p.Stats.clone()
	if p.IPLHistory != nil {
		out.IPLHistory = append([]string(nil), p.IPLHistory...)
	}
	return out
}

func (s PlayerStats) clone() PlayerStats {
	out := s
	out.Runs = cloneIntPtr(s.Runs)
	out.Wickets = cloneIntPtr(s.Wickets)
	out.Average = cloneFloatPtr(s.Average)
	out.StrikeRate = cloneFloatPtr(s.StrikeRate)
	out.Economy = cloneFloatPtr(s.Economy)
	out.Fifties = cloneIntPtr(s.Fifties)
	out.Hundreds = cloneIntPtr(s.Hundreds)
	if s.BestBowling != nil {
		v := *s.BestBowling
		out.BestBowling = &v
	}
	return out
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
