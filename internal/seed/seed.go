// Package seed loads the roster and catalog JSON files used to
// populate an empty store on first run.
package seed

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Vishal-code-E/ipl/internal/models"
)

// LoadTeams reads and validates a roster snapshot.
func LoadTeams(path string) ([]models.Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read teams seed: %w", err)
	}
	var teams []models.Team
	if err := json.Unmarshal(data, &teams); err != nil {
		return nil, fmt.Errorf("parse teams seed: %w", err)
	}
	seen := make(map[string]bool, len(teams))
	for i, t := range teams {
		if t.ID == "" {
			return nil, fmt.Errorf("teams seed: record %d has no id", i)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("teams seed: duplicate id %q", t.ID)
		}
		seen[t.ID] = true
		if t.Name == "" {
			return nil, fmt.Errorf("teams seed: team %q has no name", t.ID)
		}
		if t.InitialPurse <= 0 {
			return nil, fmt.Errorf("teams seed: team %q has non-positive purse", t.ID)
		}
	}
	return teams, nil
}

// LoadPlayers reads and validates a catalog snapshot.
func LoadPlayers(path string) ([]models.Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read players seed: %w", err)
	}
	var players []models.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("parse players seed: %w", err)
	}
	seen := make(map[string]bool, len(players))
	for i, p := range players {
		if p.ID == "" {
			return nil, fmt.Errorf("players seed: record %d has no id", i)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("players seed: duplicate id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Name == "" {
			return nil, fmt.Errorf("players seed: player %q has no name", p.ID)
		}
		if !models.ValidRole(p.Role) {
			return nil, fmt.Errorf("players seed: player %q has unknown role %q", p.ID, p.Role)
		}
		if p.BasePrice < 0 {
			return nil, fmt.Errorf("players seed: player %q has negative base price", p.ID)
		}
	}
	return players, nil
}
