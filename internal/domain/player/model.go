package player

import (
	"fmt"
	"time"
)

// Stats is the aggregate scoring record kept per player. The scoring
// calculator that fills these in lives outside this module.
type Stats struct {
	Matches   int     `json:"matches"`
	Innings   int     `json:"innings"`
	Runs      int     `json:"runs"`
	Wickets   int     `json:"wickets"`
	Catches   int     `json:"catches"`
	HighScore int     `json:"highScore"`
	Average   float64 `json:"average"`
}

// Player is a club-level cricketer. A player flagged as a group member is
// expected to reference at least one existing group; the integrity checker
// reports violations instead of healing them.
type Player struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	IsGroupMember bool      `json:"isGroupMember"`
	GroupIDs      []string  `json:"groupIds,omitempty"`
	Stats         Stats     `json:"stats"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (p Player) RecordID() string {
	return p.ID
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	for _, groupID := range p.GroupIDs {
		if groupID == "" {
			return fmt.Errorf("player group ids must not be empty")
		}
	}

	return nil
}

// InGroup reports whether groupID appears in the player's group list.
func (p Player) InGroup(groupID string) bool {
	for _, id := range p.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}
