package match

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Match is a fixture played (or to be played) inside a group.
type Match struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"groupId"`
	HomeTeam    string    `json:"homeTeam"`
	AwayTeam    string    `json:"awayTeam"`
	Venue       string    `json:"venue,omitempty"`
	Status      Status    `json:"status"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Result      string    `json:"result,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (m Match) RecordID() string {
	return m.ID
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.GroupID == "" {
		return fmt.Errorf("match group id is required")
	}
	switch m.Status {
	case StatusScheduled, StatusLive, StatusCompleted, StatusAbandoned:
	default:
		return fmt.Errorf("invalid match status %q", m.Status)
	}

	return nil
}

// Finished reports whether the match reached a terminal state.
func (m Match) Finished() bool {
	return m.Status == StatusCompleted || m.Status == StatusAbandoned
}
