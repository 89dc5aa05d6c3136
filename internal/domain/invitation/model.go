package invitation

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusExpired  Status = "expired"
	StatusRevoked  Status = "revoked"
)

// Invitation is the persisted record of an outstanding invite. It is
// bookkeeping only; join tokens are derived values and never stored.
type Invitation struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"groupId"`
	InvitedBy   string    `json:"invitedBy"`
	InviteeName string    `json:"inviteeName,omitempty"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (i Invitation) RecordID() string {
	return i.ID
}

func (i Invitation) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("invitation id is required")
	}
	if i.GroupID == "" {
		return fmt.Errorf("invitation group id is required")
	}
	switch i.Status {
	case StatusPending, StatusAccepted, StatusExpired, StatusRevoked:
	default:
		return fmt.Errorf("invalid invitation status %q", i.Status)
	}

	return nil
}

// ExpiredAt reports whether the invitation lapsed as of now.
func (i Invitation) ExpiredAt(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}
