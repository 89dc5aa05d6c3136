package group

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// InviteCodeLength is fixed; codes are uppercase alphanumeric so that a
// person can read one out loud or type it by hand.
const InviteCodeLength = 6

// Permissions gate what a member can change inside the group.
type Permissions struct {
	CanManagePlayers bool `json:"canManagePlayers"`
	CanEditMatches   bool `json:"canEditMatches"`
	CanInviteMembers bool `json:"canInviteMembers"`
}

func DefaultMemberPermissions() Permissions {
	return Permissions{
		CanManagePlayers: false,
		CanEditMatches:   true,
		CanInviteMembers: true,
	}
}

func AdminPermissions() Permissions {
	return Permissions{
		CanManagePlayers: true,
		CanEditMatches:   true,
		CanInviteMembers: true,
	}
}

type Member struct {
	UserID      string      `json:"userId"`
	Role        Role        `json:"role"`
	JoinedAt    time.Time   `json:"joinedAt"`
	IsActive    bool        `json:"isActive"`
	Permissions Permissions `json:"permissions"`
}

type Settings struct {
	Visibility    string `json:"visibility"`
	ScoringFormat string `json:"scoringFormat"`
}

func DefaultSettings() Settings {
	return Settings{
		Visibility:    "private",
		ScoringFormat: "limited-overs",
	}
}

// Group is a community club. Deleting a group does not cascade to players,
// matches or invitations that reference it; callers own that cleanup.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	Members     []Member  `json:"members"`
	InviteCode  string    `json:"inviteCode"`
	Settings    Settings  `json:"settings"`
}

func (g Group) RecordID() string {
	return g.ID
}

func (g Group) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("group id is required")
	}
	if g.Name == "" {
		return fmt.Errorf("group name is required")
	}
	if g.CreatedBy == "" {
		return fmt.Errorf("group creator is required")
	}
	if !ValidInviteCode(g.InviteCode) {
		return fmt.Errorf("invite code %q is not %d uppercase alphanumeric characters", g.InviteCode, InviteCodeLength)
	}

	return nil
}

// HasMember reports whether userID already appears in the member list,
// regardless of the member's active flag.
func (g Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the user ids of all members in list order.
func (g Group) MemberIDs() []string {
	out := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		out = append(out, m.UserID)
	}
	return out
}

func ValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
