package user

import (
	"fmt"
	"time"
)

// User is a person known to the local installation. Users are referenced
// by ID from group memberships and group creators.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) RecordID() string {
	return u.ID
}

func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if u.Name == "" {
		return fmt.Errorf("user name is required")
	}

	return nil
}
