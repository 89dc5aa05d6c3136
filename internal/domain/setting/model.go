package setting

import (
	"fmt"
	"time"
)

// Setting is a keyed application preference.
type Setting struct {
	ID        string    `json:"id"`
	Value     any       `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s Setting) RecordID() string {
	return s.ID
}

func (s Setting) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("setting id is required")
	}

	return nil
}
