package types

import "time"

// JiraUser is an upstream Jira account as returned by the user lookup
// endpoints.
type JiraUser struct {
	Name         string `json:"name,omitempty"`
	Key          string `json:"key,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	Active       bool   `json:"active"`
}

// LocalUser is a locally registered user. Created on signup, read on login.
type LocalUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email,omitempty"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// JiraUserMirror is a denormalized copy of local user identity kept for
// cross-system sync. The active flag gates inclusion in the import direction.
type JiraUserMirror struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Active   bool   `json:"active"`
}
