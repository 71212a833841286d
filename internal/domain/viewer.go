package domain

import "time"

// Viewer is a visitor identity scoped to a team.
// PK: team_id, SK: email — the table's key schema is the uniqueness authority
// for concurrent first-time visits.
// Verified is promoted false→true on a verified visit and never demoted.
type Viewer struct {
	TeamID    string    `json:"team_id" dynamodbav:"team_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	ViewerID  string    `json:"viewer_id" dynamodbav:"viewer_id"`
	Verified  bool      `json:"verified" dynamodbav:"verified"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}
