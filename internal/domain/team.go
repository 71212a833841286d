package domain

import "time"

// Team owns links and documents. BlockList applies to every link the team
// owns, checked before any per-link allow/deny list.
type Team struct {
	TeamID    string    `json:"team_id" dynamodbav:"team_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Plan      string    `json:"plan" dynamodbav:"plan"` // "free" | "pro" | "business"
	BlockList []string  `json:"block_list,omitempty" dynamodbav:"block_list"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}
