package domain

import "time"

// AgreementResponse records a visitor's acceptance of the link's agreement,
// created atomically with the view it belongs to.
type AgreementResponse struct {
	AgreementID string    `json:"agreement_id" dynamodbav:"agreement_id"`
	AcceptedAt  time.Time `json:"accepted_at" dynamodbav:"accepted_at"`
}

// CustomFieldResponse is one answered (or blank) custom field. Unanswered
// fields are stored with an empty Value rather than omitted.
type CustomFieldResponse struct {
	Identifier string `json:"identifier" dynamodbav:"identifier"`
	Label      string `json:"label" dynamodbav:"label"`
	Value      string `json:"value" dynamodbav:"value"`
}

// View is the immutable record of one qualifying, non-preview visit.
// ViewerID is empty for anonymous views.
type View struct {
	ViewID            string                `json:"view_id" dynamodbav:"view_id"`
	LinkID            string                `json:"link_id" dynamodbav:"link_id"`
	DocumentID        string                `json:"document_id" dynamodbav:"document_id"`
	DocumentVersionID string                `json:"document_version_id" dynamodbav:"document_version_id"`
	TeamID            string                `json:"team_id" dynamodbav:"team_id"`
	ViewerID          string                `json:"viewer_id,omitempty" dynamodbav:"viewer_id"`
	ViewerEmail       string                `json:"viewer_email,omitempty" dynamodbav:"viewer_email"`
	ViewerName        string                `json:"viewer_name,omitempty" dynamodbav:"viewer_name"`
	Verified          bool                  `json:"verified" dynamodbav:"verified"`
	Agreement         *AgreementResponse    `json:"agreement,omitempty" dynamodbav:"agreement"`
	CustomFields      []CustomFieldResponse `json:"custom_fields,omitempty" dynamodbav:"custom_fields"`
	ViewedAt          time.Time             `json:"viewed_at" dynamodbav:"viewed_at"`
}
