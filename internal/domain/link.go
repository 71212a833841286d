package domain

import "time"

// CustomFieldDef is one custom input the link owner asks visitors to fill in.
type CustomFieldDef struct {
	Identifier string `json:"identifier" dynamodbav:"identifier"`
	Label      string `json:"label" dynamodbav:"label"`
}

// Link is the sharing configuration for one document or dataroom.
// It is read-only within the request path: every policy flag is decided by
// the owning team through a separate management surface.
//
// Password holds either a bcrypt hash or a legacy "nonce:ciphertext" value;
// see pkg/password for how the two schemes are told apart.
type Link struct {
	LinkID             string           `json:"link_id" dynamodbav:"link_id"`
	TeamID             string           `json:"team_id" dynamodbav:"team_id"`
	DocumentID         string           `json:"document_id" dynamodbav:"document_id"`
	Name               string           `json:"name" dynamodbav:"name"`
	Archived           bool             `json:"archived" dynamodbav:"archived"`
	Password           string           `json:"-" dynamodbav:"password"`
	EmailProtected     bool             `json:"email_protected" dynamodbav:"email_protected"`
	EmailAuthenticated bool             `json:"email_authenticated" dynamodbav:"email_authenticated"`
	EnableAgreement    bool             `json:"enable_agreement" dynamodbav:"enable_agreement"`
	AgreementID        string           `json:"agreement_id,omitempty" dynamodbav:"agreement_id"`
	EnableWatermark    bool             `json:"enable_watermark" dynamodbav:"enable_watermark"`
	WatermarkConfig    string           `json:"watermark_config,omitempty" dynamodbav:"watermark_config"`
	AllowList          []string         `json:"allow_list,omitempty" dynamodbav:"allow_list"`
	DenyList           []string         `json:"deny_list,omitempty" dynamodbav:"deny_list"`
	CustomFields       []CustomFieldDef `json:"custom_fields,omitempty" dynamodbav:"custom_fields"`
	CreatedAt          time.Time        `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" dynamodbav:"updated_at"`
}

// HasPassword reports whether the link is password protected.
func (l *Link) HasPassword() bool { return l.Password != "" }
