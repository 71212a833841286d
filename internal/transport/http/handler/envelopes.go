package handler

import (
	"encoding/json"
	"net/http"

	s3infra "github.com/go-dataroom-api/internal/infrastructure/s3"
)

// MessageEnvelope is the generic response wrapper for health and plain
// messages.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorEnvelope is the denial response shape. The reset flags tell the
// client which flow to restart instead of retrying blindly.
type ErrorEnvelope struct {
	Message           string `json:"message"`
	ResetVerification bool   `json:"resetVerification,omitempty"`
	ResetPreview      bool   `json:"resetPreview,omitempty"`
}

// VerificationEnvelope is returned when a one-time code was just emailed.
type VerificationEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ViewEnvelope is the success response. The embedded content payload carries
// the variant-specific fields for the document kind being served.
type ViewEnvelope struct {
	Message           string `json:"message"`
	ViewID            string `json:"viewId,omitempty"`
	IsPreview         bool   `json:"isPreview,omitempty"`
	VerificationToken string `json:"verificationToken,omitempty"`
	Watermark         string `json:"watermark,omitempty"`
	*s3infra.Content
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorEnvelope{Message: msg})
}
