package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-dataroom-api/internal/application/access"
	"github.com/go-dataroom-api/internal/application/preview"
	"github.com/go-dataroom-api/internal/application/view"
	"github.com/go-dataroom-api/internal/domain"
	s3infra "github.com/go-dataroom-api/internal/infrastructure/s3"
	"github.com/go-dataroom-api/internal/pkg/validate"
	"github.com/go-dataroom-api/internal/transport/http/middleware"
)

// LinkStore is the minimal link lookup the handler requires.
type LinkStore interface {
	Get(ctx context.Context, linkID string) (*domain.Link, error)
}

// TeamStore is the minimal team lookup the handler requires.
type TeamStore interface {
	Get(ctx context.Context, teamID string) (*domain.Team, error)
}

// DocumentStore is the minimal document lookup the handler requires.
type DocumentStore interface {
	Get(ctx context.Context, documentID string) (*domain.Document, error)
}

// ContentResolver assembles the success payload for a document version.
type ContentResolver interface {
	Resolve(ctx context.Context, version *domain.DocumentVersion) (*s3infra.Content, error)
}

// ViewRequest is the body of POST /v1/views.
type ViewRequest struct {
	LinkID                string            `json:"linkId" validate:"required"`
	DocumentID            string            `json:"documentId"`
	DocumentVersionID     string            `json:"documentVersionId"`
	Email                 string            `json:"email"`
	Password              string            `json:"password"`
	Name                  string            `json:"name"`
	HasConfirmedAgreement bool              `json:"hasConfirmedAgreement"`
	CustomFields          map[string]string `json:"customFields"`
	PreviewToken          string            `json:"previewToken"`
	Code                  string            `json:"code"`
	Token                 string            `json:"token"`
	VerifiedEmail         string            `json:"verifiedEmail"`
}

// ViewHandler serves the single gate-and-record endpoint.
type ViewHandler struct {
	links     LinkStore
	teams     TeamStore
	documents DocumentStore
	gates     access.Service
	previews  preview.Service
	recorder  view.Service
	resolver  ContentResolver
}

func NewViewHandler(links LinkStore, teams TeamStore, documents DocumentStore, gates access.Service, previews preview.Service, recorder view.Service, resolver ContentResolver) *ViewHandler {
	return &ViewHandler{
		links:     links,
		teams:     teams,
		documents: documents,
		gates:     gates,
		previews:  previews,
		recorder:  recorder,
		resolver:  resolver,
	}
}

func (h *ViewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ctx := r.Context()

	link, err := h.links.Get(ctx, req.LinkID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Link not found")
			return
		}
		h.internal(w, req.LinkID, "load link", err)
		return
	}
	team, err := h.teams.Get(ctx, link.TeamID)
	if err != nil {
		h.internal(w, req.LinkID, "load team", err)
		return
	}

	// Preview assertion is resolved before any visitor gate: a team member
	// either proves their session or is refused, never silently demoted to a
	// visitor.
	isPreview := false
	if req.PreviewToken != "" {
		claims, ok := middleware.ClaimsFromContext(ctx)
		if !ok {
			writeError(w, http.StatusUnauthorized, "You need to be logged in to preview this link")
			return
		}
		if err := h.previews.Validate(ctx, req.PreviewToken, claims.UserID, link.LinkID); err != nil {
			writeJSON(w, http.StatusUnauthorized, ErrorEnvelope{
				Message:      "Preview session invalid or expired",
				ResetPreview: true,
			})
			return
		}
		isPreview = true
	}

	rc := &access.RequestContext{
		Link:                  link,
		Team:                  team,
		Email:                 strings.TrimSpace(req.Email),
		Password:              req.Password,
		Code:                  req.Code,
		Token:                 req.Token,
		VerifiedEmail:         strings.TrimSpace(req.VerifiedEmail),
		HasConfirmedAgreement: req.HasConfirmedAgreement,
		ClientIP:              middleware.RealIP(r),
		IsTeamMember:          isPreview,
	}

	res := h.gates.Evaluate(ctx, rc)
	switch res.Kind {
	case access.Deny:
		writeJSON(w, res.Status, ErrorEnvelope{
			Message:           res.Message,
			ResetVerification: res.ResetVerification,
		})
	case access.NeedVerification:
		writeJSON(w, http.StatusOK, VerificationEnvelope{
			Type:    "email-verification",
			Message: "Verification email sent. Enter the code to continue",
		})
	case access.Allow:
		h.recordAndRespond(w, r, link, req, res, isPreview)
	}
}

func (h *ViewHandler) recordAndRespond(w http.ResponseWriter, r *http.Request, link *domain.Link, req ViewRequest, res access.Result, isPreview bool) {
	ctx := r.Context()

	documentID := req.DocumentID
	if documentID == "" {
		documentID = link.DocumentID
	}
	doc, err := h.documents.Get(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.internal(w, link.LinkID, "load document", err)
		return
	}
	version := doc.Version(req.DocumentVersionID)
	if version == nil {
		writeError(w, http.StatusNotFound, "Document version not found")
		return
	}

	recorded, err := h.recorder.Record(ctx, view.RecordInput{
		Link:                  link,
		DocumentID:            doc.DocumentID,
		DocumentVersionID:     version.VersionID,
		Email:                 strings.TrimSpace(req.Email),
		Name:                  req.Name,
		EmailVerified:         res.EmailVerified,
		HasConfirmedAgreement: req.HasConfirmedAgreement,
		CustomFields:          req.CustomFields,
		IsPreview:             isPreview,
	})
	if err != nil {
		h.internal(w, link.LinkID, "record view", err)
		return
	}

	content, err := h.resolver.Resolve(ctx, version)
	if err != nil {
		h.internal(w, link.LinkID, "resolve content", err)
		return
	}

	env := ViewEnvelope{
		Message:           "View recorded",
		IsPreview:         isPreview,
		VerificationToken: res.VerificationToken,
		Content:           content,
	}
	if recorded != nil {
		env.ViewID = recorded.ViewID
	}
	if link.EnableWatermark {
		env.Watermark = link.WatermarkConfig
	}
	writeJSON(w, http.StatusOK, env)
}

// internal logs the underlying error and answers with a generic 500, keeping
// storage detail out of the response.
func (h *ViewHandler) internal(w http.ResponseWriter, linkID, op string, err error) {
	slog.Error(op, "link_id", linkID, "err", err)
	writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again")
}
