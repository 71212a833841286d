package view

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-dataroom-api/internal/domain"
	"github.com/go-dataroom-api/internal/pkg/id"
)

// ViewerStore is the viewer storage the recorder needs. Create must fail
// with domain.ErrConflict when a row for the (team, email) pair exists.
type ViewerStore interface {
	Get(ctx context.Context, teamID, email string) (*domain.Viewer, error)
	Create(ctx context.Context, v *domain.Viewer) error
	MarkVerified(ctx context.Context, teamID, email string) error
}

// ViewStore persists immutable view rows.
type ViewStore interface {
	Put(ctx context.Context, v *domain.View) error
}

// Publisher emits fire-and-forget events after a view is persisted.
type Publisher interface {
	PublishViewEvent(view *domain.View)
	PublishViewNotification(view *domain.View)
}

// RecordInput is everything an allowed request contributes to the durable
// record.
type RecordInput struct {
	Link              *domain.Link
	DocumentID        string
	DocumentVersionID string
	Email             string
	Name              string
	EmailVerified     bool

	HasConfirmedAgreement bool
	CustomFields          map[string]string

	IsPreview bool
}

// Service materializes an allowed decision into durable state: the viewer
// row, the view row with its nested responses, and the downstream events.
type Service interface {
	// Record returns the created view, or (nil, nil) for previews, which
	// leave no trace.
	Record(ctx context.Context, in RecordInput) (*domain.View, error)
}

type service struct {
	viewers ViewerStore
	views   ViewStore
	events  Publisher
}

func NewService(viewers ViewerStore, views ViewStore, events Publisher) Service {
	return &service{viewers: viewers, views: views, events: events}
}

func (s *service) Record(ctx context.Context, in RecordInput) (*domain.View, error) {
	if in.IsPreview {
		return nil, nil
	}

	var viewerID string
	if in.Email != "" {
		viewer, err := s.findOrCreateViewer(ctx, in)
		if err != nil {
			return nil, err
		}
		viewerID = viewer.ViewerID
	}

	v := &domain.View{
		ViewID:            id.New(),
		LinkID:            in.Link.LinkID,
		DocumentID:        in.DocumentID,
		DocumentVersionID: in.DocumentVersionID,
		TeamID:            in.Link.TeamID,
		ViewerID:          viewerID,
		ViewerEmail:       in.Email,
		ViewerName:        in.Name,
		Verified:          in.EmailVerified,
		ViewedAt:          time.Now().UTC(),
	}
	if in.Link.EnableAgreement && in.Link.AgreementID != "" && in.HasConfirmedAgreement {
		v.Agreement = &domain.AgreementResponse{
			AgreementID: in.Link.AgreementID,
			AcceptedAt:  v.ViewedAt,
		}
	}
	if len(in.Link.CustomFields) > 0 && in.CustomFields != nil {
		// Every defined field gets a row; unanswered ones hold "".
		for _, def := range in.Link.CustomFields {
			v.CustomFields = append(v.CustomFields, domain.CustomFieldResponse{
				Identifier: def.Identifier,
				Label:      def.Label,
				Value:      in.CustomFields[def.Identifier],
			})
		}
	}

	if err := s.views.Put(ctx, v); err != nil {
		return nil, fmt.Errorf("store view: %w", err)
	}

	s.events.PublishViewEvent(v)
	s.events.PublishViewNotification(v)
	return v, nil
}

// findOrCreateViewer resolves the viewer row for (team, email), creating it
// on first visit. The table's key schema arbitrates concurrent creates: the
// loser re-fetches the winner's row. Verified is promoted, never demoted.
func (s *service) findOrCreateViewer(ctx context.Context, in RecordInput) (*domain.Viewer, error) {
	teamID := in.Link.TeamID

	viewer, err := s.viewers.Get(ctx, teamID, in.Email)
	if err == nil {
		return s.promoteViewer(ctx, in, viewer)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	fresh := &domain.Viewer{
		TeamID:    teamID,
		Email:     in.Email,
		ViewerID:  id.New(),
		Verified:  in.EmailVerified,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.viewers.Create(ctx, fresh)
	if err == nil {
		return fresh, nil
	}
	if errors.Is(err, domain.ErrConflict) {
		// Lost the race: another request created the row first. The winner may
		// still need this request's verification outcome.
		winner, err := s.viewers.Get(ctx, teamID, in.Email)
		if err != nil {
			return nil, err
		}
		return s.promoteViewer(ctx, in, winner)
	}
	return nil, fmt.Errorf("create viewer: %w", err)
}

// promoteViewer applies the monotonic verified promotion to an existing row.
func (s *service) promoteViewer(ctx context.Context, in RecordInput, viewer *domain.Viewer) (*domain.Viewer, error) {
	if in.EmailVerified && !viewer.Verified {
		if err := s.viewers.MarkVerified(ctx, in.Link.TeamID, in.Email); err != nil {
			return nil, fmt.Errorf("promote viewer: %w", err)
		}
		viewer.Verified = true
	}
	return viewer, nil
}
