package sns

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-dataroom-api/internal/config"
	"github.com/go-dataroom-api/internal/domain"
)

// Publisher emits the fire-and-forget events of the request path: the view
// analytics event, the owner notification, and denied-access reports. Every
// method returns immediately; delivery happens on its own goroutine and a
// failure is logged, never surfaced to the visitor.
type Publisher interface {
	PublishDeniedAccess(linkID, email, reason string)
	PublishViewEvent(view *domain.View)
	PublishViewNotification(view *domain.View)
}

type publisher struct {
	client      *sns.Client
	eventTopic  string
	deniedTopic string
}

func NewPublisher(cfg *config.Config) (Publisher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &publisher{
		client:      sns.NewFromConfig(awsCfg),
		eventTopic:  cfg.SNSEventTopicARN,
		deniedTopic: cfg.SNSDeniedTopicARN,
	}, nil
}

// NopPublisher drops every event. Used when SNS is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishDeniedAccess(linkID, email, reason string) {}
func (NopPublisher) PublishViewEvent(view *domain.View)               {}
func (NopPublisher) PublishViewNotification(view *domain.View)        {}

type deniedAccessEvent struct {
	Event  string `json:"event"`
	LinkID string `json:"link_id"`
	Email  string `json:"email"`
	Reason string `json:"reason"` // "global" | "allow" | "deny"
}

type viewEvent struct {
	Event      string `json:"event"`
	ViewID     string `json:"view_id"`
	LinkID     string `json:"link_id"`
	DocumentID string `json:"document_id"`
	TeamID     string `json:"team_id"`
	ViewerID   string `json:"viewer_id,omitempty"`
	Email      string `json:"email,omitempty"`
	Verified   bool   `json:"verified"`
	ViewedAt   string `json:"viewed_at"`
}

func (p *publisher) PublishDeniedAccess(linkID, email, reason string) {
	p.publish(p.deniedTopic, deniedAccessEvent{
		Event:  "access-denied",
		LinkID: linkID,
		Email:  email,
		Reason: reason,
	})
}

func (p *publisher) PublishViewEvent(view *domain.View) {
	p.publish(p.eventTopic, p.viewEvent("view-recorded", view))
}

func (p *publisher) PublishViewNotification(view *domain.View) {
	p.publish(p.eventTopic, p.viewEvent("view-notification", view))
}

func (p *publisher) viewEvent(kind string, view *domain.View) viewEvent {
	return viewEvent{
		Event:      kind,
		ViewID:     view.ViewID,
		LinkID:     view.LinkID,
		DocumentID: view.DocumentID,
		TeamID:     view.TeamID,
		ViewerID:   view.ViewerID,
		Email:      view.ViewerEmail,
		Verified:   view.Verified,
		ViewedAt:   view.ViewedAt.UTC().Format(time.RFC3339),
	}
}

func (p *publisher) publish(topic string, event interface{}) {
	if topic == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		body, err := json.Marshal(event)
		if err != nil {
			slog.Error("marshal event", "err", err)
			return
		}
		_, err = p.client.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(topic),
			Message:  aws.String(string(body)),
		})
		if err != nil {
			slog.Error("publish event", "topic", topic, "err", err)
		}
	}()
}
