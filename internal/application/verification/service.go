package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-dataroom-api/internal/domain"
	pkgtoken "github.com/go-dataroom-api/internal/pkg/token"
)

const (
	otpLifetime   = 10 * time.Minute
	tokenLifetime = 23 * time.Hour
)

// TokenStore is the verification-row storage the service needs.
type TokenStore interface {
	Put(ctx context.Context, v *domain.LinkVerification) error
	Get(ctx context.Context, identifier, token string) (*domain.LinkVerification, error)
	Delete(ctx context.Context, identifier, token string) error
	DeleteByIdentifier(ctx context.Context, identifier string) error
}

// Mailer delivers the one-time code to the visitor.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// Service issues and validates the two token classes bound to a
// (link, identity) pair: short-lived numeric one-time codes and long-lived
// opaque verification tokens.
type Service interface {
	// IssueOTP replaces any live code for the (link, email) pair with a fresh
	// 6-digit code and triggers its delivery email. The code never reaches
	// the caller.
	IssueOTP(ctx context.Context, link *domain.Link, email string) error

	// VerifyOTP consumes the code on success and on detected expiry. On
	// success it issues a long-lived token for the pair and returns the raw
	// (unhashed) value, so the visitor can return within its lifetime without
	// a new code. Failures wrap domain.ErrUnauthorized or domain.ErrExpired.
	VerifyOTP(ctx context.Context, link *domain.Link, email, code string) (string, error)

	// VerifyToken checks a long-lived token. Valid tokens stay stored until
	// their own expiry; expired rows are deleted when encountered.
	VerifyToken(ctx context.Context, link *domain.Link, email, rawToken string) error
}

type service struct {
	tokens TokenStore
	mailer Mailer
}

func NewService(tokens TokenStore, mailer Mailer) Service {
	return &service{tokens: tokens, mailer: mailer}
}

func (s *service) IssueOTP(ctx context.Context, link *domain.Link, email string) error {
	identifier := domain.OTPIdentifier(link.LinkID, email)

	// At most one live OTP per (link, email): clear earlier codes first.
	if err := s.tokens.DeleteByIdentifier(ctx, identifier); err != nil {
		return fmt.Errorf("delete previous codes: %w", err)
	}

	code, err := pkgtoken.NewOTP()
	if err != nil {
		return err
	}
	v := &domain.LinkVerification{
		Identifier: identifier,
		Token:      code,
		ExpiresAt:  time.Now().Add(otpLifetime).Unix(),
	}
	if err := s.tokens.Put(ctx, v); err != nil {
		return err
	}

	go func() {
		subject := "One-time code to view " + link.Name
		body := fmt.Sprintf("Your one-time code is %s. It expires in 10 minutes.", code)
		if err := s.mailer.SendEmail(email, subject, body); err != nil {
			slog.Error("send verification email", "link_id", link.LinkID, "err", err)
		}
	}()
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, link *domain.Link, email, code string) (string, error) {
	identifier := domain.OTPIdentifier(link.LinkID, email)

	v, err := s.tokens.Get(ctx, identifier, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("code not found: %w", domain.ErrUnauthorized)
		}
		return "", err
	}
	if v.ExpiresAt < time.Now().Unix() {
		if err := s.tokens.Delete(ctx, identifier, code); err != nil {
			slog.Warn("delete expired code", "link_id", link.LinkID, "err", err)
		}
		return "", fmt.Errorf("code expired: %w", domain.ErrExpired)
	}

	// Single use: the code is gone whether or not the follow-up succeeds.
	if err := s.tokens.Delete(ctx, identifier, code); err != nil {
		slog.Warn("delete used code", "link_id", link.LinkID, "err", err)
	}

	raw, err := pkgtoken.New()
	if err != nil {
		return "", err
	}
	lv := &domain.LinkVerification{
		Identifier: domain.VerificationIdentifier(link.LinkID, link.TeamID, email),
		Token:      pkgtoken.Hash(raw),
		ExpiresAt:  time.Now().Add(tokenLifetime).Unix(),
	}
	if err := s.tokens.Put(ctx, lv); err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}
	return raw, nil
}

func (s *service) VerifyToken(ctx context.Context, link *domain.Link, email, rawToken string) error {
	identifier := domain.VerificationIdentifier(link.LinkID, link.TeamID, email)
	hashed := pkgtoken.Hash(rawToken)

	v, err := s.tokens.Get(ctx, identifier, hashed)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("token not found: %w", domain.ErrUnauthorized)
		}
		return err
	}
	if v.ExpiresAt < time.Now().Unix() {
		if err := s.tokens.Delete(ctx, identifier, hashed); err != nil {
			slog.Warn("delete expired token", "link_id", link.LinkID, "err", err)
		}
		return fmt.Errorf("token expired: %w", domain.ErrExpired)
	}
	// Repeat-use until expiry: the row stays.
	return nil
}
