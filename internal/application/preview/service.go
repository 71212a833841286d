package preview

import (
	"context"
	"fmt"

	"github.com/go-dataroom-api/internal/domain"
	jwtinfra "github.com/go-dataroom-api/internal/infrastructure/jwt"
)

// TokenVerifier parses and validates a signed preview token.
type TokenVerifier interface {
	VerifyPreview(tokenStr string) (*jwtinfra.PreviewClaims, error)
}

// Service confirms that a preview token was issued to the authenticated user
// for the target link. The caller decides whether a preview is being asserted
// at all; an absent token never reaches Validate.
type Service interface {
	Validate(ctx context.Context, previewToken, userID, linkID string) error
}

type service struct {
	verifier TokenVerifier
}

func NewService(verifier TokenVerifier) Service {
	return &service{verifier: verifier}
}

func (s *service) Validate(_ context.Context, previewToken, userID, linkID string) error {
	claims, err := s.verifier.VerifyPreview(previewToken)
	if err != nil {
		return fmt.Errorf("preview token invalid or expired: %w", domain.ErrUnauthorized)
	}
	if claims.UserID != userID || claims.LinkID != linkID {
		return fmt.Errorf("preview token not issued for this user and link: %w", domain.ErrUnauthorized)
	}
	return nil
}
