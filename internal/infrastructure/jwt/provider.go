package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-dataroom-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a dashboard user's Bearer token.
type SessionClaims struct {
	UserID string `json:"user_id"`
	TeamID string `json:"team_id"`
	jwt.RegisteredClaims
}

// PreviewClaims is the payload of a preview token: a team member's
// permission to open one specific link as if they were a visitor.
type PreviewClaims struct {
	UserID string `json:"user_id"`
	LinkID string `json:"link_id"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 JWTs for sessions and link previews.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	privBytes, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privBytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubBytes, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return &Provider{privateKey: privKey, publicKey: pubKey}, nil
}

// NewProviderFromKeys builds a Provider from in-memory keys. Used by tests.
func NewProviderFromKeys(priv *rsa.PrivateKey) *Provider {
	return &Provider{privateKey: priv, publicKey: &priv.PublicKey}
}

// SignPreview mints a preview token for (userID, linkID), valid for ttl.
func (p *Provider) SignPreview(userID, linkID string, ttl time.Duration) (string, error) {
	claims := PreviewClaims{
		UserID: userID,
		LinkID: linkID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

// VerifyPreview parses and validates a preview token.
func (p *Provider) VerifyPreview(tokenStr string) (*PreviewClaims, error) {
	var claims PreviewClaims
	if err := p.verify(tokenStr, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// SignSession mints a session Bearer token for a dashboard user.
func (p *Provider) SignSession(userID, teamID string, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		UserID: userID,
		TeamID: teamID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(p.privateKey)
}

// VerifySession parses and validates a session Bearer token.
func (p *Provider) VerifySession(tokenStr string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := p.verify(tokenStr, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (p *Provider) verify(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.publicKey, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errors.New("invalid token claims")
	}
	return nil
}
