package http

import (
	"github.com/go-dataroom-api/internal/application/verification"
	"github.com/go-dataroom-api/internal/application/view"
	jwtinfra "github.com/go-dataroom-api/internal/infrastructure/jwt"
	"github.com/go-dataroom-api/internal/infrastructure/smtp"
	"github.com/go-dataroom-api/internal/infrastructure/sns"
	"github.com/go-dataroom-api/internal/transport/http/handler"
)

// Deps holds all infrastructure dependencies for the router. Stores are held
// through the minimal interfaces each consumer defines, so tests can wire
// mocks where the wiring code wires DynamoDB.
type Deps struct {
	LinkRepo         handler.LinkStore
	TeamRepo         handler.TeamStore
	DocumentRepo     handler.DocumentStore
	ViewerRepo       view.ViewerStore
	ViewRepo         view.ViewStore
	VerificationRepo verification.TokenStore

	Mailer    smtp.Mailer
	Publisher sns.Publisher
	Resolver  handler.ContentResolver

	JWTProvider *jwtinfra.Provider

	// PasswordKey is the AES key for the legacy password scheme; nil when no
	// legacy links remain.
	PasswordKey []byte
}
