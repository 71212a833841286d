package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
	ErrRateLimited  = errors.New("rate limited")

	// ErrExpired marks a verification code or token whose validity window has
	// passed. Handlers map it to the same status as ErrUnauthorized but with
	// an expiry-specific message and a reset signal.
	ErrExpired = errors.New("expired")
)
