package access

import "github.com/go-dataroom-api/internal/domain"

// RequestContext carries everything a gate may consult: the link and team
// under evaluation plus the visitor-supplied fields. It is assembled once per
// request and never mutated by gates.
type RequestContext struct {
	Link *domain.Link
	Team *domain.Team

	Email                 string
	Password              string
	Code                  string
	Token                 string
	VerifiedEmail         string
	HasConfirmedAgreement bool

	// ClientIP keys the per-operation rate limits.
	ClientIP string

	// IsTeamMember is true when a valid preview session was established for
	// this request; every visitor gate is skipped.
	IsTeamMember bool
}

// Kind tags a gate outcome.
type Kind int

const (
	// Allow lets the request continue to the next gate, or to the recorder
	// when it is the pipeline's final outcome.
	Allow Kind = iota
	// Deny terminates the request with Status and Message.
	Deny
	// NeedVerification pauses the flow: a one-time code was emailed and the
	// visitor must come back with it.
	NeedVerification
)

// Result is the tagged outcome of one gate, and of the pipeline as a whole.
type Result struct {
	Kind    Kind
	Status  int
	Message string

	// ResetVerification tells the client to restart the email verification
	// flow instead of retrying what it has.
	ResetVerification bool

	// EmailVerified and VerificationToken are only meaningful on Allow:
	// whether the visit proved email ownership, and the fresh long-lived
	// token issued on a successful code exchange.
	EmailVerified     bool
	VerificationToken string
}

func allowed() Result { return Result{Kind: Allow} }

func denied(status int, message string) Result {
	return Result{Kind: Deny, Status: status, Message: message}
}
