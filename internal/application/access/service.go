package access

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-dataroom-api/internal/application/verification"
	"github.com/go-dataroom-api/internal/domain"
	"github.com/go-dataroom-api/internal/pkg/listmatch"
	"github.com/go-dataroom-api/internal/pkg/password"
	"github.com/go-dataroom-api/internal/pkg/validate"
)

// Rate-limit key prefixes. Each operation carries its own budget per client
// IP, so a burst of code requests cannot starve token verification.
const (
	limitOTPRequest  = "otp-request:"
	limitOTPVerify   = "otp-verify:"
	limitTokenVerify = "token-verify:"
)

// Denial report tags.
const (
	reasonGlobal = "global"
	reasonAllow  = "allow"
	reasonDeny   = "deny"
)

// Limiter grants or denies a request under a keyed budget.
type Limiter interface {
	Allow(key string) bool
}

// Reporter emits async denied-access reports. Implementations return
// immediately; a report never fails the request.
type Reporter interface {
	PublishDeniedAccess(linkID, email, reason string)
}

// Service evaluates the ordered gate chain for one request and produces
// exactly one terminal Result.
type Service interface {
	Evaluate(ctx context.Context, rc *RequestContext) Result
}

type gate func(ctx context.Context, rc *RequestContext) Result

type service struct {
	tokens      verification.Service
	limiter     Limiter
	reporter    Reporter
	passwordKey []byte
	gates       []gate
}

func NewService(tokens verification.Service, limiter Limiter, reporter Reporter, passwordKey []byte) Service {
	s := &service{
		tokens:      tokens,
		limiter:     limiter,
		reporter:    reporter,
		passwordKey: passwordKey,
	}
	// Gate order is a contract: later gates assume earlier ones passed.
	s.gates = []gate{
		s.archived,
		s.emailRequired,
		s.emailFormat,
		s.password,
		s.agreement,
		s.blockList,
		s.allowList,
		s.denyList,
		s.emailAuthentication,
	}
	return s
}

// Evaluate runs the gates in order and stops at the first non-Allow result.
// Team members (valid preview session) skip every gate.
func (s *service) Evaluate(ctx context.Context, rc *RequestContext) Result {
	if rc.IsTeamMember {
		return allowed()
	}
	out := allowed()
	for _, g := range s.gates {
		res := g(ctx, rc)
		if res.Kind != Allow {
			return res
		}
		if res.EmailVerified {
			out.EmailVerified = true
		}
		if res.VerificationToken != "" {
			out.VerificationToken = res.VerificationToken
		}
	}
	return out
}

func (s *service) archived(_ context.Context, rc *RequestContext) Result {
	if rc.Link.Archived {
		return denied(http.StatusNotFound, "Link is no longer available")
	}
	return allowed()
}

func (s *service) emailRequired(_ context.Context, rc *RequestContext) Result {
	requiresEmail := rc.Link.EmailProtected || rc.Link.EmailAuthenticated
	if requiresEmail && strings.TrimSpace(rc.Email) == "" {
		return denied(http.StatusBadRequest, "Email is required to view this content")
	}
	return allowed()
}

func (s *service) emailFormat(_ context.Context, rc *RequestContext) Result {
	if rc.Email != "" && !validate.Email(rc.Email) {
		return denied(http.StatusBadRequest, "Invalid email address")
	}
	return allowed()
}

func (s *service) password(_ context.Context, rc *RequestContext) Result {
	if !rc.Link.HasPassword() {
		return allowed()
	}
	if strings.TrimSpace(rc.Password) == "" {
		return denied(http.StatusBadRequest, "Password is required to view this content")
	}
	ok, err := password.Verify(rc.Link.Password, rc.Password, s.passwordKey)
	if err != nil {
		slog.Error("verify link password", "link_id", rc.Link.LinkID, "err", err)
		return denied(http.StatusInternalServerError, "Unable to verify password")
	}
	if !ok {
		return denied(http.StatusForbidden, "Invalid password")
	}
	return allowed()
}

func (s *service) agreement(_ context.Context, rc *RequestContext) Result {
	if rc.Link.EnableAgreement && !rc.HasConfirmedAgreement {
		return denied(http.StatusBadRequest, "You must accept the agreement to view this content")
	}
	return allowed()
}

func (s *service) blockList(_ context.Context, rc *RequestContext) Result {
	if rc.Email == "" || len(rc.Team.BlockList) == 0 {
		return allowed()
	}
	matched, err := listmatch.Any(rc.Email, rc.Team.BlockList)
	if matched {
		s.reporter.PublishDeniedAccess(rc.Link.LinkID, rc.Email, reasonGlobal)
		return denied(http.StatusForbidden, "Access denied")
	}
	if err != nil {
		// A broken list entry is the team's misconfiguration, not a block.
		slog.Error("block list misconfigured", "team_id", rc.Team.TeamID, "err", err)
		return denied(http.StatusBadRequest, "Access list configuration is invalid; contact the link owner")
	}
	return allowed()
}

func (s *service) allowList(_ context.Context, rc *RequestContext) Result {
	if len(rc.Link.AllowList) == 0 {
		return allowed()
	}
	matched, err := listmatch.Any(rc.Email, rc.Link.AllowList)
	if err != nil {
		slog.Warn("allow list has malformed entries", "link_id", rc.Link.LinkID, "err", err)
	}
	if !matched {
		s.reporter.PublishDeniedAccess(rc.Link.LinkID, rc.Email, reasonAllow)
		return denied(http.StatusForbidden, "Email not authorized to view this content")
	}
	return allowed()
}

func (s *service) denyList(_ context.Context, rc *RequestContext) Result {
	if len(rc.Link.DenyList) == 0 {
		return allowed()
	}
	matched, err := listmatch.Any(rc.Email, rc.Link.DenyList)
	if err != nil {
		slog.Warn("deny list has malformed entries", "link_id", rc.Link.LinkID, "err", err)
	}
	if matched {
		s.reporter.PublishDeniedAccess(rc.Link.LinkID, rc.Email, reasonDeny)
		return denied(http.StatusForbidden, "Email not authorized to view this content")
	}
	return allowed()
}

func (s *service) emailAuthentication(ctx context.Context, rc *RequestContext) Result {
	if !rc.Link.EmailAuthenticated {
		return allowed()
	}

	switch {
	case rc.Code != "":
		if !s.limiter.Allow(limitOTPVerify + rc.ClientIP) {
			return denied(http.StatusTooManyRequests, "Too many requests. Try again later")
		}
		raw, err := s.tokens.VerifyOTP(ctx, rc.Link, rc.Email, rc.Code)
		if err != nil {
			return s.verificationDenied(rc, err)
		}
		return Result{Kind: Allow, EmailVerified: true, VerificationToken: raw}

	case rc.Token != "":
		if !s.limiter.Allow(limitTokenVerify + rc.ClientIP) {
			return denied(http.StatusTooManyRequests, "Too many requests. Try again later")
		}
		// A token presented for a different email than the request's cannot
		// vouch for this visit.
		if rc.VerifiedEmail != "" && !strings.EqualFold(rc.VerifiedEmail, rc.Email) {
			return s.requestOTP(ctx, rc)
		}
		if err := s.tokens.VerifyToken(ctx, rc.Link, rc.Email, rc.Token); err != nil {
			return s.verificationDenied(rc, err)
		}
		return Result{Kind: Allow, EmailVerified: true}

	default:
		return s.requestOTP(ctx, rc)
	}
}

func (s *service) requestOTP(ctx context.Context, rc *RequestContext) Result {
	if !s.limiter.Allow(limitOTPRequest + rc.ClientIP) {
		return denied(http.StatusTooManyRequests, "Too many requests. Try again later")
	}
	if err := s.tokens.IssueOTP(ctx, rc.Link, rc.Email); err != nil {
		slog.Error("issue one-time code", "link_id", rc.Link.LinkID, "err", err)
		return denied(http.StatusInternalServerError, "Unable to send verification email")
	}
	return Result{Kind: NeedVerification}
}

func (s *service) verificationDenied(rc *RequestContext, err error) Result {
	msg := "Unauthorized access. Request new access"
	if errors.Is(err, domain.ErrExpired) {
		msg = "Verification expired. Request new access"
	} else if !errors.Is(err, domain.ErrUnauthorized) {
		slog.Error("verify email authentication", "link_id", rc.Link.LinkID, "err", err)
		return denied(http.StatusInternalServerError, "Unable to verify access")
	}
	res := denied(http.StatusUnauthorized, msg)
	res.ResetVerification = true
	return res
}
