package domain

import "fmt"

// LinkVerification stores both short-lived OTP codes and long-lived
// verification tokens in one shape.
// PK: identifier, SK: token — lookups always use the exact pair, so a token
// value alone never grants access for a different link or email.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL; correctness never
// depends on the TTL sweep, expired rows are treated as absent on read and
// deleted when encountered.
type LinkVerification struct {
	Identifier string `json:"identifier" dynamodbav:"identifier"`
	Token      string `json:"token" dynamodbav:"token"`
	ExpiresAt  int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// OTPIdentifier keys a one-time code to a (link, email) pair.
func OTPIdentifier(linkID, email string) string {
	return fmt.Sprintf("otp:%s:%s", linkID, email)
}

// VerificationIdentifier keys a long-lived token to a (link, team, email)
// tuple.
func VerificationIdentifier(linkID, teamID, email string) string {
	return fmt.Sprintf("link-verification:%s:%s:%s", linkID, teamID, email)
}
