// Package listmatch implements the allow/deny/block list semantics shared by
// every email list a link or team carries: an entry starting with "@" is a
// domain-suffix pattern, any other entry is an exact-address pattern. Domains
// compare case-insensitively; the local part of an exact entry compares
// byte-exact.
package listmatch

import (
	"errors"
	"strings"
)

// ErrMalformedEntry marks a list entry that is neither a domain pattern nor
// an email address. It is a configuration error on the list owner's side,
// not a property of the visitor's email.
var ErrMalformedEntry = errors.New("malformed list entry")

// Entry reports whether email matches a single list entry.
func Entry(email, entry string) (bool, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return false, ErrMalformedEntry
	}
	if strings.HasPrefix(entry, "@") {
		if len(entry) == 1 {
			return false, ErrMalformedEntry
		}
		return strings.HasSuffix(strings.ToLower(email), strings.ToLower(entry)), nil
	}
	if !strings.Contains(entry, "@") {
		return false, ErrMalformedEntry
	}
	return equalAddress(email, entry), nil
}

// Any reports whether email matches at least one entry. When a malformed
// entry is encountered it is reported, but matching continues: a real match
// elsewhere in the list takes precedence over the configuration error.
func Any(email string, entries []string) (bool, error) {
	var entryErr error
	for _, e := range entries {
		ok, err := Entry(email, e)
		if err != nil {
			if entryErr == nil {
				entryErr = err
			}
			continue
		}
		if ok {
			return true, nil
		}
	}
	return false, entryErr
}

// equalAddress compares two full addresses: exact local part,
// case-insensitive domain.
func equalAddress(a, b string) bool {
	la, da, okA := splitAddress(a)
	lb, db, okB := splitAddress(b)
	if !okA || !okB {
		return a == b
	}
	return la == lb && strings.EqualFold(da, db)
}

func splitAddress(s string) (local, domain string, ok bool) {
	i := strings.LastIndexByte(s, '@')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i:], true
}
