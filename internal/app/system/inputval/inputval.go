// internal/app/system/inputval/inputval.go
// Package inputval validates user-supplied input at API boundaries.
//
// Validation here is syntactic only. Uniqueness (duplicate email) and
// credential checks belong to the stores and features that own them.
package inputval

import "strings"

// Field length caps. Values beyond these are rejected rather than
// truncated so clients learn about the problem.
const (
	MaxEmailLen    = 254
	MaxUsernameLen = 64
	MaxTitleLen    = 200
)

// IsValidEmail reports whether email is a syntactically valid address.
//
// The check is stricter than net/mail: display-name forms
// ("Name <a@b.c>") are rejected, as are leading/trailing/consecutive
// dots in either part. Single-label domains (user@localhost) are
// accepted for dev and test environments.
func IsValidEmail(email string) bool {
	if email == "" || len(email) > MaxEmailLen {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	local, domain := email[:at], email[at+1:]
	return validLocal(local) && validDomain(domain)
}

func validLocal(local string) bool {
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return false
	}
	if strings.Contains(local, "..") {
		return false
	}
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("!#$%&'*+-/=?^_`{|}~.", r):
		default:
			return false
		}
	}
	return true
}

func validDomain(domain string) bool {
	if strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return false
	}
	if strings.Contains(domain, "..") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		for _, r := range label {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			default:
				return false
			}
		}
	}
	return true
}

// IsValidUsername reports whether name is usable as a display name:
// non-blank after trimming and within the length cap.
func IsValidUsername(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed != "" && len(trimmed) <= MaxUsernameLen
}

// IsValidTitle reports whether a session title is non-blank and within
// the length cap.
func IsValidTitle(title string) bool {
	trimmed := strings.TrimSpace(title)
	return trimmed != "" && len(trimmed) <= MaxTitleLen
}
