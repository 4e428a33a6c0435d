// internal/app/system/normalize/normalize.go
// Package normalize canonicalizes user-supplied identity fields before
// they reach a store. Every write and every lookup goes through the
// same function so "User@Example.com" and "user@example.com" are the
// same account.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Username trims surrounding whitespace but preserves case.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// Title trims surrounding whitespace from a session title.
func Title(s string) string {
	return strings.TrimSpace(s)
}
