// internal/app/system/sessionid/sessionid.go
// Package sessionid generates and validates public session identifiers.
//
// Identifiers look like "abc-def-ghi": three groups of three lowercase
// letters joined by hyphens. The form is short enough to read over a
// call and the 26^9 space keeps accidental collisions rare; the sessions
// store still collision-checks against its unique _id index on insert.
package sessionid

import (
	"crypto/rand"
	"regexp"
)

const (
	alphabet   = "abcdefghijklmnopqrstuvwxyz"
	groupLen   = 3
	groupCount = 3
)

var pattern = regexp.MustCompile(`^[a-z]{3}-[a-z]{3}-[a-z]{3}$`)

// New returns a fresh identifier in the xxx-xxx-xxx form using
// crypto/rand. It panics only if the OS entropy source is broken.
func New() string {
	raw := make([]byte, groupLen*groupCount)
	if _, err := rand.Read(raw); err != nil {
		panic("sessionid: entropy source unavailable: " + err.Error())
	}

	buf := make([]byte, 0, groupLen*groupCount+groupCount-1)
	for i, b := range raw {
		if i > 0 && i%groupLen == 0 {
			buf = append(buf, '-')
		}
		buf = append(buf, alphabet[int(b)%len(alphabet)])
	}
	return string(buf)
}

// Valid reports whether id is a well-formed session identifier.
func Valid(id string) bool { return pattern.MatchString(id) }
