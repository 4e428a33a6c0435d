// internal/app/system/timeouts/timeouts.go
// Package timeouts centralizes the context deadlines handlers use for
// database and I/O work, so a slow Mongo never pins an HTTP worker.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads and token validation
//   - Medium: list queries and moderate writes
//   - Long: multi-step writes (signup's hash-then-insert)
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
)

// Ping returns the deadline for connectivity checks.
func Ping() time.Duration { return ping }

// Short returns the deadline for simple lookups.
func Short() time.Duration { return short }

// Medium returns the deadline for list queries and moderate writes.
func Medium() time.Duration { return medium }

// Long returns the deadline for multi-step writes.
func Long() time.Duration { return long }
