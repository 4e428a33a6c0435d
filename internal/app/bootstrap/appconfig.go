// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports,
// TLS, logging level, request limits). AppConfig is everything
// specific to inkwell itself.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Auth configuration
	TokenTTL   time.Duration // Bearer token lifetime
	BcryptCost int           // bcrypt work factor for password hashing

	// Signin brute-force protection
	SigninRateLimit  int           // Failed attempts allowed per window, per client IP
	SigninRateWindow time.Duration // Window length
}
