// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework side: ports, TLS, log level, CORS and body limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Identity provider tokens. One of JWTPublicKey (RS256) or JWTSecret
	// (HS256, development) must be set.
	JWTPublicKey string
	JWTSecret    string
	JWTIssuer    string
	CookieName   string // provider session cookie read when no bearer token is sent

	// Identity webhook
	WebhookSecret string // Svix signing secret (whsec_...); blank disables /webhooks

	// Request throttling
	RedisURL         string // blank keeps the throttle in process
	RequestRateLimit int    // session requests per mentee per hour

	// Scheduled jobs
	JobsEnabled      bool
	ReminderInterval time.Duration
	ReminderLead     time.Duration
	DigestInterval   time.Duration

	// Audit logging destination: all, db, log or off
	AuditLog string

	// Base URL prefixed to notification links (e.g., "https://vetmentor.org")
	BaseURL string
}
