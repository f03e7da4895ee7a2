// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/vetmentor/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for vetmentor.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, redis_url, etc.
//   - Environment variables: VETMENTOR_MONGO_URI, VETMENTOR_REDIS_URL, etc.
//   - Command-line flags: --mongo_uri, --redis_url, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "vetmentor", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Identity provider
	{Name: "auth_jwt_public_key", Default: "", Desc: "PEM public key for RS256 identity tokens"},
	{Name: "auth_jwt_secret", Default: "", Desc: "HS256 secret for identity tokens (development only)"},
	{Name: "auth_jwt_issuer", Default: "", Desc: "Expected token issuer (blank skips the check)"},
	{Name: "auth_cookie_name", Default: "__session", Desc: "Provider session cookie name"},
	{Name: "webhook_signing_secret", Default: "", Desc: "Svix signing secret for identity webhooks"},

	// Throttling
	{Name: "redis_url", Default: "", Desc: "Redis URL for the shared request throttle (blank keeps it in process)"},
	{Name: "request_rate_limit", Default: 10, Desc: "Session requests a mentee may create per hour"},

	// Scheduled jobs
	{Name: "jobs_enabled", Default: true, Desc: "Run reminder and digest jobs in this process"},
	{Name: "reminder_interval", Default: "5m", Desc: "How often session reminders are checked"},
	{Name: "reminder_lead", Default: "24h", Desc: "How far ahead of a session its reminder is sent"},
	{Name: "digest_interval", Default: "24h", Desc: "How often daily digests are sent"},

	// Audit logging
	{Name: "audit_log", Default: auditlog.All, Desc: "Audit event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "base_url", Default: "", Desc: "Base URL prefixed to notification links"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig reads .env files, config files,
// VETMENTOR_* environment variables and flags, merged with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "VETMENTOR", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTPublicKey:  appValues.String("auth_jwt_public_key"),
		JWTSecret:     appValues.String("auth_jwt_secret"),
		JWTIssuer:     appValues.String("auth_jwt_issuer"),
		CookieName:    appValues.String("auth_cookie_name"),
		WebhookSecret: appValues.String("webhook_signing_secret"),

		RedisURL:         appValues.String("redis_url"),
		RequestRateLimit: appValues.Int("request_rate_limit"),

		JobsEnabled:      appValues.Bool("jobs_enabled"),
		ReminderInterval: appValues.Duration("reminder_interval", 5*time.Minute),
		ReminderLead:     appValues.Duration("reminder_lead", 24*time.Hour),
		DigestInterval:   appValues.Duration("digest_interval", 24*time.Hour),

		AuditLog: appValues.String("audit_log"),
		BaseURL:  appValues.String("base_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It rejects a malformed MongoDB URI, a missing token key, an unknown audit
// destination and non-positive job timings before anything connects.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.JWTPublicKey == "" && appCfg.JWTSecret == "" {
		return errors.New("one of auth_jwt_public_key or auth_jwt_secret must be set")
	}

	switch appCfg.AuditLog {
	case auditlog.All, auditlog.DB, auditlog.Log, auditlog.Off:
	default:
		return fmt.Errorf("audit_log must be all, db, log or off (got %q)", appCfg.AuditLog)
	}

	if appCfg.RequestRateLimit < 0 {
		return errors.New("request_rate_limit cannot be negative")
	}

	for name, d := range map[string]time.Duration{
		"reminder_interval": appCfg.ReminderInterval,
		"reminder_lead":     appCfg.ReminderLead,
		"digest_interval":   appCfg.DigestInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive (got %s)", name, d)
		}
	}

	return nil
}
