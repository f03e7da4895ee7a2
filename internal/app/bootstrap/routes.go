// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"errors"
	"net/http"

	availabilityfeature "github.com/dalemusser/vetmentor/internal/app/features/availability"
	dashboardfeature "github.com/dalemusser/vetmentor/internal/app/features/dashboard"
	healthfeature "github.com/dalemusser/vetmentor/internal/app/features/health"
	mentorsfeature "github.com/dalemusser/vetmentor/internal/app/features/mentors"
	notificationsfeature "github.com/dalemusser/vetmentor/internal/app/features/notifications"
	profilefeature "github.com/dalemusser/vetmentor/internal/app/features/profile"
	requestsfeature "github.com/dalemusser/vetmentor/internal/app/features/requests"
	reviewsfeature "github.com/dalemusser/vetmentor/internal/app/features/reviews"
	sessionsfeature "github.com/dalemusser/vetmentor/internal/app/features/sessions"
	webhooksfeature "github.com/dalemusser/vetmentor/internal/app/features/webhooks"
	userstore "github.com/dalemusser/vetmentor/internal/app/store/users"
	"github.com/dalemusser/vetmentor/internal/app/system/auth"
	"github.com/dalemusser/vetmentor/internal/app/system/metrics"
	"github.com/dalemusser/vetmentor/internal/app/system/requestid"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisPinger adapts a Redis client to healthfeature.Pinger.
type redisPinger struct{ c *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.c.Ping(ctx).Err() }

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. It installs the request-id, metrics and identity
// middleware and mounts one sub-router per feature.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := deps.services
	if svc == nil || svc.booking == nil {
		return nil, errors.New("bootstrap: Startup has not run")
	}

	verifier, err := auth.NewVerifier(auth.VerifierConfig{
		PublicKeyPEM: appCfg.JWTPublicKey,
		Secret:       appCfg.JWTSecret,
		Issuer:       appCfg.JWTIssuer,
	})
	if err != nil {
		logger.Error("token verifier init failed", zap.Error(err))
		return nil, err
	}
	authMgr := auth.NewManager(verifier, appCfg.CookieName, logger)

	// Resolve the token subject to the local user on every request so
	// role changes and deactivations take effect immediately.
	authMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(metrics.Middleware)
	r.Use(authMgr.LoadUser)

	r.Handle("/metrics", metrics.Handler())

	var cache healthfeature.Pinger
	if deps.Redis != nil {
		cache = redisPinger{deps.Redis}
	}
	healthHandler := healthfeature.NewHandler(deps.MongoClient, cache, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Identity provider webhooks (signature-checked, no user session).
	if appCfg.WebhookSecret != "" {
		whHandler, err := webhooksfeature.NewHandler(appCfg.WebhookSecret, svc.booking, svc.audit, logger)
		if err != nil {
			logger.Error("webhook verifier init failed", zap.Error(err))
			return nil, err
		}
		r.Mount("/webhooks", webhooksfeature.Routes(whHandler, svc.webhooks))
	} else {
		logger.Warn("webhook_signing_secret not set; identity webhooks disabled")
	}

	// Caller's own profile
	r.Mount("/me", profilefeature.Routes(profilefeature.NewHandler(svc.booking, logger)))

	// Mentor discovery
	r.Mount("/mentors", mentorsfeature.Routes(mentorsfeature.NewHandler(svc.booking, logger)))

	// Booking
	r.Mount("/availability", availabilityfeature.Routes(availabilityfeature.NewHandler(svc.booking, logger)))
	r.Mount("/requests", requestsfeature.Routes(requestsfeature.NewHandler(svc.booking, logger)))
	r.Mount("/sessions", sessionsfeature.Routes(sessionsfeature.NewHandler(svc.booking, logger)))
	r.Mount("/reviews", reviewsfeature.Routes(reviewsfeature.NewHandler(svc.booking, logger)))

	// Notifications and dashboard
	r.Mount("/notifications", notificationsfeature.Routes(notificationsfeature.NewHandler(svc.booking, logger)))
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardfeature.NewHandler(svc.booking, logger)))

	return r, nil
}
