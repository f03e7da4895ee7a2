// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/vetmentor/internal/app/booking"
	"github.com/dalemusser/vetmentor/internal/app/store/audit"
	"github.com/dalemusser/vetmentor/internal/app/system/auditlog"
	"github.com/dalemusser/vetmentor/internal/app/system/ratelimit"
	"github.com/dalemusser/vetmentor/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// requestWindow is the throttle window for session requests.
const requestWindow = time.Hour

// services are the long-lived objects Startup builds.
type services struct {
	booking   *booking.Service
	audit     *auditlog.Logger
	throttle  ratelimit.Throttle
	limiter   *ratelimit.Limiter // in-process throttle, nil when Redis backs it
	webhooks  *ratelimit.Limiter
	scheduler *tasks.Scheduler
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It builds
// the booking service and starts the scheduled jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	svc := deps.services

	svc.audit = auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Uniform(appCfg.AuditLog))
	svc.throttle = newThrottle(appCfg, deps, svc)
	svc.webhooks = ratelimit.New(webhookLimit, time.Minute)

	svc.booking = booking.New(deps.MongoDatabase, booking.Options{
		Throttle: svc.throttle,
		Audit:    svc.audit,
		Log:      logger,
		LinkBase: appCfg.BaseURL,
	})

	svc.scheduler = tasks.NewScheduler(logger)
	if !appCfg.JobsEnabled {
		logger.Info("scheduled jobs disabled")
		return nil
	}
	svc.scheduler.Add(tasks.SessionReminderJob(svc.booking, logger, appCfg.ReminderInterval, appCfg.ReminderLead))
	svc.scheduler.Add(tasks.DailyDigestJob(svc.booking, logger, appCfg.DigestInterval))
	svc.scheduler.Start()
	return nil
}

// webhookLimit caps identity webhook deliveries per client IP per minute.
const webhookLimit = 120

// newThrottle picks the request throttle: Redis when configured so every
// instance shares one count, in process otherwise. A zero limit disables it.
func newThrottle(appCfg AppConfig, deps DBDeps, svc *services) ratelimit.Throttle {
	if appCfg.RequestRateLimit == 0 {
		return nil
	}
	if deps.Redis != nil {
		return ratelimit.NewRedis(deps.Redis, "vetmentor:requests", appCfg.RequestRateLimit, requestWindow)
	}
	svc.limiter = ratelimit.New(appCfg.RequestRateLimit, requestWindow)
	return svc.limiter
}
