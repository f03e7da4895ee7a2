// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the scheduled jobs and throttles, then closes Redis and
// MongoDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	deps.services.stop()

	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			logger.Warn("redis close failed", zap.Error(err))
		}
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}

// stop ends the background goroutines Startup launched.
func (s *services) stop() {
	if s == nil {
		return
	}
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if s.webhooks != nil {
		s.webhooks.Stop()
	}
}
