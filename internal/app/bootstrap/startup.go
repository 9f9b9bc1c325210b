// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/localfind/localfind/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
	})

	if appCfg.MailSMTPHost == "" {
		logger.Info("outbound mail disabled (no SMTP host configured)")
	}
	logger.Info("photo storage ready",
		zap.String("path", appCfg.StorageLocalPath),
		zap.String("url_prefix", appCfg.StorageLocalURL))
	return nil
}
