// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	healthfeature "github.com/localfind/localfind/internal/app/features/health"
	providersfeature "github.com/localfind/localfind/internal/app/features/providers"
	providerstore "github.com/localfind/localfind/internal/app/store/providers"
	"github.com/localfind/localfind/internal/app/store/queries/providerview"
	reviewstore "github.com/localfind/localfind/internal/app/store/reviews"
	servicestore "github.com/localfind/localfind/internal/app/store/services"
	"github.com/localfind/localfind/internal/app/system/auth"
	"github.com/localfind/localfind/internal/app/system/blobstore"
	"github.com/localfind/localfind/internal/app/system/mailer"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. LocalFind wires the provider
// directory API, the health endpoint, and the static file server for
// locally stored photos.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	blobs, err := blobstore.NewLocal(appCfg.StorageLocalPath, appCfg.StorageLocalURL)
	if err != nil {
		logger.Error("photo storage init failed", zap.Error(err))
		return nil, err
	}

	// Outbound mail is optional; a nil sender disables the welcome
	// email without touching the profile flow.
	var mail mailer.Sender
	if appCfg.MailSMTPHost != "" {
		mail = &mailer.SMTPSender{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			User:     appCfg.MailSMTPUser,
			Pass:     appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
		}
	}

	db := deps.MongoDatabase
	providers := providerstore.New(db)
	view := providerview.NewExpander(servicestore.New(db), reviewstore.New(db))

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged
	// in, making the caller available via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Uploaded photos stored on the local backend
	r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))

	// Provider directory API
	providersHandler := providersfeature.NewHandler(providers, view, blobs, mail, appCfg.SiteName, appCfg.BaseURL, logger)
	r.Mount("/api/providers", providersfeature.Routes(providersHandler))

	return r, nil
}
