// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/localfind/localfind/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for LocalFind.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: LOCALFIND_MONGO_URI, LOCALFIND_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "localfind", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: "", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "localfind-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Photo storage configuration
	{Name: "storage_local_path", Default: "./uploads/photos", Desc: "Local storage path for uploaded photos"},
	{Name: "storage_local_url", Default: "/files/photos", Desc: "URL prefix for serving stored photos"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank disables outbound mail)"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@localfind.example", Desc: "From email address"},
	{Name: "mail_from_name", Default: "Local Service Finder", Desc: "From display name"},

	// Site identity
	{Name: "site_name", Default: "Local Service Finder", Desc: "Site name used in email copy"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for email links"},

	// Handler operation deadlines
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for reads and list queries (e.g., 10s)"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for photo uploads (e.g., 30s)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// config.LoadWithAppConfig merges .env files, config files, environment
// variables (WAFFLE_* for core, LOCALFIND_* for app) and command-line
// flags, with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LOCALFIND", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		SiteName: appValues.String("site_name"),
		BaseURL:  appValues.String("base_url"),

		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI format is checked here so configuration errors
// surface before any connection attempt.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database must not be empty")
	}
	if appCfg.StorageLocalPath == "" {
		return fmt.Errorf("storage_local_path must not be empty")
	}

	if coreCfg.Env == "prod" && appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required in prod")
	}

	return nil
}
