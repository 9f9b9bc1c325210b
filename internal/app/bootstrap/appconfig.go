// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: core handles ports,
// TLS, log level and format, CORS, and request limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: localfind-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Photo storage configuration
	StorageLocalPath string // Local storage path (e.g., "./uploads/photos")
	StorageLocalURL  string // URL prefix for serving stored photos (e.g., "/files/photos")

	// Email/SMTP configuration. Blank host disables outbound mail.
	MailSMTPHost string // SMTP server host (localhost for Mailpit, SES endpoint in production)
	MailSMTPPort int    // SMTP server port (1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty for Mailpit)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@localfind.example)
	MailFromName string // From display name

	// Site identity used in email copy and links
	SiteName string // e.g., "Local Service Finder"
	BaseURL  string // e.g., "https://localfind.example" or "http://localhost:3000"

	// Handler operation deadlines (applied at startup; see
	// internal/app/system/timeouts)
	TimeoutMedium time.Duration // reads and list queries
	TimeoutLong   time.Duration // photo upload (external storage)
}
