// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds StudySphere's application configuration.
//
// WAFFLE's CoreConfig covers the framework-level settings (ports, TLS,
// logging, CORS, body limits). Everything specific to this app lives here
// and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase string // Database name within MongoDB

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: studysphere-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Admin gate
	AdminEmail     string // The single account treated as site admin (exact match)
	AdminAccessKey string // ?key= value that reveals the admin button
	AdminPassword  string // When set, seeds/refreshes the admin's password account at startup

	// File storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./data/files")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")

	// S3 configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix
	StorageS3Endpoint  string // Custom endpoint for S3-compatible stores (MinIO)
	StorageS3AccessKey string // Static credentials; blank uses the default AWS chain
	StorageS3SecretKey string
	StorageS3PublicURL string // Public base URL for stored objects

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// Base URL used to build the OAuth callback (e.g., "https://studysphere.example")
	BaseURL string

	// Live listings fall back to polling at this interval when change streams are unavailable
	FeedPollInterval time.Duration

	// Client IPs (login throttle, sign-in history) come from proxy headers
	// only when this is set
	TrustProxyHeaders bool
}
