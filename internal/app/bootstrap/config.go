// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/studysphere/internal/app/system/authutil"
	"github.com/dalemusser/studysphere/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for StudySphere.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, admin_email, etc.
//   - Environment variables: STUDYSPHERE_MONGO_URI, STUDYSPHERE_ADMIN_EMAIL, etc.
//   - Command-line flags: --mongo_uri, --admin_email, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "studysphere", Desc: "MongoDB database name"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "studysphere-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	// Admin gate
	{Name: "admin_email", Default: "", Desc: "Email of the site admin (exact, case-sensitive match)"},
	{Name: "admin_access_key", Default: "", Desc: "Secret ?key= value that reveals the admin button"},
	{Name: "admin_password", Default: "", Desc: "Seeds the admin's email/password account at startup when set"},

	// File storage configuration
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./data/files", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3 configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "", Desc: "S3 key prefix"},
	{Name: "storage_s3_endpoint", Default: "", Desc: "Custom S3 endpoint (MinIO and other S3-compatible stores)"},
	{Name: "storage_s3_access_key", Default: "", Desc: "S3 access key (blank uses the default AWS credential chain)"},
	{Name: "storage_s3_secret_key", Default: "", Desc: "S3 secret key"},
	{Name: "storage_s3_public_url", Default: "", Desc: "Public base URL for stored objects"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Public base URL (used for the OAuth callback)"},
	{Name: "feed_poll_interval", Default: "5s", Desc: "Polling interval for live listings when change streams are unavailable"},
	{Name: "trust_proxy_headers", Default: false, Desc: "Take the client IP from X-Forwarded-For/X-Real-IP (enable only behind a proxy that sets them)"},

	// Database operation timeouts
	{Name: "timeout_ping", Default: "2s", Desc: "Timeout for health-check pings"},
	{Name: "timeout_short", Default: "5s", Desc: "Timeout for single reads/writes during a request"},
	{Name: "timeout_long", Default: "30s", Desc: "Timeout for startup work and multi-file uploads"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, STUDYSPHERE_* for app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STUDYSPHERE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),
		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		AdminEmail:     strings.TrimSpace(appValues.String("admin_email")),
		AdminAccessKey: appValues.String("admin_access_key"),
		AdminPassword:  appValues.String("admin_password"),

		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageS3Endpoint:  appValues.String("storage_s3_endpoint"),
		StorageS3AccessKey: appValues.String("storage_s3_access_key"),
		StorageS3SecretKey: appValues.String("storage_s3_secret_key"),
		StorageS3PublicURL: appValues.String("storage_s3_public_url"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		BaseURL:           appValues.String("base_url"),
		FeedPollInterval:  appValues.Duration("feed_poll_interval", 5*time.Second),
		TrustProxyHeaders: appValues.Bool("trust_proxy_headers"),
	}

	timeouts.Configure(timeouts.Config{
		Ping:  appValues.Duration("timeout_ping", timeouts.DefaultPing),
		Short: appValues.Duration("timeout_short", timeouts.DefaultShort),
		Long:  appValues.Duration("timeout_long", timeouts.DefaultLong),
	})

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateAppConfig(appCfg)
}

// validateAppConfig holds the checks that need no logger or core config.
func validateAppConfig(appCfg AppConfig) error {
	if appCfg.AdminEmail == "" {
		return errors.New("admin_email is required")
	}
	if appCfg.AdminPassword != "" && len(appCfg.AdminPassword) < authutil.MinPasswordLength {
		return fmt.Errorf("admin_password must be at least %d characters", authutil.MinPasswordLength)
	}
	switch strings.ToLower(appCfg.StorageType) {
	case "", "local":
	case "s3":
		if appCfg.StorageS3Bucket == "" {
			return errors.New("storage_type s3 requires storage_s3_bucket")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want 'local' or 's3')", appCfg.StorageType)
	}
	if (appCfg.GoogleClientID == "") != (appCfg.GoogleClientSecret == "") {
		return errors.New("google_client_id and google_client_secret must be set together")
	}
	return nil
}
