// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"crypto/sha256"
	"net/http"
	"strings"

	adminfeature "github.com/dalemusser/studysphere/internal/app/features/admin"
	apifeature "github.com/dalemusser/studysphere/internal/app/features/api"
	authgooglefeature "github.com/dalemusser/studysphere/internal/app/features/authgoogle"
	errorsfeature "github.com/dalemusser/studysphere/internal/app/features/errors"
	healthfeature "github.com/dalemusser/studysphere/internal/app/features/health"
	homefeature "github.com/dalemusser/studysphere/internal/app/features/home"
	loginfeature "github.com/dalemusser/studysphere/internal/app/features/login"
	logoutfeature "github.com/dalemusser/studysphere/internal/app/features/logout"
	sectionsfeature "github.com/dalemusser/studysphere/internal/app/features/sections"
	subjectsfeature "github.com/dalemusser/studysphere/internal/app/features/subjects"
	tipsfeature "github.com/dalemusser/studysphere/internal/app/features/tips"
	loginstore "github.com/dalemusser/studysphere/internal/app/store/logins"
	oauthstatestore "github.com/dalemusser/studysphere/internal/app/store/oauthstate"
	"github.com/dalemusser/studysphere/internal/app/store/queries/subjectresources"
	resourcestore "github.com/dalemusser/studysphere/internal/app/store/resources"
	sectionitemstore "github.com/dalemusser/studysphere/internal/app/store/sectionitems"
	userstore "github.com/dalemusser/studysphere/internal/app/store/users"
	"github.com/dalemusser/studysphere/internal/app/system/admingate"
	"github.com/dalemusser/studysphere/internal/app/system/auth"
	"github.com/dalemusser/studysphere/internal/app/system/blobstore"
	"github.com/dalemusser/studysphere/internal/app/system/catalog"
	"github.com/dalemusser/studysphere/internal/app/system/limits"
	"github.com/dalemusser/studysphere/internal/app/system/markdown"
	"github.com/dalemusser/studysphere/internal/app/system/ratelimit"
	"github.com/dalemusser/studysphere/internal/app/system/uploads"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for StudySphere.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. It boots the template engine, builds the
// stores and the upload pipeline, applies session, CSRF and admin-gate
// middleware, and mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	blobs, err := blobstore.New(context.Background(), blobstore.Config{
		Type:        appCfg.StorageType,
		LocalPath:   appCfg.StorageLocalPath,
		LocalURL:    appCfg.StorageLocalURL,
		S3Region:    appCfg.StorageS3Region,
		S3Bucket:    appCfg.StorageS3Bucket,
		S3Prefix:    appCfg.StorageS3Prefix,
		S3Endpoint:  appCfg.StorageS3Endpoint,
		S3AccessKey: appCfg.StorageS3AccessKey,
		S3SecretKey: appCfg.StorageS3SecretKey,
		S3PublicURL: appCfg.StorageS3PublicURL,
	})
	if err != nil {
		logger.Error("blob storage init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	cat := catalog.Default()
	md := markdown.New()
	gate := admingate.New(appCfg.AdminEmail, appCfg.AdminAccessKey)

	resources := resourcestore.New(db, logger)
	items := sectionitemstore.New(db, logger)
	querier := subjectresources.New(resources, logger, appCfg.FeedPollInterval)
	pipeline := uploads.New(resources, items, blobs, cat, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()
	forbidden := http.HandlerFunc(errorsHandler.Forbidden)

	r := chi.NewRouter()

	// Client address first, then the admin gate so every handler, error
	// pages included, can classify the visitor, then the session user.
	// Bodies are capped before CSRF parses the form.
	r.Use(realIP(appCfg.TrustProxyHeaders))
	r.Use(gate.Middleware)
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(limits.BodyLimit)
	r.Use(csrfMiddleware(appCfg.SessionKey, secure))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, storageName(appCfg.StorageType), logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Uploaded files, when they live on local disk
	if storageName(appCfg.StorageType) == "local" {
		prefix := "/" + strings.Trim(appCfg.StorageLocalURL, "/")
		r.Handle(prefix+"/*", fileserver.Handler(prefix, appCfg.StorageLocalPath))
	}

	// Public pages
	homeHandler := homefeature.NewHandler(cat, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	subjectsHandler := subjectsfeature.NewHandler(querier, cat, md, errLog, logger)
	r.Mount("/subjects", subjectsfeature.Routes(subjectsHandler))
	r.Mount("/subject", subjectsfeature.SubjectRoutes(subjectsHandler))

	sectionsHandler := sectionsfeature.NewHandler(items, pipeline, cat, appCfg.FeedPollInterval, errLog, logger)
	r.Mount("/sections", sectionsfeature.Routes(sectionsHandler, gate, forbidden))

	tipsHandler := tipsfeature.NewHandler(md, errLog, logger)
	r.Mount("/study-tips", tipsfeature.Routes(tipsHandler))

	apiHandler := apifeature.NewHandler(querier, cat, logger)
	r.Mount("/api", apifeature.Routes(apiHandler))

	// Authentication
	logins := loginstore.New(db)
	googleHandler := authgooglefeature.NewHandler(sessionMgr, oauthstatestore.New(db), logins,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	loginHandler := loginfeature.NewHandler(userstore.New(db), sessionMgr, ratelimit.NewLoginLimiter(), logins, errLog, googleHandler.IsConfigured(), logger)
	r.Mount(auth.LoginPath, loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Admin upload
	adminHandler := adminfeature.NewHandler(pipeline, cat, errLog, logger)
	r.Mount("/admin", adminfeature.Routes(adminHandler, gate, forbidden))

	// Error pages
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}

// csrfMiddleware protects every unsafe method with gorilla/csrf. The token
// key is derived from the session key so one secret configures both.
func csrfMiddleware(sessionKey string, secure bool) func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte("csrf:" + sessionKey))
	protect := csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			h.ServeHTTP(w, r)
		})
	}
}

// realIP rewrites RemoteAddr from proxy headers only when trusted. The
// headers are client-controlled unless a proxy in front overwrites them.
func realIP(trust bool) func(http.Handler) http.Handler {
	if trust {
		return middleware.RealIP
	}
	return func(next http.Handler) http.Handler { return next }
}

func storageName(storageType string) string {
	if t := strings.ToLower(strings.TrimSpace(storageType)); t != "" {
		return t
	}
	return "local"
}
