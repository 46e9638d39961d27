// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/studysphere/internal/app/resources"
	userstore "github.com/dalemusser/studysphere/internal/app/store/users"
	"github.com/dalemusser/studysphere/internal/app/system/authutil"
	"github.com/dalemusser/studysphere/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if appCfg.AdminPassword != "" {
		if err := ensureAdminAccount(ctx, userstore.New(deps.MongoDatabase), appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
			return err
		}
	}
	return nil
}

type passwordUpserter interface {
	UpsertPassword(ctx context.Context, email, fullName, passwordHash string) (bool, error)
}

// ensureAdminAccount creates the admin's password account, or resets its
// password to the configured one.
func ensureAdminAccount(ctx context.Context, users passwordUpserter, email, password string, logger *zap.Logger) error {
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	created, err := users.UpsertPassword(ctx, email, "Site Admin", hash)
	if err != nil {
		logger.Error("seed admin account failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("seed admin account: %w", err)
	}
	if created {
		logger.Info("created admin account", zap.String("email", email))
	} else {
		logger.Info("refreshed admin password", zap.String("email", email))
	}
	return nil
}
