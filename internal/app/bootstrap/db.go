// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	loginstore "github.com/dalemusser/studysphere/internal/app/store/logins"
	oauthstatestore "github.com/dalemusser/studysphere/internal/app/store/oauthstate"
	resourcestore "github.com/dalemusser/studysphere/internal/app/store/resources"
	sectionitemstore "github.com/dalemusser/studysphere/internal/app/store/sectionitems"
	userstore "github.com/dalemusser/studysphere/internal/app/store/users"
	"github.com/dalemusser/studysphere/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetAppName("studysphere")

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		logger.Error("mongo connect failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("mongo ping failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureSchema creates the indexes every store relies on. Index creation is
// idempotent, so this runs on every start.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase
	stores := []struct {
		name string
		s    indexer
	}{
		{"resources", resourcestore.New(db, logger)},
		{"subject_items", sectionitemstore.New(db, logger)},
		{"users", userstore.New(db)},
		{"oauth_states", oauthstatestore.New(db)},
		{"login_records", loginstore.New(db)},
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	for _, st := range stores {
		if err := st.s.EnsureIndexes(ctx); err != nil {
			logger.Error("ensure indexes failed", zap.String("collection", st.name), zap.Error(err))
			return fmt.Errorf("ensure %s indexes: %w", st.name, err)
		}
	}
	logger.Info("indexes ensured", zap.Int("collections", len(stores)))
	return nil
}
