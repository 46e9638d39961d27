package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoURIEnv names the variable that points tests at a MongoDB server.
// Tests that need a database are skipped when it is unset.
const MongoURIEnv = "STUDYSPHERE_TEST_MONGO_URI"

// DefaultTimeout bounds a single test's database work.
const DefaultTimeout = 10 * time.Second

// TestContext returns a context bounded by DefaultTimeout.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultTimeout)
}

// SetupTestDB connects to the server named by STUDYSPHERE_TEST_MONGO_URI and
// returns a fresh, uniquely named database that is dropped when the test
// ends. The test is skipped if the variable is unset or the server does not
// answer a ping.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := strings.TrimSpace(os.Getenv(MongoURIEnv))
	if uri == "" {
		t.Skipf("%s not set; skipping MongoDB-backed test", MongoURIEnv)
	}

	ctx, cancel := TestContext()
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("mongo connect failed: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("mongo ping failed: %v", err)
	}

	name := fmt.Sprintf("studysphere_test_%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
	db := client.Database(name)

	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}
