package bootstrap

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/skillswaphq/skillswap/internal/domain/models"
	"github.com/skillswaphq/skillswap/internal/testutil"
)

func TestStartup_RecoversOrphanedSessions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "Alice", []string{"Go"}, nil)
	bob := fixtures.CreateMember(ctx, "Bob", []string{"Python"}, nil)
	orphan := fixtures.CreateRequest(ctx, alice, bob, "Python", "Go", models.RequestAccepted)

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	if err := Startup(ctx, nil, AppConfig{}, deps, zap.NewNop()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	count, err := db.Collection("exchange_sessions").CountDocuments(ctx, bson.M{"request_id": orphan.ID})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected the orphaned accepted request to gain a session, got %d", count)
	}
}
