package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"panoram/internal/config"
	"panoram/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
)

var testDB *mongo.Database

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		log.Printf("Repository tests skipped: MONGO_TEST_URI not set")
		os.Exit(0)
	}

	cfg := &config.Config{
		MongoURI:            uri,
		MongoDB:             fmt.Sprintf("panoram_test_%d", time.Now().UnixNano()),
		MongoTimeoutSeconds: 5,
	}

	client, db, err := database.Connect(context.Background(), cfg)
	if err != nil {
		log.Printf("Repository tests skipped: test database unavailable: %v", err)
		os.Exit(0)
	}
	testDB = db

	code := m.Run()

	_ = db.Drop(context.Background())
	_ = client.Disconnect(context.Background())
	os.Exit(code)
}

// resetCollections empties every collection the stores touch.
func resetCollections(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, name := range []string{database.UsersCollection, database.MoviesCollection, database.InteractionsCollection} {
		if _, err := testDB.Collection(name).DeleteMany(ctx, map[string]any{}); err != nil {
			t.Fatalf("reset %s: %v", name, err)
		}
	}
}
