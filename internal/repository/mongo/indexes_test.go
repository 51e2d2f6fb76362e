package mongo

import (
	"bytes"
	"context"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// unreachableCollection returns a collection backed by a client that cannot
// reach any server, so every command fails after a short server-selection
// timeout. mongo.Connect does not dial eagerly, which makes this cheap.
func unreachableCollection(t *testing.T, name string) *mongo.Collection {
	t.Helper()
	opts := options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(100 * time.Millisecond)
	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client.Database("marathon_trainer_test").Collection(name)
}

func TestEnsureIndexes_WarnsOnFailure(t *testing.T) {
	tests := []struct {
		name   string
		ensure func(ctx context.Context, collection *mongo.Collection)
	}{
		{userCollectionName, EnsureUserIndexes},
		{profileCollectionName, EnsureProfileIndexes},
		{planCollectionName, EnsurePlanIndexes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log.SetOutput(&buf)
			defer log.SetOutput(os.Stderr)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			tt.ensure(ctx, unreachableCollection(t, tt.name))

			if !strings.Contains(buf.String(), "WARN: Failed to create indexes") {
				t.Errorf("index-creation failure not logged, output: %q", buf.String())
			}
		})
	}
}
