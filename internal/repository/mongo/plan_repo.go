// internal/repository/mongo/plan_repo.go
package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
	"github.com/abhishyantkhare/marathon-trainer/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "training_plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new PlanVersion repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create appends a new plan version. Existing versions are never touched.
func (r *mongoPlanRepository) Create(ctx context.Context, version *domain.PlanVersion) (primitive.ObjectID, error) {
	if version.UserID == primitive.NilObjectID || version.PlanJSON == "" || version.Source == "" {
		return primitive.NilObjectID, errors.New("plan version requires userId, planJson, and source")
	}
	version.ID = primitive.NewObjectID()
	version.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, version)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan version ID")
	}
	return insertedID, nil
}

// GetLatestByUserID retrieves the most recently created plan version for a user.
func (r *mongoPlanRepository) GetLatestByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.PlanVersion, error) {
	var version domain.PlanVersion
	filter := bson.M{"userId": userID}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&version)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Compound index for the main query pattern: latest version per user.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
