// internal/repository/mongo/profile_repo.go
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

const profileCollectionName = "runner_profiles"

// mongoProfileRepository implements repository.ProfileRepository
type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new RunnerProfile repository.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		collection: db.Collection(profileCollectionName),
	}
}

// Upsert creates the profile for a user, or replaces the race goal fields if
// one already exists. Returns the stored profile.
func (r *mongoProfileRepository) Upsert(ctx context.Context, profile *domain.RunnerProfile) (*domain.RunnerProfile, error) {
	if profile.UserID == primitive.NilObjectID {
		return nil, errors.New("profile requires a userId")
	}

	now := time.Now().UTC()
	filter := bson.M{"userId": profile.UserID}
	updateDoc := bson.M{
		"$set": bson.M{
			"raceDate":        profile.RaceDate,
			"goalTimeMinutes": profile.GoalTimeMinutes,
			"fitnessLevel":    profile.FitnessLevel,
			"updatedAt":       now,
		},
		"$setOnInsert": bson.M{
			"userId":    profile.UserID,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored domain.RunnerProfile
	err := r.collection.FindOneAndUpdate(ctx, filter, updateDoc, opts).Decode(&stored)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetByUserID retrieves the profile for a user.
func (r *mongoProfileRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.RunnerProfile, error) {
	var profile domain.RunnerProfile
	filter := bson.M{"userId": userID}

	err := r.collection.FindOne(ctx, filter).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// EnsureProfileIndexes creates necessary indexes. Call during startup.
func EnsureProfileIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One profile per user.
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// The one-profile-per-user guarantee depends on this index existing.
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
