package repository

import (
	"context"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound = RepositoryError("not found")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByStravaID(ctx context.Context, stravaID int64) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// ProfileRepository defines the interface for interacting with runner profiles.
// A user has at most one profile; Upsert replaces it in place.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.RunnerProfile) (*domain.RunnerProfile, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.RunnerProfile, error)
}

// PlanRepository defines the interface for interacting with training plan
// versions. Versions are append-only: there is deliberately no update or
// delete, and "latest" means newest CreatedAt.
type PlanRepository interface {
	Create(ctx context.Context, version *domain.PlanVersion) (primitive.ObjectID, error)
	GetLatestByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.PlanVersion, error)
}
