package service

import (
	"context"
	"errors"
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
	"github.com/abhishyantkhare/marathon-trainer/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("profile requires a race date, a positive goal time, and a valid fitness level")
)

// --- Service Interface ---
type ProfileService interface {
	UpsertProfile(ctx context.Context, userID primitive.ObjectID, raceDate time.Time, goalTimeMinutes int, level domain.FitnessLevel) (*domain.RunnerProfile, error)
	GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.RunnerProfile, error)
}

// --- Service Implementation ---

// profileService implements the ProfileService interface.
type profileService struct {
	profileRepo repository.ProfileRepository
}

// NewProfileService creates a new instance of profileService.
func NewProfileService(profileRepo repository.ProfileRepository) ProfileService {
	return &profileService{
		profileRepo: profileRepo,
	}
}

// UpsertProfile creates or replaces the race goal for a user.
func (s *profileService) UpsertProfile(ctx context.Context, userID primitive.ObjectID, raceDate time.Time, goalTimeMinutes int, level domain.FitnessLevel) (*domain.RunnerProfile, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}
	if raceDate.IsZero() || goalTimeMinutes <= 0 || !level.IsValid() {
		return nil, ErrInvalidProfile
	}

	profile := &domain.RunnerProfile{
		UserID:          userID,
		RaceDate:        raceDate,
		GoalTimeMinutes: goalTimeMinutes,
		FitnessLevel:    level,
	}
	return s.profileRepo.Upsert(ctx, profile)
}

// GetProfile fetches the profile for a user.
func (s *profileService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*domain.RunnerProfile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}
