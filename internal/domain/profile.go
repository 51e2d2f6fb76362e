package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FitnessLevel type to distinguish runner experience levels
type FitnessLevel string

// Define constants for fitness levels
const (
	FitnessBeginner     FitnessLevel = "beginner"
	FitnessIntermediate FitnessLevel = "intermediate"
	FitnessAdvanced     FitnessLevel = "advanced"
)

// IsValid reports whether the level is one of the known values.
func (f FitnessLevel) IsValid() bool {
	switch f {
	case FitnessBeginner, FitnessIntermediate, FitnessAdvanced:
		return true
	}
	return false
}

// RunnerProfile holds the race goal a user is training for.
// One profile per user; updating the goal overwrites it in place.
// Race date and goal time must both be set before plan generation is attempted.
type RunnerProfile struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	RaceDate        time.Time          `bson:"raceDate" json:"raceDate"`
	GoalTimeMinutes int                `bson:"goalTimeMinutes" json:"goalTimeMinutes"` // Total marathon minutes, > 0
	FitnessLevel    FitnessLevel       `bson:"fitnessLevel" json:"fitnessLevel"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
