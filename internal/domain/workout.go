package domain

// WorkoutType type to distinguish the kinds of sessions a plan can schedule
type WorkoutType string

// Define constants for workout types
const (
	WorkoutEasyRun       WorkoutType = "easy_run"
	WorkoutTempo         WorkoutType = "tempo"
	WorkoutLongRun       WorkoutType = "long_run"
	WorkoutIntervals     WorkoutType = "intervals"
	WorkoutRest          WorkoutType = "rest"
	WorkoutCrossTraining WorkoutType = "cross_training"
)

// IsValid reports whether the type is one of the known values.
func (t WorkoutType) IsValid() bool {
	switch t {
	case WorkoutEasyRun, WorkoutTempo, WorkoutLongRun, WorkoutIntervals, WorkoutRest, WorkoutCrossTraining:
		return true
	}
	return false
}

// Workout represents a single day inside a TrainingWeek.
// Distances are kilometers throughout the plan schema. Rest days carry no
// distance or pace target.
type Workout struct {
	Day         string      `bson:"day" json:"day"` // e.g. "Monday"
	Type        WorkoutType `bson:"workout_type" json:"workout_type"`
	Description string      `bson:"description" json:"description"`
	DistanceKm  *float64    `bson:"distance_km" json:"distance_km"`
	PaceTarget  *string     `bson:"pace_target" json:"pace_target"` // e.g. "5:41/km"
	Notes       *string     `bson:"notes" json:"notes"`
}
