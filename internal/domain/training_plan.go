// internal/domain/training_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeekTheme type to distinguish the training focus of a week
type WeekTheme string

// Define constants for week themes
const (
	ThemeBaseBuilding WeekTheme = "Base Building"
	ThemeBuildPhase   WeekTheme = "Build Phase"
	ThemeTaper        WeekTheme = "Taper"
	ThemeRaceWeek     WeekTheme = "Race Week"
)

// TrainingWeek is one seven-day block of a TrainingPlan, Monday first.
// TotalDistanceKm is always the sum of the constituent workout distances.
type TrainingWeek struct {
	WeekNumber      int       `bson:"week_number" json:"week_number"` // 1-based, contiguous
	StartDate       string    `bson:"start_date" json:"start_date"`   // YYYY-MM-DD
	EndDate         string    `bson:"end_date" json:"end_date"`       // start + 6 days
	Theme           WeekTheme `bson:"theme" json:"theme"`
	TotalDistanceKm float64   `bson:"total_distance_km" json:"total_distance_km"`
	Workouts        []Workout `bson:"workouts" json:"workouts"`
}

// TrainingPlan is the canonical plan schema shared by the AI-generated and the
// deterministic fallback path. Callers cannot tell the two apart by shape, so
// any schema change here must be reflected in both the plan validator and the
// fallback synthesizer.
type TrainingPlan struct {
	RaceName   string         `bson:"race_name" json:"race_name"`
	RaceDate   string         `bson:"race_date" json:"race_date"` // YYYY-MM-DD
	GoalTime   string         `bson:"goal_time" json:"goal_time"` // e.g. "4:00:00"
	TotalWeeks int            `bson:"total_weeks" json:"total_weeks"`
	Weeks      []TrainingWeek `bson:"weeks" json:"weeks"`
	Notes      string         `bson:"notes,omitempty" json:"notes,omitempty"`
}

// PlanSource records which generation path produced a plan version.
type PlanSource string

const (
	PlanSourceDelegated   PlanSource = "delegated"   // External text-generation service
	PlanSourceSynthesized PlanSource = "synthesized" // Deterministic fallback
)

// PlanVersion is one immutable generation result for a user. Versions are only
// ever appended; the newest CreatedAt is the user's current plan. The plan body
// is stored as opaque JSON text rather than a nested document.
type PlanVersion struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	PlanJSON  string             `bson:"planJson" json:"-"`
	Source    PlanSource         `bson:"source" json:"source"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
