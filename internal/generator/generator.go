package generator

import (
	"context"
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
	"github.com/abhishyantkhare/marathon-trainer/internal/planner"
)

// Params carries the structured inputs for a delegated plan generation
// request. The external service receives these parameters, never a literal
// schedule; the schedule is its job.
type Params struct {
	RaceDate        time.Time
	Today           time.Time
	GoalTimeMinutes int
	GoalTime        string // formatted, e.g. "4:00:00"
	FitnessLevel    domain.FitnessLevel
	WeekCount       int
	PeakWeek        int
	Paces           planner.PaceZones
	Mileage         planner.MileageEnvelope
}

// PlanGenerator is the contract for the external text-generation service.
// GeneratePlan returns the raw JSON plan body on success. Any failure mode
// (transport, timeout, non-2xx, empty response) is a plain error; the caller
// treats them all the same and falls back to the deterministic synthesizer.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, params Params) ([]byte, error)
}
