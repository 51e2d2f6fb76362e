package planner

import (
	"errors"
	"fmt"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
)

// MarathonDistanceKm is the race distance every pace is derived against.
// All plan distances are kilometers.
const MarathonDistanceKm = 42.195

// Training pace multipliers relative to goal race pace.
const (
	easyPaceFactor      = 1.25 // 25% slower than goal
	longRunPaceFactor   = 1.15 // 15% slower than goal
	tempoPaceFactor     = 1.05 // 5% slower than goal
	intervalsPaceFactor = 0.90 // 10% faster than goal
)

// --- Error Definitions ---
var (
	ErrInvalidGoalTime = errors.New("goal time must be a positive number of minutes")
)

// PaceZones holds the formatted target pace for each training zone,
// e.g. "5:41/km". Ordering invariant: intervals < race < tempo < long run < easy
// in elapsed seconds per kilometer.
type PaceZones struct {
	Easy      string `json:"easy"`
	LongRun   string `json:"long_run"`
	Tempo     string `json:"tempo"`
	Intervals string `json:"intervals"`
	Race      string `json:"race"`
}

// DerivePaces calculates the training pace zones for a goal marathon time.
// Validation of the goal time belongs upstream; a non-positive value is a
// domain error here, not something to silently correct.
func DerivePaces(goalTimeMinutes int) (PaceZones, error) {
	if goalTimeMinutes <= 0 {
		return PaceZones{}, ErrInvalidGoalTime
	}

	// Goal pace in seconds per km
	goalPaceSec := float64(goalTimeMinutes*60) / MarathonDistanceKm

	return PaceZones{
		Easy:      formatPace(goalPaceSec * easyPaceFactor),
		LongRun:   formatPace(goalPaceSec * longRunPaceFactor),
		Tempo:     formatPace(goalPaceSec * tempoPaceFactor),
		Intervals: formatPace(goalPaceSec * intervalsPaceFactor),
		Race:      formatPace(goalPaceSec),
	}, nil
}

// ForWorkout returns the target pace for a workout type, or nil for types
// that have no pace target (rest, cross training).
func (z PaceZones) ForWorkout(t domain.WorkoutType) *string {
	var pace string
	switch t {
	case domain.WorkoutEasyRun:
		pace = z.Easy
	case domain.WorkoutLongRun:
		pace = z.LongRun
	case domain.WorkoutTempo:
		pace = z.Tempo
	case domain.WorkoutIntervals:
		pace = z.Intervals
	default:
		return nil
	}
	return &pace
}

// FormatGoalTime converts total minutes to a H:MM:00 display string,
// e.g. 240 -> "4:00:00".
func FormatGoalTime(minutes int) string {
	return fmt.Sprintf("%d:%02d:00", minutes/60, minutes%60)
}

// formatPace renders seconds-per-km as "M:SS/km", seconds zero-padded.
func formatPace(secondsPerKm float64) string {
	total := int(secondsPerKm)
	return fmt.Sprintf("%d:%02d/km", total/60, total%60)
}
