package planner

import (
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
)

const dateLayout = "2006-01-02"

// fallbackNotes is appended to every synthesized plan so the user knows it was
// not personalized by the AI coach.
const fallbackNotes = "This is a fallback training plan. Consider regenerating for a more personalized plan."

// daySlot is one entry of the fixed seven-day fallback template. Fraction is
// the share of the week's target mileage scheduled on that day; the running
// fractions sum to 1.0 so the week total lands on the periodization target.
type daySlot struct {
	day         string
	workoutType domain.WorkoutType
	fraction    float64
	description string
	notes       string
}

var weekTemplate = []daySlot{
	{day: "Monday", workoutType: domain.WorkoutRest, description: "Rest day", notes: "Recovery"},
	{day: "Tuesday", workoutType: domain.WorkoutEasyRun, fraction: 0.16, description: "Easy run"},
	{day: "Wednesday", workoutType: domain.WorkoutTempo, fraction: 0.20, description: "Quality workout", notes: "Key workout of the week"},
	{day: "Thursday", workoutType: domain.WorkoutEasyRun, fraction: 0.12, description: "Recovery run"},
	{day: "Friday", workoutType: domain.WorkoutRest, description: "Rest day"},
	{day: "Saturday", workoutType: domain.WorkoutEasyRun, fraction: 0.16, description: "Easy run"},
	{day: "Sunday", workoutType: domain.WorkoutLongRun, fraction: 0.36, description: "Long run", notes: "Build endurance"},
}

// SynthesizePlan deterministically builds a complete training plan from a
// periodization and pace set. It is total: it never fails for any valid input,
// because it is the last line of defense when the AI path is unavailable or
// returns garbage. The result conforms to the same schema as an AI plan.
//
// Template: Monday rest, Tuesday easy, Wednesday tempo (even weeks) or
// intervals (odd weeks), Thursday recovery, Friday rest, Saturday easy,
// Sunday long run. Week totals are the literal sum of the day distances.
func SynthesizePlan(p Periodization, paces PaceZones, raceDate, today time.Time, goalTime string) domain.TrainingPlan {
	weeks := make([]domain.TrainingWeek, 0, p.WeekCount)

	for _, outline := range p.Weeks {
		weekStart := today.AddDate(0, 0, 7*(outline.WeekNumber-1))
		weekEnd := weekStart.AddDate(0, 0, 6)

		workouts := make([]domain.Workout, 0, len(weekTemplate))
		var totalKm float64
		for _, slot := range weekTemplate {
			workoutType := slot.workoutType
			if workoutType == domain.WorkoutTempo && outline.WeekNumber%2 != 0 {
				// Alternate the midweek quality session by week parity.
				workoutType = domain.WorkoutIntervals
			}

			var distance *float64
			if slot.fraction > 0 {
				km := round1(slot.fraction * outline.TargetDistanceKm)
				distance = &km
				totalKm += km
			}

			var notes *string
			if slot.notes != "" {
				n := slot.notes
				notes = &n
			}

			workouts = append(workouts, domain.Workout{
				Day:         slot.day,
				Type:        workoutType,
				Description: slot.description,
				DistanceKm:  distance,
				PaceTarget:  paces.ForWorkout(workoutType),
				Notes:       notes,
			})
		}

		weeks = append(weeks, domain.TrainingWeek{
			WeekNumber:      outline.WeekNumber,
			StartDate:       weekStart.Format(dateLayout),
			EndDate:         weekEnd.Format(dateLayout),
			Theme:           outline.Theme,
			TotalDistanceKm: round1(totalKm),
			Workouts:        workouts,
		})
	}

	return domain.TrainingPlan{
		RaceName:   "Marathon",
		RaceDate:   raceDate.Format(dateLayout),
		GoalTime:   goalTime,
		TotalWeeks: p.WeekCount,
		Weeks:      weeks,
		Notes:      fallbackNotes,
	}
}
