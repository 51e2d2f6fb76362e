package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
)

// --- Error Definitions ---
var (
	ErrMalformedPlan = errors.New("malformed training plan")
)

// DecodePlan parses raw JSON from the text-generation service into the
// canonical plan schema and validates it. Partial or malformed structures are
// rejected, never coerced; the caller is expected to fall back to the
// deterministic synthesizer on any error.
func DecodePlan(data []byte) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	if err := ValidatePlan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ValidatePlan checks field presence and shape against the plan schema.
// It deliberately does not enforce the mileage-growth cap: that invariant is
// guaranteed by construction in the synthesized path only.
func ValidatePlan(p *domain.TrainingPlan) error {
	if p.RaceName == "" {
		return planErr("race_name is required")
	}
	if _, err := parseDate(p.RaceDate); err != nil {
		return planErr("race_date: %v", err)
	}
	if p.GoalTime == "" {
		return planErr("goal_time is required")
	}
	if p.TotalWeeks < 1 {
		return planErr("total_weeks must be at least 1")
	}
	if len(p.Weeks) == 0 {
		return planErr("weeks is required")
	}
	if len(p.Weeks) != p.TotalWeeks {
		return planErr("total_weeks is %d but plan has %d weeks", p.TotalWeeks, len(p.Weeks))
	}

	for i, week := range p.Weeks {
		if week.WeekNumber != i+1 {
			return planErr("week %d: week_number is %d, weeks must be contiguous and 1-based", i+1, week.WeekNumber)
		}
		start, err := parseDate(week.StartDate)
		if err != nil {
			return planErr("week %d: start_date: %v", week.WeekNumber, err)
		}
		end, err := parseDate(week.EndDate)
		if err != nil {
			return planErr("week %d: end_date: %v", week.WeekNumber, err)
		}
		if !end.Equal(start.AddDate(0, 0, 6)) {
			return planErr("week %d: end_date %s is not six days after start_date %s", week.WeekNumber, week.EndDate, week.StartDate)
		}
		if week.Theme == "" {
			return planErr("week %d: theme is required", week.WeekNumber)
		}
		if len(week.Workouts) != 7 {
			return planErr("week %d: expected 7 workouts, got %d", week.WeekNumber, len(week.Workouts))
		}
		for j, workout := range week.Workouts {
			if workout.Day == "" {
				return planErr("week %d workout %d: day is required", week.WeekNumber, j+1)
			}
			if !workout.Type.IsValid() {
				return planErr("week %d workout %d: unknown workout_type %q", week.WeekNumber, j+1, workout.Type)
			}
			if workout.Description == "" {
				return planErr("week %d workout %d: description is required", week.WeekNumber, j+1)
			}
		}
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("required")
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return d, nil
}

func planErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedPlan, fmt.Sprintf(format, args...))
}
