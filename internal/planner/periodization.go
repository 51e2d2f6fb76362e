package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
)

// Weekly mileage growth is capped at +5% per week during the build-up, well
// inside the 10% week-over-week limit the plan schema promises.
const (
	weeklyGrowthFactor = 1.05
	raceWeekFactor     = 0.5 // race week load relative to taper mileage
)

// MileageEnvelope gives the weekly mileage guide (km/week) for a fitness level.
type MileageEnvelope struct {
	StartKm float64
	PeakKm  float64
	TaperKm float64
}

// mileageByLevel is the per-fitness-level weekly mileage table.
var mileageByLevel = map[domain.FitnessLevel]MileageEnvelope{
	domain.FitnessBeginner:     {StartKm: 25, PeakKm: 55, TaperKm: 30},
	domain.FitnessIntermediate: {StartKm: 40, PeakKm: 75, TaperKm: 40},
	domain.FitnessAdvanced:     {StartKm: 55, PeakKm: 100, TaperKm: 50},
}

// WeekOutline is the periodization target for a single week.
type WeekOutline struct {
	WeekNumber       int
	Theme            domain.WeekTheme
	TargetDistanceKm float64
}

// Periodization describes how training load is distributed across the weeks
// between today and race day.
type Periodization struct {
	WeekCount int
	PeakWeek  int
	Mileage   MileageEnvelope
	Weeks     []WeekOutline
}

// PlanPeriodization computes the week count, per-week theme and per-week
// mileage target for a race date and fitness level. The curve ramps from the
// envelope's starting mileage toward its peak at +5% per week, holds the taper
// mileage (never stepping up) for the final weeks, and halves the load for
// race week itself.
func PlanPeriodization(raceDate, today time.Time, level domain.FitnessLevel) (Periodization, error) {
	env, ok := mileageByLevel[level]
	if !ok {
		return Periodization{}, fmt.Errorf("unknown fitness level %q", level)
	}

	days := daysBetween(today, raceDate)
	weekCount := days / 7
	if weekCount < 1 {
		weekCount = 1
	}

	weeks := make([]WeekOutline, 0, weekCount)
	prev := math.Inf(1)
	for w := 1; w <= weekCount; w++ {
		theme := themeForWeek(w, weekCount)

		var target float64
		switch theme {
		case domain.ThemeBaseBuilding, domain.ThemeBuildPhase:
			target = math.Min(env.StartKm*math.Pow(weeklyGrowthFactor, float64(w-1)), env.PeakKm)
		case domain.ThemeTaper:
			// Taper never increases load over the previous week.
			target = math.Min(env.TaperKm, prev)
		case domain.ThemeRaceWeek:
			target = math.Min(env.TaperKm, prev) * raceWeekFactor
		}
		target = round1(target)
		prev = target

		weeks = append(weeks, WeekOutline{
			WeekNumber:       w,
			Theme:            theme,
			TargetDistanceKm: target,
		})
	}

	peakWeek := weekCount - 3
	if peakWeek < 1 {
		peakWeek = 1
	}

	return Periodization{
		WeekCount: weekCount,
		PeakWeek:  peakWeek,
		Mileage:   env,
		Weeks:     weeks,
	}, nil
}

// themeForWeek assigns the training focus by position: first third is base
// building, then build phase up to three weeks out, then taper, with the final
// week always race week.
func themeForWeek(week, totalWeeks int) domain.WeekTheme {
	switch {
	case week == totalWeeks:
		return domain.ThemeRaceWeek
	case week <= totalWeeks/3:
		return domain.ThemeBaseBuilding
	case week <= totalWeeks-3:
		return domain.ThemeBuildPhase
	default:
		return domain.ThemeTaper
	}
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// round1 rounds to one decimal, the resolution used for plan distances.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
