package planner

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/abhishyantkhare/marathon-trainer/internal/domain"
)

// paceSeconds parses a "M:SS/km" pace string into elapsed seconds per km.
func paceSeconds(t *testing.T, pace string) int {
	t.Helper()
	trimmed := strings.TrimSuffix(pace, "/km")
	parts := strings.Split(trimmed, ":")
	if len(parts) != 2 {
		t.Fatalf("malformed pace string %q", pace)
	}
	mins, err := strconv.Atoi(parts[0])
	if err != nil {
		t.Fatalf("malformed pace minutes in %q: %v", pace, err)
	}
	secs, err := strconv.Atoi(parts[1])
	if err != nil {
		t.Fatalf("malformed pace seconds in %q: %v", pace, err)
	}
	return mins*60 + secs
}

func TestDerivePaces_FourHourMarathon(t *testing.T) {
	zones, err := DerivePaces(240)
	if err != nil {
		t.Fatalf("DerivePaces(240) returned error: %v", err)
	}

	// 240min over 42.195km is 341s/km goal pace.
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"race", zones.Race, "5:41/km"},
		{"easy", zones.Easy, "7:06/km"},
		{"long_run", zones.LongRun, "6:32/km"},
		{"tempo", zones.Tempo, "5:58/km"},
		{"intervals", zones.Intervals, "5:07/km"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s pace = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestDerivePaces_ZoneOrdering(t *testing.T) {
	// intervals < race < tempo < long run < easy, in seconds per km, must
	// hold for every goal time in (0, 600] minutes. The formatted paces
	// truncate to whole seconds, so adjacent zones can display the same
	// value for very short goal times; the displayed ordering is strict
	// once the smallest zone gap (5% of goal pace) exceeds one second,
	// which holds from a 15 minute goal upward.
	for goal := 1; goal <= 600; goal++ {
		zones, err := DerivePaces(goal)
		if err != nil {
			t.Fatalf("DerivePaces(%d) returned error: %v", goal, err)
		}

		intervals := paceSeconds(t, zones.Intervals)
		race := paceSeconds(t, zones.Race)
		tempo := paceSeconds(t, zones.Tempo)
		longRun := paceSeconds(t, zones.LongRun)
		easy := paceSeconds(t, zones.Easy)

		if !(intervals <= race && race <= tempo && tempo <= longRun && longRun <= easy) {
			t.Fatalf("goal %d min: zone ordering violated: intervals=%d race=%d tempo=%d long=%d easy=%d",
				goal, intervals, race, tempo, longRun, easy)
		}
		if goal >= 15 && !(intervals < race && race < tempo && tempo < longRun && longRun < easy) {
			t.Fatalf("goal %d min: zones not strictly ordered: intervals=%d race=%d tempo=%d long=%d easy=%d",
				goal, intervals, race, tempo, longRun, easy)
		}
	}
}

func TestDerivePaces_InvalidGoalTime(t *testing.T) {
	for _, goal := range []int{0, -1, -240} {
		if _, err := DerivePaces(goal); !errors.Is(err, ErrInvalidGoalTime) {
			t.Errorf("DerivePaces(%d) error = %v, want ErrInvalidGoalTime", goal, err)
		}
	}
}

func TestPaceZones_ForWorkout(t *testing.T) {
	zones, err := DerivePaces(240)
	if err != nil {
		t.Fatalf("DerivePaces(240) returned error: %v", err)
	}

	tests := []struct {
		workoutType domain.WorkoutType
		want        string // "" means nil expected
	}{
		{domain.WorkoutEasyRun, zones.Easy},
		{domain.WorkoutLongRun, zones.LongRun},
		{domain.WorkoutTempo, zones.Tempo},
		{domain.WorkoutIntervals, zones.Intervals},
		{domain.WorkoutRest, ""},
		{domain.WorkoutCrossTraining, ""},
	}
	for _, tt := range tests {
		got := zones.ForWorkout(tt.workoutType)
		if tt.want == "" {
			if got != nil {
				t.Errorf("ForWorkout(%s) = %q, want nil", tt.workoutType, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("ForWorkout(%s) = %v, want %q", tt.workoutType, got, tt.want)
		}
	}
}

func TestFormatGoalTime(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{240, "4:00:00"},
		{195, "3:15:00"},
		{59, "0:59:00"},
		{181, "3:01:00"},
	}
	for _, tt := range tests {
		if got := FormatGoalTime(tt.minutes); got != tt.want {
			t.Errorf("FormatGoalTime(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
