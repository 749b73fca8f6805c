package generic_test

import (
	"testing"

	"github.com/warp/airline-engine/generic"
)

func TestCalendarConstants(t *testing.T) {
	if generic.Day != 24*generic.Hour || generic.Week != 7*generic.Day {
		t.Fatal("day/week constants are inconsistent")
	}
	if generic.Month != 4*generic.Week || generic.Year != 12*generic.Month {
		t.Fatal("month/year constants are inconsistent")
	}
}

func TestTick_WeekArithmetic(t *testing.T) {
	// GIVEN: Week 5, Monday 18:20
	now := generic.Week*5 + 1100

	// THEN: Tick-of-week, weekday and boundaries line up
	if now.OfWeek() != 1100 {
		t.Errorf("OfWeek = %d, want 1100", now.OfWeek())
	}
	if now.Weekday() != generic.Monday {
		t.Errorf("Weekday = %s, want MON", now.Weekday())
	}
	if now.WeekStart() != generic.Week*5 {
		t.Errorf("WeekStart = %d, want %d", now.WeekStart(), generic.Week*5)
	}
	if now.DayStart() != generic.Week*5 {
		t.Errorf("DayStart = %d, want %d", now.DayStart(), generic.Week*5)
	}
	if now.String() != "W5 MON 18:20" {
		t.Errorf("String = %q", now.String())
	}
}

func TestMod_NegativeInput(t *testing.T) {
	if got := generic.Mod(-1, generic.Week); got != generic.Week-1 {
		t.Errorf("Mod(-1, Week) = %d, want %d", got, generic.Week-1)
	}
}

func TestParseWeekday(t *testing.T) {
	for i, name := range []string{"MON", "tue", "Wed", "THU", "fri", "SAT", "sun"} {
		d, err := generic.ParseWeekday(name)
		if err != nil {
			t.Fatalf("ParseWeekday(%q): %v", name, err)
		}
		if int(d) != i {
			t.Errorf("ParseWeekday(%q) = %d, want %d", name, d, i)
		}
	}
	if _, err := generic.ParseWeekday("funday"); err == nil {
		t.Error("expected error for unknown weekday")
	}
}
