package generic_test

import (
	"testing"

	"github.com/warp/airline-engine/generic"
)

// =============================================================================
// OVERLAP
// =============================================================================

func TestWindowOverlaps_IsSymmetric(t *testing.T) {
	// GIVEN: Windows starting every 7 hours of the week with assorted lengths,
	//        including ones that wrap past Sunday night
	// WHEN: Checking overlap in both directions
	// THEN: Overlaps(a, b) == Overlaps(b, a) for every pair

	var windows []generic.Window
	for start := generic.Tick(0); start < generic.Week; start += 7 * generic.Hour {
		for _, length := range []generic.Tick{1, 90, generic.Day, 3 * generic.Day, generic.Week - 1} {
			windows = append(windows, generic.NewWindow(start, length))
		}
	}

	for _, a := range windows {
		for _, b := range windows {
			if a.Overlaps(b) != b.Overlaps(a) {
				t.Fatalf("asymmetric overlap: %v vs %v", a, b)
			}
		}
	}
}

func TestWindowOverlaps_TouchingEndpointsConflict(t *testing.T) {
	// GIVEN: A ends exactly on the tick B starts
	// WHEN: Checking overlap
	// THEN: They conflict (endpoints are inclusive)

	a := generic.Window{Start: 1000, End: 2000}
	b := generic.Window{Start: 2000, End: 2500}

	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Errorf("touching windows %v and %v should overlap", a, b)
	}

	c := generic.Window{Start: 2001, End: 2500}
	if a.Overlaps(c) {
		t.Errorf("%v and %v are one tick apart and should not overlap", a, c)
	}
}

func TestWindowOverlaps_WrappingWindow(t *testing.T) {
	// GIVEN: H wraps from Sunday 12:20 into Monday 20:00
	h := generic.Window{Start: 6500, End: 1200}

	cases := []struct {
		name  string
		other generic.Window
		want  bool
	}{
		{"monday morning", generic.Window{Start: 0, End: 100}, true},
		{"monday tail inclusive", generic.Window{Start: 1200, End: 1300}, true},
		{"monday after", generic.Window{Start: 1201, End: 1300}, false},
		{"friday before start", generic.Window{Start: 6000, End: 6499}, false},
		{"friday touching start", generic.Window{Start: 6000, End: 6500}, true},
		{"other wrapping window", generic.Window{Start: 10000, End: 50}, true},
		{"midweek", generic.Window{Start: 3000, End: 4000}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// WHEN: Checking overlap against H
			// THEN: Wrap-around is honoured in both directions
			if got := h.Overlaps(tc.other); got != tc.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", h, tc.other, got, tc.want)
			}
			if got := tc.other.Overlaps(h); got != tc.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tc.other, h, got, tc.want)
			}
		})
	}
}

func TestWindow_EffectiveEndAndLength(t *testing.T) {
	w := generic.Window{Start: 10000, End: 500}
	if !w.Wraps() {
		t.Fatal("expected window to wrap")
	}
	if w.EffectiveEnd() != 10580 {
		t.Errorf("EffectiveEnd = %d, want 10580", w.EffectiveEnd())
	}
	if w.Length() != 580 {
		t.Errorf("Length = %d, want 580", w.Length())
	}

	n := generic.NewWindow(-80, 580)
	if n != w {
		t.Errorf("NewWindow normalised to %v, want %v", n, w)
	}
}

func TestWindow_Contains(t *testing.T) {
	w := generic.Window{Start: 10000, End: 500}

	if !w.Contains(generic.Week*3 + 10) {
		t.Error("expected Monday 00:10 of week 3 inside wrapping window")
	}
	if w.Contains(generic.Week*3 + 501) {
		t.Error("expected Monday 08:21 outside window")
	}
}

// =============================================================================
// DAY SPANS
// =============================================================================

func TestWindowTicksWithin_DaySpans(t *testing.T) {
	// GIVEN: A window from Saturday 00:00 (7200) wrapping to Monday 10:00 (600)
	w := generic.Window{Start: 7200, End: 600}

	// WHEN: Counting its ticks per day using half-open day ranges
	// THEN: SAT and SUN are fully covered, MON has the wrapped tail
	want := map[generic.Weekday]generic.Tick{
		generic.Monday:    600,
		generic.Tuesday:   0,
		generic.Thursday:  0,
		generic.Friday:    0,
		generic.Saturday:  generic.Day,
		generic.Sunday:    generic.Day,
		generic.Wednesday: 0,
	}
	for day, expected := range want {
		got := w.TicksWithin(day.Start(), day.Start()+generic.Day)
		if got != expected {
			t.Errorf("%s: got %d ticks, want %d", day, got, expected)
		}
	}
}

func TestWeekdaySpan_IsInclusiveOfLastTick(t *testing.T) {
	span := generic.Sunday.Span()
	if span.Start != 8640 || span.End != 10079 {
		t.Errorf("Sunday span = %+v, want [8640, 10079]", span)
	}
	if span.Wraps() {
		t.Error("a day span never wraps")
	}
}
