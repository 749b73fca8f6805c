package schedule

import (
	"fmt"

	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/generic"
)

// =============================================================================
// DRAFT WINDOWS
// =============================================================================

// DraftWindow computes the weekly window a contract option would occupy:
// it opens BoardingTime ticks before the contract's departure and lasts
// TotalTime ticks. Pure; calling it twice gives the same window.
func DraftWindow(c airline.Contract, o airline.ContractOption) (generic.Window, error) {
	if o.TotalTime <= 0 || o.TotalTime >= generic.Week {
		return generic.Window{}, fmt.Errorf("%w: total time %d must be in (0, %d)",
			generic.ErrInvalidWindow, o.TotalTime, generic.Week)
	}
	if o.BoardingTime < 0 {
		return generic.Window{}, fmt.Errorf("%w: negative boarding time", generic.ErrInvalidWindow)
	}
	start := generic.Mod(c.DepartureTime-o.BoardingTime, generic.Week)
	return generic.NewWindow(start, o.TotalTime), nil
}

// =============================================================================
// CONFLICT AND MEMBERSHIP
// =============================================================================
// Both questions reduce to Window.Overlaps, but they answer different
// things and are kept apart so either can change on its own.

// CanAssign reports whether candidate is free of every existing window.
// Touching windows conflict.
func CanAssign(candidate generic.Window, existing []airline.Schedule) bool {
	_, clash := firstConflict(candidate, existing)
	return !clash
}

func firstConflict(candidate generic.Window, existing []airline.Schedule) (airline.Schedule, bool) {
	for _, s := range existing {
		if candidate.Overlaps(s.Window()) {
			return s, true
		}
	}
	return airline.Schedule{}, false
}

// ActiveOnDay reports whether any tick of the schedule falls on the day,
// counting the Monday tail of a window that wraps past Sunday.
func ActiveOnDay(s airline.Schedule, day generic.Weekday) bool {
	return s.Window().Overlaps(day.Span())
}

// UseTime sums the ticks the schedules keep an asset busy on a day.
func UseTime(schedules []airline.Schedule, day generic.Weekday) generic.Tick {
	from := day.Start()
	var total generic.Tick
	for _, s := range schedules {
		total += s.Window().TicksWithin(from, from+generic.Day)
	}
	return total
}
