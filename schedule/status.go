package schedule

import (
	"github.com/warp/airline-engine/airline"
	"github.com/warp/airline-engine/generic"
)

// Leg is the half of the round trip a flight is on.
type Leg string

const (
	LegThere Leg = "there"
	LegBack  Leg = "back"
)

// FlightStatus describes where a schedule's aircraft is at a moment.
type FlightStatus struct {
	InTheAir  bool         `json:"in_the_air"`
	Leg       Leg          `json:"leg,omitempty"`
	Elapsed   generic.Tick `json:"elapsed"`
	Remaining generic.Tick `json:"remaining"`
	Progress  int          `json:"progress"` // percent of the round trip
}

// StatusAt reports the schedule's state at playtime. The round trip starts
// at the window start; the first half is the outbound leg.
func StatusAt(s airline.Schedule, playtime generic.Tick) FlightStatus {
	total := s.Option.TotalTime
	if total <= 0 {
		total = s.Window().Length()
	}
	elapsed := generic.Mod(playtime.OfWeek()-s.Start, generic.Week)
	if total <= 0 || elapsed > total {
		return FlightStatus{Elapsed: elapsed}
	}

	leg := LegBack
	if elapsed < total/2 {
		leg = LegThere
	}
	return FlightStatus{
		InTheAir:  true,
		Leg:       leg,
		Elapsed:   elapsed,
		Remaining: total - elapsed,
		Progress:  int(elapsed * 100 / total),
	}
}
