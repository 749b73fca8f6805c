package generic

import "fmt"

// =============================================================================
// WINDOW - Tick-of-week interval that may wrap past the end of the week
// =============================================================================

// Window is a weekly recurring interval in tick-of-week coordinates.
// Both endpoints are in [0, Week). End < Start means the window wraps past
// Sunday 23:59 into the following Monday.
//
// Overlap checks treat both endpoints as inclusive, so two windows that
// merely touch (one ends on the tick the other starts) conflict.
type Window struct {
	Start Tick `json:"start"`
	End   Tick `json:"end"`
}

// NewWindow builds the window that starts at the given tick-of-week and
// lasts length ticks. Start is normalized into [0, Week).
func NewWindow(start, length Tick) Window {
	s := Mod(start, Week)
	return Window{Start: s, End: Mod(s+length, Week)}
}

// Wraps reports whether the window crosses the week boundary.
func (w Window) Wraps() bool { return w.End < w.Start }

// EffectiveEnd lifts a wrapping end into the following week so that
// Start <= EffectiveEnd always holds.
func (w Window) EffectiveEnd() Tick {
	if w.Wraps() {
		return w.End + Week
	}
	return w.End
}

// Length returns the number of ticks between Start and End.
func (w Window) Length() Tick { return w.EffectiveEnd() - w.Start }

// Valid reports whether both endpoints are tick-of-week values.
func (w Window) Valid() bool {
	return w.Start >= 0 && w.Start < Week && w.End >= 0 && w.End < Week
}

// Overlaps reports whether w and o share at least one tick on the weekly
// circle. Endpoints are inclusive. The relation is symmetric.
func (w Window) Overlaps(o Window) bool {
	as, ae := w.Start, w.EffectiveEnd()
	bs, be := o.Start, o.EffectiveEnd()
	// Both windows live in [0, 2*Week); shifting o by one week either way
	// covers every alignment on the circle.
	for _, shift := range [...]Tick{-Week, 0, Week} {
		if as <= be+shift && bs+shift <= ae {
			return true
		}
	}
	return false
}

// Contains reports whether the tick-of-week of t lies inside the window.
func (w Window) Contains(t Tick) bool {
	tow := t.OfWeek()
	return w.Overlaps(Window{Start: tow, End: tow})
}

// StartsWithin reports whether w.Start lies inside the linear span
// [span.Start, span.End]. Used for "departs on this day" checks.
func (w Window) StartsWithin(span Window) bool {
	return span.Start <= w.Start && w.Start <= span.End
}

// Segments splits the window into half-open linear ranges [from, to)
// inside [0, Week). A wrapping window yields two segments.
func (w Window) Segments() [][2]Tick {
	if w.Wraps() {
		return [][2]Tick{{w.Start, Week}, {0, w.End}}
	}
	return [][2]Tick{{w.Start, w.End}}
}

// TicksWithin counts the ticks of the window that fall in the half-open
// linear range [from, to) of the week.
func (w Window) TicksWithin(from, to Tick) Tick {
	var total Tick
	for _, seg := range w.Segments() {
		lo := max(seg[0], from)
		hi := min(seg[1], to)
		if hi > lo {
			total += hi - lo
		}
	}
	return total
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s]", w.Start.Clock(), w.End.Clock())
}
