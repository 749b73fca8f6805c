package generic

import (
	"fmt"
	"strings"
)

// =============================================================================
// TICK - Simulation time (one tick = one in-game minute)
// =============================================================================

// Tick is an absolute simulation time or a tick count, depending on context.
// Tick 0 is Monday 00:00 of week 0.
type Tick int64

const (
	Minute Tick = 1
	Hour   Tick = 60
	Day    Tick = 1440
	Week   Tick = 10080
	Month  Tick = 40320  // 4 weeks
	Year   Tick = 483840 // 12 months
)

// Mod returns t mod m in [0, m) for positive m, also for negative t.
func Mod(t, m Tick) Tick {
	r := t % m
	if r < 0 {
		r += m
	}
	return r
}

// OfWeek returns the tick-of-week in [0, Week).
func (t Tick) OfWeek() Tick { return Mod(t, Week) }

// Weekday returns the day of the week t falls on.
func (t Tick) Weekday() Weekday { return Weekday(t.OfWeek() / Day) }

// WeekStart returns the first tick of the week containing t.
func (t Tick) WeekStart() Tick { return t - t.OfWeek() }

// DayStart returns the first tick of the day containing t.
func (t Tick) DayStart() Tick { return t - Mod(t, Day) }

// WeekNumber returns the zero-based index of the week containing t.
func (t Tick) WeekNumber() int64 { return int64(t.WeekStart() / Week) }

// String renders an absolute tick as "W3 TUE 04:20".
func (t Tick) String() string {
	tod := Mod(t, Day)
	return fmt.Sprintf("W%d %s %02d:%02d", t.WeekNumber(), t.Weekday(), tod/Hour, tod%Hour)
}

// Clock renders a tick-of-week as "TUE 04:20".
func (t Tick) Clock() string {
	tow := t.OfWeek()
	tod := Mod(tow, Day)
	return fmt.Sprintf("%s %02d:%02d", tow.Weekday(), tod/Hour, tod%Hour)
}

// =============================================================================
// WEEKDAY
// =============================================================================

// Weekday indexes the simulation week. Monday is day 0, which differs from
// time.Weekday where Sunday is 0.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

// Weekdays lists every day in week order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// Start returns the first tick-of-week of the day.
func (d Weekday) Start() Tick { return Tick(d) * Day }

// Span returns the day as an inclusive tick-of-week window [d*Day, d*Day+Day-1].
func (d Weekday) Span() Window { return Window{Start: d.Start(), End: d.Start() + Day - 1} }

func (d Weekday) Valid() bool { return d >= Monday && d <= Sunday }

// ParseWeekday accepts "MON".."SUN" case-insensitively, or an index "0".."6".
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, name := range weekdayNames {
		if s == name || s == fmt.Sprint(i) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidWindow, s)
}

func (d Weekday) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Weekday) UnmarshalText(b []byte) error {
	parsed, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
