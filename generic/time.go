package generic

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - A calendar date (the engine works at day granularity)
// =============================================================================

type TimePoint struct {
	Time time.Time
}

const DateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return DateOf(tp.normalize().AddDate(0, 0, n)) }
func (tp TimePoint) AddMonths(n int) TimePoint { return DateOf(tp.normalize().AddDate(0, n, 0)) }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

// WeekdayIndex returns the Monday-based weekday index used by schedules (0=Mon .. 6=Sun).
func (tp TimePoint) WeekdayIndex() int {
	return (int(tp.Weekday()) + 6) % 7
}

// Midnight returns the start of the day as a UTC instant.
func (tp TimePoint) Midnight() time.Time { return tp.normalize() }

func (tp TimePoint) String() string {
	return tp.Time.Format(DateLayout)
}

func (tp TimePoint) MarshalJSON() ([]byte, error) {
	if tp.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + tp.String() + `"`), nil
}

func (tp *TimePoint) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*tp = TimePoint{}
		return nil
	}
	parsed, err := ParseDate(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// DaysBetween returns the whole days from `from` to `to` (negative when to < from).
func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func StartOfYear(year int) TimePoint                    { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint                      { return NewTimePoint(year, time.December, 31) }
func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	return DateOf(time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1))
}

// =============================================================================
// CLOCK TIME - Minute of day, 00:00 through 24:00
// =============================================================================

// ClockTime is a wall-clock time in minutes since midnight. 1440 encodes "24:00",
// the end-of-day boundary used by shifts that finish exactly at midnight.
type ClockTime int

const MinutesPerDay = 24 * 60

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime parses "HH:MM" (or "HH:MM:SS"), accepting "24:00".
func ParseClockTime(s string) (ClockTime, error) {
	var h, m, sec int
	n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec)
	if err != nil && n < 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return NewClockTime(h, m), nil
}

func (c ClockTime) Hour() int    { return int(c) / 60 }
func (c ClockTime) Minute() int  { return int(c) % 60 }
func (c ClockTime) Minutes() int { return int(c) }
func (c ClockTime) Valid() bool  { return c >= 0 && c <= MinutesPerDay }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	parsed, err := ParseClockTime(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// On returns the instant at this clock time on date d.
func (c ClockTime) On(d TimePoint) time.Time {
	return d.Midnight().Add(time.Duration(c) * time.Minute)
}

// =============================================================================
// CLOCK - Injected "today"
// =============================================================================

// Clock supplies the reference date separating confirmed from projected pay.
type Clock interface {
	Today() TimePoint
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() TimePoint {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return DateOf(time.Now().In(loc))
}

// FixedClock always reports the same date. Used by tests and "as_of" queries.
type FixedClock TimePoint

func (c FixedClock) Today() TimePoint { return TimePoint(c) }

// =============================================================================
// HOLIDAY CALENDAR - Public holidays affecting premium pay
// =============================================================================

type HolidayType string

const (
	HolidayLegal      HolidayType = "LEGAL"
	HolidayObservance HolidayType = "OBSERVANCE"
)

// Holiday is a named date. Only LEGAL holidays carry a pay premium.
type Holiday struct {
	ID   string
	Date TimePoint
	Name string
	Type HolidayType
}

func (h Holiday) IsLegal() bool { return h.Type == HolidayLegal }

// HolidayCalendar provides holiday lookup for one calendar month.
type HolidayCalendar interface {
	// Holidays returns every holiday (any type) dated in year/month.
	Holidays(ctx context.Context, year int, month time.Month) ([]Holiday, error)
}

// NoHolidays is a calendar without entries, for when holidays are disabled.
type NoHolidays struct{}

func (NoHolidays) Holidays(context.Context, int, time.Month) ([]Holiday, error) { return nil, nil }

// LegalHolidaySet indexes the LEGAL holidays of a slice by date string.
func LegalHolidaySet(holidays []Holiday) map[string]Holiday {
	set := make(map[string]Holiday, len(holidays))
	for _, h := range holidays {
		if h.IsLegal() {
			set[h.Date.String()] = h
		}
	}
	return set
}
