package generic

import "time"

// =============================================================================
// PERIOD - Inclusive date range every calculation is scoped to
// =============================================================================

// Period is an inclusive [Start, End] range of calendar dates.
//
// Examples:
//   - Payroll month: 2025-03-01 .. 2025-03-31
//   - Holiday week:  Monday .. Sunday
//   - Severance window: the 90 days before the reference date
type Period struct {
	Start TimePoint
	End   TimePoint
}

// NewPeriod builds a period, rejecting end before start.
func NewPeriod(start, end TimePoint) (Period, error) {
	p := Period{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Covers reports whether other lies entirely inside p.
func (p Period) Covers(other Period) bool {
	return p.Contains(other.Start) && p.Contains(other.End)
}

// Overlaps reports whether the two periods share at least one day.
func (p Period) Overlaps(other Period) bool {
	return !p.End.Before(other.Start) && !other.End.Before(p.Start)
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// Len returns the number of days in the period.
func (p Period) Len() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// CALENDAR PERIODS
// =============================================================================

// WeekOf returns the Monday..Sunday week containing date.
func WeekOf(date TimePoint) Period {
	monday := date.AddDays(-date.WeekdayIndex())
	return Period{Start: monday, End: monday.AddDays(6)}
}

// MonthOf returns the calendar month year/month.
func MonthOf(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// YearOf returns the calendar year.
func YearOf(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// WeeksIntersecting returns every Monday..Sunday week sharing a day with p,
// in chronological order.
func WeeksIntersecting(p Period) []Period {
	var weeks []Period
	for week := WeekOf(p.Start); !week.Start.After(p.End); week = WeekOf(week.Start.AddDays(7)) {
		weeks = append(weeks, week)
	}
	return weeks
}

// TrailingDays returns the n days ending the day before ref: [ref-n, ref-1].
func TrailingDays(ref TimePoint, n int) Period {
	return Period{Start: ref.AddDays(-n), End: ref.AddDays(-1)}
}

// Windows partitions [start, limit] into consecutive windows of size days,
// keeping every window whose first day is on or before limit. The last window
// may extend past limit.
func Windows(start, limit TimePoint, size int) []Period {
	var windows []Period
	for ws := start; ws.BeforeOrEqual(limit); ws = ws.AddDays(size) {
		windows = append(windows, Period{Start: ws, End: ws.AddDays(size - 1)})
	}
	return windows
}

// Union returns the smallest period covering both.
func (p Period) Union(other Period) Period {
	start, end := p.Start, p.End
	if other.Start.Before(start) {
		start = other.Start
	}
	if other.End.After(end) {
		end = other.End
	}
	return Period{Start: start, End: end}
}
