package holiday

import (
	"context"
	"sort"
	"time"

	"github.com/warp/payroll-engine/generic"
)

// Static is a fixed in-memory calendar.
type Static struct {
	holidays []generic.Holiday
}

var _ generic.HolidayCalendar = (*Static)(nil)

// NewStatic builds a calendar from hs, sorted by date.
func NewStatic(hs ...generic.Holiday) *Static {
	sorted := append([]generic.Holiday(nil), hs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return &Static{holidays: sorted}
}

// Legal is a shorthand for a LEGAL holiday.
func Legal(date generic.TimePoint, name string) generic.Holiday {
	return generic.Holiday{ID: HolidayID(date, name), Date: date, Name: name, Type: generic.HolidayLegal}
}

// Observance is a shorthand for an OBSERVANCE entry.
func Observance(date generic.TimePoint, name string) generic.Holiday {
	return generic.Holiday{ID: HolidayID(date, name), Date: date, Name: name, Type: generic.HolidayObservance}
}

func (s *Static) Holidays(_ context.Context, year int, month time.Month) ([]generic.Holiday, error) {
	return inMonth(s.holidays, year, month), nil
}

// Failing is a calendar that always errors; used to exercise degraded paths.
type Failing struct{ Err error }

func (f Failing) Holidays(context.Context, int, time.Month) ([]generic.Holiday, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return nil, generic.ErrHolidaySource
}
