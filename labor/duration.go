package labor

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// SHIFT - Minute-granularity interval measured against the night window
// =============================================================================

// Shift is a worked or expected interval in minutes relative to midnight of
// the shift's date. EndMinute may exceed 1440 when the end falls on the next
// day; an end before the start is read as crossing midnight.
type Shift struct {
	StartMinute    int
	EndMinute      int
	BreakMinutes   int
	Overnight      bool
	NextDayMinutes int
}

// ShiftHours is the measured result of a shift.
type ShiftHours struct {
	WorkedMinutes int
	NightMinutes  int
	Total         decimal.Decimal
	Night         decimal.Decimal
}

var sixty = decimal.NewFromInt(60)

func minutesToHours(m int) decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(sixty)
}

// span returns the effective [start, end) of the shift.
// Crossing midnight and the overnight flag are the same signal: 24h is added
// at most once, and the flag alone only matters when start == end.
func (s Shift) span() (int, int) {
	start, end := s.StartMinute, s.EndMinute
	if end < start || (end == start && s.Overnight) {
		end += generic.MinutesPerDay
	}
	return start, end
}

func (s Shift) validate(p Policy) error {
	switch {
	case s.BreakMinutes < 0:
		return &generic.ShiftError{Reason: fmt.Sprintf("negative break %d", s.BreakMinutes)}
	case s.NextDayMinutes < 0 || s.NextDayMinutes > p.MaxNextDayMinutes:
		return &generic.ShiftError{Reason: fmt.Sprintf("next-day minutes %d outside 0..%d", s.NextDayMinutes, p.MaxNextDayMinutes)}
	}
	start, end := s.span()
	if end-start > generic.MinutesPerDay {
		return &generic.ShiftError{Reason: fmt.Sprintf("span of %d minutes exceeds one day", end-start)}
	}
	return nil
}

// Compute measures total and night hours, net of the break.
//
//	total = max(0, span - break) + next-day minutes
//	night = overlap(span, night window) + next-day minutes, capped at total
func (s Shift) Compute(p Policy) (ShiftHours, error) {
	if err := s.validate(p); err != nil {
		return ShiftHours{}, err
	}
	start, end := s.span()

	worked := end - start - s.BreakMinutes
	if worked < 0 {
		worked = 0
	}
	worked += s.NextDayMinutes

	night := s.NextDayMinutes
	for _, w := range p.nightWindows() {
		night += overlap(start, end, w[0], w[1])
	}
	if night > worked {
		night = worked
	}

	return ShiftHours{
		WorkedMinutes: worked,
		NightMinutes:  night,
		Total:         minutesToHours(worked),
		Night:         minutesToHours(night),
	}, nil
}

func overlap(aStart, aEnd, bStart, bEnd int) int {
	lo, hi := max(aStart, bStart), min(aEnd, bEnd)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// =============================================================================
// RECORD HOURS
// =============================================================================

// RecordHours measures an actual record. A record without clock times
// (leave, absence, cancellation) measures zero; a record with only one of
// the two times is malformed.
func RecordHours(r WorkRecord, p Policy) (ShiftHours, error) {
	if r.TimeIn == nil && r.TimeOut == nil {
		return ShiftHours{Total: decimal.Zero, Night: decimal.Zero}, nil
	}
	if r.TimeIn == nil || r.TimeOut == nil {
		return ShiftHours{}, &generic.ShiftError{Date: r.Date, Reason: "time_in and time_out must both be set"}
	}

	shift, err := recordShift(r)
	if err != nil {
		return ShiftHours{}, err
	}
	hours, err := shift.Compute(p)
	if err != nil {
		var se *generic.ShiftError
		if errors.As(err, &se) {
			se.Date = r.Date
		}
		return ShiftHours{}, err
	}
	return hours, nil
}

// recordShift places the record's clock pair relative to midnight of its date.
func recordShift(r WorkRecord) (Shift, error) {
	in, out := *r.TimeIn, *r.TimeOut
	loc := in.Location()
	midnight := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, loc)

	start := int(in.Sub(midnight) / time.Minute)
	end := int(out.In(loc).Sub(midnight) / time.Minute)
	if start < 0 || start >= generic.MinutesPerDay {
		return Shift{}, &generic.ShiftError{Date: r.Date, Reason: "time_in is not on the record date"}
	}

	breakMinutes := r.BreakMinutes
	if len(r.Breaks) > 0 {
		breakMinutes = clippedBreakMinutes(r.Breaks, in, out)
	}

	return Shift{
		StartMinute:    start,
		EndMinute:      end,
		BreakMinutes:   breakMinutes,
		Overnight:      r.Overnight,
		NextDayMinutes: r.NextDayMinutes,
	}, nil
}

// clippedBreakMinutes sums explicit breaks after clipping each to [in, out].
// Inverted intervals are ignored.
func clippedBreakMinutes(breaks []BreakInterval, in, out time.Time) int {
	total := time.Duration(0)
	for _, b := range breaks {
		if !b.End.After(b.Start) {
			continue
		}
		s, e := b.Start, b.End
		if s.Before(in) {
			s = in
		}
		if e.After(out) {
			e = out
		}
		if e.After(s) {
			total += e.Sub(s)
		}
	}
	return int(total / time.Minute)
}
