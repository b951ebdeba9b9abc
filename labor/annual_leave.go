/*
annual_leave.go - Paid annual leave accrual

PURPOSE:
  Computes accrued, used and remaining paid leave days for a calendar year.

ELIGIBILITY (all required, checked in this order):
  1. Workplace of 5 or more employees
  2. Effective weekly hours >= threshold (contract, else schedule)
  3. A start date on or before today

ACCRUAL:
  One year of service or more:
    Flat AnnualLeaveDays (15). With AnnualLeaveTenureBonus the graduated
    rule applies instead: 15 + 1 day per two further years, capped at 25.

  Under one year:
    Service is split into consecutive 30-day windows from the start date.
    Every window that has started by today is evaluated over the days
    that have already happened, [start, min(end, today)]. It grants 1 day when
      - that span contains at least one scheduled workday, and
      - no scheduled workday in it has an ABSENT record.
    Future workdays and future-dated records are ignored until they occur.
    Capped at 11 days.

USAGE:
  Every ANNUAL_LEAVE record dated in the target year uses one day.
  remaining = max(0, accrued - used)

SEE ALSO:
  - generic/accrual.go: AccrualSchedule interface implemented here
*/
package labor

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

const (
	ReasonWorkplaceUnder5    = "workplace_under_5_employees"
	ReasonWeeklyHoursUnder15 = "weekly_hours_under_15"
	ReasonInvalidStartDate   = "invalid_start_date"

	AccrualAnnual  = "annual"
	AccrualTenure  = "tenure"
	AccrualMonthly = "monthly"
)

type AnnualLeaveInput struct {
	// Snapshot records must cover the first service year and the target year.
	Snapshot WorkerSnapshot
	Year     int
	Today    generic.TimePoint
	Policy   Policy
}

// LeaveWindow is one 30-day accrual window of the first service year.
type LeaveWindow struct {
	Start         generic.TimePoint   `json:"start"`
	End           generic.TimePoint   `json:"end"`
	ScheduledDays int                 `json:"scheduled_days"`
	AbsentDays    []generic.TimePoint `json:"absent_days,omitempty"`
	Granted       bool                `json:"granted"`
}

type AnnualLeaveResult struct {
	Eligible      bool            `json:"eligible"`
	Reason        string          `json:"reason"`
	Year          int             `json:"year"`
	Method        string          `json:"method,omitempty"`
	ServiceDays   int             `json:"service_days"`
	WeeklyHours   decimal.Decimal `json:"weekly_hours"`
	AccruedDays   decimal.Decimal `json:"accrued_days"`
	UsedDays      decimal.Decimal `json:"used_days"`
	RemainingDays decimal.Decimal `json:"remaining_days"`
	Windows       []LeaveWindow   `json:"windows,omitempty"`
}

// ComputeAnnualLeave evaluates eligibility, accrual and usage for in.Year.
func ComputeAnnualLeave(in AnnualLeaveInput) AnnualLeaveResult {
	worker := in.Snapshot.Worker
	p := in.Policy

	res := AnnualLeaveResult{
		Year:          in.Year,
		AccruedDays:   decimal.Zero,
		UsedDays:      decimal.Zero,
		RemainingDays: decimal.Zero,
	}
	res.WeeklyHours = EffectiveWeeklyHours(in.Snapshot, in.Today, p)

	switch {
	case !worker.WorkplaceOver5:
		res.Reason = ReasonWorkplaceUnder5
		return res
	case res.WeeklyHours.LessThan(p.WeeklyHoursThreshold):
		res.Reason = ReasonWeeklyHoursUnder15
		return res
	case worker.StartDate.IsZero() || worker.StartDate.After(in.Today):
		res.Reason = ReasonInvalidStartDate
		return res
	}

	res.Eligible = true
	res.Reason = ReasonEligible
	res.ServiceDays = generic.DaysBetween(worker.StartDate, in.Today)

	if res.ServiceDays >= p.AnnualLeaveServiceDays {
		res.Method = AccrualAnnual
		res.AccruedDays = p.AnnualLeaveDays
		if p.AnnualLeaveTenureBonus {
			res.Method = AccrualTenure
			res.AccruedDays = tenureDays(res.ServiceDays/p.AnnualLeaveServiceDays, p)
		}
	} else {
		res.Method = AccrualMonthly
		accrual := &FirstYearAccrual{Snapshot: in.Snapshot, Policy: p}
		res.Windows = accrual.Windows(in.Today)
		res.AccruedDays = generic.SumAccruals(
			accrual.GenerateAccruals(worker.StartDate, in.Today),
			generic.UnitDays,
			generic.NewAmountFromDecimal(p.AnnualLeaveFirstYearMax, generic.UnitDays),
		).Value
	}

	year := generic.YearOf(in.Year)
	used := 0
	for _, rec := range in.Snapshot.Records {
		if rec.Status == StatusAnnualLeave && year.Contains(rec.Date) {
			used++
		}
	}
	accrued := generic.NewAmountFromDecimal(res.AccruedDays, generic.UnitDays)
	usedDays := generic.NewAmountFromInt(used, generic.UnitDays)
	res.UsedDays = usedDays.Value
	res.RemainingDays = accrued.Sub(usedDays).ClampZero().Value
	return res
}

// tenureDays is the graduated rule: base days plus one day for every two
// full years beyond the first, capped.
func tenureDays(years int, p Policy) decimal.Decimal {
	extra := decimal.NewFromInt(int64((years - 1) / 2))
	return generic.MinDecimal(p.AnnualLeaveDays.Add(extra), p.AnnualLeaveMaxDays)
}

// =============================================================================
// FIRST-YEAR ACCRUAL - generic.AccrualSchedule over 30-day windows
// =============================================================================

// FirstYearAccrual grants one day per perfectly attended window of the
// first service year.
type FirstYearAccrual struct {
	Snapshot WorkerSnapshot
	Policy   Policy
}

var _ generic.AccrualSchedule = (*FirstYearAccrual)(nil)

// Windows evaluates every window that has started on or before today. Only the
// elapsed part of a window counts, so an unfinished window is judged on the
// workdays that have occurred so far.
func (a *FirstYearAccrual) Windows(today generic.TimePoint) []LeaveWindow {
	worker := a.Snapshot.Worker
	var out []LeaveWindow
	for _, w := range generic.Windows(worker.StartDate, today, a.Policy.AnnualLeaveWindowDays) {
		lw := LeaveWindow{Start: w.Start, End: w.End}
		elapsed := w
		if elapsed.End.After(today) {
			elapsed.End = today
		}
		for _, r := range ScheduledDays(a.Snapshot.Schedules, worker, elapsed) {
			lw.ScheduledDays++
			if rec, ok := a.Snapshot.Records.On(r.Date); ok && rec.Status == StatusAbsent {
				lw.AbsentDays = append(lw.AbsentDays, r.Date)
			}
		}
		lw.Granted = lw.ScheduledDays > 0 && len(lw.AbsentDays) == 0
		out = append(out, lw)
	}
	return out
}

// GenerateAccruals returns one event per granted window starting in [from, to].
func (a *FirstYearAccrual) GenerateAccruals(from, to generic.TimePoint) []generic.AccrualEvent {
	var events []generic.AccrualEvent
	for _, w := range a.Windows(to) {
		if !w.Granted || w.Start.Before(from) {
			continue
		}
		events = append(events, generic.AccrualEvent{
			At:     w.Start,
			Amount: generic.NewAmountFromInt(1, generic.UnitDays),
			Reason: "attended window " + w.Start.String(),
		})
	}
	return events
}
