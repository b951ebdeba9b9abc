package labor

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// MONTHLY PAYROLL AGGREGATOR
// =============================================================================

// Day sources in the breakdown.
const (
	SourceActual    = "actual"
	SourceRecord    = "record"
	SourceScheduled = "scheduled"
	SourceNone      = "none"
)

type PayrollInput struct {
	// Snapshot records must cover every week intersecting the month.
	Snapshot WorkerSnapshot
	Year     int
	Month    time.Month
	Today    generic.TimePoint
	// Holidays of the month; only LEGAL entries earn the premium.
	Holidays []generic.Holiday
	Policy   Policy
}

type DayPay struct {
	Date         generic.TimePoint `json:"date"`
	Source       string            `json:"source"`
	Status       AttendanceStatus  `json:"status,omitempty"`
	Hours        decimal.Decimal   `json:"hours"`
	NightHours   decimal.Decimal   `json:"night_hours"`
	BasePay      decimal.Decimal   `json:"base_pay"`
	NightBonus   decimal.Decimal   `json:"night_bonus"`
	HolidayBonus decimal.Decimal   `json:"holiday_bonus"`
	IsRestDay    bool              `json:"is_rest_day"`
	Holiday      string            `json:"holiday,omitempty"`
	Note         string            `json:"note,omitempty"`
}

// MonthlyHolidayPay is the weekly holiday pay of every week intersecting a month.
type MonthlyHolidayPay struct {
	Year           int                   `json:"year"`
	Month          time.Month            `json:"month"`
	Weeks          []WeeklyHolidayResult `json:"weeks"`
	Total          decimal.Decimal       `json:"total"`
	ConfirmedTotal decimal.Decimal       `json:"confirmed_total"`
	ProjectedTotal decimal.Decimal       `json:"projected_total"`
}

type MonthlyPayroll struct {
	WorkerID       generic.EntityID  `json:"worker_id"`
	Year           int               `json:"year"`
	Month          time.Month        `json:"month"`
	AsOf           generic.TimePoint `json:"as_of"`
	TotalHours     decimal.Decimal   `json:"total_hours"`
	ActualHours    decimal.Decimal   `json:"actual_hours"`
	ScheduledHours decimal.Decimal   `json:"scheduled_hours"`
	NightHours     decimal.Decimal   `json:"night_hours"`

	BasePay          decimal.Decimal `json:"base_pay"`
	NightBonus       decimal.Decimal `json:"night_bonus"`
	HolidayBonus     decimal.Decimal `json:"holiday_bonus"`
	WeeklyHolidayPay decimal.Decimal `json:"weekly_holiday_pay"`
	GrossPay         decimal.Decimal `json:"gross_pay"`
	Deduction        Deduction       `json:"deduction"`
	NetPay           decimal.Decimal `json:"net_pay"`

	WeeklyHoliday MonthlyHolidayPay `json:"weekly_holiday"`
	Days          []DayPay          `json:"days"`
	Notes         []string          `json:"notes,omitempty"`
}

// ComputeMonthlyPayroll walks every day of the month.
//
// Per day:
//   - a REGULAR_WORK/EXTRA_WORK record contributes its measured hours
//   - any other record contributes nothing (leave, absence, cancellation)
//   - no record, before today: nothing; the past is never projected
//   - no record, today or later: the resolved schedule is projected
//
// Premiums apply only at workplaces of 5 or more: night hours earn the
// night rate, and every hour on the weekly rest day or a LEGAL holiday
// earns the holiday rate. Money is rounded once, on the aggregates.
func ComputeMonthlyPayroll(in PayrollInput) MonthlyPayroll {
	worker := in.Snapshot.Worker
	p := in.Policy
	rate := worker.HourlyRate
	month := generic.MonthOf(in.Year, in.Month)
	legal := generic.LegalHolidaySet(in.Holidays)

	out := MonthlyPayroll{
		WorkerID: worker.ID,
		Year:     in.Year,
		Month:    in.Month,
		AsOf:     in.Today,
	}
	var (
		total, actual, scheduled, night decimal.Decimal
		base, nightBonus, holidayBonus  decimal.Decimal
	)

	for _, d := range month.Days() {
		day := DayPay{
			Date:         d,
			Source:       SourceNone,
			Hours:        decimal.Zero,
			NightHours:   decimal.Zero,
			NightBonus:   decimal.Zero,
			HolidayBonus: decimal.Zero,
			IsRestDay:    d.Weekday() == p.WeeklyRestDay,
		}
		if h, ok := legal[d.String()]; ok {
			day.Holiday = h.Name
		}

		hours, err := dayHours(in, d, &day)
		if err != nil {
			// a malformed shift contributes zero, the month continues
			day.Note = err.Error()
			out.Notes = append(out.Notes, err.Error())
		}

		day.Hours, day.NightHours = hours.Total, hours.Night
		day.BasePay = hours.Total.Mul(rate)
		if worker.WorkplaceOver5 {
			day.NightBonus = hours.Night.Mul(rate).Mul(p.NightPremiumRate)
			if day.IsRestDay || day.Holiday != "" {
				day.HolidayBonus = hours.Total.Mul(rate).Mul(p.HolidayPremiumRate)
			}
		}

		total = total.Add(day.Hours)
		night = night.Add(day.NightHours)
		switch day.Source {
		case SourceActual:
			actual = actual.Add(day.Hours)
		case SourceScheduled:
			scheduled = scheduled.Add(day.Hours)
		}
		base = base.Add(day.BasePay)
		nightBonus = nightBonus.Add(day.NightBonus)
		holidayBonus = holidayBonus.Add(day.HolidayBonus)
		out.Days = append(out.Days, day)
	}

	out.TotalHours, out.ActualHours, out.ScheduledHours, out.NightHours = total, actual, scheduled, night
	out.BasePay = generic.RoundCurrency(base)
	out.NightBonus = generic.RoundCurrency(nightBonus)
	out.HolidayBonus = generic.RoundCurrency(holidayBonus)

	out.WeeklyHoliday = ComputeMonthlyHolidayPay(in.Snapshot, in.Year, in.Month, in.Today, p)
	out.WeeklyHolidayPay = out.WeeklyHoliday.Total
	for _, w := range out.WeeklyHoliday.Weeks {
		out.Notes = append(out.Notes, w.Notes...)
	}

	out.GrossPay = out.BasePay.Add(out.NightBonus).Add(out.HolidayBonus).Add(out.WeeklyHolidayPay)
	out.Deduction = ComputeDeduction(out.GrossPay, worker.DeductionType, p)
	out.NetPay = out.GrossPay.Sub(out.Deduction.Total)
	return out
}

// dayHours chooses between the actual record and the projected schedule.
func dayHours(in PayrollInput, d generic.TimePoint, day *DayPay) (ShiftHours, error) {
	zero := ShiftHours{Total: decimal.Zero, Night: decimal.Zero}

	if rec, ok := in.Snapshot.Records.On(d); ok {
		day.Status = rec.Status
		if !rec.Status.IsWork() {
			day.Source = SourceRecord
			return zero, nil
		}
		day.Source = SourceActual
		h, err := RecordHours(rec, in.Policy)
		if err != nil {
			return zero, err
		}
		return h, nil
	}

	if d.Before(in.Today) {
		return zero, nil
	}

	r := ResolveSchedule(in.Snapshot.Schedules, in.Snapshot.Worker, d)
	if !r.IsScheduled() {
		return zero, nil
	}
	day.Source = SourceScheduled
	h, err := r.Shift().Compute(in.Policy)
	if err != nil {
		return zero, fmt.Errorf("schedule for %s: %w", d, err)
	}
	return h, nil
}

// ComputeMonthlyHolidayPay evaluates every Monday..Sunday week intersecting
// the month. Finished weeks (Sunday before today) are confirmed, the rest
// projected.
func ComputeMonthlyHolidayPay(snapshot WorkerSnapshot, year int, month time.Month, today generic.TimePoint, p Policy) MonthlyHolidayPay {
	out := MonthlyHolidayPay{
		Year:           year,
		Month:          month,
		Total:          decimal.Zero,
		ConfirmedTotal: decimal.Zero,
		ProjectedTotal: decimal.Zero,
	}
	for _, week := range generic.WeeksIntersecting(generic.MonthOf(year, month)) {
		res := EvaluateWeeklyHoliday(WeeklyHolidayInput{
			Snapshot: snapshot,
			Date:     week.Start,
			Today:    today,
			Policy:   p,
		})
		out.Weeks = append(out.Weeks, res)
		out.Total = out.Total.Add(res.Amount)
		if res.IsFinished {
			out.ConfirmedTotal = out.ConfirmedTotal.Add(res.Amount)
		} else {
			out.ProjectedTotal = out.ProjectedTotal.Add(res.Amount)
		}
	}
	return out
}
