package labor

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// SEVERANCE CALCULATOR
// =============================================================================

const (
	MethodRolling90DActual = "ROLLING_90D_ACTUAL"
	MethodContractEstimate = "CONTRACT_ESTIMATE"

	ReasonServiceUnder1Y = "service_period_under_1y"
	ReasonHoursUnder15   = "hours_under_15"
)

type SeveranceInput struct {
	// Snapshot records must cover the averaging window and the weeks around it.
	Snapshot WorkerSnapshot
	Today    generic.TimePoint
	// Holidays of every month the averaging window touches.
	Holidays []generic.Holiday
	Policy   Policy
}

type SeveranceResult struct {
	Eligible       bool              `json:"eligible"`
	Reason         string            `json:"reason"`
	Method         string            `json:"method"`
	ServiceStart   generic.TimePoint `json:"service_start"`
	ServiceEnd     generic.TimePoint `json:"service_end"`
	ServiceDays    int               `json:"service_days"`
	WeeklyHours    decimal.Decimal   `json:"weekly_hours"`
	WindowStart    generic.TimePoint `json:"window_start"`
	WindowEnd      generic.TimePoint `json:"window_end"`
	WindowEarnings decimal.Decimal   `json:"window_earnings"`
	AvgDailyWage   decimal.Decimal   `json:"avg_daily_wage"`
	SeverancePay   decimal.Decimal   `json:"severance_pay"`
	Notes          []string          `json:"notes,omitempty"`
}

// SeveranceWindow returns the averaging window for a service end date.
func SeveranceWindow(serviceEnd generic.TimePoint, p Policy) generic.Period {
	return generic.TrailingDays(serviceEnd, p.SeveranceWindowDays)
}

// ComputeSeverance estimates the lump sum owed at the end of service.
//
//	avg  = trunc(window earnings / window days), or
//	       trunc(weekly hours / 7 * rate) when the window earned nothing
//	pay  = trunc(avg * 30 * service days / 365)
//
// The average is always reported; pay is forced to zero when ineligible.
func ComputeSeverance(in SeveranceInput) SeveranceResult {
	worker := in.Snapshot.Worker
	p := in.Policy
	end := worker.ServiceEnd(in.Today)
	window := SeveranceWindow(end, p)

	res := SeveranceResult{
		ServiceStart:   worker.StartDate,
		ServiceEnd:     end,
		ServiceDays:    max(0, generic.DaysBetween(worker.StartDate, end)),
		WindowStart:    window.Start,
		WindowEnd:      window.End,
		WindowEarnings: decimal.Zero,
		AvgDailyWage:   decimal.Zero,
		SeverancePay:   decimal.Zero,
	}
	res.WeeklyHours = EffectiveWeeklyHours(in.Snapshot, end, p)

	earnings, notes := windowEarnings(in, window)
	res.WindowEarnings = earnings
	res.Notes = notes

	if earnings.IsPositive() {
		res.Method = MethodRolling90DActual
		res.AvgDailyWage = generic.TruncateCurrency(earnings.Div(decimal.NewFromInt(int64(p.SeveranceWindowDays))))
	} else {
		res.Method = MethodContractEstimate
		res.AvgDailyWage = generic.TruncateCurrency(res.WeeklyHours.Div(decimal.NewFromInt(7)).Mul(worker.HourlyRate))
	}

	switch {
	case res.ServiceDays < p.SeveranceMinServiceDays:
		res.Reason = ReasonServiceUnder1Y
		return res
	case res.WeeklyHours.LessThan(p.WeeklyHoursThreshold):
		res.Reason = ReasonHoursUnder15
		return res
	}

	res.Eligible = true
	res.Reason = ReasonEligible
	res.SeverancePay = generic.TruncateCurrency(
		res.AvgDailyWage.
			Mul(decimal.NewFromInt(30)).
			Mul(decimal.NewFromInt(int64(res.ServiceDays))).
			Div(decimal.NewFromInt(365)),
	)
	return res
}

// EffectiveWeeklyHours returns contract weekly hours when set, otherwise the
// resolved schedule hours of the week containing date.
func EffectiveWeeklyHours(snapshot WorkerSnapshot, date generic.TimePoint, p Policy) decimal.Decimal {
	if snapshot.Worker.HasContractHours() {
		return snapshot.Worker.ContractHours()
	}
	total := decimal.Zero
	for _, r := range ScheduledDays(snapshot.Schedules, snapshot.Worker, generic.WeekOf(date)) {
		h, err := r.Shift().Compute(p)
		if err != nil {
			continue
		}
		total = total.Add(h.Total)
	}
	return total
}

// windowEarnings sums actual pay in the window: worked hours, premiums at
// workplaces of 5 or more, and weekly holiday pay of finished weeks lying
// entirely inside the window.
func windowEarnings(in SeveranceInput, window generic.Period) (decimal.Decimal, []string) {
	worker := in.Snapshot.Worker
	p := in.Policy
	rate := worker.HourlyRate
	legal := generic.LegalHolidaySet(in.Holidays)

	var notes []string
	sum := decimal.Zero
	for _, d := range window.Days() {
		rec, ok := in.Snapshot.Records.On(d)
		if !ok || !rec.Status.IsWork() {
			continue
		}
		h, err := RecordHours(rec, p)
		if err != nil {
			notes = append(notes, err.Error())
			continue
		}
		sum = sum.Add(h.Total.Mul(rate))
		if worker.WorkplaceOver5 {
			sum = sum.Add(h.Night.Mul(rate).Mul(p.NightPremiumRate))
			if _, holiday := legal[d.String()]; holiday || d.Weekday() == p.WeeklyRestDay {
				sum = sum.Add(h.Total.Mul(rate).Mul(p.HolidayPremiumRate))
			}
		}
	}

	for _, week := range generic.WeeksIntersecting(window) {
		if !window.Covers(week) || !week.End.Before(in.Today) {
			continue
		}
		wh := EvaluateWeeklyHoliday(WeeklyHolidayInput{
			Snapshot: in.Snapshot,
			Date:     week.Start,
			Today:    in.Today,
			Policy:   p,
		})
		sum = sum.Add(wh.Amount)
	}
	return sum, notes
}
