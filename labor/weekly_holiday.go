package labor

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// WEEKLY HOLIDAY PAY EVALUATOR
// =============================================================================

// Reasons reported by the weekly holiday evaluation.
const (
	ReasonEligible             = "eligible"
	ReasonLessThanThreshold    = "less_than_threshold"
	ReasonNotPerfectAttendance = "not_perfect_attendance"
	ReasonNoScheduledDays      = "no_scheduled_days"
)

// Where the effective weekly hours came from.
const (
	HoursFromContract = "contract"
	HoursFromSchedule = "schedule"
	HoursFromActual   = "actual"
)

type WeeklyHolidayInput struct {
	Snapshot WorkerSnapshot
	// Date is any day inside the target Monday..Sunday week.
	Date   generic.TimePoint
	Today  generic.TimePoint
	Policy Policy
}

type WeeklyHolidayResult struct {
	WeekStart generic.TimePoint `json:"week_start"`
	WeekEnd   generic.TimePoint `json:"week_end"`
	Eligible  bool              `json:"is_eligible"`
	Reason    string            `json:"reason"`
	// Hours is the paid daily holiday hours, Amount what they are worth.
	Hours  decimal.Decimal `json:"hours"`
	Amount decimal.Decimal `json:"amount"`

	WeeklyHours    decimal.Decimal     `json:"weekly_hours"`
	HoursSource    string              `json:"hours_source"`
	ScheduledHours decimal.Decimal     `json:"scheduled_hours"`
	ActualHours    decimal.Decimal     `json:"actual_hours"`
	ScheduledDays  int                 `json:"scheduled_days"`
	MissingDays    []generic.TimePoint `json:"missing_days,omitempty"`
	PendingDays    []generic.TimePoint `json:"pending_days,omitempty"`
	// IsFinished is true once the week's Sunday is before today.
	IsFinished bool     `json:"is_finished"`
	Notes      []string `json:"notes,omitempty"`
}

// EvaluateWeeklyHoliday determines eligibility and the allowance for the
// Monday..Sunday week containing in.Date.
//
// Scheduled days from today on without a record have not happened yet; they
// are counted as pending, not missing, so the current week projects pay.
func EvaluateWeeklyHoliday(in WeeklyHolidayInput) WeeklyHolidayResult {
	worker := in.Snapshot.Worker
	p := in.Policy
	week := generic.WeekOf(in.Date)

	res := WeeklyHolidayResult{
		WeekStart:      week.Start,
		WeekEnd:        week.End,
		Hours:          decimal.Zero,
		Amount:         decimal.Zero,
		ScheduledHours: decimal.Zero,
		ActualHours:    decimal.Zero,
		IsFinished:     week.End.Before(in.Today),
	}

	// 1. scheduled days and their expected hours
	scheduled := ScheduledDays(in.Snapshot.Schedules, worker, week)
	res.ScheduledDays = len(scheduled)
	for _, r := range scheduled {
		h, err := r.Shift().Compute(p)
		if err != nil {
			res.Notes = append(res.Notes, err.Error())
			continue
		}
		res.ScheduledHours = res.ScheduledHours.Add(h.Total)
	}

	// actual worked hours in the week
	for _, d := range week.Days() {
		rec, ok := in.Snapshot.Records.On(d)
		if !ok || !rec.Status.IsWork() {
			continue
		}
		h, err := RecordHours(rec, p)
		if err != nil {
			res.Notes = append(res.Notes, err.Error())
			continue
		}
		res.ActualHours = res.ActualHours.Add(h.Total)
	}

	// 2. effective weekly hours
	res.WeeklyHours, res.HoursSource = res.ScheduledHours, HoursFromSchedule
	if worker.HasContractHours() {
		res.WeeklyHours, res.HoursSource = worker.ContractHours(), HoursFromContract
		// actual work meeting the threshold overrides a lower contract only
		if res.WeeklyHours.LessThan(p.WeeklyHoursThreshold) && res.ActualHours.GreaterThanOrEqual(p.WeeklyHoursThreshold) {
			res.WeeklyHours, res.HoursSource = res.ActualHours, HoursFromActual
		}
	}

	// 3. threshold
	if res.WeeklyHours.LessThan(p.WeeklyHoursThreshold) {
		res.Reason = ReasonLessThanThreshold
		return res
	}

	// 4. perfect attendance
	for _, r := range scheduled {
		rec, ok := in.Snapshot.Records.On(r.Date)
		switch {
		case ok && rec.Status.CountsAsAttendance():
		case !ok && r.Date.AfterOrEqual(in.Today):
			res.PendingDays = append(res.PendingDays, r.Date)
		default:
			res.MissingDays = append(res.MissingDays, r.Date)
		}
	}
	if p.RequirePerfectAttendance && len(res.MissingDays) > 0 {
		res.Reason = ReasonNotPerfectAttendance
		return res
	}

	if res.ScheduledDays == 0 {
		res.Reason = ReasonNoScheduledDays
		return res
	}

	// 5. allowance
	days := decimal.NewFromInt(int64(res.ScheduledDays))
	res.Hours = generic.MinDecimal(res.WeeklyHours.Div(days), p.DailyHolidayHoursCap)
	res.Amount = generic.RoundCurrency(res.Hours.Mul(worker.HourlyRate))
	res.Eligible = true
	res.Reason = ReasonEligible
	return res
}
