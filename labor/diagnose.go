package labor

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// Diagnosis summarises a worker's compliance position as of a date.
type Diagnosis struct {
	WorkerID         generic.EntityID    `json:"worker_id"`
	AsOf             generic.TimePoint   `json:"as_of"`
	HourlyRate       decimal.Decimal     `json:"hourly_rate"`
	MinimumWage      decimal.Decimal     `json:"minimum_wage"`
	MeetsMinimumWage bool                `json:"meets_minimum_wage"`
	WeeklyHoliday    WeeklyHolidayResult `json:"weekly_holiday"`
	Severance        SeveranceResult     `json:"severance"`
	AnnualLeave      AnnualLeaveResult   `json:"annual_leave"`
	Warnings         []string            `json:"warnings,omitempty"`
}

// Diagnose checks minimum wage, this week's holiday pay, severance and
// annual leave in one pass.
func (e *Engine) Diagnose(ctx context.Context, workerID generic.EntityID) (Diagnosis, error) {
	worker, err := e.getWorker(ctx, workerID)
	if err != nil {
		return Diagnosis{}, err
	}
	today := e.Today()

	// sub-results are not recorded individually
	quiet := *e
	quiet.Results = nil
	quiet.Clock = generic.FixedClock(today)

	weekly, err := quiet.WeeklyHolidayPay(ctx, workerID, today)
	if err != nil {
		return Diagnosis{}, err
	}
	severance, err := quiet.Severance(ctx, workerID)
	if err != nil {
		return Diagnosis{}, err
	}
	leave, err := quiet.AnnualLeave(ctx, workerID, today.Year())
	if err != nil {
		return Diagnosis{}, err
	}

	d := Diagnosis{
		WorkerID:         workerID,
		AsOf:             today,
		HourlyRate:       worker.HourlyRate,
		MinimumWage:      e.Policy.MinimumHourlyWage,
		MeetsMinimumWage: worker.HourlyRate.GreaterThanOrEqual(e.Policy.MinimumHourlyWage),
		WeeklyHoliday:    weekly,
		Severance:        severance,
		AnnualLeave:      leave,
	}
	if !d.MeetsMinimumWage {
		d.Warnings = append(d.Warnings, fmt.Sprintf("hourly rate %s is below the minimum wage %s",
			worker.HourlyRate.StringFixed(0), e.Policy.MinimumHourlyWage.StringFixed(0)))
	}
	if !weekly.Eligible && weekly.Reason == ReasonNotPerfectAttendance {
		d.Warnings = append(d.Warnings, fmt.Sprintf("weekly holiday pay lost this week: %d scheduled day(s) without attendance", len(weekly.MissingDays)))
	}
	if weekly.Reason == ReasonLessThanThreshold {
		d.Warnings = append(d.Warnings, "weekly hours below the threshold: no weekly holiday pay, severance or annual leave")
	}
	if !worker.WorkplaceOver5 {
		d.Warnings = append(d.Warnings, "workplace under 5 employees: no night/holiday premiums or annual leave")
	}

	e.record(ctx, workerID, generic.CalcDiagnosis, generic.Period{Start: today, End: today}, today,
		generic.NewAmountFromDecimal(worker.HourlyRate, generic.UnitWon), d)
	return d, nil
}
