package labor

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

const (
	minYear = 1900
	maxYear = 9999
)

var maxWeeklyHours = decimal.NewFromInt(168)

// ValidateWorker checks a worker before it is stored.
func ValidateWorker(w Worker) error {
	var errs generic.ValidationErrors
	if w.ID == "" {
		errs.Add("id", "required")
	}
	if w.HourlyRate.IsNegative() {
		errs.Add("hourly_rate", "must be >= 0")
	}
	if w.StartDate.IsZero() {
		errs.Add("start_date", "required")
	}
	if w.EndDate != nil && !w.StartDate.IsZero() && w.EndDate.Before(w.StartDate) {
		errs.Add("end_date", "must not be before start_date")
	}
	if w.ContractWeeklyHours != nil {
		if w.ContractWeeklyHours.IsNegative() || w.ContractWeeklyHours.GreaterThan(maxWeeklyHours) {
			errs.Add("contract_weekly_hours", "must be between 0 and 168")
		}
	}
	if !w.DeductionType.Valid() {
		errs.Addf("deduction_type", "unknown deduction type %q", w.DeductionType)
	}
	return errs.Err()
}

// ValidateWorkerForCalculation rejects stored data no calculation can use.
func ValidateWorkerForCalculation(w Worker) error {
	var errs generic.ValidationErrors
	if w.HourlyRate.IsNegative() {
		errs.Add("hourly_rate", "must be >= 0")
	}
	return errs.Err()
}

func validateTemplate(errs *generic.ValidationErrors, t ShiftTemplate) {
	if t.BreakMinutes < 0 {
		errs.Add("break_minutes", "must be >= 0")
	}
	if t.NextDayMinutes < 0 || t.NextDayMinutes > DefaultPolicy().MaxNextDayMinutes {
		errs.Add("next_day_minutes", "must be between 0 and 360")
	}
	if (t.StartTime == nil) != (t.EndTime == nil) {
		errs.Add("end_time", "start_time and end_time must both be set or both be empty")
	}
	if t.StartTime != nil && !t.StartTime.Valid() {
		errs.Add("start_time", "out of range")
	}
	if t.EndTime != nil && !t.EndTime.Valid() {
		errs.Add("end_time", "out of range")
	}
}

func validateWeekday(errs *generic.ValidationErrors, weekday int) {
	if weekday < 0 || weekday > 6 {
		errs.Add("weekday", "must be between 0 (Mon) and 6 (Sun)")
	}
}

// ValidateWeeklySchedule checks a weekly schedule before it is stored.
func ValidateWeeklySchedule(s WeeklySchedule) error {
	var errs generic.ValidationErrors
	if s.WorkerID == "" {
		errs.Add("worker_id", "required")
	}
	validateWeekday(&errs, s.Weekday)
	validateTemplate(&errs, s.ShiftTemplate)
	return errs.Err()
}

// ValidateMonthlySchedule checks a monthly override before it is stored.
func ValidateMonthlySchedule(s MonthlySchedule) error {
	var errs generic.ValidationErrors
	if s.WorkerID == "" {
		errs.Add("worker_id", "required")
	}
	if s.Year < minYear || s.Year > maxYear {
		errs.Add("year", "out of range")
	}
	if s.Month < time.January || s.Month > time.December {
		errs.Add("month", "must be between 1 and 12")
	}
	validateWeekday(&errs, s.Weekday)
	validateTemplate(&errs, s.ShiftTemplate)
	return errs.Err()
}

// ValidateWorkRecord checks a record before it is stored.
func ValidateWorkRecord(r WorkRecord) error {
	var errs generic.ValidationErrors
	if r.WorkerID == "" {
		errs.Add("worker_id", "required")
	}
	if r.Date.IsZero() {
		errs.Add("date", "required")
	}
	if !r.Status.Valid() {
		errs.Addf("attendance_status", "unknown status %q", r.Status)
	}
	if r.BreakMinutes < 0 {
		errs.Add("break_minutes", "must be >= 0")
	}
	if r.NextDayMinutes < 0 || r.NextDayMinutes > DefaultPolicy().MaxNextDayMinutes {
		errs.Add("next_day_minutes", "must be between 0 and 360")
	}
	if (r.TimeIn == nil) != (r.TimeOut == nil) {
		errs.Add("time_out", "time_in and time_out must both be set or both be empty")
	}
	if r.TimeIn != nil && r.TimeOut != nil && r.TimeOut.Sub(*r.TimeIn) > 24*time.Hour {
		errs.Add("time_out", "shift longer than 24 hours")
	}
	return errs.Err()
}

func validateDate(field string, d generic.TimePoint) error {
	if d.IsZero() || d.Year() < minYear || d.Year() > maxYear {
		return generic.ValidationErrors{{Field: field, Reason: "invalid date"}}
	}
	return nil
}

func validateMonth(year int, month time.Month) error {
	var errs generic.ValidationErrors
	if year < minYear || year > maxYear {
		errs.Add("year", "out of range")
	}
	if month < time.January || month > time.December {
		errs.Add("month", "must be between 1 and 12")
	}
	return errs.Err()
}
