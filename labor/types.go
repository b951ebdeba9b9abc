/*
Package labor implements payroll and statutory entitlement rules for hourly workers.

PURPOSE:
  This package gives the generic primitives their labor-law meaning: workers,
  recurring and monthly schedules, attendance records, and the calculators
  that turn them into pay and entitlements.

KEY CONCEPTS IN THIS FILE (types.go):
  - Worker: hourly rate, tenure, workplace size, contract hours, deductions
  - WeeklySchedule / MonthlySchedule: expected shifts per weekday
  - WorkRecord: what actually happened on one date
  - AttendanceStatus / DeductionType: closed vocabularies

COMPONENTS (leaf-first):
  schedule.go        Schedule Resolver (monthly override > weekly > none)
  duration.go        Duration & Night-Hour Calculator
  weekly_holiday.go  Weekly Holiday Pay Evaluator
  payroll.go         Monthly Payroll Aggregator
  deduction.go       Deduction policy
  severance.go       Severance Calculator
  annual_leave.go    Annual Leave Accrual Calculator
  engine.go          Loads snapshots from a Repository and runs the above

All calculators are pure functions over a WorkerSnapshot and an explicit
reference date. Nothing in this package reads the wall clock.
*/
package labor

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// WORKER
// =============================================================================

type DeductionType string

const (
	DeductionNone          DeductionType = "NONE"
	DeductionFourInsurance DeductionType = "FOUR_INSURANCE"
	DeductionFreelance     DeductionType = "FREELANCE"
)

func (d DeductionType) Valid() bool {
	switch d {
	case DeductionNone, DeductionFourInsurance, DeductionFreelance:
		return true
	}
	return false
}

// Worker is an hourly employee and the owner of schedules and records.
type Worker struct {
	ID         generic.EntityID
	Name       string
	HourlyRate decimal.Decimal
	StartDate  generic.TimePoint
	// EndDate is set once employment ended; severance is measured to it.
	EndDate *generic.TimePoint
	// WorkplaceOver5 gates night/holiday premiums and annual leave.
	WorkplaceOver5 bool
	// ContractWeeklyHours is authoritative when set.
	ContractWeeklyHours *decimal.Decimal
	DeductionType       DeductionType
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasContractHours reports whether contract weekly hours are set.
func (w Worker) HasContractHours() bool {
	return w.ContractWeeklyHours != nil
}

// ContractHours returns contract weekly hours, zero when unset.
func (w Worker) ContractHours() decimal.Decimal {
	if w.ContractWeeklyHours == nil {
		return decimal.Zero
	}
	return *w.ContractWeeklyHours
}

// ServiceEnd returns the date service is measured to: EndDate when it is set
// and not after today, otherwise today.
func (w Worker) ServiceEnd(today generic.TimePoint) generic.TimePoint {
	if w.EndDate != nil && w.EndDate.BeforeOrEqual(today) {
		return *w.EndDate
	}
	return today
}

// =============================================================================
// SCHEDULES
// =============================================================================

// ShiftTemplate is the shape shared by weekly and monthly schedules.
// StartTime/EndTime are nil when the entry explicitly carries no shift.
type ShiftTemplate struct {
	StartTime      *generic.ClockTime
	EndTime        *generic.ClockTime
	BreakMinutes   int
	Overnight      bool
	NextDayMinutes int
	Enabled        bool
}

// HasShift reports whether the template describes a working shift.
func (t ShiftTemplate) HasShift() bool {
	return t.Enabled && t.StartTime != nil && t.EndTime != nil
}

// Shift converts the template to a measurable shift. Only valid when HasShift.
func (t ShiftTemplate) Shift() Shift {
	s := Shift{
		BreakMinutes:   t.BreakMinutes,
		Overnight:      t.Overnight,
		NextDayMinutes: t.NextDayMinutes,
	}
	if t.StartTime != nil {
		s.StartMinute = t.StartTime.Minutes()
	}
	if t.EndTime != nil {
		s.EndMinute = t.EndTime.Minutes()
	}
	return s
}

// WeeklySchedule is the recurring expected shift for one weekday (0=Mon .. 6=Sun).
type WeeklySchedule struct {
	ID       string
	WorkerID generic.EntityID
	Weekday  int
	ShiftTemplate
}

// MonthlySchedule overrides the weekly schedule for one weekday of one month.
// An entry without times (or disabled) deliberately suppresses the weekly shift.
type MonthlySchedule struct {
	ID       string
	WorkerID generic.EntityID
	Year     int
	Month    time.Month
	Weekday  int
	ShiftTemplate
}

// MonthlyKey addresses a monthly override.
type MonthlyKey struct {
	Year    int
	Month   time.Month
	Weekday int
}

func (m MonthlySchedule) Key() MonthlyKey {
	return MonthlyKey{Year: m.Year, Month: m.Month, Weekday: m.Weekday}
}

// =============================================================================
// WORK RECORDS
// =============================================================================

type AttendanceStatus string

const (
	StatusRegularWork AttendanceStatus = "REGULAR_WORK"
	StatusExtraWork   AttendanceStatus = "EXTRA_WORK"
	StatusAnnualLeave AttendanceStatus = "ANNUAL_LEAVE"
	StatusAbsent      AttendanceStatus = "ABSENT"
	StatusSickLeave   AttendanceStatus = "SICK_LEAVE"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusRegularWork, StatusExtraWork, StatusAnnualLeave, StatusAbsent, StatusSickLeave:
		return true
	}
	return false
}

// IsWork reports whether the record's hours count as worked time.
func (s AttendanceStatus) IsWork() bool {
	return s == StatusRegularWork || s == StatusExtraWork
}

// CountsAsAttendance reports whether the status satisfies perfect attendance.
func (s AttendanceStatus) CountsAsAttendance() bool {
	return s == StatusRegularWork || s == StatusExtraWork || s == StatusAnnualLeave
}

// BreakInterval is an explicit break, clipped to the worked span when measured.
type BreakInterval struct {
	Start time.Time
	End   time.Time
}

// WorkRecord is what actually happened on one date. At most one per worker per date.
// A record with zero hours is an explicit cancellation, distinct from no record.
type WorkRecord struct {
	ID       string
	WorkerID generic.EntityID
	Date     generic.TimePoint
	TimeIn   *time.Time
	TimeOut  *time.Time
	// BreakMinutes applies when Breaks is empty.
	BreakMinutes   int
	Breaks         []BreakInterval
	Overnight      bool
	NextDayMinutes int
	Status         AttendanceStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
