/*
policy.go - Statutory rule set

PURPOSE:
  Every threshold, rate and cap the calculators use lives in Policy so that a
  rule change is a data change. DefaultPolicy carries the values the engine
  ships with; factory.ParsePolicy overlays a JSON rules file on top of it.

RULES:
  Weekly holiday:  15h/week threshold, perfect attendance, 8h daily cap
  Night window:    22:00 - 06:00, +50% premium (workplaces of 5 or more)
  Holiday premium: +50% on the weekly rest day and LEGAL holidays
  Deductions:      pension 4.5%, health 3.545%, long-term care 12.95% of
                   health, employment 0.9%; freelance withholding 3.3%
  Severance:       365 service days, 90-day averaging window
  Annual leave:    15 days after one year; 1 day per attended 30-day window
                   (max 11) during the first year

SEE ALSO:
  - factory/policy.go: JSON loading
*/
package labor

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

type Policy struct {
	Name string
	// LawVersion tags calculation results with the rule set used.
	LawVersion string

	WeeklyHoursThreshold     decimal.Decimal
	RequirePerfectAttendance bool
	DailyHolidayHoursCap     decimal.Decimal

	NightStart generic.ClockTime
	NightEnd   generic.ClockTime
	// MaxNextDayMinutes bounds the 00:00-06:00 spill-over of a shift.
	MaxNextDayMinutes int

	NightPremiumRate   decimal.Decimal
	HolidayPremiumRate decimal.Decimal
	WeeklyRestDay      time.Weekday

	PensionRate      decimal.Decimal
	HealthRate       decimal.Decimal
	LongTermCareRate decimal.Decimal
	EmploymentRate   decimal.Decimal
	FreelanceRate    decimal.Decimal

	SeveranceMinServiceDays int
	SeveranceWindowDays     int

	AnnualLeaveDays         decimal.Decimal
	AnnualLeaveFirstYearMax decimal.Decimal
	AnnualLeaveWindowDays   int
	AnnualLeaveTenureBonus  bool
	AnnualLeaveMaxDays      decimal.Decimal
	AnnualLeaveServiceDays  int

	MinimumHourlyWage decimal.Decimal
}

// DefaultPolicy returns the rule set the engine ships with.
func DefaultPolicy() Policy {
	return Policy{
		Name:       "statutory-default",
		LawVersion: "2025-01-01",

		WeeklyHoursThreshold:     decimal.NewFromInt(15),
		RequirePerfectAttendance: true,
		DailyHolidayHoursCap:     decimal.NewFromInt(8),

		NightStart:        generic.NewClockTime(22, 0),
		NightEnd:          generic.NewClockTime(6, 0),
		MaxNextDayMinutes: 360,

		NightPremiumRate:   decimal.RequireFromString("0.5"),
		HolidayPremiumRate: decimal.RequireFromString("0.5"),
		WeeklyRestDay:      time.Sunday,

		PensionRate:      decimal.RequireFromString("0.045"),
		HealthRate:       decimal.RequireFromString("0.03545"),
		LongTermCareRate: decimal.RequireFromString("0.1295"),
		EmploymentRate:   decimal.RequireFromString("0.009"),
		FreelanceRate:    decimal.RequireFromString("0.033"),

		SeveranceMinServiceDays: 365,
		SeveranceWindowDays:     90,

		AnnualLeaveDays:         decimal.NewFromInt(15),
		AnnualLeaveFirstYearMax: decimal.NewFromInt(11),
		AnnualLeaveWindowDays:   30,
		AnnualLeaveTenureBonus:  false,
		AnnualLeaveMaxDays:      decimal.NewFromInt(25),
		AnnualLeaveServiceDays:  365,

		MinimumHourlyWage: decimal.NewFromInt(10030),
	}
}

// nightWindows returns the night intervals, in minutes relative to the shift's
// start date midnight, that a shift spanning at most two days can touch.
func (p Policy) nightWindows() [][2]int {
	start, end := p.NightStart.Minutes(), p.NightEnd.Minutes()
	var windows [][2]int
	for day := 0; day <= 2; day++ {
		base := day * generic.MinutesPerDay
		if start > end {
			// wraps through midnight: previous evening .. this morning
			windows = append(windows, [2]int{base - generic.MinutesPerDay + start, base + end})
		} else if start < end {
			windows = append(windows, [2]int{base + start, base + end})
		}
	}
	return windows
}
