/*
Package factory provides JSON to Go policy conversion.

PURPOSE:
  Converts a JSON statutory rules file into a labor.Policy. Thresholds and
  rates change with the law; keeping them in a file means a rule change is
  a data change, not a release.

JSON SCHEMA (every key optional; missing keys keep the default):
  {
    "name": "statutory-2025",
    "law_version": "2025-01-01",
    "rules": {
      "min_weekly_hours": 15,
      "require_perfect_attendance": true,
      "daily_holiday_hours_cap": 8
    },
    "night": {"start": "22:00", "end": "06:00", "premium_rate": 0.5, "max_next_day_minutes": 360},
    "holiday": {"premium_rate": 0.5, "weekly_rest_day": "sunday"},
    "deductions": {
      "pension": 0.045, "health": 0.03545, "long_term_care": 0.1295,
      "employment": 0.009, "freelance": 0.033
    },
    "severance": {"min_service_days": 365, "window_days": 90},
    "annual_leave": {
      "days": 15, "first_year_max": 11, "window_days": 30,
      "service_days": 365, "tenure_bonus": false, "max_days": 25
    },
    "minimum_wage": 10030
  }

USAGE:
  f := factory.NewPolicyFactory()
  policy, err := f.LoadFile("rules.json")   // or f.ParsePolicy(jsonString)

SEE ALSO:
  - labor/policy.go: Policy type definition and defaults
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/labor"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of a policy.
type PolicyJSON struct {
	Name        string           `json:"name,omitempty"`
	LawVersion  string           `json:"law_version,omitempty"`
	Rules       *RulesJSON       `json:"rules,omitempty"`
	Night       *NightJSON       `json:"night,omitempty"`
	Holiday     *HolidayJSON     `json:"holiday,omitempty"`
	Deductions  *DeductionsJSON  `json:"deductions,omitempty"`
	Severance   *SeveranceJSON   `json:"severance,omitempty"`
	AnnualLeave *AnnualLeaveJSON `json:"annual_leave,omitempty"`
	MinimumWage *decimal.Decimal `json:"minimum_wage,omitempty"`
}

// RulesJSON holds the weekly holiday pay rules.
type RulesJSON struct {
	MinWeeklyHours           *decimal.Decimal `json:"min_weekly_hours,omitempty"`
	RequirePerfectAttendance *bool            `json:"require_perfect_attendance,omitempty"`
	DailyHolidayHoursCap     *decimal.Decimal `json:"daily_holiday_hours_cap,omitempty"`
}

type NightJSON struct {
	Start             string           `json:"start,omitempty"`
	End               string           `json:"end,omitempty"`
	PremiumRate       *decimal.Decimal `json:"premium_rate,omitempty"`
	MaxNextDayMinutes *int             `json:"max_next_day_minutes,omitempty"`
}

type HolidayJSON struct {
	PremiumRate   *decimal.Decimal `json:"premium_rate,omitempty"`
	WeeklyRestDay string           `json:"weekly_rest_day,omitempty"`
}

type DeductionsJSON struct {
	Pension      *decimal.Decimal `json:"pension,omitempty"`
	Health       *decimal.Decimal `json:"health,omitempty"`
	LongTermCare *decimal.Decimal `json:"long_term_care,omitempty"`
	Employment   *decimal.Decimal `json:"employment,omitempty"`
	Freelance    *decimal.Decimal `json:"freelance,omitempty"`
}

type SeveranceJSON struct {
	MinServiceDays *int `json:"min_service_days,omitempty"`
	WindowDays     *int `json:"window_days,omitempty"`
}

type AnnualLeaveJSON struct {
	Days         *decimal.Decimal `json:"days,omitempty"`
	FirstYearMax *decimal.Decimal `json:"first_year_max,omitempty"`
	WindowDays   *int             `json:"window_days,omitempty"`
	ServiceDays  *int             `json:"service_days,omitempty"`
	TenureBonus  *bool            `json:"tenure_bonus,omitempty"`
	MaxDays      *decimal.Decimal `json:"max_days,omitempty"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to Go structs.
type PolicyFactory struct{}

// NewPolicyFactory creates a new policy factory.
func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// LoadFile reads and parses a rules file.
func (f *PolicyFactory) LoadFile(path string) (labor.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return labor.Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	return f.ParsePolicy(string(data))
}

// ParsePolicy parses a JSON string into a Policy.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (labor.Policy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return labor.Policy{}, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON overlays pj on the default policy and validates the result.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (labor.Policy, error) {
	p := labor.DefaultPolicy()
	if pj.Name != "" {
		p.Name = pj.Name
	}
	if pj.LawVersion != "" {
		p.LawVersion = pj.LawVersion
	}

	if r := pj.Rules; r != nil {
		setDecimal(&p.WeeklyHoursThreshold, r.MinWeeklyHours)
		setBool(&p.RequirePerfectAttendance, r.RequirePerfectAttendance)
		setDecimal(&p.DailyHolidayHoursCap, r.DailyHolidayHoursCap)
	}

	if n := pj.Night; n != nil {
		if n.Start != "" {
			c, err := generic.ParseClockTime(n.Start)
			if err != nil {
				return labor.Policy{}, fmt.Errorf("night.start: %w", err)
			}
			p.NightStart = c
		}
		if n.End != "" {
			c, err := generic.ParseClockTime(n.End)
			if err != nil {
				return labor.Policy{}, fmt.Errorf("night.end: %w", err)
			}
			p.NightEnd = c
		}
		setDecimal(&p.NightPremiumRate, n.PremiumRate)
		setInt(&p.MaxNextDayMinutes, n.MaxNextDayMinutes)
	}

	if h := pj.Holiday; h != nil {
		setDecimal(&p.HolidayPremiumRate, h.PremiumRate)
		if h.WeeklyRestDay != "" {
			day, err := parseWeekday(h.WeeklyRestDay)
			if err != nil {
				return labor.Policy{}, err
			}
			p.WeeklyRestDay = day
		}
	}

	if d := pj.Deductions; d != nil {
		setDecimal(&p.PensionRate, d.Pension)
		setDecimal(&p.HealthRate, d.Health)
		setDecimal(&p.LongTermCareRate, d.LongTermCare)
		setDecimal(&p.EmploymentRate, d.Employment)
		setDecimal(&p.FreelanceRate, d.Freelance)
	}

	if s := pj.Severance; s != nil {
		setInt(&p.SeveranceMinServiceDays, s.MinServiceDays)
		setInt(&p.SeveranceWindowDays, s.WindowDays)
	}

	if a := pj.AnnualLeave; a != nil {
		setDecimal(&p.AnnualLeaveDays, a.Days)
		setDecimal(&p.AnnualLeaveFirstYearMax, a.FirstYearMax)
		setInt(&p.AnnualLeaveWindowDays, a.WindowDays)
		setInt(&p.AnnualLeaveServiceDays, a.ServiceDays)
		setBool(&p.AnnualLeaveTenureBonus, a.TenureBonus)
		setDecimal(&p.AnnualLeaveMaxDays, a.MaxDays)
	}

	setDecimal(&p.MinimumHourlyWage, pj.MinimumWage)

	if err := validatePolicy(p); err != nil {
		return labor.Policy{}, err
	}
	return p, nil
}

// ToJSON converts a Policy to PolicyJSON.
func (f *PolicyFactory) ToJSON(p labor.Policy) PolicyJSON {
	return PolicyJSON{
		Name:       p.Name,
		LawVersion: p.LawVersion,
		Rules: &RulesJSON{
			MinWeeklyHours:           &p.WeeklyHoursThreshold,
			RequirePerfectAttendance: &p.RequirePerfectAttendance,
			DailyHolidayHoursCap:     &p.DailyHolidayHoursCap,
		},
		Night: &NightJSON{
			Start:             p.NightStart.String(),
			End:               p.NightEnd.String(),
			PremiumRate:       &p.NightPremiumRate,
			MaxNextDayMinutes: &p.MaxNextDayMinutes,
		},
		Holiday: &HolidayJSON{
			PremiumRate:   &p.HolidayPremiumRate,
			WeeklyRestDay: strings.ToLower(p.WeeklyRestDay.String()),
		},
		Deductions: &DeductionsJSON{
			Pension:      &p.PensionRate,
			Health:       &p.HealthRate,
			LongTermCare: &p.LongTermCareRate,
			Employment:   &p.EmploymentRate,
			Freelance:    &p.FreelanceRate,
		},
		Severance: &SeveranceJSON{
			MinServiceDays: &p.SeveranceMinServiceDays,
			WindowDays:     &p.SeveranceWindowDays,
		},
		AnnualLeave: &AnnualLeaveJSON{
			Days:         &p.AnnualLeaveDays,
			FirstYearMax: &p.AnnualLeaveFirstYearMax,
			WindowDays:   &p.AnnualLeaveWindowDays,
			ServiceDays:  &p.AnnualLeaveServiceDays,
			TenureBonus:  &p.AnnualLeaveTenureBonus,
			MaxDays:      &p.AnnualLeaveMaxDays,
		},
		MinimumWage: &p.MinimumHourlyWage,
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("holiday.weekly_rest_day: unknown weekday %q", s)
}

func validatePolicy(p labor.Policy) error {
	var errs generic.ValidationErrors
	one := decimal.NewFromInt(1)
	rates := map[string]decimal.Decimal{
		"night.premium_rate":        p.NightPremiumRate,
		"holiday.premium_rate":      p.HolidayPremiumRate,
		"deductions.pension":        p.PensionRate,
		"deductions.health":         p.HealthRate,
		"deductions.long_term_care": p.LongTermCareRate,
		"deductions.employment":     p.EmploymentRate,
		"deductions.freelance":      p.FreelanceRate,
	}
	for field, r := range rates {
		if r.IsNegative() || r.GreaterThan(one) {
			errs.Add(field, "must be between 0 and 1")
		}
	}
	if p.WeeklyHoursThreshold.IsNegative() {
		errs.Add("rules.min_weekly_hours", "must be >= 0")
	}
	if !p.DailyHolidayHoursCap.IsPositive() {
		errs.Add("rules.daily_holiday_hours_cap", "must be > 0")
	}
	if p.MaxNextDayMinutes < 0 || p.MaxNextDayMinutes > 360 {
		errs.Add("night.max_next_day_minutes", "must be between 0 and 360")
	}
	if p.SeveranceWindowDays <= 0 {
		errs.Add("severance.window_days", "must be > 0")
	}
	if p.AnnualLeaveWindowDays <= 0 {
		errs.Add("annual_leave.window_days", "must be > 0")
	}
	if p.AnnualLeaveServiceDays <= 0 {
		errs.Add("annual_leave.service_days", "must be > 0")
	}
	return errs.Err()
}
