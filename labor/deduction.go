package labor

import (
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// Deduction is the amount withheld from gross pay. Every component is
// floored to a multiple of 10 before summing.
type Deduction struct {
	Type         DeductionType   `json:"type"`
	Pension      decimal.Decimal `json:"pension"`
	Health       decimal.Decimal `json:"health"`
	LongTermCare decimal.Decimal `json:"long_term_care"`
	Employment   decimal.Decimal `json:"employment"`
	IncomeTax    decimal.Decimal `json:"income_tax"`
	Total        decimal.Decimal `json:"total"`
}

// ComputeDeduction applies the deduction policy for dt to gross.
//
//	FOUR_INSURANCE: pension + health + long-term care (share of health) + employment
//	FREELANCE:      flat withholding
//	NONE:           nothing
func ComputeDeduction(gross decimal.Decimal, dt DeductionType, p Policy) Deduction {
	d := Deduction{
		Type:         dt,
		Pension:      decimal.Zero,
		Health:       decimal.Zero,
		LongTermCare: decimal.Zero,
		Employment:   decimal.Zero,
		IncomeTax:    decimal.Zero,
		Total:        decimal.Zero,
	}
	if !gross.IsPositive() {
		return d
	}

	switch dt {
	case DeductionFourInsurance:
		d.Pension = generic.FloorToTen(gross.Mul(p.PensionRate))
		d.Health = generic.FloorToTen(gross.Mul(p.HealthRate))
		d.LongTermCare = generic.FloorToTen(d.Health.Mul(p.LongTermCareRate))
		d.Employment = generic.FloorToTen(gross.Mul(p.EmploymentRate))
	case DeductionFreelance:
		d.IncomeTax = generic.FloorToTen(gross.Mul(p.FreelanceRate))
	}

	d.Total = d.Pension.Add(d.Health).Add(d.LongTermCare).Add(d.Employment).Add(d.IncomeTax)
	return d
}
