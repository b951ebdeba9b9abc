package generic

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CALCULATION RESULT - Frozen result of one computation
// =============================================================================

// CalculationResult captures a computed payroll or eligibility result.
// Used for:
//   - Audit trail (what was paid, under which rules, as of which date)
//   - History views (latest calculations per worker)
//   - Conversational summaries
//
// Results are written once and never updated. The engine never reads them
// back to compute anything.
type CalculationResult struct {
	ID       string
	EntityID EntityID
	Type     CalculationType

	// The period the calculation covers
	Period Period

	// The reference "today" the calculation was run with
	AsOf TimePoint

	// Headline figure (net pay, severance pay, remaining leave days, ...)
	Total Amount

	// Version tag of the statutory rule set used
	LawVersion string

	// Full structured result as JSON
	Detail json.RawMessage

	CreatedAt time.Time
}

type CalculationType string

const (
	CalcMonthlyPayroll CalculationType = "MONTHLY_PAYROLL"
	CalcWeeklyHoliday  CalculationType = "WEEKLY_HOLIDAY"
	CalcMonthlyHoliday CalculationType = "MONTHLY_HOLIDAY"
	CalcSeverance      CalculationType = "SEVERANCE"
	CalcAnnualLeave    CalculationType = "ANNUAL_LEAVE"
	CalcDiagnosis      CalculationType = "DIAGNOSIS"
)

// NewCalculationResult freezes detail into a new result with a fresh ID.
func NewCalculationResult(
	entityID EntityID,
	calcType CalculationType,
	period Period,
	asOf TimePoint,
	total Amount,
	lawVersion string,
	detail any,
) (CalculationResult, error) {
	raw, err := json.Marshal(detail)
	if err != nil {
		return CalculationResult{}, fmt.Errorf("encode %s detail: %w", calcType, err)
	}
	return CalculationResult{
		ID:         uuid.NewString(),
		EntityID:   entityID,
		Type:       calcType,
		Period:     period,
		AsOf:       asOf,
		Total:      total,
		LawVersion: lawVersion,
		Detail:     raw,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
