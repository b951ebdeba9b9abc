package labor_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/labor"
)

// workedWeekdays records 09:00-13:00 on every Monday..Friday of p.
func workedWeekdays(p generic.Period) []labor.WorkRecord {
	var out []labor.WorkRecord
	for _, d := range p.Days() {
		if d.WeekdayIndex() < 5 {
			out = append(out, workedRecord(d, 9, 0, 13, 0))
		}
	}
	return out
}

func marchPayroll(snap labor.WorkerSnapshot, today generic.TimePoint, holidays ...generic.Holiday) labor.MonthlyPayroll {
	return labor.ComputeMonthlyPayroll(labor.PayrollInput{
		Snapshot: snap,
		Year:     2025,
		Month:    time.March,
		Today:    today,
		Holidays: holidays,
		Policy:   policy,
	})
}

var afterMarch = day(2025, time.June, 1)

// =============================================================================
// MONTHLY PAYROLL
// =============================================================================

func TestMonthlyPayroll_FullMonthWithDeductions(t *testing.T) {
	// GIVEN: every March weekday worked 4h, four-insurance deductions
	w := newWorker(withContract(20), withDeduction(labor.DeductionFourInsurance))
	snap := snapshotOf(w, fourHourWeekdays(), nil, workedWeekdays(periodOfMarch())...)

	// WHEN
	res := marchPayroll(snap, afterMarch)

	// THEN: 21 days x 4h x 10,000
	assertDecimal(t, "84", res.TotalHours)
	assertDecimal(t, "84", res.ActualHours)
	assertDecimal(t, "0", res.ScheduledHours)
	assertDecimal(t, "840000", res.BasePay)
	assertDecimal(t, "0", res.NightBonus)
	assertDecimal(t, "0", res.HolidayBonus)

	// weeks Mar 3..30 are fully attended; the two edge weeks miss their
	// February and April days
	require.Len(t, res.WeeklyHoliday.Weeks, 6)
	assertDecimal(t, "160000", res.WeeklyHolidayPay)
	assertDecimal(t, "160000", res.WeeklyHoliday.ConfirmedTotal)

	assertDecimal(t, "1000000", res.GrossPay)
	assertDecimal(t, "45000", res.Deduction.Pension)
	assertDecimal(t, "35450", res.Deduction.Health)
	assertDecimal(t, "4590", res.Deduction.LongTermCare)
	assertDecimal(t, "9000", res.Deduction.Employment)
	assertDecimal(t, "94040", res.Deduction.Total)
	assertDecimal(t, "905960", res.NetPay)
	assert.Len(t, res.Days, 31)
}

func TestMonthlyPayroll_NightAndRestDayPremiums(t *testing.T) {
	// GIVEN: a Sunday 22:00-06:00 shift
	sunday := day(2025, time.March, 2)
	rec := workedRecord(sunday, 22, 0, 6, 0)

	t.Run("workplace of 5 or more", func(t *testing.T) {
		res := marchPayroll(snapshotOf(newWorker(), nil, nil, rec), afterMarch)

		assertDecimal(t, "80000", res.BasePay)
		assertDecimal(t, "8", res.NightHours)
		assertDecimal(t, "40000", res.NightBonus)
		assertDecimal(t, "40000", res.HolidayBonus)
		assertDecimal(t, "160000", res.GrossPay)
		assert.True(t, res.Days[1].IsRestDay)
	})

	t.Run("workplace under 5", func(t *testing.T) {
		res := marchPayroll(snapshotOf(newWorker(underFive()), nil, nil, rec), afterMarch)

		assertDecimal(t, "80000", res.BasePay)
		assertDecimal(t, "0", res.NightBonus)
		assertDecimal(t, "0", res.HolidayBonus)
		assertDecimal(t, "80000", res.GrossPay)
	})
}

func TestMonthlyPayroll_OnlyLegalHolidaysEarnPremium(t *testing.T) {
	// GIVEN: Wednesday is a LEGAL holiday, Thursday an observance, both worked
	wed, thu := day(2025, time.March, 5), day(2025, time.March, 6)
	holidays := []generic.Holiday{
		{ID: "h1", Date: wed, Name: "Temporary Holiday", Type: generic.HolidayLegal},
		{ID: "h2", Date: thu, Name: "Arbor Day", Type: generic.HolidayObservance},
	}
	snap := snapshotOf(newWorker(), nil, nil, workedRecord(wed, 9, 0, 13, 0), workedRecord(thu, 9, 0, 13, 0))

	// WHEN
	res := marchPayroll(snap, afterMarch, holidays...)

	// THEN: 4h x 10,000 x 50% on Wednesday only
	assertDecimal(t, "20000", res.HolidayBonus)
	assert.Equal(t, "Temporary Holiday", res.Days[4].Holiday)
	assert.Empty(t, res.Days[5].Holiday)
}

func TestMonthlyPayroll_PastIsNeverProjected(t *testing.T) {
	// GIVEN: today is Saturday 2025-03-15; only March 3 was recorded,
	// and March 17 is already marked absent
	records := []labor.WorkRecord{
		workedRecord(day(2025, time.March, 3), 9, 0, 13, 0),
		statusRecord(day(2025, time.March, 17), labor.StatusAbsent),
	}
	snap := snapshotOf(newWorker(withContract(20)), fourHourWeekdays(), nil, records...)

	// WHEN
	res := marchPayroll(snap, day(2025, time.March, 15))

	// THEN: unrecorded past weekdays are zero, 10 future weekdays are projected
	assertDecimal(t, "4", res.ActualHours)
	assertDecimal(t, "40", res.ScheduledHours)
	assertDecimal(t, "44", res.TotalHours)

	byDate := make(map[string]labor.DayPay)
	for _, d := range res.Days {
		byDate[d.Date.String()] = d
	}
	assert.Equal(t, labor.SourceActual, byDate["2025-03-03"].Source)
	assert.Equal(t, labor.SourceNone, byDate["2025-03-04"].Source)
	assert.Equal(t, labor.SourceRecord, byDate["2025-03-17"].Source)
	assert.Equal(t, labor.StatusAbsent, byDate["2025-03-17"].Status)
	assert.Equal(t, labor.SourceScheduled, byDate["2025-03-18"].Source)
}

func TestMonthlyPayroll_MalformedRecordContributesZero(t *testing.T) {
	// GIVEN: one broken record among good ones
	broken := workedRecord(day(2025, time.March, 4), 9, 0, 13, 0)
	broken.TimeOut = nil
	records := []labor.WorkRecord{workedRecord(day(2025, time.March, 3), 9, 0, 13, 0), broken}

	// WHEN
	res := marchPayroll(snapshotOf(newWorker(), nil, nil, records...), afterMarch)

	// THEN: the month still computes, the broken day is noted
	assertDecimal(t, "4", res.TotalHours)
	assert.NotEmpty(t, res.Notes)
	assert.NotEmpty(t, res.Days[3].Note)
}

func TestMonthlyPayroll_Idempotent(t *testing.T) {
	// Property: same stored state, same output
	w := newWorker(withContract(20), withDeduction(labor.DeductionFreelance))
	records := workedWeekdays(generic.Period{Start: day(2025, time.March, 1), End: day(2025, time.March, 14)})
	snap := snapshotOf(w, fourHourWeekdays(), nil, records...)
	today := day(2025, time.March, 15)

	first, err := json.Marshal(marchPayroll(snap, today))
	require.NoError(t, err)
	second, err := json.Marshal(marchPayroll(snap, today))
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
}

// =============================================================================
// MONTHLY HOLIDAY PAY
// =============================================================================

func TestMonthlyHolidayPay_ConfirmedAndProjected(t *testing.T) {
	// GIVEN: today is Wednesday 2025-03-12, every weekday up to yesterday worked
	records := workedWeekdays(generic.Period{Start: day(2025, time.March, 3), End: day(2025, time.March, 11)})
	snap := snapshotOf(newWorker(withContract(20)), fourHourWeekdays(), nil, records...)

	// WHEN
	res := labor.ComputeMonthlyHolidayPay(snap, 2025, time.March, day(2025, time.March, 12), policy)

	// THEN: Mar 3..9 confirmed, the current and later weeks projected,
	// the week of Feb 24 finished without its February days
	require.Len(t, res.Weeks, 6)
	assert.False(t, res.Weeks[0].Eligible)
	assert.True(t, res.Weeks[1].IsFinished)
	assertDecimal(t, "40000", res.ConfirmedTotal)
	assertDecimal(t, "160000", res.ProjectedTotal)
	assertDecimal(t, "200000", res.Total)
}

// =============================================================================
// DEDUCTIONS
// =============================================================================

func TestComputeDeduction(t *testing.T) {
	t.Run("four insurance floors each component", func(t *testing.T) {
		d := labor.ComputeDeduction(dec("123456"), labor.DeductionFourInsurance, policy)

		assertDecimal(t, "5550", d.Pension)
		assertDecimal(t, "4370", d.Health)
		assertDecimal(t, "560", d.LongTermCare)
		assertDecimal(t, "1110", d.Employment)
		assertDecimal(t, "11590", d.Total)
	})

	t.Run("freelance withholding", func(t *testing.T) {
		d := labor.ComputeDeduction(dec("1000000"), labor.DeductionFreelance, policy)

		assertDecimal(t, "33000", d.IncomeTax)
		assertDecimal(t, "33000", d.Total)
	})

	t.Run("none", func(t *testing.T) {
		d := labor.ComputeDeduction(dec("1000000"), labor.DeductionNone, policy)
		assertDecimal(t, "0", d.Total)
	})

	t.Run("no gross, no deduction", func(t *testing.T) {
		d := labor.ComputeDeduction(dec("0"), labor.DeductionFourInsurance, policy)
		assertDecimal(t, "0", d.Total)
	})
}
