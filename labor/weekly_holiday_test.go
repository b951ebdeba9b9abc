package labor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/labor"
)

// Week under test: Monday 2025-01-06 .. Sunday 2025-01-12.
var (
	monday    = day(2025, time.January, 6)
	nextMonth = day(2025, time.February, 1)
)

func evaluateWeek(snap labor.WorkerSnapshot, today generic.TimePoint) labor.WeeklyHolidayResult {
	return labor.EvaluateWeeklyHoliday(labor.WeeklyHolidayInput{
		Snapshot: snap,
		Date:     monday.AddDays(2),
		Today:    today,
		Policy:   policy,
	})
}

func TestWeeklyHoliday_FullAttendance(t *testing.T) {
	// GIVEN: contract 20h, Mon..Fri 4h, every day worked
	snap := snapshotOf(newWorker(withContract(20)), fourHourWeekdays(), nil, workedWeek(monday, 0, 1, 2, 3, 4)...)

	// WHEN
	res := evaluateWeek(snap, nextMonth)

	// THEN: 20h / 5 days = 4h at 10,000
	assert.True(t, res.Eligible)
	assert.Equal(t, labor.ReasonEligible, res.Reason)
	assertDecimal(t, "4", res.Hours)
	assertDecimal(t, "40000", res.Amount)
	assert.Equal(t, labor.HoursFromContract, res.HoursSource)
	assert.Equal(t, 5, res.ScheduledDays)
	assert.True(t, res.WeekStart.Equal(monday))
	assert.True(t, res.WeekEnd.Equal(monday.AddDays(6)))
	assert.True(t, res.IsFinished)
}

func TestWeeklyHoliday_MissingDayLosesAllowance(t *testing.T) {
	// GIVEN: Wednesday has no record
	snap := snapshotOf(newWorker(withContract(20)), fourHourWeekdays(), nil, workedWeek(monday, 0, 1, 3, 4)...)

	// WHEN
	res := evaluateWeek(snap, nextMonth)

	// THEN
	assert.False(t, res.Eligible)
	assert.Equal(t, labor.ReasonNotPerfectAttendance, res.Reason)
	assertDecimal(t, "0", res.Amount)
	require.Len(t, res.MissingDays, 1)
	assert.True(t, res.MissingDays[0].Equal(monday.AddDays(2)))
}

func TestWeeklyHoliday_BelowThreshold(t *testing.T) {
	// GIVEN: contract 12h
	w := newWorker(withContract(12))

	t.Run("no records", func(t *testing.T) {
		res := evaluateWeek(snapshotOf(w, fourHourWeekdays(), nil), nextMonth)
		assert.False(t, res.Eligible)
		assert.Equal(t, labor.ReasonLessThanThreshold, res.Reason)
		assertDecimal(t, "0", res.Amount)
	})

	t.Run("partial attendance under the threshold", func(t *testing.T) {
		res := evaluateWeek(snapshotOf(w, fourHourWeekdays(), nil, workedWeek(monday, 0, 1, 2)...), nextMonth)
		assert.Equal(t, labor.ReasonLessThanThreshold, res.Reason)
		assertDecimal(t, "12", res.ActualHours)
		assertDecimal(t, "0", res.Amount)
	})
}

func TestWeeklyHoliday_ActualHoursOverrideLowContract(t *testing.T) {
	// GIVEN: contract 12h but 20h actually worked
	snap := snapshotOf(newWorker(withContract(12)), fourHourWeekdays(), nil, workedWeek(monday, 0, 1, 2, 3, 4)...)

	// WHEN
	res := evaluateWeek(snap, nextMonth)

	// THEN: the worker-favorable override applies
	assert.True(t, res.Eligible)
	assert.Equal(t, labor.HoursFromActual, res.HoursSource)
	assertDecimal(t, "20", res.WeeklyHours)
	assertDecimal(t, "40000", res.Amount)
}

func TestWeeklyHoliday_AnnualLeaveCountsAsAttendance(t *testing.T) {
	records := append(workedWeek(monday, 0, 1, 3, 4), statusRecord(monday.AddDays(2), labor.StatusAnnualLeave))
	snap := snapshotOf(newWorker(withContract(20)), fourHourWeekdays(), nil, records...)

	res := evaluateWeek(snap, nextMonth)

	assert.True(t, res.Eligible)
	assertDecimal(t, "40000", res.Amount)
}

func TestWeeklyHoliday_DisqualifyingStatuses(t *testing.T) {
	for _, status := range []labor.AttendanceStatus{labor.StatusAbsent, labor.StatusSickLeave} {
		t.Run(string(status), func(t *testing.T) {
			records := append(workedWeek(monday, 0, 1, 3, 4), statusRecord(monday.AddDays(2), status))
			snap := snapshotOf(newWorker(withContract(20)), fourHourWeekdays(), nil, records...)

			res := evaluateWeek(snap, nextMonth)

			assert.Equal(t, labor.ReasonNotPerfectAttendance, res.Reason)
		})
	}
}

func TestWeeklyHoliday_AbsenceIsMonotonic(t *testing.T) {
	// Property: turning any scheduled day into ABSENT flips eligible to not_perfect_attendance
	w := newWorker(withContract(20))
	base := evaluateWeek(snapshotOf(w, fourHourWeekdays(), nil, workedWeek(monday, 0, 1, 2, 3, 4)...), nextMonth)
	require.True(t, base.Eligible)

	for absent := 0; absent < 5; absent++ {
		var records []labor.WorkRecord
		for i := 0; i < 5; i++ {
			if i == absent {
				records = append(records, statusRecord(monday.AddDays(i), labor.StatusAbsent))
				continue
			}
			records = append(records, workedRecord(monday.AddDays(i), 9, 0, 13, 0))
		}
		res := evaluateWeek(snapshotOf(w, fourHourWeekdays(), nil, records...), nextMonth)
		assert.False(t, res.Eligible, "absent on day %d", absent)
		assert.Equal(t, labor.ReasonNotPerfectAttendance, res.Reason)
	}
}

func TestWeeklyHoliday_DailyCap(t *testing.T) {
	// 48h over 5 days would be 9.6h; the daily allowance is capped at 8h
	snap := snapshotOf(newWorker(withContract(48)), fourHourWeekdays(), nil, workedWeek(monday, 0, 1, 2, 3, 4)...)

	res := evaluateWeek(snap, nextMonth)

	assertDecimal(t, "8", res.Hours)
	assertDecimal(t, "80000", res.Amount)
}

func TestWeeklyHoliday_RoundsToCurrencyUnit(t *testing.T) {
	// 17h over 3 days = 5.666..h -> 56,667
	weekly := weekdays(shiftTemplate(9, 0, 13, 0), 0, 2, 4)
	snap := snapshotOf(newWorker(withContract(17)), weekly, nil, workedWeek(monday, 0, 2, 4)...)

	res := evaluateWeek(snap, nextMonth)

	require.True(t, res.Eligible)
	assertDecimal(t, "56667", res.Amount)
}

func TestWeeklyHoliday_ScheduleHoursWithoutContract(t *testing.T) {
	snap := snapshotOf(newWorker(), fourHourWeekdays(), nil, workedWeek(monday, 0, 1, 2, 3, 4)...)

	res := evaluateWeek(snap, nextMonth)

	assert.Equal(t, labor.HoursFromSchedule, res.HoursSource)
	assertDecimal(t, "20", res.ScheduledHours)
	assertDecimal(t, "40000", res.Amount)
}

func TestWeeklyHoliday_ActualHoursDoNotOverrideLowSchedule(t *testing.T) {
	// GIVEN: no contract, 12h scheduled (Mon, Wed, Fri) but 20h worked
	weekly := weekdays(shiftTemplate(9, 0, 13, 0), 0, 2, 4)
	snap := snapshotOf(newWorker(), weekly, nil, workedWeek(monday, 0, 1, 2, 3, 4)...)

	// WHEN
	res := evaluateWeek(snap, nextMonth)

	// THEN: the schedule stays authoritative
	assert.False(t, res.Eligible)
	assert.Equal(t, labor.ReasonLessThanThreshold, res.Reason)
	assert.Equal(t, labor.HoursFromSchedule, res.HoursSource)
	assertDecimal(t, "12", res.WeeklyHours)
	assertDecimal(t, "20", res.ActualHours)
}

func TestWeeklyHoliday_NoScheduledDays(t *testing.T) {
	snap := snapshotOf(newWorker(withContract(20)), nil, nil)

	res := evaluateWeek(snap, nextMonth)

	assert.False(t, res.Eligible)
	assert.Equal(t, labor.ReasonNoScheduledDays, res.Reason)
}

func TestWeeklyHoliday_CurrentWeekProjects(t *testing.T) {
	// GIVEN: today is Wednesday; Monday and Tuesday are recorded
	snap := snapshotOf(newWorker(withContract(20)), fourHourWeekdays(), nil, workedWeek(monday, 0, 1)...)

	// WHEN
	res := evaluateWeek(snap, monday.AddDays(2))

	// THEN: Wednesday..Friday are pending, the week is projected eligible
	assert.True(t, res.Eligible)
	assert.False(t, res.IsFinished)
	assert.Len(t, res.PendingDays, 3)
	assert.Empty(t, res.MissingDays)
}

func TestWeeklyHoliday_MonthlyOverrideChangesScheduledDays(t *testing.T) {
	// GIVEN: January overrides Wednesday to "no shift"; four days worked
	monthly := []labor.MonthlySchedule{{WorkerID: workerID, Year: 2025, Month: time.January, Weekday: 2}}
	snap := snapshotOf(newWorker(withContract(20)), fourHourWeekdays(), monthly, workedWeek(monday, 0, 1, 3, 4)...)

	// WHEN
	res := evaluateWeek(snap, nextMonth)

	// THEN: Wednesday is not a scheduled day, 20h / 4 days = 5h
	assert.True(t, res.Eligible)
	assert.Equal(t, 4, res.ScheduledDays)
	assertDecimal(t, "5", res.Hours)
	assertDecimal(t, "50000", res.Amount)
}
