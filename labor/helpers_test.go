package labor_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/labor"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

const workerID = generic.EntityID("worker-1")

var policy = labor.DefaultPolicy()

func day(y int, m time.Month, d int) generic.TimePoint {
	return generic.NewTimePoint(y, m, d)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func hoursPtr(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

func clockAt(h, m int) *generic.ClockTime {
	c := generic.NewClockTime(h, m)
	return &c
}

// assertDecimal compares by value; decimal.Decimal is not safe for assert.Equal.
func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}

func shiftTemplate(startH, startM, endH, endM int) labor.ShiftTemplate {
	return labor.ShiftTemplate{
		StartTime: clockAt(startH, startM),
		EndTime:   clockAt(endH, endM),
		Enabled:   true,
	}
}

type workerOption func(*labor.Worker)

func withContract(h int64) workerOption {
	return func(w *labor.Worker) { w.ContractWeeklyHours = hoursPtr(h) }
}

func withStart(d generic.TimePoint) workerOption {
	return func(w *labor.Worker) { w.StartDate = d }
}

func withDeduction(dt labor.DeductionType) workerOption {
	return func(w *labor.Worker) { w.DeductionType = dt }
}

func underFive() workerOption {
	return func(w *labor.Worker) { w.WorkplaceOver5 = false }
}

// newWorker is a 10,000/h worker at a workplace of 5 or more, started 2025-01-01.
func newWorker(opts ...workerOption) labor.Worker {
	w := labor.Worker{
		ID:             workerID,
		Name:           "Kim",
		HourlyRate:     decimal.NewFromInt(10000),
		StartDate:      day(2025, time.January, 1),
		WorkplaceOver5: true,
		DeductionType:  labor.DeductionNone,
	}
	for _, opt := range opts {
		opt(&w)
	}
	return w
}

// weekdays schedules tmpl on each weekday index (0=Mon).
func weekdays(tmpl labor.ShiftTemplate, idx ...int) []labor.WeeklySchedule {
	out := make([]labor.WeeklySchedule, 0, len(idx))
	for _, i := range idx {
		out = append(out, labor.WeeklySchedule{
			ID:            "ws-" + time.Weekday((i+1)%7).String(),
			WorkerID:      workerID,
			Weekday:       i,
			ShiftTemplate: tmpl,
		})
	}
	return out
}

// workedRecord clocks in and out on d. An out time before the in time lands on the next day.
func workedRecord(d generic.TimePoint, inH, inM, outH, outM int) labor.WorkRecord {
	in := time.Date(d.Year(), d.Month(), d.Day(), inH, inM, 0, 0, time.UTC)
	out := time.Date(d.Year(), d.Month(), d.Day(), outH, outM, 0, 0, time.UTC)
	if !out.After(in) {
		out = out.AddDate(0, 0, 1)
	}
	return labor.WorkRecord{
		ID:       "wr-" + d.String(),
		WorkerID: workerID,
		Date:     d,
		TimeIn:   &in,
		TimeOut:  &out,
		Status:   labor.StatusRegularWork,
	}
}

func statusRecord(d generic.TimePoint, s labor.AttendanceStatus) labor.WorkRecord {
	return labor.WorkRecord{ID: "wr-" + d.String(), WorkerID: workerID, Date: d, Status: s}
}

func snapshotOf(w labor.Worker, weekly []labor.WeeklySchedule, monthly []labor.MonthlySchedule, records ...labor.WorkRecord) labor.WorkerSnapshot {
	return labor.WorkerSnapshot{
		Worker:    w,
		Schedules: labor.NewScheduleSnapshot(weekly, monthly),
		Records:   labor.NewRecordSet(records),
	}
}

// fourHourWeekdays is Mon..Fri 09:00-13:00, 20 scheduled hours a week.
func fourHourWeekdays() []labor.WeeklySchedule {
	return weekdays(shiftTemplate(9, 0, 13, 0), 0, 1, 2, 3, 4)
}

// workedWeek records 09:00-13:00 on each given offset from monday.
func workedWeek(monday generic.TimePoint, offsets ...int) []labor.WorkRecord {
	out := make([]labor.WorkRecord, 0, len(offsets))
	for _, o := range offsets {
		out = append(out, workedRecord(monday.AddDays(o), 9, 0, 13, 0))
	}
	return out
}

func periodOfMarch() generic.Period {
	return generic.MonthOf(2025, time.March)
}
