// Package storetest is the conformance suite every store implementation runs.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/holiday"
	"github.com/warp/payroll-engine/labor"
)

// Store is everything a full backend implements.
type Store interface {
	labor.Store
	generic.ResultStore
	holiday.Store
}

// Run exercises s against the shared contract. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("Workers", func(t *testing.T) { testWorkers(t, newStore(t)) })
	t.Run("WeeklySchedules", func(t *testing.T) { testWeeklySchedules(t, newStore(t)) })
	t.Run("MonthlySchedules", func(t *testing.T) { testMonthlySchedules(t, newStore(t)) })
	t.Run("WorkRecords", func(t *testing.T) { testWorkRecords(t, newStore(t)) })
	t.Run("DeleteWorkerCascades", func(t *testing.T) { testDeleteWorkerCascades(t, newStore(t)) })
	t.Run("Results", func(t *testing.T) { testResults(t, newStore(t)) })
	t.Run("Holidays", func(t *testing.T) { testHolidays(t, newStore(t)) })
}

func date(y int, m time.Month, d int) generic.TimePoint {
	return generic.NewTimePoint(y, m, d)
}

func clockAt(h, m int) *generic.ClockTime {
	c := generic.NewClockTime(h, m)
	return &c
}

// Worker returns a valid worker fixture.
func Worker(id string) labor.Worker {
	contract := decimal.NewFromInt(20)
	return labor.Worker{
		ID:                  generic.EntityID(id),
		Name:                "Worker " + id,
		HourlyRate:          decimal.NewFromInt(10030),
		StartDate:           date(2025, time.January, 1),
		WorkplaceOver5:      true,
		ContractWeeklyHours: &contract,
		DeductionType:       labor.DeductionFourInsurance,
	}
}

func testWorkers(t *testing.T, s Store) {
	ctx := context.Background()

	// missing worker is nil, nil
	got, err := s.GetWorker(ctx, "w-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	w := Worker("w-1")
	end := date(2025, time.December, 31)
	w.EndDate = &end
	require.NoError(t, s.SaveWorker(ctx, w))
	require.NoError(t, s.SaveWorker(ctx, Worker("w-2")))

	got, err = s.GetWorker(ctx, "w-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Worker w-1", got.Name)
	assert.True(t, got.HourlyRate.Equal(decimal.NewFromInt(10030)))
	assert.True(t, got.StartDate.Equal(w.StartDate))
	require.NotNil(t, got.EndDate)
	assert.True(t, got.EndDate.Equal(end))
	require.NotNil(t, got.ContractWeeklyHours)
	assert.True(t, got.ContractWeeklyHours.Equal(decimal.NewFromInt(20)))
	assert.True(t, got.WorkplaceOver5)
	assert.Equal(t, labor.DeductionFourInsurance, got.DeductionType)

	// upsert
	w.Name = "Renamed"
	w.ContractWeeklyHours = nil
	require.NoError(t, s.SaveWorker(ctx, w))
	got, err = s.GetWorker(ctx, "w-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Nil(t, got.ContractWeeklyHours)

	all, err := s.ListWorkers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, generic.EntityID("w-1"), all[0].ID)

	assert.ErrorIs(t, s.DeleteWorker(ctx, "nobody"), generic.ErrWorkerNotFound)
}

func testWeeklySchedules(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveWorker(ctx, Worker("w-1")))

	ws := labor.WeeklySchedule{
		ID: "ws-mon", WorkerID: "w-1", Weekday: 0,
		ShiftTemplate: labor.ShiftTemplate{StartTime: clockAt(22, 0), EndTime: clockAt(24, 0), BreakMinutes: 30, NextDayMinutes: 120, Overnight: true, Enabled: true},
	}
	require.NoError(t, s.SaveWeeklySchedule(ctx, ws))
	require.NoError(t, s.SaveWeeklySchedule(ctx, labor.WeeklySchedule{ID: "ws-fri", WorkerID: "w-1", Weekday: 4}))

	// upsert by weekday
	ws.BreakMinutes = 45
	require.NoError(t, s.SaveWeeklySchedule(ctx, ws))

	got, err := s.WeeklySchedules(ctx, "w-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Weekday)
	assert.Equal(t, 45, got[0].BreakMinutes)
	assert.Equal(t, 120, got[0].NextDayMinutes)
	assert.True(t, got[0].Overnight)
	require.NotNil(t, got[0].EndTime)
	assert.Equal(t, generic.MinutesPerDay, got[0].EndTime.Minutes())
	assert.Nil(t, got[1].StartTime, "no-shift entries round-trip")

	assert.ErrorIs(t, s.SaveWeeklySchedule(ctx, labor.WeeklySchedule{WorkerID: "nobody", Weekday: 1}), generic.ErrWorkerNotFound)

	require.NoError(t, s.DeleteWeeklySchedule(ctx, "w-1", 4))
	assert.ErrorIs(t, s.DeleteWeeklySchedule(ctx, "w-1", 4), generic.ErrNotFound)
	got, err = s.WeeklySchedules(ctx, "w-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func testMonthlySchedules(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveWorker(ctx, Worker("w-1")))

	for _, m := range []time.Month{time.February, time.March, time.April} {
		require.NoError(t, s.SaveMonthlySchedule(ctx, labor.MonthlySchedule{
			ID: "ms-" + m.String(), WorkerID: "w-1", Year: 2025, Month: m, Weekday: 2,
			ShiftTemplate: labor.ShiftTemplate{StartTime: clockAt(9, 0), EndTime: clockAt(13, 0), Enabled: true},
		}))
	}

	// a window touching only March
	got, err := s.MonthlySchedules(ctx, "w-1", generic.Period{Start: date(2025, time.March, 3), End: date(2025, time.March, 9)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, time.March, got[0].Month)

	// a window spanning February and March
	got, err = s.MonthlySchedules(ctx, "w-1", generic.Period{Start: date(2025, time.February, 24), End: date(2025, time.March, 2)})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, time.February, got[0].Month)

	key := labor.MonthlyKey{Year: 2025, Month: time.March, Weekday: 2}
	require.NoError(t, s.DeleteMonthlySchedule(ctx, "w-1", key))
	assert.ErrorIs(t, s.DeleteMonthlySchedule(ctx, "w-1", key), generic.ErrNotFound)
}

func testWorkRecords(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveWorker(ctx, Worker("w-1")))

	d := date(2025, time.March, 3)
	in := time.Date(2025, 3, 3, 22, 0, 0, 0, time.UTC)
	out := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	rec := labor.WorkRecord{
		ID: "wr-1", WorkerID: "w-1", Date: d, TimeIn: &in, TimeOut: &out,
		BreakMinutes: 10, Overnight: true, NextDayMinutes: 60, Status: labor.StatusRegularWork,
		Breaks: []labor.BreakInterval{{Start: in.Add(time.Hour), End: in.Add(75 * time.Minute)}},
	}
	require.NoError(t, s.CreateWorkRecord(ctx, rec))
	assert.ErrorIs(t, s.CreateWorkRecord(ctx, rec), generic.ErrDuplicateRecord)
	require.NoError(t, s.CreateWorkRecord(ctx, labor.WorkRecord{ID: "wr-2", WorkerID: "w-1", Date: d.AddDays(2), Status: labor.StatusAnnualLeave}))
	require.NoError(t, s.CreateWorkRecord(ctx, labor.WorkRecord{ID: "wr-3", WorkerID: "w-1", Date: d.AddDays(30), Status: labor.StatusAbsent}))

	got, err := s.WorkRecords(ctx, "w-1", generic.MonthOf(2025, time.March))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.Equal(d))
	require.NotNil(t, got[0].TimeIn)
	assert.True(t, got[0].TimeIn.Equal(in))
	assert.True(t, got[0].TimeOut.Equal(out))
	assert.Equal(t, 60, got[0].NextDayMinutes)
	assert.True(t, got[0].Overnight)
	require.Len(t, got[0].Breaks, 1)
	assert.Equal(t, 15*time.Minute, got[0].Breaks[0].End.Sub(got[0].Breaks[0].Start))
	assert.Nil(t, got[1].TimeIn)
	assert.Equal(t, labor.StatusAnnualLeave, got[1].Status)

	// upsert by date
	rec.Status = labor.StatusExtraWork
	require.NoError(t, s.SaveWorkRecord(ctx, rec))
	got, err = s.WorkRecords(ctx, "w-1", generic.Period{Start: d, End: d})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, labor.StatusExtraWork, got[0].Status)

	assert.ErrorIs(t, s.CreateWorkRecord(ctx, labor.WorkRecord{WorkerID: "nobody", Date: d, Status: labor.StatusAbsent}), generic.ErrWorkerNotFound)

	require.NoError(t, s.DeleteWorkRecord(ctx, "w-1", d))
	assert.ErrorIs(t, s.DeleteWorkRecord(ctx, "w-1", d), generic.ErrNotFound)
}

func testDeleteWorkerCascades(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveWorker(ctx, Worker("w-1")))
	require.NoError(t, s.SaveWeeklySchedule(ctx, labor.WeeklySchedule{ID: "ws", WorkerID: "w-1", Weekday: 0}))
	require.NoError(t, s.SaveMonthlySchedule(ctx, labor.MonthlySchedule{ID: "ms", WorkerID: "w-1", Year: 2025, Month: time.March, Weekday: 0}))
	require.NoError(t, s.CreateWorkRecord(ctx, labor.WorkRecord{ID: "wr", WorkerID: "w-1", Date: date(2025, time.March, 3), Status: labor.StatusAbsent}))

	require.NoError(t, s.DeleteWorker(ctx, "w-1"))

	// recreate the worker: nothing from before survives
	require.NoError(t, s.SaveWorker(ctx, Worker("w-1")))
	weekly, err := s.WeeklySchedules(ctx, "w-1")
	require.NoError(t, err)
	assert.Empty(t, weekly)
	monthly, err := s.MonthlySchedules(ctx, "w-1", generic.YearOf(2025))
	require.NoError(t, err)
	assert.Empty(t, monthly)
	records, err := s.WorkRecords(ctx, "w-1", generic.YearOf(2025))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func testResults(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.SaveWorker(ctx, Worker("w-1")))

	var ids []string
	for i := 0; i < 3; i++ {
		r, err := generic.NewCalculationResult("w-1", generic.CalcSeverance,
			generic.Period{Start: date(2025, time.January, 1), End: date(2025, time.March, i+1)},
			date(2025, time.March, i+1), generic.NewAmountFromInt(1000*(i+1), generic.UnitWon), "2025-01-01",
			map[string]int{"n": i})
		require.NoError(t, err)
		r.CreatedAt = time.Date(2025, 3, i+1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, s.SaveResult(ctx, r))
		ids = append(ids, r.ID)
	}

	got, err := s.ListResults(ctx, "w-1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[2], got[0].ID, "newest first")
	assert.Equal(t, ids[1], got[1].ID)
	assert.Equal(t, generic.CalcSeverance, got[0].Type)
	assert.True(t, got[0].Total.Value.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, generic.UnitWon, got[0].Total.Unit)
	assert.JSONEq(t, `{"n":2}`, string(got[0].Detail))
	assert.True(t, got[0].AsOf.Equal(date(2025, time.March, 3)))

	all, err := s.ListResults(ctx, "w-1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := s.ListResults(ctx, "w-2", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testHolidays(t *testing.T, s Store) {
	ctx := context.Background()

	newYear := holiday.Legal(date(2025, time.January, 1), "New Year's Day")
	arbor := holiday.Observance(date(2025, time.April, 5), "Arbor Day")
	children := holiday.Legal(date(2025, time.May, 5), "Children's Day")
	for _, h := range []generic.Holiday{children, arbor, newYear} {
		require.NoError(t, s.SaveHoliday(ctx, h))
	}
	// upsert by ID
	require.NoError(t, s.SaveHoliday(ctx, newYear))

	listed, err := s.ListHolidays(ctx, generic.YearOf(2025))
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, newYear.ID, listed[0].ID)
	assert.Equal(t, generic.HolidayObservance, listed[1].Type)

	may, err := s.Holidays(ctx, 2025, time.May)
	require.NoError(t, err)
	require.Len(t, may, 1)
	assert.Equal(t, "Children's Day", may[0].Name)
	assert.True(t, may[0].IsLegal())

	require.NoError(t, s.DeleteHoliday(ctx, arbor.ID))
	assert.ErrorIs(t, s.DeleteHoliday(ctx, arbor.ID), generic.ErrNotFound)
}
