/*
engine.go - Payroll engine: snapshot loading, validation, computation, audit

PURPOSE:
  Binds the pure calculators to their collaborators. Every operation:
    1. validates its parameters
    2. loads an immutable snapshot of one worker (worker, schedules, records)
    3. asks the holiday calendar for the months it touches
    4. runs the pure calculator with an explicit "today"
    5. records an immutable CalculationResult when a ResultStore is set

COLLABORATORS:
  Repository:      read access to workers, schedules and records
  HolidayCalendar: public holidays per month (failures degrade to none)
  Clock:           the reference date; pin it with WithToday for as-of queries
  ResultStore:     optional audit sink

ERRORS:
  Invalid parameters and invalid worker data return generic.ValidationErrors.
  A missing worker returns generic.ErrWorkerNotFound. Missing schedules or
  wage history are not errors; they show up as reasons on the result.

SEE ALSO:
  - schedule.go, payroll.go, severance.go, annual_leave.go: calculators
  - generic/store.go: ResultStore
*/
package labor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// REPOSITORY - Read side of persistence
// =============================================================================

// Repository is the read access the engine needs.
type Repository interface {
	// GetWorker returns nil, nil when the worker does not exist.
	GetWorker(ctx context.Context, id generic.EntityID) (*Worker, error)
	WeeklySchedules(ctx context.Context, workerID generic.EntityID) ([]WeeklySchedule, error)
	// MonthlySchedules returns overrides of every month intersecting period.
	MonthlySchedules(ctx context.Context, workerID generic.EntityID, period generic.Period) ([]MonthlySchedule, error)
	// WorkRecords returns records dated inside period, ordered by date.
	WorkRecords(ctx context.Context, workerID generic.EntityID, period generic.Period) ([]WorkRecord, error)
}

// Store is the full CRUD surface over workers, schedules and records.
// Deleting a worker removes its schedules and records.
type Store interface {
	Repository

	SaveWorker(ctx context.Context, w Worker) error
	ListWorkers(ctx context.Context) ([]Worker, error)
	DeleteWorker(ctx context.Context, id generic.EntityID) error

	// SaveWeeklySchedule upserts by (worker, weekday).
	SaveWeeklySchedule(ctx context.Context, s WeeklySchedule) error
	DeleteWeeklySchedule(ctx context.Context, workerID generic.EntityID, weekday int) error

	// SaveMonthlySchedule upserts by (worker, year, month, weekday).
	SaveMonthlySchedule(ctx context.Context, s MonthlySchedule) error
	DeleteMonthlySchedule(ctx context.Context, workerID generic.EntityID, key MonthlyKey) error

	// SaveWorkRecord upserts by (worker, date).
	SaveWorkRecord(ctx context.Context, r WorkRecord) error
	// CreateWorkRecord inserts, returning generic.ErrDuplicateRecord when
	// the worker already has a record on that date.
	CreateWorkRecord(ctx context.Context, r WorkRecord) error
	DeleteWorkRecord(ctx context.Context, workerID generic.EntityID, date generic.TimePoint) error
}

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	Repo     Repository
	Holidays generic.HolidayCalendar
	Clock    generic.Clock
	Policy   Policy
	Results  generic.ResultStore
	Logger   *slog.Logger
}

// NewEngine creates an engine on the system clock with no result recording.
func NewEngine(repo Repository, holidays generic.HolidayCalendar, policy Policy) *Engine {
	if holidays == nil {
		holidays = generic.NoHolidays{}
	}
	return &Engine{
		Repo:     repo,
		Holidays: holidays,
		Clock:    generic.SystemClock{},
		Policy:   policy,
		Logger:   slog.Default(),
	}
}

// WithToday returns a copy of the engine pinned to today.
func (e *Engine) WithToday(today generic.TimePoint) *Engine {
	cp := *e
	cp.Clock = generic.FixedClock(today)
	return &cp
}

// Today is the reference date, the system clock when none is injected.
func (e *Engine) Today() generic.TimePoint {
	if e.Clock == nil {
		return generic.SystemClock{}.Today()
	}
	return e.Clock.Today()
}

func (e *Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// ResolveSchedule returns the expected shift of a worker on date.
func (e *Engine) ResolveSchedule(ctx context.Context, workerID generic.EntityID, date generic.TimePoint) (Resolution, error) {
	if err := validateDate("date", date); err != nil {
		return Resolution{}, err
	}
	snap, err := e.loadSnapshot(ctx, workerID, generic.Period{Start: date, End: date})
	if err != nil {
		return Resolution{}, err
	}
	return ResolveSchedule(snap.Schedules, snap.Worker, date), nil
}

// WeeklyHolidayPay evaluates the Monday..Sunday week containing date.
func (e *Engine) WeeklyHolidayPay(ctx context.Context, workerID generic.EntityID, date generic.TimePoint) (WeeklyHolidayResult, error) {
	if err := validateDate("date", date); err != nil {
		return WeeklyHolidayResult{}, err
	}
	week := generic.WeekOf(date)
	snap, err := e.loadSnapshot(ctx, workerID, week)
	if err != nil {
		return WeeklyHolidayResult{}, err
	}
	today := e.Today()
	res := EvaluateWeeklyHoliday(WeeklyHolidayInput{Snapshot: snap, Date: date, Today: today, Policy: e.Policy})
	e.record(ctx, workerID, generic.CalcWeeklyHoliday, week, today, generic.NewAmountFromDecimal(res.Amount, generic.UnitWon), res)
	return res, nil
}

// MonthlyPayroll computes gross and net pay for year/month.
func (e *Engine) MonthlyPayroll(ctx context.Context, workerID generic.EntityID, year int, month time.Month) (MonthlyPayroll, error) {
	if err := validateMonth(year, month); err != nil {
		return MonthlyPayroll{}, err
	}
	period := generic.MonthOf(year, month)
	snap, err := e.loadSnapshot(ctx, workerID, weeksSpan(period))
	if err != nil {
		return MonthlyPayroll{}, err
	}
	holidays, note := e.holidaysFor(ctx, period)

	today := e.Today()
	res := ComputeMonthlyPayroll(PayrollInput{
		Snapshot: snap,
		Year:     year,
		Month:    month,
		Today:    today,
		Holidays: holidays,
		Policy:   e.Policy,
	})
	if note != "" {
		res.Notes = append(res.Notes, note)
	}
	e.record(ctx, workerID, generic.CalcMonthlyPayroll, period, today, generic.NewAmountFromDecimal(res.NetPay, generic.UnitWon), res)
	return res, nil
}

// MonthlyHolidayPay evaluates every week intersecting year/month.
func (e *Engine) MonthlyHolidayPay(ctx context.Context, workerID generic.EntityID, year int, month time.Month) (MonthlyHolidayPay, error) {
	if err := validateMonth(year, month); err != nil {
		return MonthlyHolidayPay{}, err
	}
	period := generic.MonthOf(year, month)
	snap, err := e.loadSnapshot(ctx, workerID, weeksSpan(period))
	if err != nil {
		return MonthlyHolidayPay{}, err
	}
	today := e.Today()
	res := ComputeMonthlyHolidayPay(snap, year, month, today, e.Policy)
	e.record(ctx, workerID, generic.CalcMonthlyHoliday, period, today, generic.NewAmountFromDecimal(res.Total, generic.UnitWon), res)
	return res, nil
}

// Severance estimates severance pay as of today (or the worker's end date).
func (e *Engine) Severance(ctx context.Context, workerID generic.EntityID) (SeveranceResult, error) {
	worker, err := e.getWorker(ctx, workerID)
	if err != nil {
		return SeveranceResult{}, err
	}
	today := e.Today()
	end := worker.ServiceEnd(today)
	window := SeveranceWindow(end, e.Policy)

	snap, err := e.loadSnapshotFor(ctx, *worker, weeksSpan(window).Union(generic.WeekOf(end)))
	if err != nil {
		return SeveranceResult{}, err
	}
	holidays, note := e.holidaysFor(ctx, window)

	res := ComputeSeverance(SeveranceInput{Snapshot: snap, Today: today, Holidays: holidays, Policy: e.Policy})
	if note != "" {
		res.Notes = append(res.Notes, note)
	}
	service := generic.Period{Start: worker.StartDate, End: end}
	e.record(ctx, workerID, generic.CalcSeverance, service, today, generic.NewAmountFromDecimal(res.SeverancePay, generic.UnitWon), res)
	return res, nil
}

// AnnualLeave computes accrued, used and remaining leave for year.
func (e *Engine) AnnualLeave(ctx context.Context, workerID generic.EntityID, year int) (AnnualLeaveResult, error) {
	if err := validateMonth(year, time.January); err != nil {
		return AnnualLeaveResult{}, err
	}
	worker, err := e.getWorker(ctx, workerID)
	if err != nil {
		return AnnualLeaveResult{}, err
	}
	today := e.Today()
	span := generic.YearOf(year).Union(generic.WeekOf(today))
	if !worker.StartDate.IsZero() && worker.StartDate.Before(today) {
		span = span.Union(generic.Period{Start: worker.StartDate, End: today})
	}

	snap, err := e.loadSnapshotFor(ctx, *worker, span)
	if err != nil {
		return AnnualLeaveResult{}, err
	}
	res := ComputeAnnualLeave(AnnualLeaveInput{Snapshot: snap, Year: year, Today: today, Policy: e.Policy})
	e.record(ctx, workerID, generic.CalcAnnualLeave, generic.YearOf(year), today, generic.NewAmountFromDecimal(res.RemainingDays, generic.UnitDays), res)
	return res, nil
}

// =============================================================================
// SNAPSHOT LOADING
// =============================================================================

func (e *Engine) getWorker(ctx context.Context, workerID generic.EntityID) (*Worker, error) {
	if e.Repo == nil {
		return nil, generic.ErrStoreRequired
	}
	w, err := e.Repo.GetWorker(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("get worker %s: %w", workerID, err)
	}
	if w == nil {
		return nil, fmt.Errorf("%w: %s", generic.ErrWorkerNotFound, workerID)
	}
	if err := ValidateWorkerForCalculation(*w); err != nil {
		return nil, err
	}
	return w, nil
}

func (e *Engine) loadSnapshot(ctx context.Context, workerID generic.EntityID, period generic.Period) (WorkerSnapshot, error) {
	w, err := e.getWorker(ctx, workerID)
	if err != nil {
		return WorkerSnapshot{}, err
	}
	return e.loadSnapshotFor(ctx, *w, period)
}

func (e *Engine) loadSnapshotFor(ctx context.Context, w Worker, period generic.Period) (WorkerSnapshot, error) {
	weekly, err := e.Repo.WeeklySchedules(ctx, w.ID)
	if err != nil {
		return WorkerSnapshot{}, fmt.Errorf("load weekly schedules: %w", err)
	}
	monthly, err := e.Repo.MonthlySchedules(ctx, w.ID, period)
	if err != nil {
		return WorkerSnapshot{}, fmt.Errorf("load monthly schedules: %w", err)
	}
	records, err := e.Repo.WorkRecords(ctx, w.ID, period)
	if err != nil {
		return WorkerSnapshot{}, fmt.Errorf("load work records: %w", err)
	}
	return WorkerSnapshot{
		Worker:    w,
		Schedules: NewScheduleSnapshot(weekly, monthly),
		Records:   NewRecordSet(records),
	}, nil
}

// holidaysFor collects the holidays of every month period touches. A failing
// calendar yields no holidays and a note; payroll never fails on it.
func (e *Engine) holidaysFor(ctx context.Context, period generic.Period) ([]generic.Holiday, string) {
	if e.Holidays == nil {
		return nil, ""
	}
	var out []generic.Holiday
	for m := generic.StartOfMonth(period.Start.Year(), period.Start.Month()); !m.After(period.End); m = m.AddMonths(1) {
		hs, err := e.Holidays.Holidays(ctx, m.Year(), m.Month())
		if err != nil {
			e.logger().Warn("holiday calendar unavailable",
				slog.Int("year", m.Year()), slog.Int("month", int(m.Month())), slog.Any("error", err))
			return nil, "holiday calendar unavailable; holiday premiums not applied"
		}
		out = append(out, hs...)
	}
	return out, ""
}

// weeksSpan widens period to whole Monday..Sunday weeks.
func weeksSpan(p generic.Period) generic.Period {
	return generic.Period{Start: generic.WeekOf(p.Start).Start, End: generic.WeekOf(p.End).End}
}

// record persists an audit result. Failures are logged, never returned.
func (e *Engine) record(ctx context.Context, workerID generic.EntityID, calc generic.CalculationType, period generic.Period, asOf generic.TimePoint, total generic.Amount, detail any) {
	if e.Results == nil {
		return
	}
	r, err := generic.NewCalculationResult(workerID, calc, period, asOf, total, e.Policy.LawVersion, detail)
	if err == nil {
		err = e.Results.SaveResult(ctx, r)
	}
	if err != nil {
		e.logger().Warn("calculation result not recorded",
			slog.String("worker_id", string(workerID)), slog.String("type", string(calc)), slog.Any("error", err))
	}
}
