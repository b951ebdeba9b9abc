/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Default persistence for the payroll engine. Implements every interface a
  full backend needs using SQLite. store/postgres carries the same schema in
  the PostgreSQL dialect.

INTERFACES IMPLEMENTED:
  labor.Store:         Workers, weekly/monthly schedules, work records
  generic.ResultStore: Append-only calculation results
  holiday.Store:       Public holidays (also a generic.HolidayCalendar)

KEY TABLES:
  workers:             One row per worker; decimals stored as TEXT
  weekly_schedules:    Keyed by (worker_id, weekday)
  monthly_schedules:   Keyed by (worker_id, year, month, weekday)
  work_records:        Keyed by (worker_id, work_date); at most one per day
  calculation_results: Immutable audit snapshots with their JSON detail
  holidays:            Named dates, LEGAL or OBSERVANCE

  Schedules and records reference workers with ON DELETE CASCADE.
  Results do not: the audit trail outlives the worker.

ENCODING:
  Dates:   TEXT "2006-01-02" (lexicographic order is chronological)
  Instants: TEXT RFC3339Nano in UTC
  Clock times: INTEGER minutes of day, NULL when the entry carries no shift
  Money and hours: TEXT decimal strings (no float rounding)

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := labor.NewEngine(store, store, labor.DefaultPolicy())
  engine.Results = store

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - labor/engine.go: Repository and Store interfaces
  - generic/store.go: ResultStore
  - store/storetest: Conformance suite shared by every backend
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/holiday"
	"github.com/warp/payroll-engine/labor"
)

const dateLayout = "2006-01-02"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ labor.Store         = (*Store)(nil)
	_ generic.ResultStore = (*Store)(nil)
	_ holiday.Store       = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every :memory: connection is its own database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		workplace_over_5 INTEGER NOT NULL DEFAULT 1,
		contract_weekly_hours TEXT,
		deduction_type TEXT NOT NULL DEFAULT 'NONE',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS weekly_schedules (
		worker_id TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		id TEXT NOT NULL,
		start_minute INTEGER,
		end_minute INTEGER,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		is_overnight INTEGER NOT NULL DEFAULT 0,
		next_day_minutes INTEGER NOT NULL DEFAULT 0,
		enabled INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (worker_id, weekday)
	);

	CREATE TABLE IF NOT EXISTS monthly_schedules (
		worker_id TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		weekday INTEGER NOT NULL CHECK (weekday BETWEEN 0 AND 6),
		id TEXT NOT NULL,
		start_minute INTEGER,
		end_minute INTEGER,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		is_overnight INTEGER NOT NULL DEFAULT 0,
		next_day_minutes INTEGER NOT NULL DEFAULT 0,
		enabled INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (worker_id, year, month, weekday)
	);

	-- At most one record per worker per date
	CREATE TABLE IF NOT EXISTS work_records (
		worker_id TEXT NOT NULL REFERENCES workers(id) ON DELETE CASCADE,
		work_date TEXT NOT NULL,
		id TEXT NOT NULL,
		time_in TEXT,
		time_out TEXT,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		breaks_json TEXT,
		is_overnight INTEGER NOT NULL DEFAULT 0,
		next_day_minutes INTEGER NOT NULL DEFAULT 0,
		attendance_status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (worker_id, work_date)
	);

	-- Append-only audit trail
	CREATE TABLE IF NOT EXISTS calculation_results (
		id TEXT PRIMARY KEY,
		entity_id TEXT NOT NULL,
		calc_type TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		as_of TEXT NOT NULL,
		total_value TEXT NOT NULL,
		total_unit TEXT NOT NULL,
		law_version TEXT NOT NULL,
		detail_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_results_entity_created
		ON calculation_results(entity_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		holiday_type TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date ON holidays(date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// withTx runs fn inside a database transaction. Callers hold s.mu.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// WORKERS
// =============================================================================

// SaveWorker upserts a worker.
func (s *Store) SaveWorker(ctx context.Context, w labor.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}

	query := `
		INSERT INTO workers (id, name, hourly_rate, start_date, end_date, workplace_over_5,
			contract_weekly_hours, deduction_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			hourly_rate = excluded.hourly_rate,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			workplace_over_5 = excluded.workplace_over_5,
			contract_weekly_hours = excluded.contract_weekly_hours,
			deduction_type = excluded.deduction_type,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(w.ID), w.Name, w.HourlyRate.String(),
		formatDate(w.StartDate), nullDate(w.EndDate),
		w.WorkplaceOver5, nullDecimal(w.ContractWeeklyHours), string(w.DeductionType),
		formatInstant(w.CreatedAt), formatInstant(now),
	)
	if err != nil {
		return fmt.Errorf("save worker %s: %w", w.ID, err)
	}
	return nil
}

const workerColumns = `id, name, hourly_rate, start_date, end_date, workplace_over_5,
	contract_weekly_hours, deduction_type, created_at, updated_at`

// GetWorker retrieves a worker by ID. Returns nil, nil when missing.
func (s *Store) GetWorker(ctx context.Context, id generic.EntityID) (*labor.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+workerColumns+" FROM workers WHERE id = ?", string(id))
	w, err := scanWorker(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWorkers returns all workers ordered by ID.
func (s *Store) ListWorkers(ctx context.Context) ([]labor.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+workerColumns+" FROM workers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []labor.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

// DeleteWorker removes a worker together with its schedules and records.
func (s *Store) DeleteWorker(ctx context.Context, id generic.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"weekly_schedules", "monthly_schedules", "work_records"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE worker_id = ?", string(id)); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM workers WHERE id = ?", string(id))
		if err != nil {
			return err
		}
		return requireAffected(res, generic.ErrWorkerNotFound)
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorker(row scanner) (labor.Worker, error) {
	var (
		w                         labor.Worker
		id, rate, start, deducted string
		end, contract             sql.NullString
		createdAt, updatedAt      string
	)
	err := row.Scan(&id, &w.Name, &rate, &start, &end, &w.WorkplaceOver5,
		&contract, &deducted, &createdAt, &updatedAt)
	if err != nil {
		return labor.Worker{}, err
	}

	w.ID = generic.EntityID(id)
	w.DeductionType = labor.DeductionType(deducted)
	if w.HourlyRate, err = decimal.NewFromString(rate); err != nil {
		return labor.Worker{}, fmt.Errorf("worker %s hourly_rate: %w", id, err)
	}
	if w.StartDate, err = generic.ParseDate(start); err != nil {
		return labor.Worker{}, fmt.Errorf("worker %s start_date: %w", id, err)
	}
	if end.Valid {
		d, err := generic.ParseDate(end.String)
		if err != nil {
			return labor.Worker{}, fmt.Errorf("worker %s end_date: %w", id, err)
		}
		w.EndDate = &d
	}
	if contract.Valid {
		h, err := decimal.NewFromString(contract.String)
		if err != nil {
			return labor.Worker{}, fmt.Errorf("worker %s contract_weekly_hours: %w", id, err)
		}
		w.ContractWeeklyHours = &h
	}
	w.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	w.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return w, nil
}

// =============================================================================
// SCHEDULES
// =============================================================================

// SaveWeeklySchedule upserts the entry for (worker, weekday).
func (s *Store) SaveWeeklySchedule(ctx context.Context, ws labor.WeeklySchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ws.ID == "" {
		ws.ID = uuid.NewString()
	}
	query := `
		INSERT INTO weekly_schedules (worker_id, weekday, id, start_minute, end_minute,
			break_minutes, is_overnight, next_day_minutes, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, weekday) DO UPDATE SET
			id = excluded.id,
			start_minute = excluded.start_minute,
			end_minute = excluded.end_minute,
			break_minutes = excluded.break_minutes,
			is_overnight = excluded.is_overnight,
			next_day_minutes = excluded.next_day_minutes,
			enabled = excluded.enabled
	`
	t := ws.ShiftTemplate
	_, err := s.db.ExecContext(ctx, query,
		string(ws.WorkerID), ws.Weekday, ws.ID,
		nullClock(t.StartTime), nullClock(t.EndTime),
		t.BreakMinutes, t.Overnight, t.NextDayMinutes, t.Enabled,
	)
	return mapWriteError(err)
}

// DeleteWeeklySchedule removes the entry for (worker, weekday).
func (s *Store) DeleteWeeklySchedule(ctx context.Context, workerID generic.EntityID, weekday int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM weekly_schedules WHERE worker_id = ? AND weekday = ?",
		string(workerID), weekday,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, generic.ErrNotFound)
}

// WeeklySchedules returns a worker's weekly entries ordered by weekday.
func (s *Store) WeeklySchedules(ctx context.Context, workerID generic.EntityID) ([]labor.WeeklySchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, weekday, start_minute, end_minute, break_minutes, is_overnight, next_day_minutes, enabled
		FROM weekly_schedules WHERE worker_id = ? ORDER BY weekday`,
		string(workerID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []labor.WeeklySchedule
	for rows.Next() {
		ws := labor.WeeklySchedule{WorkerID: workerID}
		var start, end sql.NullInt64
		if err := rows.Scan(&ws.ID, &ws.Weekday, &start, &end,
			&ws.BreakMinutes, &ws.Overnight, &ws.NextDayMinutes, &ws.Enabled); err != nil {
			return nil, err
		}
		ws.StartTime, ws.EndTime = clockFrom(start), clockFrom(end)
		out = append(out, ws)
	}
	return out, rows.Err()
}

// SaveMonthlySchedule upserts the override for (worker, year, month, weekday).
func (s *Store) SaveMonthlySchedule(ctx context.Context, ms labor.MonthlySchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ms.ID == "" {
		ms.ID = uuid.NewString()
	}
	query := `
		INSERT INTO monthly_schedules (worker_id, year, month, weekday, id, start_minute, end_minute,
			break_minutes, is_overnight, next_day_minutes, enabled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(worker_id, year, month, weekday) DO UPDATE SET
			id = excluded.id,
			start_minute = excluded.start_minute,
			end_minute = excluded.end_minute,
			break_minutes = excluded.break_minutes,
			is_overnight = excluded.is_overnight,
			next_day_minutes = excluded.next_day_minutes,
			enabled = excluded.enabled
	`
	t := ms.ShiftTemplate
	_, err := s.db.ExecContext(ctx, query,
		string(ms.WorkerID), ms.Year, int(ms.Month), ms.Weekday, ms.ID,
		nullClock(t.StartTime), nullClock(t.EndTime),
		t.BreakMinutes, t.Overnight, t.NextDayMinutes, t.Enabled,
	)
	return mapWriteError(err)
}

// DeleteMonthlySchedule removes one monthly override.
func (s *Store) DeleteMonthlySchedule(ctx context.Context, workerID generic.EntityID, key labor.MonthlyKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM monthly_schedules WHERE worker_id = ? AND year = ? AND month = ? AND weekday = ?",
		string(workerID), key.Year, int(key.Month), key.Weekday,
	)
	if err != nil {
		return err
	}
	return requireAffected(res, generic.ErrNotFound)
}

// MonthlySchedules returns overrides of every month intersecting period.
func (s *Store) MonthlySchedules(ctx context.Context, workerID generic.EntityID, period generic.Period) ([]labor.MonthlySchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// months are compared as year*12 + month
	from := period.Start.Year()*12 + int(period.Start.Month())
	to := period.End.Year()*12 + int(period.End.Month())

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, year, month, weekday, start_minute, end_minute, break_minutes, is_overnight, next_day_minutes, enabled
		FROM monthly_schedules
		WHERE worker_id = ? AND year * 12 + month BETWEEN ? AND ?
		ORDER BY year, month, weekday`,
		string(workerID), from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []labor.MonthlySchedule
	for rows.Next() {
		ms := labor.MonthlySchedule{WorkerID: workerID}
		var month int
		var start, end sql.NullInt64
		if err := rows.Scan(&ms.ID, &ms.Year, &month, &ms.Weekday, &start, &end,
			&ms.BreakMinutes, &ms.Overnight, &ms.NextDayMinutes, &ms.Enabled); err != nil {
			return nil, err
		}
		ms.Month = time.Month(month)
		ms.StartTime, ms.EndTime = clockFrom(start), clockFrom(end)
		out = append(out, ms)
	}
	return out, rows.Err()
}

// =============================================================================
// WORK RECORDS
// =============================================================================

const recordInsert = `
	INSERT INTO work_records (worker_id, work_date, id, time_in, time_out, break_minutes,
		breaks_json, is_overnight, next_day_minutes, attendance_status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SaveWorkRecord upserts the record for (worker, date).
func (s *Store) SaveWorkRecord(ctx context.Context, r labor.WorkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := recordInsert + `
		ON CONFLICT(worker_id, work_date) DO UPDATE SET
			id = excluded.id,
			time_in = excluded.time_in,
			time_out = excluded.time_out,
			break_minutes = excluded.break_minutes,
			breaks_json = excluded.breaks_json,
			is_overnight = excluded.is_overnight,
			next_day_minutes = excluded.next_day_minutes,
			attendance_status = excluded.attendance_status,
			updated_at = excluded.updated_at
	`
	return s.insertRecord(ctx, query, r)
}

// CreateWorkRecord inserts a record; a second record on the same date
// returns generic.ErrDuplicateRecord.
func (s *Store) CreateWorkRecord(ctx context.Context, r labor.WorkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertRecord(ctx, recordInsert, r)
}

func (s *Store) insertRecord(ctx context.Context, query string, r labor.WorkRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	breaks, err := encodeBreaks(r.Breaks)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		string(r.WorkerID), formatDate(r.Date), r.ID,
		nullInstant(r.TimeIn), nullInstant(r.TimeOut), r.BreakMinutes,
		breaks, r.Overnight, r.NextDayMinutes, string(r.Status),
		formatInstant(r.CreatedAt), formatInstant(now),
	)
	return mapWriteError(err)
}

// DeleteWorkRecord removes the record on date.
func (s *Store) DeleteWorkRecord(ctx context.Context, workerID generic.EntityID, date generic.TimePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM work_records WHERE worker_id = ? AND work_date = ?",
		string(workerID), formatDate(date),
	)
	if err != nil {
		return err
	}
	return requireAffected(res, generic.ErrNotFound)
}

// WorkRecords returns records dated inside period, ordered by date.
func (s *Store) WorkRecords(ctx context.Context, workerID generic.EntityID, period generic.Period) ([]labor.WorkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, work_date, time_in, time_out, break_minutes, breaks_json,
			is_overnight, next_day_minutes, attendance_status, created_at, updated_at
		FROM work_records
		WHERE worker_id = ? AND work_date BETWEEN ? AND ?
		ORDER BY work_date`,
		string(workerID), formatDate(period.Start), formatDate(period.End),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []labor.WorkRecord
	for rows.Next() {
		r := labor.WorkRecord{WorkerID: workerID}
		var (
			date, status, createdAt, updatedAt string
			timeIn, timeOut, breaks            sql.NullString
		)
		if err := rows.Scan(&r.ID, &date, &timeIn, &timeOut, &r.BreakMinutes, &breaks,
			&r.Overnight, &r.NextDayMinutes, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if r.Date, err = generic.ParseDate(date); err != nil {
			return nil, fmt.Errorf("work record %s date: %w", r.ID, err)
		}
		if r.TimeIn, err = parseInstant(timeIn); err != nil {
			return nil, fmt.Errorf("work record %s time_in: %w", r.ID, err)
		}
		if r.TimeOut, err = parseInstant(timeOut); err != nil {
			return nil, fmt.Errorf("work record %s time_out: %w", r.ID, err)
		}
		if breaks.Valid && breaks.String != "" {
			if err := json.Unmarshal([]byte(breaks.String), &r.Breaks); err != nil {
				return nil, fmt.Errorf("work record %s breaks: %w", r.ID, err)
			}
		}
		r.Status = labor.AttendanceStatus(status)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func encodeBreaks(breaks []labor.BreakInterval) (sql.NullString, error) {
	if len(breaks) == 0 {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(breaks)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode breaks: %w", err)
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

// =============================================================================
// CALCULATION RESULTS (generic.ResultStore interface) - append-only
// =============================================================================

// SaveResult appends a result. There is no update path.
func (s *Store) SaveResult(ctx context.Context, r generic.CalculationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	detail := string(r.Detail)
	if detail == "" {
		detail = "null"
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calculation_results (id, entity_id, calc_type, period_start, period_end,
			as_of, total_value, total_unit, law_version, detail_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, string(r.EntityID), string(r.Type),
		formatDate(r.Period.Start), formatDate(r.Period.End), formatDate(r.AsOf),
		r.Total.Value.String(), string(r.Total.Unit), r.LawVersion,
		detail, formatInstant(r.CreatedAt),
	)
	return mapWriteError(err)
}

// ListResults returns an entity's results newest first. limit <= 0 returns all.
func (s *Store) ListResults(ctx context.Context, entityID generic.EntityID, limit int) ([]generic.CalculationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, calc_type, period_start, period_end, as_of, total_value, total_unit,
			law_version, detail_json, created_at
		FROM calculation_results
		WHERE entity_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`,
		string(entityID), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []generic.CalculationResult
	for rows.Next() {
		r := generic.CalculationResult{EntityID: entityID}
		var calcType, start, end, asOf, value, unit, detail, createdAt string
		if err := rows.Scan(&r.ID, &calcType, &start, &end, &asOf, &value, &unit,
			&r.LawVersion, &detail, &createdAt); err != nil {
			return nil, err
		}
		r.Type = generic.CalculationType(calcType)
		r.Period.Start, _ = generic.ParseDate(start)
		r.Period.End, _ = generic.ParseDate(end)
		r.AsOf, _ = generic.ParseDate(asOf)
		total, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("result %s total: %w", r.ID, err)
		}
		r.Total = generic.NewAmountFromDecimal(total, generic.Unit(unit))
		r.Detail = json.RawMessage(detail)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// HOLIDAY CALENDAR IMPLEMENTATION
// =============================================================================

// SaveHoliday upserts a holiday by ID.
func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, date, name, holiday_type, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			name = excluded.name,
			holiday_type = excluded.holiday_type
	`

	_, err := s.db.ExecContext(ctx, query,
		h.ID, formatDate(h.Date), h.Name, string(h.Type),
		formatInstant(time.Now().UTC()),
	)
	return err
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res, generic.ErrNotFound)
}

// ListHolidays returns holidays dated inside period, by date then name.
func (s *Store) ListHolidays(ctx context.Context, period generic.Period) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, name, holiday_type FROM holidays
		WHERE date BETWEEN ? AND ?
		ORDER BY date, name`,
		formatDate(period.Start), formatDate(period.End),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []generic.Holiday
	for rows.Next() {
		var h generic.Holiday
		var date, kind string
		if err := rows.Scan(&h.ID, &date, &h.Name, &kind); err != nil {
			return nil, err
		}
		if h.Date, err = generic.ParseDate(date); err != nil {
			return nil, fmt.Errorf("holiday %s date: %w", h.ID, err)
		}
		h.Type = generic.HolidayType(kind)
		out = append(out, h)
	}
	return out, rows.Err()
}

// Holidays implements generic.HolidayCalendar.
func (s *Store) Holidays(ctx context.Context, year int, month time.Month) ([]generic.Holiday, error) {
	return s.ListHolidays(ctx, generic.MonthOf(year, month))
}

// =============================================================================
// HELPERS
// =============================================================================

func formatDate(d generic.TimePoint) string {
	return d.Time.Format(dateLayout)
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullDate(d *generic.TimePoint) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatDate(*d), Valid: true}
}

func nullInstant(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatInstant(*t), Valid: true}
}

func parseInstant(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullClock(c *generic.ClockTime) sql.NullInt64 {
	if c == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(c.Minutes()), Valid: true}
}

func clockFrom(n sql.NullInt64) *generic.ClockTime {
	if !n.Valid {
		return nil
	}
	c := generic.ClockTime(n.Int64)
	return &c
}

// requireAffected returns notFound when a statement touched no rows.
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// mapWriteError translates constraint failures to domain errors.
func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			return generic.ErrWorkerNotFound
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return generic.ErrDuplicateRecord
		}
	}
	return err
}
