// Package memory provides an in-memory store for tests and development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/holiday"
	"github.com/warp/payroll-engine/labor"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store implements labor.Store, generic.ResultStore and holiday.Store.
type Store struct {
	mu       sync.RWMutex
	workers  map[generic.EntityID]labor.Worker
	weekly   map[generic.EntityID]map[int]labor.WeeklySchedule
	monthly  map[generic.EntityID]map[labor.MonthlyKey]labor.MonthlySchedule
	records  map[generic.EntityID]map[string]labor.WorkRecord
	results  map[generic.EntityID][]generic.CalculationResult
	resultID map[string]bool
	holidays map[string]generic.Holiday
}

var (
	_ labor.Store         = (*Store)(nil)
	_ generic.ResultStore = (*Store)(nil)
	_ holiday.Store       = (*Store)(nil)
)

func New() *Store {
	return &Store{
		workers:  make(map[generic.EntityID]labor.Worker),
		weekly:   make(map[generic.EntityID]map[int]labor.WeeklySchedule),
		monthly:  make(map[generic.EntityID]map[labor.MonthlyKey]labor.MonthlySchedule),
		records:  make(map[generic.EntityID]map[string]labor.WorkRecord),
		results:  make(map[generic.EntityID][]generic.CalculationResult),
		resultID: make(map[string]bool),
		holidays: make(map[string]generic.Holiday),
	}
}

// =============================================================================
// WORKERS
// =============================================================================

func (s *Store) SaveWorker(_ context.Context, w labor.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers[w.ID] = w
	return nil
}

func (s *Store) GetWorker(_ context.Context, id generic.EntityID) (*labor.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.workers[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (s *Store) ListWorkers(_ context.Context) ([]labor.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]labor.Worker, 0, len(s.workers))
	for _, w := range s.workers {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteWorker removes the worker with its schedules and records.
func (s *Store) DeleteWorker(_ context.Context, id generic.EntityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workers[id]; !ok {
		return generic.ErrWorkerNotFound
	}
	delete(s.workers, id)
	delete(s.weekly, id)
	delete(s.monthly, id)
	delete(s.records, id)
	return nil
}

// =============================================================================
// SCHEDULES
// =============================================================================

func (s *Store) SaveWeeklySchedule(_ context.Context, ws labor.WeeklySchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workers[ws.WorkerID]; !ok {
		return generic.ErrWorkerNotFound
	}
	if s.weekly[ws.WorkerID] == nil {
		s.weekly[ws.WorkerID] = make(map[int]labor.WeeklySchedule)
	}
	s.weekly[ws.WorkerID][ws.Weekday] = ws
	return nil
}

func (s *Store) DeleteWeeklySchedule(_ context.Context, workerID generic.EntityID, weekday int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.weekly[workerID][weekday]; !ok {
		return generic.ErrNotFound
	}
	delete(s.weekly[workerID], weekday)
	return nil
}

func (s *Store) WeeklySchedules(_ context.Context, workerID generic.EntityID) ([]labor.WeeklySchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []labor.WeeklySchedule
	for _, ws := range s.weekly[workerID] {
		out = append(out, ws)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weekday < out[j].Weekday })
	return out, nil
}

func (s *Store) SaveMonthlySchedule(_ context.Context, ms labor.MonthlySchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workers[ms.WorkerID]; !ok {
		return generic.ErrWorkerNotFound
	}
	if s.monthly[ms.WorkerID] == nil {
		s.monthly[ms.WorkerID] = make(map[labor.MonthlyKey]labor.MonthlySchedule)
	}
	s.monthly[ms.WorkerID][ms.Key()] = ms
	return nil
}

func (s *Store) DeleteMonthlySchedule(_ context.Context, workerID generic.EntityID, key labor.MonthlyKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.monthly[workerID][key]; !ok {
		return generic.ErrNotFound
	}
	delete(s.monthly[workerID], key)
	return nil
}

func (s *Store) MonthlySchedules(_ context.Context, workerID generic.EntityID, period generic.Period) ([]labor.MonthlySchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []labor.MonthlySchedule
	for _, ms := range s.monthly[workerID] {
		if period.Overlaps(generic.MonthOf(ms.Year, ms.Month)) {
			out = append(out, ms)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Weekday < b.Weekday
	})
	return out, nil
}

// =============================================================================
// WORK RECORDS
// =============================================================================

func (s *Store) SaveWorkRecord(_ context.Context, r labor.WorkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putRecordLocked(r, true)
}

func (s *Store) CreateWorkRecord(_ context.Context, r labor.WorkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putRecordLocked(r, false)
}

func (s *Store) putRecordLocked(r labor.WorkRecord, overwrite bool) error {
	if _, ok := s.workers[r.WorkerID]; !ok {
		return generic.ErrWorkerNotFound
	}
	if s.records[r.WorkerID] == nil {
		s.records[r.WorkerID] = make(map[string]labor.WorkRecord)
	}
	key := r.Date.String()
	if _, exists := s.records[r.WorkerID][key]; exists && !overwrite {
		return generic.ErrDuplicateRecord
	}
	s.records[r.WorkerID][key] = r
	return nil
}

func (s *Store) DeleteWorkRecord(_ context.Context, workerID generic.EntityID, date generic.TimePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := date.String()
	if _, ok := s.records[workerID][key]; !ok {
		return generic.ErrNotFound
	}
	delete(s.records[workerID], key)
	return nil
}

func (s *Store) WorkRecords(_ context.Context, workerID generic.EntityID, period generic.Period) ([]labor.WorkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []labor.WorkRecord
	for _, r := range s.records[workerID] {
		if period.Contains(r.Date) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// =============================================================================
// CALCULATION RESULTS - append-only
// =============================================================================

func (s *Store) SaveResult(_ context.Context, r generic.CalculationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resultID[r.ID] {
		return generic.ErrDuplicateRecord
	}
	s.resultID[r.ID] = true
	s.results[r.EntityID] = append(s.results[r.EntityID], r)
	return nil
}

func (s *Store) ListResults(_ context.Context, entityID generic.EntityID, limit int) ([]generic.CalculationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.results[entityID]
	out := make([]generic.CalculationResult, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		out = append(out, all[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) SaveHoliday(_ context.Context, h generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidays[h.ID] = h
	return nil
}

func (s *Store) DeleteHoliday(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.holidays[id]; !ok {
		return generic.ErrNotFound
	}
	delete(s.holidays, id)
	return nil
}

func (s *Store) ListHolidays(_ context.Context, period generic.Period) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []generic.Holiday
	for _, h := range s.holidays {
		if period.Contains(h.Date) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].Name < out[j].Name
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (s *Store) Holidays(ctx context.Context, year int, month time.Month) ([]generic.Holiday, error) {
	return s.ListHolidays(ctx, generic.MonthOf(year, month))
}
