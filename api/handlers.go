/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes workers, schedules, work records and holidays as REST resources
  and delegates every computation to labor.Engine. Handles HTTP
  request/response, JSON serialization and error mapping.

ENDPOINTS:
  Workers:
    GET    /api/workers                          List workers
    POST   /api/workers                          Create worker
    GET    /api/workers/{id}                     Get worker
    PUT    /api/workers/{id}                     Replace worker
    DELETE /api/workers/{id}                     Delete worker (cascades)

  Schedules:
    GET    /api/workers/{id}/weekly-schedules               List
    PUT    /api/workers/{id}/weekly-schedules               Upsert by weekday
    DELETE /api/workers/{id}/weekly-schedules/{weekday}
    GET    /api/workers/{id}/monthly-schedules?month=YYYY-MM
    PUT    /api/workers/{id}/monthly-schedules              Upsert by year/month/weekday
    DELETE /api/workers/{id}/monthly-schedules/{year}/{month}/{weekday}

  Work records:
    GET    /api/workers/{id}/records?from=&to=   Default: current month
    POST   /api/workers/{id}/records             Create (409 when the date is taken)
    PUT    /api/workers/{id}/records             Upsert by date
    DELETE /api/workers/{id}/records/{date}

  Holidays:
    GET    /api/holidays?year=                   List stored holidays
    POST   /api/holidays                         Add a manual holiday
    DELETE /api/holidays/{id}
    POST   /api/holidays/sync                    Pull the ICS feed into the store

  Calculations, assistant and scenarios: see calculations.go,
  assistant.go and scenarios.go.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, with a field -> reason map
  - 404: Worker or row not found
  - 409: Duplicate record
  - 502: Holiday feed unavailable
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - validate.go: Request validation
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v3"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/warp/payroll-engine/assistant"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/holiday"
	"github.com/warp/payroll-engine/labor"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is everything the API persists: workers and their data,
// calculation results and holidays.
type Store interface {
	labor.Store
	generic.ResultStore
	holiday.Store
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  Store
	Engine *labor.Engine
	// Feed is the holiday source behind POST /holidays/sync; nil disables it.
	Feed     holiday.Fetcher
	Sessions *assistant.Sessions
	Logger   *slog.Logger

	validate *validator.Validate

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler. A nil sessions store gets default bounds.
func NewHandler(store Store, engine *labor.Engine, sessions *assistant.Sessions, logger *slog.Logger) *Handler {
	if sessions == nil {
		sessions = assistant.NewSessions(1000, 40, 2*time.Hour)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:    store,
		Engine:   engine,
		Sessions: sessions,
		Logger:   logger,
		validate: newValidator(),
	}
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

// ListWorkers returns all workers.
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Store.ListWorkers(r.Context())
	if err != nil {
		h.fail(w, r, "Failed to list workers", err)
		return
	}
	dtos := make([]WorkerDTO, len(workers))
	for i, wk := range workers {
		dtos[i] = toWorkerDTO(wk)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWorker returns a single worker.
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	wk, err := h.requireWorker(r)
	if err != nil {
		h.fail(w, r, "Failed to get worker", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(*wk))
}

// CreateWorker creates a new worker. The id is generated when omitted.
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req WorkerRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid worker", err)
		return
	}
	id := generic.EntityID(req.ID)
	if id == "" {
		id = generic.EntityID(uuid.NewString())
	}
	wk, err := req.toWorker(id)
	if err != nil {
		h.fail(w, r, "Invalid worker", err)
		return
	}

	ctx := r.Context()
	existing, err := h.Store.GetWorker(ctx, id)
	if err != nil {
		h.fail(w, r, "Failed to create worker", err)
		return
	}
	if existing != nil {
		h.fail(w, r, "Worker already exists", fmt.Errorf("%w: worker %s", generic.ErrDuplicateRecord, id))
		return
	}
	now := time.Now()
	wk.CreatedAt, wk.UpdatedAt = now, now
	if err := h.Store.SaveWorker(ctx, wk); err != nil {
		h.fail(w, r, "Failed to create worker", err)
		return
	}
	h.respondWorker(w, r, http.StatusCreated, id)
}

// UpdateWorker replaces a worker's profile.
func (h *Handler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	existing, err := h.requireWorker(r)
	if err != nil {
		h.fail(w, r, "Failed to update worker", err)
		return
	}
	var req WorkerRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid worker", err)
		return
	}
	wk, err := req.toWorker(existing.ID)
	if err != nil {
		h.fail(w, r, "Invalid worker", err)
		return
	}
	wk.CreatedAt, wk.UpdatedAt = existing.CreatedAt, time.Now()
	if err := h.Store.SaveWorker(r.Context(), wk); err != nil {
		h.fail(w, r, "Failed to update worker", err)
		return
	}
	h.respondWorker(w, r, http.StatusOK, wk.ID)
}

// DeleteWorker removes a worker with its schedules and records.
// Recorded calculation results are kept.
func (h *Handler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	id := workerID(r)
	if err := h.Store.DeleteWorker(r.Context(), id); err != nil {
		h.fail(w, r, "Failed to delete worker", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

func (h *Handler) respondWorker(w http.ResponseWriter, r *http.Request, status int, id generic.EntityID) {
	saved, err := h.Store.GetWorker(r.Context(), id)
	if err != nil || saved == nil {
		h.fail(w, r, "Failed to read worker back", err)
		return
	}
	writeJSON(w, status, toWorkerDTO(*saved))
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

func (h *Handler) ListWeeklySchedules(w http.ResponseWriter, r *http.Request) {
	wk, err := h.requireWorker(r)
	if err != nil {
		h.fail(w, r, "Failed to list weekly schedules", err)
		return
	}
	list, err := h.Store.WeeklySchedules(r.Context(), wk.ID)
	if err != nil {
		h.fail(w, r, "Failed to list weekly schedules", err)
		return
	}
	dtos := make([]WeeklyScheduleDTO, len(list))
	for i, s := range list {
		dtos[i] = toWeeklyDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) PutWeeklySchedule(w http.ResponseWriter, r *http.Request) {
	var req WeeklyScheduleRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid weekly schedule", err)
		return
	}
	s := labor.WeeklySchedule{
		ID:            uuid.NewString(),
		WorkerID:      workerID(r),
		Weekday:       *req.Weekday,
		ShiftTemplate: req.toTemplate(),
	}
	if err := labor.ValidateWeeklySchedule(s); err != nil {
		h.fail(w, r, "Invalid weekly schedule", err)
		return
	}
	if err := h.Store.SaveWeeklySchedule(r.Context(), s); err != nil {
		h.fail(w, r, "Failed to save weekly schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeeklyDTO(s))
}

func (h *Handler) DeleteWeeklySchedule(w http.ResponseWriter, r *http.Request) {
	weekday, err := strconv.Atoi(chi.URLParam(r, "weekday"))
	if err != nil {
		h.fail(w, r, "Invalid weekday", fieldError("weekday", "must be a number"))
		return
	}
	if err := h.Store.DeleteWeeklySchedule(r.Context(), workerID(r), weekday); err != nil {
		h.fail(w, r, "Failed to delete weekly schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func (h *Handler) ListMonthlySchedules(w http.ResponseWriter, r *http.Request) {
	wk, err := h.requireWorker(r)
	if err != nil {
		h.fail(w, r, "Failed to list monthly schedules", err)
		return
	}
	year, month, err := monthParam(r, h.Engine.Today())
	if err != nil {
		h.fail(w, r, "Invalid month", err)
		return
	}
	list, err := h.Store.MonthlySchedules(r.Context(), wk.ID, generic.MonthOf(year, month))
	if err != nil {
		h.fail(w, r, "Failed to list monthly schedules", err)
		return
	}
	dtos := make([]MonthlyScheduleDTO, len(list))
	for i, s := range list {
		dtos[i] = toMonthlyDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) PutMonthlySchedule(w http.ResponseWriter, r *http.Request) {
	var req MonthlyScheduleRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid monthly schedule", err)
		return
	}
	s := labor.MonthlySchedule{
		ID:            uuid.NewString(),
		WorkerID:      workerID(r),
		Year:          req.Year,
		Month:         time.Month(req.Month),
		Weekday:       *req.Weekday,
		ShiftTemplate: req.toTemplate(),
	}
	if err := labor.ValidateMonthlySchedule(s); err != nil {
		h.fail(w, r, "Invalid monthly schedule", err)
		return
	}
	if err := h.Store.SaveMonthlySchedule(r.Context(), s); err != nil {
		h.fail(w, r, "Failed to save monthly schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthlyDTO(s))
}

func (h *Handler) DeleteMonthlySchedule(w http.ResponseWriter, r *http.Request) {
	var key labor.MonthlyKey
	var errs generic.ValidationErrors
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		errs.Add("year", "must be a number")
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		errs.Add("month", "must be a number")
	}
	weekday, err := strconv.Atoi(chi.URLParam(r, "weekday"))
	if err != nil {
		errs.Add("weekday", "must be a number")
	}
	if err := errs.Err(); err != nil {
		h.fail(w, r, "Invalid monthly schedule key", err)
		return
	}
	key = labor.MonthlyKey{Year: year, Month: time.Month(month), Weekday: weekday}
	if err := h.Store.DeleteMonthlySchedule(r.Context(), workerID(r), key); err != nil {
		h.fail(w, r, "Failed to delete monthly schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// WORK RECORD HANDLERS
// =============================================================================

func (h *Handler) ListWorkRecords(w http.ResponseWriter, r *http.Request) {
	wk, err := h.requireWorker(r)
	if err != nil {
		h.fail(w, r, "Failed to list work records", err)
		return
	}
	today := h.Engine.Today()
	period := generic.MonthOf(today.Year(), today.Month())
	var errs generic.ValidationErrors
	if v := r.URL.Query().Get("from"); v != "" {
		if d, err := generic.ParseDate(v); err == nil {
			period.Start = d
		} else {
			errs.Add("from", "must be YYYY-MM-DD")
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if d, err := generic.ParseDate(v); err == nil {
			period.End = d
		} else {
			errs.Add("to", "must be YYYY-MM-DD")
		}
	}
	if err := errs.Err(); err != nil {
		h.fail(w, r, "Invalid range", err)
		return
	}
	if err := period.Validate(); err != nil {
		h.fail(w, r, "Invalid range", err)
		return
	}

	records, err := h.Store.WorkRecords(r.Context(), wk.ID, period)
	if err != nil {
		h.fail(w, r, "Failed to list work records", err)
		return
	}
	dtos := make([]WorkRecordDTO, len(records))
	for i, rec := range records {
		dtos[i] = toRecordDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateWorkRecord inserts a record; a second record on the same date is a conflict.
func (h *Handler) CreateWorkRecord(w http.ResponseWriter, r *http.Request) {
	h.saveWorkRecord(w, r, false)
}

// PutWorkRecord upserts the record of a date.
func (h *Handler) PutWorkRecord(w http.ResponseWriter, r *http.Request) {
	h.saveWorkRecord(w, r, true)
}

func (h *Handler) saveWorkRecord(w http.ResponseWriter, r *http.Request, upsert bool) {
	var req WorkRecordRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid work record", err)
		return
	}
	rec, err := req.toRecord(workerID(r))
	if err != nil {
		h.fail(w, r, "Invalid work record", err)
		return
	}
	rec.ID = uuid.NewString()
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt

	status := http.StatusCreated
	if upsert {
		status = http.StatusOK
		err = h.Store.SaveWorkRecord(r.Context(), rec)
	} else {
		err = h.Store.CreateWorkRecord(r.Context(), rec)
	}
	if err != nil {
		h.fail(w, r, "Failed to save work record", err)
		return
	}
	writeJSON(w, status, toRecordDTO(rec))
}

func (h *Handler) DeleteWorkRecord(w http.ResponseWriter, r *http.Request) {
	date, err := generic.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		h.fail(w, r, "Invalid date", fieldError("date", "must be YYYY-MM-DD"))
		return
	}
	if err := h.Store.DeleteWorkRecord(r.Context(), workerID(r), date); err != nil {
		h.fail(w, r, "Failed to delete work record", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns stored holidays of a year.
// GET /api/holidays?year=2025
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := h.Engine.Today().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 9999 {
			h.fail(w, r, "Invalid year", fieldError("year", "must be between 1900 and 9999"))
			return
		}
		year = y
	}
	holidays, err := h.Store.ListHolidays(r.Context(), generic.YearOf(year))
	if err != nil {
		h.fail(w, r, "Failed to get holidays", err)
		return
	}
	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// CreateHoliday adds a manual holiday. The id is stable for a date and name,
// so posting the same holiday twice keeps one row.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req HolidayRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid holiday", err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		h.fail(w, r, "Invalid holiday", fieldError("date", "must be YYYY-MM-DD"))
		return
	}
	typ := generic.HolidayType(req.Type)
	if typ == "" {
		typ = generic.HolidayLegal
	}
	hol := generic.Holiday{
		ID:   holiday.HolidayID(date, req.Name),
		Date: date,
		Name: req.Name,
		Type: typ,
	}
	if err := h.Store.SaveHoliday(r.Context(), hol); err != nil {
		h.fail(w, r, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(hol))
}

// DeleteHoliday deletes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// SyncHolidays pulls the configured feed into the store.
// POST /api/holidays/sync
func (h *Handler) SyncHolidays(w http.ResponseWriter, r *http.Request) {
	if h.Feed == nil {
		writeError(w, http.StatusServiceUnavailable, "Holiday feed not configured", nil)
		return
	}
	n, err := holiday.Sync(r.Context(), h.Feed, h.Store)
	if err != nil {
		h.fail(w, r, "Holiday sync failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "synced", "count": n})
}

// =============================================================================
// HELPERS
// =============================================================================

func workerID(r *http.Request) generic.EntityID {
	return generic.EntityID(chi.URLParam(r, "id"))
}

// requireWorker loads the worker named in the URL, failing with ErrWorkerNotFound.
func (h *Handler) requireWorker(r *http.Request) (*labor.Worker, error) {
	id := workerID(r)
	wk, err := h.Store.GetWorker(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if wk == nil {
		return nil, fmt.Errorf("%w: %s", generic.ErrWorkerNotFound, id)
	}
	return wk, nil
}

// monthParam reads ?month=YYYY-MM, defaulting to the month of today.
func monthParam(r *http.Request, today generic.TimePoint) (int, time.Month, error) {
	v := r.URL.Query().Get("month")
	if v == "" {
		return today.Year(), today.Month(), nil
	}
	t, err := time.Parse("2006-01", v)
	if err != nil {
		return 0, 0, fieldError("month", "must be YYYY-MM")
	}
	return t.Year(), t.Month(), nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// fail maps a domain error to its HTTP status and writes it.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	var verrs generic.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   message,
			Details: generic.ErrInvalidInput.Error(),
			Fields:  verrs.Fields(),
		})
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, generic.ErrHolidaySource):
		writeError(w, http.StatusBadGateway, message, err)
	default:
		httplog.SetAttrs(r.Context(), slog.Any("error", err))
		h.Logger.ErrorContext(r.Context(), message, slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
