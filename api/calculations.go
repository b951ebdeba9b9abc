/*
calculations.go - Calculation endpoints

PURPOSE:
  Read-only endpoints that run labor.Engine operations for one worker.
  Every endpoint accepts ?as_of=YYYY-MM-DD to evaluate as if today were
  that date; projections and "finished week" checks follow it.

ENDPOINTS:
  GET /api/workers/{id}/schedule?date=             Resolved shift of a date
  GET /api/workers/{id}/weekly-holiday-pay?date=   Week containing date
  GET /api/workers/{id}/payroll?month=YYYY-MM      Monthly payroll
  GET /api/workers/{id}/holiday-pay?month=YYYY-MM  Weekly holiday pay per week of a month
  GET /api/workers/{id}/severance                  Severance estimate
  GET /api/workers/{id}/annual-leave?year=         Annual leave position
  GET /api/workers/{id}/diagnosis                  Compliance summary
  GET /api/workers/{id}/results?limit=             Recorded calculation history

SEE ALSO:
  - labor/engine.go: the operations behind these endpoints
*/
package api

import (
	"net/http"
	"strconv"

	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/labor"
)

// engineFor returns the engine, pinned to ?as_of when present.
func (h *Handler) engineFor(r *http.Request) (*labor.Engine, error) {
	v := r.URL.Query().Get("as_of")
	if v == "" {
		return h.Engine, nil
	}
	d, err := generic.ParseDate(v)
	if err != nil {
		return nil, fieldError("as_of", "must be YYYY-MM-DD")
	}
	return h.Engine.WithToday(d), nil
}

// dateParam reads ?date=, defaulting to the engine's today.
func dateParam(r *http.Request, e *labor.Engine) (generic.TimePoint, error) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return e.Today(), nil
	}
	d, err := generic.ParseDate(v)
	if err != nil {
		return generic.TimePoint{}, fieldError("date", "must be YYYY-MM-DD")
	}
	return d, nil
}

// GetSchedule resolves the expected shift of a date.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	e, err := h.engineFor(r)
	if err != nil {
		h.fail(w, r, "Invalid request", err)
		return
	}
	date, err := dateParam(r, e)
	if err != nil {
		h.fail(w, r, "Invalid request", err)
		return
	}
	res, err := e.ResolveSchedule(r.Context(), workerID(r), date)
	if err != nil {
		h.fail(w, r, "Failed to resolve schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(res))
}

func (h *Handler) GetWeeklyHolidayPay(w http.ResponseWriter, r *http.Request) {
	e, err := h.engineFor(r)
	if err != nil {
		h.fail(w, r, "Invalid request", err)
		return
	}
	date, err := dateParam(r, e)
	if err != nil {
		h.fail(w, r, "Invalid request", err)
		return
	}
	res, err := e.WeeklyHolidayPay(r.Context(), workerID(r), date)
	if err != nil {
		h.fail(w, r, "Failed to calculate weekly holiday pay", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	e, err := h.engineFor(r)
	if err != nil {
		h.fail(w, r, "Invalid request", err)
		return
	}
	year, month, err := monthParam(r, e.Today())
	if err != nil {
		h.fail(w, r, "Invalid request", err)
		return
	}
	res, err := e.MonthlyPayroll(r.Context(), workerID(r), year, month)
	if err != nil {
		h.fail(w, r, "Failed to calculate payroll", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetMonthlyHolidayPay(w http.ResponseWriter, r *http.Request) {
	e, err := h.engineFor(r)
	if err != nil {
		h.fail(w, r, "Invalid request", err)
		return
	}
	year, month, err := monthParam(r, e.Today())
	if err != nil {
		h.fail(w, r, "Invalid request", err)
		return
	}
	res, err := e.MonthlyHolidayPay(r.Context(), workerID(r), year, month)
	if err != nil {
		h.fail(w, r, "Failed to calculate holiday pay", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetSeverance(w http.ResponseWriter, r *http.Request) {
	e, err := h.engineFor(r)
	if err != nil {
		h.fail(w, r, "Invalid request", err)
		return
	}
	res, err := e.Severance(r.Context(), workerID(r))
	if err != nil {
		h.fail(w, r, "Failed to calculate severance", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetAnnualLeave(w http.ResponseWriter, r *http.Request) {
	e, err := h.engineFor(r)
	if err != nil {
		h.fail(w, r, "Invalid request", err)
		return
	}
	year := e.Today().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			h.fail(w, r, "Invalid request", fieldError("year", "must be a number"))
			return
		}
		year = y
	}
	res, err := e.AnnualLeave(r.Context(), workerID(r), year)
	if err != nil {
		h.fail(w, r, "Failed to calculate annual leave", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetDiagnosis(w http.ResponseWriter, r *http.Request) {
	e, err := h.engineFor(r)
	if err != nil {
		h.fail(w, r, "Invalid request", err)
		return
	}
	res, err := e.Diagnose(r.Context(), workerID(r))
	if err != nil {
		h.fail(w, r, "Failed to diagnose worker", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListResults returns recorded calculations, newest first.
// Results outlive their worker, so no existence check is made.
func (h *Handler) ListResults(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.fail(w, r, "Invalid request", fieldError("limit", "must be a non-negative number"))
			return
		}
		limit = n
	}
	results, err := h.Store.ListResults(r.Context(), workerID(r), limit)
	if err != nil {
		h.fail(w, r, "Failed to list results", err)
		return
	}
	dtos := make([]ResultDTO, len(results))
	for i, res := range results {
		dtos[i] = toResultDTO(res)
	}
	writeJSON(w, http.StatusOK, dtos)
}
