/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Provides pre-built workers that exercise one rule each. Every scenario
  creates a single worker "scenario-<letter>" with dates anchored on the
  requested as_of date (default today), so the outcome is the same
  whenever the scenario is loaded.

AVAILABLE SCENARIOS:
  weekly-holiday-eligible:  A. 20h contract, 5 x 4h, full attendance -> 40,000 won
  weekly-holiday-absence:   B. As A with Wednesday missing -> not_perfect_attendance
  weekly-holiday-short:     C. 12h contract -> less_than_threshold
  severance-estimate:       D. 400 days of service, no records -> CONTRACT_ESTIMATE
  small-workplace-leave:    E. Under 5 employees -> no annual leave

HOW SCENARIOS WORK:
 1. Remove every worker a previous scenario created
 2. Create the worker, its weekly schedule and work records
 3. Report the endpoint that shows the outcome

USAGE VIA API:
	POST /api/scenarios/load
	{"scenario_id": "weekly-holiday-eligible", "as_of": "2025-03-12"}

NOTE:
  POST /api/scenarios/reset deletes every worker. Only use it in
  development/demo environments.

SEE ALSO:
  - handlers.go: worker and record handlers
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/labor"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

const scenarioPrefix = "scenario-"

type scenario struct {
	ScenarioDTO
	workerID generic.EntityID
	load     func(ctx context.Context, h *Handler, id generic.EntityID, today generic.TimePoint) error
	// check builds the query of the outcome endpoint.
	check func(today generic.TimePoint) url.Values
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "weekly-holiday-eligible",
			Name:        "Weekly Holiday Pay",
			Description: "20h contract, Mon-Fri 4h shifts, full attendance last week: one 4h day paid",
			Check:       "weekly-holiday-pay",
		},
		workerID: scenarioPrefix + "a",
		load: func(ctx context.Context, h *Handler, id generic.EntityID, today generic.TimePoint) error {
			return h.seedPartTimer(ctx, id, today, 20, 5, -1)
		},
		check: lastWeek,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "weekly-holiday-absence",
			Name:        "Missed Day",
			Description: "As weekly-holiday-eligible but Wednesday has no record: no weekly holiday pay",
			Check:       "weekly-holiday-pay",
		},
		workerID: scenarioPrefix + "b",
		load: func(ctx context.Context, h *Handler, id generic.EntityID, today generic.TimePoint) error {
			return h.seedPartTimer(ctx, id, today, 20, 5, 2)
		},
		check: lastWeek,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "weekly-holiday-short",
			Name:        "Short Contract",
			Description: "12h contract over three 4h shifts: below the 15h threshold",
			Check:       "weekly-holiday-pay",
		},
		workerID: scenarioPrefix + "c",
		load: func(ctx context.Context, h *Handler, id generic.EntityID, today generic.TimePoint) error {
			return h.seedPartTimer(ctx, id, today, 12, 3, -1)
		},
		check: lastWeek,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "severance-estimate",
			Name:        "Severance From Contract",
			Description: "400 days of service with no recent records: the average daily wage is estimated from contract hours",
			Check:       "severance",
		},
		workerID: scenarioPrefix + "d",
		load: func(ctx context.Context, h *Handler, id generic.EntityID, today generic.TimePoint) error {
			return h.Store.SaveWorker(ctx, scenarioWorker(id, "Severance Estimate", today.AddDays(-400), 20, true))
		},
		check: asOf,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "small-workplace-leave",
			Name:        "Small Workplace",
			Description: "Under five employees: no statutory annual leave regardless of tenure",
			Check:       "annual-leave",
		},
		workerID: scenarioPrefix + "e",
		load: func(ctx context.Context, h *Handler, id generic.EntityID, today generic.TimePoint) error {
			return h.Store.SaveWorker(ctx, scenarioWorker(id, "Small Workplace", today.AddDays(-400), 20, false))
		},
		check: asOf,
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

func asOf(today generic.TimePoint) url.Values {
	return url.Values{"as_of": {today.String()}}
}

// lastWeek points at the Monday of the last finished week.
func lastWeek(today generic.TimePoint) url.Values {
	v := asOf(today)
	v.Set("date", generic.WeekOf(today).Start.AddDays(-7).String())
	return v
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	s, ok := findScenario(current)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario replaces any earlier scenario worker with the requested one.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}
	s, ok := findScenario(req.ScenarioID)
	if !ok {
		h.fail(w, r, "Unknown scenario", fieldError("scenario_id", "unknown scenario"))
		return
	}
	today := h.Engine.Today()
	if req.AsOf != "" {
		d, err := generic.ParseDate(req.AsOf)
		if err != nil {
			h.fail(w, r, "Invalid request body", fieldError("as_of", "must be YYYY-MM-DD"))
			return
		}
		today = d
	}

	ctx := r.Context()
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.clearScenarioWorkers(ctx); err != nil {
		h.fail(w, r, "Failed to clear previous scenario", err)
		return
	}
	h.currentScenario = ""
	if err := s.load(ctx, h, s.workerID, today); err != nil {
		h.fail(w, r, fmt.Sprintf("Failed to load scenario %s", s.ID), err)
		return
	}
	h.currentScenario = s.ID
	h.Logger.InfoContext(ctx, "scenario loaded", "scenario", s.ID, "as_of", today.String())

	check := fmt.Sprintf("/api/workers/%s/%s?%s", s.workerID, s.Check, s.check(today).Encode())
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "loaded",
		"scenario":  s.ID,
		"worker_id": string(s.workerID),
		"check":     check,
	})
}

// ResetDatabase deletes every worker with its schedules and records.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.mu.Lock()
	defer h.mu.Unlock()

	workers, err := h.Store.ListWorkers(ctx)
	if err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	for _, wk := range workers {
		if err := h.Store.DeleteWorker(ctx, wk.ID); err != nil {
			h.fail(w, r, "Failed to reset database", err)
			return
		}
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]any{"status": "reset", "deleted": len(workers)})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) clearScenarioWorkers(ctx context.Context) error {
	workers, err := h.Store.ListWorkers(ctx)
	if err != nil {
		return err
	}
	for _, wk := range workers {
		if !strings.HasPrefix(string(wk.ID), scenarioPrefix) {
			continue
		}
		if err := h.Store.DeleteWorker(ctx, wk.ID); err != nil {
			return err
		}
	}
	return nil
}

func scenarioWorker(id generic.EntityID, name string, start generic.TimePoint, contract int64, over5 bool) labor.Worker {
	hours := decimal.NewFromInt(contract)
	return labor.Worker{
		ID:                  id,
		Name:                name,
		HourlyRate:          decimal.NewFromInt(10000),
		StartDate:           start,
		WorkplaceOver5:      over5,
		ContractWeeklyHours: &hours,
		DeductionType:       labor.DeductionNone,
	}
}

// seedPartTimer creates a worker on 09:00-13:00 shifts for the first `days`
// weekdays and records attendance for every shift of last week except
// skipWeekday (-1 skips nothing).
func (h *Handler) seedPartTimer(ctx context.Context, id generic.EntityID, today generic.TimePoint, contract int64, days, skipWeekday int) error {
	week := generic.WeekOf(today).Start.AddDays(-7)
	name := fmt.Sprintf("Part-timer %dh", contract)
	if err := h.Store.SaveWorker(ctx, scenarioWorker(id, name, week.AddDays(-28), contract, true)); err != nil {
		return err
	}

	start, end := generic.NewClockTime(9, 0), generic.NewClockTime(13, 0)
	for wd := 0; wd < days; wd++ {
		err := h.Store.SaveWeeklySchedule(ctx, labor.WeeklySchedule{
			ID:       uuid.NewString(),
			WorkerID: id,
			Weekday:  wd,
			ShiftTemplate: labor.ShiftTemplate{
				StartTime: &start,
				EndTime:   &end,
				Enabled:   true,
			},
		})
		if err != nil {
			return err
		}
	}

	now := time.Now()
	for wd := 0; wd < days; wd++ {
		if wd == skipWeekday {
			continue
		}
		date := week.AddDays(wd)
		in, out := start.On(date), end.On(date)
		err := h.Store.SaveWorkRecord(ctx, labor.WorkRecord{
			ID:        uuid.NewString(),
			WorkerID:  id,
			Date:      date,
			TimeIn:    &in,
			TimeOut:   &out,
			Status:    labor.StatusRegularWork,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
