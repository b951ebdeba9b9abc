/*
handlers_test.go - HTTP tests for the REST handlers

PURPOSE:
	Drives the router end to end over an in-memory store:
	- Worker CRUD and conflict handling
	- Schedule and record endpoints with validation errors
	- Calculation endpoints pinned with ?as_of
	- Holiday endpoints and feed sync
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/labor"
	"github.com/warp/payroll-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testServer struct {
	handler *Handler
	router  http.Handler
	store   *memory.Store
}

// setupTestServer pins today to Wednesday 2025-03-12.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	engine := labor.NewEngine(store, store, labor.DefaultPolicy())
	engine.Results = store
	engine.Logger = logger
	engine = engine.WithToday(generic.NewTimePoint(2025, time.March, 12))

	h := NewHandler(store, engine, nil, logger)
	return &testServer{handler: h, router: NewRouter(h, nil, logger), store: store}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func workerBody(id string) map[string]any {
	return map[string]any{
		"id":                    id,
		"name":                  "Kim",
		"hourly_rate":           10000,
		"start_date":            "2025-01-01",
		"is_workplace_over_5":   true,
		"contract_weekly_hours": 20,
	}
}

// seedWeekdays creates worker id on Mon..Fri 09:00-13:00.
func (ts *testServer) seedWeekdays(t *testing.T, id string) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/workers", workerBody(id))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	for wd := 0; wd < 5; wd++ {
		rec := ts.do(t, http.MethodPut, "/api/workers/"+id+"/weekly-schedules", map[string]any{
			"weekday": wd, "start_time": "09:00", "end_time": "13:00",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

// =============================================================================
// WORKER TESTS
// =============================================================================

func TestWorker_CRUD(t *testing.T) {
	ts := setupTestServer(t)

	// GIVEN: a created worker
	rec := ts.do(t, http.MethodPost, "/api/workers", workerBody("kim"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[WorkerDTO](t, rec)
	assert.Equal(t, "kim", created.ID)
	assert.Equal(t, "NONE", created.DeductionType)
	assert.NotEmpty(t, created.CreatedAt)

	// WHEN: it is renamed
	body := workerBody("kim")
	body["name"] = "Kim Minji"
	rec = ts.do(t, http.MethodPut, "/api/workers/kim", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: the new name is served and the creation time kept
	got := decodeBody[WorkerDTO](t, ts.do(t, http.MethodGet, "/api/workers/kim", nil))
	assert.Equal(t, "Kim Minji", got.Name)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)

	list := decodeBody[[]WorkerDTO](t, ts.do(t, http.MethodGet, "/api/workers", nil))
	assert.Len(t, list, 1)

	// AND: delete removes it
	rec = ts.do(t, http.MethodDelete, "/api/workers/kim", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/workers/kim", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorker_CreateGeneratesID(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/workers", workerBody(""))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, decodeBody[WorkerDTO](t, rec).ID, 36)
}

func TestWorker_CreateTwiceConflicts(t *testing.T) {
	ts := setupTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/workers", workerBody("kim")).Code)

	rec := ts.do(t, http.MethodPost, "/api/workers", workerBody("kim"))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWorker_ValidationErrorsNameFields(t *testing.T) {
	ts := setupTestServer(t)

	// GIVEN: no name, a malformed start date and an unknown deduction type
	rec := ts.do(t, http.MethodPost, "/api/workers", map[string]any{
		"start_date":     "01/03/2025",
		"deduction_type": "PENSION",
	})

	// THEN: 400 with one reason per field
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Contains(t, resp.Fields, "name")
	assert.Contains(t, resp.Fields, "start_date")
	assert.Contains(t, resp.Fields, "deduction_type")
}

func TestWorker_EndBeforeStartRejected(t *testing.T) {
	ts := setupTestServer(t)
	body := workerBody("kim")
	body["end_date"] = "2024-12-31"

	rec := ts.do(t, http.MethodPost, "/api/workers", body)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Fields, "end_date")
}

func TestWorker_MalformedJSON(t *testing.T) {
	ts := setupTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/workers", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()

	ts.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Fields, "body")
}

// =============================================================================
// SCHEDULE TESTS
// =============================================================================

func TestWeeklySchedule_UpsertByWeekday(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedWeekdays(t, "kim")

	// WHEN: Monday is replaced
	rec := ts.do(t, http.MethodPut, "/api/workers/kim/weekly-schedules", map[string]any{
		"weekday": 0, "start_time": "10:00", "end_time": "14:00",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: still five entries
	list := decodeBody[[]WeeklyScheduleDTO](t, ts.do(t, http.MethodGet, "/api/workers/kim/weekly-schedules", nil))
	require.Len(t, list, 5)
	assert.Equal(t, 0, list[0].Weekday)
	require.NotNil(t, list[0].StartTime)
	assert.Equal(t, generic.NewClockTime(10, 0), *list[0].StartTime)

	// AND: delete drops one
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, "/api/workers/kim/weekly-schedules/4", nil).Code)
	list = decodeBody[[]WeeklyScheduleDTO](t, ts.do(t, http.MethodGet, "/api/workers/kim/weekly-schedules", nil))
	assert.Len(t, list, 4)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/workers/kim/weekly-schedules/4", nil).Code)
}

func TestWeeklySchedule_Validation(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedWeekdays(t, "kim")

	rec := ts.do(t, http.MethodPut, "/api/workers/kim/weekly-schedules", map[string]any{
		"weekday": 7, "start_time": "25:00", "end_time": "13:00",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decodeBody[ErrorResponse](t, rec).Fields
	assert.Contains(t, fields, "weekday")
	assert.Contains(t, fields, "start_time")
}

func TestWeeklySchedule_UnknownWorker(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/workers/ghost/weekly-schedules", map[string]any{
		"weekday": 0, "start_time": "09:00", "end_time": "13:00",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMonthlySchedule_OverrideSuppressesWeekly(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedWeekdays(t, "kim")

	// GIVEN: Mondays of March 2025 carry no shift
	rec := ts.do(t, http.MethodPut, "/api/workers/kim/monthly-schedules", map[string]any{
		"year": 2025, "month": 3, "weekday": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// WHEN: Monday 2025-03-17 is resolved
	rec = ts.do(t, http.MethodGet, "/api/workers/kim/schedule?date=2025-03-17", nil)

	// THEN: nothing is scheduled and the override is the source
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[ScheduleDTO](t, rec)
	assert.False(t, res.IsScheduled)
	assert.Equal(t, string(labor.SuppressedByMonthly), res.Source)

	list := decodeBody[[]MonthlyScheduleDTO](t, ts.do(t, http.MethodGet, "/api/workers/kim/monthly-schedules?month=2025-03", nil))
	assert.Len(t, list, 1)

	rec = ts.do(t, http.MethodDelete, "/api/workers/kim/monthly-schedules/2025/3/0", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res = decodeBody[ScheduleDTO](t, ts.do(t, http.MethodGet, "/api/workers/kim/schedule?date=2025-03-17", nil))
	assert.True(t, res.IsScheduled)
}

// =============================================================================
// WORK RECORD TESTS
// =============================================================================

func TestWorkRecord_CreateConflictAndUpsert(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedWeekdays(t, "kim")
	body := map[string]any{"date": "2025-03-10", "time_in": "09:00", "time_out": "13:00"}

	// GIVEN: a record on Monday
	rec := ts.do(t, http.MethodPost, "/api/workers/kim/records", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "REGULAR_WORK", decodeBody[WorkRecordDTO](t, rec).Status)

	// WHEN: a second POST for the same date
	rec = ts.do(t, http.MethodPost, "/api/workers/kim/records", body)

	// THEN: conflict, while PUT replaces
	assert.Equal(t, http.StatusConflict, rec.Code)
	body["time_out"] = "14:00"
	rec = ts.do(t, http.MethodPut, "/api/workers/kim/records", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	list := decodeBody[[]WorkRecordDTO](t, ts.do(t, http.MethodGet, "/api/workers/kim/records", nil))
	require.Len(t, list, 1)
	require.NotNil(t, list[0].TimeOut)
	assert.Equal(t, 14, list[0].TimeOut.Hour())
}

func TestWorkRecord_OvernightRollsToNextDay(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedWeekdays(t, "kim")

	rec := ts.do(t, http.MethodPost, "/api/workers/kim/records", map[string]any{
		"date": "2025-03-10", "time_in": "22:00", "time_out": "02:00",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decodeBody[WorkRecordDTO](t, rec)
	require.NotNil(t, got.TimeOut)
	assert.Equal(t, 11, got.TimeOut.Day())
}

func TestWorkRecord_HalfOpenTimesRejected(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedWeekdays(t, "kim")

	rec := ts.do(t, http.MethodPost, "/api/workers/kim/records", map[string]any{
		"date": "2025-03-10", "time_in": "09:00",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Fields, "time_out")
}

func TestWorkRecord_ListRange(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedWeekdays(t, "kim")
	for _, d := range []string{"2025-02-28", "2025-03-03", "2025-03-04"} {
		rec := ts.do(t, http.MethodPost, "/api/workers/kim/records", map[string]any{
			"date": d, "time_in": "09:00", "time_out": "13:00",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	// default is the current month
	list := decodeBody[[]WorkRecordDTO](t, ts.do(t, http.MethodGet, "/api/workers/kim/records", nil))
	assert.Len(t, list, 2)

	list = decodeBody[[]WorkRecordDTO](t, ts.do(t, http.MethodGet, "/api/workers/kim/records?from=2025-02-01&to=2025-03-03", nil))
	assert.Len(t, list, 2)

	rec := ts.do(t, http.MethodGet, "/api/workers/kim/records?from=2025-03-05&to=2025-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, "/api/workers/kim/records/2025-03-03", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/workers/kim/records/2025-03-03", nil).Code)
}

// =============================================================================
// CALCULATION TESTS
// =============================================================================

func TestPayroll_ProjectsTheWholeMonth(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedWeekdays(t, "kim")

	// GIVEN: today is the first of March, so every weekday is projected
	rec := ts.do(t, http.MethodGet, "/api/workers/kim/payroll?month=2025-03&as_of=2025-03-01", nil)

	// THEN: 21 weekdays x 4h
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[labor.MonthlyPayroll](t, rec)
	assert.True(t, decimal.NewFromInt(84).Equal(got.TotalHours), got.TotalHours.String())
	assert.True(t, decimal.NewFromInt(840000).Equal(got.BasePay), got.BasePay.String())

	// AND: the calculation was recorded
	results := decodeBody[[]ResultDTO](t, ts.do(t, http.MethodGet, "/api/workers/kim/results", nil))
	require.Len(t, results, 1)
	assert.Equal(t, string(generic.CalcMonthlyPayroll), results[0].Type)
	assert.Equal(t, "2025-03-01", results[0].PeriodStart)
}

func TestCalculations_BadParameters(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedWeekdays(t, "kim")

	tests := []struct {
		path  string
		field string
	}{
		{"/api/workers/kim/payroll?month=2025-13", "month"},
		{"/api/workers/kim/weekly-holiday-pay?date=tomorrow", "date"},
		{"/api/workers/kim/severance?as_of=2025-3-1", "as_of"},
		{"/api/workers/kim/annual-leave?year=last", "year"},
		{"/api/workers/kim/results?limit=-1", "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := ts.do(t, http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, decodeBody[ErrorResponse](t, rec).Fields, tt.field)
		})
	}
}

func TestCalculations_UnknownWorker(t *testing.T) {
	ts := setupTestServer(t)

	for _, path := range []string{
		"/api/workers/ghost/payroll",
		"/api/workers/ghost/severance",
		"/api/workers/ghost/diagnosis",
		"/api/workers/ghost/annual-leave",
	} {
		rec := ts.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestDiagnosis_MinimumWage(t *testing.T) {
	ts := setupTestServer(t)
	body := workerBody("low")
	body["hourly_rate"] = 9000
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/workers", body).Code)

	rec := ts.do(t, http.MethodGet, "/api/workers/low/diagnosis", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[labor.Diagnosis](t, rec)
	assert.False(t, got.MeetsMinimumWage)
	assert.NotEmpty(t, got.Warnings)
}

// =============================================================================
// HOLIDAY TESTS
// =============================================================================

type stubFeed struct {
	holidays []generic.Holiday
	err      error
}

func (f stubFeed) Fetch(context.Context) ([]generic.Holiday, error) { return f.holidays, f.err }

func TestHoliday_CreateListDelete(t *testing.T) {
	ts := setupTestServer(t)

	// GIVEN: a manual holiday posted twice
	body := map[string]any{"date": "2025-05-05", "name": "Children's Day"}
	rec := ts.do(t, http.MethodPost, "/api/holidays", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[HolidayDTO](t, rec)
	assert.Equal(t, "LEGAL", created.Type)
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/holidays", body).Code)

	// THEN: one row for the year
	rec = ts.do(t, http.MethodGet, "/api/holidays?year=2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[map[string][]HolidayDTO](t, rec)
	require.Len(t, list["holidays"], 1)
	assert.Equal(t, "2025-05-05", list["holidays"][0].Date)

	// AND: delete removes it
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, "/api/holidays/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/api/holidays/"+created.ID, nil).Code)
}

func TestHoliday_InvalidType(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/holidays", map[string]any{
		"date": "2025-05-05", "name": "Children's Day", "type": "BANK",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Fields, "type")
}

func TestHoliday_Sync(t *testing.T) {
	ts := setupTestServer(t)

	// no feed configured
	assert.Equal(t, http.StatusServiceUnavailable, ts.do(t, http.MethodPost, "/api/holidays/sync", nil).Code)

	// GIVEN: a feed with two holidays
	ts.handler.Feed = stubFeed{holidays: []generic.Holiday{
		{ID: "a", Date: generic.NewTimePoint(2025, time.March, 1), Name: "Independence Movement Day", Type: generic.HolidayLegal},
		{ID: "b", Date: generic.NewTimePoint(2025, time.May, 8), Name: "Parents' Day", Type: generic.HolidayObservance},
	}}

	// WHEN
	rec := ts.do(t, http.MethodPost, "/api/holidays/sync", nil)

	// THEN
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, decodeBody[map[string]any](t, rec)["count"])
	hs, err := ts.store.ListHolidays(context.Background(), generic.YearOf(2025))
	require.NoError(t, err)
	assert.Len(t, hs, 2)
}

func TestHoliday_SyncFeedDown(t *testing.T) {
	ts := setupTestServer(t)
	ts.handler.Feed = stubFeed{err: fmt.Errorf("%w: dial tcp: timeout", generic.ErrHolidaySource)}

	rec := ts.do(t, http.MethodPost, "/api/holidays/sync", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestFail_InternalErrorIs500(t *testing.T) {
	ts := setupTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	ts.handler.fail(rec, req, "boom", errors.New("disk on fire"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "boom", decodeBody[ErrorResponse](t, rec).Error)
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlers_EngineWithoutClockUsesSystemDate(t *testing.T) {
	// GIVEN: an engine assembled without an injected clock
	ts := setupTestServer(t)
	ts.handler.Engine = &labor.Engine{Repo: ts.store, Policy: labor.DefaultPolicy()}
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/workers", workerBody("kim")).Code)

	// WHEN: endpoints default their range to the current date
	records := ts.do(t, http.MethodGet, "/api/workers/kim/records", nil)
	holidays := ts.do(t, http.MethodGet, "/api/holidays", nil)

	// THEN
	assert.Equal(t, http.StatusOK, records.Code, records.Body.String())
	assert.Equal(t, http.StatusOK, holidays.Code, holidays.Body.String())
	assert.Equal(t, generic.SystemClock{}.Today().Year(), ts.handler.Engine.Today().Year())
}
