/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Worker:     WorkerDTO, WorkerRequest
  Schedules:  ShiftTemplateRequest, WeeklyScheduleRequest/DTO, MonthlyScheduleRequest/DTO
  Records:    WorkRecordRequest, BreakRequest, WorkRecordDTO
  Holidays:   HolidayRequest, HolidayDTO
  Results:    ResultDTO
  Assistant:  ToolRequest, ToolResponse, SessionDTO
  Scenarios:  ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Request types carry validator/v10 tags for shape (required, ranges,
  formats). Domain rules that span fields stay in labor/validate.go and run
  after conversion. Both surface as generic.ValidationErrors.

  Times of day are "HH:MM" strings on the record's date; a time_out at or
  before time_in lands on the next day.

SEE ALSO:
  - validate.go: validator setup and error mapping
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/assistant"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/labor"
)

// =============================================================================
// WORKERS
// =============================================================================

// WorkerDTO represents a worker in API responses.
type WorkerDTO struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	HourlyRate          decimal.Decimal  `json:"hourly_rate"`
	StartDate           string           `json:"start_date"`
	EndDate             *string          `json:"end_date,omitempty"`
	WorkplaceOver5      bool             `json:"is_workplace_over_5"`
	ContractWeeklyHours *decimal.Decimal `json:"contract_weekly_hours,omitempty"`
	DeductionType       string           `json:"deduction_type"`
	CreatedAt           string           `json:"created_at,omitempty"`
	UpdatedAt           string           `json:"updated_at,omitempty"`
}

// WorkerRequest creates or replaces a worker.
type WorkerRequest struct {
	ID                  string           `json:"id" validate:"omitempty,max=64,excludesall=/?#"`
	Name                string           `json:"name" validate:"required,max=100"`
	HourlyRate          decimal.Decimal  `json:"hourly_rate"`
	StartDate           string           `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate             string           `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	WorkplaceOver5      bool             `json:"is_workplace_over_5"`
	ContractWeeklyHours *decimal.Decimal `json:"contract_weekly_hours"`
	DeductionType       string           `json:"deduction_type" validate:"omitempty,oneof=NONE FOUR_INSURANCE FREELANCE"`
}

func (req WorkerRequest) toWorker(id generic.EntityID) (labor.Worker, error) {
	start, err := generic.ParseDate(req.StartDate)
	if err != nil {
		return labor.Worker{}, fieldError("start_date", "must be YYYY-MM-DD")
	}
	w := labor.Worker{
		ID:                  id,
		Name:                req.Name,
		HourlyRate:          req.HourlyRate,
		StartDate:           start,
		WorkplaceOver5:      req.WorkplaceOver5,
		ContractWeeklyHours: req.ContractWeeklyHours,
		DeductionType:       labor.DeductionType(req.DeductionType),
	}
	if w.DeductionType == "" {
		w.DeductionType = labor.DeductionNone
	}
	if req.EndDate != "" {
		end, err := generic.ParseDate(req.EndDate)
		if err != nil {
			return labor.Worker{}, fieldError("end_date", "must be YYYY-MM-DD")
		}
		w.EndDate = &end
	}
	return w, labor.ValidateWorker(w)
}

func toWorkerDTO(w labor.Worker) WorkerDTO {
	dto := WorkerDTO{
		ID:                  string(w.ID),
		Name:                w.Name,
		HourlyRate:          w.HourlyRate,
		StartDate:           w.StartDate.String(),
		WorkplaceOver5:      w.WorkplaceOver5,
		ContractWeeklyHours: w.ContractWeeklyHours,
		DeductionType:       string(w.DeductionType),
	}
	if w.EndDate != nil {
		s := w.EndDate.String()
		dto.EndDate = &s
	}
	if !w.CreatedAt.IsZero() {
		dto.CreatedAt = w.CreatedAt.Format(time.RFC3339)
	}
	if !w.UpdatedAt.IsZero() {
		dto.UpdatedAt = w.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// SCHEDULES
// =============================================================================

// ShiftTemplateRequest is the shape shared by weekly and monthly schedules.
// Omitting both times stores an entry without a shift.
type ShiftTemplateRequest struct {
	StartTime      string `json:"start_time" validate:"omitempty,clock"`
	EndTime        string `json:"end_time" validate:"omitempty,clock"`
	BreakMinutes   int    `json:"break_minutes" validate:"gte=0"`
	Overnight      bool   `json:"is_overnight"`
	NextDayMinutes int    `json:"next_day_work_minutes" validate:"gte=0,lte=360"`
	Enabled        *bool  `json:"enabled"`
}

func (req ShiftTemplateRequest) toTemplate() labor.ShiftTemplate {
	t := labor.ShiftTemplate{
		BreakMinutes:   req.BreakMinutes,
		Overnight:      req.Overnight,
		NextDayMinutes: req.NextDayMinutes,
		Enabled:        req.Enabled == nil || *req.Enabled,
	}
	if c, err := generic.ParseClockTime(req.StartTime); err == nil {
		t.StartTime = &c
	}
	if c, err := generic.ParseClockTime(req.EndTime); err == nil {
		t.EndTime = &c
	}
	return t
}

// ShiftTemplateDTO is a schedule entry's shift in responses.
type ShiftTemplateDTO struct {
	StartTime      *generic.ClockTime `json:"start_time"`
	EndTime        *generic.ClockTime `json:"end_time"`
	BreakMinutes   int                `json:"break_minutes"`
	Overnight      bool               `json:"is_overnight"`
	NextDayMinutes int                `json:"next_day_work_minutes"`
	Enabled        bool               `json:"enabled"`
}

func toTemplateDTO(t labor.ShiftTemplate) ShiftTemplateDTO {
	return ShiftTemplateDTO{
		StartTime:      t.StartTime,
		EndTime:        t.EndTime,
		BreakMinutes:   t.BreakMinutes,
		Overnight:      t.Overnight,
		NextDayMinutes: t.NextDayMinutes,
		Enabled:        t.Enabled,
	}
}

type WeeklyScheduleRequest struct {
	// Weekday is 0 (Monday) to 6 (Sunday).
	Weekday *int `json:"weekday" validate:"required,gte=0,lte=6"`
	ShiftTemplateRequest
}

type WeeklyScheduleDTO struct {
	ID       string `json:"id"`
	WorkerID string `json:"worker_id"`
	Weekday  int    `json:"weekday"`
	ShiftTemplateDTO
}

func toWeeklyDTO(s labor.WeeklySchedule) WeeklyScheduleDTO {
	return WeeklyScheduleDTO{
		ID:               s.ID,
		WorkerID:         string(s.WorkerID),
		Weekday:          s.Weekday,
		ShiftTemplateDTO: toTemplateDTO(s.ShiftTemplate),
	}
}

type MonthlyScheduleRequest struct {
	Year    int  `json:"year" validate:"required,gte=1900,lte=9999"`
	Month   int  `json:"month" validate:"required,gte=1,lte=12"`
	Weekday *int `json:"weekday" validate:"required,gte=0,lte=6"`
	ShiftTemplateRequest
}

type MonthlyScheduleDTO struct {
	ID       string `json:"id"`
	WorkerID string `json:"worker_id"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Weekday  int    `json:"weekday"`
	ShiftTemplateDTO
}

func toMonthlyDTO(s labor.MonthlySchedule) MonthlyScheduleDTO {
	return MonthlyScheduleDTO{
		ID:               s.ID,
		WorkerID:         string(s.WorkerID),
		Year:             s.Year,
		Month:            int(s.Month),
		Weekday:          s.Weekday,
		ShiftTemplateDTO: toTemplateDTO(s.ShiftTemplate),
	}
}

// =============================================================================
// WORK RECORDS
// =============================================================================

type BreakRequest struct {
	Start string `json:"start" validate:"required,clock"`
	End   string `json:"end" validate:"required,clock"`
}

type WorkRecordRequest struct {
	Date           string         `json:"date" validate:"required,datetime=2006-01-02"`
	TimeIn         string         `json:"time_in" validate:"omitempty,clock"`
	TimeOut        string         `json:"time_out" validate:"omitempty,clock"`
	BreakMinutes   int            `json:"break_minutes" validate:"gte=0"`
	Breaks         []BreakRequest `json:"breaks" validate:"omitempty,dive"`
	Overnight      bool           `json:"is_overnight"`
	NextDayMinutes int            `json:"next_day_work_minutes" validate:"gte=0,lte=360"`
	Status         string         `json:"attendance_status" validate:"omitempty,oneof=REGULAR_WORK EXTRA_WORK ANNUAL_LEAVE ABSENT SICK_LEAVE"`
}

// onDate places a clock time on date, rolling to the next day when it is
// before ref.
func onDate(date generic.TimePoint, clock string, ref *time.Time) (time.Time, error) {
	c, err := generic.ParseClockTime(clock)
	if err != nil {
		return time.Time{}, err
	}
	t := c.On(date)
	if ref != nil && t.Before(*ref) {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}

func (req WorkRecordRequest) toRecord(workerID generic.EntityID) (labor.WorkRecord, error) {
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		return labor.WorkRecord{}, fieldError("date", "must be YYYY-MM-DD")
	}
	r := labor.WorkRecord{
		WorkerID:       workerID,
		Date:           date,
		BreakMinutes:   req.BreakMinutes,
		Overnight:      req.Overnight,
		NextDayMinutes: req.NextDayMinutes,
		Status:         labor.AttendanceStatus(req.Status),
	}
	if r.Status == "" {
		r.Status = labor.StatusRegularWork
	}
	if (req.TimeIn == "") != (req.TimeOut == "") {
		return labor.WorkRecord{}, fieldError("time_out", "time_in and time_out must both be set or both be empty")
	}
	if req.TimeIn != "" {
		in, err := onDate(date, req.TimeIn, nil)
		if err != nil {
			return labor.WorkRecord{}, fieldError("time_in", err.Error())
		}
		out, err := onDate(date, req.TimeOut, &in)
		if err != nil {
			return labor.WorkRecord{}, fieldError("time_out", err.Error())
		}
		r.TimeIn, r.TimeOut = &in, &out
		for _, b := range req.Breaks {
			start, err := onDate(date, b.Start, &in)
			if err != nil {
				return labor.WorkRecord{}, fieldError("breaks", err.Error())
			}
			end, err := onDate(date, b.End, &start)
			if err != nil {
				return labor.WorkRecord{}, fieldError("breaks", err.Error())
			}
			r.Breaks = append(r.Breaks, labor.BreakInterval{Start: start, End: end})
		}
	}
	return r, labor.ValidateWorkRecord(r)
}

type BreakDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type WorkRecordDTO struct {
	ID             string     `json:"id"`
	WorkerID       string     `json:"worker_id"`
	Date           string     `json:"date"`
	TimeIn         *time.Time `json:"time_in,omitempty"`
	TimeOut        *time.Time `json:"time_out,omitempty"`
	BreakMinutes   int        `json:"break_minutes"`
	Breaks         []BreakDTO `json:"breaks,omitempty"`
	Overnight      bool       `json:"is_overnight"`
	NextDayMinutes int        `json:"next_day_work_minutes"`
	Status         string     `json:"attendance_status"`
}

func toRecordDTO(r labor.WorkRecord) WorkRecordDTO {
	dto := WorkRecordDTO{
		ID:             r.ID,
		WorkerID:       string(r.WorkerID),
		Date:           r.Date.String(),
		TimeIn:         r.TimeIn,
		TimeOut:        r.TimeOut,
		BreakMinutes:   r.BreakMinutes,
		Overnight:      r.Overnight,
		NextDayMinutes: r.NextDayMinutes,
		Status:         string(r.Status),
	}
	for _, b := range r.Breaks {
		dto.Breaks = append(dto.Breaks, BreakDTO{Start: b.Start, End: b.End})
	}
	return dto
}

// =============================================================================
// HOLIDAYS
// =============================================================================

type HolidayRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Name string `json:"name" validate:"required,max=100"`
	Type string `json:"type" validate:"omitempty,oneof=LEGAL OBSERVANCE"`
}

type HolidayDTO struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func toHolidayDTO(h generic.Holiday) HolidayDTO {
	return HolidayDTO{ID: h.ID, Date: h.Date.String(), Name: h.Name, Type: string(h.Type)}
}

// =============================================================================
// CALCULATION RESULTS
// =============================================================================

type ResultDTO struct {
	ID          string          `json:"id"`
	WorkerID    string          `json:"worker_id"`
	Type        string          `json:"type"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	AsOf        string          `json:"as_of"`
	Total       decimal.Decimal `json:"total"`
	Unit        string          `json:"unit"`
	LawVersion  string          `json:"law_version"`
	Detail      json.RawMessage `json:"detail"`
	CreatedAt   string          `json:"created_at"`
}

func toResultDTO(r generic.CalculationResult) ResultDTO {
	return ResultDTO{
		ID:          r.ID,
		WorkerID:    string(r.EntityID),
		Type:        string(r.Type),
		PeriodStart: r.Period.Start.String(),
		PeriodEnd:   r.Period.End.String(),
		AsOf:        r.AsOf.String(),
		Total:       r.Total.Value,
		Unit:        string(r.Total.Unit),
		LawVersion:  r.LawVersion,
		Detail:      r.Detail,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}

// ScheduleDTO is the resolved expected shift for one date.
type ScheduleDTO struct {
	Date        string `json:"date"`
	IsScheduled bool   `json:"is_scheduled"`
	Source      string `json:"source"`
	SourceID    string `json:"source_id,omitempty"`
	ShiftTemplateDTO
}

func toScheduleDTO(r labor.Resolution) ScheduleDTO {
	dto := ScheduleDTO{
		Date:        r.Date.String(),
		IsScheduled: r.IsScheduled(),
		Source:      string(r.Kind),
		SourceID:    r.SourceID,
	}
	if r.IsScheduled() {
		dto.ShiftTemplateDTO = toTemplateDTO(r.Template)
	}
	return dto
}

// =============================================================================
// ASSISTANT
// =============================================================================

type ToolRequest struct {
	SessionID string `json:"session_id" validate:"omitempty,max=64"`
	WorkerID  string `json:"worker_id"`
	Year      int    `json:"year" validate:"omitempty,gte=1900,lte=9999"`
	Month     int    `json:"month" validate:"omitempty,gte=1,lte=12"`
}

type ToolResponse struct {
	SessionID string `json:"session_id"`
	Tool      string `json:"tool"`
	Output    string `json:"output"`
	Turns     int    `json:"turns"`
}

type SessionDTO struct {
	ID       string              `json:"id"`
	Messages []assistant.Message `json:"messages"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Check names the endpoint that shows the scenario's outcome.
	Check string `json:"check,omitempty"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
	// AsOf anchors the scenario's dates; defaults to today.
	AsOf string `json:"as_of" validate:"omitempty,datetime=2006-01-02"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
