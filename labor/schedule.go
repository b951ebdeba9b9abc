package labor

import (
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// SNAPSHOT - Immutable view of one worker's data
// =============================================================================

// ScheduleSnapshot holds a worker's schedule sources.
type ScheduleSnapshot struct {
	Weekly  map[int]WeeklySchedule
	Monthly map[MonthlyKey]MonthlySchedule
}

// NewScheduleSnapshot indexes schedule rows. Later rows win on duplicate keys.
func NewScheduleSnapshot(weekly []WeeklySchedule, monthly []MonthlySchedule) ScheduleSnapshot {
	s := ScheduleSnapshot{
		Weekly:  make(map[int]WeeklySchedule, len(weekly)),
		Monthly: make(map[MonthlyKey]MonthlySchedule, len(monthly)),
	}
	for _, w := range weekly {
		s.Weekly[w.Weekday] = w
	}
	for _, m := range monthly {
		s.Monthly[m.Key()] = m
	}
	return s
}

// RecordSet indexes work records by date.
type RecordSet map[string]WorkRecord

func NewRecordSet(records []WorkRecord) RecordSet {
	set := make(RecordSet, len(records))
	for _, r := range records {
		set[r.Date.String()] = r
	}
	return set
}

// On returns the record for date, if any.
func (rs RecordSet) On(date generic.TimePoint) (WorkRecord, bool) {
	r, ok := rs[date.String()]
	return r, ok
}

// WorkerSnapshot is everything a calculation may read about one worker.
type WorkerSnapshot struct {
	Worker    Worker
	Schedules ScheduleSnapshot
	Records   RecordSet
}

// =============================================================================
// SCHEDULE RESOLVER
// =============================================================================

type ResolutionKind string

const (
	NotScheduled        ResolutionKind = "not_scheduled"
	ScheduledByMonthly  ResolutionKind = "monthly"
	ScheduledByWeekly   ResolutionKind = "weekly"
	SuppressedByMonthly ResolutionKind = "suppressed_by_monthly"
	BeforeStart         ResolutionKind = "before_start"
)

// Resolution is the expected shift for one date and where it came from.
// Template is only meaningful when IsScheduled.
type Resolution struct {
	Date     generic.TimePoint
	Kind     ResolutionKind
	Template ShiftTemplate
	SourceID string
}

func (r Resolution) IsScheduled() bool {
	return r.Kind == ScheduledByMonthly || r.Kind == ScheduledByWeekly
}

// Shift returns the expected shift. Only valid when IsScheduled.
func (r Resolution) Shift() Shift {
	return r.Template.Shift()
}

// ResolveSchedule returns the expected shift for date.
//
// Priority:
//  1. date before the worker's start date: never scheduled
//  2. a monthly override for (year, month, weekday) always wins, including
//     an override that carries no shift
//  3. the weekly schedule for the weekday
//  4. not scheduled
func ResolveSchedule(snapshot ScheduleSnapshot, worker Worker, date generic.TimePoint) Resolution {
	res := Resolution{Date: date, Kind: NotScheduled}
	if date.Before(worker.StartDate) {
		res.Kind = BeforeStart
		return res
	}

	weekday := date.WeekdayIndex()
	key := MonthlyKey{Year: date.Year(), Month: date.Month(), Weekday: weekday}
	if m, ok := snapshot.Monthly[key]; ok {
		res.SourceID = m.ID
		if !m.HasShift() {
			res.Kind = SuppressedByMonthly
			return res
		}
		res.Kind = ScheduledByMonthly
		res.Template = m.ShiftTemplate
		return res
	}

	if w, ok := snapshot.Weekly[weekday]; ok && w.HasShift() {
		res.Kind = ScheduledByWeekly
		res.Template = w.ShiftTemplate
		res.SourceID = w.ID
	}
	return res
}

// ScheduledDays returns the resolutions of every scheduled day in period.
func ScheduledDays(snapshot ScheduleSnapshot, worker Worker, period generic.Period) []Resolution {
	var days []Resolution
	for _, d := range period.Days() {
		if r := ResolveSchedule(snapshot, worker, d); r.IsScheduled() {
			days = append(days, r)
		}
	}
	return days
}
