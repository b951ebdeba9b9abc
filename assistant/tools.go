/*
Package assistant exposes the engine as text tools for a conversational layer.

PURPOSE:
  A chat front end (or a human at a terminal) asks questions such as "how
  much did I earn in June?" or "am I owed severance?". Each tool answers one
  kind of question with a short plain-text summary built from live engine
  results, so the caller never has to interpret raw JSON.

TOOLS:
  workers         registered workers with rate and contract hours
  monthly_salary  expected pay for a month (current month by default)
  severance       severance estimate and its basis
  diagnose        minimum wage and weekly holiday compliance
  recent          the five latest recorded calculations

  Every tool runs for one worker when WorkerID is set, otherwise for every
  registered worker.

SEE ALSO:
  - session.go: bounded per-session history
  - labor/engine.go: the computations behind each tool
*/
package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/labor"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ToolWorkers       = "workers"
	ToolMonthlySalary = "monthly_salary"
	ToolSeverance     = "severance"
	ToolDiagnose      = "diagnose"
	ToolRecent        = "recent"
)

// RecentLimit is how many results the recent tool shows.
const RecentLimit = 5

// ErrUnknownTool is returned for a tool name outside the catalogue.
var ErrUnknownTool = fmt.Errorf("%w: unknown tool", generic.ErrNotFound)

// Names lists the tool catalogue in display order.
func Names() []string {
	return []string{ToolWorkers, ToolMonthlySalary, ToolSeverance, ToolDiagnose, ToolRecent}
}

// Directory is the worker lookup the tools need.
type Directory interface {
	GetWorker(ctx context.Context, id generic.EntityID) (*labor.Worker, error)
	ListWorkers(ctx context.Context) ([]labor.Worker, error)
}

// Request selects a tool and its arguments.
type Request struct {
	Tool     string
	WorkerID generic.EntityID
	// Year and Month default to the engine's current month when zero.
	Year  int
	Month int
}

// Tools binds the text tools to an engine and its stores.
type Tools struct {
	Engine    *labor.Engine
	Directory Directory
	Results   generic.ResultStore
}

var printer = message.NewPrinter(language.English)

// Run executes one tool and returns its text answer.
func (t *Tools) Run(ctx context.Context, req Request) (string, error) {
	switch req.Tool {
	case ToolWorkers:
		return t.eachWorker(ctx, req, t.describeWorker, "No workers are registered.")
	case ToolMonthlySalary:
		return t.eachWorker(ctx, req, func(ctx context.Context, w labor.Worker) (string, error) {
			return t.monthlySalary(ctx, w, req)
		}, "No workers are registered.")
	case ToolSeverance:
		return t.eachWorker(ctx, req, t.severance, "No workers are registered.")
	case ToolDiagnose:
		return t.eachWorker(ctx, req, t.diagnose, "No workers to diagnose.")
	case ToolRecent:
		return t.recent(ctx, req)
	}
	return "", fmt.Errorf("%w %q", ErrUnknownTool, req.Tool)
}

func (t *Tools) today() generic.TimePoint {
	if t.Engine == nil {
		return generic.SystemClock{}.Today()
	}
	return t.Engine.Today()
}

// eachWorker runs fn for the requested worker, or for all of them.
func (t *Tools) eachWorker(ctx context.Context, req Request, fn func(context.Context, labor.Worker) (string, error), empty string) (string, error) {
	workers, err := t.workers(ctx, req.WorkerID)
	if err != nil {
		return "", err
	}
	if len(workers) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(workers))
	for _, w := range workers {
		s, err := fn(ctx, w)
		if err != nil {
			return "", fmt.Errorf("%s for %s: %w", req.Tool, w.ID, err)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (t *Tools) workers(ctx context.Context, id generic.EntityID) ([]labor.Worker, error) {
	if t.Directory == nil {
		return nil, generic.ErrStoreRequired
	}
	if id == "" {
		return t.Directory.ListWorkers(ctx)
	}
	w, err := t.Directory.GetWorker(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: %s", generic.ErrWorkerNotFound, id)
	}
	return []labor.Worker{*w}, nil
}

// =============================================================================
// TOOLS
// =============================================================================

func (t *Tools) describeWorker(_ context.Context, w labor.Worker) (string, error) {
	threshold := t.Engine.Policy.WeeklyHoursThreshold
	contract := "not set"
	weekly := "unknown (no contract hours)"
	if w.HasContractHours() {
		contract = hours(w.ContractHours())
		if w.ContractHours().GreaterThanOrEqual(threshold) {
			weekly = fmt.Sprintf("eligible (%s or more per week)", hours(threshold))
		} else {
			weekly = fmt.Sprintf("not eligible (under %s per week)", hours(threshold))
		}
	}
	lines := []string{
		fmt.Sprintf("[ID: %s] %s", w.ID, displayName(w)),
		"- hourly rate: " + won(w.HourlyRate),
		"- contract weekly hours: " + contract,
		"- deductions: " + string(w.DeductionType),
		"- started: " + w.StartDate.String(),
		"- weekly holiday pay: " + weekly,
	}
	if w.EndDate != nil {
		lines = append(lines, "- ended: "+w.EndDate.String())
	}
	return strings.Join(lines, "\n"), nil
}

func (t *Tools) monthlySalary(ctx context.Context, w labor.Worker, req Request) (string, error) {
	today := t.today()
	year, month := today.Year(), today.Month()
	if req.Year != 0 {
		year = req.Year
	}
	if req.Month != 0 {
		month = time.Month(req.Month)
	}
	p, err := t.Engine.MonthlyPayroll(ctx, w.ID, year, month)
	if err != nil {
		return "", err
	}
	pay := p.NetPay
	if pay.IsZero() {
		pay = p.GrossPay
	}
	return strings.Join([]string{
		fmt.Sprintf("[%s] %04d-%02d pay", displayName(w), year, int(month)),
		"- expected take-home: " + won(pay),
		"- gross: " + won(p.GrossPay),
		"- total hours: " + hours(p.TotalHours),
		"- weekly holiday pay: " + won(p.WeeklyHolidayPay),
		"- night bonus: " + won(p.NightBonus),
		"- holiday bonus: " + won(p.HolidayBonus),
		"- deductions: " + won(p.Deduction.Total),
	}, "\n"), nil
}

func (t *Tools) severance(ctx context.Context, w labor.Worker) (string, error) {
	s, err := t.Engine.Severance(ctx, w.ID)
	if err != nil {
		return "", err
	}
	verdict := "not owed (under one year or too few hours)"
	switch {
	case s.Eligible:
		verdict = won(s.SeverancePay) + " (estimate)"
	case s.Reason == labor.ReasonServiceUnder1Y:
		verdict = fmt.Sprintf("not owed (%d days of service, under one year)", s.ServiceDays)
	case s.Reason == labor.ReasonHoursUnder15:
		verdict = "not owed (under 15 hours per week)"
	}
	return strings.Join([]string{
		fmt.Sprintf("[%s] severance", displayName(w)),
		"- estimate: " + verdict,
		"- basis: average daily wage " + won(s.AvgDailyWage),
		fmt.Sprintf("- service: %s to %s", s.ServiceStart, s.ServiceEnd),
	}, "\n"), nil
}

func (t *Tools) diagnose(ctx context.Context, w labor.Worker) (string, error) {
	d, err := t.Engine.Diagnose(ctx, w.ID)
	if err != nil {
		return "", err
	}
	minWage := "compliant"
	if !d.MeetsMinimumWage {
		minWage = fmt.Sprintf("violation (below the minimum wage of %s)", won(d.MinimumWage))
	}
	weekly := "not eligible"
	if d.WeeklyHoliday.WeeklyHours.GreaterThanOrEqual(t.Engine.Policy.WeeklyHoursThreshold) {
		weekly = fmt.Sprintf("eligible (%s per week)", hours(d.WeeklyHoliday.WeeklyHours))
	}
	overall := "no violations found"
	if len(d.Warnings) > 0 {
		overall = "warning: " + strings.Join(d.Warnings, "; ")
	}
	return strings.Join([]string{
		fmt.Sprintf("[%s] diagnosis as of %s", displayName(w), d.AsOf),
		"- minimum wage: " + minWage,
		"- weekly holiday pay: " + weekly,
		"- annual leave remaining: " + days(d.AnnualLeave.RemainingDays),
		"- overall: " + overall,
	}, "\n"), nil
}

// recent lists the latest results across the requested workers. Results
// of a deleted worker are still shown when it is asked for by id.
func (t *Tools) recent(ctx context.Context, req Request) (string, error) {
	if t.Results == nil {
		return "", generic.ErrStoreRequired
	}
	names := map[generic.EntityID]string{}
	var ids []generic.EntityID
	if req.WorkerID != "" {
		ids = []generic.EntityID{req.WorkerID}
		if t.Directory != nil {
			if w, err := t.Directory.GetWorker(ctx, req.WorkerID); err == nil && w != nil {
				names[w.ID] = displayName(*w)
			}
		}
	} else {
		workers, err := t.workers(ctx, "")
		if err != nil {
			return "", err
		}
		for _, w := range workers {
			ids = append(ids, w.ID)
			names[w.ID] = displayName(w)
		}
	}

	var all []generic.CalculationResult
	for _, id := range ids {
		rs, err := t.Results.ListResults(ctx, id, RecentLimit)
		if err != nil {
			return "", fmt.Errorf("list results for %s: %w", id, err)
		}
		all = append(all, rs...)
	}
	if len(all) == 0 {
		return "No calculations have been recorded yet.", nil
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if len(all) > RecentLimit {
		all = all[:RecentLimit]
	}

	parts := make([]string, 0, len(all))
	for _, r := range all {
		name, ok := names[r.EntityID]
		if !ok {
			name = "deleted worker"
		}
		parts = append(parts, strings.Join([]string{
			fmt.Sprintf("[calculated %s] %s", r.CreatedAt.Format("2006-01-02"), name),
			"- type: " + string(r.Type),
			fmt.Sprintf("- period: %s ~ %s", r.Period.Start, r.Period.End),
			"- total: " + amount(r.Total),
		}, "\n"))
	}
	return strings.Join(parts, "\n\n"), nil
}

// =============================================================================
// FORMATTING
// =============================================================================

func displayName(w labor.Worker) string {
	if w.Name == "" {
		return string(w.ID)
	}
	return w.Name
}

func won(d decimal.Decimal) string {
	return printer.Sprintf("%d won", d.Round(0).IntPart())
}

func hours(d decimal.Decimal) string {
	return d.Round(2).String() + "h"
}

func days(d decimal.Decimal) string {
	return d.Round(1).String() + " days"
}

func amount(a generic.Amount) string {
	switch a.Unit {
	case generic.UnitWon:
		return won(a.Value)
	case generic.UnitDays:
		return days(a.Value)
	case generic.UnitHours:
		return hours(a.Value)
	}
	return a.String()
}
