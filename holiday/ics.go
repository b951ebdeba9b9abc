/*
Package holiday provides public holiday calendars for the payroll engine.

PURPOSE:
  Holiday premiums depend on which dates are public holidays. This package
  reads them from an iCalendar (ICS) feed, classifies each entry as LEGAL
  (premium-bearing) or OBSERVANCE, caches them per month, and keeps a store
  in sync for manual overrides.

CONTENTS:
  ics.go       ICS parsing and LEGAL/OBSERVANCE classification
  provider.go  HTTP feed provider with per-month TTL cache and request
               de-duplication
  static.go    In-memory calendar (tests, demos, offline use)
  sync.go      Copies the feed into a Store

SEE ALSO:
  - generic/time.go: Holiday, HolidayCalendar
  - api/scheduler.go: periodic sync
*/
package holiday

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/warp/payroll-engine/generic"
)

// =============================================================================
// CLASSIFICATION
// =============================================================================

// legalKeywords mark statutory public holidays. Matching is case-insensitive
// and by substring.
var legalKeywords = []string{
	"새해 첫날", "신정", "new year's day",
	"설날", "설날 연휴", "lunar new year",
	"추석", "추석 연휴", "korean thanksgiving",
	"삼일절", "independence movement day",
	"부처님 오신 날", "부처님오신날", "석가탄신일", "buddha's birthday",
	"어린이날", "children's day",
	"현충일", "memorial day",
	"광복절", "liberation day",
	"개천절", "national foundation day",
	"한글날", "hangul day",
	"성탄절", "christmas day",
	"근로자의 날", "근로자의날", "labor day",
	"임시공휴일", "임시 공휴일", "temporary holiday",
	"대체공휴일", "대체 공휴일", "대체휴일", "대체 휴일", "substitute holiday",
	"선거", "election day", "투표", "국민투표",
}

// Classify returns LEGAL when summary names a statutory holiday.
// "Christmas" counts unless it is Christmas Eve.
func Classify(summary string) generic.HolidayType {
	s := strings.ToLower(strings.TrimSpace(summary))
	if s == "" {
		return generic.HolidayObservance
	}
	for _, k := range legalKeywords {
		if strings.Contains(s, k) {
			return generic.HolidayLegal
		}
	}
	if strings.Contains(s, "크리스마스") && !strings.Contains(s, "이브") {
		return generic.HolidayLegal
	}
	if strings.Contains(s, "christmas") && !strings.Contains(s, "eve") {
		return generic.HolidayLegal
	}
	return generic.HolidayObservance
}

// =============================================================================
// ICS PARSING - arran4/golang-ical handles folding, parameters and CRLF
// =============================================================================

var idNamespace = uuid.MustParse("6f1c3c2e-2d0b-4a53-9a53-3a0c1f6e8d21")

// HolidayID derives a stable ID from date and name so repeated syncs upsert.
func HolidayID(date generic.TimePoint, name string) string {
	return uuid.NewSHA1(idNamespace, []byte(date.String()+"|"+name)).String()
}

// ParseICS reads VEVENT components and returns one holiday per event that has
// both a DTSTART and a SUMMARY. Events with an unreadable date are skipped.
func ParseICS(r io.Reader) ([]generic.Holiday, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("read ics: %w", err)
	}

	var out []generic.Holiday
	for _, event := range cal.Events() {
		prop := event.GetProperty(ics.ComponentPropertySummary)
		if prop == nil {
			continue
		}
		summary := textValue(prop.Value)
		if summary == "" {
			continue
		}
		d, err := eventDate(event)
		if err != nil {
			continue
		}
		out = append(out, generic.Holiday{
			ID:   HolidayID(d, summary),
			Date: d,
			Name: summary,
			Type: Classify(summary),
		})
	}
	return out, nil
}

// eventDate reads DTSTART as a VALUE=DATE, falling back to a date-time start.
func eventDate(event *ics.VEvent) (generic.TimePoint, error) {
	t, err := event.GetAllDayStartAt()
	if err != nil {
		if t, err = event.GetStartAt(); err != nil {
			return generic.TimePoint{}, err
		}
	}
	return generic.DateOf(t), nil
}

// textValue decodes TEXT escapes. Already-decoded text passes through.
func textValue(s string) string {
	r := strings.NewReplacer(`\,`, ",", `\;`, ";", `\n`, " ", `\N`, " ", `\\`, `\`)
	return strings.TrimSpace(r.Replace(s))
}

// inMonth filters holidays dated in year/month.
func inMonth(hs []generic.Holiday, year int, month time.Month) []generic.Holiday {
	var out []generic.Holiday
	for _, h := range hs {
		if h.Date.Year() == year && h.Date.Month() == month {
			out = append(out, h)
		}
	}
	return out
}
