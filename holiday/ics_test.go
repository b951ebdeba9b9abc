package holiday_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/holiday"
)

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART;VALUE=DATE:20250101\r\n" +
	"DTEND;VALUE=DATE:20250102\r\n" +
	"SUMMARY:New Year's Day\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART;VALUE=DATE:20250505\r\n" +
	"SUMMARY:어린이날\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART;VALUE=DATE:20250506\r\n" +
	"SUMMARY:Substitute Holiday\\, Buddha's\r\n" +
	"  Birthday\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART;VALUE=DATE:20250508\r\n" +
	"SUMMARY:Parents' Day\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART;VALUE=DATE:20251224\r\n" +
	"SUMMARY:Christmas Eve\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTART;VALUE=DATE:2025XXXX\r\n" +
	"SUMMARY:Broken\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"SUMMARY:No date\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseICS(t *testing.T) {
	hs, err := holiday.ParseICS(strings.NewReader(sampleICS))

	require.NoError(t, err)
	require.Len(t, hs, 5, "events without a readable date are skipped")

	assert.Equal(t, "2025-01-01", hs[0].Date.String())
	assert.Equal(t, generic.HolidayLegal, hs[0].Type)

	assert.Equal(t, "어린이날", hs[1].Name)
	assert.True(t, hs[1].IsLegal())

	// escaped comma and a folded continuation line
	assert.Equal(t, "Substitute Holiday, Buddha's Birthday", hs[2].Name)
	assert.True(t, hs[2].IsLegal())

	assert.Equal(t, generic.HolidayObservance, hs[3].Type)
	assert.Equal(t, generic.HolidayObservance, hs[4].Type)
}

func TestParseICS_DateTimeStart(t *testing.T) {
	// GIVEN: a feed that publishes DTSTART as a floating date-time
	feed := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:foundation-2025\r\n" +
		"DTSTART:20251003T000000\r\n" +
		"SUMMARY:National Foundation Day\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	// WHEN
	hs, err := holiday.ParseICS(strings.NewReader(feed))

	// THEN: the calendar date is kept
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "2025-10-03", hs[0].Date.String())
	assert.True(t, hs[0].IsLegal())
}

func TestParseICS_NotACalendar(t *testing.T) {
	_, err := holiday.ParseICS(strings.NewReader("<html>maintenance</html>"))

	assert.Error(t, err)
}

func TestParseICS_StableIDs(t *testing.T) {
	first, err := holiday.ParseICS(strings.NewReader(sampleICS))
	require.NoError(t, err)
	second, err := holiday.ParseICS(strings.NewReader(sampleICS))
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.NotEqual(t, first[0].ID, first[1].ID)
	assert.Equal(t, holiday.HolidayID(generic.NewTimePoint(2025, time.January, 1), "New Year's Day"), first[0].ID)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		summary string
		want    generic.HolidayType
	}{
		{"Lunar New Year", generic.HolidayLegal},
		{"설날 연휴", generic.HolidayLegal},
		{"추석", generic.HolidayLegal},
		{"Korean Thanksgiving Day", generic.HolidayLegal},
		{"Independence Movement Day", generic.HolidayLegal},
		{"Hangul Day", generic.HolidayLegal},
		{"Christmas Day", generic.HolidayLegal},
		{"크리스마스", generic.HolidayLegal},
		{"크리스마스 이브", generic.HolidayObservance},
		{"Christmas Eve", generic.HolidayObservance},
		{"Local Election Day", generic.HolidayLegal},
		{"Temporary Holiday", generic.HolidayLegal},
		{"Labor Day", generic.HolidayLegal},
		{"Arbor Day", generic.HolidayObservance},
		{"Valentine's Day", generic.HolidayObservance},
		{"", generic.HolidayObservance},
	}
	for _, tt := range tests {
		t.Run(tt.summary, func(t *testing.T) {
			assert.Equal(t, tt.want, holiday.Classify(tt.summary))
		})
	}
}
