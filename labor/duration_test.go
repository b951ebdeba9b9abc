package labor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/labor"
)

// =============================================================================
// SHIFT DURATION
// =============================================================================

func TestShiftCompute_DayShiftWithBreak(t *testing.T) {
	s := labor.Shift{StartMinute: 9 * 60, EndMinute: 18 * 60, BreakMinutes: 60}

	h, err := s.Compute(policy)

	require.NoError(t, err)
	assert.Equal(t, 480, h.WorkedMinutes)
	assertDecimal(t, "8", h.Total)
	assertDecimal(t, "0", h.Night)
}

func TestShiftCompute_FullNightShift(t *testing.T) {
	// 22:00 -> 06:00 lies entirely in the night window
	s := labor.Shift{StartMinute: 22 * 60, EndMinute: 6 * 60}

	h, err := s.Compute(policy)

	require.NoError(t, err)
	assertDecimal(t, "8", h.Total)
	assertDecimal(t, "8", h.Night)
}

func TestShiftCompute_EndsAtMidnight(t *testing.T) {
	// 18:00 -> 24:00, two of the six hours are night hours
	s := labor.Shift{StartMinute: 18 * 60, EndMinute: generic.MinutesPerDay}

	h, err := s.Compute(policy)

	require.NoError(t, err)
	assertDecimal(t, "6", h.Total)
	assertDecimal(t, "2", h.Night)
}

func TestShiftCompute_OvernightFlagIsNotAdditive(t *testing.T) {
	// GIVEN: the same crossing shift with and without the overnight flag
	crossing := labor.Shift{StartMinute: 20 * 60, EndMinute: 4 * 60}
	flagged := crossing
	flagged.Overnight = true

	// WHEN
	a, err := crossing.Compute(policy)
	require.NoError(t, err)
	b, err := flagged.Compute(policy)
	require.NoError(t, err)

	// THEN: 24h is added once, not twice
	assertDecimal(t, "8", a.Total)
	assert.True(t, a.Total.Equal(b.Total))
	assert.True(t, a.Night.Equal(b.Night))
}

func TestShiftCompute_OvernightFlagWithEqualTimes(t *testing.T) {
	// equal start/end is a zero shift unless flagged, then a full day
	plain := labor.Shift{StartMinute: 600, EndMinute: 600}
	flagged := labor.Shift{StartMinute: 600, EndMinute: 600, Overnight: true}

	p, err := plain.Compute(policy)
	require.NoError(t, err)
	f, err := flagged.Compute(policy)
	require.NoError(t, err)

	assertDecimal(t, "0", p.Total)
	assertDecimal(t, "24", f.Total)
	assertDecimal(t, "8", f.Night)
}

func TestShiftCompute_NextDayMinutesAreNight(t *testing.T) {
	// 22:00 -> 24:00 plus 3h spill-over: 5h, all at night
	s := labor.Shift{StartMinute: 22 * 60, EndMinute: generic.MinutesPerDay, NextDayMinutes: 180}

	h, err := s.Compute(policy)

	require.NoError(t, err)
	assertDecimal(t, "5", h.Total)
	assertDecimal(t, "5", h.Night)
}

func TestShiftCompute_BreakLongerThanShift(t *testing.T) {
	s := labor.Shift{StartMinute: 9 * 60, EndMinute: 10 * 60, BreakMinutes: 90, NextDayMinutes: 30}

	h, err := s.Compute(policy)

	require.NoError(t, err)
	assert.Equal(t, 30, h.WorkedMinutes, "only next-day minutes remain")
	assert.Equal(t, 30, h.NightMinutes)
}

func TestShiftCompute_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		shift labor.Shift
	}{
		{"negative break", labor.Shift{StartMinute: 540, EndMinute: 600, BreakMinutes: -5}},
		{"next-day above max", labor.Shift{StartMinute: 1320, EndMinute: 1440, NextDayMinutes: 361}},
		{"negative next-day", labor.Shift{StartMinute: 1320, EndMinute: 1440, NextDayMinutes: -1}},
		{"span over a day", labor.Shift{StartMinute: 600, EndMinute: 600 + 2*generic.MinutesPerDay}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.shift.Compute(policy)
			assert.ErrorIs(t, err, generic.ErrMalformedShift)
		})
	}
}

func TestShiftCompute_NightNeverExceedsTotal(t *testing.T) {
	// Property: night hours are a subset of total hours
	for start := 0; start < generic.MinutesPerDay; start += 90 {
		for end := 0; end <= generic.MinutesPerDay; end += 75 {
			for _, brk := range []int{0, 30, 240} {
				for _, next := range []int{0, 120, 360} {
					s := labor.Shift{StartMinute: start, EndMinute: end, BreakMinutes: brk, NextDayMinutes: next}
					h, err := s.Compute(policy)
					require.NoError(t, err)
					require.LessOrEqual(t, h.NightMinutes, h.WorkedMinutes, "%+v", s)
					require.GreaterOrEqual(t, h.NightMinutes, 0)
				}
			}
		}
	}
}

// =============================================================================
// RECORD HOURS
// =============================================================================

func TestRecordHours(t *testing.T) {
	d := day(2025, time.January, 15)

	tests := []struct {
		name      string
		record    func() labor.WorkRecord
		wantTotal string
		wantNight string
	}{
		{
			name:      "day shift with break",
			record:    func() labor.WorkRecord { r := workedRecord(d, 9, 0, 18, 0); r.BreakMinutes = 60; return r },
			wantTotal: "8",
			wantNight: "0",
		},
		{
			name: "until midnight with overnight flag",
			record: func() labor.WorkRecord {
				r := workedRecord(d, 18, 0, 0, 0)
				r.Overnight = true
				return r
			},
			wantTotal: "6",
			wantNight: "2",
		},
		{
			name: "until midnight with break and spill-over",
			record: func() labor.WorkRecord {
				r := workedRecord(d, 18, 0, 0, 0)
				r.Overnight = true
				r.BreakMinutes = 30
				r.NextDayMinutes = 120
				return r
			},
			wantTotal: "7.5",
			wantNight: "4",
		},
		{
			name: "late start with spill-over",
			record: func() labor.WorkRecord {
				r := workedRecord(d, 22, 0, 0, 0)
				r.NextDayMinutes = 180
				return r
			},
			wantTotal: "5",
			wantNight: "5",
		},
		{
			name:      "leave without clock times",
			record:    func() labor.WorkRecord { return statusRecord(d, labor.StatusAnnualLeave) },
			wantTotal: "0",
			wantNight: "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := labor.RecordHours(tt.record(), policy)
			require.NoError(t, err)
			assertDecimal(t, tt.wantTotal, h.Total)
			assertDecimal(t, tt.wantNight, h.Night)
		})
	}
}

func TestRecordHours_ThreeSpillOverNights(t *testing.T) {
	// 20:00 -> 24:00 plus 2h next day, three nights in a row: 18h
	total := 0
	for i := 1; i <= 3; i++ {
		r := workedRecord(day(2025, time.January, i), 20, 0, 0, 0)
		r.Overnight = true
		r.NextDayMinutes = 120
		h, err := labor.RecordHours(r, policy)
		require.NoError(t, err)
		total += h.WorkedMinutes
	}
	assert.Equal(t, 18*60, total)
}

func TestRecordHours_ExplicitBreaksAreClipped(t *testing.T) {
	// GIVEN: 09:00-18:00 with a break straddling clock-in and a lunch hour
	d := day(2025, time.January, 15)
	r := workedRecord(d, 9, 0, 18, 0)
	r.BreakMinutes = 999 // ignored when intervals are present
	r.Breaks = []labor.BreakInterval{
		{Start: time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC), End: time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)},
		{Start: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), End: time.Date(2025, 1, 15, 13, 0, 0, 0, time.UTC)},
		{Start: time.Date(2025, 1, 15, 15, 0, 0, 0, time.UTC), End: time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC)},
	}

	// WHEN
	h, err := labor.RecordHours(r, policy)

	// THEN: 30 + 60 minutes of break, the inverted interval is ignored
	require.NoError(t, err)
	assertDecimal(t, "7.5", h.Total)
}

func TestRecordHours_OvernightSignalsAgree(t *testing.T) {
	// Property: a record crossing midnight measures the same with or without the flag
	d := day(2025, time.January, 15)
	plain := workedRecord(d, 21, 0, 5, 0)
	flagged := plain
	flagged.Overnight = true

	a, err := labor.RecordHours(plain, policy)
	require.NoError(t, err)
	b, err := labor.RecordHours(flagged, policy)
	require.NoError(t, err)

	assertDecimal(t, "8", a.Total)
	assert.True(t, a.Total.Equal(b.Total))
	assert.True(t, a.Night.Equal(b.Night))
}

func TestRecordHours_Malformed(t *testing.T) {
	d := day(2025, time.January, 15)

	t.Run("only time_in", func(t *testing.T) {
		r := workedRecord(d, 9, 0, 18, 0)
		r.TimeOut = nil

		_, err := labor.RecordHours(r, policy)

		var se *generic.ShiftError
		require.ErrorAs(t, err, &se)
		assert.True(t, se.Date.Equal(d))
		assert.ErrorIs(t, err, generic.ErrMalformedShift)
	})

	t.Run("time_in on another date", func(t *testing.T) {
		r := workedRecord(d.AddDays(1), 9, 0, 18, 0)
		r.Date = d

		_, err := labor.RecordHours(r, policy)

		assert.ErrorIs(t, err, generic.ErrMalformedShift)
	})

	t.Run("spill-over out of range carries the date", func(t *testing.T) {
		r := workedRecord(d, 22, 0, 0, 0)
		r.NextDayMinutes = 400

		_, err := labor.RecordHours(r, policy)

		var se *generic.ShiftError
		require.ErrorAs(t, err, &se)
		assert.True(t, se.Date.Equal(d))
	})
}
