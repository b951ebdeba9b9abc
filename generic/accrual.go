package generic

// =============================================================================
// ACCRUAL SCHEDULE - Interface for how entitlements accumulate
// =============================================================================

// AccrualSchedule generates accrual events for a time range.
// Implementations define the business logic (monthly attendance windows,
// yearly grants, tenure tiers).
type AccrualSchedule interface {
	// GenerateAccruals returns accrual events in [from, to].
	GenerateAccruals(from, to TimePoint) []AccrualEvent
}

// AccrualEvent represents a single accrual occurrence.
type AccrualEvent struct {
	At     TimePoint
	Amount Amount
	Reason string
}

// SumAccruals totals events in unit, capping the result at limit when limit is positive.
func SumAccruals(events []AccrualEvent, unit Unit, limit Amount) Amount {
	total := NewAmount(0, unit)
	for _, e := range events {
		total = total.Add(e.Amount)
	}
	if limit.IsPositive() {
		total = total.Min(limit)
	}
	return total
}
