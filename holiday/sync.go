package holiday

import (
	"context"
	"fmt"

	"github.com/warp/payroll-engine/generic"
)

// Store persists holidays. It is itself a calendar over what it holds.
type Store interface {
	generic.HolidayCalendar
	// SaveHoliday upserts by ID.
	SaveHoliday(ctx context.Context, h generic.Holiday) error
	DeleteHoliday(ctx context.Context, id string) error
	ListHolidays(ctx context.Context, period generic.Period) ([]generic.Holiday, error)
}

// Fetcher returns every holiday a source knows about.
type Fetcher interface {
	Fetch(ctx context.Context) ([]generic.Holiday, error)
}

// Sync copies every fetched holiday into store and returns how many were written.
func Sync(ctx context.Context, src Fetcher, store Store) (int, error) {
	hs, err := src.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	for i, h := range hs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := store.SaveHoliday(ctx, h); err != nil {
			return i, fmt.Errorf("save holiday %s %q: %w", h.Date, h.Name, err)
		}
	}
	return len(hs), nil
}
