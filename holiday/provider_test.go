package holiday_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/generic"
	"github.com/warp/payroll-engine/holiday"
	"github.com/warp/payroll-engine/store/memory"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// feedServer serves sampleICS and counts downloads.
func feedServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		io.WriteString(w, sampleICS)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestProvider_CachesEveryMonthOfTheFeed(t *testing.T) {
	// GIVEN
	srv, hits := feedServer(t, http.StatusOK)
	p := holiday.NewProvider(srv.URL, time.Hour, discard)
	ctx := context.Background()

	// WHEN: two different months are asked for
	may, err := p.Holidays(ctx, 2025, time.May)
	require.NoError(t, err)
	jan, err := p.Holidays(ctx, 2025, time.January)
	require.NoError(t, err)
	none, err := p.Holidays(ctx, 2025, time.February)
	require.NoError(t, err)

	// THEN: one download filled May and January; February's miss fetched again
	assert.Len(t, may, 3)
	assert.Len(t, jan, 1)
	assert.Empty(t, none)
	assert.Equal(t, int32(2), hits.Load())

	_, err = p.Holidays(ctx, 2025, time.February)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "empty months are cached too")
}

func TestProvider_InvalidateForcesRefetch(t *testing.T) {
	srv, hits := feedServer(t, http.StatusOK)
	p := holiday.NewProvider(srv.URL, time.Hour, discard)
	ctx := context.Background()

	_, err := p.Holidays(ctx, 2025, time.May)
	require.NoError(t, err)
	p.Invalidate()
	_, err = p.Holidays(ctx, 2025, time.May)
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
}

func TestProvider_ConcurrentMissesShareOneDownload(t *testing.T) {
	// GIVEN: a slow feed
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		io.WriteString(w, sampleICS)
	}))
	t.Cleanup(srv.Close)
	p := holiday.NewProvider(srv.URL, time.Hour, discard)

	// WHEN: many callers miss the same month at once
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hs, err := p.Holidays(context.Background(), 2025, time.May)
			assert.NoError(t, err)
			assert.Len(t, hs, 3)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	// THEN
	assert.Equal(t, int32(1), hits.Load())
}

func TestProvider_FeedFailure(t *testing.T) {
	srv, _ := feedServer(t, http.StatusBadGateway)
	p := holiday.NewProvider(srv.URL, time.Hour, discard)

	hs, err := p.Holidays(context.Background(), 2025, time.May)

	assert.Nil(t, hs)
	assert.ErrorIs(t, err, generic.ErrHolidaySource)
}

func TestStatic(t *testing.T) {
	cal := holiday.NewStatic(
		holiday.Legal(generic.NewTimePoint(2025, time.May, 5), "Children's Day"),
		holiday.Observance(generic.NewTimePoint(2025, time.May, 1), "May Day"),
		holiday.Legal(generic.NewTimePoint(2025, time.June, 6), "Memorial Day"),
	)

	may, err := cal.Holidays(context.Background(), 2025, time.May)

	require.NoError(t, err)
	require.Len(t, may, 2)
	assert.Equal(t, "May Day", may[0].Name, "sorted by date")
}

func TestFailing(t *testing.T) {
	_, err := holiday.Failing{}.Holidays(context.Background(), 2025, time.May)
	assert.ErrorIs(t, err, generic.ErrHolidaySource)

	boom := errors.New("boom")
	_, err = holiday.Failing{Err: boom}.Holidays(context.Background(), 2025, time.May)
	assert.ErrorIs(t, err, boom)
}

// =============================================================================
// SYNC
// =============================================================================

func TestSync_UpsertsFeedIntoStore(t *testing.T) {
	// GIVEN
	srv, _ := feedServer(t, http.StatusOK)
	p := holiday.NewProvider(srv.URL, time.Hour, discard)
	store := memory.New()
	ctx := context.Background()

	// WHEN: synced twice
	n, err := holiday.Sync(ctx, p, store)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	_, err = holiday.Sync(ctx, p, store)
	require.NoError(t, err)

	// THEN: stable IDs make the second sync a no-op
	all, err := store.ListHolidays(ctx, generic.YearOf(2025))
	require.NoError(t, err)
	assert.Len(t, all, 5)

	may, err := store.Holidays(ctx, 2025, time.May)
	require.NoError(t, err)
	assert.Len(t, may, 3)
}

func TestSync_SourceFailure(t *testing.T) {
	srv, _ := feedServer(t, http.StatusInternalServerError)
	p := holiday.NewProvider(srv.URL, time.Hour, discard)

	n, err := holiday.Sync(context.Background(), p, memory.New())

	assert.Zero(t, n)
	assert.ErrorIs(t, err, generic.ErrHolidaySource)
}
