package holiday

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/warp/payroll-engine/generic"
	"golang.org/x/sync/singleflight"
)

// DefaultICSURL is the public South Korean holiday calendar.
const DefaultICSURL = "https://calendar.google.com/calendar/ical/ko.south_korea%23holiday%40group.v.calendar.google.com/public/full.ics"

const (
	defaultCacheTTL  = 24 * time.Hour
	defaultCacheSize = 240
	fetchTimeout     = 10 * time.Second
	feedKey          = "feed"
)

// Provider reads holidays from an ICS feed over HTTP.
//
// Months are cached for the TTL. Concurrent misses share a single download,
// and one download fills the cache for every month the feed contains.
type Provider struct {
	URL    string
	Client *http.Client
	Logger *slog.Logger

	cache *expirable.LRU[string, []generic.Holiday]
	group singleflight.Group
}

var _ generic.HolidayCalendar = (*Provider)(nil)

// NewProvider creates a provider for url. ttl <= 0 uses 24h.
func NewProvider(url string, ttl time.Duration, logger *slog.Logger) *Provider {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		URL:    url,
		Client: &http.Client{Timeout: fetchTimeout},
		Logger: logger,
		cache:  expirable.NewLRU[string, []generic.Holiday](defaultCacheSize, nil, ttl),
	}
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// Holidays returns the holidays of year/month, from cache when fresh.
func (p *Provider) Holidays(ctx context.Context, year int, month time.Month) ([]generic.Holiday, error) {
	key := monthKey(year, month)
	if hs, ok := p.cache.Get(key); ok {
		return hs, nil
	}

	all, err := p.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	hs := inMonth(all, year, month)
	p.cache.Add(key, hs)
	return hs, nil
}

// Fetch downloads and parses the whole feed, refreshing every cached month.
func (p *Provider) Fetch(ctx context.Context) ([]generic.Holiday, error) {
	v, err, _ := p.group.Do(feedKey, func() (any, error) {
		all, err := p.download(ctx)
		if err != nil {
			return nil, err
		}
		p.fill(all)
		return all, nil
	})
	if err != nil {
		p.Logger.Warn("holiday feed unavailable", slog.String("url", p.URL), slog.Any("error", err))
		return nil, err
	}
	return v.([]generic.Holiday), nil
}

func (p *Provider) download(ctx context.Context) ([]generic.Holiday, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generic.ErrHolidaySource, err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generic.ErrHolidaySource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", generic.ErrHolidaySource, resp.StatusCode)
	}
	hs, err := ParseICS(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generic.ErrHolidaySource, err)
	}
	return hs, nil
}

func (p *Provider) fill(all []generic.Holiday) {
	byMonth := make(map[string][]generic.Holiday)
	for _, h := range all {
		k := monthKey(h.Date.Year(), h.Date.Month())
		byMonth[k] = append(byMonth[k], h)
	}
	for k, hs := range byMonth {
		p.cache.Add(k, hs)
	}
}

// Invalidate drops every cached month.
func (p *Provider) Invalidate() {
	p.cache.Purge()
}
