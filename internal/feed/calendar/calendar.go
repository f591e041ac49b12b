// Package calendar scrapes today's economic calendar events.
//
// The source cannot be tailed incrementally: the set of rows for "today"
// is rebuilt on every scan and rows carry no native id. Dedup is entirely
// the ledger's job; this package only produces deterministic ids.
package calendar

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fxwire/internal/feed"
	logx "fxwire/pkg/logx"
)

const requestTimeout = 15 * time.Second

type Config struct {
	URL string
}

type Client struct {
	cfg  Config
	log  logx.Logger
	http *http.Client

	// now is swapped in tests to pin the scan date.
	now func() time.Time
}

func New(cfg Config, log logx.Logger) *Client {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		cfg:  cfg,
		log:  log,
		http: &http.Client{Timeout: requestTimeout},
		now:  time.Now,
	}
}

// FetchToday scans today's events, keeping only medium/high impact rows.
// Transport and parse failures yield an empty batch plus a warning; the
// next daily run is the retry.
func (c *Client) FetchToday(ctx context.Context) []feed.CalendarEvent {
	if strings.TrimSpace(c.cfg.URL) == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"?day=today", nil)
	if err != nil {
		c.log.Warn("calendar request build failed", logx.Err(err))
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("calendar fetch failed", logx.Err(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("calendar fetch failed", logx.Err(fmt.Errorf("http %d", resp.StatusCode)))
		return nil
	}

	day := c.now().UTC().Format("2006-01-02")
	events, err := parseEvents(resp.Body, day)
	if err != nil {
		c.log.Warn("calendar parse failed", logx.Err(err))
		return nil
	}
	return events
}

// includeImpact is the single, deterministic impact policy:
// a label containing "low" is excluded no matter what else it says;
// any other non-empty label is included.
func includeImpact(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return false
	}
	if strings.Contains(l, "low") {
		return false
	}
	return true
}
