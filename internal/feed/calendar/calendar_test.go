package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	logx "fxwire/pkg/logx"
)

const samplePage = `<html><body>
<table id="calendar">
  <tr><th>Time</th><th>Cur</th><th>Impact</th><th>Event</th><th>Actual</th><th>Forecast</th></tr>
  <tr><td colspan="6">Mon Jan 1</td></tr>
  <tr>
    <td>08:30</td><td>USD</td><td><span class="high">High Impact Expected</span></td>
    <td>CPI y/y</td><td>3.4%</td><td>3.1%</td>
  </tr>
  <tr>
    <td>10:00</td><td>EUR</td><td>Low Impact Expected</td>
    <td>Italian Bank Holiday</td><td></td><td></td>
  </tr>
  <tr>
    <td>14:00</td><td>GBP</td><td>Medium</td>
    <td>BOE Gov Speaks</td><td></td><td></td>
  </tr>
</table>
</body></html>`

func TestParseEventsKeepsMediumAndHigh(t *testing.T) {
	t.Parallel()
	events, err := parseEvents(strings.NewReader(samplePage), "2024-01-01")
	if err != nil {
		t.Fatalf("parseEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}

	first := events[0]
	if first.Title != "CPI y/y" || first.Currency != "USD" || first.Time != "08:30" {
		t.Fatalf("unexpected first event: %+v", first)
	}
	if first.Actual != "3.4%" || first.Forecast != "3.1%" {
		t.Fatalf("actual/forecast swapped: %+v", first)
	}
	if first.ID() != "ff:2024-01-01:USD:CPI y/y:08:30" {
		t.Fatalf("unexpected id: %q", first.ID())
	}
	if events[1].Title != "BOE Gov Speaks" {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
}

func TestParseEventsMissingTable(t *testing.T) {
	t.Parallel()
	if _, err := parseEvents(strings.NewReader("<html><body><p>maintenance</p></body></html>"), "2024-01-01"); err == nil {
		t.Fatal("expected error when the calendar table is absent")
	}
}

func TestIncludeImpact(t *testing.T) {
	t.Parallel()
	cases := []struct {
		label string
		want  bool
	}{
		{"High Impact Expected", true},
		{"Medium Impact Expected", true},
		{"medium", true},
		{"Low Impact Expected", false},
		{"low", false},
		// A conflicting label still loses to the exclusion rule.
		{"Medium/Low", false},
		{"", false},
		{"   ", false},
		{"Non-Economic", true},
	}
	for _, tc := range cases {
		if got := includeImpact(tc.label); got != tc.want {
			t.Errorf("includeImpact(%q) = %v, want %v", tc.label, got, tc.want)
		}
	}
}

func TestFetchToday(t *testing.T) {
	t.Parallel()
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL}, logx.Nop())
	c.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }

	events := c.FetchToday(context.Background())
	if gotQuery != "day=today" {
		t.Fatalf("query = %q, want day=today", gotQuery)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Day != "2024-01-01" {
		t.Fatalf("day = %q", events[0].Day)
	}
}

func TestFetchTodayFailuresYieldEmpty(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Config{URL: srv.URL}, logx.Nop())
	if events := c.FetchToday(context.Background()); len(events) != 0 {
		t.Fatalf("expected empty batch on 503, got %+v", events)
	}

	unconfigured := New(Config{}, logx.Nop())
	if events := unconfigured.FetchToday(context.Background()); len(events) != 0 {
		t.Fatalf("expected empty batch without URL, got %+v", events)
	}
}
