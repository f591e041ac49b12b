package x

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	logx "fxwire/pkg/logx"
)

func newTestServer(t *testing.T, tweets string) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/2/users/by/username/somebody":
			fmt.Fprint(w, `{"data":{"id":"42"}}`)
		case "/2/users/42/tweets":
			queries = append(queries, r.URL.RawQuery)
			fmt.Fprint(w, tweets)
		default:
			http.NotFound(w, r)
		}
	}))
	return srv, &queries
}

func TestFetchNewOrdersOldestFirst(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t, `{"data":[
		{"id":"101","text":"later","created_at":"2024-01-01T11:00:00Z"},
		{"id":"100","text":"earlier","created_at":"2024-01-01T10:00:00Z"}
	]}`)
	defer srv.Close()

	c := New(Config{Handle: "somebody", BearerToken: "tok", BaseURL: srv.URL}, logx.Nop())
	posts := c.FetchNew(context.Background(), "")
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2", len(posts))
	}
	if posts[0].PostID != "100" || posts[1].PostID != "101" {
		t.Fatalf("posts out of order: %+v", posts)
	}
	if posts[0].ID() != "x:100" {
		t.Fatalf("unexpected id: %q", posts[0].ID())
	}
	if posts[0].URL != "https://x.com/somebody/status/100" {
		t.Fatalf("unexpected url: %q", posts[0].URL)
	}
}

func TestFetchNewPassesSinceID(t *testing.T) {
	t.Parallel()
	srv, queries := newTestServer(t, `{"data":[]}`)
	defer srv.Close()

	c := New(Config{Handle: "somebody", BearerToken: "tok", BaseURL: srv.URL, PageSize: 5}, logx.Nop())
	c.FetchNew(context.Background(), "100")

	if len(*queries) != 1 {
		t.Fatalf("got %d tweet requests, want 1", len(*queries))
	}
	q, err := url.ParseQuery((*queries)[0])
	if err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if got := q.Get("since_id"); got != "100" {
		t.Errorf("since_id = %q, want 100", got)
	}
	if got := q.Get("max_results"); got != "5" {
		t.Errorf("max_results = %q, want 5", got)
	}
}

func TestFetchNewCachesUserID(t *testing.T) {
	t.Parallel()
	var resolves int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/2/users/by/username/somebody":
			resolves++
			fmt.Fprint(w, `{"data":{"id":"42"}}`)
		case "/2/users/42/tweets":
			fmt.Fprint(w, `{"data":[]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(Config{Handle: "somebody", BearerToken: "tok", BaseURL: srv.URL}, logx.Nop())
	c.FetchNew(context.Background(), "")
	c.FetchNew(context.Background(), "")
	if resolves != 1 {
		t.Fatalf("resolved user %d times, want 1", resolves)
	}
}

func TestFetchNewFailuresYieldEmpty(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Config{Handle: "somebody", BearerToken: "tok", BaseURL: srv.URL}, logx.Nop())
	if posts := c.FetchNew(context.Background(), ""); len(posts) != 0 {
		t.Fatalf("expected empty batch on 429, got %+v", posts)
	}
}

func TestDisabledWithoutCredentials(t *testing.T) {
	t.Parallel()
	cases := []Config{
		{},
		{Handle: "somebody"},
		{BearerToken: "tok"},
		{Handle: "  ", BearerToken: "tok"},
	}
	for _, cfg := range cases {
		c := New(cfg, logx.Nop())
		if c.Enabled() {
			t.Errorf("Enabled() = true for %+v", cfg)
		}
		if posts := c.FetchNew(context.Background(), ""); posts != nil {
			t.Errorf("FetchNew returned %+v for disabled client", posts)
		}
	}
}
