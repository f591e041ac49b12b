package health

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	logx "fxwire/pkg/logx"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return rec.Code, string(body)
}

func TestRouter(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "fxwire_test_total"})
	reg.MustRegister(c)
	c.Inc()

	s := New(Config{Addr: "127.0.0.1:0"}, func() string { return "all good" }, reg, logx.Nop())
	h := s.router()

	if code, body := get(t, h, "/"); code != http.StatusOK || body != "ok\n" {
		t.Fatalf("GET / = %d %q", code, body)
	}
	if code, body := get(t, h, "/status"); code != http.StatusOK || !strings.Contains(body, "all good") {
		t.Fatalf("GET /status = %d %q", code, body)
	}
	if code, body := get(t, h, "/metrics"); code != http.StatusOK || !strings.Contains(body, "fxwire_test_total 1") {
		t.Fatalf("GET /metrics = %d %q", code, body)
	}
	if code, _ := get(t, h, "/nope"); code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d, want 404", code)
	}
}

func TestRouterWithoutStatusFn(t *testing.T) {
	t.Parallel()
	s := New(Config{}, nil, nil, logx.Nop())
	h := s.router()

	if code, body := get(t, h, "/status"); code != http.StatusOK || body != "up\n" {
		t.Fatalf("GET /status = %d %q", code, body)
	}
	// No registry, no metrics endpoint.
	if code, _ := get(t, h, "/metrics"); code != http.StatusNotFound {
		t.Fatalf("GET /metrics = %d, want 404", code)
	}
}
