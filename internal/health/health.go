// Package health exposes the liveness surface: a tiny HTTP server plus
// optional systemd readiness/watchdog pings. It does no pipeline work.
package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	logx "fxwire/pkg/logx"
)

type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:8080". Empty disables
	// the HTTP server (systemd pings still run when available).
	Addr string
}

type Service struct {
	cfg Config
	log logx.Logger

	// statusText supplies the /status body; shared with the Telegram
	// /status command.
	statusText func() string
	registry   *prometheus.Registry

	srv    *http.Server
	cancel context.CancelFunc
}

func New(cfg Config, statusText func() string, registry *prometheus.Registry, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: cfg, log: log, statusText: statusText, registry: registry}
}

func (s *Service) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		text := "up"
		if s.statusText != nil {
			text = s.statusText()
		}
		_, _ = w.Write([]byte(text + "\n"))
	})
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Service) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if s.cfg.Addr != "" {
		s.srv = &http.Server{
			Addr:         s.cfg.Addr,
			Handler:      s.router(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			s.log.Info("liveness server listening", logx.String("addr", s.cfg.Addr))
			if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("liveness server failed", logx.Err(err))
			}
		}()
	}

	// Best-effort systemd integration; no-ops outside systemd units.
	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err == nil && ok {
		s.log.Debug("sd_notify ready sent")
	}
	if interval, err := daemon.SdWatchdogEnabled(false); err == nil && interval > 0 {
		go s.watchdogLoop(runCtx, interval/2)
	}

	return nil
}

func (s *Service) watchdogLoop(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
		}
	}
}

func (s *Service) Stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	if s.srv != nil {
		_ = s.srv.Shutdown(ctx)
	}
}
